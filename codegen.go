package bst

import (
	"fmt"
)

// Function is a compiled code unit: a user FUNCTION, or an anonymous block
// nested in one. Calling it runs its ops in order against a fresh register
// frame.
type Function struct {
	Name string
	Body Block

	nregs int
	ops   []op
}

type op func(vm *VM, regs []Value)

func (fn *Function) call(vm *VM) {
	vm.logf(">", "call %v s:%v", fn.Name, vm.stack.Len())
	var regs []Value
	if fn.nregs > 0 {
		regs = make([]Value, fn.nregs)
	}
	for _, op := range fn.ops {
		op(vm, regs)
	}
	vm.logf("<", "exit %v s:%v", fn.Name, vm.stack.Len())
}

// operand is a value the compiler has not pushed yet: a constant, or a
// register loaded earlier in the same unit.
type operand func(regs []Value) Value

func constOperand(v Value) operand { return func([]Value) Value { return v } }
func regOperand(r int) operand     { return func(regs []Value) Value { return regs[r] } }

// compiler turns one block into a Function. It keeps the values pushed by
// recent instructions in pending rather than on the stack, so that stack
// safe builtins consume them directly; anything that may observe the stack
// flushes pending first.
type compiler struct {
	vm     *VM
	fn     *Function
	inline bool

	pending []operand
	blocks  int
}

// compile compiles body into a new code unit registered under name.
// Identifiers resolve now, so every name used must already be declared.
func (vm *VM) compile(name string, body Block) *Function {
	fn := &Function{Name: vm.unitName(name), Body: body}
	vm.register(fn)
	c := compiler{vm: vm, fn: fn, inline: vm.inline}
	for _, in := range body {
		c.instruction(in)
	}
	c.flush()
	vm.logf("+", "compiled %v: %v ops, %v registers", fn.Name, len(fn.ops), fn.nregs)
	return fn
}

func (vm *VM) unitName(name string) string {
	if _, taken := vm.named[name]; !taken {
		return name
	}
	for i := 1; ; i++ {
		if alt := fmt.Sprintf("%v#%v", name, i); vm.named[alt] == nil {
			return alt
		}
	}
}

func (vm *VM) register(fn *Function) {
	if vm.named == nil {
		vm.named = make(map[string]*Function)
	}
	vm.named[fn.Name] = fn
	vm.units = append(vm.units, fn)
}

func (c *compiler) emit(o op) {
	c.fn.ops = append(c.fn.ops, o)
}

func (c *compiler) reg() int {
	r := c.fn.nregs
	c.fn.nregs++
	return r
}

func (c *compiler) instruction(in Instruction) {
	switch in := in.(type) {
	case StringLit:
		c.constant(String(in))
	case IntLit:
		c.constant(Integer(in))
	case Quoted:
		c.constant(c.vm.lookup(string(in), "undefined variable"))
	case Block:
		c.blocks++
		c.constant(c.vm.compile(fmt.Sprintf("%v{%v}", c.fn.Name, c.blocks), in))
	case Ident:
		c.variable(c.vm.lookup(string(in), "undefined function"))
	default:
		c.vm.halt(fmt.Errorf("%v: invalid instruction %T", c.fn.Name, in))
	}
}

func (c *compiler) constant(v Value) {
	if !c.inline {
		c.emit(func(vm *VM, _ []Value) { vm.push(v) })
		return
	}
	c.pending = append(c.pending, constOperand(v))
}

func (c *compiler) variable(v *Variable) {
	switch v.Kind {
	case FunctionVar:
		c.flush()
		fn := v.fn
		c.emit(func(vm *VM, _ []Value) { fn.call(vm) })
	case Builtin:
		c.builtin(v.builtin)
	default:
		if !c.inline {
			c.emit(func(vm *VM, _ []Value) { vm.push(vm.read(v)) })
			return
		}
		r := c.reg()
		c.emit(func(vm *VM, regs []Value) { regs[r] = vm.read(v) })
		c.pending = append(c.pending, regOperand(r))
	}
}

func (c *compiler) builtin(b *builtin) {
	if !c.inline || b.unsafe {
		c.flush()
		c.emit(func(vm *VM, _ []Value) { b.execute(vm) })
		return
	}

	switch b.name {
	case "duplicate$":
		c.need(b.name, 1)
		c.pending = append(c.pending, c.pending[len(c.pending)-1])
		return
	case "swap$":
		c.need(b.name, 2)
		n := len(c.pending)
		c.pending[n-2], c.pending[n-1] = c.pending[n-1], c.pending[n-2]
		return
	case "pop$":
		c.need(b.name, 1)
		c.pending = c.pending[:len(c.pending)-1]
		return
	}

	args := c.take(b.name, b.in)
	fn := b.fn
	if b.out == 0 {
		c.emit(func(vm *VM, regs []Value) {
			var buf [3]Value
			fn(vm, loadArgs(buf[:len(args)], args, regs))
		})
		return
	}
	r := c.reg()
	c.emit(func(vm *VM, regs []Value) {
		var buf [3]Value
		regs[r] = fn(vm, loadArgs(buf[:len(args)], args, regs))
	})
	c.pending = append(c.pending, regOperand(r))
}

func loadArgs(into []Value, args []operand, regs []Value) []Value {
	for i, arg := range args {
		into[i] = arg(regs)
	}
	return into
}

// need makes sure at least n operands are pending, popping the missing ones
// off the real stack at runtime.
func (c *compiler) need(op string, n int) {
	k := n - len(c.pending)
	if k <= 0 {
		return
	}
	rs := make([]int, k)
	loaded := make([]operand, k)
	for i := range rs {
		rs[i] = c.reg()
		loaded[i] = regOperand(rs[i])
	}
	c.emit(func(vm *VM, regs []Value) {
		for i := len(rs) - 1; i >= 0; i-- {
			regs[rs[i]] = vm.pop(op)
		}
	})
	c.pending = append(loaded, c.pending...)
}

// take removes the top n pending operands, deepest first.
func (c *compiler) take(op string, n int) []operand {
	if n == 0 {
		return nil
	}
	c.need(op, n)
	i := len(c.pending) - n
	args := append([]operand(nil), c.pending[i:]...)
	c.pending = c.pending[:i]
	return args
}

// flush pushes every pending operand onto the real stack, in order.
func (c *compiler) flush() {
	if len(c.pending) == 0 {
		return
	}
	vals := c.pending
	c.pending = nil
	c.emit(func(vm *VM, regs []Value) {
		for _, val := range vals {
			vm.push(val(regs))
		}
	})
}
