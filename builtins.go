package bst

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// builtin is one of the predefined functions. Most take in arguments and
// produce at most one result through fn, never touching the stack
// themselves, which lets the compiler feed them from registers. The rest
// work on the stack directly through exec; those marked unsafe may also run
// arbitrary code.
type builtin struct {
	name   string
	in     int
	out    int
	unsafe bool
	fn     func(vm *VM, args []Value) Value
	exec   func(vm *VM)
}

// execute runs b against the real stack.
func (b *builtin) execute(vm *VM) {
	if b.exec != nil {
		b.exec(vm)
		return
	}
	var buf [3]Value
	args := buf[:b.in]
	for i := b.in - 1; i >= 0; i-- {
		args[i] = vm.pop(b.name)
	}
	if res := b.fn(vm, args); b.out > 0 {
		vm.push(res)
	}
}

var builtins = []*builtin{
	{name: ">", in: 2, out: 1, fn: func(vm *VM, a []Value) Value {
		return boolInt(vm.compare(">", a[0], a[1]) > 0)
	}},
	{name: "<", in: 2, out: 1, fn: func(vm *VM, a []Value) Value {
		return boolInt(vm.compare("<", a[0], a[1]) < 0)
	}},
	{name: "=", in: 2, out: 1, fn: func(vm *VM, a []Value) Value {
		return boolInt(vm.compare("=", a[0], a[1]) == 0)
	}},
	{name: "+", in: 2, out: 1, fn: func(vm *VM, a []Value) Value {
		return Integer(vm.intArg("+", a[0]) + vm.intArg("+", a[1]))
	}},
	{name: "-", in: 2, out: 1, fn: func(vm *VM, a []Value) Value {
		return Integer(vm.intArg("-", a[0]) - vm.intArg("-", a[1]))
	}},
	{name: "*", in: 2, out: 1, fn: func(vm *VM, a []Value) Value {
		return String(vm.strArg("*", a[0]) + vm.strArg("*", a[1]))
	}},
	{name: ":=", in: 2, fn: func(vm *VM, a []Value) Value {
		vm.assign(vm.varArg(":=", a[1]), a[0])
		return nil
	}},
	{name: "add.period$", in: 1, out: 1, fn: func(vm *VM, a []Value) Value {
		return String(addPeriod(vm.strArg("add.period$", a[0])))
	}},
	{name: "call.type$", unsafe: true, exec: (*VM).callType},
	{name: "change.case$", in: 2, out: 1, fn: builtinChangeCase},
	{name: "chr.to.int$", in: 1, out: 1, fn: builtinChrToInt},
	{name: "cite$", out: 1, fn: func(vm *VM, _ []Value) Value {
		return String(vm.entry("cite$").key)
	}},
	{name: "duplicate$", in: 1, out: 2, exec: func(vm *VM) {
		v := vm.pop("duplicate$")
		vm.push(v)
		vm.push(v)
	}},
	{name: "empty$", in: 1, out: 1, fn: func(vm *VM, a []Value) Value {
		return boolInt(isEmpty(vm.strArg("empty$", a[0])))
	}},
	{name: "format.name$", in: 3, out: 1, fn: builtinFormatName},
	{name: "if$", in: 3, unsafe: true, exec: (*VM).ifThenElse},
	{name: "int.to.chr$", in: 1, out: 1, fn: builtinIntToChr},
	{name: "int.to.str$", in: 1, out: 1, fn: func(vm *VM, a []Value) Value {
		return String(strconv.Itoa(vm.intArg("int.to.str$", a[0])))
	}},
	{name: "missing$", in: 1, out: 1, fn: func(vm *VM, a []Value) Value {
		_, missing := a[0].(MissingField)
		return boolInt(missing)
	}},
	{name: "newline$", fn: func(vm *VM, _ []Value) Value {
		vm.out.Newline()
		return nil
	}},
	{name: "num.names$", in: 1, out: 1, fn: func(vm *VM, a []Value) Value {
		return Integer(len(vm.names.split(vm.strArg("num.names$", a[0]))))
	}},
	{name: "pop$", in: 1, exec: func(vm *VM) {
		if vm.stack.Discard() != nil {
			vm.halt(StackUnderflowError{"pop$"})
		}
	}},
	{name: "preamble$", out: 1, fn: func(vm *VM, _ []Value) Value {
		if vm.db == nil {
			return String("")
		}
		return String(vm.db.Preamble)
	}},
	{name: "purify$", in: 1, out: 1, fn: func(vm *VM, a []Value) Value {
		return String(purify(vm.strArg("purify$", a[0])))
	}},
	{name: "quote$", out: 1, fn: func(*VM, []Value) Value { return String(`"`) }},
	{name: "skip$", fn: func(*VM, []Value) Value { return nil }},
	{name: "stack$", unsafe: true, exec: (*VM).stackReport},
	{name: "substring$", in: 3, out: 1, fn: func(vm *VM, a []Value) Value {
		return String(substring(
			vm.strArg("substring$", a[0]),
			vm.intArg("substring$", a[1]),
			vm.intArg("substring$", a[2])))
	}},
	{name: "swap$", in: 2, out: 2, exec: func(vm *VM) {
		b := vm.pop("swap$")
		a := vm.pop("swap$")
		vm.push(b)
		vm.push(a)
	}},
	{name: "text.length$", in: 1, out: 1, fn: func(vm *VM, a []Value) Value {
		return Integer(textLength(vm.strArg("text.length$", a[0])))
	}},
	{name: "text.prefix$", in: 2, out: 1, fn: func(vm *VM, a []Value) Value {
		return String(textPrefix(vm.strArg("text.prefix$", a[0]), vm.intArg("text.prefix$", a[1])))
	}},
	{name: "top$", in: 1, fn: func(vm *VM, a []Value) Value {
		vm.message("%v", formatValue(a[0]))
		return nil
	}},
	{name: "type$", out: 1, fn: func(vm *VM, _ []Value) Value {
		return String(strings.ToLower(vm.entry("type$").Type))
	}},
	{name: "warning$", in: 1, fn: func(vm *VM, a []Value) Value {
		vm.warnf("%s", vm.strArg("warning$", a[0]))
		return nil
	}},
	{name: "while$", in: 2, unsafe: true, exec: (*VM).whileLoop},
	{name: "width$", in: 1, out: 1, fn: func(vm *VM, a []Value) Value {
		return Integer(textWidth(vm.strArg("width$", a[0])))
	}},
	{name: "write$", in: 1, fn: func(vm *VM, a []Value) Value {
		vm.out.WriteString(vm.strArg("write$", a[0]))
		return nil
	}},
}

func boolInt(b bool) Integer {
	if b {
		return 1
	}
	return 0
}

// compare orders two integers or two strings.
func (vm *VM) compare(op string, a, b Value) int {
	if x, ok := a.(Integer); ok {
		y := vm.intArg(op, b)
		switch {
		case int(x) < y:
			return -1
		case int(x) > y:
			return 1
		}
		return 0
	}
	return strings.Compare(vm.strArg(op, a), vm.strArg(op, b))
}

func builtinChangeCase(vm *VM, a []Value) Value {
	const op = "change.case$"
	s := vm.strArg(op, a[0])
	mode := vm.strArg(op, a[1])
	if r, size := utf8.DecodeRuneInString(mode); size == len(mode) {
		switch c := unicode.ToLower(r); c {
		case 't', 'l', 'u':
			return String(changeCase(s, c))
		}
	}
	vm.warnf("%q is an illegal case-conversion string", mode)
	return String(s)
}

func builtinChrToInt(vm *VM, a []Value) Value {
	const op = "chr.to.int$"
	s := vm.strArg(op, a[0])
	if r, size := utf8.DecodeRuneInString(s); size > 0 && size == len(s) && r != utf8.RuneError {
		return Integer(r)
	}
	vm.warnf("string %q isn't a single character", s)
	return Integer(0)
}

func builtinIntToChr(vm *VM, a []Value) Value {
	const op = "int.to.chr$"
	i := vm.intArg(op, a[0])
	if i >= 0 && i <= utf8.MaxRune && utf8.ValidRune(rune(i)) {
		return String(string(rune(i)))
	}
	vm.warnf("%v isn't a valid character code", i)
	return String("")
}

func builtinFormatName(vm *VM, a []Value) Value {
	const op = "format.name$"
	key := nameKey{
		names:   vm.strArg(op, a[0]),
		index:   vm.intArg(op, a[1]),
		pattern: vm.strArg(op, a[2]),
	}
	if s, ok := vm.names.lookup(key); ok {
		return String(s)
	}
	list := vm.names.split(key.names)
	if key.index < 1 || key.index > len(list) {
		vm.halt(IndexOutOfRangeError{op, key.index, len(list)})
	}
	pn, tooManyCommas := parseName(list[key.index-1])
	if tooManyCommas {
		vm.warnf("too many commas in name %v of %q", key.index, key.names)
	}
	s := formatName(pn, key.pattern, vm.warnf)
	vm.names.store(key, s)
	return String(s)
}

func (vm *VM) ifThenElse() {
	no := vm.pop("if$")
	yes := vm.pop("if$")
	if vm.intArg("if$", vm.pop("if$")) > 0 {
		vm.call("if$", yes)
	} else {
		vm.call("if$", no)
	}
}

func (vm *VM) whileLoop() {
	body := vm.pop("while$")
	cond := vm.pop("while$")
	for {
		vm.checkContext()
		vm.call("while$", cond)
		if vm.intArg("while$", vm.pop("while$")) <= 0 {
			return
		}
		vm.call("while$", body)
	}
}

// callType runs the function named by the current entry's type, falling
// back to default.type.
func (vm *VM) callType() {
	ent := vm.entry("call.type$")
	typ := strings.ToLower(ent.Type)
	if v := vm.vars.lookup(typ); v != nil && v.Kind == FunctionVar {
		vm.exec(v)
		return
	}
	if v := vm.vars.lookup("default.type"); v != nil && v.Kind == FunctionVar {
		vm.warnf("entry type for %q isn't style-file defined", ent.key)
		vm.exec(v)
		return
	}
	vm.warnf("entry type %q for %q isn't style-file defined, and there is no default.type", typ, ent.key)
}
