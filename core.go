package bst

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jcorbin/gobst/internal/bblio"
	"github.com/jcorbin/gobst/internal/logio"
	"github.com/jcorbin/gobst/internal/panicerr"
)

// VM is one formatting session: a variable table, an operand stack, the
// compiled code units, the cited entries, and the output being built.
// A VM runs a single program once; it is not safe for concurrent use, but
// separate VMs share nothing and may run in parallel.
type VM struct {
	logging
	id uuid.UUID

	ctx context.Context
	ran bool

	stack Stack
	vars  symbols
	units []*Function
	named map[string]*Function

	inline       bool
	minCrossrefs int
	macros       map[string]string
	citations    []string
	reader       DatabaseReader

	entryDeclared bool
	readDone      bool
	db            *Database
	cited         []*citedEntry
	current       *citedEntry

	out    bblio.LineBuffer
	diag   logio.Logger
	diagfn func(level, text string)

	names nameCache
}

// citedEntry is a database entry as seen by one session: the key it was
// cited under, plus its entry scoped variable values.
type citedEntry struct {
	key string
	*Entry
	vars map[string]Value
}

type logging struct {
	logfn func(mess string, args ...interface{})

	markWidth int
}

func (log *logging) withLogPrefix(prefix string) func() {
	logfn := log.logfn
	if logfn == nil {
		return func() {}
	}
	log.logfn = func(mess string, args ...interface{}) {
		logfn(prefix+mess, args...)
	}
	return func() {
		log.logfn = logfn
	}
}

func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		for _, r := range mark {
			mark = strings.Repeat(string(r), n) + mark
			break
		}
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}

func (vm *VM) halt(err error) {
	// ignore any panics while logging
	func() {
		defer func() { recover() }()
		vm.logf("#", "halt error: %v", err)
	}()
	panicerr.Halt(err)
}

func (vm *VM) haltif(err error) {
	if err != nil {
		vm.halt(err)
	}
}

func (vm *VM) warnf(mess string, args ...interface{}) {
	vm.diag.Printf(logio.Warning, mess, args...)
}

func (vm *VM) checkContext() {
	if vm.ctx != nil {
		vm.haltif(vm.ctx.Err())
	}
}

//// operand stack

func (vm *VM) push(v Value) {
	vm.stack.Push(v)
}

func (vm *VM) pop(op string) Value {
	v, err := vm.stack.Pop()
	if err != nil {
		vm.halt(StackUnderflowError{op})
	}
	return v
}

func (vm *VM) intArg(op string, v Value) int {
	if i, ok := v.(Integer); ok {
		return int(i)
	}
	vm.halt(TypeMismatchError{op, "integer", v})
	return 0
}

func (vm *VM) strArg(op string, v Value) string {
	switch v := v.(type) {
	case String:
		return string(v)
	case MissingField:
		return ""
	}
	vm.halt(TypeMismatchError{op, "string", v})
	return ""
}

func (vm *VM) varArg(op string, v Value) *Variable {
	if vr, ok := v.(*Variable); ok {
		return vr
	}
	vm.halt(TypeMismatchError{op, "variable", v})
	return nil
}

//// variables

func (vm *VM) declare(name string, kind VarKind) *Variable {
	v, err := vm.vars.declare(name, kind)
	vm.haltif(err)
	return v
}

func (vm *VM) lookup(name, what string) *Variable {
	v := vm.vars.lookup(name)
	if v == nil {
		vm.halt(UndefinedError{strings.ToLower(name), what})
	}
	return v
}

// exec runs a variable: functions are called, anything else pushes its
// current value.
func (vm *VM) exec(v *Variable) {
	switch v.Kind {
	case FunctionVar:
		v.fn.call(vm)
	case Builtin:
		v.builtin.execute(vm)
	default:
		vm.push(vm.read(v))
	}
}

// call runs a function value, as popped by if$, while$, and friends.
func (vm *VM) call(op string, v Value) {
	switch f := v.(type) {
	case *Function:
		f.call(vm)
	case *Variable:
		vm.exec(f)
	default:
		vm.halt(TypeMismatchError{op, "function", v})
	}
}

func (vm *VM) read(v *Variable) Value {
	switch v.Kind {
	case GlobalInteger, GlobalString:
		return v.value
	case EntryInteger:
		if val, ok := vm.entry(v.Name).vars[v.Name]; ok {
			return val
		}
		return Integer(0)
	case EntryString:
		if val, ok := vm.entry(v.Name).vars[v.Name]; ok {
			return val
		}
		return String("")
	case Field:
		if s, ok := vm.db.Field(vm.entry(v.Name).Entry, v.Name); ok {
			return String(s)
		}
		return MissingField{}
	case Crossref:
		if parent, ok := vm.db.Parent(vm.entry(v.Name).Entry); ok {
			return String(parent.Key)
		}
		return MissingField{}
	}
	vm.halt(TypeMismatchError{v.Name, "data variable", v})
	return nil
}

func (vm *VM) assign(v *Variable, val Value) {
	switch v.Kind {
	case GlobalInteger:
		v.value = Integer(vm.intArg(":=", val))
	case GlobalString:
		v.value = String(vm.strArg(":=", val))
	case EntryInteger:
		vm.entry(":=").vars[v.Name] = Integer(vm.intArg(":=", val))
	case EntryString:
		vm.entry(":=").vars[v.Name] = String(vm.strArg(":=", val))
	default:
		vm.halt(AssignmentError{v.Name, v.Kind})
	}
}

//// entries

func (vm *VM) entry(op string) *citedEntry {
	if vm.current == nil {
		vm.halt(NoEntryError{op})
	}
	return vm.current
}

// forEach runs fn with each cited entry bound in turn, checking for
// cancellation and a clean stack around every call.
func (vm *VM) forEach(op string, entries []*citedEntry, fn *Variable) {
	defer func() { vm.current = nil }()
	for _, ent := range entries {
		vm.checkContext()
		vm.current = ent
		vm.logf(">", "%v %v %v", op, fn.Name, ent.key)
		vm.exec(fn)
		vm.checkStack(op + " " + fn.Name + " for " + ent.key)
	}
}

func (vm *VM) checkStack(where string) {
	if n := vm.stack.Len(); n > 0 {
		vals := vm.stack.Values()
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = formatValue(v)
		}
		vm.warnf("ptr=%v, stack=%v, the literal stack isn't empty after %v",
			n, strings.Join(parts, " "), where)
		vm.stack.Reset()
	}
}
