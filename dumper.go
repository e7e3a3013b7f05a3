package bst

import (
	"fmt"
	"io"
	"strings"

	"github.com/jcorbin/gobst/internal/logio"
)

// Dump writes a readable snapshot of the session state to w: the cited
// entries, the stack, every declared variable, and every compiled unit.
func (vm *VM) Dump(w io.Writer) {
	vmDumper{vm: vm, out: w}.dump()
}

type vmDumper struct {
	vm  *VM
	out io.Writer
}

func (dump vmDumper) dump() {
	fmt.Fprintf(dump.out, "# Session %v\n", dump.vm.id)
	if dump.vm.readDone {
		keys := make([]string, len(dump.vm.cited))
		for i, ent := range dump.vm.cited {
			keys[i] = ent.key
		}
		fmt.Fprintf(dump.out, "  cited: %v\n", strings.Join(keys, " "))
	}
	if ent := dump.vm.current; ent != nil {
		fmt.Fprintf(dump.out, "  current: %v @%v\n", ent.key, ent.Type)
	}
	if pending := dump.vm.out.Pending(); pending != "" {
		fmt.Fprintf(dump.out, "  pending: %q\n", pending)
	}
	dump.dumpStack()
	dump.dumpVars()
	dump.dumpCode()
}

func (dump vmDumper) dumpStack() {
	vals := dump.vm.stack.Values()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatValue(v)
	}
	fmt.Fprintf(dump.out, "  stack: [%v]\n", strings.Join(parts, " "))
}

func (dump vmDumper) dumpVars() {
	width := 0
	for _, v := range dump.vm.vars.order {
		if v.Kind != Builtin && len(v.Name) > width {
			width = len(v.Name)
		}
	}
	fmt.Fprintf(dump.out, "# Variables\n")
	for _, v := range dump.vm.vars.order {
		switch v.Kind {
		case Builtin:
			continue
		case GlobalInteger, GlobalString:
			fmt.Fprintf(dump.out, "  %-*v %v = %v\n", width, v.Name, v.Kind, formatValue(v.value))
		case EntryInteger, EntryString:
			if ent := dump.vm.current; ent != nil {
				if val, ok := ent.vars[v.Name]; ok {
					fmt.Fprintf(dump.out, "  %-*v %v = %v\n", width, v.Name, v.Kind, formatValue(val))
					continue
				}
			}
			fmt.Fprintf(dump.out, "  %-*v %v\n", width, v.Name, v.Kind)
		default:
			fmt.Fprintf(dump.out, "  %-*v %v\n", width, v.Name, v.Kind)
		}
	}
}

func (dump vmDumper) dumpCode() {
	fmt.Fprintf(dump.out, "# Code\n")
	for _, fn := range dump.vm.units {
		fmt.Fprintf(dump.out, "  %v: %v ops, %v regs %v\n", fn.Name, len(fn.ops), fn.nregs, fn.Body)
	}
}

// dumpValues writes one value per line, top of stack first.
func (dump vmDumper) dumpValues(vals []Value) {
	for i := len(vals) - 1; i >= 0; i-- {
		fmt.Fprintf(dump.out, "%v\n", formatValue(vals[i]))
	}
}

// stackReport pops the whole stack, printing it top first as messages.
func (vm *VM) stackReport() {
	vals := vm.stack.Values()
	vm.stack.Reset()
	lw := logio.Writer{Log: &vm.diag, Level: logio.Message}
	defer lw.Close()
	vmDumper{vm: vm, out: &lw}.dumpValues(vals)
}

func (vm *VM) message(mess string, args ...interface{}) {
	vm.diag.Printf(logio.Message, mess, args...)
}
