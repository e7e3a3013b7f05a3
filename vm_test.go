package bst

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/gobst/internal/panicerr"
)

type vmTestCases []vmTestCase

func (vmts vmTestCases) run(t *testing.T) {
	{
		var exclusive []vmTestCase
		for _, vmt := range vmts {
			if vmt.exclusive {
				exclusive = append(exclusive, vmt)
			}
		}
		if len(exclusive) > 0 {
			vmts = exclusive
		}
	}
	for _, vmt := range vmts {
		t.Run(vmt.name, vmt.run)
	}
}

// bothModes runs every case with register binding on, and again with it
// off; the two must agree.
func bothModes(vmts ...vmTestCase) vmTestCases {
	all := make(vmTestCases, 0, 2*len(vmts))
	for _, vmt := range vmts {
		all = append(all, vmt)
		generic := vmt.withOptions(WithInlining(false))
		generic.name += "/generic"
		all = append(all, generic)
	}
	return all
}

func vmTest(name string) (vmt vmTestCase) {
	vmt.name = name
	return vmt
}

type optFunc func(vm *VM)

func (f optFunc) apply(vm *VM) { f(vm) }

type vmTestCase struct {
	name    string
	opts    []Option
	src     string
	setup   []func(vm *VM)
	ops     []func(vm *VM)
	expect  []func(t *testing.T, vm *VM)
	timeout time.Duration
	wantErr error

	exclusive bool
}

func (vmt vmTestCase) apply(wraps ...func(vmTestCase) vmTestCase) vmTestCase {
	for _, wrap := range wraps {
		vmt = wrap(vmt)
	}
	return vmt
}

func (vmt vmTestCase) exclusiveTest() vmTestCase {
	vmt.exclusive = true
	return vmt
}

func (vmt vmTestCase) withOptions(opts ...Option) vmTestCase {
	vmt.opts = append(vmt.opts[:len(vmt.opts):len(vmt.opts)], opts...)
	return vmt
}

func (vmt vmTestCase) withProgram(src string) vmTestCase {
	vmt.src += src + "\n"
	return vmt
}

func (vmt vmTestCase) withSetup(setup func(vm *VM)) vmTestCase {
	vmt.setup = append(vmt.setup[:len(vmt.setup):len(vmt.setup)], setup)
	return vmt
}

func (vmt vmTestCase) withStack(values ...Value) vmTestCase {
	return vmt.withSetup(func(vm *VM) {
		for _, v := range values {
			vm.push(v)
		}
	})
}

// withEntry binds ent as the current entry, as if READ had cited it.
func (vmt vmTestCase) withEntry(ent *Entry) vmTestCase {
	return vmt.withSetup(func(vm *VM) {
		if vm.db == nil {
			vm.db = NewDatabase("")
		}
		vm.db.Add(ent)
		vm.readDone = true
		cited := &citedEntry{key: ent.Key, Entry: ent, vars: make(map[string]Value)}
		vm.cited = append(vm.cited, cited)
		vm.current = cited
	})
}

func (vmt vmTestCase) do(ops ...func(vm *VM)) vmTestCase {
	vmt.ops = append(vmt.ops[:len(vmt.ops):len(vmt.ops)], ops...)
	return vmt
}

func (vmt vmTestCase) withTimeout(timeout time.Duration) vmTestCase {
	vmt.timeout = timeout
	return vmt
}

func (vmt vmTestCase) expectError(err error) vmTestCase {
	vmt.wantErr = err
	return vmt
}

func (vmt vmTestCase) expecting(expect func(t *testing.T, vm *VM)) vmTestCase {
	vmt.expect = append(vmt.expect[:len(vmt.expect):len(vmt.expect)], expect)
	return vmt
}

func (vmt vmTestCase) expectStack(values ...Value) vmTestCase {
	return vmt.expecting(func(t *testing.T, vm *VM) {
		if values == nil {
			values = []Value{}
		}
		got := vm.stack.Values()
		if got == nil {
			got = []Value{}
		}
		assert.Equal(t, values, got, "expected stack values")
	})
}

func (vmt vmTestCase) expectOutput(output string) vmTestCase {
	return vmt.expecting(func(t *testing.T, vm *VM) {
		assert.Equal(t, output, vm.Output(), "expected output")
	})
}

func (vmt vmTestCase) expectWarnings(warnings ...string) vmTestCase {
	return vmt.expecting(func(t *testing.T, vm *VM) {
		assert.Equal(t, warnings, vm.Warnings(), "expected warnings")
	})
}

func (vmt vmTestCase) expectMessages(messages ...string) vmTestCase {
	return vmt.expecting(func(t *testing.T, vm *VM) {
		assert.Equal(t, messages, vm.Messages(), "expected messages")
	})
}

func (vmt vmTestCase) expectGlobal(name string, value Value) vmTestCase {
	return vmt.expecting(func(t *testing.T, vm *VM) {
		v := vm.vars.lookup(name)
		if assert.NotNil(t, v, "expected variable %v", name) {
			assert.Equal(t, value, v.value, "expected %v value", name)
		}
	})
}

func (vmt vmTestCase) run(t *testing.T) {
	vmt.runVMTest(t, vmt.buildVM(t))
	if t.Failed() {
		// run again with tracing on
		ctx, cancel := vmt.context()
		defer cancel()
		_ = vmt.runVM(ctx, t, vmt.buildVM(t, WithLogf(t.Logf)))
	}
}

func (vmt vmTestCase) context() (context.Context, context.CancelFunc) {
	const defaultTimeout = time.Second
	timeout := vmt.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (vmt vmTestCase) runVMTest(t *testing.T, vm *VM) {
	ctx, cancel := vmt.context()
	defer cancel()

	defer func() {
		if t.Failed() {
			vmt.dumpToTest(t, vm)
		}
	}()

	if err := vmt.runVM(ctx, t, vm); vmt.wantErr != nil {
		assert.True(t, errors.Is(err, vmt.wantErr), "expected error: %v\ngot: %+v", vmt.wantErr, err)
	} else {
		assert.NoError(t, err, "unexpected VM run error")
	}

	if !t.Failed() {
		for _, expect := range vmt.expect {
			expect(t, vm)
		}
	}
}

// runVM runs the test program; with ops, the program's commands run first,
// then any setup, then the ops.
func (vmt vmTestCase) runVM(ctx context.Context, t *testing.T, vm *VM) error {
	prog := mustParseBST(t, vmt.src)
	if len(vmt.ops) == 0 && len(vmt.setup) == 0 {
		return vm.Run(ctx, prog)
	}
	return panicerr.Recover("vmTestCase.ops", func() error {
		vm.ctx = ctx
		for _, cmd := range prog {
			vm.command(cmd)
		}
		for _, setup := range vmt.setup {
			setup(vm)
		}
		for i, op := range vmt.ops {
			vm.logf(">", "do[%v]", i)
			op(vm)
		}
		return nil
	})
}

func (vmt vmTestCase) buildVM(t *testing.T, opts ...Option) *VM {
	vm := New(append(vmt.opts[:len(vmt.opts):len(vmt.opts)], opts...)...)
	require.NotNil(t, vm)
	return vm
}

func (vmt vmTestCase) dumpToTest(t *testing.T, vm *VM) {
	var sb strings.Builder
	vm.Dump(&sb)
	t.Logf("%v", sb.String())
}

//// ops

// run executes the named variable, as an identifier in a function body
// would.
func run(name string) func(vm *VM) {
	return func(vm *VM) {
		vm.exec(vm.lookup(name, "undefined function"))
	}
}

func push(values ...Value) func(vm *VM) {
	return func(vm *VM) {
		for _, v := range values {
			vm.push(v)
		}
	}
}

//// utilities

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}
