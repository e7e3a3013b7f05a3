package bst

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/jcorbin/gobst/internal/logio"
	"github.com/jcorbin/gobst/internal/panicerr"
)

// New creates a session.
func New(opts ...Option) *VM {
	vm := &VM{id: uuid.New()}
	defaults.apply(vm)
	Options(opts...).apply(vm)
	vm.diag.SetSink(func(level, text string) {
		vm.logf("!", "%v--%v", level, text)
		if vm.diagfn != nil {
			vm.diagfn(level, text)
		}
	})
	for _, b := range builtins {
		vm.declare(b.name, Builtin).builtin = b
	}
	vm.declare("global.max$", GlobalInteger).value = Integer(20000)
	vm.declare("entry.max$", GlobalInteger).value = Integer(250)
	vm.declare("sort.key$", EntryString)
	return vm
}

// ID returns the session's unique id, which prefixes its trace log.
func (vm *VM) ID() uuid.UUID { return vm.id }

// Run executes a style program. Commands run in order; the first fatal
// error aborts the run and is returned. Output goes to the writers given
// by WithOutput and WithTee, and only once the whole program succeeds.
// A VM runs one program only.
func (vm *VM) Run(ctx context.Context, prog []Command) error {
	if vm.ran {
		return errAlreadyRun
	}
	vm.ran = true
	if ctx == nil {
		ctx = context.Background()
	}

	defer vm.withLogPrefix(vm.id.String()[:8] + " ")()
	err := panicerr.Recover("bst", func() error {
		vm.ctx = ctx
		for _, cmd := range prog {
			vm.command(cmd)
		}
		vm.out.Flush()
		return nil
	})
	vm.current = nil
	if err != nil {
		vm.diag.Printf(logio.Error, "%v", err)
		return err
	}

	vm.logf("#", "done: %v lines, %v warnings", vm.out.Lines(), vm.diag.Count(logio.Warning))
	return vm.out.Commit()
}

// Output returns the formatted bibliography produced so far.
func (vm *VM) Output() string { return vm.out.String() }

// Warnings returns the text of every warning, in order.
func (vm *VM) Warnings() []string { return vm.diag.Texts(logio.Warning) }

// Messages returns the text printed by top$ and stack$, in order.
func (vm *VM) Messages() []string { return vm.diag.Texts(logio.Message) }

// Diagnostics returns every warning, message, and error, each prefixed by
// its level in BibTeX's manner, like "Warning--empty author in doe20".
func (vm *VM) Diagnostics() []string {
	ents := vm.diag.Entries()
	lines := make([]string, len(ents))
	for i, ent := range ents {
		lines[i] = ent.String()
	}
	return lines
}

// ExitCode returns 0 after a spotless run, 1 after warnings, and 2 after an
// error.
func (vm *VM) ExitCode() int { return vm.diag.ExitCode() }

// Result is the outcome of formatting a bibliography.
type Result struct {
	Name     string
	Output   string
	Warnings []string
	Messages []string
}

// Format runs prog in a new session built with opts.
func Format(ctx context.Context, prog []Command, opts ...Option) (Result, error) {
	vm := New(opts...)
	err := vm.Run(ctx, prog)
	return Result{
		Output:   vm.Output(),
		Warnings: vm.Warnings(),
		Messages: vm.Messages(),
	}, err
}

// IsFatal reports whether err aborted a run because of the style program,
// rather than cancellation or a failing reader or writer.
func IsFatal(err error) bool {
	var (
		underflow StackUnderflowError
		mismatch  TypeMismatchError
		assign    AssignmentError
		undefined UndefinedError
		dup       DuplicateError
		index     IndexOutOfRangeError
		noEntry   NoEntryError
		command   CommandError
	)
	return errors.As(err, &underflow) ||
		errors.As(err, &mismatch) ||
		errors.As(err, &assign) ||
		errors.As(err, &undefined) ||
		errors.As(err, &dup) ||
		errors.As(err, &index) ||
		errors.As(err, &noEntry) ||
		errors.As(err, &command)
}

// WithCitations adds citation keys, in order. The key "*" cites every
// database entry.
func WithCitations(keys ...string) Option { return citationsOption(keys) }

// WithDatabase serves entries from db.
func WithDatabase(db *Database) Option { return readerOption{StaticDatabase{db}} }

// WithDatabaseReader sets the source READ draws entries from.
func WithDatabaseReader(r DatabaseReader) Option { return readerOption{r} }

// WithMinCrossrefs sets how many citing entries a cross-referenced parent
// needs before it is cited itself; the default is DefaultMinCrossrefs.
func WithMinCrossrefs(n int) Option { return minCrossrefsOption(n) }

// WithWrapWidth sets the output line width.
func WithWrapWidth(width int) Option { return wrapWidthOption(width) }

// WithInlining toggles register binding of stack safe instructions.
func WithInlining(inline bool) Option { return inliningOption(inline) }

// WithMacros predefines macros, as if by MACRO commands.
func WithMacros(macros map[string]string) Option {
	lower := make(macrosOption, len(macros))
	for name, text := range macros {
		lower[strings.ToLower(name)] = text
	}
	return lower
}

// WithOutput sets the main writer that output goes to after a successful
// run; a later WithOutput replaces it. Writers added by WithTee are kept
// whatever the order.
func WithOutput(w io.Writer) Option { return outputOption{w} }

// WithTee adds another output writer, written after the WithOutput one.
func WithTee(w io.Writer) Option { return teeOption{w} }

// WithLogf sets a printf-style function that receives a trace of commands,
// function calls, and diagnostics.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

// WithLogger sends the trace to log at debug level, and diagnostics at
// their matching levels.
func WithLogger(log commonlog.Logger) Option { return loggerOption{log} }
