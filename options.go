package bst

import (
	"io"

	"github.com/tliron/commonlog"

	"github.com/jcorbin/gobst/internal/bblio"
	"github.com/jcorbin/gobst/internal/logio"
)

// Option configures a VM.
type Option interface{ apply(vm *VM) }

// Options combines any number of options into one, applied in order.
func Options(opts ...Option) Option {
	var all options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			all = append(all, impl...)
		default:
			all = append(all, impl)
		}
	}
	return all
}

type options []Option

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
}

var defaults = options{
	minCrossrefsOption(DefaultMinCrossrefs),
	wrapWidthOption(bblio.DefaultWidth),
	inliningOption(true),
}

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) {
	vm.logfn = logfn
}

type loggerOption struct{ commonlog.Logger }

func (lo loggerOption) apply(vm *VM) {
	log := lo.Logger
	vm.logfn = log.Debugf
	vm.diagfn = func(level, text string) {
		switch level {
		case logio.Warning:
			log.Warningf("%s", text)
		case logio.Error:
			log.Errorf("%s", text)
		default:
			log.Infof("%s", text)
		}
	}
}

type citationsOption []string
type readerOption struct{ DatabaseReader }
type minCrossrefsOption int
type wrapWidthOption int
type inliningOption bool
type macrosOption map[string]string
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }

func (keys citationsOption) apply(vm *VM) {
	vm.citations = append(vm.citations, keys...)
}

func (ro readerOption) apply(vm *VM) {
	vm.reader = ro.DatabaseReader
}

func (n minCrossrefsOption) apply(vm *VM) {
	vm.minCrossrefs = int(n)
}

func (width wrapWidthOption) apply(vm *VM) {
	vm.out.Width = int(width)
}

func (inline inliningOption) apply(vm *VM) {
	vm.inline = bool(inline)
}

func (macros macrosOption) apply(vm *VM) {
	if vm.macros == nil {
		vm.macros = make(map[string]string, len(macros))
	}
	for name, text := range macros {
		vm.macros[name] = text
	}
}

func (o outputOption) apply(vm *VM) {
	vm.out.Dest = o.Writer
}

func (o teeOption) apply(vm *VM) {
	vm.out.Tees = append(vm.out.Tees, o.Writer)
}
