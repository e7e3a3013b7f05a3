package bst

import (
	"fmt"
	"sort"
	"strings"
)

// command runs one top-level command.
func (vm *VM) command(cmd Command) {
	vm.checkContext()
	vm.logf("#", "%v", cmd)
	switch strings.ToUpper(cmd.Name) {
	case "ENTRY":
		vm.cmdEntry(cmd)
	case "EXECUTE":
		fn := vm.cmdFunctionArg(cmd)
		vm.exec(fn)
		vm.checkStack("EXECUTE " + fn.Name)
	case "FUNCTION":
		vm.cmdFunction(cmd)
	case "INTEGERS":
		vm.cmdGlobals(cmd, GlobalInteger)
	case "ITERATE":
		vm.requireRead(cmd)
		vm.forEach("ITERATE", vm.cited, vm.cmdFunctionArg(cmd))
	case "MACRO":
		vm.cmdMacro(cmd)
	case "READ":
		vm.cmdRead(cmd)
	case "REVERSE":
		vm.requireRead(cmd)
		reversed := make([]*citedEntry, len(vm.cited))
		for i, ent := range vm.cited {
			reversed[len(reversed)-1-i] = ent
		}
		vm.forEach("REVERSE", reversed, vm.cmdFunctionArg(cmd))
	case "SORT":
		vm.requireArgs(cmd, 0)
		vm.requireRead(cmd)
		vm.sortCited()
	case "STRINGS":
		vm.cmdGlobals(cmd, GlobalString)
	default:
		vm.warnf("unknown command %q skipped", cmd.Name)
	}
}

func (vm *VM) commandError(cmd Command, mess string, args ...interface{}) {
	vm.halt(CommandError{strings.ToUpper(cmd.Name), fmt.Sprintf(mess, args...)})
}

func (vm *VM) requireArgs(cmd Command, n int) {
	if len(cmd.Args) != n {
		vm.commandError(cmd, "expected %v arguments, got %v", n, len(cmd.Args))
	}
}

func (vm *VM) requireRead(cmd Command) {
	if !vm.readDone {
		vm.commandError(cmd, "illegal before the READ command")
	}
}

// identArg returns the identifiers of argument i.
func (vm *VM) identArg(cmd Command, i int) []string {
	names := make([]string, 0, len(cmd.Args[i]))
	for _, in := range cmd.Args[i] {
		id, ok := in.(Ident)
		if !ok {
			vm.commandError(cmd, "argument %v: expected a name, got %v", i+1, Block{in})
		}
		names = append(names, string(id))
	}
	return names
}

func (vm *VM) singleIdentArg(cmd Command, i int) string {
	names := vm.identArg(cmd, i)
	if len(names) != 1 {
		vm.commandError(cmd, "argument %v: expected a single name", i+1)
	}
	return names[0]
}

// cmdFunctionArg resolves the function argument of EXECUTE, ITERATE, and
// REVERSE. An inline block compiles to an anonymous unit.
func (vm *VM) cmdFunctionArg(cmd Command) *Variable {
	vm.requireArgs(cmd, 1)
	arg := cmd.Args[0]
	if len(arg) == 1 {
		if id, ok := arg[0].(Ident); ok {
			return vm.lookup(string(id), "undefined function")
		}
	}
	fn := vm.compile(strings.ToLower(cmd.Name), arg)
	return &Variable{Name: fn.Name, Kind: FunctionVar, fn: fn}
}

func (vm *VM) cmdEntry(cmd Command) {
	vm.requireArgs(cmd, 3)
	if vm.entryDeclared {
		vm.commandError(cmd, "illegal, another ENTRY command")
	}
	if vm.readDone {
		vm.commandError(cmd, "illegal after the READ command")
	}
	vm.entryDeclared = true
	for _, name := range vm.identArg(cmd, 0) {
		if strings.EqualFold(name, "crossref") {
			continue
		}
		vm.declare(name, Field)
	}
	vm.declare("crossref", Crossref)
	for _, name := range vm.identArg(cmd, 1) {
		vm.declare(name, EntryInteger)
	}
	for _, name := range vm.identArg(cmd, 2) {
		vm.declare(name, EntryString)
	}
}

func (vm *VM) cmdFunction(cmd Command) {
	vm.requireArgs(cmd, 2)
	name := strings.ToLower(vm.singleIdentArg(cmd, 0))
	if prior := vm.vars.lookup(name); prior != nil {
		vm.halt(DuplicateError{name, prior.Kind})
	}
	fn := vm.compile(name, cmd.Args[1])
	vm.declare(name, FunctionVar).fn = fn
}

func (vm *VM) cmdGlobals(cmd Command, kind VarKind) {
	vm.requireArgs(cmd, 1)
	for _, name := range vm.identArg(cmd, 0) {
		vm.declare(name, kind)
	}
}

func (vm *VM) cmdMacro(cmd Command) {
	vm.requireArgs(cmd, 2)
	if vm.readDone {
		vm.commandError(cmd, "illegal after the READ command")
	}
	name := strings.ToLower(vm.singleIdentArg(cmd, 0))
	if len(cmd.Args[1]) != 1 {
		vm.commandError(cmd, "expected a single string for macro %v", name)
	}
	text, ok := cmd.Args[1][0].(StringLit)
	if !ok {
		vm.commandError(cmd, "expected a string for macro %v, got %v", name, cmd.Args[1])
	}
	if vm.macros == nil {
		vm.macros = make(map[string]string)
	}
	vm.macros[name] = string(text)
}

func (vm *VM) cmdRead(cmd Command) {
	vm.requireArgs(cmd, 0)
	if vm.readDone {
		vm.commandError(cmd, "illegal, another READ command")
	}
	vm.readDone = true

	var db *Database
	if vm.reader != nil {
		var err error
		db, err = vm.reader.ReadDatabase(vm.ctx, vm.macros, vm.citations)
		vm.haltif(err)
	}
	if db == nil {
		db = NewDatabase("")
	}
	vm.db = db

	keys := vm.resolveCitations(db, vm.citations)
	keys = expandCrossrefs(db, keys, vm.minCrossrefs, vm.warnf)

	vm.cited = vm.cited[:0]
	for _, key := range keys {
		ent, ok := db.Lookup(key)
		if !ok {
			vm.warnf("I didn't find a database entry for %q", key)
			continue
		}
		if ent.Key != key {
			vm.warnf("case mismatch, database key %q, cite key %q", ent.Key, key)
		}
		vm.cited = append(vm.cited, &citedEntry{
			key:   key,
			Entry: ent,
			vars:  make(map[string]Value),
		})
	}
	vm.logf("#", "READ %v entries for %v citations", len(vm.cited), len(vm.citations))
}

// resolveCitations expands the "*" wildcard to every database key and
// drops repeated citations, comparing keys case-insensitively.
func (vm *VM) resolveCitations(db *Database, citations []string) []string {
	seen := make(map[string]string, len(citations))
	keys := make([]string, 0, len(citations))
	add := func(key string) {
		lk := strings.ToLower(key)
		if prior, dup := seen[lk]; dup {
			if prior != key {
				vm.warnf("case mismatch error between cite keys %v and %v", key, prior)
			}
			return
		}
		seen[lk] = key
		keys = append(keys, key)
	}
	for _, key := range citations {
		if key != "*" {
			add(key)
			continue
		}
		for _, ent := range db.Entries {
			add(ent.Key)
		}
	}
	return keys
}

// sortCited orders the cited entries by their sort.key$ strings, keeping
// equal keys in their prior order.
func (vm *VM) sortCited() {
	keyOf := func(ent *citedEntry) string {
		if s, ok := ent.vars["sort.key$"].(String); ok {
			return string(s)
		}
		return ""
	}
	sort.SliceStable(vm.cited, func(i, j int) bool {
		return keyOf(vm.cited[i]) < keyOf(vm.cited[j])
	})
}
