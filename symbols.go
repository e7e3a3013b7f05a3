package bst

import "strings"

// VarKind classifies a Variable.
type VarKind uint8

// Variable kinds.
const (
	GlobalInteger VarKind = iota + 1
	GlobalString
	EntryInteger
	EntryString
	Field
	Crossref
	FunctionVar
	Builtin
)

var varKindNames = [...]string{
	GlobalInteger: "global integer",
	GlobalString:  "global string",
	EntryInteger:  "entry integer",
	EntryString:   "entry string",
	Field:         "field",
	Crossref:      "crossref field",
	FunctionVar:   "function",
	Builtin:       "builtin function",
}

func (k VarKind) String() string {
	if int(k) < len(varKindNames) && varKindNames[k] != "" {
		return varKindNames[k]
	}
	return "unknown"
}

// Variable is a named slot in a session's variable table. Executing a
// variable pushes its value, or runs it when it is a function.
type Variable struct {
	Name string
	Kind VarKind

	value   Value // global integer and string values
	fn      *Function
	builtin *builtin
}

// symbols is the session's variable table. Names are case-insensitive and
// stored lower cased; declaration order is kept for dumps.
type symbols struct {
	order []*Variable
	vars  map[string]*Variable
}

func (sym symbols) lookup(name string) *Variable {
	return sym.vars[strings.ToLower(name)]
}

func (sym *symbols) declare(name string, kind VarKind) (*Variable, error) {
	name = strings.ToLower(name)
	if prior, defined := sym.vars[name]; defined {
		return nil, DuplicateError{name, prior.Kind}
	}
	if sym.vars == nil {
		sym.vars = make(map[string]*Variable)
	}
	v := &Variable{Name: name, Kind: kind}
	switch kind {
	case GlobalInteger:
		v.value = Integer(0)
	case GlobalString:
		v.value = String("")
	}
	sym.order = append(sym.order, v)
	sym.vars[name] = v
	return v, nil
}
