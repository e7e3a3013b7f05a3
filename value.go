package bst

import (
	"strconv"
)

// Value is anything that can sit on the operand stack: an Integer, a
// String, a MissingField, a quoted *Variable, or an anonymous *Function.
type Value interface {
	bstValue()
}

// Integer is a stack integer.
type Integer int

// String is a stack string.
type String string

// MissingField is pushed when an entry lacks the requested field. Operators
// expecting a string treat it as empty; missing$ tells the two apart.
type MissingField struct{}

func (Integer) bstValue()      {}
func (String) bstValue()       {}
func (MissingField) bstValue() {}
func (*Variable) bstValue()    {}
func (*Function) bstValue()    {}

func typeName(v Value) string {
	switch v.(type) {
	case nil:
		return "nothing"
	case Integer:
		return "integer"
	case String:
		return "string"
	case MissingField:
		return "missing field"
	case *Variable:
		return "variable"
	case *Function:
		return "function"
	}
	return "unknown"
}

// formatValue renders v the way top$ and stack$ print it.
func formatValue(v Value) string {
	switch v := v.(type) {
	case nil:
		return "<nil>"
	case Integer:
		return strconv.Itoa(int(v))
	case String:
		return strconv.Quote(string(v))
	case MissingField:
		return "<missing>"
	case *Variable:
		return "'" + v.Name
	case *Function:
		return v.Body.String()
	}
	return "?"
}
