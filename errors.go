package bst

import (
	"errors"
	"fmt"
)

var errAlreadyRun = errors.New("session already run")

// StackUnderflowError reports an operator that found too few values on the
// operand stack.
type StackUnderflowError struct{ Op string }

func (err StackUnderflowError) Error() string {
	if err.Op == "" {
		return "stack underflow"
	}
	return fmt.Sprintf("%v: stack underflow", err.Op)
}

// TypeMismatchError reports an operator that popped a value of the wrong
// type.
type TypeMismatchError struct {
	Op   string
	Want string
	Got  Value
}

func (err TypeMismatchError) Error() string {
	return fmt.Sprintf("%v: expected %v, got %v %v", err.Op, err.Want, typeName(err.Got), formatValue(err.Got))
}

// AssignmentError reports an assignment to a read only variable.
type AssignmentError struct {
	Name string
	Kind VarKind
}

func (err AssignmentError) Error() string {
	return fmt.Sprintf("cannot assign to %v %v", err.Kind, err.Name)
}

// UndefinedError reports a reference to a name that was never declared.
type UndefinedError struct {
	Name string
	What string
}

func (err UndefinedError) Error() string {
	return fmt.Sprintf("%v %v", err.What, err.Name)
}

// DuplicateError reports a second declaration of a name.
type DuplicateError struct {
	Name string
	Kind VarKind
}

func (err DuplicateError) Error() string {
	return fmt.Sprintf("%v already declared as %v", err.Name, err.Kind)
}

// IndexOutOfRangeError reports a name index outside a name list.
type IndexOutOfRangeError struct {
	Op    string
	Index int
	Len   int
}

func (err IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%v: index %v out of range [1, %v]", err.Op, err.Index, err.Len)
}

// NoEntryError reports entry scoped access while no entry is bound, as
// happens under EXECUTE.
type NoEntryError struct{ Op string }

func (err NoEntryError) Error() string {
	return fmt.Sprintf("%v: no current entry", err.Op)
}

// CommandError reports a malformed or misplaced top-level command.
type CommandError struct {
	Command string
	Reason  string
}

func (err CommandError) Error() string {
	return fmt.Sprintf("%v: %v", err.Command, err.Reason)
}
