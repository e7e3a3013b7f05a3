package panicerr

import "errors"

// Halt aborts the surrounding Recover scope, which then returns err.
// A nil err halts normally, and Recover returns nil.
func Halt(err error) {
	panic(haltError{err})
}

type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return "halted: " + err.error.Error()
	}
	return "halted"
}

func (err haltError) Unwrap() error { return err.error }

// IsHalt returns true if err carries a Halt that escaped its Recover scope.
func IsHalt(err error) bool {
	var he haltError
	return errors.As(err, &he)
}
