// Package panicerr converts halts, panics, and goroutine exits into errors.
package panicerr

// Recover runs f in a new goroutine, returning its error. A Halt inside f
// returns the halted error; any other panic or runtime.Goexit is returned as
// an error naming the given scope.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer recoverExit(name, errch)
		defer recoverPanic(name, errch)
		errch <- f()
	}()
	return <-errch
}
