package panicerr

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBang = errors.New("bang")

func TestRecover(t *testing.T) {
	for _, tc := range []struct {
		name      string
		err       string
		wraps     error
		haveStack bool
		isPanic   bool
		isExit    bool
		fun       func() error
	}{
		{
			name: "normal",
			fun:  func() error { return nil },
		},
		{
			name:  "normal err",
			err:   "bang",
			wraps: errBang,
			fun:   func() error { return errBang },
		},
		{
			name:  "halt",
			err:   "bang",
			wraps: errBang,
			fun:   func() error { Halt(errBang); return nil },
		},
		{
			name: "halt nil",
			fun:  func() error { Halt(nil); return errBang },
		},
		{
			name:  "halt wrapped",
			err:   "run: bang",
			wraps: errBang,
			fun:   func() error { Halt(fmt.Errorf("run: %w", errBang)); return nil },
		},
		{
			name:      "panic err",
			err:       "panic err paniced: bang",
			wraps:     errBang,
			haveStack: true,
			isPanic:   true,
			fun:       func() error { panic(errBang) },
		},
		{
			name:      "hello panic",
			err:       "hello panic paniced: hello",
			haveStack: true,
			isPanic:   true,
			fun:       func() error { panic("hello") },
		},
		{
			name:   "exit",
			err:    "exit called runtime.Goexit",
			isExit: true,
			fun:    func() error { runtime.Goexit(); return nil },
		},
		{
			name:      "index panic",
			err:       "index panic paniced: runtime error: index out of range [1] with length 0",
			haveStack: true,
			isPanic:   true,
			fun:       func() error { _ = ([]int)(nil)[1]; return nil },
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := Recover(tc.name, tc.fun)
			if tc.err == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.err)
			}
			if tc.wraps != nil {
				assert.True(t, errors.Is(err, tc.wraps), "expected %v to wrap %v", err, tc.wraps)
			}
			assert.Equal(t, tc.isPanic, IsPanic(err), "IsPanic")
			assert.Equal(t, tc.isExit, IsExit(err), "IsExit")
			assert.False(t, IsHalt(err), "halts must not escape Recover")

			stack := PanicStack(err)
			if tc.haveStack {
				assert.NotEqual(t, "", stack, "expected a stack trace")
			} else {
				assert.Equal(t, "", stack, "expected no stack trace")
			}
		})
	}
}

func TestRecover_stacktrace(t *testing.T) {
	err := Recover("", func() error {
		panic("nope")
	})
	require.Error(t, err, "must have a recovered error")

	assert.True(t,
		strings.HasSuffix(fmt.Sprintf("%+v", err), PanicStack(err)),
		"expected verbose format to end with a stack trace")
}
