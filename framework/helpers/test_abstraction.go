package helpers

import (
	"errors"
	"fmt"
	"strings"
)

// TestContext is a minimal interface for types like *testing.T and *bctest.T representing a
// test that can fail. Functions can use this to avoid specific dependencies on those packages.
type TestContext interface {
	Errorf(msgFormat string, msgArgs ...interface{})
	FailNow()
	Helper()
}

// TestRecorder is a stub implementation of TestContext that records failures instead of
// reporting them, for testing code that makes assertions.
type TestRecorder struct {
	Errors           []string
	Terminated       bool
	PanicOnTerminate bool
}

func (t *TestRecorder) Errorf(msgFormat string, msgArgs ...interface{}) {
	t.Errors = append(t.Errors, fmt.Sprintf(msgFormat, msgArgs...))
}

func (t *TestRecorder) FailNow() {
	t.Terminated = true
	if t.PanicOnTerminate {
		panic(t)
	}
}

func (t *TestRecorder) Helper() {}

// Failed returns true if any errors were recorded or FailNow was called.
func (t *TestRecorder) Failed() bool {
	return len(t.Errors) != 0 || t.Terminated
}

// Err returns all recorded errors joined into one, or nil if there were none.
func (t *TestRecorder) Err() error {
	if len(t.Errors) == 0 {
		return nil
	}
	return errors.New(strings.Join(t.Errors, ", "))
}

// Run calls action with the recorder, recovering the panic caused by FailNow if
// PanicOnTerminate is set.
func (t *TestRecorder) Run(action func(TestContext)) {
	defer func() {
		if r := recover(); r != nil && r != t {
			panic(r)
		}
	}()
	action(t)
}
