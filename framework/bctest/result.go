package bctest

import (
	"strings"
	"time"
)

// Results is the outcome of a whole test run. Tests lists every test scope that ran, in the
// order they finished, so a parent comes after its subtests.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
	Skipped  []TestID
}

type TestResult struct {
	TestID   TestID
	Errors   []error
	Duration time.Duration
}

// OK returns true if no test failed.
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

func (r TestResult) Failed() bool {
	return len(r.Errors) != 0
}

// TestID is the path of names from the top-level test down to a subtest.
type TestID []string

func (t TestID) String() string {
	return strings.Join(t, "/")
}

// Plus returns a new TestID for a subtest; t itself is not modified.
func (t TestID) Plus(name string) TestID {
	return append(append(TestID(nil), t...), name)
}

// Group returns the name of the top-level test that t belongs to, or "" for the root scope.
func (t TestID) Group() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}
