package bctest

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/levinine/browserconnector/framework"
)

// TestConfiguration contains options for the entire test run.
type TestConfiguration struct {
	// Filter decides which tests run, by name. If nil, all tests run.
	Filter Filter

	// TestLogger receives status information about each test. If nil, nothing is reported.
	TestLogger TestLogger

	// Context is a value of any type that tests can retrieve with T.Context, typically
	// whatever they need to start the application under test.
	Context interface{}

	// Features is the list returned by T.Features and checked by T.RequireFeature.
	Features []string
}

type testRun struct {
	config  TestConfiguration
	results Results
}

// T is a test scope, similar to Go's testing.T. A test fails if Errorf is called; FailNow and
// Skip end it at once by panicking, and the panic is recovered by the enclosing Run.
type T struct {
	tr         *testRun
	id         TestID
	log        framework.CapturingLogger
	failed     bool
	skipped    bool
	skipReason string
	errors     []error
	cleanups   []func()
	helpers    map[string]bool
}

// exit is the panic value used by FailNow and Skip.
type exit struct{ t *T }

// Run starts a test run with a root scope, and returns the results once action and all of
// its subtests have finished.
func Run(config TestConfiguration, action func(*T)) Results {
	if config.TestLogger == nil {
		config.TestLogger = nullTestLogger{}
	}
	r := &testRun{config: config}
	root := &T{tr: r}
	root.run(action)
	return r.results
}

func (t *T) run(action func(*T)) (result TestResult) {
	started := time.Now()
	defer func() {
		if p := recover(); p != nil {
			t.recoverFrom(p)
		}
		for i := len(t.cleanups) - 1; i >= 0; i-- {
			t.cleanups[i]()
		}
		result = TestResult{TestID: t.id, Errors: t.errors, Duration: time.Since(started)}
		if t.skipped {
			return
		}
		if t.failed {
			t.tr.results.Failures = append(t.tr.results.Failures, result)
		}
		t.tr.results.Tests = append(t.tr.results.Tests, result)
	}()
	action(t)
	return result
}

func (t *T) recoverFrom(p interface{}) {
	if e, ok := p.(exit); ok && e.t == t {
		if t.skipped || len(t.errors) != 0 {
			return
		}
		t.addError(fmt.Errorf("test failed with no failure message"))
		return
	}
	t.addError(fmt.Errorf("unexpected panic in test: %+v\n%s", p, debug.Stack()))
}

func (t *T) addError(err error) {
	t.failed = true
	t.errors = append(t.errors, err)
	t.tr.config.TestLogger.TestError(t.id, err)
}

// ID returns the full name of the current test.
func (t *T) ID() TestID {
	return t.id
}

// Run runs a subtest in its own scope, like testing.T.Run. A failed subtest does not make its
// parent fail.
func (t *T) Run(name string, action func(*T)) {
	id := t.id.Plus(name)
	logger := t.tr.config.TestLogger

	logger.TestStarted(id)
	if filter := t.tr.config.Filter; filter != nil && !filter.Match(id) {
		t.tr.results.Skipped = append(t.tr.results.Skipped, id)
		logger.TestSkipped(id, "excluded by filter parameters")
		return
	}

	sub := &T{tr: t.tr, id: id}
	// Anything the parent scope logs while the subtest runs is shown as the subtest's output.
	t.log.AddChildLogger(&sub.log)
	result := sub.run(action)
	t.log.RemoveChildLogger(&sub.log)

	if sub.skipped {
		t.tr.results.Skipped = append(t.tr.results.Skipped, id)
		logger.TestSkipped(id, sub.skipReason)
		return
	}
	logger.TestFinished(id, result, sub.log.Output())
}

// Errorf marks the test as failed and records a message, like testing.T.Errorf. The test goes on.
func (t *T) Errorf(format string, args ...interface{}) {
	t.addError(newFailure(fmt.Errorf(format, args...), callerTrace(false, t.helpers)))
}

// FailNow ends the test immediately. It is normally called by require-style assertions
// after they have reported the failure with Errorf.
func (t *T) FailNow() {
	t.failed = true
	panic(exit{t})
}

// Failed returns true if the test has been marked as failed so far.
func (t *T) Failed() bool {
	return t.failed
}

// Skip ends the test immediately and reports it as skipped.
func (t *T) Skip() {
	t.skipped = true
	panic(exit{t})
}

// SkipWithReason is Skip with an explanation for the test log.
func (t *T) SkipWithReason(reason string) {
	t.skipReason = reason
	t.Skip()
}

// Debug adds a line to this test's debug output.
func (t *T) Debug(message string, args ...interface{}) {
	t.log.Printf(message, args...)
}

// DebugLogger returns the Logger behind Debug. Its output is passed to TestLogger.TestFinished,
// and the console logger shows it depending on the command-line options.
//
// A subtest's output starts with whatever its parent had logged already, and while the
// subtest runs, anything logged to the parent goes to the subtest instead. So a browser client
// created in a parent scope and used by subtests logs its exchanges to the right test.
func (t *T) DebugLogger() framework.Logger {
	return &t.log
}

// Defer registers a function to be called when this scope ends for any reason. Functions run
// in reverse order. Unlike a defer statement, it can be called from a helper.
func (t *T) Defer(cleanup func()) {
	t.cleanups = append(t.cleanups, cleanup)
}

// Context returns TestConfiguration.Context.
func (t *T) Context() interface{} {
	return t.tr.config.Context
}

// Features returns the features declared for the application under test.
func (t *T) Features() framework.Features {
	return append(framework.Features(nil), t.tr.config.Features...)
}

// RequireFeature skips the test unless the application declares the feature.
func (t *T) RequireFeature(name string) {
	if !t.Features().Has(name) {
		t.SkipWithReason(fmt.Sprintf("application does not declare feature %q", name))
	}
}

// Helper marks the calling function as a helper, to be left out of failure traces.
func (t *T) Helper() {
	pcs := make([]uintptr, 1)
	if runtime.Callers(2, pcs) == 0 {
		return
	}
	frame, _ := runtime.CallersFrames(pcs).Next()
	if t.helpers == nil {
		t.helpers = make(map[string]bool)
	}
	t.helpers[frame.Function] = true
}
