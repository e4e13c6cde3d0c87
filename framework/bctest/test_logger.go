package bctest

import (
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/levinine/browserconnector/framework"
)

var (
	errorColor   = color.New(color.FgYellow)            //nolint:gochecknoglobals
	failedColor  = color.New(color.FgRed)               //nolint:gochecknoglobals
	skippedColor = color.New(color.Faint, color.FgBlue) //nolint:gochecknoglobals
	debugColor   = color.New(color.Faint)               //nolint:gochecknoglobals
	passedColor  = color.New(color.FgGreen)             //nolint:gochecknoglobals
)

// TestLogger receives events as a test run proceeds. TestStarted is called for every test,
// including ones that the filter then excludes; each test ends with either TestFinished or
// TestSkipped.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (nullTestLogger) TestStarted(TestID)                                        {}
func (nullTestLogger) TestError(TestID, error)                                   {}
func (nullTestLogger) TestFinished(TestID, TestResult, framework.CapturedOutput) {}
func (nullTestLogger) TestSkipped(TestID, string)                                {}

// ConsoleTestLogger prints test progress in color. Debug output is printed only if the
// corresponding option is set.
type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool

	// Out is where output goes; the default is standard output.
	Out io.Writer
}

func (c ConsoleTestLogger) out() io.Writer {
	if c.Out == nil {
		return color.Output
	}
	return c.Out
}

func (c ConsoleTestLogger) TestStarted(id TestID) {
	_, _ = io.WriteString(c.out(), "["+id.String()+"]\n")
}

func (c ConsoleTestLogger) TestError(_ TestID, err error) {
	w := c.out()
	for _, line := range strings.Split(err.Error(), "\n") {
		_, _ = errorColor.Fprintf(w, "  %s\n", line)
	}
	if f, ok := err.(Failure); ok {
		for _, frame := range f.Trace {
			_, _ = errorColor.Fprintf(w, "    at %s\n", frame)
		}
	}
}

func (c ConsoleTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	w := c.out()
	failed := result.Failed()
	if failed {
		_, _ = failedColor.Fprintf(w, "  FAILED: %s (%.3fs)\n", id, result.Duration.Seconds())
	}
	if len(debugOutput) != 0 && ((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		_, _ = debugColor.Fprintln(w, debugOutput.ToString("    DEBUG "))
	}
}

func (c ConsoleTestLogger) TestSkipped(id TestID, reason string) {
	if reason == "" {
		_, _ = skippedColor.Fprintf(c.out(), "  SKIPPED: %s\n", id)
		return
	}
	_, _ = skippedColor.Fprintf(c.out(), "  SKIPPED: %s (%s)\n", id, reason)
}

// MultiTestLogger forwards every event to each of its loggers in turn.
type MultiTestLogger []TestLogger

func (m MultiTestLogger) TestStarted(id TestID) {
	for _, l := range m {
		l.TestStarted(id)
	}
}

func (m MultiTestLogger) TestError(id TestID, err error) {
	for _, l := range m {
		l.TestError(id, err)
	}
}

func (m MultiTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	for _, l := range m {
		l.TestFinished(id, result, debugOutput)
	}
}

func (m MultiTestLogger) TestSkipped(id TestID, reason string) {
	for _, l := range m {
		l.TestSkipped(id, reason)
	}
}

// EndLog calls EndLog on every logger that has such a method, returning the first error.
func (m MultiTestLogger) EndLog(results Results) error {
	var firstErr error
	for _, l := range m {
		if e, ok := l.(interface{ EndLog(Results) error }); ok {
			if err := e.EndLog(results); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// PrintResults prints a summary of the run: a count if everything passed, or the failed tests
// to standard error.
func PrintResults(results Results) {
	printResults(color.Output, os.Stderr, results)
}

func printResults(out, errOut io.Writer, results Results) {
	if results.OK() {
		_, _ = passedColor.Fprintf(out, "All tests passed (%d run, %d skipped)\n",
			len(results.Tests), len(results.Skipped))
		return
	}
	_, _ = failedColor.Fprintf(errOut, "FAILED TESTS (%d):\n", len(results.Failures))
	for _, f := range results.Failures {
		_, _ = failedColor.Fprintf(errOut, "  * %s\n", f.TestID)
	}
}
