package bctest

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"strings"
)

// Failure is a test failure message together with the chain of calls that reported it,
// innermost first. Calls inside bctest itself, and functions marked with T.Helper, are left out.
type Failure struct {
	Message string
	Trace   []Frame
}

// Frame is one entry in a Failure's trace.
type Frame struct {
	Package  string
	Function string
	File     string
	Line     int
}

func (f Failure) Error() string { return f.Message }

func (f Frame) String() string {
	return fmt.Sprintf("%s.%s (%s:%d)", strings.TrimPrefix(f.Package, modulePath+"/"), f.Function, f.File, f.Line)
}

var (
	runnerPackage = reflect.TypeOf((*T)(nil)).Elem().PkgPath()                   //nolint:gochecknoglobals
	modulePath    = strings.Join(strings.SplitN(runnerPackage, "/", 4)[:3], "/") //nolint:gochecknoglobals

	testifyTrace = regexp.MustCompile(`^(?s:\s*Error Trace:.*\sError:\s*)`) //nolint:gochecknoglobals
)

// newFailure strips the "Error Trace:" block that testify puts in front of its messages, since
// the trace we collect ourselves is more accurate once helpers are excluded.
func newFailure(err error, trace []Frame) error {
	message := err.Error()
	if strings.Contains(message, "Error Trace:") {
		message = strings.TrimSpace(testifyTrace.ReplaceAllLiteralString(message, ""))
	}
	if len(trace) == 0 {
		return errors.New(message)
	}
	return Failure{Message: message, Trace: trace}
}

// callerTrace walks the stack of its caller up to the bctest.Run call that started the test run.
func callerTrace(includeRunner bool, helpers map[string]bool) []Frame {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var trace []Frame
	for {
		frame, more := frames.Next()
		pkg, fn := splitFunctionName(frame.Function)
		if pkg == runnerPackage && fn == "Run" {
			break
		}
		if (includeRunner || pkg != runnerPackage) && !helpers[frame.Function] {
			trace = append(trace, Frame{Package: pkg, Function: fn, File: filepath.Base(frame.File), Line: frame.Line})
		}
		if !more {
			break
		}
	}
	return trace
}

// splitFunctionName turns "example.com/a/b.(*T).Run" into "example.com/a/b" and "(*T).Run".
func splitFunctionName(fullName string) (string, string) {
	lastSlash := strings.LastIndex(fullName, "/")
	dot := strings.Index(fullName[lastSlash+1:], ".")
	if dot < 0 {
		return fullName, ""
	}
	pkgEnd := lastSlash + 1 + dot
	return fullName[:pkgEnd], fullName[pkgEnd+1:]
}
