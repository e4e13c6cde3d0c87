package framework

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger is the minimal logging interface used throughout the connector and the test runner.
// A *log.Logger satisfies it, and so does ldlog.Loggers.ForLevel(level).
type Logger interface {
	Println(args ...interface{})
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (nullLogger) Println(...interface{})        {}
func (nullLogger) Printf(string, ...interface{}) {}

// NullLogger returns a Logger that discards everything.
func NullLogger() Logger { return nullLogger{} }

// OrNullLogger returns logger, or a NullLogger if it is nil.
func OrNullLogger(logger Logger) Logger {
	if logger == nil {
		return NullLogger()
	}
	return logger
}

type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

// ToString renders the messages one per line, each with a prefix and a timestamp.
func (output CapturedOutput) ToString(prefix string) string {
	lines := make([]string, 0, len(output))
	for _, m := range output {
		lines = append(lines, fmt.Sprintf("%s[%s] %s", prefix, m.Time.Format(timestampFormat), m.Message))
	}
	return strings.Join(lines, "\n")
}

// CapturingLogger records the output of a test scope. While another CapturingLogger is
// attached to it, new messages go there instead.
type CapturingLogger struct {
	lock   sync.Mutex
	output CapturedOutput
	child  *CapturingLogger
}

func (l *CapturingLogger) Println(args ...interface{}) {
	l.add(strings.TrimRight(fmt.Sprintln(args...), "\r\n"))
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.add(fmt.Sprintf(message, args...))
}

func (l *CapturingLogger) add(message string) {
	l.lock.Lock()
	child := l.child
	if child == nil {
		l.output = append(l.output, CapturedMessage{Time: time.Now(), Message: message})
	}
	l.lock.Unlock()
	if child != nil {
		child.add(message)
	}
}

// Output returns a copy of everything captured so far.
func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append(CapturedOutput(nil), l.output...)
}

// AddChildLogger attaches child, which starts with a copy of what l has captured so far.
func (l *CapturingLogger) AddChildLogger(child *CapturingLogger) {
	inherited := l.Output()
	child.lock.Lock()
	child.output = append(inherited, child.output...)
	child.lock.Unlock()
	l.lock.Lock()
	l.child = child
	l.lock.Unlock()
}

// RemoveChildLogger detaches child if it is the one attached.
func (l *CapturingLogger) RemoveChildLogger(child *CapturingLogger) {
	l.lock.Lock()
	if l.child == child {
		l.child = nil
	}
	l.lock.Unlock()
}
