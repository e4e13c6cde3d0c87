package bctest

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/levinine/browserconnector/framework"
	o "github.com/levinine/browserconnector/framework/opt"
)

// JUnitTestLogger collects test events and writes them as a JUnit XML report when EndLog is
// called. Each top-level test becomes one <testsuite>, and every test under it, at any depth,
// one <testcase>.
type JUnitTestLogger struct {
	filePath   string
	suiteName  string
	properties []junitProperty
	entries    []*junitEntry
	byID       map[string]*junitEntry
	lock       sync.Mutex
}

type junitEntry struct {
	id       TestID
	errors   []error
	skipped  o.Maybe[string]
	output   string
	duration time.Duration
}

// The XML layout follows what go-junit-report produces, which CI systems generally accept.

type junitDocument struct {
	XMLName xml.Name     `xml:"testsuites"`
	Suites  []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       string          `xml:"time,attr"`
	Name       string          `xml:"name,attr"`
	Properties []junitProperty `xml:"properties>property,omitempty"`
	TestCases  []junitTestCase `xml:"testcase"`
}

type junitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type junitTestCase struct {
	Classname string        `xml:"classname,attr"`
	Name      string        `xml:"name,attr"`
	Time      string        `xml:"time,attr"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitSkipped struct {
	Message string `xml:"message,attr"`
}

type junitFailure struct {
	Message  string `xml:"message,attr"`
	Contents string `xml:",chardata"`
}

// NewJUnitTestLogger creates a JUnitTestLogger. Every suite in the report is named
// "suiteName: group" and carries the given properties, in key order, followed by the filters.
func NewJUnitTestLogger(
	filePath string,
	suiteName string,
	properties map[string]string,
	filters RegexFilters,
) *JUnitTestLogger {
	keys := maps.Keys(properties)
	slices.Sort(keys)
	props := make([]junitProperty, 0, len(keys)+2)
	for _, k := range keys {
		props = append(props, junitProperty{Name: k, Value: properties[k]})
	}
	props = append(props,
		junitProperty{Name: "tests.filter.mustMatch", Value: filters.MustMatch.String()},
		junitProperty{Name: "tests.filter.mustNotMatch", Value: filters.MustNotMatch.String()},
	)
	return &JUnitTestLogger{
		filePath:   filePath,
		suiteName:  suiteName,
		properties: props,
		byID:       make(map[string]*junitEntry),
	}
}

func (j *JUnitTestLogger) entry(id TestID) *junitEntry {
	key := id.String()
	e := j.byID[key]
	if e == nil {
		e = &junitEntry{id: id}
		j.byID[key] = e
		j.entries = append(j.entries, e)
	}
	return e
}

func (j *JUnitTestLogger) TestStarted(id TestID) {
	j.lock.Lock()
	j.entry(id)
	j.lock.Unlock()
}

func (j *JUnitTestLogger) TestError(id TestID, err error) {
	j.lock.Lock()
	e := j.entry(id)
	e.errors = append(e.errors, err)
	j.lock.Unlock()
}

func (j *JUnitTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	j.lock.Lock()
	e := j.entry(id)
	e.duration = result.Duration
	e.output = debugOutput.ToString("")
	j.lock.Unlock()
}

func (j *JUnitTestLogger) TestSkipped(id TestID, reason string) {
	j.lock.Lock()
	j.entry(id).skipped = o.Some(reason)
	j.lock.Unlock()
}

// EndLog writes the report file.
func (j *JUnitTestLogger) EndLog(Results) error {
	fmt.Printf("Writing JUnit data to %s\n", j.filePath)
	j.lock.Lock()
	doc := j.document()
	j.lock.Unlock()

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append([]byte(xml.Header), append(data, '\n')...)
	return os.WriteFile(j.filePath, data, 0o644) //nolint:gosec
}

func (j *JUnitTestLogger) document() junitDocument {
	var doc junitDocument
	suites := make(map[string]*junitSuite)
	var order []string
	durations := make(map[string]time.Duration)

	for _, e := range j.entries {
		group := e.id.Group()
		if group == "" {
			continue
		}
		suite := suites[group]
		if suite == nil {
			suite = &junitSuite{Name: j.suiteName + ": " + group, Properties: j.properties}
			suites[group] = suite
			order = append(order, group)
		}
		suite.Tests++
		durations[group] += e.duration

		tc := junitTestCase{Classname: group, Name: e.id.String(), Time: seconds(e.duration)}
		if reason, ok := e.skipped.Get(); ok {
			suite.Skipped++
			tc.Skipped = &junitSkipped{Message: reason}
		}
		if len(e.errors) != 0 {
			suite.Failures++
			tc.Failure = &junitFailure{Message: describeErrors(e.errors), Contents: e.output}
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	for _, group := range order {
		suite := suites[group]
		suite.Time = seconds(durations[group])
		doc.Suites = append(doc.Suites, *suite)
	}
	return doc
}

func describeErrors(errs []error) string {
	var b strings.Builder
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(err.Error())
		if f, ok := err.(Failure); ok && len(f.Trace) != 0 {
			b.WriteString("\n  Stacktrace:")
			for _, frame := range f.Trace {
				b.WriteString("\n    " + frame.String())
			}
		}
	}
	return b.String()
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
