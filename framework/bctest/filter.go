package bctest

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/exp/slices"
)

// Filter decides whether a test runs.
type Filter interface {
	Match(id TestID) bool
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(TestID) bool

func (f FilterFunc) Match(id TestID) bool { return f(id) }

// RegexFilters is the Filter built from the -run and -skip command-line options. A test runs if
// it matches one of the MustMatch patterns, or there are none, and matches none of the
// MustNotMatch patterns.
type RegexFilters struct {
	MustMatch    TestIDPatternList
	MustNotMatch TestIDPatternList
}

func (r RegexFilters) Match(id TestID) bool {
	if r.MustMatch.IsDefined() && !r.MustMatch.AnyMatch(id, true) {
		return false
	}
	return !r.MustNotMatch.AnyMatch(id, false)
}

// TestIDPattern has one regular expression per level of a TestID, as in "pages/home". An
// unanchored expression matches any part of a name.
type TestIDPattern []*regexp.Regexp

// Match compares the levels that both the pattern and the ID have. A pattern longer than
// the ID matches it only if includeParents is true, so that "-run pages/home" still enters
// the "pages" group, while "-skip pages/home" does not skip the whole group.
func (p TestIDPattern) Match(id TestID, includeParents bool) bool {
	if len(p) > len(id) && !includeParents {
		return false
	}
	for i, name := range id {
		if i == len(p) {
			break
		}
		if !p[i].MatchString(name) {
			return false
		}
	}
	return true
}

func (p TestIDPattern) String() string {
	parts := make([]string, len(p))
	for i, rx := range p {
		parts[i] = rx.String()
	}
	return strings.Join(parts, "/")
}

// ParseTestIDPattern splits s at each slash and compiles each part.
func ParseTestIDPattern(s string) (TestIDPattern, error) {
	var p TestIDPattern
	for _, part := range strings.Split(s, "/") {
		rx, err := regexp.Compile(part)
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", part, err)
		}
		p = append(p, rx)
	}
	return p, nil
}

// TestIDPatternList is a set of alternative patterns. It implements flag.Value, so each
// occurrence of the option adds a pattern.
type TestIDPatternList []TestIDPattern

func (l TestIDPatternList) String() string {
	quoted := make([]string, len(l))
	for i, p := range l {
		quoted[i] = `"` + p.String() + `"`
	}
	return strings.Join(quoted, " or ")
}

func (l *TestIDPatternList) Set(value string) error {
	p, err := ParseTestIDPattern(value)
	if err == nil {
		*l = append(*l, p)
	}
	return err
}

func (l TestIDPatternList) IsDefined() bool {
	return len(l) != 0
}

func (l TestIDPatternList) AnyMatch(id TestID, includeParents bool) bool {
	return slices.ContainsFunc(l, func(p TestIDPattern) bool { return p.Match(id, includeParents) })
}

// PrintFilterDescription describes the run/skip patterns, and lists any features that some
// tests need but that the application under test did not declare.
func PrintFilterDescription(filters RegexFilters, allFeatures []string, declaredFeatures []string) {
	if filters.MustMatch.IsDefined() || filters.MustNotMatch.IsDefined() {
		fmt.Println("Some tests will be skipped based on the filter criteria for this test run:")
		if filters.MustMatch.IsDefined() {
			fmt.Printf("  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Printf("  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Println()
	}

	if missing := MissingFeatures(allFeatures, declaredFeatures); len(missing) > 0 {
		fmt.Println("Some tests may be skipped because the application does not declare the following features:")
		fmt.Printf("  %s\n", strings.Join(missing, ", "))
		fmt.Println()
	}
}

// MissingFeatures returns the members of allFeatures that are not in declaredFeatures.
func MissingFeatures(allFeatures []string, declaredFeatures []string) []string {
	var missing []string
	for _, f := range allFeatures {
		if !slices.Contains(declaredFeatures, f) {
			missing = append(missing, f)
		}
	}
	return missing
}
