package bctest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexFilters(t *testing.T) {
	cases := []struct {
		name    string
		run     []string
		skip    []string
		matches []TestID
		misses  []TestID
	}{
		{
			name:    "no patterns",
			matches: []TestID{nil, {"pages"}, {"pages", "home page"}},
		},
		{
			name:    "run one group",
			run:     []string{"^pages$"},
			matches: []TestID{nil, {"pages"}, {"pages", "home page"}},
			misses:  []TestID{{"forms"}, {"pages and more"}},
		},
		{
			name:    "run is unanchored",
			run:     []string{"ook"},
			matches: []TestID{{"cookies"}, {"cookies", "set"}},
			misses:  []TestID{{"forms"}},
		},
		{
			name:    "run one subtest enters its parents",
			run:     []string{"pages/home"},
			matches: []TestID{nil, {"pages"}, {"pages", "home page"}, {"pages", "home page", "deeper"}},
			misses:  []TestID{{"forms"}, {"pages", "unknown page"}},
		},
		{
			name:    "either of two run patterns",
			run:     []string{"forms", "json"},
			matches: []TestID{{"forms"}, {"json", "list"}},
			misses:  []TestID{{"pages"}},
		},
		{
			name:    "skip one group",
			skip:    []string{"uploads"},
			matches: []TestID{nil, {"pages"}},
			misses:  []TestID{{"uploads"}, {"uploads", "single file"}},
		},
		{
			name:    "skip one subtest leaves its parent",
			skip:    []string{"redirects/loop"},
			matches: []TestID{nil, {"redirects"}, {"redirects", "302"}},
			misses:  []TestID{{"redirects", "loop"}, {"redirects", "loop", "deeper"}},
		},
		{
			name:    "skip wins over run",
			run:     []string{"cookies"},
			skip:    []string{"cookies/clear"},
			matches: []TestID{{"cookies"}, {"cookies", "set"}},
			misses:  []TestID{{"cookies", "clear"}, {"forms"}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var r RegexFilters
			for _, s := range c.run {
				require.NoError(t, r.MustMatch.Set(s))
			}
			for _, s := range c.skip {
				require.NoError(t, r.MustNotMatch.Set(s))
			}
			for _, id := range c.matches {
				assert.True(t, r.Match(id), "should match %q", id)
			}
			for _, id := range c.misses {
				assert.False(t, r.Match(id), "should not match %q", id)
			}
		})
	}
}

func TestTestIDPatternListString(t *testing.T) {
	var l TestIDPatternList
	assert.False(t, l.IsDefined())
	require.NoError(t, l.Set("pages/home"))
	require.NoError(t, l.Set("forms"))
	assert.True(t, l.IsDefined())
	assert.Equal(t, `"pages/home" or "forms"`, l.String())
}

func TestParseTestIDPatternError(t *testing.T) {
	_, err := ParseTestIDPattern("pages/(")
	assert.ErrorContains(t, err, `invalid regex "("`)
}

func TestMissingFeatures(t *testing.T) {
	assert.Nil(t, MissingFeatures([]string{"json", "uploads"}, []string{"json", "uploads", "events"}))
	assert.Equal(t, []string{"uploads"}, MissingFeatures([]string{"json", "uploads"}, []string{"json"}))
	assert.Nil(t, MissingFeatures(nil, []string{"json"}))
}

func TestFilterFunc(t *testing.T) {
	f := FilterFunc(func(id TestID) bool { return len(id) < 2 })
	assert.True(t, f.Match(TestID{"pages"}))
	assert.False(t, f.Match(TestID{"pages", "home page"}))
}
