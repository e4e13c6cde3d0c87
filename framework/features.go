package framework

import "golang.org/x/exp/slices"

// Features is a list of optional behaviors that the application under test declares it
// supports, such as "uploads" or "events". Suites use it to skip tests that do not apply.
type Features []string

func (f Features) Has(name string) bool {
	return slices.Contains(f, name)
}

// HasAll returns true if every one of the named features is present.
func (f Features) HasAll(names ...string) bool {
	for _, n := range names {
		if !f.Has(n) {
			return false
		}
	}
	return true
}
