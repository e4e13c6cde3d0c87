package helpers

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// IfElse is a conditional expression.
func IfElse[V any](cond bool, ifTrue, ifFalse V) V {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// Sorted returns a sorted copy of s.
func Sorted[V constraints.Ordered](s []V) []V {
	ret := slices.Clone(s)
	slices.Sort(ret)
	return ret
}
