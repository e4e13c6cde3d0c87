package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIfElsePicksBranch(t *testing.T) {
	assert.Equal(t, "Bonjour", IfElse(true, "Bonjour", "Hello"))
	assert.Equal(t, 404, IfElse(false, 200, 404))
}

func TestSortedLeavesInputAlone(t *testing.T) {
	names := []string{"session", "lang", "theme"}
	assert.Equal(t, []string{"lang", "session", "theme"}, Sorted(names))
	assert.Equal(t, []string{"session", "lang", "theme"}, names)
	assert.Nil(t, Sorted([]int(nil)))
}
