package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapturingLoggerRecordsMessages(t *testing.T) {
	var l CapturingLogger
	l.Printf("hello %s", "there")
	l.Println("a", "b")

	out := l.Output()
	require.Len(t, out, 2)
	assert.Equal(t, "hello there", out[0].Message)
	assert.Equal(t, "a b", out[1].Message)
}

func TestCapturingLoggerRedirectsToChild(t *testing.T) {
	var parent, child CapturingLogger
	parent.Printf("before")
	parent.AddChildLogger(&child)
	parent.Printf("during")
	parent.RemoveChildLogger(&child)
	parent.Printf("after")

	var parentMessages, childMessages []string
	for _, m := range parent.Output() {
		parentMessages = append(parentMessages, m.Message)
	}
	for _, m := range child.Output() {
		childMessages = append(childMessages, m.Message)
	}
	assert.Equal(t, []string{"before", "after"}, parentMessages)
	assert.Equal(t, []string{"before", "during"}, childMessages)
}

func TestCapturingLoggerRedirectsThroughNestedChildren(t *testing.T) {
	var parent, child, grandchild CapturingLogger
	parent.AddChildLogger(&child)
	child.AddChildLogger(&grandchild)
	parent.Printf("from the parent scope")
	child.RemoveChildLogger(&grandchild)
	parent.Printf("after the grandchild ended")

	assert.Empty(t, parent.Output())
	require.Len(t, grandchild.Output(), 1)
	assert.Equal(t, "from the parent scope", grandchild.Output()[0].Message)
	require.Len(t, child.Output(), 1)
	assert.Equal(t, "after the grandchild ended", child.Output()[0].Message)
}

func TestCapturedOutputToString(t *testing.T) {
	var l CapturingLogger
	l.Printf("one")
	l.Printf("two")
	s := l.Output().ToString("DEBUG ")
	assert.Regexp(t, `^DEBUG \[.*\] one\nDEBUG \[.*\] two$`, s)
}

func TestOrNullLogger(t *testing.T) {
	assert.Equal(t, NullLogger(), OrNullLogger(nil))
	var l CapturingLogger
	assert.Same(t, &l, OrNullLogger(&l))
}
