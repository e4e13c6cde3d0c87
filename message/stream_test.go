package message

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamReadingDoesNotConsumeContent(t *testing.T) {
	s := NewStream("hello")
	data, err := io.ReadAll(s.Reader())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "hello", s.String())
	assert.Equal(t, 5, s.Size())
}

func TestStreamIsImmutable(t *testing.T) {
	source := []byte("abc")
	s := NewStreamFromBytes(source)
	source[0] = 'x'
	assert.Equal(t, "abc", s.String())

	b := s.Bytes()
	b[0] = 'y'
	assert.Equal(t, "abc", s.String())

	s2 := s.Append("def")
	assert.Equal(t, "abc", s.String())
	assert.Equal(t, "abcdef", s2.String())
	assert.Equal(t, 0, EmptyStream().Size())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestReadStream(t *testing.T) {
	s, err := ReadStream(strings.NewReader("content"))
	require.NoError(t, err)
	assert.Equal(t, "content", s.String())

	_, err = ReadStream(failingReader{})
	assert.Error(t, err)
}
