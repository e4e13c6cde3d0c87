package message

import (
	"bytes"
	"io"
)

// Stream is an immutable message body. Reading from it through Reader never changes what
// String or Bytes return.
type Stream struct {
	data []byte
}

// NewStream creates a Stream holding a copy of the string.
func NewStream(content string) Stream {
	return Stream{data: []byte(content)}
}

// NewStreamFromBytes creates a Stream holding a copy of the bytes.
func NewStreamFromBytes(data []byte) Stream {
	return Stream{data: append([]byte(nil), data...)}
}

// ReadStream reads everything from r into a new Stream.
func ReadStream(r io.Reader) (Stream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Stream{}, err
	}
	return Stream{data: data}, nil
}

// EmptyStream returns a Stream with no content.
func EmptyStream() Stream { return Stream{} }

func (s Stream) String() string { return string(s.data) }

// Bytes returns a copy of the content.
func (s Stream) Bytes() []byte { return append([]byte(nil), s.data...) }

func (s Stream) Size() int { return len(s.data) }

// Reader returns a new reader positioned at the start of the content.
func (s Stream) Reader() *bytes.Reader { return bytes.NewReader(s.data) }

// Append returns a new Stream with more content added at the end.
func (s Stream) Append(more string) Stream {
	data := make([]byte, 0, len(s.data)+len(more))
	data = append(data, s.data...)
	data = append(data, more...)
	return Stream{data: data}
}
