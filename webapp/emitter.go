package webapp

import (
	"io"
	"net/http"

	"github.com/levinine/browserconnector/message"
)

// DefaultChunkSize is the number of body bytes that ResponseEmitter writes at a time.
const DefaultChunkSize = 4096

// Emitter sends a finished response to wherever responses go, normally the client connection.
type Emitter interface {
	Emit(resp message.Response) error
}

// EmitterFunc adapts a plain function to Emitter.
type EmitterFunc func(resp message.Response) error

func (f EmitterFunc) Emit(resp message.Response) error { return f(resp) }

// ResponseEmitter writes responses to an io.Writer. If the writer is an http.ResponseWriter,
// the headers and status line are written first; for any other writer only the body is
// written. The body is written in chunks, and is omitted for statuses that cannot have one.
type ResponseEmitter struct {
	writer    io.Writer
	chunkSize int
}

// NewResponseEmitter creates a ResponseEmitter that writes to w.
func NewResponseEmitter(w io.Writer) ResponseEmitter {
	return ResponseEmitter{writer: w, chunkSize: DefaultChunkSize}
}

// WithChunkSize returns a copy that writes the body in pieces of the given size.
func (e ResponseEmitter) WithChunkSize(size int) ResponseEmitter {
	if size > 0 {
		e.chunkSize = size
	}
	return e
}

func (e ResponseEmitter) Emit(resp message.Response) error {
	if hw, ok := e.writer.(http.ResponseWriter); ok {
		header := hw.Header()
		for name, values := range resp.Headers() {
			header[name] = values
		}
		status := resp.StatusCode()
		if status == 0 {
			status = http.StatusOK
		}
		hw.WriteHeader(status)
	}
	if IsResponseEmpty(resp) {
		return nil
	}
	data := resp.Body().Bytes()
	for len(data) > 0 {
		n := e.chunkSize
		if n > len(data) {
			n = len(data)
		}
		if _, err := e.writer.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// IsResponseEmpty returns true if the response has no body to send, either because its status
// does not allow one or because the body is empty.
func IsResponseEmpty(resp message.Response) bool {
	status := resp.StatusCode()
	if (status >= 100 && status < 200) || status == http.StatusNoContent ||
		status == http.StatusResetContent || status == http.StatusNotModified {
		return true
	}
	return resp.Body().Size() == 0
}
