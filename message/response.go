package message

import (
	"net/http"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// Response is an immutable outgoing response, as produced by an application handler.
type Response struct {
	status   int
	reason   string
	protocol string
	headers  headerSet
	body     Stream
}

// NewResponse creates an empty response with the given status code.
func NewResponse(status int) Response {
	return Response{status: status, protocol: "1.1"}
}

func (r Response) StatusCode() int         { return r.status }
func (r Response) ProtocolVersion() string { return r.protocol }
func (r Response) Body() Stream            { return r.body }

// ReasonPhrase returns the reason given with WithStatus, or the standard text for the status.
func (r Response) ReasonPhrase() string {
	if r.reason != "" {
		return r.reason
	}
	return http.StatusText(r.status)
}

func (r Response) Header(name string) []string   { return r.headers.get(name) }
func (r Response) HeaderLine(name string) string { return r.headers.line(name) }
func (r Response) HasHeader(name string) bool    { return r.headers.has(name) }

// Headers returns a copy of all headers.
func (r Response) Headers() http.Header { return r.headers.all() }

// WithStatus sets the status code, and optionally a custom reason phrase.
func (r Response) WithStatus(status int, reason ...string) Response {
	r.status = status
	r.reason = ""
	if len(reason) > 0 {
		r.reason = reason[0]
	}
	return r
}

func (r Response) WithProtocolVersion(version string) Response {
	r.protocol = version
	return r
}

// WithHeader replaces all values of a header.
func (r Response) WithHeader(name string, values ...string) Response {
	r.headers = r.headers.with(name, values...)
	return r
}

// WithAddedHeader appends values to a header.
func (r Response) WithAddedHeader(name string, values ...string) Response {
	r.headers = r.headers.withAdded(name, values...)
	return r
}

func (r Response) WithoutHeader(name string) Response {
	r.headers = r.headers.without(name)
	return r
}

func (r Response) WithBody(body Stream) Response {
	r.body = body
	return r
}

// WithCookie adds a Set-Cookie header.
func (r Response) WithCookie(cookie *http.Cookie) Response {
	return r.WithAddedHeader("Set-Cookie", cookie.String())
}

// WithText sets a plain text body and content type.
func (r Response) WithText(text string) Response {
	return r.WithHeader("Content-Type", "text/plain; charset=utf-8").WithBody(NewStream(text))
}

// WithHTML sets an HTML body and content type.
func (r Response) WithHTML(html string) Response {
	return r.WithHeader("Content-Type", "text/html; charset=utf-8").WithBody(NewStream(html))
}

// WithJSON sets a JSON body and content type.
func (r Response) WithJSON(value ldvalue.Value) Response {
	return r.WithJSONWriter(value.WriteToJSONWriter)
}

// WithJSONWriter sets a JSON body produced by a streaming writer function, and the JSON
// content type. If the writer reports an error, the body is a JSON null.
func (r Response) WithJSONWriter(write func(*jwriter.Writer)) Response {
	w := jwriter.NewWriter()
	write(&w)
	data := w.Bytes()
	if w.Error() != nil {
		data = []byte("null")
	}
	return r.WithHeader("Content-Type", "application/json").WithBody(NewStreamFromBytes(data))
}

// WithRedirect sets a Location header and a redirect status, 302 if none is given.
func (r Response) WithRedirect(location string, status ...int) Response {
	code := http.StatusFound
	if len(status) > 0 {
		code = status[0]
	}
	return r.WithStatus(code).WithHeader("Location", location)
}
