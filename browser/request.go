package browser

import (
	"net/http"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/levinine/browserconnector/framework/opt"
	"github.com/levinine/browserconnector/message"
)

// Request is a request as the browser sees it.
type Request struct {
	Method string
	URI    string

	// Parameters are form or JSON parameters. For a GET request they have already been added
	// to the query string by the Client and are ignored by connectors.
	Parameters ldvalue.Value

	Files   Files
	Server  message.Environment
	Content opt.Maybe[string]
}

// Files is a tree of uploaded files keyed by form field name. Values may be a
// message.UploadedFile, a FileDescriptor or *FileDescriptor, or a nested Files (or plain
// map[string]interface{}) for field names such as "docs[a][b]".
type Files map[string]interface{}

// FileDescriptor describes an uploaded file that is already on disk, in the same terms that a
// web server uses for multipart uploads.
type FileDescriptor struct {
	TmpName string
	Name    string
	Type    string
	Size    int64
	Error   int
}

// Response is a response as the browser sees it.
type Response struct {
	Content string
	Status  int
	Headers http.Header
}

// Header returns the first value of a response header, matched case-insensitively.
func (r Response) Header(name string) string {
	if r.Headers == nil {
		return ""
	}
	if values, ok := r.Headers[name]; ok && len(values) > 0 {
		return values[0]
	}
	for k, values := range r.Headers {
		if strings.EqualFold(k, name) && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// Cookies returns the cookies set by the response's Set-Cookie headers.
func (r Response) Cookies() []*http.Cookie {
	header := http.Header{}
	for k, values := range r.Headers {
		if strings.EqualFold(k, "Set-Cookie") {
			header["Set-Cookie"] = append(header["Set-Cookie"], values...)
		}
	}
	return (&http.Response{Header: header}).Cookies()
}

// Connector serves browser requests.
type Connector interface {
	Execute(req Request) (Response, error)
}

// ConnectorFunc adapts a plain function to Connector.
type ConnectorFunc func(req Request) (Response, error)

func (f ConnectorFunc) Execute(req Request) (Response, error) { return f(req) }
