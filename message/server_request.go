package message

import (
	"context"
	"net/http"
	"net/url"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/levinine/browserconnector/framework/opt"
)

// ServerRequest is an immutable incoming request, as seen by an application handler.
type ServerRequest struct {
	method        string
	uri           URI
	protocol      string
	headers       headerSet
	body          Stream
	serverParams  Environment
	cookieParams  map[string]string
	queryParams   opt.Maybe[url.Values]
	uploadedFiles UploadedFiles
	parsedBody    ldvalue.Value
	attributes    map[string]interface{}
	ctx           context.Context
}

// NewServerRequest creates a request with the given method, URI, and server variables, and
// no headers, cookies, files, body, or parsed body.
func NewServerRequest(method string, uri URI, serverParams Environment) ServerRequest {
	return ServerRequest{
		method:       method,
		uri:          uri,
		protocol:     "1.1",
		serverParams: serverParams,
	}
}

// IsZero reports whether r is the zero ServerRequest rather than one made by NewServerRequest.
func (r ServerRequest) IsZero() bool { return r.method == "" && r.protocol == "" }

func (r ServerRequest) Method() string               { return r.method }
func (r ServerRequest) URI() URI                     { return r.uri }
func (r ServerRequest) ProtocolVersion() string      { return r.protocol }
func (r ServerRequest) Body() Stream                 { return r.body }
func (r ServerRequest) ServerParams() Environment    { return r.serverParams }
func (r ServerRequest) ParsedBody() ldvalue.Value    { return r.parsedBody }
func (r ServerRequest) UploadedFiles() UploadedFiles { return r.uploadedFiles }

func (r ServerRequest) Header(name string) []string   { return r.headers.get(name) }
func (r ServerRequest) HeaderLine(name string) string { return r.headers.line(name) }
func (r ServerRequest) HasHeader(name string) bool    { return r.headers.has(name) }

// Headers returns a copy of all headers.
func (r ServerRequest) Headers() http.Header { return r.headers.all() }

// CookieParams returns a copy of the request cookies.
func (r ServerRequest) CookieParams() map[string]string {
	ret := make(map[string]string, len(r.cookieParams))
	for k, v := range r.cookieParams {
		ret[k] = v
	}
	return ret
}

// QueryParams returns the query parameters. Unless they were set with WithQueryParams, they
// are parsed from the query string of the URI.
func (r ServerRequest) QueryParams() url.Values {
	if q, ok := r.queryParams.Get(); ok {
		return cloneValues(q)
	}
	q, _ := url.ParseQuery(r.uri.Query())
	return q
}

// Attribute returns a value attached to the request by the application, such as a route
// parameter, or nil.
func (r ServerRequest) Attribute(name string) interface{} {
	return r.attributes[name]
}

// Attributes returns a copy of all attributes.
func (r ServerRequest) Attributes() map[string]interface{} {
	ret := make(map[string]interface{}, len(r.attributes))
	for k, v := range r.attributes {
		ret[k] = v
	}
	return ret
}

// Context returns the request's context, which is context.Background() unless one was set.
func (r ServerRequest) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

func (r ServerRequest) WithMethod(method string) ServerRequest {
	r.method = method
	return r
}

// WithURI replaces the URI. If the new URI has a host, the Host header is updated to match.
func (r ServerRequest) WithURI(uri URI) ServerRequest {
	r.uri = uri
	if uri.Host() != "" {
		r.headers = r.headers.with("Host", uri.hostAndPort())
	}
	return r
}

func (r ServerRequest) WithProtocolVersion(version string) ServerRequest {
	r.protocol = version
	return r
}

// WithHeader replaces all values of a header.
func (r ServerRequest) WithHeader(name string, values ...string) ServerRequest {
	r.headers = r.headers.with(name, values...)
	return r
}

// WithAddedHeader appends values to a header.
func (r ServerRequest) WithAddedHeader(name string, values ...string) ServerRequest {
	r.headers = r.headers.withAdded(name, values...)
	return r
}

func (r ServerRequest) WithoutHeader(name string) ServerRequest {
	r.headers = r.headers.without(name)
	return r
}

func (r ServerRequest) WithBody(body Stream) ServerRequest {
	r.body = body
	return r
}

func (r ServerRequest) WithServerParams(env Environment) ServerRequest {
	r.serverParams = env
	return r
}

func (r ServerRequest) WithCookieParams(cookies map[string]string) ServerRequest {
	r.cookieParams = make(map[string]string, len(cookies))
	for k, v := range cookies {
		r.cookieParams[k] = v
	}
	return r
}

func (r ServerRequest) WithQueryParams(query url.Values) ServerRequest {
	r.queryParams = opt.Some(cloneValues(query))
	return r
}

func (r ServerRequest) WithUploadedFiles(files UploadedFiles) ServerRequest {
	r.uploadedFiles = files
	return r
}

// WithParsedBody replaces the deserialized body, such as decoded form fields or JSON.
func (r ServerRequest) WithParsedBody(value ldvalue.Value) ServerRequest {
	r.parsedBody = value
	return r
}

func (r ServerRequest) WithAttribute(name string, value interface{}) ServerRequest {
	attrs := r.Attributes()
	attrs[name] = value
	r.attributes = attrs
	return r
}

func (r ServerRequest) WithContext(ctx context.Context) ServerRequest {
	r.ctx = ctx
	return r
}

func cloneValues(v url.Values) url.Values {
	ret := make(url.Values, len(v))
	for k, vv := range v {
		ret[k] = append([]string(nil), vv...)
	}
	return ret
}
