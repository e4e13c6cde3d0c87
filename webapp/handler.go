// Package webapp is the runtime of the web framework: request handlers, middleware, a routed
// App, and the ResponseEmitter that writes a finished response to its destination.
package webapp

import (
	"github.com/levinine/browserconnector/message"
)

// RequestHandler handles one request and produces one response. An error means the request
// could not be handled; middleware such as ErrorMiddleware may turn it into a response.
type RequestHandler interface {
	Handle(req message.ServerRequest) (message.Response, error)
}

// RequestHandlerFunc adapts a plain function to RequestHandler.
type RequestHandlerFunc func(req message.ServerRequest) (message.Response, error)

func (f RequestHandlerFunc) Handle(req message.ServerRequest) (message.Response, error) {
	return f(req)
}

// Middleware wraps a handler in another handler.
type Middleware func(next RequestHandler) RequestHandler

// Chain wraps handler in the middleware so that the last one given is the outermost.
func Chain(handler RequestHandler, middleware ...Middleware) RequestHandler {
	for _, m := range middleware {
		handler = m(handler)
	}
	return handler
}

// SessionCloser is implemented by applications that keep per-client state which should be
// discarded at the end of a test.
type SessionCloser interface {
	CloseSessions() error
}
