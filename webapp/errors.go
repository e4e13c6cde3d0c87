package webapp

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/levinine/browserconnector/framework"
	"github.com/levinine/browserconnector/message"
)

// HTTPError is an error that carries the HTTP status it should be reported with.
type HTTPError struct {
	Status  int
	Message string
	Cause   error
}

// NewHTTPError creates an HTTPError. If message is empty, the standard status text is used.
func NewHTTPError(status int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &HTTPError{Status: status, Message: message}
}

func (e *HTTPError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Cause }

// WithCause returns a copy of the error that wraps cause.
func (e *HTTPError) WithCause(cause error) *HTTPError {
	ret := *e
	ret.Cause = cause
	return &ret
}

// ErrorMiddlewareOptions configures ErrorMiddleware.
type ErrorMiddlewareOptions struct {
	// CatchAll makes every error into a 500 response. If false, only HTTPErrors become
	// responses and anything else is passed on to the caller unchanged.
	CatchAll bool

	// DisplayDetails includes the error text in 500 responses.
	DisplayDetails bool

	// Logger receives one line per error that was turned into a response.
	Logger framework.Logger
}

// ErrorMiddleware turns handler errors into error responses. The response is JSON if the
// request accepts application/json, and HTML otherwise.
func ErrorMiddleware(options ErrorMiddlewareOptions) Middleware {
	logger := framework.OrNullLogger(options.Logger)
	return func(next RequestHandler) RequestHandler {
		return RequestHandlerFunc(func(req message.ServerRequest) (message.Response, error) {
			resp, err := next.Handle(req)
			if err == nil {
				return resp, nil
			}
			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				if !options.CatchAll {
					return resp, err
				}
				httpErr = NewHTTPError(http.StatusInternalServerError, "").WithCause(err)
			}
			logger.Printf("%s %s failed: %s", req.Method(), req.URI().Path(), err)
			detail := ""
			if options.DisplayDetails && httpErr.Cause != nil {
				detail = httpErr.Cause.Error()
			}
			return renderError(req, httpErr, detail), nil
		})
	}
}

func renderError(req message.ServerRequest, e *HTTPError, detail string) message.Response {
	resp := message.NewResponse(e.Status)
	if strings.Contains(req.HeaderLine("Accept"), "application/json") {
		return resp.WithJSONWriter(func(w *jwriter.Writer) {
			obj := w.Object()
			obj.Name("message").String(e.Message)
			obj.Maybe("detail", detail != "").String(detail)
			obj.End()
		})
	}
	body := fmt.Sprintf("<html><head><title>%[1]s</title></head><body><h1>%[1]s</h1>", html.EscapeString(e.Message))
	if detail != "" {
		body += "<pre>" + html.EscapeString(detail) + "</pre>"
	}
	return resp.WithHTML(body + "</body></html>")
}
