package connector

import (
	"net/http"
	"strings"

	"github.com/levinine/browserconnector/message"
)

// Server variables that carry request headers without the HTTP_ prefix.
var specialHeaderVars = map[string]bool{ //nolint:gochecknoglobals
	"CONTENT_TYPE":    true,
	"CONTENT_LENGTH":  true,
	"PHP_AUTH_USER":   true,
	"PHP_AUTH_PW":     true,
	"PHP_AUTH_DIGEST": true,
	"AUTH_TYPE":       true,
}

// HeadersFromEnvironment picks the server variables that represent request headers, in
// environment order, with their names upper-cased. HTTP_CONTENT_LENGTH is left out because
// the content length is already carried by CONTENT_LENGTH.
func HeadersFromEnvironment(env message.Environment) message.Environment {
	var headers message.Environment
	for _, v := range env.Vars() {
		name := strings.ToUpper(v.Name)
		if !specialHeaderVars[name] && !strings.HasPrefix(name, "HTTP_") {
			continue
		}
		if name == "HTTP_CONTENT_LENGTH" {
			continue
		}
		headers = headers.With(name, v.Value)
	}
	return headers
}

// HeaderSource lists the headers of the request that is currently being served by the
// process, if any. Some servers do not pass the Authorization header through to server
// variables, but do make it available this way.
type HeaderSource interface {
	Headers() http.Header
}

// HeaderSourceFunc adapts a plain function to HeaderSource.
type HeaderSourceFunc func() http.Header

func (f HeaderSourceFunc) Headers() http.Header { return f() }

// HeadersFromHTTPRequest is a HeaderSource for a request received by an http.Handler.
func HeadersFromHTTPRequest(r *http.Request) HeaderSource {
	return HeaderSourceFunc(func() http.Header { return r.Header })
}

// DetermineAuthorization fills in HTTP_AUTHORIZATION from source if the environment does not
// have a non-empty value for it. The header name is matched case-insensitively. A nil source
// leaves the environment unchanged.
func DetermineAuthorization(env message.Environment, source HeaderSource) message.Environment {
	if env.Value("HTTP_AUTHORIZATION") != "" || source == nil {
		return env
	}
	for name, values := range source.Headers() {
		if strings.EqualFold(name, "authorization") && len(values) > 0 {
			return env.With("HTTP_AUTHORIZATION", values[0])
		}
	}
	return env
}
