package connector

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/levinine/browserconnector/framework/opt"
	"github.com/levinine/browserconnector/message"
)

// ParseURI builds a message.URI from a string or a fmt.Stringer. Components that are absent
// from the input are empty, and the port is undefined unless one is given. Path, query, and
// fragment and userinfo are kept in their encoded form.
func ParseURI(value interface{}) (message.URI, error) {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
			return message.URI{}, &InvalidArgumentError{Argument: "URI", Reason: fmt.Sprintf("must not be a nil %T", value)}
		}
		s = v.String()
	default:
		return message.URI{}, &InvalidArgumentError{Argument: "URI", Reason: fmt.Sprintf("must be a string, not %T", value)}
	}

	u, err := url.Parse(s)
	if err != nil {
		return message.URI{}, &InvalidArgumentError{Argument: "URI", Reason: fmt.Sprintf("cannot parse %q", s), Err: err}
	}
	parts := message.URIParts{
		Scheme:   u.Scheme,
		Host:     u.Hostname(),
		Path:     u.EscapedPath(),
		Query:    u.RawQuery,
		Fragment: u.EscapedFragment(),
	}
	if u.Opaque != "" {
		parts.Path = u.Opaque
	}
	if u.User != nil {
		// Userinfo stays encoded, like the path, so the URI reassembles to the same string.
		parts.User, parts.Password, _ = strings.Cut(u.User.String(), ":")
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port > 65535 {
			return message.URI{}, &InvalidArgumentError{Argument: "URI", Reason: fmt.Sprintf("bad port in %q", s), Err: err}
		}
		parts.Port = opt.Some(port)
	}
	return message.NewURI(parts), nil
}
