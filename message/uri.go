package message

import (
	"strconv"
	"strings"

	"github.com/levinine/browserconnector/framework/opt"
)

// URIParts holds the components of a URI. Absent components are empty strings; an absent
// port is None. User, Password, Path, Query, and Fragment are percent-encoded.
type URIParts struct {
	Scheme   string
	User     string
	Password string
	Host     string
	Port     opt.Maybe[int]
	Path     string
	Query    string
	Fragment string
}

// URI is an immutable URI value.
type URI struct {
	parts URIParts
}

// NewURI creates a URI from its components. The scheme and host are lower-cased.
func NewURI(parts URIParts) URI {
	parts.Scheme = strings.ToLower(parts.Scheme)
	parts.Host = strings.ToLower(parts.Host)
	return URI{parts: parts}
}

// Parts returns the components of the URI.
func (u URI) Parts() URIParts      { return u.parts }
func (u URI) Scheme() string       { return u.parts.Scheme }
func (u URI) Host() string         { return u.parts.Host }
func (u URI) Port() opt.Maybe[int] { return u.parts.Port }
func (u URI) Path() string         { return u.parts.Path }
func (u URI) Query() string        { return u.parts.Query }
func (u URI) Fragment() string     { return u.parts.Fragment }

func (u URI) WithScheme(s string) URI {
	u.parts.Scheme = strings.ToLower(s)
	return u
}

func (u URI) WithHost(h string) URI {
	u.parts.Host = strings.ToLower(h)
	return u
}

func (u URI) WithPath(p string) URI {
	u.parts.Path = p
	return u
}

func (u URI) WithQuery(q string) URI {
	u.parts.Query = q
	return u
}

func (u URI) WithFragment(f string) URI {
	u.parts.Fragment = f
	return u
}

func (u URI) WithPort(port opt.Maybe[int]) URI {
	u.parts.Port = port
	return u
}

func (u URI) WithUserInfo(user, password string) URI {
	u.parts.User, u.parts.Password = user, password
	return u
}

// UserInfo returns "user" or "user:password", or "" if there is no user.
func (u URI) UserInfo() string {
	if u.parts.User == "" {
		return ""
	}
	if u.parts.Password == "" {
		return u.parts.User
	}
	return u.parts.User + ":" + u.parts.Password
}

// Authority returns "[userinfo@]host[:port]", omitting the port if it is the default for the scheme.
func (u URI) Authority() string {
	if u.parts.Host == "" {
		return ""
	}
	var b strings.Builder
	if ui := u.UserInfo(); ui != "" {
		b.WriteString(ui)
		b.WriteString("@")
	}
	b.WriteString(u.hostAndPort())
	return b.String()
}

// hostAndPort returns "host[:port]" with IPv6 hosts in brackets, as used in a Host header.
func (u URI) hostAndPort() string {
	host := u.parts.Host
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port, ok := u.parts.Port.Get(); ok && !u.isStandardPort(port) {
		host += ":" + strconv.Itoa(port)
	}
	return host
}

func (u URI) isStandardPort(port int) bool {
	return (u.parts.Scheme == "http" && port == 80) || (u.parts.Scheme == "https" && port == 443)
}

// String reassembles the URI.
func (u URI) String() string {
	var b strings.Builder
	if u.parts.Scheme != "" {
		b.WriteString(u.parts.Scheme)
		b.WriteString(":")
	}
	if authority := u.Authority(); authority != "" {
		b.WriteString("//")
		b.WriteString(authority)
	}
	path := u.parts.Path
	if path != "" && !strings.HasPrefix(path, "/") && u.parts.Host != "" {
		path = "/" + path
	}
	b.WriteString(path)
	if u.parts.Query != "" {
		b.WriteString("?")
		b.WriteString(u.parts.Query)
	}
	if u.parts.Fragment != "" {
		b.WriteString("#")
		b.WriteString(u.parts.Fragment)
	}
	return b.String()
}

// RequestTarget returns the path and query, as they would appear in an HTTP request line.
func (u URI) RequestTarget() string {
	path := u.parts.Path
	if path == "" {
		path = "/"
	}
	if u.parts.Query != "" {
		return path + "?" + u.parts.Query
	}
	return path
}
