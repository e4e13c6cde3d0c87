package message

import (
	"strconv"
	"strings"
	"time"
)

// Default values that MockEnvironment fills in for a request that does not specify them.
const (
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	DefaultAcceptCharset  = "ISO-8859-1,utf-8;q=0.7,*;q=0.3"
	DefaultAcceptLanguage = "en-US,en;q=0.8"
	DefaultUserAgent      = "Browser Connector"
	DefaultRemoteAddr     = "127.0.0.1"
	DefaultServerName     = "localhost"
	DefaultProtocol       = "HTTP/1.1"
)

// MockEnvironment returns a realistic server environment for a simulated request. It starts
// from a full set of standard CGI variables and then applies userData on top: values from
// userData overwrite defaults in place, and names that are not defaults are appended in
// userData's order.
//
// The scheme is https, with port 443, if userData sets HTTPS to anything other than "off" or
// sets REQUEST_SCHEME to "https"; otherwise it is http with port 80.
func MockEnvironment(userData Environment) Environment {
	return MockEnvironmentAt(time.Now(), userData)
}

// MockEnvironmentAt is the same as MockEnvironment, but uses the given time for REQUEST_TIME
// and REQUEST_TIME_FLOAT.
func MockEnvironmentAt(now time.Time, userData Environment) Environment {
	scheme, port := "http", "80"
	if https, ok := userData.Get("HTTPS"); (ok && https != "" && !strings.EqualFold(https, "off")) ||
		strings.EqualFold(userData.Value("REQUEST_SCHEME"), "https") {
		scheme, port = "https", "443"
	}

	defaults := NewEnvironment(
		"HTTP_ACCEPT", DefaultAccept,
		"HTTP_ACCEPT_CHARSET", DefaultAcceptCharset,
		"HTTP_ACCEPT_LANGUAGE", DefaultAcceptLanguage,
		"HTTP_USER_AGENT", DefaultUserAgent,
		"QUERY_STRING", "",
		"REMOTE_ADDR", DefaultRemoteAddr,
		"REQUEST_METHOD", "GET",
		"REQUEST_SCHEME", scheme,
		"REQUEST_TIME", strconv.FormatInt(now.Unix(), 10),
		"REQUEST_TIME_FLOAT", strconv.FormatFloat(float64(now.UnixMicro())/1e6, 'f', 6, 64),
		"REQUEST_URI", "",
		"SCRIPT_NAME", "",
		"SERVER_NAME", DefaultServerName,
		"SERVER_PORT", port,
		"SERVER_PROTOCOL", DefaultProtocol,
	)
	return defaults.Merge(userData)
}
