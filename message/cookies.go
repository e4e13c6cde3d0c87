package message

import (
	"net/url"
	"regexp"
	"strings"
)

var cookieSeparator = regexp.MustCompile(`;[ \t]*`) //nolint:gochecknoglobals

// ParseCookieHeader parses the value of a Cookie request header into a map of names to values.
// Pairs are separated by semicolons, names and values are URL-decoded, and the first occurrence
// of a name wins. Pairs without an "=" and pairs with an empty name are ignored. An empty
// header gives an empty map.
func ParseCookieHeader(header string) map[string]string {
	ret := make(map[string]string)
	header = strings.TrimRight(header, "; \t")
	if header == "" {
		return ret
	}
	for _, pair := range cookieSeparator.Split(header, -1) {
		name, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		name = cookieDecode(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, exists := ret[name]; !exists {
			ret[name] = cookieDecode(value)
		}
	}
	return ret
}

func cookieDecode(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}
	return s
}
