package message

import (
	"net/http"
	"strings"
)

// headerSet is the copy-on-write header storage shared by ServerRequest and Response.
type headerSet struct {
	values http.Header
}

func (h headerSet) get(name string) []string {
	return append([]string(nil), h.values.Values(name)...)
}

func (h headerSet) line(name string) string {
	return strings.Join(h.values.Values(name), ", ")
}

func (h headerSet) has(name string) bool {
	_, ok := h.values[http.CanonicalHeaderKey(name)]
	return ok
}

func (h headerSet) all() http.Header {
	return h.values.Clone()
}

func (h headerSet) with(name string, values ...string) headerSet {
	ret := h.values.Clone()
	if ret == nil {
		ret = make(http.Header)
	}
	ret[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	return headerSet{values: ret}
}

func (h headerSet) withAdded(name string, values ...string) headerSet {
	ret := h.values.Clone()
	if ret == nil {
		ret = make(http.Header)
	}
	key := http.CanonicalHeaderKey(name)
	ret[key] = append(append([]string(nil), ret[key]...), values...)
	return headerSet{values: ret}
}

func (h headerSet) without(name string) headerSet {
	if !h.has(name) {
		return h
	}
	ret := h.values.Clone()
	ret.Del(name)
	return headerSet{values: ret}
}

// HeaderNameFromServerVar converts a CGI variable name such as HTTP_ACCEPT_LANGUAGE or
// CONTENT_TYPE into a canonical header name such as Accept-Language or Content-Type.
func HeaderNameFromServerVar(name string) string {
	name = strings.ToUpper(name)
	name = strings.TrimPrefix(name, "HTTP_")
	return http.CanonicalHeaderKey(strings.ReplaceAll(name, "_", "-"))
}

// ServerVarFromHeaderName is the reverse of HeaderNameFromServerVar. Content-Type and
// Content-Length map to the unprefixed CONTENT_TYPE and CONTENT_LENGTH.
func ServerVarFromHeaderName(name string) string {
	v := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	if v == "CONTENT_TYPE" || v == "CONTENT_LENGTH" {
		return v
	}
	return "HTTP_" + v
}
