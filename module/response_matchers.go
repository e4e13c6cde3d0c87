package module

import (
	"fmt"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"

	"github.com/levinine/browserconnector/browser"
)

// The functions in this file let tests make matcher assertions about parts of a
// browser.Response, for instance:
//
//	m.In(t).Assert(resp, ResponseStatus().Should(m.Equal(200)))

// ResponseStatus is a MatcherTransform for the status of a browser.Response.
func ResponseStatus() m.MatcherTransform {
	return m.Transform("status", func(value interface{}) (interface{}, error) {
		return value.(browser.Response).Status, nil
	}).EnsureInputValueType(browser.Response{})
}

// ResponseContent is a MatcherTransform for the body of a browser.Response.
func ResponseContent() m.MatcherTransform {
	return m.Transform("content", func(value interface{}) (interface{}, error) {
		return value.(browser.Response).Content, nil
	}).EnsureInputValueType(browser.Response{})
}

// ResponseHeader is a MatcherTransform for the first value of a header of a browser.Response.
func ResponseHeader(name string) m.MatcherTransform {
	return m.Transform(fmt.Sprintf("header %q", name), func(value interface{}) (interface{}, error) {
		return value.(browser.Response).Header(name), nil
	}).EnsureInputValueType(browser.Response{})
}
