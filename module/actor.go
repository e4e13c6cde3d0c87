package module

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	m "github.com/launchdarkly/go-test-helpers/v2/matchers"

	"github.com/levinine/browserconnector/browser"
	"github.com/levinine/browserconnector/framework/helpers"
	"github.com/levinine/browserconnector/framework/opt"
	"github.com/levinine/browserconnector/message"
)

// Actor performs browser actions for one test. Actions that make a request fail the test if
// the request cannot be completed, including when the application handler returns an error.
// Assertions always apply to the most recent response.
type Actor struct {
	t      helpers.TestContext
	client *browser.Client
}

// Client returns the underlying browser client.
func (a *Actor) Client() *browser.Client { return a.client }

func (a *Actor) request(method, uri string, params ldvalue.Value, files browser.Files,
	server message.Environment, content opt.Maybe[string]) browser.Response {
	a.t.Helper()
	resp, err := a.client.Request(method, uri, params, files, server, content)
	if err != nil {
		a.t.Errorf("%s %s failed: %s", method, uri, err)
		a.t.FailNow()
	}
	return resp
}

// TryRequest sends a request and returns the error instead of failing the test, for tests
// that expect the application to fail.
func (a *Actor) TryRequest(method, uri string, params ldvalue.Value) (browser.Response, error) {
	return a.client.Request(method, uri, params, nil, message.Environment{}, opt.None[string]())
}

// AmOnPage opens a page with a GET request.
func (a *Actor) AmOnPage(uri string) browser.Response {
	a.t.Helper()
	return a.request(http.MethodGet, uri, ldvalue.Null(), nil, message.Environment{}, opt.None[string]())
}

// SendRequest sends a request with parameters. For GET they go in the query string.
func (a *Actor) SendRequest(method, uri string, params ldvalue.Value) browser.Response {
	a.t.Helper()
	return a.request(method, uri, params, nil, message.Environment{}, opt.None[string]())
}

// SendJSON sends a JSON body. The same value is passed as the request parameters, as a
// JSON-parsing application would see it.
func (a *Actor) SendJSON(method, uri string, body ldvalue.Value) browser.Response {
	a.t.Helper()
	server := message.NewEnvironment("CONTENT_TYPE", "application/json", "HTTP_ACCEPT", "application/json")
	return a.request(method, uri, body, nil, server, opt.Some(body.JSONString()))
}

// SubmitForm posts URL-encoded form fields.
func (a *Actor) SubmitForm(uri string, fields ldvalue.Value) browser.Response {
	a.t.Helper()
	server := message.NewEnvironment("CONTENT_TYPE", "application/x-www-form-urlencoded")
	return a.request(http.MethodPost, uri, fields, nil, server,
		opt.Some(message.FormFromValue(fields).Encode()))
}

// UploadFile posts a multipart form with one file and optional other fields. The file is
// copied first, so the application can move its upload without affecting the original.
func (a *Actor) UploadFile(uri, field, path string, fields ldvalue.Value) browser.Response {
	a.t.Helper()
	descriptor, err := copyForUpload(path)
	if err != nil {
		a.t.Errorf("could not prepare upload of %s: %s", path, err)
		a.t.FailNow()
		return browser.Response{}
	}
	server := message.NewEnvironment("CONTENT_TYPE", "multipart/form-data")
	resp := a.request(http.MethodPost, uri, fields, browser.Files{field: descriptor}, server, opt.None[string]())
	_ = os.Remove(descriptor.TmpName)
	return resp
}

func copyForUpload(path string) (browser.FileDescriptor, error) {
	in, err := os.Open(path) //nolint:gosec
	if err != nil {
		return browser.FileDescriptor{}, err
	}
	defer func() { _ = in.Close() }()
	out, err := os.CreateTemp("", "upload-*")
	if err != nil {
		return browser.FileDescriptor{}, err
	}
	size, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(out.Name())
		return browser.FileDescriptor{}, err
	}
	mediaType := mime.TypeByExtension(filepath.Ext(path))
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return browser.FileDescriptor{
		TmpName: out.Name(),
		Name:    filepath.Base(path),
		Type:    mediaType,
		Size:    size,
		Error:   message.UploadErrOK,
	}, nil
}

// HaveHTTPHeader sends a header with all following requests.
func (a *Actor) HaveHTTPHeader(name, value string) { a.client.SetHeader(name, value) }

// DeleteHTTPHeader stops sending a header.
func (a *Actor) DeleteHTTPHeader(name string) { a.client.RemoveHeader(name) }

// AmHTTPAuthenticated sends basic credentials with all following requests.
func (a *Actor) AmHTTPAuthenticated(user, password string) { a.client.SetBasicAuth(user, password) }

// SetCookie stores a cookie in the browser.
func (a *Actor) SetCookie(name, value string) {
	a.client.SetCookie(&http.Cookie{Name: name, Value: value, Path: "/"})
}

// GoBack repeats the previous request in the history.
func (a *Actor) GoBack() browser.Response {
	a.t.Helper()
	resp, err := a.client.Back()
	if err != nil {
		a.t.Errorf("cannot go back: %s", err)
		a.t.FailNow()
	}
	return resp
}

func (a *Actor) lastResponse() browser.Response {
	a.t.Helper()
	resp, ok := a.client.LastResponse().Get()
	if !ok {
		a.t.Errorf("no request has been made yet")
		a.t.FailNow()
	}
	return resp
}

// GrabResponse returns the body of the last response.
func (a *Actor) GrabResponse() string {
	a.t.Helper()
	return a.lastResponse().Content
}

// GrabJSON parses the last response body as JSON, failing the test if it is not valid.
func (a *Actor) GrabJSON() ldvalue.Value {
	a.t.Helper()
	var value ldvalue.Value
	if err := value.UnmarshalJSON([]byte(a.lastResponse().Content)); err != nil {
		a.t.Errorf("response is not valid JSON: %s", err)
		a.t.FailNow()
	}
	return value
}

// GrabHeader returns the first value of a header from the last response.
func (a *Actor) GrabHeader(name string) string {
	a.t.Helper()
	return a.lastResponse().Header(name)
}

// SeeResponseCodeIs asserts the status of the last response.
func (a *Actor) SeeResponseCodeIs(status int) bool {
	a.t.Helper()
	return m.In(a.t).Assert(a.lastResponse(), ResponseStatus().Should(m.Equal(status)))
}

// See asserts that the last response body contains text.
func (a *Actor) See(text string) bool {
	a.t.Helper()
	return m.In(a.t).Assert(a.lastResponse(), ResponseContent().Should(m.StringContains(text)))
}

// DontSee asserts that the last response body does not contain text.
func (a *Actor) DontSee(text string) bool {
	a.t.Helper()
	return m.In(a.t).Assert(a.lastResponse(),
		ResponseContent().Should(m.Not(m.StringContains(text))))
}

// SeeHeader asserts that the last response has a header and, if value is given, that its
// first value is equal to it.
func (a *Actor) SeeHeader(name string, value ...string) bool {
	a.t.Helper()
	expected := m.Not(m.Equal(""))
	if len(value) > 0 {
		expected = m.Equal(value[0])
	}
	return m.In(a.t).Assert(a.lastResponse(), ResponseHeader(name).Should(expected))
}

// SeeCookie asserts that the browser has a cookie for the current page.
func (a *Actor) SeeCookie(name string) bool {
	a.t.Helper()
	if _, ok := a.client.Cookie(name); !ok {
		a.t.Errorf("expected cookie %q, but the browser has %s", name, describeCookies(a.client.Cookies()))
		return false
	}
	return true
}

// DontSeeCookie asserts that the browser has no such cookie for the current page.
func (a *Actor) DontSeeCookie(name string) bool {
	a.t.Helper()
	if _, ok := a.client.Cookie(name); ok {
		a.t.Errorf("did not expect cookie %q", name)
		return false
	}
	return true
}

// GrabCookie returns the value of a cookie, failing the test if there is none.
func (a *Actor) GrabCookie(name string) string {
	a.t.Helper()
	cookie, ok := a.client.Cookie(name)
	if !ok {
		a.t.Errorf("expected cookie %q, but the browser has %s", name, describeCookies(a.client.Cookies()))
		a.t.FailNow()
		return ""
	}
	return cookie.Value
}

// SeeResponseJSONEquals asserts that the last response body is JSON equal to the expected JSON.
func (a *Actor) SeeResponseJSONEquals(expectedJSON string) bool {
	a.t.Helper()
	return helpers.AssertJSONEqual(a.t, expectedJSON, a.lastResponse().Content)
}

// SeeCurrentURIEquals asserts the path and query of the page the browser is on.
func (a *Actor) SeeCurrentURIEquals(expected string) bool {
	a.t.Helper()
	req, ok := a.client.LastRequest().Get()
	if !ok {
		a.t.Errorf("no request has been made yet")
		return false
	}
	return m.In(a.t).Assert(req.Server.Value("REQUEST_URI"), m.Equal(expected))
}

func describeCookies(cookies []*http.Cookie) string {
	if len(cookies) == 0 {
		return "none"
	}
	names := make([]string, 0, len(cookies))
	for _, c := range cookies {
		names = append(names, c.Name)
	}
	return fmt.Sprintf("%v", names)
}
