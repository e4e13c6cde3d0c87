package browser

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levinine/browserconnector/framework/opt"
	"github.com/levinine/browserconnector/message"
)

type fakeConnector struct {
	requests  []Request
	responses map[string]Response
}

func (f *fakeConnector) Execute(req Request) (Response, error) {
	f.requests = append(f.requests, req)
	if resp, ok := f.responses[req.Method+" "+req.URI]; ok {
		return resp, nil
	}
	return Response{Status: 200, Content: "ok " + req.URI, Headers: http.Header{}}, nil
}

func (f *fakeConnector) last() Request { return f.requests[len(f.requests)-1] }

func newTestClient(t *testing.T, f *fakeConnector, options ...ClientOption) *Client {
	c, err := NewClient(f, options...)
	require.NoError(t, err)
	return c
}

func redirectTo(status int, location string) Response {
	return Response{Status: status, Headers: http.Header{"Location": {location}}}
}

func TestClientResolvesRelativeURIs(t *testing.T) {
	f := &fakeConnector{}
	c := newTestClient(t, f)
	resp, err := c.Get("/path?x=1", ldvalue.Null())
	require.NoError(t, err)
	assert.Equal(t, "ok http://localhost/path?x=1", resp.Content)

	c = newTestClient(t, f, WithBaseURI("https://shop.test:8443/app/"))
	_, err = c.Get("items", ldvalue.Null())
	require.NoError(t, err)
	req := f.last()
	assert.Equal(t, "https://shop.test:8443/app/items", req.URI)
	assert.Equal(t, "on", req.Server.Value("HTTPS"))
	assert.Equal(t, "shop.test:8443", req.Server.Value("HTTP_HOST"))
	assert.Equal(t, "/app/items", req.Server.Value("REQUEST_URI"))
}

func TestClientRejectsRelativeBaseURI(t *testing.T) {
	_, err := NewClient(&fakeConnector{}, WithBaseURI("/relative"))
	assert.Error(t, err)
}

func TestClientPutsGetParametersInQuery(t *testing.T) {
	f := &fakeConnector{}
	c := newTestClient(t, f)
	params := ldvalue.ObjectBuild().Set("q", ldvalue.String("shoes")).Set("page", ldvalue.Int(2)).Build()
	_, err := c.Get("/search?sort=asc", params)
	require.NoError(t, err)
	req := f.last()
	assert.Equal(t, "http://localhost/search?page=2&q=shoes&sort=asc", req.URI)
	assert.Equal(t, "page=2&q=shoes&sort=asc", req.Server.Value("QUERY_STRING"))
	assert.True(t, req.Parameters.IsNull())
}

func TestClientPassesPostParametersAndContent(t *testing.T) {
	f := &fakeConnector{}
	c := newTestClient(t, f)
	params := ldvalue.ObjectBuild().Set("name", ldvalue.String("ann")).Build()
	files := Files{"doc": FileDescriptor{TmpName: "/tmp/x", Name: "x.txt"}}
	_, err := c.Request("post", "/form", params, files,
		message.NewEnvironment("CONTENT_TYPE", "text/plain"), opt.Some("raw"))
	require.NoError(t, err)
	req := f.last()
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, params, req.Parameters)
	assert.Equal(t, files, req.Files)
	assert.Equal(t, opt.Some("raw"), req.Content)
	assert.Equal(t, "text/plain", req.Server.Value("CONTENT_TYPE"))
	assert.Equal(t, "POST", req.Server.Value("REQUEST_METHOD"))
}

func TestClientServerParametersAndHeaders(t *testing.T) {
	f := &fakeConnector{}
	c := newTestClient(t, f, WithServerParameters(message.NewEnvironment("REMOTE_ADDR", "10.1.1.1")))
	c.SetHeader("X-Api-Key", "secret")
	c.SetBasicAuth("ann", "pw")
	_, err := c.Get("/", ldvalue.Null())
	require.NoError(t, err)
	env := f.last().Server
	assert.Equal(t, "10.1.1.1", env.Value("REMOTE_ADDR"))
	assert.Equal(t, "secret", env.Value("HTTP_X_API_KEY"))
	assert.Equal(t, "ann", env.Value("PHP_AUTH_USER"))
	assert.Equal(t, "Basic YW5uOnB3", env.Value("HTTP_AUTHORIZATION"))

	c.RemoveHeader("X-Api-Key")
	c.RemoveServerParameter("REMOTE_ADDR")
	_, err = c.Get("/", ldvalue.Null())
	require.NoError(t, err)
	assert.False(t, f.last().Server.Has("HTTP_X_API_KEY"))
	assert.False(t, f.last().Server.Has("REMOTE_ADDR"))
	assert.Equal(t, "", c.ServerParameter("REMOTE_ADDR"))
}

func TestClientStoresAndSendsCookies(t *testing.T) {
	f := &fakeConnector{responses: map[string]Response{
		"GET http://localhost/login": {Status: 200, Headers: http.Header{
			"Set-Cookie": {"session=abc; Path=/", "theme=dark; Path=/"},
		}},
	}}
	c := newTestClient(t, f)
	_, err := c.Get("/login", ldvalue.Null())
	require.NoError(t, err)
	assert.False(t, f.last().Server.Has("HTTP_COOKIE"))

	_, err = c.Get("/account", ldvalue.Null())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"session": "abc", "theme": "dark"},
		message.ParseCookieHeader(f.last().Server.Value("HTTP_COOKIE")))

	cookie, ok := c.Cookie("session")
	require.True(t, ok)
	assert.Equal(t, "abc", cookie.Value)
	assert.Len(t, c.Cookies(), 2)

	c.SetCookie(&http.Cookie{Name: "lang", Value: "en", Path: "/"})
	_, ok = c.Cookie("lang")
	assert.True(t, ok)

	c.Restart()
	assert.Len(t, c.Cookies(), 0)
	assert.Len(t, c.History(), 0)
	assert.False(t, c.LastResponse().IsDefined())
}

func TestClientSetsReferer(t *testing.T) {
	f := &fakeConnector{}
	c := newTestClient(t, f)
	_, _ = c.Get("/a", ldvalue.Null())
	assert.False(t, f.last().Server.Has("HTTP_REFERER"))
	_, _ = c.Get("/b", ldvalue.Null())
	assert.Equal(t, "http://localhost/a", f.last().Server.Value("HTTP_REFERER"))
}

func TestClientFollowsRedirects(t *testing.T) {
	for _, status := range []int{301, 302, 303} {
		t.Run(fmt.Sprint(status), func(t *testing.T) {
			f := &fakeConnector{responses: map[string]Response{
				"POST http://localhost/form": redirectTo(status, "/done"),
			}}
			c := newTestClient(t, f)
			resp, err := c.Request("POST", "/form", ldvalue.ObjectBuild().Set("a", ldvalue.String("1")).Build(),
				nil, message.NewEnvironment("CONTENT_TYPE", "application/x-www-form-urlencoded"), opt.Some("a=1"))
			require.NoError(t, err)
			assert.Equal(t, "ok http://localhost/done", resp.Content)
			req := f.last()
			assert.Equal(t, "GET", req.Method)
			assert.True(t, req.Parameters.IsNull())
			assert.False(t, req.Content.IsDefined())
			assert.False(t, req.Server.Has("CONTENT_TYPE"))
			assert.Len(t, c.History(), 2)
		})
	}
}

func TestClientKeepsMethodOnTemporaryRedirect(t *testing.T) {
	for _, status := range []int{307, 308} {
		t.Run(fmt.Sprint(status), func(t *testing.T) {
			f := &fakeConnector{responses: map[string]Response{
				"PUT http://localhost/old": redirectTo(status, "http://localhost/new"),
			}}
			c := newTestClient(t, f)
			_, err := c.Request("PUT", "/old", ldvalue.Null(), nil, message.Environment{}, opt.Some("body"))
			require.NoError(t, err)
			req := f.last()
			assert.Equal(t, "PUT", req.Method)
			assert.Equal(t, "http://localhost/new", req.URI)
			assert.Equal(t, opt.Some("body"), req.Content)
		})
	}
}

func TestClientStopsAfterMaxRedirects(t *testing.T) {
	f := &fakeConnector{responses: map[string]Response{
		"GET http://localhost/loop": redirectTo(302, "/loop"),
	}}
	c := newTestClient(t, f, WithMaxRedirects(3))
	resp, err := c.Get("/loop", ldvalue.Null())
	assert.True(t, errors.Is(err, ErrTooManyRedirects))
	assert.Equal(t, 302, resp.Status)
	assert.Len(t, f.requests, 4)
}

func TestClientManualRedirect(t *testing.T) {
	f := &fakeConnector{responses: map[string]Response{
		"GET http://localhost/go": redirectTo(302, "/there"),
	}}
	c := newTestClient(t, f)
	c.FollowRedirects(false)

	_, err := c.FollowRedirect()
	assert.Equal(t, ErrNoRedirect, err)

	resp, err := c.Get("/go", ldvalue.Null())
	require.NoError(t, err)
	assert.Equal(t, 302, resp.Status)

	resp, err = c.FollowRedirect()
	require.NoError(t, err)
	assert.Equal(t, "ok http://localhost/there", resp.Content)
}

func TestClientHistory(t *testing.T) {
	f := &fakeConnector{}
	c := newTestClient(t, f)

	_, err := c.Back()
	assert.Equal(t, ErrNoHistory, err)
	_, err = c.Reload()
	assert.Equal(t, ErrNoHistory, err)

	for _, p := range []string{"/1", "/2", "/3"} {
		_, err := c.Get(p, ldvalue.Null())
		require.NoError(t, err)
	}
	resp, err := c.Back()
	require.NoError(t, err)
	assert.Equal(t, "ok http://localhost/2", resp.Content)
	resp, err = c.Back()
	require.NoError(t, err)
	assert.Equal(t, "ok http://localhost/1", resp.Content)
	_, err = c.Back()
	assert.Equal(t, ErrNoHistory, err)

	resp, err = c.Forward()
	require.NoError(t, err)
	assert.Equal(t, "ok http://localhost/2", resp.Content)
	resp, err = c.Reload()
	require.NoError(t, err)
	assert.Equal(t, "ok http://localhost/2", resp.Content)
	assert.Len(t, c.History(), 3)

	_, err = c.Get("/4", ldvalue.Null())
	require.NoError(t, err)
	history := c.History()
	require.Len(t, history, 3)
	assert.Equal(t, "http://localhost/4", history[2].URI)
	_, err = c.Forward()
	assert.Equal(t, ErrNoHistory, err)
}

func TestClientReturnsConnectorErrors(t *testing.T) {
	mockLog := ldlogtest.NewMockLog()
	defer mockLog.DumpIfTestFailed(t)
	failure := errors.New("handler exploded")
	c, err := NewClient(ConnectorFunc(func(Request) (Response, error) { return Response{}, failure }),
		WithClientLogger(mockLog.Loggers.ForLevel(ldlog.Debug)))
	require.NoError(t, err)

	_, err = c.Get("/x", ldvalue.Null())
	assert.Same(t, failure, err)
	assert.False(t, c.LastRequest().IsDefined())
	assert.True(t, mockLog.HasMessageMatch(ldlog.Debug, "GET http://localhost/x failed: handler exploded"))
}
