package browser

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/levinine/browserconnector/framework"
	"github.com/levinine/browserconnector/framework/helpers"
	"github.com/levinine/browserconnector/framework/opt"
	"github.com/levinine/browserconnector/message"
)

const (
	// DefaultBaseURI is what relative request URIs are resolved against if no base URI is configured.
	DefaultBaseURI = "http://localhost/"

	// DefaultMaxRedirects is how many redirects in a row the Client follows before giving up.
	DefaultMaxRedirects = 5
)

var (
	// ErrTooManyRedirects is returned when a request is redirected more than the configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrNoHistory is returned by Back, Forward, and Reload when there is no page to go to.
	ErrNoHistory = errors.New("no page in history")

	// ErrNoRedirect is returned by FollowRedirect if the last response was not a redirect.
	ErrNoRedirect = errors.New("last response was not a redirect")
)

// Client is a simulated browser. It sends requests through a Connector and keeps the state a
// browser would keep between them: cookies, history, and default server variables. Like a
// test scope, a Client is meant to be used from one goroutine at a time.
type Client struct {
	connector       Connector
	baseURI         *url.URL
	server          message.Environment
	jar             http.CookieJar
	history         []Request
	position        int
	maxRedirects    int
	followRedirects bool
	logger          framework.Logger
	lastRequest     opt.Maybe[Request]
	lastResponse    opt.Maybe[Response]
}

type ClientOption helpers.ConfigOption[Client]

type clientOptionBaseURI string

func (o clientOptionBaseURI) Configure(c *Client) error {
	u, err := url.Parse(string(o))
	if err != nil {
		return fmt.Errorf("invalid base URI %q: %w", string(o), err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base URI %q must be absolute", string(o))
	}
	c.baseURI = u
	return nil
}

// WithBaseURI sets the absolute URI that relative request URIs are resolved against.
func WithBaseURI(uri string) ClientOption { return clientOptionBaseURI(uri) }

type clientOptionMaxRedirects int

func (o clientOptionMaxRedirects) Configure(c *Client) error {
	c.maxRedirects = int(o)
	return nil
}

// WithMaxRedirects sets how many redirects in a row are followed.
func WithMaxRedirects(n int) ClientOption { return clientOptionMaxRedirects(n) }

type clientOptionLogger struct{ logger framework.Logger }

func (o clientOptionLogger) Configure(c *Client) error {
	c.logger = framework.OrNullLogger(o.logger)
	return nil
}

// WithClientLogger sets a logger that receives one line for each exchange.
func WithClientLogger(logger framework.Logger) ClientOption { return clientOptionLogger{logger} }

type clientOptionServer message.Environment

func (o clientOptionServer) Configure(c *Client) error {
	c.server = c.server.Merge(message.Environment(o))
	return nil
}

// WithServerParameters sets server variables that are sent with every request.
func WithServerParameters(env message.Environment) ClientOption { return clientOptionServer(env) }

// NewClient creates a Client that sends its requests to connector.
func NewClient(connector Connector, options ...ClientOption) (*Client, error) {
	base, _ := url.Parse(DefaultBaseURI)
	c := &Client{
		connector:       connector,
		baseURI:         base,
		maxRedirects:    DefaultMaxRedirects,
		followRedirects: true,
		logger:          framework.NullLogger(),
	}
	c.jar = newJar()
	if err := helpers.ApplyOptions(c, options...); err != nil {
		return nil, err
	}
	return c, nil
}

func newJar() http.CookieJar {
	jar, _ := cookiejar.New(nil) // only fails if given a bad PublicSuffixList
	return jar
}

// FollowRedirects turns automatic redirect following on or off.
func (c *Client) FollowRedirects(follow bool) { c.followRedirects = follow }

// SetServerParameter sets a server variable for all subsequent requests.
func (c *Client) SetServerParameter(name, value string) { c.server = c.server.With(name, value) }

// RemoveServerParameter stops sending a server variable.
func (c *Client) RemoveServerParameter(name string) { c.server = c.server.Without(name) }

// ServerParameter returns a server variable that is sent with every request.
func (c *Client) ServerParameter(name string) string { return c.server.Value(name) }

// SetHeader sets an HTTP header for all subsequent requests, by way of its server variable.
func (c *Client) SetHeader(name, value string) {
	c.SetServerParameter(message.ServerVarFromHeaderName(name), value)
}

// RemoveHeader stops sending a header set with SetHeader.
func (c *Client) RemoveHeader(name string) {
	c.RemoveServerParameter(message.ServerVarFromHeaderName(name))
}

// SetBasicAuth sends HTTP basic credentials with all subsequent requests.
func (c *Client) SetBasicAuth(user, password string) {
	c.SetServerParameter("PHP_AUTH_USER", user)
	c.SetServerParameter("PHP_AUTH_PW", password)
	c.SetServerParameter("HTTP_AUTHORIZATION",
		"Basic "+base64.StdEncoding.EncodeToString([]byte(user+":"+password)))
}

// Cookie returns a cookie that would be sent to the current page.
func (c *Client) Cookie(name string) (*http.Cookie, bool) {
	for _, cookie := range c.jar.Cookies(c.currentURI()) {
		if cookie.Name == name {
			return cookie, true
		}
	}
	return nil, false
}

// Cookies returns all cookies that would be sent to the current page.
func (c *Client) Cookies() []*http.Cookie { return c.jar.Cookies(c.currentURI()) }

// SetCookie stores a cookie as if the current page had set it.
func (c *Client) SetCookie(cookie *http.Cookie) {
	c.jar.SetCookies(c.currentURI(), []*http.Cookie{cookie})
}

// Restart forgets all cookies and history.
func (c *Client) Restart() {
	c.jar = newJar()
	c.history = nil
	c.position = 0
	c.lastRequest = opt.None[Request]()
	c.lastResponse = opt.None[Response]()
}

// LastRequest returns the most recent request that was sent, including redirects.
func (c *Client) LastRequest() opt.Maybe[Request] { return c.lastRequest }

// LastResponse returns the most recent response.
func (c *Client) LastResponse() opt.Maybe[Response] { return c.lastResponse }

// History returns the requests in the browser history, oldest first.
func (c *Client) History() []Request { return append([]Request(nil), c.history...) }

func (c *Client) currentURI() *url.URL {
	if req, ok := c.lastRequest.Get(); ok {
		if u, err := url.Parse(req.URI); err == nil {
			return u
		}
	}
	return c.baseURI
}

// Get is a shortcut for a GET request with optional query parameters.
func (c *Client) Get(uri string, params ldvalue.Value) (Response, error) {
	return c.Request(http.MethodGet, uri, params, nil, message.Environment{}, opt.None[string]())
}

// Request sends a request. The URI may be relative to the current base URI. For GET requests,
// params are added to the query string; for other methods they are passed on as Parameters.
// Server variables given here are added to the Client's defaults for this request only.
func (c *Client) Request(
	method, uri string,
	params ldvalue.Value,
	files Files,
	server message.Environment,
	content opt.Maybe[string],
) (Response, error) {
	return c.request(method, uri, params, files, server, content, 0, true)
}

func (c *Client) request(
	method, uri string,
	params ldvalue.Value,
	files Files,
	server message.Environment,
	content opt.Maybe[string],
	redirects int,
	changeHistory bool,
) (Response, error) {
	target, err := c.baseURI.Parse(uri)
	if err != nil {
		return Response{}, fmt.Errorf("invalid request URI %q: %w", uri, err)
	}
	method = strings.ToUpper(method)
	if method == http.MethodGet && len(message.ObjectKeys(params)) > 0 {
		query := target.Query()
		for name, values := range message.FormFromValue(params) {
			query[name] = append(query[name], values...)
		}
		target.RawQuery = query.Encode()
		params = ldvalue.Null()
	}

	env := c.server.Merge(server).
		With("HTTP_HOST", target.Host).
		With("REQUEST_METHOD", method).
		With("REQUEST_URI", target.RequestURI()).
		With("QUERY_STRING", target.RawQuery)
	if target.Scheme == "https" {
		env = env.With("HTTPS", "on")
	} else {
		env = env.Without("HTTPS")
	}
	if current, ok := c.lastRequest.Get(); ok && !env.Has("HTTP_REFERER") {
		env = env.With("HTTP_REFERER", current.URI)
	}
	if cookies := c.jar.Cookies(target); len(cookies) > 0 {
		pairs := make([]string, 0, len(cookies))
		for _, cookie := range cookies {
			pairs = append(pairs, cookie.Name+"="+cookie.Value)
		}
		env = env.With("HTTP_COOKIE", strings.Join(pairs, "; "))
	}

	req := Request{
		Method:     method,
		URI:        target.String(),
		Parameters: params,
		Files:      files,
		Server:     env,
		Content:    content,
	}
	resp, err := c.connector.Execute(req)
	if err != nil {
		c.logger.Printf("%s %s failed: %s", method, req.URI, err)
		return Response{}, err
	}
	c.logger.Printf("%s %s -> %d", method, req.URI, resp.Status)

	c.jar.SetCookies(target, resp.Cookies())
	if changeHistory {
		c.history = append(c.history[:min(c.position+1, len(c.history))], req)
		c.position = len(c.history) - 1
	}
	c.lastRequest = opt.Some(req)
	c.lastResponse = opt.Some(resp)

	if !c.followRedirects || !isRedirect(resp) {
		return resp, nil
	}
	if redirects >= c.maxRedirects {
		return resp, fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, redirects)
	}
	return c.redirect(req, resp, server, redirects+1, changeHistory)
}

// FollowRedirect follows the redirect in the last response, for use when automatic redirects
// are turned off.
func (c *Client) FollowRedirect() (Response, error) {
	req, hasReq := c.lastRequest.Get()
	resp, hasResp := c.lastResponse.Get()
	if !hasReq || !hasResp || !isRedirect(resp) {
		return Response{}, ErrNoRedirect
	}
	return c.redirect(req, resp, message.Environment{}, 1, true)
}

func (c *Client) redirect(req Request, resp Response, server message.Environment, redirects int,
	changeHistory bool) (Response, error) {
	location := resp.Header("Location")
	from, err := url.Parse(req.URI)
	if err != nil {
		return resp, err
	}
	target, err := from.Parse(location)
	if err != nil {
		return resp, fmt.Errorf("invalid redirect location %q: %w", location, err)
	}
	if resp.Status == http.StatusTemporaryRedirect || resp.Status == http.StatusPermanentRedirect {
		return c.request(req.Method, target.String(), req.Parameters, req.Files, server, req.Content,
			redirects, changeHistory)
	}
	for _, name := range []string{"CONTENT_TYPE", "CONTENT_LENGTH", "HTTP_CONTENT_TYPE", "HTTP_CONTENT_LENGTH"} {
		server = server.Without(name)
	}
	return c.request(http.MethodGet, target.String(), ldvalue.Null(), nil, server, opt.None[string](),
		redirects, changeHistory)
}

func isRedirect(resp Response) bool {
	switch resp.Status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return resp.Header("Location") != ""
	}
	return false
}

// Back repeats the previous request in the history.
func (c *Client) Back() (Response, error) {
	if c.position <= 0 || len(c.history) == 0 {
		return Response{}, ErrNoHistory
	}
	c.position--
	return c.replay(c.history[c.position])
}

// Forward repeats the next request in the history, after Back.
func (c *Client) Forward() (Response, error) {
	if c.position+1 >= len(c.history) {
		return Response{}, ErrNoHistory
	}
	c.position++
	return c.replay(c.history[c.position])
}

// Reload repeats the current request.
func (c *Client) Reload() (Response, error) {
	if len(c.history) == 0 {
		return Response{}, ErrNoHistory
	}
	return c.replay(c.history[c.position])
}

func (c *Client) replay(req Request) (Response, error) {
	server := req.Server.Without("HTTP_COOKIE").Without("HTTP_REFERER")
	return c.request(req.Method, req.URI, req.Parameters, req.Files, server, req.Content, 0, false)
}
