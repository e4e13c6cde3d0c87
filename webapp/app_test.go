package webapp

import (
	"errors"
	"net/http"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levinine/browserconnector/message"
)

func newRequest(method, path string) message.ServerRequest {
	return message.NewServerRequest(method, message.NewURI(message.URIParts{Path: path}), message.Environment{})
}

func textHandler(text string) RequestHandlerFunc {
	return func(message.ServerRequest) (message.Response, error) {
		return message.NewResponse(200).WithText(text), nil
	}
}

func TestAppRoutesByMethodAndPath(t *testing.T) {
	app := NewApp()
	app.Get("/items", textHandler("list"))
	app.Post("/items", textHandler("create"))
	app.Put("/items/{id}", textHandler("replace"))
	app.Patch("/items/{id}", textHandler("update"))
	app.Delete("/items/{id}", textHandler("delete"))
	app.Any("/anything", textHandler("any"))

	for _, tc := range []struct{ method, path, expected string }{
		{"GET", "/items", "list"},
		{"HEAD", "/items", "list"},
		{"POST", "/items", "create"},
		{"PUT", "/items/1", "replace"},
		{"PATCH", "/items/1", "update"},
		{"DELETE", "/items/1", "delete"},
		{"OPTIONS", "/anything", "any"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			resp, err := app.Handle(newRequest(tc.method, tc.path))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, resp.Body().String())
		})
	}
}

func TestAppRouteVariablesBecomeAttributes(t *testing.T) {
	app := NewApp()
	var received message.ServerRequest
	app.Get("/users/{user}/posts/{post:[0-9]+}", func(req message.ServerRequest) (message.Response, error) {
		received = req
		return message.NewResponse(204), nil
	}).SetName("userPost")

	_, err := app.Handle(newRequest("GET", "/users/ann/posts/12"))
	require.NoError(t, err)
	assert.Equal(t, "ann", received.Attribute("user"))
	assert.Equal(t, "12", received.Attribute("post"))
	assert.Equal(t, "userPost", received.Attribute(RouteNameAttribute))

	path, err := app.URLFor("userPost", "user", "bob", "post", "3")
	require.NoError(t, err)
	assert.Equal(t, "/users/bob/posts/3", path)

	_, err = app.URLFor("nope")
	assert.Error(t, err)
}

func TestAppNotFoundAndMethodNotAllowed(t *testing.T) {
	app := NewApp()
	app.Get("/only-get", textHandler("x"))

	_, err := app.Handle(newRequest("GET", "/missing"))
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)

	_, err = app.Handle(newRequest("POST", "/only-get"))
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusMethodNotAllowed, httpErr.Status)
}

func TestAppEmptyPathMatchesRoot(t *testing.T) {
	app := NewApp()
	app.Get("/", textHandler("home"))
	resp, err := app.Handle(newRequest("GET", ""))
	require.NoError(t, err)
	assert.Equal(t, "home", resp.Body().String())
}

func TestAppMiddlewareOrder(t *testing.T) {
	var calls []string
	tag := func(name string) Middleware {
		return func(next RequestHandler) RequestHandler {
			return RequestHandlerFunc(func(req message.ServerRequest) (message.Response, error) {
				calls = append(calls, name)
				return next.Handle(req)
			})
		}
	}
	app := NewApp()
	app.Get("/", func(message.ServerRequest) (message.Response, error) {
		calls = append(calls, "handler")
		return message.NewResponse(200), nil
	}).Add(tag("route"))
	app.Use(tag("first"), tag("second"))

	_, err := app.Handle(newRequest("GET", "/"))
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first", "route", "handler"}, calls)
}

func TestErrorMiddleware(t *testing.T) {
	appErr := errors.New("database is down")
	failing := RequestHandlerFunc(func(req message.ServerRequest) (message.Response, error) {
		if req.URI().Path() == "/missing" {
			return message.Response{}, NewHTTPError(404, "")
		}
		return message.Response{}, appErr
	})

	t.Run("passes through other errors unless CatchAll", func(t *testing.T) {
		h := ErrorMiddleware(ErrorMiddlewareOptions{})(failing)
		_, err := h.Handle(newRequest("GET", "/"))
		assert.Same(t, appErr, err)

		resp, err := h.Handle(newRequest("GET", "/missing"))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode())
		assert.Contains(t, resp.Body().String(), "<h1>Not Found</h1>")
	})

	t.Run("CatchAll with details and logging", func(t *testing.T) {
		mockLog := ldlogtest.NewMockLog()
		defer mockLog.DumpIfTestFailed(t)
		h := ErrorMiddleware(ErrorMiddlewareOptions{
			CatchAll:       true,
			DisplayDetails: true,
			Logger:         mockLog.Loggers.ForLevel(ldlog.Error),
		})(failing)

		resp, err := h.Handle(newRequest("GET", "/").WithHeader("Accept", "application/json"))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode())
		assert.JSONEq(t, `{"message":"Internal Server Error","detail":"database is down"}`, resp.Body().String())
		assert.True(t, mockLog.HasMessageMatch(ldlog.Error, "GET / failed: .*database is down"))
	})

	t.Run("no details by default", func(t *testing.T) {
		h := ErrorMiddleware(ErrorMiddlewareOptions{CatchAll: true})(failing)
		resp, err := h.Handle(newRequest("GET", "/"))
		require.NoError(t, err)
		assert.NotContains(t, resp.Body().String(), "database")
	})
}

func TestHTTPError(t *testing.T) {
	cause := errors.New("bad input")
	e := NewHTTPError(400, "").WithCause(cause)
	assert.Equal(t, "Bad Request", e.Message)
	assert.Equal(t, "400 Bad Request: bad input", e.Error())
	assert.ErrorIs(t, e, cause)
	assert.Equal(t, "404 gone", NewHTTPError(404, "gone").Error())
}
