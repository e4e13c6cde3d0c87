// Package exampleapp is a small application built on webapp. The test suite drives it
// through the connector, and "browserconnector -serve" exposes it over real HTTP.
package exampleapp

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/levinine/browserconnector/framework"
	"github.com/levinine/browserconnector/message"
	"github.com/levinine/browserconnector/webapp"
)

// Name is stored in the "app" attribute of the request template.
const Name = "exampleapp"

// PoweredByHeader is added to every response.
const PoweredByHeader = "X-Powered-By"

// App is the example application. It is a webapp.App with an item catalog and a session store.
type App struct {
	*webapp.App
	items     *itemStore
	sessions  *SessionStore
	uploadDir string
	logger    framework.Logger
}

// Options configures New.
type Options struct {
	// UploadDir is where POST /upload moves uploaded files. The default is a new temporary directory.
	UploadDir string

	// DisplayErrorDetails includes error text in 500 responses.
	DisplayErrorDetails bool

	// Logger receives error logs.
	Logger framework.Logger
}

// New creates the application with all of its routes.
func New(options Options) (*App, error) {
	uploadDir := options.UploadDir
	if uploadDir == "" {
		dir, err := os.MkdirTemp("", "exampleapp-uploads")
		if err != nil {
			return nil, fmt.Errorf("creating upload directory: %w", err)
		}
		uploadDir = dir
	}
	logger := framework.OrNullLogger(options.Logger)
	a := &App{
		App:       webapp.NewApp(webapp.WithAppLogger(logger)),
		items:     newItemStore(),
		sessions:  NewSessionStore(),
		uploadDir: uploadDir,
		logger:    logger,
	}

	a.Get("/", a.home).SetName("home")
	a.Get("/hello/{name}", a.hello).SetName("hello")
	a.Get("/form", a.showForm).SetName("form")
	a.Post("/form", a.submitForm)
	a.Get("/api/items", a.listItems).SetName("items")
	a.Post("/api/items", a.createItem)
	a.Get("/api/items/{id:[0-9]+}", a.getItem).SetName("item")
	a.Delete("/api/items/{id:[0-9]+}", a.deleteItem)
	a.Any("/headers", a.echoHeaders)
	a.Get("/server", a.serverInfo)
	a.Map([]string{http.MethodGet}, "/auth", webapp.FromHTTPHandler(http.HandlerFunc(basicAuthArea)))
	a.Get("/cookies", a.showCookies)
	a.Get("/cookies/set", a.setCookie)
	a.Get("/cookies/clear", a.clearCookie)
	a.Post("/upload", a.upload)
	a.Any("/redirect", a.redirect)
	a.Get("/loop", func(message.ServerRequest) (message.Response, error) {
		return message.NewResponse(http.StatusFound).WithHeader("Location", "/loop"), nil
	})
	a.Get("/visits", a.visits)
	a.Get("/events", a.events)
	a.Get("/teapot", func(message.ServerRequest) (message.Response, error) {
		return message.Response{}, webapp.NewHTTPError(http.StatusTeapot, "I'm a teapot")
	})
	a.Get("/boom", func(message.ServerRequest) (message.Response, error) {
		return message.Response{}, errBoom
	})
	a.Get("/admin", a.home).Add(requireRole("admin"))

	a.Use(
		webapp.BodyParsingMiddleware(),
		webapp.ErrorMiddleware(webapp.ErrorMiddlewareOptions{
			DisplayDetails: options.DisplayErrorDetails,
			Logger:         logger,
		}),
		poweredBy,
	)
	return a, nil
}

// Sessions returns the application's session store.
func (a *App) Sessions() *SessionStore { return a.sessions }

// UploadDir returns the directory that uploads are moved to.
func (a *App) UploadDir() string { return a.uploadDir }

// CloseSessions closes every session that was opened by a request.
func (a *App) CloseSessions() error {
	n := a.sessions.CloseAll()
	if n > 0 {
		a.logger.Printf("closed %d session(s)", n)
	}
	return nil
}

// Bootstrap returns a function that creates the application and the request template that
// simulated requests are built on.
func Bootstrap(options Options) func() (webapp.RequestHandler, message.ServerRequest, error) {
	return func() (webapp.RequestHandler, message.ServerRequest, error) {
		app, err := New(options)
		if err != nil {
			return nil, message.ServerRequest{}, err
		}
		template := message.NewServerRequest(http.MethodGet, message.URI{}, message.Environment{}).
			WithAttribute("app", Name)
		return app, template, nil
	}
}

func poweredBy(next webapp.RequestHandler) webapp.RequestHandler {
	return webapp.RequestHandlerFunc(func(req message.ServerRequest) (message.Response, error) {
		resp, err := next.Handle(req)
		if err != nil {
			return resp, err
		}
		return resp.WithHeader(PoweredByHeader, Name), nil
	})
}

func requireRole(role string) webapp.Middleware {
	return func(next webapp.RequestHandler) webapp.RequestHandler {
		return webapp.RequestHandlerFunc(func(req message.ServerRequest) (message.Response, error) {
			for _, r := range strings.Split(req.HeaderLine("X-Role"), ",") {
				if strings.TrimSpace(r) == role {
					return next.Handle(req)
				}
			}
			return message.Response{}, webapp.NewHTTPError(http.StatusForbidden, "Forbidden")
		})
	}
}
