package webapp

import (
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"

	"github.com/gorilla/mux"

	"github.com/levinine/browserconnector/framework"
	"github.com/levinine/browserconnector/framework/helpers"
	"github.com/levinine/browserconnector/message"
)

// RouteNameAttribute is the request attribute that holds the name of the matched route.
const RouteNameAttribute = "__routeName__"

// App is a routed application. Routes are matched by gorilla/mux; path variables such as
// "{id}" become request attributes of the same name.
//
// Middleware added with Use wraps the whole application, including routing, so it also sees
// 404 and 405 errors. The last middleware added is the outermost.
type App struct {
	router      *mux.Router
	middleware  []Middleware
	logger      framework.Logger
	tempDir     string
	lastRouteID int
	lock        sync.Mutex
}

type AppOption helpers.ConfigOption[App]

type appOptionLogger struct{ logger framework.Logger }

func (o appOptionLogger) Configure(a *App) error {
	a.logger = framework.OrNullLogger(o.logger)
	return nil
}

// WithAppLogger sets the logger that the App uses for serving errors.
func WithAppLogger(logger framework.Logger) AppOption { return appOptionLogger{logger} }

type appOptionTempDir string

func (o appOptionTempDir) Configure(a *App) error {
	a.tempDir = string(o)
	return nil
}

// WithTempDir sets the directory where ServeHTTP stores uploaded files.
func WithTempDir(dir string) AppOption { return appOptionTempDir(dir) }

// NewApp creates an App with no routes.
func NewApp(options ...AppOption) *App {
	a := &App{
		router:  mux.NewRouter(),
		logger:  framework.NullLogger(),
		tempDir: os.TempDir(),
	}
	_ = helpers.ApplyOptions(a, options...)
	return a
}

// Route is a single route of an App.
type Route struct {
	target *routeTarget
	route  *mux.Route
}

// routeTarget is what the mux route points to; it carries our handler rather than serving
// HTTP itself.
type routeTarget struct {
	name    string
	handler RequestHandler
}

func (rt *routeTarget) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "route "+rt.name+" must be served through its App", http.StatusInternalServerError)
}

// Map adds a route for the given methods and path pattern.
func (a *App) Map(methods []string, pattern string, handler RequestHandler) *Route {
	a.lock.Lock()
	a.lastRouteID++
	name := "route" + strconv.Itoa(a.lastRouteID)
	a.lock.Unlock()
	target := &routeTarget{name: name, handler: handler}
	route := a.router.NewRoute().Path(pattern).Handler(target)
	if len(methods) > 0 {
		route = route.Methods(methods...)
	}
	return &Route{target: target, route: route}
}

func (a *App) Get(pattern string, handler RequestHandlerFunc) *Route {
	return a.Map([]string{http.MethodGet, http.MethodHead}, pattern, handler)
}

func (a *App) Post(pattern string, handler RequestHandlerFunc) *Route {
	return a.Map([]string{http.MethodPost}, pattern, handler)
}

func (a *App) Put(pattern string, handler RequestHandlerFunc) *Route {
	return a.Map([]string{http.MethodPut}, pattern, handler)
}

func (a *App) Patch(pattern string, handler RequestHandlerFunc) *Route {
	return a.Map([]string{http.MethodPatch}, pattern, handler)
}

func (a *App) Delete(pattern string, handler RequestHandlerFunc) *Route {
	return a.Map([]string{http.MethodDelete}, pattern, handler)
}

// Any adds a route that matches every method.
func (a *App) Any(pattern string, handler RequestHandlerFunc) *Route {
	return a.Map(nil, pattern, handler)
}

// SetName replaces the generated route name, which is visible to handlers as the
// RouteNameAttribute attribute and can be used with URLFor. It can only be called once.
func (r *Route) SetName(name string) *Route {
	r.target.name = name
	r.route.Name(name)
	return r
}

// Name returns the route's name.
func (r *Route) Name() string { return r.target.name }

// Add wraps this route's handler in middleware.
func (r *Route) Add(middleware ...Middleware) *Route {
	r.target.handler = Chain(r.target.handler, middleware...)
	return r
}

// Use adds application middleware.
func (a *App) Use(middleware ...Middleware) *App {
	a.middleware = append(a.middleware, middleware...)
	return a
}

// URLFor builds the path of a named route from its variables.
func (a *App) URLFor(name string, pairs ...string) (string, error) {
	route := a.router.Get(name)
	if route == nil {
		return "", NewHTTPError(http.StatusInternalServerError, "no route named "+name)
	}
	u, err := route.URLPath(pairs...)
	if err != nil {
		return "", err
	}
	return u.Path, nil
}

// Handle runs a request through the application middleware and the router.
func (a *App) Handle(req message.ServerRequest) (message.Response, error) {
	return Chain(RequestHandlerFunc(a.dispatch), a.middleware...).Handle(req)
}

func (a *App) dispatch(req message.ServerRequest) (message.Response, error) {
	path := req.URI().Path()
	if path == "" {
		path = "/"
	}
	decoded, err := url.PathUnescape(path)
	if err != nil {
		return message.Response{}, NewHTTPError(http.StatusBadRequest, "").WithCause(err)
	}
	matchReq := &http.Request{
		Method: req.Method(),
		URL:    &url.URL{Path: decoded, RawPath: path, RawQuery: req.URI().Query()},
		Host:   req.URI().Host(),
		Header: req.Headers(),
	}
	var match mux.RouteMatch
	if !a.router.Match(matchReq, &match) {
		if match.MatchErr == mux.ErrMethodMismatch {
			return message.Response{}, NewHTTPError(http.StatusMethodNotAllowed, "")
		}
		return message.Response{}, NewHTTPError(http.StatusNotFound, "")
	}
	target, ok := match.Handler.(*routeTarget)
	if !ok {
		return message.Response{}, NewHTTPError(http.StatusNotFound, "")
	}
	for name, value := range match.Vars {
		req = req.WithAttribute(name, value)
	}
	req = req.WithAttribute(RouteNameAttribute, target.name)
	return target.handler.Handle(req)
}

// ServeHTTP serves real HTTP requests with the application, so the same App that is
// exercised in-process can also be run as a server.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := RequestFromHTTP(r, a.tempDir)
	defer cleanup()
	if err != nil {
		a.logger.Printf("Could not read request for %s: %s", r.URL, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	resp, err := a.Handle(req)
	if err != nil {
		a.logger.Printf("Unhandled error for %s %s: %s", r.Method, r.URL, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := NewResponseEmitter(w).Emit(resp); err != nil {
		a.logger.Printf("Error writing response for %s %s: %s", r.Method, r.URL, err)
	}
}
