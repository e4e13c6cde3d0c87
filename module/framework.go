package module

import (
	"fmt"

	"github.com/levinine/browserconnector/browser"
	"github.com/levinine/browserconnector/connector"
	"github.com/levinine/browserconnector/framework"
	"github.com/levinine/browserconnector/framework/bctest"
	"github.com/levinine/browserconnector/framework/helpers"
	"github.com/levinine/browserconnector/message"
	"github.com/levinine/browserconnector/webapp"
)

// Bootstrap starts the application under test and returns its handler together with the
// request that every simulated request should be built on.
type Bootstrap func() (webapp.RequestHandler, message.ServerRequest, error)

// Config holds the settings that apply to every test.
type Config struct {
	// BaseURI is what relative page URIs are resolved against. The default is browser.DefaultBaseURI.
	BaseURI string

	// MaxRedirects is how many redirects in a row are followed. Zero means browser.DefaultMaxRedirects.
	MaxRedirects int

	// Server contains server variables for every request, such as a REMOTE_ADDR.
	Server message.Environment

	// Emitter receives every response. The default is the connector's standard-output emitter.
	Emitter webapp.Emitter

	// HeaderSource is passed on to each connector.
	HeaderSource connector.HeaderSource

	// Metrics, if set, records every exchange.
	Metrics *connector.Metrics

	// Logger receives exchange logs, in addition to the debug log of a bctest scope.
	Logger framework.Logger
}

// Framework manages the application and creates a connected Actor for each test.
type Framework struct {
	config   Config
	handler  webapp.RequestHandler
	template message.ServerRequest
}

// NewFramework creates a Framework. Initialize must be called before Before.
func NewFramework(config Config) *Framework {
	return &Framework{config: config}
}

// Initialize runs the bootstrap and keeps the application and request template it returns.
func (f *Framework) Initialize(bootstrap Bootstrap) error {
	handler, template, err := bootstrap()
	if err != nil {
		return fmt.Errorf("application bootstrap failed: %w", err)
	}
	if handler == nil {
		return fmt.Errorf("application bootstrap returned no handler")
	}
	f.handler, f.template = handler, template
	return nil
}

// Handler returns the application handler from Initialize.
func (f *Framework) Handler() webapp.RequestHandler { return f.handler }

// Before creates a new connector and browser client for a test and returns an Actor that uses
// them. Failures are reported to t and end the test.
func (f *Framework) Before(t helpers.TestContext) *Actor {
	return f.newActor(t, f.config.Logger)
}

func (f *Framework) newActor(t helpers.TestContext, logger framework.Logger) *Actor {
	t.Helper()
	if f.handler == nil {
		t.Errorf("Framework.Before was called before Initialize")
		t.FailNow()
		return nil
	}

	options := []connector.Option{
		connector.WithLogger(logger),
		connector.WithHeaderSource(f.config.HeaderSource),
		connector.WithMetrics(f.config.Metrics),
	}
	if f.config.Emitter != nil {
		options = append(options, connector.WithEmitter(f.config.Emitter))
	}
	conn, err := connector.New(options...)
	if err == nil {
		err = conn.BindHandler(f.handler)
	}
	if err == nil {
		err = conn.BindRequestTemplate(f.template)
	}
	if err != nil {
		t.Errorf("could not set up connector: %s", err)
		t.FailNow()
		return nil
	}

	clientOptions := []browser.ClientOption{
		browser.WithClientLogger(logger),
		browser.WithServerParameters(f.config.Server),
	}
	if f.config.BaseURI != "" {
		clientOptions = append(clientOptions, browser.WithBaseURI(f.config.BaseURI))
	}
	if f.config.MaxRedirects > 0 {
		clientOptions = append(clientOptions, browser.WithMaxRedirects(f.config.MaxRedirects))
	}
	client, err := browser.NewClient(conn, clientOptions...)
	if err != nil {
		t.Errorf("could not set up browser client: %s", err)
		t.FailNow()
		return nil
	}
	return &Actor{t: t, client: client}
}

// After ends a test: if the application keeps sessions, they are closed.
func (f *Framework) After(t helpers.TestContext) {
	if closer, ok := f.handler.(webapp.SessionCloser); ok {
		if err := closer.CloseSessions(); err != nil {
			t.Errorf("closing application sessions: %s", err)
		}
	}
}

// ForTest is Before and After for a bctest scope. The Actor logs to the scope's debug output,
// and After runs when the scope ends.
func (f *Framework) ForTest(t *bctest.T) *Actor {
	logger := t.DebugLogger()
	if f.config.Logger != nil {
		logger = multiLogger{logger, f.config.Logger}
	}
	actor := f.newActor(t, logger)
	t.Defer(func() { f.After(t) })
	return actor
}

type multiLogger []framework.Logger

func (m multiLogger) Println(args ...interface{}) {
	for _, l := range m {
		l.Println(args...)
	}
}

func (m multiLogger) Printf(message string, args ...interface{}) {
	for _, l := range m {
		l.Printf(message, args...)
	}
}
