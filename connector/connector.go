package connector

import (
	"net/http"
	"os"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/levinine/browserconnector/browser"
	"github.com/levinine/browserconnector/framework"
	"github.com/levinine/browserconnector/framework/helpers"
	"github.com/levinine/browserconnector/framework/opt"
	"github.com/levinine/browserconnector/message"
	"github.com/levinine/browserconnector/webapp"
)

// Connector serves browser requests with an in-process application handler. It implements
// browser.Connector.
//
// The handler and request template are set once, before the first Execute, and a Connector
// keeps no state from one exchange to the next. It is not safe for concurrent use; each test
// should have its own.
type Connector struct {
	handler        webapp.RequestHandler
	template       opt.Maybe[message.ServerRequest]
	emitter        webapp.Emitter
	headerSource   HeaderSource
	serverDefaults message.Environment
	logger         framework.Logger
	metrics        *Metrics
	now            func() time.Time
}

type Option helpers.ConfigOption[Connector]

type optionEmitter struct{ emitter webapp.Emitter }

func (o optionEmitter) Configure(c *Connector) error {
	if o.emitter == nil {
		return &InvalidArgumentError{Argument: "emitter", Reason: "must not be nil"}
	}
	c.emitter = o.emitter
	return nil
}

// WithEmitter sets where responses are emitted. The default writes response bodies to
// standard output, as a server process would.
func WithEmitter(emitter webapp.Emitter) Option { return optionEmitter{emitter} }

type optionHeaderSource struct{ source HeaderSource }

func (o optionHeaderSource) Configure(c *Connector) error {
	c.headerSource = o.source
	return nil
}

// WithHeaderSource sets where a missing Authorization header can be looked up.
func WithHeaderSource(source HeaderSource) Option { return optionHeaderSource{source} }

type optionLogger struct{ logger framework.Logger }

func (o optionLogger) Configure(c *Connector) error {
	c.logger = framework.OrNullLogger(o.logger)
	return nil
}

// WithLogger sets a logger for debug output about each exchange.
func WithLogger(logger framework.Logger) Option { return optionLogger{logger} }

type optionMetrics struct{ metrics *Metrics }

func (o optionMetrics) Configure(c *Connector) error {
	c.metrics = o.metrics
	return nil
}

// WithMetrics makes the Connector record each exchange in metrics.
func WithMetrics(metrics *Metrics) Option { return optionMetrics{metrics} }

type optionServerDefaults message.Environment

func (o optionServerDefaults) Configure(c *Connector) error {
	c.serverDefaults = c.serverDefaults.Merge(message.Environment(o))
	return nil
}

// WithServerDefaults sets server variables that apply to every request unless the request
// itself sets them.
func WithServerDefaults(env message.Environment) Option { return optionServerDefaults(env) }

// New creates a Connector. It must be bound to a handler and a request template before use.
func New(options ...Option) (*Connector, error) {
	c := &Connector{
		emitter: webapp.NewResponseEmitter(os.Stdout),
		logger:  framework.NullLogger(),
		now:     time.Now,
	}
	if err := helpers.ApplyOptions(c, options...); err != nil {
		return nil, err
	}
	return c, nil
}

// BindHandler sets the application handler. It can be called again to replace it.
func (c *Connector) BindHandler(handler webapp.RequestHandler) error {
	if handler == nil {
		return &InvalidArgumentError{Argument: "handler", Reason: "must not be nil"}
	}
	if f, ok := handler.(webapp.RequestHandlerFunc); ok && f == nil {
		return &InvalidArgumentError{Argument: "handler", Reason: "must not be nil"}
	}
	c.handler = handler
	return nil
}

// BindRequestTemplate sets the request that every simulated request is built on. It can be
// called again to replace it.
func (c *Connector) BindRequestTemplate(template message.ServerRequest) error {
	if template.IsZero() {
		return &InvalidArgumentError{Argument: "request template", Reason: "must be created with message.NewServerRequest"}
	}
	c.template = opt.Some(template)
	return nil
}

// Execute serves one browser request. The handler's error, if any, is returned unchanged and
// nothing is emitted.
func (c *Connector) Execute(req browser.Request) (browser.Response, error) {
	if c.handler == nil {
		return browser.Response{}, &PreconditionError{Missing: "handler"}
	}
	nativeReq, err := c.ConvertRequest(req)
	if err != nil {
		return browser.Response{}, err
	}

	start := c.now()
	resp, err := c.handler.Handle(nativeReq)
	if err != nil {
		c.metrics.observe(req.Method, 0, c.now().Sub(start))
		return browser.Response{}, err
	}
	c.metrics.observe(req.Method, resp.StatusCode(), c.now().Sub(start))

	if err := c.emitter.Emit(resp); err != nil {
		return browser.Response{}, &EmissionError{Err: err}
	}

	headers := make(http.Header, len(resp.Headers()))
	for name, values := range resp.Headers() {
		headers[name] = append([]string(nil), values...)
	}
	ret := browser.Response{
		Content: resp.Body().String(),
		Status:  resp.StatusCode(),
		Headers: headers,
	}
	c.logger.Printf("%s %s -> %d, %d bytes", req.Method, req.URI, ret.Status, len(ret.Content))
	return ret, nil
}

// ConvertRequest builds the ServerRequest that Execute would pass to the handler.
func (c *Connector) ConvertRequest(req browser.Request) (message.ServerRequest, error) {
	template, ok := c.template.Get()
	if !ok {
		return message.ServerRequest{}, &PreconditionError{Missing: "request template"}
	}

	env := message.MockEnvironmentAt(c.now(), c.serverDefaults.Merge(req.Server))
	env = DetermineAuthorization(env, c.headerSource)
	uri, err := ParseURI(req.URI)
	if err != nil {
		return message.ServerRequest{}, err
	}
	headers := HeadersFromEnvironment(env)
	cookies := message.ParseCookieHeader(headers.Value("HTTP_COOKIE"))
	files, err := ConvertFiles(req.Files)
	if err != nil {
		return message.ServerRequest{}, err
	}

	native := template.
		WithMethod(req.Method).
		WithURI(uri).
		WithUploadedFiles(files).
		WithCookieParams(cookies)
	for _, h := range headers.Vars() {
		native = native.WithHeader(message.HeaderNameFromServerVar(h.Name), h.Value)
	}
	native = native.WithServerParams(env)

	if content, ok := req.Content.Get(); ok {
		native = native.WithBody(message.NewStream(content))
	}

	params := ldvalue.ObjectBuild().Build()
	if req.Method != http.MethodGet && !req.Parameters.IsNull() {
		params = req.Parameters
	}
	if !message.IsTruthy(native.ParsedBody()) {
		native = native.WithParsedBody(params)
	}
	return native, nil
}
