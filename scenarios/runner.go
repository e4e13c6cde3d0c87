package scenarios

import (
	"net/http"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/levinine/browserconnector/framework/bctest"
	"github.com/levinine/browserconnector/framework/helpers"
	"github.com/levinine/browserconnector/framework/opt"
	"github.com/levinine/browserconnector/message"
	"github.com/levinine/browserconnector/module"
)

// ActorFactory creates the Actor for one scenario. module.Framework.ForTest satisfies it.
type ActorFactory func(t *bctest.T) *module.Actor

// RunAll runs each source as a subtest of t, named after the scenario and its parameters.
func RunAll(t *bctest.T, newActor ActorFactory, sources []SourceInfo) {
	for _, source := range sources {
		var s Scenario
		err := source.ParseInto(&s)
		if err == nil {
			err = s.Validate()
		}
		name := s.Name
		if name == "" {
			name = source.BaseName
		}
		if params := source.ParamsString(); params != "" {
			name += " " + params
		}
		t.Run(name, func(t *bctest.T) {
			if err != nil {
				t.Errorf("invalid scenario in %s: %s", source.FilePath, err)
				t.FailNow()
			}
			Run(t, newActor(t), s)
		})
	}
}

// Run executes the steps of a scenario in order with one Actor. Features the scenario requires
// that the application does not declare cause it to be skipped.
func Run(t *bctest.T, actor *module.Actor, s Scenario) {
	for _, feature := range s.RequireFeatures {
		t.RequireFeature(feature)
	}
	applySetup(actor, s.Setup)
	for i, step := range s.Steps {
		t.Debug("%s", step.describe(i))
		runStep(t, actor, step)
		if t.Failed() {
			t.Errorf("scenario %q stopped at %s", s.Name, step.describe(i))
			t.FailNow()
		}
	}
}

func applySetup(actor *module.Actor, setup Setup) {
	client := actor.Client()
	for _, v := range setup.Server.Vars() {
		client.SetServerParameter(v.Name, v.Value)
	}
	for name, value := range setup.Headers {
		actor.HaveHTTPHeader(name, value)
	}
	for name, value := range setup.Cookies {
		actor.SetCookie(name, value)
	}
	if setup.Auth != nil {
		actor.AmHTTPAuthenticated(setup.Auth.User, setup.Auth.Password)
	}
}

func runStep(t *bctest.T, actor *module.Actor, step Step) {
	t.Helper()
	if step.Back {
		actor.GoBack()
		checkExpectation(t, actor, step.Expect)
		return
	}

	client := actor.Client()
	if step.Request.FollowRedirects != nil {
		client.FollowRedirects(*step.Request.FollowRedirects)
		defer client.FollowRedirects(true)
	}

	method, params, server, content := buildRequest(step.Request)
	_, err := client.Request(method, step.Request.URI, params, nil, server, content)
	if step.Expect.Error != "" {
		if err == nil {
			t.Errorf("%s %s should have failed with %q", method, step.Request.URI, step.Expect.Error)
		} else if !strings.Contains(err.Error(), step.Expect.Error) {
			t.Errorf("%s %s failed with %q, expected %q", method, step.Request.URI, err, step.Expect.Error)
		}
		return
	}
	if err != nil {
		t.Errorf("%s %s failed: %s", method, step.Request.URI, err)
		return
	}
	checkExpectation(t, actor, step.Expect)
}

func buildRequest(r StepRequest) (string, ldvalue.Value, message.Environment, opt.Maybe[string]) {
	method := strings.ToUpper(helpers.IfElse(r.Method == "", http.MethodGet, r.Method))
	server := r.Server
	for name, value := range r.Headers {
		server = server.With(message.ServerVarFromHeaderName(name), value)
	}
	switch {
	case !r.JSON.IsNull():
		server = server.With("CONTENT_TYPE", "application/json").With("HTTP_ACCEPT", "application/json")
		return method, r.JSON, server, opt.Some(r.JSON.JSONString())
	case !r.Form.IsNull():
		server = server.With("CONTENT_TYPE", "application/x-www-form-urlencoded")
		return method, r.Form, server, opt.Some(message.FormFromValue(r.Form).Encode())
	case r.Content != nil:
		return method, r.Params, server, opt.Some(*r.Content)
	default:
		return method, r.Params, server, opt.None[string]()
	}
}

func checkExpectation(t *bctest.T, actor *module.Actor, e Expectation) {
	t.Helper()
	if e.Status != 0 {
		actor.SeeResponseCodeIs(e.Status)
	}
	if e.URI != "" {
		actor.SeeCurrentURIEquals(e.URI)
	}
	for _, text := range e.See {
		actor.See(text)
	}
	for _, text := range e.DontSee {
		actor.DontSee(text)
	}
	for name, value := range e.Headers {
		if value == "" {
			actor.SeeHeader(name)
		} else {
			actor.SeeHeader(name, value)
		}
	}
	if len(e.JSON) > 0 {
		actor.SeeResponseJSONEquals(string(e.JSON))
	}
	for name, value := range e.Cookies {
		if actor.SeeCookie(name) {
			if got := actor.GrabCookie(name); got != value {
				t.Errorf("cookie %q was %q, expected %q", name, got, value)
			}
		}
	}
	for _, name := range e.NoCookies {
		actor.DontSeeCookie(name)
	}
}
