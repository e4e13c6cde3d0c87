package scenarios

import (
	"encoding/json"
	"fmt"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/levinine/browserconnector/message"
)

// Scenario is a sequence of browser requests made by one client, each with expectations about
// the response.
type Scenario struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	RequireFeatures []string `json:"requireFeatures"`
	Setup           Setup    `json:"setup"`
	Steps           []Step   `json:"steps"`
}

// Setup is applied to the client before the first step.
type Setup struct {
	Headers map[string]string   `json:"headers"`
	Cookies map[string]string   `json:"cookies"`
	Server  message.Environment `json:"server"`
	Auth    *Credentials        `json:"auth"`
}

// Credentials are used for HTTP basic authentication.
type Credentials struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// Step is one action and its expectations.
type Step struct {
	Name    string      `json:"name"`
	Request StepRequest `json:"request"`

	// Back goes back in history instead of making a new request.
	Back bool `json:"back"`

	Expect Expectation `json:"expect"`
}

// StepRequest describes the request of a step. At most one of JSON, Form, and Content can be set.
type StepRequest struct {
	Method  string              `json:"method"`
	URI     string              `json:"uri"`
	Params  ldvalue.Value       `json:"params"`
	JSON    ldvalue.Value       `json:"json"`
	Form    ldvalue.Value       `json:"form"`
	Content *string             `json:"content"`
	Headers map[string]string   `json:"headers"`
	Server  message.Environment `json:"server"`

	// FollowRedirects can turn off redirect following for this request.
	FollowRedirects *bool `json:"followRedirects"`
}

// Expectation lists what the response must look like. Zero values are not checked.
type Expectation struct {
	Status    int               `json:"status"`
	URI       string            `json:"uri"`
	See       []string          `json:"see"`
	DontSee   []string          `json:"dontSee"`
	Headers   map[string]string `json:"headers"`
	JSON      json.RawMessage   `json:"json"`
	Cookies   map[string]string `json:"cookies"`
	NoCookies []string          `json:"noCookies"`
	Error     string            `json:"error"`
}

// Validate checks that the scenario can be run.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario has no name")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", s.Name)
	}
	for i, step := range s.Steps {
		if step.Back {
			continue
		}
		if step.Request.URI == "" {
			return fmt.Errorf("step %d of %q has no URI", i+1, s.Name)
		}
		bodies := 0
		for _, v := range []ldvalue.Value{step.Request.JSON, step.Request.Form} {
			if !v.IsNull() {
				bodies++
			}
		}
		if step.Request.Content != nil {
			bodies++
		}
		if bodies > 1 {
			return fmt.Errorf("step %d of %q has more than one kind of body", i+1, s.Name)
		}
	}
	return nil
}

func (s Step) describe(index int) string {
	if s.Name != "" {
		return s.Name
	}
	if s.Back {
		return fmt.Sprintf("step %d: back", index+1)
	}
	method := s.Request.Method
	if method == "" {
		method = "GET"
	}
	return fmt.Sprintf("step %d: %s %s", index+1, method, s.Request.URI)
}
