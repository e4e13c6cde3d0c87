// Package suite is the acceptance suite run by the browserconnector command. It drives the
// example application through the connector and a browser client, and checks what a browser
// would see.
package suite

import (
	"github.com/levinine/browserconnector/framework"
	"github.com/levinine/browserconnector/framework/bctest"
	"github.com/levinine/browserconnector/module"
	"github.com/levinine/browserconnector/scenarios"
)

// Features that an application can declare. Tests that need one are skipped without it.
const (
	FeatureJSON     = "json"
	FeatureCookies  = "cookies"
	FeatureSessions = "sessions"
	FeatureAuth     = "auth"
	FeatureUploads  = "uploads"
	FeatureEvents   = "events"
)

// AllFeatures returns every feature that some test in the suite requires.
func AllFeatures() []string {
	return []string{FeatureJSON, FeatureCookies, FeatureSessions, FeatureAuth, FeatureUploads, FeatureEvents}
}

// Environment is what the suite needs to know about the application under test.
type Environment struct {
	// NewFramework returns an initialized Framework. Every test gets a new one, so that tests
	// do not share application state.
	NewFramework func() (*module.Framework, error)

	// Features are the features the application declares.
	Features framework.Features

	// Scenarios are run after the built-in tests.
	Scenarios []scenarios.SourceInfo
}

// Run runs the whole suite.
func Run(env Environment, filter bctest.Filter, testLogger bctest.TestLogger) bctest.Results {
	config := bctest.TestConfiguration{
		Filter:     filter,
		TestLogger: testLogger,
		Features:   env.Features,
		Context:    env,
	}
	return bctest.Run(config, func(t *bctest.T) {
		t.Run("pages", doPageTests)
		t.Run("server environment", doServerEnvironmentTests)
		t.Run("forms", doFormTests)
		t.Run("json", doJSONTests)
		t.Run("headers", doHeaderTests)
		t.Run("cookies", doCookieTests)
		t.Run("sessions", doSessionTests)
		t.Run("redirects", doRedirectTests)
		t.Run("history", doHistoryTests)
		t.Run("uploads", doUploadTests)
		t.Run("events", doEventTests)
		t.Run("errors", doErrorTests)
		if len(env.Scenarios) > 0 {
			t.Run("scenarios", func(t *bctest.T) {
				scenarios.RunAll(t, newActor, env.Scenarios)
			})
		}
	})
}

func environment(t *bctest.T) Environment {
	return t.Context().(Environment)
}

// newActor creates a new application and an Actor for it. The application's sessions are
// closed when the test scope ends.
func newActor(t *bctest.T) *module.Actor {
	t.Helper()
	f, err := environment(t).NewFramework()
	if err != nil {
		t.Errorf("could not start application: %s", err)
		t.FailNow()
	}
	return f.ForTest(t)
}
