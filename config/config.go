// Package config reads the settings file for a test run. The file is YAML; JSON also works,
// since it is a subset of YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/levinine/browserconnector/browser"
	"github.com/levinine/browserconnector/framework/opt"
	"github.com/levinine/browserconnector/message"
)

// EmitMode selects what happens to each response after the application produces it.
type EmitMode string

const (
	// EmitStdout writes response bodies to standard output, as a server process would.
	EmitStdout EmitMode = "stdout"

	// EmitDiscard drops responses.
	EmitDiscard EmitMode = "discard"

	// EmitDebug writes a one-line summary of each response to standard error.
	EmitDebug EmitMode = "debug"
)

func (m *EmitMode) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	switch EmitMode(s) {
	case EmitStdout, EmitDiscard, EmitDebug:
		*m = EmitMode(s)
		return nil
	case "":
		*m = EmitDiscard
		return nil
	}
	return fmt.Errorf("line %d: unknown emit mode %q (expected stdout, discard, or debug)", node.Line, s)
}

// Config is the content of a settings file.
type Config struct {
	// App is a display name for the application under test.
	App string `yaml:"app"`

	// Features are capabilities the application declares; tests that need an undeclared
	// feature are skipped.
	Features []string `yaml:"features"`

	// BaseURI is what relative request URIs are resolved against.
	BaseURI string `yaml:"baseURI"`

	// MaxRedirects is how many redirects in a row the browser follows.
	MaxRedirects opt.Maybe[int] `yaml:"maxRedirects"`

	// Server holds server variables sent with every request, in the order given.
	Server message.Environment `yaml:"server"`

	// Emit selects what happens to responses.
	Emit EmitMode `yaml:"emit"`

	// Metrics turns on exchange metrics, which are printed at the end of the run.
	Metrics bool `yaml:"metrics"`

	// Properties are added to JUnit output.
	Properties map[string]string `yaml:"properties"`
}

// Default returns the settings used when there is no settings file.
func Default() Config {
	return Config{
		App:          "example app",
		BaseURI:      browser.DefaultBaseURI,
		MaxRedirects: opt.Some(browser.DefaultMaxRedirects),
		Emit:         EmitDiscard,
	}
}

// Parse reads settings from YAML or JSON. Anything not in the data keeps its default.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if n, ok := c.MaxRedirects.Get(); ok && n < 0 {
		return Config{}, fmt.Errorf("invalid configuration: maxRedirects cannot be negative")
	}
	if c.BaseURI == "" {
		c.BaseURI = browser.DefaultBaseURI
	}
	return c, nil
}

// Load reads a settings file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return Config{}, fmt.Errorf("cannot read configuration: %w", err)
	}
	return Parse(data)
}
