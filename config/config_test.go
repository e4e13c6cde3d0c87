package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levinine/browserconnector/browser"
	"github.com/levinine/browserconnector/framework/opt"
	"github.com/levinine/browserconnector/message"
)

func TestParseYAML(t *testing.T) {
	c, err := Parse([]byte(`
app: shop
features: [cookies, uploads]
baseURI: https://shop.test/
maxRedirects: 2
server:
  REMOTE_ADDR: 10.0.0.1
  HTTP_ACCEPT_LANGUAGE: fr
  CONTENT_TYPE: text/plain
emit: debug
metrics: true
properties:
  build: "42"
`))
	require.NoError(t, err)
	assert.Equal(t, "shop", c.App)
	assert.Equal(t, []string{"cookies", "uploads"}, c.Features)
	assert.Equal(t, "https://shop.test/", c.BaseURI)
	assert.Equal(t, opt.Some(2), c.MaxRedirects)
	assert.Equal(t, []string{"REMOTE_ADDR", "HTTP_ACCEPT_LANGUAGE", "CONTENT_TYPE"}, c.Server.Names())
	assert.Equal(t, EmitDebug, c.Emit)
	assert.True(t, c.Metrics)
	assert.Equal(t, map[string]string{"build": "42"}, c.Properties)
}

func TestParseJSON(t *testing.T) {
	c, err := Parse([]byte(`{"app":"shop","server":{"B":"2","A":"1"},"maxRedirects":null}`))
	require.NoError(t, err)
	assert.Equal(t, "shop", c.App)
	assert.Equal(t, message.NewEnvironment("B", "2", "A", "1"), c.Server)
	assert.False(t, c.MaxRedirects.IsDefined())
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte(`app: x`))
	require.NoError(t, err)
	assert.Equal(t, browser.DefaultBaseURI, c.BaseURI)
	assert.Equal(t, opt.Some(browser.DefaultMaxRedirects), c.MaxRedirects)
	assert.Equal(t, EmitDiscard, c.Emit)
	assert.Equal(t, 0, c.Server.Len())
}

func TestParseErrors(t *testing.T) {
	for name, input := range map[string]string{
		"bad emit mode":     "emit: printer",
		"negative redirect": "maxRedirects: -1",
		"not a map":         "- a\n- b",
		"bad server value":  "server: [1, 2]",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("app: loaded\n"), 0o600))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "loaded", c.App)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
