package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEnvironmentLookupIsCaseInsensitive(t *testing.T) {
	e := NewEnvironment("HTTP_ACCEPT", "text/plain")
	v, ok := e.Get("http_accept")
	assert.True(t, ok)
	assert.Equal(t, "text/plain", v)
	assert.True(t, e.Has("Http_Accept"))
	assert.False(t, e.Has("HTTP_HOST"))
	assert.Equal(t, "", e.Value("HTTP_HOST"))
}

func TestEnvironmentWithKeepsPositionAndDoesNotMutate(t *testing.T) {
	e1 := NewEnvironment("A", "1", "B", "2", "C", "3")
	e2 := e1.With("b", "20").With("D", "4")

	assert.Equal(t, []string{"A", "B", "C"}, e1.Names())
	assert.Equal(t, "2", e1.Value("B"))
	assert.Equal(t, []EnvVar{{"A", "1"}, {"b", "20"}, {"C", "3"}, {"D", "4"}}, e2.Vars())
}

func TestEnvironmentMerge(t *testing.T) {
	defaults := NewEnvironment("A", "1", "B", "2")
	user := NewEnvironment("X", "9", "B", "8", "Y", "7")
	merged := defaults.Merge(user)
	assert.Equal(t, []EnvVar{{"A", "1"}, {"B", "8"}, {"X", "9"}, {"Y", "7"}}, merged.Vars())
}

func TestEnvironmentWithout(t *testing.T) {
	e := NewEnvironment("A", "1", "B", "2")
	assert.Equal(t, []string{"B"}, e.Without("a").Names())
	assert.Equal(t, []string{"A", "B"}, e.Without("Z").Names())
	assert.Equal(t, 2, e.Len())
}

func TestNewEnvironmentPanicsOnOddArguments(t *testing.T) {
	assert.Panics(t, func() { NewEnvironment("A") })
}

func TestEnvironmentUnmarshalYAMLKeepsOrder(t *testing.T) {
	var doc struct {
		Server Environment `yaml:"server"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("server:\n  Z_LAST: z\n  HTTP_HOST: example.com\n  PORT: 8080\n"), &doc))
	assert.Equal(t, []EnvVar{{"Z_LAST", "z"}, {"HTTP_HOST", "example.com"}, {"PORT", "8080"}}, doc.Server.Vars())

	assert.Error(t, yaml.Unmarshal([]byte("server: [a, b]\n"), &doc))
	assert.Error(t, yaml.Unmarshal([]byte("server:\n  A: [1]\n"), &doc))
}

func TestEnvironmentString(t *testing.T) {
	assert.Equal(t, "{A=1, B=2}", NewEnvironment("A", "1", "B", "2").String())
	assert.Equal(t, map[string]string{"A": "1"}, NewEnvironment("A", "1").AsMap())
}

func TestEnvironmentUnmarshalJSONKeepsOrder(t *testing.T) {
	var env Environment
	require.NoError(t, json.Unmarshal([]byte(`{"Z":"1","a":"2","M":""}`), &env))
	assert.Equal(t, []string{"Z", "a", "M"}, env.Names())
	assert.Equal(t, "2", env.Value("A"))

	assert.Error(t, json.Unmarshal([]byte(`{"Z":1}`), &env))
	assert.Error(t, json.Unmarshal([]byte(`["Z"]`), &env))
}
