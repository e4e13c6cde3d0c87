package message

import (
	"net/url"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
)

func TestIsTruthy(t *testing.T) {
	falsy := []ldvalue.Value{
		ldvalue.Null(), ldvalue.Bool(false), ldvalue.Int(0), ldvalue.Float64(0), ldvalue.String(""),
		ldvalue.ArrayOf(), ldvalue.ObjectBuild().Build(),
	}
	truthy := []ldvalue.Value{
		ldvalue.Bool(true), ldvalue.Int(-1), ldvalue.Float64(0.5), ldvalue.String("0"),
		ldvalue.ArrayOf(ldvalue.Null()), ldvalue.ObjectBuild().Set("a", ldvalue.Null()).Build(),
	}
	for _, v := range falsy {
		assert.False(t, IsTruthy(v), "expected falsy: %s", v)
	}
	for _, v := range truthy {
		assert.True(t, IsTruthy(v), "expected truthy: %s", v)
	}
}

func TestValueFromForm(t *testing.T) {
	form, _ := url.ParseQuery("name=Ann&tags[]=a&tags[]=b&address[city]=Novi+Sad&address[geo][lat]=45&x=1&x=2")
	v := ValueFromForm(form)
	assert.JSONEq(t, `{
		"name": "Ann",
		"tags": ["a", "b"],
		"address": {"city": "Novi Sad", "geo": {"lat": "45"}},
		"x": "2"
	}`, v.JSONString())

	assert.Equal(t, `{}`, ValueFromForm(url.Values{}).JSONString())
	assert.JSONEq(t, `{"[odd": "1", "odd]": "2"}`, ValueFromForm(url.Values{"[odd": {"1"}, "odd]": {"2"}}).JSONString())
}

func TestFormFromValue(t *testing.T) {
	v := ldvalue.Parse([]byte(`{"name":"Ann","n":3,"ok":true,"skip":null,"tags":["a","b"],"address":{"city":"X"}}`))
	form := FormFromValue(v)
	assert.Equal(t, url.Values{
		"name":          {"Ann"},
		"n":             {"3"},
		"ok":            {"true"},
		"tags[]":        {"a", "b"},
		"address[city]": {"X"},
	}, form)

	assert.Empty(t, FormFromValue(ldvalue.String("x")))
	assert.Equal(t, ValueFromForm(FormFromValue(ldvalue.Parse([]byte(`{"a":{"b":"c"}}`)))).JSONString(), `{"a":{"b":"c"}}`)
}

func TestObjectKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ObjectKeys(ldvalue.Parse([]byte(`{"b":1,"a":2}`))))
	assert.Nil(t, ObjectKeys(ldvalue.ArrayOf()))
}
