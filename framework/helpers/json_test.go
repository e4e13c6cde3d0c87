package helpers

import (
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalizedJSONString(t *testing.T) {
	value := ldvalue.Parse([]byte(`{"b":[3,{"z":1,"y":2}],"a":"x"}`))
	assert.Equal(t, `{"a":"x","b":[3,{"y":2,"z":1}]}`, CanonicalizedJSONString(value))
	assert.Equal(t, `null`, CanonicalizedJSONString(ldvalue.Null()))
}

func TestAssertJSONEqual(t *testing.T) {
	var ok TestRecorder
	assert.True(t, AssertJSONEqual(&ok, `{"a":1,"b":[true]}`, ` { "b" : [true], "a" : 1 } `))
	assert.False(t, ok.Failed())

	var mismatch TestRecorder
	assert.False(t, AssertJSONEqual(&mismatch, `{"a":1}`, `{"a":2}`))
	assert.True(t, mismatch.Failed())

	var invalid TestRecorder
	assert.False(t, AssertJSONEqual(&invalid, `{"a":1}`, `not json`))
	assert.True(t, invalid.Failed())
}
