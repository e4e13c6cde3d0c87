package helpers

import (
	"encoding/json"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
)

// AssertJSONEqual compares two JSON documents structurally, so key order and whitespace do not
// matter. When both are valid JSON, a failure shows them with properties alphabetized, which
// makes testify's diff line up.
func AssertJSONEqual(t assert.TestingT, expectedJSONString, actualJSONString string) bool {
	if !json.Valid([]byte(expectedJSONString)) || !json.Valid([]byte(actualJSONString)) {
		return assert.JSONEq(t, expectedJSONString, actualJSONString)
	}
	return assert.Equal(t,
		CanonicalizedJSONString(ldvalue.Parse([]byte(expectedJSONString))),
		CanonicalizedJSONString(ldvalue.Parse([]byte(actualJSONString))))
}
