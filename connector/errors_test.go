package connector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "connector has no handler bound", (&PreconditionError{Missing: "handler"}).Error())
	assert.Equal(t, "invalid URI: must be a string, not int",
		(&InvalidArgumentError{Argument: "URI", Reason: "must be a string, not int"}).Error())

	cause := errors.New("eof")
	ia := &InvalidArgumentError{Argument: "URI", Reason: "cannot parse", Err: cause}
	assert.Equal(t, "invalid URI: cannot parse: eof", ia.Error())
	assert.ErrorIs(t, ia, cause)

	ee := &EmissionError{Err: cause}
	assert.Equal(t, "failed to emit response: eof", ee.Error())
	assert.ErrorIs(t, ee, cause)
}
