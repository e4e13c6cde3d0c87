package browser

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseHeaderIsCaseInsensitive(t *testing.T) {
	resp := Response{Headers: http.Header{"content-type": {"text/plain"}, "X-Id": {"1", "2"}}}
	assert.Equal(t, "text/plain", resp.Header("Content-Type"))
	assert.Equal(t, "1", resp.Header("x-id"))
	assert.Equal(t, "", resp.Header("Location"))
	assert.Equal(t, "", Response{}.Header("Location"))
}

func TestResponseCookies(t *testing.T) {
	resp := Response{Headers: http.Header{
		"set-cookie": {"a=1; Path=/", "b=two; HttpOnly"},
	}}
	cookies := resp.Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, "a", cookies[0].Name)
	assert.Equal(t, "1", cookies[0].Value)
	assert.Equal(t, "b", cookies[1].Name)
	assert.True(t, cookies[1].HttpOnly)
}
