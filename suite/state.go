package suite

import (
	"errors"
	"net/http"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levinine/browserconnector/browser"
	"github.com/levinine/browserconnector/framework/bctest"
	"github.com/levinine/browserconnector/message"
)

func doHeaderTests(t *bctest.T) {
	t.Run("default headers", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/headers")
		headers := i.GrabJSON().GetByKey("headers")
		assert.Equal(t, message.DefaultUserAgent, headers.GetByKey("User-Agent").StringValue())
		assert.Equal(t, message.DefaultAcceptLanguage, headers.GetByKey("Accept-Language").StringValue())
		assert.Equal(t, "localhost", headers.GetByKey("Host").StringValue())
	})

	t.Run("custom header", func(t *bctest.T) {
		i := newActor(t)
		i.HaveHTTPHeader("X-Request-Id", "r-1")
		i.AmOnPage("/headers")
		assert.Equal(t, "r-1", i.GrabJSON().GetByKey("headers").GetByKey("X-Request-Id").StringValue())

		i.DeleteHTTPHeader("X-Request-Id")
		i.AmOnPage("/headers")
		assert.True(t, i.GrabJSON().GetByKey("headers").GetByKey("X-Request-Id").IsNull())
	})

	t.Run("content type is not an HTTP_ variable", func(t *bctest.T) {
		i := newActor(t)
		i.HaveHTTPHeader("Content-Type", "text/plain")
		i.SendRequest("POST", "/headers", ldvalue.Null())
		headers := i.GrabJSON().GetByKey("headers")
		assert.Equal(t, "text/plain", headers.GetByKey("Content-Type").StringValue())
	})

	t.Run("basic authentication", func(t *bctest.T) {
		t.RequireFeature(FeatureAuth)
		i := newActor(t)
		i.AmOnPage("/auth")
		i.SeeResponseCodeIs(http.StatusUnauthorized)
		i.AmHTTPAuthenticated("ann", "secret")
		i.AmOnPage("/auth")
		i.SeeResponseCodeIs(http.StatusOK)
		i.See("Welcome back, ann")
	})

	t.Run("route middleware sees headers", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/admin")
		i.SeeResponseCodeIs(http.StatusForbidden)
		i.HaveHTTPHeader("X-Role", "admin")
		i.AmOnPage("/admin")
		i.SeeResponseCodeIs(http.StatusOK)
	})
}

func doCookieTests(t *bctest.T) {
	t.RequireFeature(FeatureCookies)

	t.Run("set by the application", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/cookies/set?name=theme&value=dark")
		i.SeeCookie("theme")
		i.SeeResponseJSONEquals(`{"theme":"dark"}`)
	})

	t.Run("set by the client", func(t *bctest.T) {
		i := newActor(t)
		i.SetCookie("lang", "de")
		i.AmOnPage("/cookies")
		i.SeeResponseJSONEquals(`{"lang":"de"}`)
	})

	t.Run("expired by the application", func(t *bctest.T) {
		i := newActor(t)
		i.SetCookie("lang", "de")
		i.AmOnPage("/cookies/clear?name=lang")
		i.DontSeeCookie("lang")
		i.AmOnPage("/cookies")
		i.SeeResponseJSONEquals(`{}`)
	})
}

func doSessionTests(t *bctest.T) {
	t.RequireFeature(FeatureSessions)

	t.Run("session persists between requests", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/visits")
		first := i.GrabJSON().GetByKey("session").StringValue()
		i.AmOnPage("/visits")
		body := i.GrabJSON()
		assert.Equal(t, first, body.GetByKey("session").StringValue())
		assert.Equal(t, 2, body.GetByKey("visits").IntValue())
		i.SeeCookie("EXSESSID")
	})

	t.Run("restarted client starts a new session", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/visits")
		first := i.GrabJSON().GetByKey("session").StringValue()
		i.Client().Restart()
		i.AmOnPage("/visits")
		assert.NotEqual(t, first, i.GrabJSON().GetByKey("session").StringValue())
	})
}

func doRedirectTests(t *bctest.T) {
	t.Run("followed", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/redirect?to=/hello/There")
		i.SeeCurrentURIEquals("/hello/There")
		i.See("Hello, There!")
	})

	t.Run("POST becomes GET after 303", func(t *bctest.T) {
		i := newActor(t)
		i.SubmitForm("/redirect?to=/headers&status=303", ldvalue.ObjectBuild().SetString("a", "b").Build())
		assert.Equal(t, "GET", i.GrabJSON().GetByKey("method").StringValue())
	})

	t.Run("307 keeps the method", func(t *bctest.T) {
		i := newActor(t)
		i.SubmitForm("/redirect?to=/headers&status=307", ldvalue.ObjectBuild().SetString("a", "b").Build())
		body := i.GrabJSON()
		assert.Equal(t, "POST", body.GetByKey("method").StringValue())
		assert.Equal(t, "application/x-www-form-urlencoded",
			body.GetByKey("headers").GetByKey("Content-Type").StringValue())
	})

	t.Run("not followed", func(t *bctest.T) {
		i := newActor(t)
		i.Client().FollowRedirects(false)
		i.AmOnPage("/redirect?to=/elsewhere")
		i.SeeResponseCodeIs(http.StatusFound)
		i.SeeHeader("Location", "/elsewhere")

		resp, err := i.Client().FollowRedirect()
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})

	t.Run("redirect loop", func(t *bctest.T) {
		i := newActor(t)
		_, err := i.TryRequest("GET", "/loop", ldvalue.Null())
		assert.True(t, errors.Is(err, browser.ErrTooManyRedirects), "error was: %v", err)
	})
}

func doHistoryTests(t *bctest.T) {
	t.Run("back and forward", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/hello/One")
		i.AmOnPage("/hello/Two")
		i.GoBack()
		assert.Equal(t, "Hello, One!", i.GrabResponse())

		resp, err := i.Client().Forward()
		require.NoError(t, err)
		assert.Equal(t, "Hello, Two!", resp.Content)
		assert.Len(t, i.Client().History(), 2)
	})

	t.Run("referer", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/")
		i.AmOnPage("/headers")
		assert.Equal(t, "http://localhost/",
			i.GrabJSON().GetByKey("headers").GetByKey("Referer").StringValue())
	})

	t.Run("nothing to go back to", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/")
		_, err := i.Client().Back()
		assert.True(t, errors.Is(err, browser.ErrNoHistory), "error was: %v", err)
	})
}
