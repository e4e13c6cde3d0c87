package suite

import (
	"net/http"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/assert"

	"github.com/levinine/browserconnector/framework/bctest"
	"github.com/levinine/browserconnector/message"
	"github.com/levinine/browserconnector/module"
)

func doPageTests(t *bctest.T) {
	t.Run("home page", func(t *bctest.T) {
		i := newActor(t)
		resp := i.AmOnPage("/")
		m.In(t).Assert(resp, m.AllOf(
			module.ResponseStatus().Should(m.Equal(http.StatusOK)),
			module.ResponseHeader("Content-Type").Should(m.StringHasPrefix("text/html")),
			module.ResponseContent().Should(m.StringContains("Welcome")),
		))
	})

	t.Run("route variables", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/hello/World")
		assert.Equal(t, "Hello, World!", i.GrabResponse())
	})

	t.Run("encoded path", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/hello/J%C3%BCrgen")
		assert.Equal(t, "Hello, Jürgen!", i.GrabResponse())
	})

	t.Run("unknown page", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/no/such/page")
		i.SeeResponseCodeIs(http.StatusNotFound)
	})

	t.Run("wrong method", func(t *bctest.T) {
		i := newActor(t)
		i.SendRequest("PUT", "/hello/World", ldvalue.Null())
		i.SeeResponseCodeIs(http.StatusMethodNotAllowed)
	})

	t.Run("HEAD request", func(t *bctest.T) {
		i := newActor(t)
		i.SendRequest("HEAD", "/hello/World", ldvalue.Null())
		i.SeeResponseCodeIs(http.StatusOK)
	})

	t.Run("absolute URI", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("http://example.com:8080/server")
		server := i.GrabJSON().GetByKey("server")
		assert.Equal(t, "example.com:8080", server.GetByKey("HTTP_HOST").StringValue())
	})
}

func doServerEnvironmentTests(t *bctest.T) {
	t.Run("defaults", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/server?x=1")
		body := i.GrabJSON()
		server := body.GetByKey("server")
		assert.Equal(t, "1.1", body.GetByKey("protocol").StringValue())
		assert.Equal(t, message.DefaultRemoteAddr, server.GetByKey("REMOTE_ADDR").StringValue())
		assert.Equal(t, "GET", server.GetByKey("REQUEST_METHOD").StringValue())
		assert.Equal(t, "/server?x=1", server.GetByKey("REQUEST_URI").StringValue())
		assert.Equal(t, "x=1", server.GetByKey("QUERY_STRING").StringValue())
		assert.Equal(t, "http", server.GetByKey("REQUEST_SCHEME").StringValue())
		assert.NotEqual(t, "", server.GetByKey("REQUEST_TIME").StringValue())
	})

	t.Run("template attributes reach the application", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/server")
		assert.NotEqual(t, "", i.GrabJSON().GetByKey("app").StringValue())
	})

	t.Run("client server parameters", func(t *bctest.T) {
		i := newActor(t)
		i.Client().SetServerParameter("REMOTE_ADDR", "192.0.2.1")
		i.AmOnPage("/server")
		server := i.GrabJSON().GetByKey("server")
		assert.Equal(t, "192.0.2.1", server.GetByKey("REMOTE_ADDR").StringValue())
		assert.Equal(t, "http", server.GetByKey("REQUEST_SCHEME").StringValue())
	})

	t.Run("https", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("https://secure.example/server")
		server := i.GrabJSON().GetByKey("server")
		assert.Equal(t, "on", server.GetByKey("HTTPS").StringValue())
		assert.Equal(t, "https", server.GetByKey("REQUEST_SCHEME").StringValue())
		assert.Equal(t, "443", server.GetByKey("SERVER_PORT").StringValue())
	})
}

func doFormTests(t *bctest.T) {
	t.Run("submit", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/form")
		i.See(`<form method="post"`)
		i.SubmitForm("/form", ldvalue.ObjectBuild().
			SetString("name", "Ann").
			Set("tags", ldvalue.ArrayOf(ldvalue.String("x"), ldvalue.String("y"))).
			Build())
		i.See("Thanks, Ann (x, y)")
	})

	t.Run("validation", func(t *bctest.T) {
		i := newActor(t)
		i.SubmitForm("/form", ldvalue.ObjectBuild().SetString("name", "").Build())
		i.SeeResponseCodeIs(http.StatusUnprocessableEntity)
	})

	t.Run("parameters without content", func(t *bctest.T) {
		i := newActor(t)
		i.SendRequest("POST", "/form", ldvalue.ObjectBuild().SetString("name", "Bo").Build())
		i.See("Thanks, Bo")
	})
}

func doJSONTests(t *bctest.T) {
	t.RequireFeature(FeatureJSON)

	t.Run("list", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/api/items")
		i.SeeHeader("Content-Type", "application/json")
		assert.Len(t, i.GrabJSON().AsValueArray().AsSlice(), 2)
	})

	t.Run("query parameters for GET", func(t *bctest.T) {
		i := newActor(t)
		i.SendRequest("GET", "/api/items", ldvalue.ObjectBuild().SetString("tag", "tea").Build())
		i.SeeCurrentURIEquals("/api/items?tag=tea")
		i.SeeResponseJSONEquals(`[{"id":2,"name":"teapot","price":18,"tags":["kitchen","tea"]}]`)
	})

	t.Run("create", func(t *bctest.T) {
		i := newActor(t)
		i.SendJSON("POST", "/api/items", ldvalue.ObjectBuild().SetString("name", "cup").Build())
		i.SeeResponseCodeIs(http.StatusCreated)
		location := i.GrabHeader("Location")
		i.AmOnPage(location)
		assert.Equal(t, "cup", i.GrabJSON().GetByKey("name").StringValue())
	})

	t.Run("error as JSON", func(t *bctest.T) {
		i := newActor(t)
		i.SendJSON("POST", "/api/items", ldvalue.ObjectBuild().Build())
		i.SeeResponseCodeIs(http.StatusUnprocessableEntity)
		i.SeeResponseJSONEquals(`{"message":"name is required"}`)
	})
}
