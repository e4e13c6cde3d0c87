package suite

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/launchdarkly/eventsource"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levinine/browserconnector/browser"
	"github.com/levinine/browserconnector/framework/bctest"
	"github.com/levinine/browserconnector/framework/opt"
	"github.com/levinine/browserconnector/message"
)

func writeUpload(t *bctest.T, name, content string) string {
	dir, err := os.MkdirTemp("", "browserconnector-suite")
	require.NoError(t, err)
	t.Defer(func() { _ = os.RemoveAll(dir) })
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func doUploadTests(t *bctest.T) {
	t.RequireFeature(FeatureUploads)

	t.Run("single file", func(t *bctest.T) {
		path := writeUpload(t, "data.json", `{"a":1}`)
		i := newActor(t)
		i.UploadFile("/upload", "file", path, ldvalue.ObjectBuild().SetString("description", "numbers").Build())
		i.SeeResponseCodeIs(http.StatusCreated)
		i.SeeResponseJSONEquals(`{"name":"data.json","type":"application/json","size":7,"description":"numbers"}`)

		_, err := os.Stat(path)
		assert.NoError(t, err, "the original file should not have been moved")
	})

	t.Run("upload error code", func(t *bctest.T) {
		i := newActor(t)
		files := browser.Files{"file": browser.FileDescriptor{Name: "x.txt", Error: 4}}
		resp, err := i.Client().Request("POST", "/upload", ldvalue.Null(), files, message.Environment{},
			opt.None[string]())
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Contains(t, resp.Content, "error code 4")
	})

	t.Run("no file", func(t *bctest.T) {
		i := newActor(t)
		i.SendRequest("POST", "/upload", ldvalue.Null())
		i.SeeResponseCodeIs(http.StatusBadRequest)
	})
}

func decodeEvents(t *bctest.T, body string) []eventsource.Event {
	dec := eventsource.NewDecoder(strings.NewReader(body))
	var ret []eventsource.Event
	for {
		event, err := dec.Decode()
		if err == io.EOF {
			return ret
		}
		require.NoError(t, err)
		ret = append(ret, event)
	}
}

func doEventTests(t *bctest.T) {
	t.RequireFeature(FeatureEvents)

	t.Run("event stream", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/events")
		i.SeeHeader("Content-Type", "text/event-stream; charset=utf-8")
		events := decodeEvents(t, i.GrabResponse())
		require.NotEmpty(t, events)
		last := events[len(events)-1]
		assert.Equal(t, "end", last.Event())
		for _, e := range events[:len(events)-1] {
			assert.Equal(t, "item", e.Event())
			assert.Equal(t, ldvalue.Parse([]byte(e.Data())).GetByKey("id").JSONString(), e.Id())
		}
	})

	t.Run("resume with Last-Event-ID", func(t *bctest.T) {
		i := newActor(t)
		i.HaveHTTPHeader("Last-Event-ID", "1")
		i.AmOnPage("/events")
		events := decodeEvents(t, i.GrabResponse())
		require.NotEmpty(t, events)
		assert.NotEqual(t, "1", events[0].Id())
	})
}

func doErrorTests(t *bctest.T) {
	t.Run("HTTP error page", func(t *bctest.T) {
		i := newActor(t)
		i.AmOnPage("/teapot")
		i.SeeResponseCodeIs(http.StatusTeapot)
		i.SeeHeader("Content-Type")
	})

	t.Run("malformed JSON", func(t *bctest.T) {
		i := newActor(t)
		i.HaveHTTPHeader("Content-Type", "application/json")
		resp, err := i.Client().Request("POST", "/api/items", ldvalue.Null(), nil, message.Environment{},
			opt.Some(`{"name":`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})

	t.Run("unhandled application error", func(t *bctest.T) {
		i := newActor(t)
		_, err := i.TryRequest("GET", "/boom", ldvalue.Null())
		assert.Error(t, err)
	})
}
