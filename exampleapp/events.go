package exampleapp

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/launchdarkly/eventsource"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/levinine/browserconnector/message"
	"github.com/levinine/browserconnector/webapp"
)

const maxEvents = 100

type itemEvent struct {
	id   string
	name string
	data string
}

func (e itemEvent) Event() string { return e.name }
func (e itemEvent) Id() string    { return e.id } //nolint:stylecheck
func (e itemEvent) Data() string  { return e.data }

// events returns a finite server-sent event stream with one "item" event per catalog item,
// followed by an "end" event. Last-Event-ID resumes after the given event.
func (a *App) events(req message.ServerRequest) (message.Response, error) {
	after := 0
	if last := req.HeaderLine("Last-Event-ID"); last != "" {
		n, err := strconv.Atoi(last)
		if err != nil {
			return message.Response{}, webapp.NewHTTPError(http.StatusBadRequest, "invalid Last-Event-ID")
		}
		after = n
	}

	var buf bytes.Buffer
	enc := eventsource.NewEncoder(&buf, false)
	count := 0
	for _, item := range a.items.all() {
		if item.ID <= after || count >= maxEvents {
			continue
		}
		w := jwriter.NewWriter()
		item.writeJSON(&w)
		if err := enc.Encode(itemEvent{id: strconv.Itoa(item.ID), name: "item", data: string(w.Bytes())}); err != nil {
			return message.Response{}, err
		}
		count++
	}
	if err := enc.Encode(itemEvent{name: "end", data: strconv.Itoa(count)}); err != nil {
		return message.Response{}, err
	}
	return message.NewResponse(http.StatusOK).
		WithHeader("Content-Type", "text/event-stream; charset=utf-8").
		WithHeader("Cache-Control", "no-cache").
		WithBody(message.NewStreamFromBytes(buf.Bytes())), nil
}
