package exampleapp

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/levinine/browserconnector/framework/helpers"
	"github.com/levinine/browserconnector/message"
	"github.com/levinine/browserconnector/webapp"
)

var errBoom = errors.New("the example application failed on purpose") //nolint:gochecknoglobals

const (
	authUser     = "ann"
	authPassword = "secret"
)

func (a *App) home(req message.ServerRequest) (message.Response, error) {
	formURL, _ := a.URLFor("form")
	return message.NewResponse(http.StatusOK).WithHTML(
		`<html><head><title>Example</title></head><body><h1>Welcome</h1>` +
			`<a href="` + formURL + `">Sign the guest book</a></body></html>`), nil
}

func (a *App) hello(req message.ServerRequest) (message.Response, error) {
	name, _ := req.Attribute("name").(string)
	greeting := helpers.IfElse(strings.HasPrefix(req.HeaderLine("Accept-Language"), "fr"), "Bonjour", "Hello")
	return message.NewResponse(http.StatusOK).WithText(fmt.Sprintf("%s, %s!", greeting, name)), nil
}

func (a *App) showForm(req message.ServerRequest) (message.Response, error) {
	return message.NewResponse(http.StatusOK).WithHTML(
		`<form method="post" action="/form"><input name="name"><input name="tags[]"></form>`), nil
}

func (a *App) submitForm(req message.ServerRequest) (message.Response, error) {
	body := req.ParsedBody()
	name := body.GetByKey("name").StringValue()
	if name == "" {
		return message.Response{}, webapp.NewHTTPError(http.StatusUnprocessableEntity, "name is required")
	}
	var tags []string
	for _, tag := range body.GetByKey("tags").AsValueArray().AsSlice() {
		tags = append(tags, tag.StringValue())
	}
	text := "Thanks, " + html.EscapeString(name)
	if len(tags) > 0 {
		text += " (" + html.EscapeString(strings.Join(tags, ", ")) + ")"
	}
	return message.NewResponse(http.StatusOK).WithHTML("<p>" + text + "</p>"), nil
}

func (a *App) echoHeaders(req message.ServerRequest) (message.Response, error) {
	headers := req.Headers()
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	return message.NewResponse(http.StatusOK).WithJSONWriter(func(w *jwriter.Writer) {
		obj := w.Object()
		obj.Name("method").String(req.Method())
		headersObj := obj.Name("headers").Object()
		for _, name := range helpers.Sorted(names) {
			headersObj.Name(name).String(strings.Join(headers[name], ", "))
		}
		headersObj.End()
		obj.End()
	}), nil
}

func (a *App) serverInfo(req message.ServerRequest) (message.Response, error) {
	app, _ := req.Attribute("app").(string)
	return message.NewResponse(http.StatusOK).WithJSONWriter(func(w *jwriter.Writer) {
		obj := w.Object()
		obj.Maybe("app", app != "").String(app)
		obj.Name("protocol").String(req.ProtocolVersion())
		server := obj.Name("server").Object()
		for _, v := range req.ServerParams().Vars() {
			server.Name(v.Name).String(v.Value)
		}
		server.End()
		obj.End()
	}), nil
}

func basicAuthArea(w http.ResponseWriter, r *http.Request) {
	user, password, ok := r.BasicAuth()
	if !ok || user != authUser || password != authPassword {
		w.Header().Set("WWW-Authenticate", `Basic realm="example"`)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Unauthorized"))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Welcome back, " + user))
}

func (a *App) showCookies(req message.ServerRequest) (message.Response, error) {
	cookies := req.CookieParams()
	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	return message.NewResponse(http.StatusOK).WithJSONWriter(func(w *jwriter.Writer) {
		obj := w.Object()
		for _, name := range helpers.Sorted(names) {
			obj.Name(name).String(cookies[name])
		}
		obj.End()
	}), nil
}

func (a *App) setCookie(req message.ServerRequest) (message.Response, error) {
	query := req.QueryParams()
	name := query.Get("name")
	if name == "" {
		return message.Response{}, webapp.NewHTTPError(http.StatusBadRequest, "cookie name is required")
	}
	return message.NewResponse(http.StatusFound).
		WithCookie(&http.Cookie{Name: name, Value: query.Get("value"), Path: "/"}).
		WithHeader("Location", "/cookies"), nil
}

func (a *App) clearCookie(req message.ServerRequest) (message.Response, error) {
	name := req.QueryParams().Get("name")
	return message.NewResponse(http.StatusOK).
		WithCookie(&http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1}).
		WithText("cleared " + name), nil
}

func (a *App) upload(req message.ServerRequest) (message.Response, error) {
	file := req.UploadedFiles().Get("file")
	if file == nil {
		return message.Response{}, webapp.NewHTTPError(http.StatusBadRequest, "no file was uploaded")
	}
	if file.ErrorCode() != 0 {
		return message.Response{}, webapp.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("upload failed with error code %d", file.ErrorCode()))
	}
	target := filepath.Join(a.uploadDir, filepath.Base(file.ClientFilename()))
	if err := file.MoveTo(target); err != nil {
		return message.Response{}, webapp.NewHTTPError(http.StatusInternalServerError, "could not store upload").WithCause(err)
	}
	description := req.ParsedBody().GetByKey("description")
	return message.NewResponse(http.StatusCreated).WithJSON(ldvalue.ObjectBuild().
		SetString("name", file.ClientFilename()).
		SetString("type", file.ClientMediaType()).
		SetInt("size", int(file.Size())).
		Set("description", description).
		Build()), nil
}

func (a *App) redirect(req message.ServerRequest) (message.Response, error) {
	query := req.QueryParams()
	to := query.Get("to")
	if to == "" {
		to = "/"
	}
	status := http.StatusFound
	if s := query.Get("status"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 300 || n > 399 {
			return message.Response{}, webapp.NewHTTPError(http.StatusBadRequest, "invalid redirect status")
		}
		status = n
	}
	return message.NewResponse(status).WithHeader("Location", to), nil
}
