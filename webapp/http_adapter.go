package webapp

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/levinine/browserconnector/framework/opt"
	"github.com/levinine/browserconnector/message"
)

const maxMultipartMemory = 32 << 20

// FromHTTPHandler adapts a standard http.Handler so it can be used as a RequestHandler. The
// request is converted with ToHTTPRequest and the handler's output is recorded in memory.
func FromHTTPHandler(h http.Handler) RequestHandler {
	return RequestHandlerFunc(func(req message.ServerRequest) (message.Response, error) {
		httpReq, err := ToHTTPRequest(req)
		if err != nil {
			return message.Response{}, err
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httpReq)
		resp := message.NewResponse(rec.Code).WithBody(message.NewStreamFromBytes(rec.Body.Bytes()))
		for name, values := range rec.Header() {
			resp = resp.WithHeader(name, values...)
		}
		return resp, nil
	})
}

// ToHTTPRequest converts a ServerRequest into a standard *http.Request. If the request has no
// raw body but has uploaded files or a parsed body object, a multipart or URL-encoded form
// body is generated from them.
func ToHTTPRequest(req message.ServerRequest) (*http.Request, error) {
	uri := req.URI()
	target := uri.String()
	if uri.Host() == "" {
		target = "http://localhost" + uri.RequestTarget()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.Body().Size() > 0:
		body = req.Body().Reader()
	case len(req.UploadedFiles()) > 0:
		data, ct, err := encodeMultipart(req)
		if err != nil {
			return nil, err
		}
		body, contentType = bytes.NewReader(data), ct
	case message.IsTruthy(req.ParsedBody()) && req.Method() != http.MethodGet:
		body = strings.NewReader(message.FormFromValue(req.ParsedBody()).Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	httpReq, err := http.NewRequestWithContext(req.Context(), req.Method(), target, body)
	if err != nil {
		return nil, err
	}
	for name, values := range req.Headers() {
		httpReq.Header[name] = values
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if host := req.HeaderLine("Host"); host != "" {
		httpReq.Host = host
		httpReq.Header.Del("Host")
	}
	if !req.HasHeader("Cookie") {
		for name, value := range req.CookieParams() {
			httpReq.AddCookie(&http.Cookie{Name: name, Value: url.QueryEscape(value)})
		}
	}
	if addr := req.ServerParams().Value("REMOTE_ADDR"); addr != "" {
		httpReq.RemoteAddr = net.JoinHostPort(addr, req.ServerParams().Value("REMOTE_PORT"))
	}
	return httpReq, nil
}

func encodeMultipart(req message.ServerRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	form := message.FormFromValue(req.ParsedBody())
	for name, values := range form {
		for _, v := range values {
			if err := mw.WriteField(name, v); err != nil {
				return nil, "", err
			}
		}
	}
	var fileErr error
	req.UploadedFiles().Each(func(path []string, file message.UploadedFile) {
		if fileErr != nil || file.ErrorCode() != message.UploadErrOK {
			return
		}
		content, err := file.Stream()
		if err != nil {
			fileErr = err
			return
		}
		part, err := mw.CreateFormFile(fieldNameFromPath(path), file.ClientFilename())
		if err != nil {
			fileErr = err
			return
		}
		_, fileErr = part.Write(content.Bytes())
	})
	if fileErr != nil {
		return nil, "", fileErr
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func fieldNameFromPath(path []string) string {
	name := path[0]
	for _, p := range path[1:] {
		name += "[" + p + "]"
	}
	return name
}

// RequestFromHTTP converts a standard *http.Request into a ServerRequest, the way a web
// server would present it to an application: the server variables are filled in from the
// request, form bodies are parsed, and uploaded files are stored in tempDir. The returned
// cleanup function removes any stored files that the application did not move.
func RequestFromHTTP(r *http.Request, tempDir string) (message.ServerRequest, func(), error) {
	var tempFiles []string
	cleanup := func() {
		for _, f := range tempFiles {
			_ = os.Remove(f)
		}
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host, portStr, err := net.SplitHostPort(r.Host)
	if err != nil {
		host, portStr = r.Host, ""
	}
	port := opt.None[int]()
	if n, err := strconv.Atoi(portStr); err == nil {
		port = opt.Some(n)
	}
	uri := message.NewURI(message.URIParts{
		Scheme: scheme,
		Host:   host,
		Port:   port,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
	})

	env := serverVarsFromHTTP(r, scheme, host, portStr)
	req := message.NewServerRequest(r.Method, uri, env).
		WithProtocolVersion(fmt.Sprintf("%d.%d", r.ProtoMajor, r.ProtoMinor)).
		WithCookieParams(message.ParseCookieHeader(r.Header.Get("Cookie"))).
		WithContext(r.Context())
	if r.Host != "" {
		req = req.WithHeader("Host", r.Host)
	}
	for name, values := range r.Header {
		req = req.WithHeader(name, values...)
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return req, cleanup, err
		}
		files := make(message.UploadedFiles)
		for field, headers := range r.MultipartForm.File {
			for _, fh := range headers {
				path, err := storeUpload(fh, tempDir)
				if err != nil {
					return req, cleanup, err
				}
				tempFiles = append(tempFiles, path)
				upload := message.NewUploadedFile(path, fh.Filename, fh.Header.Get("Content-Type"), fh.Size, message.UploadErrOK)
				insertUpload(files, field, upload)
			}
		}
		return req.WithUploadedFiles(files).
			WithParsedBody(message.ValueFromForm(url.Values(r.MultipartForm.Value))), cleanup, nil
	}

	body, err := message.ReadStream(r.Body)
	if err != nil {
		return req, cleanup, err
	}
	req = req.WithBody(body)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if form, err := url.ParseQuery(body.String()); err == nil {
			req = req.WithParsedBody(message.ValueFromForm(form))
		}
	}
	return req, cleanup, nil
}

func serverVarsFromHTTP(r *http.Request, scheme, host, port string) message.Environment {
	if port == "" {
		port = map[string]string{"http": "80", "https": "443"}[scheme]
	}
	remoteAddr, remotePort, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteAddr, remotePort = r.RemoteAddr, ""
	}
	env := message.NewEnvironment(
		"REQUEST_METHOD", r.Method,
		"REQUEST_URI", r.URL.RequestURI(),
		"QUERY_STRING", r.URL.RawQuery,
		"REQUEST_SCHEME", scheme,
		"SERVER_PROTOCOL", r.Proto,
		"SERVER_NAME", host,
		"SERVER_PORT", port,
		"REMOTE_ADDR", remoteAddr,
		"REMOTE_PORT", remotePort,
	)
	if scheme == "https" {
		env = env.With("HTTPS", "on")
	}
	if r.Host != "" {
		env = env.With("HTTP_HOST", r.Host)
	}
	for name, values := range r.Header {
		env = env.With(message.ServerVarFromHeaderName(name), strings.Join(values, ", "))
	}
	if user, pass, ok := r.BasicAuth(); ok {
		env = env.With("PHP_AUTH_USER", user).With("PHP_AUTH_PW", pass).With("AUTH_TYPE", "Basic")
	}
	return env
}

func storeUpload(fh *multipart.FileHeader, tempDir string) (string, error) {
	in, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = in.Close() }()
	out, err := os.CreateTemp(tempDir, "upload-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(out.Name())
		return "", err
	}
	return out.Name(), out.Close()
}

// insertUpload places a file in the tree according to a bracketed field name such as
// "avatars[front]". A name ending in "[]" gets a numeric index.
func insertUpload(files message.UploadedFiles, field string, upload message.UploadedFile) {
	path := []string{field}
	if open := strings.Index(field, "["); open > 0 && strings.HasSuffix(field, "]") {
		path = append([]string{field[:open]}, strings.Split(field[open+1:len(field)-1], "][")...)
	}
	node := files
	for i, name := range path {
		if name == "" {
			name = strconv.Itoa(len(node))
		}
		if i == len(path)-1 {
			node[name] = upload
			return
		}
		child, ok := node[name].(message.UploadedFiles)
		if !ok {
			child = make(message.UploadedFiles)
			node[name] = child
		}
		node = child
	}
}
