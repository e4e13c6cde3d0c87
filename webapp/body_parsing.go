package webapp

import (
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/levinine/browserconnector/message"
)

// BodyParsingMiddleware fills in the parsed body from the raw body for JSON and URL-encoded
// form requests, unless the request already has a truthy parsed body. Malformed JSON is
// reported as a 400 HTTPError.
func BodyParsingMiddleware() Middleware {
	return func(next RequestHandler) RequestHandler {
		return RequestHandlerFunc(func(req message.ServerRequest) (message.Response, error) {
			if message.IsTruthy(req.ParsedBody()) || req.Body().Size() == 0 {
				return next.Handle(req)
			}
			mediaType, _, _ := mime.ParseMediaType(req.HeaderLine("Content-Type"))
			switch {
			case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
				var value ldvalue.Value
				if err := value.UnmarshalJSON(req.Body().Bytes()); err != nil {
					return message.Response{}, NewHTTPError(http.StatusBadRequest, "malformed JSON body").WithCause(err)
				}
				req = req.WithParsedBody(value)
			case mediaType == "application/x-www-form-urlencoded":
				form, err := url.ParseQuery(req.Body().String())
				if err != nil {
					return message.Response{}, NewHTTPError(http.StatusBadRequest, "malformed form body").WithCause(err)
				}
				req = req.WithParsedBody(message.ValueFromForm(form))
			}
			return next.Handle(req)
		})
	}
}
