// Package message contains the native request and response values of the web framework:
// ServerRequest, Response, URI, Stream, and UploadedFile, plus the CGI-style Environment
// that describes a request the way a web server would hand it to an application.
//
// All of these are immutable. Every With method returns a modified copy and leaves the
// receiver unchanged, so a request template can be shared safely between exchanges.
package message
