// Package browser contains the transport-agnostic model of an HTTP exchange that browser-style
// tests work with, and a Client that drives a Connector with it.
//
// A Request is what a test "browser" wants to send: a method, an absolute URI, a set of
// CGI-style server variables, uploaded files, an optional raw body, and parameters. A Response
// is what comes back. How the request is actually served is up to the Connector; the Client
// only adds browser behavior on top of it, such as cookies, history, and redirects.
package browser
