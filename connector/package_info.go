// Package connector runs browser requests through a web application in-process.
//
// A Connector is bound to an application handler and a request template. For each
// browser.Request it builds a message.ServerRequest by overlaying the request's method, URI,
// headers, cookies, files, body, and parameters onto the template; calls the handler
// directly, without any network transport; emits the response the way a real server would;
// and returns the response as a browser.Response.
//
// Handler errors are returned exactly as the handler returned them, so that tests can see
// application failures the same way a real request would expose them.
package connector
