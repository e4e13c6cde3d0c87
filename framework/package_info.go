// Package framework contains the low-level infrastructure shared by the connector and the
// bundled test runner. The base package holds shared types such as Logger; the test runner
// itself is in the subpackage bctest, and generic helpers are in helpers and opt.
//
// The general model is:
//
// 1. An application under test is bootstrapped once, yielding a request handler and a
// template request.
//
// 2. Each test scope gets its own browser client, which sends every simulated request
// through a connector that calls the handler in-process.
//
// 3. There is a general notion of a test scope which is similar to Go's testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results.
package framework
