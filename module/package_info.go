// Package module connects an application to browser-style tests.
//
// A Framework is initialized once with the application's bootstrap function. Before each
// test it creates a fresh connector.Connector and browser.Client, and returns an Actor whose
// methods perform requests and make assertions about the responses, in the style of
// "I am on page /, I see 'Welcome'". After each test it closes any sessions the application
// keeps open.
package module
