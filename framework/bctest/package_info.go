// Package bctest contains a test runner framework that is similar to Go's testing package,
// but is run as regular Go application code rather than Go tests. The acceptance suite that
// drives an application through the browser connector is built on it. It also adds richer
// features for configuration, logging, and result reporting.
package bctest
