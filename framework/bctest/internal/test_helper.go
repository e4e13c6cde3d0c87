// Package internal holds code that bctest's own tests need to see as a caller outside of bctest.
package internal

// RunAction calls action. Stack traces captured inside it show a frame from a package other than bctest.
func RunAction(action func()) {
	action()
}
