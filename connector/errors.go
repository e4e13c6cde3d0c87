package connector

import "fmt"

// PreconditionError means that Execute was called before the Connector was fully bound.
type PreconditionError struct {
	Missing string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("connector has no %s bound", e.Missing)
}

// InvalidArgumentError means that a value given to the Connector could not be used.
type InvalidArgumentError struct {
	Argument string
	Reason   string
	Err      error
}

func (e *InvalidArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %s", e.Argument, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Argument, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error { return e.Err }

// EmissionError means that the handler succeeded but its response could not be emitted.
type EmissionError struct {
	Err error
}

func (e *EmissionError) Error() string { return "failed to emit response: " + e.Err.Error() }

func (e *EmissionError) Unwrap() error { return e.Err }
