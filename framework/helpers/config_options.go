package helpers

// ConfigOption is implemented by the functional options of the browser client, the connector,
// and the web application.
type ConfigOption[T any] interface {
	Configure(*T) error
}

// ApplyOptions applies options to target in order, stopping at the first error.
//
// U is a type parameter so that callers can pass a slice of their own named option type.
func ApplyOptions[T any, U ConfigOption[T]](target *T, options ...U) error {
	for _, o := range options {
		if err := o.Configure(target); err != nil {
			return err
		}
	}
	return nil
}
