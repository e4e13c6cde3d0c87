package opt

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Maybe is an optional value. It is used wherever "absent" must be told apart from a zero
// value, such as a request body that was never set versus an empty one, or a configuration
// property that was omitted.
type Maybe[V any] struct {
	defined bool
	value   V
}

// Some returns a Maybe that has a defined value.
func Some[V any](value V) Maybe[V] {
	return Maybe[V]{defined: true, value: value}
}

// None returns a Maybe with no value.
func None[V any]() Maybe[V] { return Maybe[V]{} }

func (m Maybe[V]) IsDefined() bool { return m.defined }

// Value returns the value, or the zero value of V if there is none.
func (m Maybe[V]) Value() V { return m.value }

// Get returns the value and whether there is one, in the manner of a map lookup.
func (m Maybe[V]) Get() (V, bool) { return m.value, m.defined }

// OrElse returns the value if there is one, or else fallback.
func (m Maybe[V]) OrElse(fallback V) V {
	if m.defined {
		return m.value
	}
	return fallback
}

// String formats the value with %v, or returns "[none]".
func (m Maybe[V]) String() string {
	if !m.defined {
		return "[none]"
	}
	return fmt.Sprintf("%v", m.value)
}

// UnmarshalYAML decodes a value of type V, except that an explicit null leaves the Maybe
// empty. A property missing from the document never reaches this method, so it stays empty too.
func (m *Maybe[V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		*m = None[V]()
		return nil
	}
	var value V
	if err := node.Decode(&value); err != nil {
		return err
	}
	*m = Some(value)
	return nil
}
