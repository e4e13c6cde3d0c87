package message

import (
	"fmt"
	"strings"

	"github.com/launchdarkly/go-jsonstream/v3/jreader"
	"gopkg.in/yaml.v3"
)

// EnvVar is a single named server variable.
type EnvVar struct {
	Name  string
	Value string
}

// Environment is an ordered set of CGI-style server variables, such as REQUEST_METHOD or
// HTTP_ACCEPT. Names are compared case-insensitively. Declaration order is kept because it
// decides the order in which headers derived from the environment are applied.
type Environment struct {
	vars []EnvVar
}

// NewEnvironment builds an Environment from alternating names and values. It panics if it is
// given an odd number of strings.
func NewEnvironment(namesAndValues ...string) Environment {
	if len(namesAndValues)%2 != 0 {
		panic("NewEnvironment requires name/value pairs")
	}
	var e Environment
	for i := 0; i < len(namesAndValues); i += 2 {
		e = e.With(namesAndValues[i], namesAndValues[i+1])
	}
	return e
}

// EnvironmentFromVars builds an Environment from a list of variables. Later duplicates
// overwrite earlier ones in place.
func EnvironmentFromVars(vars []EnvVar) Environment {
	var e Environment
	for _, v := range vars {
		e = e.With(v.Name, v.Value)
	}
	return e
}

func (e Environment) index(name string) int {
	for i, v := range e.vars {
		if strings.EqualFold(v.Name, name) {
			return i
		}
	}
	return -1
}

// Get returns the value of a variable and whether it was present.
func (e Environment) Get(name string) (string, bool) {
	if i := e.index(name); i >= 0 {
		return e.vars[i].Value, true
	}
	return "", false
}

// Value returns the value of a variable, or "" if it is absent.
func (e Environment) Value(name string) string {
	v, _ := e.Get(name)
	return v
}

func (e Environment) Has(name string) bool {
	return e.index(name) >= 0
}

func (e Environment) Len() int {
	return len(e.vars)
}

// Vars returns a copy of the variables in declaration order.
func (e Environment) Vars() []EnvVar {
	return append([]EnvVar(nil), e.vars...)
}

// Names returns the variable names in declaration order.
func (e Environment) Names() []string {
	ret := make([]string, 0, len(e.vars))
	for _, v := range e.vars {
		ret = append(ret, v.Name)
	}
	return ret
}

// With returns a copy with the variable set. An existing variable keeps its position but
// takes the new name and value; a new one is appended.
func (e Environment) With(name, value string) Environment {
	vars := make([]EnvVar, len(e.vars), len(e.vars)+1)
	copy(vars, e.vars)
	if i := e.index(name); i >= 0 {
		vars[i] = EnvVar{Name: name, Value: value}
	} else {
		vars = append(vars, EnvVar{Name: name, Value: value})
	}
	return Environment{vars: vars}
}

// Without returns a copy with the variable removed.
func (e Environment) Without(name string) Environment {
	i := e.index(name)
	if i < 0 {
		return e
	}
	vars := make([]EnvVar, 0, len(e.vars)-1)
	vars = append(vars, e.vars[:i]...)
	vars = append(vars, e.vars[i+1:]...)
	return Environment{vars: vars}
}

// Merge returns a copy with every variable of other applied in order, so that values from
// other overwrite existing ones in place and new names are appended in other's order.
func (e Environment) Merge(other Environment) Environment {
	ret := e
	for _, v := range other.vars {
		ret = ret.With(v.Name, v.Value)
	}
	return ret
}

// AsMap returns the variables as a plain map, losing their order.
func (e Environment) AsMap() map[string]string {
	ret := make(map[string]string, len(e.vars))
	for _, v := range e.vars {
		ret[v.Name] = v.Value
	}
	return ret
}

func (e Environment) String() string {
	parts := make([]string, 0, len(e.vars))
	for _, v := range e.vars {
		parts = append(parts, v.Name+"="+v.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// UnmarshalYAML reads a YAML mapping of names to scalar values, keeping the document order.
func (e *Environment) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("server variables must be a mapping, line %d", node.Line)
	}
	var ret Environment
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("server variable %q must have a scalar value, line %d", k.Value, v.Line)
		}
		ret = ret.With(k.Value, v.Value)
	}
	*e = ret
	return nil
}

// UnmarshalJSON reads a JSON object of names to string values, keeping the document order.
func (e *Environment) UnmarshalJSON(data []byte) error {
	r := jreader.NewReader(data)
	var ret Environment
	for obj := r.Object(); obj.Next(); {
		name := string(obj.Name())
		ret = ret.With(name, r.String())
	}
	if err := r.Error(); err != nil {
		return fmt.Errorf("server variables must be an object of strings: %w", err)
	}
	*e = ret
	return nil
}
