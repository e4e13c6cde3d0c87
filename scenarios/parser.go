package scenarios

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"gopkg.in/yaml.v3"
)

// ParseJSONOrYAML is used like json.Unmarshal, but it also accepts YAML, which is converted to
// JSON first. Mapping keys keep their document order, so an ordered type such as
// message.Environment sees the same order whichever syntax the file uses.
func ParseJSONOrYAML(data []byte, target interface{}) error {
	if err := json.Unmarshal(data, target); err == nil {
		return nil
	}
	converted, err := yamlToJSON(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(converted, target)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	w := jwriter.NewWriter()
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		if err := writeYAMLNode(&w, doc.Content[0]); err != nil {
			return nil, err
		}
	} else {
		w.Null()
	}
	if err := w.Error(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func writeYAMLNode(w *jwriter.Writer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.AliasNode:
		return writeYAMLNode(w, n.Alias)
	case yaml.SequenceNode:
		arr := w.Array()
		for _, item := range n.Content {
			if err := writeYAMLNode(w, item); err != nil {
				return err
			}
		}
		arr.End()
	case yaml.MappingNode:
		pairs, err := mappingPairs(n)
		if err != nil {
			return err
		}
		obj := w.Object()
		for _, p := range pairs {
			if err := writeYAMLNode(obj.Name(p.key), p.value); err != nil {
				return err
			}
		}
		obj.End()
	default:
		return writeYAMLScalar(w, n)
	}
	return nil
}

func writeYAMLScalar(w *jwriter.Writer, n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		w.Null()
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		w.Bool(b)
	case "!!int":
		var i int
		if err := n.Decode(&i); err != nil {
			return err
		}
		w.Int(i)
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("line %d: %s cannot be represented in JSON", n.Line, n.Value)
		}
		w.Float64(f)
	default:
		w.String(n.Value)
	}
	return nil
}

type yamlPair struct {
	key   string
	value *yaml.Node
}

// mappingPairs lists the entries of a mapping in document order. Entries brought in with a
// "<<" merge key come after the explicit ones, and never override them.
func mappingPairs(n *yaml.Node) ([]yamlPair, error) {
	var explicit, merged []yamlPair
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge" {
			pairs, err := mergedPairs(value)
			if err != nil {
				return nil, err
			}
			merged = append(merged, pairs...)
			continue
		}
		if key.Kind != yaml.ScalarNode || key.ShortTag() != "!!str" {
			return nil, fmt.Errorf("line %d: YAML mapping keys must be strings", key.Line)
		}
		explicit = append(explicit, yamlPair{key.Value, value})
	}

	seen := make(map[string]bool, len(explicit))
	for _, p := range explicit {
		seen[p.key] = true
	}
	pairs := explicit
	for _, p := range merged {
		if !seen[p.key] {
			seen[p.key] = true
			pairs = append(pairs, p)
		}
	}
	return pairs, nil
}

func mergedPairs(n *yaml.Node) ([]yamlPair, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.MappingNode:
		return mappingPairs(n)
	case yaml.SequenceNode:
		var pairs []yamlPair
		for _, item := range n.Content {
			more, err := mergedPairs(item)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, more...)
		}
		return pairs, nil
	default:
		return nil, fmt.Errorf("line %d: a merge key must refer to a mapping", n.Line)
	}
}
