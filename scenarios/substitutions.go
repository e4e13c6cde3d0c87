package scenarios

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// substitutions maps placeholder names to values. In a scenario file, a quoted string that is
// exactly "<NAME>" becomes the value itself, with its JSON type; a "<NAME>" inside a longer
// string becomes the value's text.
type substitutions map[string]ldvalue.Value

func (s substitutions) apply(data []byte) []byte {
	text := strings.NewReplacer(`\u003c`, "<", `\u003e`, ">").Replace(string(data))
	for name, value := range s {
		asJSON := value.JSONString()
		asText := asJSON
		if value.IsString() {
			asText = value.StringValue()
		}
		text = strings.ReplaceAll(text, `"<`+name+`>"`, asJSON)
		text = strings.ReplaceAll(text, "<"+name+">", asText)
	}
	return []byte(text)
}

func (s substitutions) with(more substitutions) substitutions {
	merged := make(substitutions, len(s)+len(more))
	for k, v := range s {
		merged[k] = v
	}
	for k, v := range more {
		merged[k] = v
	}
	return merged
}

type substitutionHeader struct {
	Constants  substitutions     `json:"constants"`
	Parameters []json.RawMessage `json:"parameters"`
}

// expandSubstitutions returns one SourceInfo per parameter set in the file, with constants and
// parameters applied, or just the original data if the file has neither.
func expandSubstitutions(data []byte) ([]SourceInfo, error) {
	var header substitutionHeader
	if err := ParseJSONOrYAML(data, &header); err != nil {
		return nil, err
	}
	if len(header.Constants) == 0 && len(header.Parameters) == 0 {
		return []SourceInfo{{Data: data}}, nil
	}
	paramSets, err := parameterSets(header.Parameters)
	if err != nil {
		return nil, err
	}
	if len(paramSets) == 0 {
		return []SourceInfo{{Data: header.Constants.apply(data)}}, nil
	}
	sources := make([]SourceInfo, 0, len(paramSets))
	for _, params := range paramSets {
		// A constant may contain a parameter placeholder and a parameter may contain a
		// constant placeholder, so constants are applied on both sides.
		expanded := header.Constants.apply(params.apply(header.Constants.apply(data)))
		sources = append(sources, SourceInfo{Data: expanded, Params: params})
	}
	return sources, nil
}

// parameterSets reads "parameters", which is either a list of parameter sets or a list of
// lists. For a list of lists, every combination of one set from each list is a parameter set,
// with the first list varying fastest.
func parameterSets(raw []json.RawMessage) ([]substitutions, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	all, _ := json.Marshal(raw)
	switch ldvalue.Parse(raw[0]).Type() {
	case ldvalue.ObjectType:
		var sets []substitutions
		err := json.Unmarshal(all, &sets)
		return sets, err
	case ldvalue.ArrayType:
		var lists [][]substitutions
		if err := json.Unmarshal(all, &lists); err != nil {
			return nil, err
		}
		return combinations(lists)
	default:
		return nil, errors.New("parameters must be an array of objects or an array of arrays")
	}
}

func combinations(lists [][]substitutions) ([]substitutions, error) {
	result := []substitutions{{}}
	for _, list := range lists {
		if len(list) == 0 {
			return nil, errors.New("a parameter list cannot be empty")
		}
		next := make([]substitutions, 0, len(result)*len(list))
		for _, choice := range list {
			for _, partial := range result {
				next = append(next, partial.with(choice))
			}
		}
		result = next
	}
	return result, nil
}
