package message

import (
	"net/url"
	"sort"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"golang.org/x/exp/maps"
)

// IsTruthy reports whether a parsed body counts as present. Null, false, zero, the empty
// string, and empty arrays and objects are all falsy; anything else is truthy.
func IsTruthy(value ldvalue.Value) bool {
	switch value.Type() {
	case ldvalue.NullType:
		return false
	case ldvalue.BoolType:
		return value.BoolValue()
	case ldvalue.NumberType:
		return value.Float64Value() != 0
	case ldvalue.StringType:
		return value.StringValue() != ""
	default:
		return value.Count() != 0
	}
}

// ValueFromForm converts decoded form fields into a JSON-like object. Field names using
// bracket notation become nested values: "a[b]=1" gives {"a":{"b":"1"}}, and "a[]=1&a[]=2"
// gives {"a":["1","2"]}. A field that appears more than once without brackets keeps its
// last value.
func ValueFromForm(form url.Values) ldvalue.Value {
	root := make(map[string]interface{})
	names := maps.Keys(form)
	sort.Strings(names)
	for _, name := range names {
		path := splitFieldName(name)
		for _, v := range form[name] {
			setFormPath(root, path, v)
		}
	}
	return ldvalue.CopyArbitraryValue(root)
}

func splitFieldName(name string) []string {
	open := strings.Index(name, "[")
	if open <= 0 || !strings.HasSuffix(name, "]") {
		return []string{name}
	}
	path := []string{name[:open]}
	for _, part := range strings.Split(name[open+1:len(name)-1], "][") {
		path = append(path, part)
	}
	return path
}

func setFormPath(node map[string]interface{}, path []string, value string) {
	key := path[0]
	if len(path) == 1 {
		node[key] = value
		return
	}
	if path[1] == "" {
		list, _ := node[key].([]interface{})
		if len(path) == 2 {
			node[key] = append(list, value)
			return
		}
		child := make(map[string]interface{})
		setFormPath(child, path[2:], value)
		node[key] = append(list, child)
		return
	}
	child, ok := node[key].(map[string]interface{})
	if !ok {
		child = make(map[string]interface{})
		node[key] = child
	}
	setFormPath(child, path[1:], value)
}

// FormFromValue is the reverse of ValueFromForm: it flattens an object into form fields using
// bracket notation. Non-string scalars are rendered as JSON; nulls are skipped.
func FormFromValue(value ldvalue.Value) url.Values {
	ret := make(url.Values)
	if value.Type() != ldvalue.ObjectType {
		return ret
	}
	for _, name := range ObjectKeys(value) {
		flattenFormValue(ret, name, value.GetByKey(name))
	}
	return ret
}

func flattenFormValue(out url.Values, name string, value ldvalue.Value) {
	switch value.Type() {
	case ldvalue.NullType:
	case ldvalue.StringType:
		out.Add(name, value.StringValue())
	case ldvalue.ArrayType:
		for i := 0; i < value.Count(); i++ {
			flattenFormValue(out, name+"[]", value.GetByIndex(i))
		}
	case ldvalue.ObjectType:
		for _, k := range ObjectKeys(value) {
			flattenFormValue(out, name+"["+k+"]", value.GetByKey(k))
		}
	default:
		out.Add(name, value.JSONString())
	}
}

// ObjectKeys returns the property names of a JSON object value in sorted order, or nil if the
// value is not an object.
func ObjectKeys(value ldvalue.Value) []string {
	props, ok := value.AsArbitraryValue().(map[string]interface{})
	if !ok {
		return nil
	}
	keys := maps.Keys(props)
	sort.Strings(keys)
	return keys
}
