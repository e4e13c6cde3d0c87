package helpers

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"golang.org/x/exp/maps"
)

// CanonicalizedJSONString renders a JSON value with object properties in alphabetical order.
func CanonicalizedJSONString(value ldvalue.Value) string {
	w := jwriter.NewWriter()
	writeCanonical(&w, value)
	return string(w.Bytes())
}

func writeCanonical(w *jwriter.Writer, value ldvalue.Value) {
	switch value.Type() {
	case ldvalue.ArrayType:
		arr := w.Array()
		for i := 0; i < value.Count(); i++ {
			writeCanonical(w, value.GetByIndex(i))
		}
		arr.End()
	case ldvalue.ObjectType:
		props, _ := value.AsArbitraryValue().(map[string]interface{})
		obj := w.Object()
		for _, k := range Sorted(maps.Keys(props)) {
			writeCanonical(obj.Name(k), value.GetByKey(k))
		}
		obj.End()
	default:
		value.WriteToJSONWriter(w)
	}
}
