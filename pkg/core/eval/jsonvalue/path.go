package jsonvalue

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// GetByPath resolves a dot-delimited field path against v, discarding empty
// tokens produced by leading, trailing, or doubled dots (so "a..b" and
// ".a.b" both resolve like "a.b"). It returns the matched value and whether
// the path resolved to anything at all.
func GetByPath(v Value, path string) (Value, bool) {
	tokens := splitPath(path)
	if len(tokens) == 0 {
		return v, true
	}

	data := MustMarshal(v)
	gjsonPath := strings.Join(tokens, ".")
	result := gjson.GetBytes(data, gjsonPath)
	if !result.Exists() {
		return Value{}, false
	}
	return fromGJSON(result), true
}

// splitPath tokenizes a dot-delimited path, discarding empty segments.
func splitPath(path string) []string {
	raw := strings.Split(path, ".")
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if t == "" {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

func fromGJSON(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null()
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.Number:
		return Number(json.Number(r.Raw))
	case gjson.String:
		return String(r.String())
	case gjson.JSON:
		if r.IsArray() {
			var items []Value
			r.ForEach(func(_, value gjson.Result) bool {
				items = append(items, fromGJSON(value))
				return true
			})
			return Array(items)
		}
		obj := NewObject()
		r.ForEach(func(key, value gjson.Result) bool {
			obj.Set(key.String(), fromGJSON(value))
			return true
		})
		return FromObject(obj)
	default:
		return Null()
	}
}
