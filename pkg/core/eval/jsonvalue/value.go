// Package jsonvalue implements the recursive JSON value used throughout the
// eval core: a closed sum type over null, bool, number, string, array, and
// an order-preserving object, so that object key order and numeric literals
// survive a parse-and-serialize round trip. Output is compact JSON;
// whitespace and string escaping of the input are not preserved.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Kind identifies which alternative of the JSON sum type a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a single JSON value. Exactly one of the typed accessors is valid
// for a given Kind; use the Kind field (via Kind()) to dispatch.
type Value struct {
	kind   Kind
	b      bool
	num    json.Number
	str    string
	arr    []Value
	obj    *Object
}

// Object is an insertion-order-preserving string-keyed map. Keys must be
// unique; Set on an existing key replaces its value in place without moving
// it to the end.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Set inserts or replaces the value at key, preserving original position on
// replace and appending on insert.
func (o *Object) Set(key string, v Value) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value at key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the object's keys in insertion order. The caller must not
// mutate the returned slice.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of keys in the object.
func (o *Object) Len() int {
	return len(o.keys)
}

// Null returns the JSON null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a numeric literal, preserving its original textual form.
func Number(n json.Number) Value { return Value{kind: KindNumber, num: n} }

// NumberFromFloat wraps a float64 as a JSON number.
func NumberFromFloat(f float64) Value {
	return Value{kind: KindNumber, num: json.Number(fmt.Sprintf("%g", f))}
}

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Array wraps an ordered list of values.
func Array(items []Value) Value { return Value{kind: KindArray, arr: items} }

// FromObject wraps an Object as a Value.
func FromObject(o *Object) Value { return Value{kind: KindObject, obj: o} }

// Kind reports which JSON type this value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload; only meaningful when Kind() == KindBool.
func (v Value) Bool() bool { return v.b }

// Number returns the numeric payload; only meaningful when Kind() == KindNumber.
func (v Value) Number() json.Number { return v.num }

// Float64 converts the numeric payload to float64, or (0, false) if it is
// not a valid number or not a KindNumber value.
func (v Value) Float64() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := v.num.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// String returns the string payload; only meaningful when Kind() == KindString.
func (v Value) String() string { return v.str }

// Array returns the element slice; only meaningful when Kind() == KindArray.
func (v Value) Array() []Value { return v.arr }

// Object returns the backing Object; only meaningful when Kind() == KindObject.
func (v Value) Object() *Object { return v.obj }

// AsString returns the best-effort string rendering of any value, used by
// operators that compare against "String(actual ?? "")" semantics.
func (v Value) AsString() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return v.num.String()
	case KindString:
		return v.str
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// MarshalJSON implements json.Marshaler, writing objects in insertion order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
		return nil
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case KindNumber:
		s := v.num.String()
		if s == "" {
			s = "0"
		}
		buf.WriteString(s)
		return nil
	case KindString:
		encoded, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(encoded)
		return nil
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case KindObject:
		buf.WriteByte('{')
		if v.obj != nil {
			for i, key := range v.obj.keys {
				if i > 0 {
					buf.WriteByte(',')
				}
				keyBytes, err := json.Marshal(key)
				if err != nil {
					return err
				}
				buf.Write(keyBytes)
				buf.WriteByte(':')
				item := v.obj.values[key]
				if err := item.encode(buf); err != nil {
					return err
				}
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("jsonvalue: unknown kind %d", v.kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler, walking tokens with
// json.Decoder so that object key order survives the round trip.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("jsonvalue: expected object key, got %T", keyTok)
				}
				if _, exists := obj.values[key]; exists {
					return Value{}, fmt.Errorf("jsonvalue: duplicate object key %q", key)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Value{}, err
			}
			return FromObject(obj), nil
		case '[':
			var items []Value
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Value{}, err
			}
			return Array(items), nil
		default:
			return Value{}, fmt.Errorf("jsonvalue: unexpected delimiter %v", t)
		}
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("jsonvalue: unexpected token %T", tok)
	}
}

// Parse decodes a single JSON document from data.
func Parse(data []byte) (Value, error) {
	var v Value
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return Value{}, fmt.Errorf("jsonvalue: trailing data after document")
		}
		return Value{}, err
	}
	v = parsed
	return v, nil
}

// MustMarshal marshals v and panics on error; used for values already known
// to be well-formed (internal construction paths only).
func MustMarshal(v Value) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
