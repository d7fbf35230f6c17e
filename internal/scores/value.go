// Package scores defines the high-score record and the JSON value model used
// for score metadata. Metadata is restricted to numbers, strings, booleans,
// null and nested maps of the same; anything else is dropped on the way in.
package scores

import (
	"encoding/json"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
)

// Value is one metadata value. The set of implementations is closed:
// Number, String, Bool, Null and Map.
type Value interface {
	isValue()
}

// Number is a finite JSON number.
type Number float64

// String is a JSON string.
type String string

// Bool is a JSON boolean.
type Bool bool

// Null is the JSON null literal.
type Null struct{}

// Map is a JSON object whose members are themselves Values.
type Map map[string]Value

// Meta is the metadata attached to a score entry.
type Meta = Map

func (Number) isValue() {}
func (String) isValue() {}
func (Bool) isValue()   {}
func (Null) isValue()   {}
func (Map) isValue()    {}

// MarshalJSON encodes null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// MarshalJSON encodes the map with sorted keys. A nil map encodes as {}.
func (m Map) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	keys := m.Keys()
	buf := make([]byte, 0, 16*len(keys))
	buf = append(buf, '{')
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		vb, err := json.Marshal(m[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// Keys returns the member names in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy. Cloning nil yields an empty map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		if nested, ok := v.(Map); ok {
			out[k] = nested.Clone()
			continue
		}
		out[k] = v
	}
	return out
}

// Plain converts the map into ordinary Go values (float64, string, bool,
// nil, map[string]any), which is what templates and printers expect.
func (m Map) Plain() map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plain(v)
	}
	return out
}

func plain(v Value) any {
	switch x := v.(type) {
	case Number:
		return float64(x)
	case String:
		return string(x)
	case Bool:
		return bool(x)
	case Map:
		return x.Plain()
	default:
		return nil
	}
}

// Equal reports whether two values are structurally identical.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Number:
		y, ok := b.(Number)
		return ok && x == y
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Null:
		_, ok := b.(Null)
		return ok
	case Map:
		y, ok := b.(Map)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Sanitize converts an arbitrary Go value into a Value. The second result is
// false when v has no JSON-primitive form (funcs, channels, slices, structs,
// pointers, maps with non-string keys) and should be dropped.
func Sanitize(v any) (Value, bool) {
	switch x := v.(type) {
	case nil:
		return Null{}, true
	case Value:
		if m, ok := x.(Map); ok {
			return m.Clone(), true
		}
		return x, true
	case string:
		return String(x), true
	case bool:
		return Bool(x), true
	case float64:
		return number(x), true
	case float32:
		return number(float64(x)), true
	case int:
		return Number(x), true
	case int8:
		return Number(x), true
	case int16:
		return Number(x), true
	case int32:
		return Number(x), true
	case int64:
		return Number(x), true
	case uint:
		return Number(x), true
	case uint8:
		return Number(x), true
	case uint16:
		return Number(x), true
	case uint32:
		return Number(x), true
	case uint64:
		return Number(x), true
	case json.Number:
		f, err := strconv.ParseFloat(string(x), 64)
		if err != nil {
			return nil, false
		}
		return number(f), true
	case map[string]any:
		return SanitizeMeta(x), true
	}

	// Named map types (map[string]int, map[string]string, ...).
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		out := make(Map, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			if sv, ok := Sanitize(iter.Value().Interface()); ok {
				out[iter.Key().String()] = sv
			}
		}
		return out, true
	}
	return nil, false
}

// number maps non-finite floats to null, matching what a JSON encoder of
// the browser era produced for NaN and Infinity.
func number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null{}
	}
	return Number(f)
}

// SanitizeMeta returns the metadata form of v. Anything that is not a map
// yields an empty Meta; members that cannot be represented are dropped.
func SanitizeMeta(v any) Meta {
	switch x := v.(type) {
	case nil:
		return Meta{}
	case Map:
		return x.Clone()
	case map[string]any:
		out := make(Meta, len(x))
		for k, member := range x {
			if sv, ok := Sanitize(member); ok {
				out[k] = sv
			}
		}
		return out
	}
	if sv, ok := Sanitize(v); ok {
		if m, ok := sv.(Map); ok {
			return m
		}
	}
	return Meta{}
}

// MetaFromJSON sanitizes a parsed JSON value into Meta. Arrays are dropped
// like any other non-primitive member.
func MetaFromJSON(res gjson.Result) Meta {
	if !res.IsObject() {
		return Meta{}
	}
	out := Meta{}
	res.ForEach(func(key, member gjson.Result) bool {
		if v, ok := valueFromJSON(member); ok {
			out[key.String()] = v
		}
		return true
	})
	return out
}

func valueFromJSON(res gjson.Result) (Value, bool) {
	switch res.Type {
	case gjson.Null:
		return Null{}, true
	case gjson.False:
		return Bool(false), true
	case gjson.True:
		return Bool(true), true
	case gjson.Number:
		return number(res.Num), true
	case gjson.String:
		return String(res.Str), true
	case gjson.JSON:
		if res.IsObject() {
			return MetaFromJSON(res), true
		}
	}
	return nil, false
}
