package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// Undefined is the zero Value: no document / no such field.
	Undefined Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an immutable JSON document node. The zero Value is Undefined,
// which is distinct from JSON null: Undefined means the node does not exist.
//
// Values are shared freely between goroutines; none of the methods mutate
// the receiver, and holders must never modify the slices or maps reachable
// from a Value they did not build themselves.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string
	arr  []Value
	obj  map[string]Value
}

// NewNull returns the JSON null value.
func NewNull() Value { return Value{kind: Null} }

// NewBool returns a boolean value.
func NewBool(b bool) Value { return Value{kind: Bool, b: b} }

// NewNumber returns a numeric value.
func NewNumber(n float64) Value { return Value{kind: Number, num: n} }

// NewString returns a string value.
func NewString(s string) Value { return Value{kind: String, str: s} }

// NewArray returns an array value backed by the given slice.
// The caller must not modify the slice afterwards.
func NewArray(items []Value) Value { return Value{kind: Array, arr: items} }

// NewObject returns an object value backed by the given map.
// The caller must not modify the map afterwards.
func NewObject(fields map[string]Value) Value { return Value{kind: Object, obj: fields} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsUndefined reports whether the value is absent.
func (v Value) IsUndefined() bool { return v.kind == Undefined }

// BoolOr returns the boolean payload, or def when the value is not a bool.
func (v Value) BoolOr(def bool) bool {
	if v.kind != Bool {
		return def
	}
	return v.b
}

// FloatOr returns the numeric payload, or def when the value is not a number.
func (v Value) FloatOr(def float64) float64 {
	if v.kind != Number {
		return def
	}
	return v.num
}

// IntOr returns the numeric payload truncated to int, or def.
func (v Value) IntOr(def int) int {
	if v.kind != Number {
		return def
	}
	return int(v.num)
}

// StringOr returns the string payload, or def when the value is not a string.
func (v Value) StringOr(def string) string {
	if v.kind != String {
		return def
	}
	return v.str
}

// Len returns the number of array elements or object fields, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.arr)
	case Object:
		return len(v.obj)
	default:
		return 0
	}
}

// Field returns the named object field, or Undefined when the value is not
// an object or the field is absent.
func (v Value) Field(name string) Value {
	if v.kind != Object {
		return Value{}
	}
	return v.obj[name]
}

// Index returns the i-th array element, or Undefined when out of range or
// the value is not an array.
func (v Value) Index(i int) Value {
	if v.kind != Array || i < 0 || i >= len(v.arr) {
		return Value{}
	}
	return v.arr[i]
}

// Keys returns the object's field names in sorted order.
func (v Value) Keys() []string {
	if v.kind != Object {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Items returns the array elements. The caller must not modify the slice.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}
	return v.arr
}

// Lookup walks a chain of object field names and returns the value at the
// end, or Undefined as soon as a step is missing.
func (v Value) Lookup(path ...string) Value {
	cur := v
	for _, name := range path {
		cur = cur.Field(name)
		if cur.IsUndefined() {
			return Value{}
		}
	}
	return cur
}

// Equal reports deep equality. Undefined only equals Undefined.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Undefined, Null:
		return true
	case Bool:
		return v.b == other.b
	case Number:
		return v.num == other.num
	case String:
		return v.str == other.str
	case Array:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, a := range v.obj {
			b, ok := other.obj[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ParseJSON decodes a JSON text into a Value.
func ParseJSON(data []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Value{}, err
	}
	return fromAny(raw)
}

func fromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(x), nil
	case float64:
		return NewNumber(x), nil
	case string:
		return NewString(x), nil
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			v, err := fromAny(e)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return NewArray(items), nil
	case map[string]any:
		fields := make(map[string]Value, len(x))
		for k, e := range x {
			v, err := fromAny(e)
			if err != nil {
				return Value{}, err
			}
			fields[k] = v
		}
		return NewObject(fields), nil
	default:
		return Value{}, fmt.Errorf("unsupported JSON type %T", raw)
	}
}

// MarshalJSON encodes the value as JSON. Undefined encodes as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Undefined, Null:
		return []byte("null"), nil
	case Bool:
		return strconv.AppendBool(nil, v.b), nil
	case Number:
		return json.Marshal(v.num)
	case String:
		return json.Marshal(v.str)
	case Array:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.arr)
	case Object:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.obj)
	default:
		return nil, fmt.Errorf("unsupported kind %v", v.kind)
	}
}

// UnmarshalJSON decodes JSON into the value.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
