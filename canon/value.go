package canon

import (
	"encoding/json"
	"fmt"
	"math"
)

// MaxDepth is the deepest container nesting Parse accepts and Marshal emits.
// A top-level object or array is at depth 1.
const MaxDepth = 256

// ValueKind discriminates the variants of Value.
type ValueKind uint8

const (
	Null ValueKind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k ValueKind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("ValueKind(%d)", uint8(k))
	}
}

// Member is one key/value pair of an Object. Members keep their order; the
// order of a canonical Object is the serialization order.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON-like value. The zero Value is null.
//
// Constructors copy their arguments and accessors return copies, so a Value
// can be shared between goroutines without coordination.
type Value struct {
	kind    ValueKind
	boolean bool
	number  float64
	str     string
	elems   []Value
	members []Member
}

// NullValue returns the null value.
func NullValue() Value { return Value{} }

// BoolValue returns a boolean value.
func BoolValue(b bool) Value { return Value{kind: Bool, boolean: b} }

// NumberValue returns a number value. Non-finite numbers serialize as null.
func NumberValue(f float64) Value { return Value{kind: Number, number: f} }

// StringValue returns a string value.
func StringValue(s string) Value { return Value{kind: String, str: s} }

// ArrayValue returns an array holding a copy of elems.
func ArrayValue(elems ...Value) Value {
	return Value{kind: Array, elems: append([]Value(nil), elems...)}
}

// ObjectValue returns an object holding members in the given order.
//
// A repeated key keeps the position of its first occurrence and the value of
// its last, which is how JSON parsers in the wild resolve duplicates.
func ObjectValue(members ...Member) Value {
	out := make([]Member, 0, len(members))
	seen := make(map[string]int, len(members))
	for _, m := range members {
		if i, ok := seen[m.Key]; ok {
			out[i].Value = m.Value
			continue
		}
		seen[m.Key] = len(out)
		out = append(out, m)
	}
	return Value{kind: Object, members: out}
}

// Kind returns the variant of v.
func (v Value) Kind() ValueKind { return v.kind }

// IsContainer reports whether v is an Array or an Object.
func (v Value) IsContainer() bool { return v.kind == Array || v.kind == Object }

// Bool returns the boolean payload; false for other kinds.
func (v Value) Bool() bool { return v.kind == Bool && v.boolean }

// Float returns the number payload; 0 for other kinds.
func (v Value) Float() float64 {
	if v.kind != Number {
		return 0
	}
	return v.number
}

// Str returns the string payload; "" for other kinds.
func (v Value) Str() string {
	if v.kind != String {
		return ""
	}
	return v.str
}

// Len returns the number of elements or members of a container, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.elems)
	case Object:
		return len(v.members)
	default:
		return 0
	}
}

// Elems returns a copy of an array's elements.
func (v Value) Elems() []Value {
	if v.kind != Array {
		return nil
	}
	return append([]Value(nil), v.elems...)
}

// Members returns a copy of an object's members in order.
func (v Value) Members() []Member {
	if v.kind != Object {
		return nil
	}
	return append([]Member(nil), v.members...)
}

// Keys returns an object's keys in order.
func (v Value) Keys() []string {
	if v.kind != Object {
		return nil
	}
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

// Get looks up an object member by key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// String returns the compact serialization of v for display. Invalid UTF-8
// is replaced rather than reported; use Marshal when errors matter.
func (v Value) String() string {
	e := encoder{strict: false}
	_ = e.value(v, 0)
	return string(e.buf)
}

// Equal reports whether a and b hold the same data in the same order.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Bool:
		return a.boolean == b.boolean
	case Number:
		if math.IsNaN(a.number) && math.IsNaN(b.number) {
			return true
		}
		return a.number == b.number
	case String:
		return a.str == b.str
	case Array:
		if len(a.elems) != len(b.elems) {
			return false
		}
		for i := range a.elems {
			if !Equal(a.elems[i], b.elems[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(a.members) != len(b.members) {
			return false
		}
		for i := range a.members {
			if a.members[i].Key != b.members[i].Key || !Equal(a.members[i].Value, b.members[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// FromAny converts decoded Go data into a Value.
//
// Accepted: nil, bool, string, float32/64, signed and unsigned integers,
// json.Number, []any, map[string]any, Value and json.RawMessage. Map
// iteration order does not matter because canonicalization sorts keys.
func FromAny(x any) (Value, error) {
	return fromAny(x, 0)
}

func fromAny(x any, depth int) (Value, error) {
	switch t := x.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return t, nil
	case bool:
		return BoolValue(t), nil
	case string:
		return StringValue(t), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return NumberValue(float64(t)), nil
	case int8:
		return NumberValue(float64(t)), nil
	case int16:
		return NumberValue(float64(t)), nil
	case int32:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case uint:
		return NumberValue(float64(t)), nil
	case uint8:
		return NumberValue(float64(t)), nil
	case uint16:
		return NumberValue(float64(t)), nil
	case uint32:
		return NumberValue(float64(t)), nil
	case uint64:
		return NumberValue(float64(t)), nil
	case json.Number:
		f, err := parseNumber(string(t))
		if err != nil {
			return Value{}, wrapError(KindParse, "CANON-PARSE-003", "invalid number", err)
		}
		return NumberValue(f), nil
	case json.RawMessage:
		return Parse(t)
	case []any:
		if depth+1 > MaxDepth {
			return Value{}, errTooDeep()
		}
		elems := make([]Value, len(t))
		for i, e := range t {
			v, err := fromAny(e, depth+1)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return Value{kind: Array, elems: elems}, nil
	case map[string]any:
		if depth+1 > MaxDepth {
			return Value{}, errTooDeep()
		}
		members := make([]Member, 0, len(t))
		for k, e := range t {
			v, err := fromAny(e, depth+1)
			if err != nil {
				return Value{}, err
			}
			members = append(members, Member{Key: k, Value: v})
		}
		return Value{kind: Object, members: members}, nil
	default:
		return Value{}, newError(KindParse, "CANON-PARSE-004", fmt.Sprintf("unsupported type %T", x))
	}
}
