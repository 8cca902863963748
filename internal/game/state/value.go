package state

import (
	"fmt"
	"strconv"
)

// ValueKind discriminates the three value types a fact may hold.
type ValueKind uint8

// Supported value kinds.
const (
	KindBool ValueKind = iota
	KindInt
	KindString
)

// String returns the kind name for diagnostics.
func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("ValueKind(%d)", uint8(k))
	}
}

// Value is an immutable tagged union of bool, int, or string.
//
// The zero Value is the boolean false. Values are compared with Equal; two
// values of different kinds are never equal, even when their renderings
// coincide (Int(1) != String("1")).
type Value struct {
	kind ValueKind
	b    bool
	i    int
	s    string
}

// Bool constructs a boolean Value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int constructs an integer Value.
func Int(v int) Value { return Value{kind: KindInt, i: v} }

// Str constructs a string Value.
func Str(v string) Value { return Value{kind: KindString, s: v} }

// Kind returns the value's discriminant.
func (v Value) Kind() ValueKind { return v.kind }

// AsBool returns the boolean payload; ok is false for non-bool values.
func (v Value) AsBool() (val, ok bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer payload; ok is false for non-int values.
func (v Value) AsInt() (int, bool) { return v.i, v.kind == KindInt }

// AsString returns the string payload; ok is false for non-string values.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// Equal reports whether v and other hold the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	default:
		return v.s == other.s
	}
}

// String renders the value for logs and fingerprints. The rendering is
// kind-prefixed so distinct values never collide.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return "b:" + strconv.FormatBool(v.b)
	case KindInt:
		return "i:" + strconv.Itoa(v.i)
	default:
		return "s:" + v.s
	}
}
