// Package state defines the symbolic world state the planner reasons over:
// a closed vocabulary of named facts, a typed value union, and the mapping
// from fact to value that every other planning component consumes.
//
// A key absent from a State means "unknown", which is distinct from an
// explicit false or zero. Satisfies and action precondition checks treat
// missing keys as non-matching, never as a default.
package state

import (
	"fmt"
	"sort"
	"strings"
)

// State maps facts to values. A nil State behaves like an empty one for all
// read operations.
type State map[Key]Value

// New returns an empty State.
func New() State { return make(State) }

// Clone returns an independent copy of s.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Get returns the value for k and whether it is known.
func (s State) Get(k Key) (Value, bool) {
	v, ok := s[k]
	return v, ok
}

// Satisfies reports whether every fact in target is present in s with an
// exactly equal value. Missing keys and differing values both fail.
//
// Postcondition: an empty target is satisfied by any state.
func (s State) Satisfies(target State) bool {
	for k, want := range target {
		got, ok := s[k]
		if !ok || !got.Equal(want) {
			return false
		}
	}
	return true
}

// Merge applies every fact in delta to s, overwriting existing values.
//
// The apply is total: callers never observe a partially merged state because
// a State is owned by a single control loop (see the executor).
func (s State) Merge(delta State) {
	for k, v := range delta {
		s[k] = v
	}
}

// Equal reports whether s and other hold exactly the same facts, ignoring
// iteration order.
func (s State) Equal(other State) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Fingerprint returns a canonical rendering of s: facts sorted by key,
// kind-prefixed values. Two states are Equal iff their fingerprints match,
// which makes the fingerprint usable as a visited-set key in search.
func (s State) Fingerprint() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s[Key(k)].String())
	}
	return b.String()
}

// UnsatisfiedCount returns the number of facts in target not held by s.
// Used as the planner's heuristic.
func (s State) UnsatisfiedCount(target State) int {
	n := 0
	for k, want := range target {
		got, ok := s[k]
		if !ok || !got.Equal(want) {
			n++
		}
	}
	return n
}

// String renders the state for diagnostics, sorted by key.
func (s State) String() string {
	return "{" + s.Fingerprint() + "}"
}

// UnknownKeyError reports the first unrecognized key in an externally
// supplied state dictionary.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("state: unknown key %q", e.Key)
}

// ValidateDict converts an externally sourced dictionary into a State.
//
// This is the single gate between raw character data and the planner: every
// key must belong to the fixed vocabulary and every value must coerce to
// bool, int, or string. The first unrecognized key yields an
// *UnknownKeyError; nothing is silently dropped or coerced.
//
// Postcondition: on success, every key of the result satisfies IsKnown.
func ValidateDict(raw map[string]any) (State, error) {
	// Deterministic error selection: scan keys in sorted order so the
	// "first" unknown key does not depend on map iteration.
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(State, len(raw))
	for _, name := range names {
		k := Key(name)
		if !IsKnown(k) {
			return nil, &UnknownKeyError{Key: name}
		}
		v, err := coerce(raw[name])
		if err != nil {
			return nil, fmt.Errorf("state.ValidateDict: key %q: %w", name, err)
		}
		out[k] = v
	}
	return out, nil
}

// coerce converts a raw value into a Value. JSON decoding yields float64 for
// numbers, so whole floats are accepted as ints.
func coerce(raw any) (Value, error) {
	switch v := raw.(type) {
	case bool:
		return Bool(v), nil
	case int:
		return Int(v), nil
	case int32:
		return Int(int(v)), nil
	case int64:
		return Int(int(v)), nil
	case float64:
		if v != float64(int(v)) {
			return Value{}, fmt.Errorf("non-integral number %v", v)
		}
		return Int(int(v)), nil
	case string:
		return Str(v), nil
	case Value:
		return v, nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}
