package state_test

import (
	"errors"
	"testing"

	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
	"pgregory.net/rapid"
)

func TestValue_Equal_DistinguishesKinds(t *testing.T) {
	if state.Int(1).Equal(state.Str("1")) {
		t.Fatal("Int(1) must not equal Str(\"1\")")
	}
	if state.Bool(false).Equal(state.Int(0)) {
		t.Fatal("Bool(false) must not equal Int(0)")
	}
	if !state.Bool(true).Equal(state.Bool(true)) {
		t.Fatal("identical bools must be equal")
	}
	var zero state.Value
	if !zero.Equal(state.Bool(false)) {
		t.Fatal("zero Value must equal Bool(false)")
	}
}

func TestValue_String_KindPrefixed(t *testing.T) {
	cases := []struct {
		v    state.Value
		want string
	}{
		{state.Bool(true), "b:true"},
		{state.Bool(false), "b:false"},
		{state.Int(5), "i:5"},
		{state.Int(-3), "i:-3"},
		{state.Str("copper_rocks"), "s:copper_rocks"},
		{state.Str(""), "s:"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Fatalf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestState_Satisfies_MissingKeyFails(t *testing.T) {
	s := state.State{state.KeyAlive: state.Bool(true)}
	target := state.State{state.KeyHPFull: state.Bool(false)}
	if s.Satisfies(target) {
		t.Fatal("a missing key must not satisfy an explicit false")
	}
}

func TestState_Satisfies_EmptyTargetAlwaysHolds(t *testing.T) {
	if !(state.State{}).Satisfies(state.State{}) {
		t.Fatal("empty target must be satisfied by the empty state")
	}
	s := state.State{state.KeyCharacterLevel: state.Int(3)}
	if !s.Satisfies(state.State{}) {
		t.Fatal("empty target must be satisfied by any state")
	}
}

func TestState_Satisfies_ExactValueMatch(t *testing.T) {
	s := state.State{
		state.KeyCharacterLevel: state.Int(5),
		state.KeyAlive:          state.Bool(true),
	}
	if !s.Satisfies(state.State{state.KeyCharacterLevel: state.Int(5)}) {
		t.Fatal("exact match must satisfy")
	}
	if s.Satisfies(state.State{state.KeyCharacterLevel: state.Int(6)}) {
		t.Fatal("differing value must not satisfy")
	}
}

func TestState_Merge_Overwrites(t *testing.T) {
	s := state.State{
		state.KeyHPCurrent: state.Int(50),
		state.KeyAlive:     state.Bool(true),
	}
	s.Merge(state.State{
		state.KeyHPCurrent: state.Int(100),
		state.KeyHPFull:    state.Bool(true),
	})
	if v, _ := s.Get(state.KeyHPCurrent); !v.Equal(state.Int(100)) {
		t.Fatalf("merge must overwrite, got %v", v)
	}
	if v, _ := s.Get(state.KeyHPFull); !v.Equal(state.Bool(true)) {
		t.Fatal("merge must add new facts")
	}
	if v, _ := s.Get(state.KeyAlive); !v.Equal(state.Bool(true)) {
		t.Fatal("merge must keep untouched facts")
	}
}

func TestState_Clone_Independent(t *testing.T) {
	s := state.State{state.KeyCharacterLevel: state.Int(1)}
	c := s.Clone()
	c[state.KeyCharacterLevel] = state.Int(2)
	if v, _ := s.Get(state.KeyCharacterLevel); !v.Equal(state.Int(1)) {
		t.Fatal("mutating a clone must not affect the original")
	}
}

func TestState_UnsatisfiedCount(t *testing.T) {
	s := state.State{
		state.KeyAlive:  state.Bool(true),
		state.KeyHPFull: state.Bool(false),
	}
	target := state.State{
		state.KeyAlive:    state.Bool(true), // held
		state.KeyHPFull:   state.Bool(true), // wrong value
		state.KeyXPGained: state.Bool(true), // missing
	}
	if n := s.UnsatisfiedCount(target); n != 2 {
		t.Fatalf("UnsatisfiedCount = %d, want 2", n)
	}
	if n := s.UnsatisfiedCount(state.State{}); n != 0 {
		t.Fatalf("empty target must count 0, got %d", n)
	}
}

func TestVocabularyClosed(t *testing.T) {
	keys := state.AllKeys()
	if len(keys) == 0 {
		t.Fatal("vocabulary must not be empty")
	}
	seen := make(map[state.Key]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			t.Fatalf("duplicate key %q in vocabulary", k)
		}
		seen[k] = struct{}{}
		if !state.IsKnown(k) {
			t.Fatalf("AllKeys entry %q fails IsKnown", k)
		}
	}
	for _, k := range state.SkillLevelKeys() {
		if !state.IsKnown(k) {
			t.Fatalf("skill level key %q not in vocabulary", k)
		}
	}
	if state.IsKnown("not_a_real_fact") {
		t.Fatal("unknown key must not pass IsKnown")
	}
}

func TestSkillLevelKey(t *testing.T) {
	k, ok := state.SkillLevelKey("mining")
	if !ok || k != state.KeyMiningLevel {
		t.Fatalf("SkillLevelKey(mining) = %q, %v", k, ok)
	}
	if _, ok := state.SkillLevelKey("dancing"); ok {
		t.Fatal("unknown skill must not resolve")
	}
}

func TestValidateDict_UnknownKey(t *testing.T) {
	_, err := state.ValidateDict(map[string]any{"bogus_fact": true})
	var uk *state.UnknownKeyError
	if !errors.As(err, &uk) {
		t.Fatalf("expected *UnknownKeyError, got %v", err)
	}
	if uk.Key != "bogus_fact" {
		t.Fatalf("UnknownKeyError.Key = %q", uk.Key)
	}
}

func TestValidateDict_FirstUnknownKeyIsDeterministic(t *testing.T) {
	// Two unknown keys: the alphabetically first must always be reported,
	// independent of map iteration order.
	for i := 0; i < 20; i++ {
		_, err := state.ValidateDict(map[string]any{
			"zzz_unknown": 1,
			"aaa_unknown": 2,
		})
		var uk *state.UnknownKeyError
		if !errors.As(err, &uk) {
			t.Fatalf("expected *UnknownKeyError, got %v", err)
		}
		if uk.Key != "aaa_unknown" {
			t.Fatalf("expected aaa_unknown first, got %q", uk.Key)
		}
	}
}

func TestValidateDict_Coercions(t *testing.T) {
	s, err := state.ValidateDict(map[string]any{
		"alive":           true,
		"character_level": 7,
		"character_xp":    int64(250),
		"hp_current":      float64(40), // JSON numbers decode as float64
		"weapon_slot":     "copper_dagger",
	})
	if err != nil {
		t.Fatalf("ValidateDict: %v", err)
	}
	if v, _ := s.Get(state.KeyAlive); !v.Equal(state.Bool(true)) {
		t.Fatal("bool not coerced")
	}
	if v, _ := s.Get(state.KeyCharacterLevel); !v.Equal(state.Int(7)) {
		t.Fatal("int not coerced")
	}
	if v, _ := s.Get(state.KeyCharacterXP); !v.Equal(state.Int(250)) {
		t.Fatal("int64 not coerced")
	}
	if v, _ := s.Get(state.KeyHPCurrent); !v.Equal(state.Int(40)) {
		t.Fatal("whole float64 not coerced to int")
	}
	if v, _ := s.Get(state.KeyWeaponSlot); !v.Equal(state.Str("copper_dagger")) {
		t.Fatal("string not coerced")
	}
}

func TestValidateDict_RejectsNonIntegralFloat(t *testing.T) {
	if _, err := state.ValidateDict(map[string]any{"hp_current": 40.5}); err == nil {
		t.Fatal("non-integral float must be rejected")
	}
}

func TestValidateDict_RejectsUnsupportedType(t *testing.T) {
	if _, err := state.ValidateDict(map[string]any{"alive": []int{1}}); err == nil {
		t.Fatal("slice value must be rejected")
	}
}

// drawState builds a random state over a small slice of the vocabulary.
func drawState(rt *rapid.T, label string) state.State {
	keys := []state.Key{
		state.KeyAlive, state.KeyCharacterLevel, state.KeyHPCurrent,
		state.KeyWeaponSlot, state.KeyXPGained, state.KeyAtBank,
	}
	s := state.New()
	n := rapid.IntRange(0, len(keys)).Draw(rt, label+"_n")
	for i := 0; i < n; i++ {
		k := keys[i]
		switch rapid.IntRange(0, 2).Draw(rt, label+"_kind") {
		case 0:
			s[k] = state.Bool(rapid.Bool().Draw(rt, label+"_b"))
		case 1:
			s[k] = state.Int(rapid.IntRange(-100, 100).Draw(rt, label+"_i"))
		default:
			s[k] = state.Str(rapid.StringMatching(`[a-z]{0,8}`).Draw(rt, label+"_s"))
		}
	}
	return s
}

// Property: two states are Equal exactly when their fingerprints match.
func TestProperty_FingerprintMatchesEquality(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := drawState(rt, "a")
		b := drawState(rt, "b")
		if a.Equal(b) != (a.Fingerprint() == b.Fingerprint()) {
			rt.Fatalf("Equal=%v but fingerprints %q vs %q", a.Equal(b), a.Fingerprint(), b.Fingerprint())
		}
	})
}

// Property: a clone always fingerprints identically to its source.
func TestProperty_CloneFingerprintStable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := drawState(rt, "s")
		if s.Clone().Fingerprint() != s.Fingerprint() {
			rt.Fatal("clone fingerprint diverged")
		}
	})
}

// Property: merging a state into an empty one reproduces it exactly.
func TestProperty_MergeIntoEmptyReproduces(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := drawState(rt, "s")
		out := state.New()
		out.Merge(s)
		if !out.Equal(s) {
			rt.Fatalf("merge result %s != source %s", out, s)
		}
	})
}
