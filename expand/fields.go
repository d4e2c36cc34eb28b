// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package expand turns the word AST (ast.Word and friends) into Fields
// values, implementing POSIX tilde expansion, IFS-driven field splitting,
// parameter and substitution evaluation, and arithmetic, per spec.md §3-5.
package expand

import "strings"

// StringWrapper is a string value whose sharing semantics are cheap to
// clone. Go's strings are already immutable and reference-counted by the
// runtime, so this is a thin named type rather than the copy-on-write
// wrapper a language without that guarantee would need.
type StringWrapper string

// NewStringWrapper constructs a StringWrapper from an owned string.
func NewStringWrapper(s string) StringWrapper { return StringWrapper(s) }

// Borrow returns the string's contents without transferring ownership.
func (s StringWrapper) Borrow() string { return string(s) }

// IntoOwned destructively obtains an owned copy of the string. For
// StringWrapper this never needs to copy, since Go strings are immutable.
func (s StringWrapper) IntoOwned() string { return string(s) }

// Kind tags which variant a Fields value holds.
type Kind uint8

const (
	// Zero is no field at all (distinct from Single("")).
	Zero Kind = iota
	// SingleKind is exactly one field.
	SingleKind
	// AtKind is the $@ positional-args expansion; boundaries survive
	// double quotes.
	AtKind
	// StarKind is the $* positional-args expansion; joined by IFS[0]
	// when flattened to a scalar.
	StarKind
	// SplitKind is a generic multi-field result, subject to ordinary
	// field-splitting rules.
	SplitKind
)

// Fields is the tagged value produced by word evaluation (spec.md §3).
// The zero Fields value is Zero.
type Fields struct {
	kind   Kind
	values []string
}

// Z is the Zero field: no field produced at all.
func Z() Fields { return Fields{kind: Zero} }

// SingleField wraps exactly one field.
func SingleField(s string) Fields { return Fields{kind: SingleKind, values: []string{s}} }

// AtFields builds the $@ variant from the positional argument list.
func AtFields(vs []string) Fields { return Fields{kind: AtKind, values: vs} }

// StarFields builds the $* variant from the positional argument list.
func StarFields(vs []string) Fields { return Fields{kind: StarKind, values: vs} }

// SplitFields builds a generic multi-field result.
func SplitFields(vs []string) Fields { return Fields{kind: SplitKind, values: vs} }

// FromStrings builds a Fields value from a plain slice, collapsing by
// length: empty becomes Zero, one element becomes Single, more becomes
// Split. This is the constructor spec.md §4.1 describes for generic
// multi-value results (e.g. the output of field splitting).
func FromStrings(vs []string) Fields {
	switch len(vs) {
	case 0:
		return Z()
	case 1:
		return SingleField(vs[0])
	default:
		return SplitFields(vs)
	}
}

// Kind reports which variant this value holds, after the At([])/Star([])
// -> Zero collapse.
func (f Fields) Kind() Kind { return f.observedKind() }

// observedValues returns the field list a caller should see once At([])
// and Star([]) have collapsed to Zero, per spec.md §3's invariant.
func (f Fields) observedValues() []string {
	if (f.kind == AtKind || f.kind == StarKind) && len(f.values) == 0 {
		return nil
	}
	return f.values
}

// observedKind is Kind after applying the At([])/Star([]) -> Zero collapse.
func (f Fields) observedKind() Kind {
	if (f.kind == AtKind || f.kind == StarKind) && len(f.values) == 0 {
		return Zero
	}
	return f.kind
}

// Join flattens the Fields value to a single string, per spec.md §4.1's
// join rules: Single/Split/At join with a space; Star joins with
// starJoiner, which the caller must already have resolved from IFS (a
// space if IFS is unset, nothing if IFS is set empty, else IFS[0] —
// Fields itself has no access to IFS, so it cannot make that distinction).
func (f Fields) Join(starJoiner string) string {
	vals := f.observedValues()
	switch f.observedKind() {
	case Zero:
		return ""
	case StarKind:
		return strings.Join(vals, starJoiner)
	default: // SingleKind, AtKind, SplitKind
		return strings.Join(vals, " ")
	}
}

// Slice returns the fields as an ordinary slice, applying the
// At([])/Star([]) -> Zero collapse.
func (f Fields) Slice() []string {
	switch f.observedKind() {
	case Zero:
		return nil
	case SingleKind:
		return []string{f.values[0]}
	default:
		return f.observedValues()
	}
}

// IsNull reports whether every contained string is empty, per spec.md
// §4.1: true iff all contained strings are empty AND the variant is not
// Zero (a Fields with no strings at all is not "null", it's absent).
func (f Fields) IsNull() bool {
	if f.observedKind() == Zero {
		return false
	}
	for _, s := range f.observedValues() {
		if s != "" {
			return false
		}
	}
	return true
}

// Len returns the scalar length spec.md §4.5 uses for ${#param}: the field
// count for At/Star, the rune length of the joined scalar otherwise.
func (f Fields) Len() int {
	switch f.observedKind() {
	case Zero:
		return 0
	case AtKind, StarKind:
		return len(f.observedValues())
	default:
		n := 0
		for _, r := range f.Join(" ") {
			_ = r
			n++
		}
		return n
	}
}
