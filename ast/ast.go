// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package ast defines the shell abstract syntax tree consumed by the
// expand and interp packages. Producing this tree (lexing and parsing
// shell source) is out of scope for this module; callers either hand-build
// trees, as this package's own tests do, or bring their own front end.
package ast

// Word is a word as it appears in a shell command, either a single token or
// several concatenated together, e.g. "foo"bar$baz.
type Word struct {
	Parts []WordPart
}

// WordPart is one piece of a Word. It is one of Single or Concat.
type WordPart interface {
	wordPart()
}

// Single wraps exactly one SimpleWord, DoubleQuoted, or SingleQuoted value,
// contributing no concatenation semantics of its own.
type Single struct {
	Word SimpleWordHolder
}

func (*Single) wordPart() {}

// Concat holds several SimpleWord/quoted values concatenated without
// whitespace between them, e.g. the pieces of "foo"bar$baz.
type Concat struct {
	Parts []SimpleWordHolder
}

func (*Concat) wordPart() {}

// SimpleWordHolder is the set of things that can appear as one element of a
// Word: a bare SimpleWord, or a quoted run of them.
type SimpleWordHolder interface {
	simpleWordHolder()
}

// Simple wraps a single SimpleWord with no quoting.
type Simple struct {
	Word SimpleWord
}

func (*Simple) simpleWordHolder() {}

// SingleQuoted is a 'single quoted' run of literal text: no expansion, no
// splitting, regardless of the caller's WordEvalConfig.
type SingleQuoted struct {
	Value string
}

func (*SingleQuoted) simpleWordHolder() {}

// DoubleQuoted is a "double quoted" run of SimpleWords, concatenated with
// $@ kept field-boundary-aware per spec §4.4.
type DoubleQuoted struct {
	Parts []SimpleWord
}

func (*DoubleQuoted) simpleWordHolder() {}

// SimpleWord is the smallest indivisible word fragment.
type SimpleWord interface {
	simpleWord()
}

// Literal is an unquoted run of literal text, already unescaped by the
// front end that produced it.
type Literal struct {
	Value string
}

func (*Literal) simpleWord() {}

// Escaped is literal text that arrived backslash-escaped; it behaves like
// Literal for expansion purposes (no further escape processing).
type Escaped struct {
	Value string
}

func (*Escaped) simpleWord() {}

// Star is a bare, unquoted "*" glob character.
type Star struct{}

func (*Star) simpleWord() {}

// Question is a bare, unquoted "?" glob character.
type Question struct{}

func (*Question) simpleWord() {}

// SquareOpen is a bare, unquoted "[" glob character.
type SquareOpen struct{}

func (*SquareOpen) simpleWord() {}

// SquareClose is a bare, unquoted "]" glob character.
type SquareClose struct{}

func (*SquareClose) simpleWord() {}

// Tilde is a bare, unquoted leading "~", subject to WordEvalConfig's
// TildeExpansion setting.
type Tilde struct{}

func (*Tilde) simpleWord() {}

// Colon is a bare, unquoted ":" character, relevant to tilde expansion in
// PATH-like values (see the open question in spec.md §9).
type Colon struct{}

func (*Colon) simpleWord() {}

// Param is a parameter expansion, e.g. $foo or $@.
type Param struct {
	Parameter Parameter
}

func (*Param) simpleWord() {}

// Subst is one of the eight parameter substitution forms.
type Subst struct {
	Substitution ParameterSubstitution
}

func (*Subst) simpleWord() {}
