// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package pattern

import "regexp"

// Options configures pattern compilation, per spec.md §6's glob collaborator
// contract: "a pattern compiler from a string to a matcher... with options:
// case-sensitive, do-not-require-literal-separator, do-not-require-literal-
// leading-dot".
type Options struct {
	// CaseInsensitive, when true, makes the match case-insensitive
	// (shell's `nocaseglob`/`nocasematch`).
	CaseInsensitive bool
	// DotGlob, when true, allows a leading "." or a "." right after a "/"
	// to be matched by "*" (shell's `dotglob`). It only has an effect
	// together with PathnameGlob: there, when false, a "*" at the start
	// of a path element does not match a leading dot. "?" matches a
	// leading dot either way, and without PathnameGlob so does "*".
	DotGlob bool
	// PathnameGlob, when true, requires "/" to be matched literally: "*"
	// and "?" will not cross a path separator, only "**" does (shell's
	// pathname expansion). When false, "*" matches "/" like an ordinary
	// character, appropriate for pattern trims and `case` arms, which
	// operate on scalars rather than paths.
	PathnameGlob bool
	// Shortest prefers the shortest match, used by the %/# "remove
	// smallest" substitution forms; the largest forms leave this false.
	Shortest bool
}

// Matcher tests whether a string matches a compiled pattern, per spec.md
// §6's "matcher that tests a string" contract.
type Matcher interface {
	Match(s string) bool
	// FindSubmatchIndex returns the leftmost match's [start, end) byte
	// offsets within s, or nil if there is no match.
	FindSubmatchIndex(s string) []int
}

type regexpMatcher struct {
	rx *regexp.Regexp
}

func (m regexpMatcher) Match(s string) bool { return m.rx.MatchString(s) }

func (m regexpMatcher) FindSubmatchIndex(s string) []int {
	return m.rx.FindStringIndex(s)
}

// Compile turns a shell pattern into a Matcher, per spec.md §6. An empty
// pattern matches only the empty string.
func Compile(pat string, opts Options) (Matcher, error) {
	frag, err := Translate(pat, opts)
	if err != nil {
		return nil, err
	}
	rx, err := regexp.Compile("^" + frag + "$")
	if err != nil {
		return nil, err
	}
	return regexpMatcher{rx: rx}, nil
}

// CompileAnchored is like Compile, but takes a ready regexp whose anchoring
// the caller supplies (e.g. "(...)$" for a suffix match) instead of a shell
// pattern. The prefix/suffix removal forms in expand/param.go do not use
// it; they compile their own regexp around Translate's fragment.
func CompileAnchored(expr string) (Matcher, error) {
	rx, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return regexpMatcher{rx: rx}, nil
}
