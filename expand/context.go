// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"context"
	"io"

	"github.com/nsheridan/posh/ast"
	"github.com/nsheridan/posh/pattern"
)

// TildeMode selects how a leading ~ in a word is expanded, per spec.md
// §4.4's WordEvalConfig.
type TildeMode uint8

const (
	// TildeNone never expands a leading ~.
	TildeNone TildeMode = iota
	// TildeFirst expands only the first occurrence of a leading ~.
	TildeFirst
	// TildeAll expands every occurrence of a leading ~.
	TildeAll
)

// WordEvalConfig controls tilde expansion and field splitting for one call
// to (*Context).EvalWord, per spec.md §4.4.
type WordEvalConfig struct {
	Tilde TildeMode
	Split bool
}

// ExitStatus mirrors interp.ExitStatus without importing interp (which
// depends on this package). interp.ExitStatus satisfies this by exposing
// the same two accessors.
type ExitStatus interface {
	Code() int
	IsSignal() bool
}

// SubshellFunc runs a command list in a subshell whose stdout is w,
// implementing the command-substitution collaborator from spec.md §4.5.
// It is supplied by the interp package, which is the only component able
// to actually spawn commands (spec.md §2: C5 "drives C7 for command
// substitution").
type SubshellFunc func(ctx context.Context, w io.Writer, body []ast.Command) error

// Context bundles everything the word, parameter, and arithmetic
// evaluators need: variable lookup, the positional parameter list, the
// running shell's identity, and the command-substitution callback.
type Context struct {
	Env Environ

	// Args are the current positional parameters ($1, $2, ...). $@/$*/$#
	// are derived from this slice.
	Args []string
	// Name is $0.
	Name string
	// Pid is $$.
	Pid int
	// LastStatus is $?.
	LastStatus ExitStatus

	// Subshell runs a command-substitution body. Must not be nil if any
	// word being evaluated might contain a CommandSubst.
	Subshell SubshellFunc

	// NoGlob is not read by any evaluator in this package: pattern trims
	// always interpret their pattern as a glob, and a malformed pattern
	// is returned as an error.
	NoGlob bool
}

// patternMatcher compiles a glob pattern the way §6's collaborator
// contract describes, with the zero pattern.Options: case-sensitive, and
// with "*" and "?" free to match "/" and a leading "." (PathnameGlob and
// DotGlob off), the scalar matching pattern trims and case arms use.
func (c *Context) patternMatcher(pat string) (pattern.Matcher, error) {
	return pattern.Compile(pat, pattern.Options{})
}

// ifsOrDefault returns the splitting character set: the default
// " \t\n" when IFS is unset, or IFS's literal value (which may be empty,
// meaning "do not split") when it is set.
func (c *Context) ifsOrDefault() string {
	vr := c.Env.Get("IFS")
	if !vr.IsSet() {
		return " \t\n"
	}
	return vr.String()
}

// ifsJoiner returns the separator $* uses when flattened to a scalar:
// a space when IFS is unset, nothing when IFS is set empty, else IFS[0].
func (c *Context) ifsJoiner() string {
	vr := c.Env.Get("IFS")
	if !vr.IsSet() {
		return " "
	}
	s := vr.String()
	if s == "" {
		return ""
	}
	return s[:1]
}
