// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nsheridan/posh/expand"
)

// BuiltinFunc is the builtin dispatch contract (spec.md §1: "built-in
// command implementations beyond their dispatch contract" are out of
// scope, so only this signature plus a handful of POSIX-mandated builtins
// are implemented here). args[0] is the builtin's own name.
type BuiltinFunc func(ctx context.Context, s *Spawner, args []string) (ExitStatus, error)

// builtins holds the POSIX-mandated builtins exercised by spec.md §8's
// worked examples: ":", "cd", "export", "unset", "shift", "exit", "true",
// and "false".
var builtins = map[string]BuiltinFunc{
	":":      builtinColon,
	"true":   builtinTrue,
	"false":  builtinFalse,
	"cd":     builtinCd,
	"export": builtinExport,
	"unset":  builtinUnset,
	"shift":  builtinShift,
	"exit":   builtinExit,
}

func builtinColon(ctx context.Context, s *Spawner, args []string) (ExitStatus, error) {
	return ExitSuccess, nil
}

func builtinTrue(ctx context.Context, s *Spawner, args []string) (ExitStatus, error) {
	return ExitSuccess, nil
}

func builtinFalse(ctx context.Context, s *Spawner, args []string) (ExitStatus, error) {
	return ExitError, nil
}

// builtinCd implements `cd [-L|-P] [dir]`, grounded on the teacher's cd
// handling in interp/builtin.go: `cd` with no argument goes to $HOME,
// `cd -` goes to $OLDPWD.
func builtinCd(ctx context.Context, s *Spawner, args []string) (ExitStatus, error) {
	args = args[1:]
	physical := false
	for len(args) > 0 && len(args[0]) == 2 && args[0][0] == '-' && (args[0][1] == 'L' || args[0][1] == 'P') {
		physical = args[0][1] == 'P'
		args = args[1:]
	}

	var dir string
	switch {
	case len(args) == 0:
		dir = s.Env.Var("HOME").String()
	case args[0] == "-":
		dir = s.Env.Var("OLDPWD").String()
	default:
		dir = args[0]
	}
	if dir == "" {
		return ExitError, nil
	}
	if err := s.Env.ChangeWorkingDir(dir, physical); err != nil {
		s.Env.ReportError(fmt.Sprintf("cd: %v", err))
		return ExitError, nil
	}
	return ExitSuccess, nil
}

// builtinExport marks each `name` or `name=value` argument exported.
func builtinExport(ctx context.Context, s *Spawner, args []string) (ExitStatus, error) {
	for _, arg := range args[1:] {
		name, value, hasValue := cutAssign(arg)
		if hasValue {
			if err := s.Env.SetExportedVar(name, value); err != nil {
				s.Env.ReportError(fmt.Sprintf("export: %v", err))
				return ExitError, nil
			}
			continue
		}
		vr := s.Env.Var(name)
		vr.Set = true
		vr.Exported = true
		if vr.Kind == expand.Unknown {
			vr.Kind = expand.String
		}
		if err := s.Env.SetVar(name, vr); err != nil {
			s.Env.ReportError(fmt.Sprintf("export: %v", err))
			return ExitError, nil
		}
	}
	return ExitSuccess, nil
}

func cutAssign(s string) (name, value string, hasValue bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// builtinUnset removes each named variable.
func builtinUnset(ctx context.Context, s *Spawner, args []string) (ExitStatus, error) {
	status := ExitSuccess
	for _, name := range args[1:] {
		if err := s.Env.UnsetVar(name); err != nil {
			s.Env.ReportError(fmt.Sprintf("unset: %v", err))
			status = ExitError
		}
	}
	return status, nil
}

// builtinShift implements `shift [n]` (default n=1), saturating rather
// than erroring if n exceeds $#.
func builtinShift(ctx context.Context, s *Spawner, args []string) (ExitStatus, error) {
	n := 1
	if len(args) > 1 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil {
			s.Env.ReportError("shift: numeric argument required")
			return ExitError, nil
		}
		n = parsed
	}
	s.Env.ShiftArgs(n)
	return ExitSuccess, nil
}

// exitRequestError is returned by the `exit` builtin to unwind every
// enclosing RunSequence/EvalCommand call. runSubshell stops it and ends the
// subshell with the carried Status; anywhere else it propagates as an
// ordinary error to the caller of the outermost RunSequence/EvalCommand.
type exitRequestError struct {
	Status ExitStatus
}

func (e *exitRequestError) Error() string { return "exit" }

func builtinExit(ctx context.Context, s *Spawner, args []string) (ExitStatus, error) {
	status := s.Env.LastStatus()
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			s.Env.ReportError("exit: numeric argument required")
			return Code(2), &exitRequestError{Status: Code(2)}
		}
		status = Code(n)
	}
	return status, &exitRequestError{Status: status}
}
