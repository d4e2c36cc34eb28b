// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"

	"github.com/nsheridan/posh/ast"
	"github.com/nsheridan/posh/expand"
)

// runCompound applies a Compound node's own redirects through a Restorer
// scoped to the whole compound, then dispatches on its CompoundCommand
// kind, per spec.md §4.7's Compound commands section.
func (s *Spawner) runCompound(ctx context.Context, c *ast.Compound) (ExitStatus, error) {
	restorer := NewRestorer(s.Env)
	defer restorer.Restore()
	ec := s.expandContext()
	for _, rd := range c.Redirects {
		if err := EvalRedirect(ctx, s.Env, ec, restorer, rd); err != nil {
			return ExitError, err
		}
	}

	switch body := c.Command.(type) {
	case *ast.Brace:
		return s.RunSequence(ctx, body.Commands)
	case *ast.Subshell:
		return s.runSubshell(ctx, body)
	case *ast.If:
		return s.runIf(ctx, body)
	case *ast.Loop:
		return s.runLoop(ctx, body)
	case *ast.For:
		return s.runFor(ctx, body)
	case *ast.Case:
		return s.runCase(ctx, body)
	default:
		return ExitError, &UnknownCommandError{Command: c}
	}
}

// runSubshell sequences body in a sub_env(); any uncaught error is
// reported via ReportError and converted into the subshell's exit status,
// per spec.md §4.7: "the result is always an ExitStatus (non-zero on
// error)". An `exit` inside the subshell ends it with the status that exit
// chose, without a report.
func (s *Spawner) runSubshell(ctx context.Context, body *ast.Subshell) (ExitStatus, error) {
	sub := NewSpawner(s.Env.SubEnv())
	status, err := sub.RunSequence(ctx, body.Commands)
	if err != nil {
		if exitReq, ok := err.(*exitRequestError); ok {
			return exitReq.Status, nil
		}
		sub.Env.ReportError(err.Error())
		return ExitError, nil
	}
	return status, nil
}

// runIf iterates guard/body pairs, running the first body whose guard
// succeeds; if none succeed, runs the else branch (if any), else returns
// EXIT_SUCCESS.
func (s *Spawner) runIf(ctx context.Context, c *ast.If) (ExitStatus, error) {
	for _, branch := range c.Branches {
		status, err := s.RunSequence(ctx, branch.Guard)
		if err != nil {
			return status, err
		}
		if status.Success() {
			return s.RunSequence(ctx, branch.Body)
		}
	}
	if c.Else != nil {
		return s.RunSequence(ctx, c.Else)
	}
	return ExitSuccess, nil
}

// runLoop implements while/until: repeat while guard.success() XOR
// InvertGuard. If the guard is false on entry, the loop's status is
// EXIT_SUCCESS; otherwise it is that of the last body execution.
func (s *Spawner) runLoop(ctx context.Context, c *ast.Loop) (ExitStatus, error) {
	status := ExitSuccess
	ran := false
	for {
		guardStatus, err := s.RunSequence(ctx, c.Guard)
		if err != nil {
			return guardStatus, err
		}
		if guardStatus.Success() == c.InvertGuard {
			break
		}
		ran = true
		status, err = s.RunSequence(ctx, c.Body)
		if err != nil {
			return status, err
		}
	}
	if !ran {
		return ExitSuccess, nil
	}
	return status, nil
}

// runFor evaluates the word list (tilde_expansion=First,
// split_fields_further=true) or falls back to the current positional
// args, then runs the body once per value with the loop variable set.
// Body errors propagate and abort the loop, matching runLoop and runIf:
// every error that can reach here (expansion, redirection, command
// startup) is fatal per spec.md §7.
func (s *Spawner) runFor(ctx context.Context, c *ast.For) (ExitStatus, error) {
	ec := s.expandContext()
	var values []string
	if c.Iter.HasIn {
		for _, w := range c.Iter.Words {
			fields, err := ec.EvalWord(ctx, w, expand.WordEvalConfig{Tilde: expand.TildeFirst, Split: true})
			if err != nil {
				return ExitError, err
			}
			values = append(values, fields.Slice()...)
		}
	} else {
		values = s.Env.Args()
	}

	status := ExitSuccess
	for _, v := range values {
		if err := s.Env.SetVar(c.Var, expand.Variable{Set: true, Kind: expand.String, Str: v}); err != nil {
			return ExitError, err
		}
		var err error
		status, err = s.RunSequence(ctx, c.Body)
		if err != nil {
			return status, err
		}
	}
	return status, nil
}

// runCase evaluates the selector word (tilde_expansion=First,
// split_fields_further=false), joins its fields, then tests each arm's
// patterns in order, running the first arm whose pattern matches.
func (s *Spawner) runCase(ctx context.Context, c *ast.Case) (ExitStatus, error) {
	ec := s.expandContext()
	fields, err := ec.EvalWord(ctx, c.Word, expand.WordEvalConfig{Tilde: expand.TildeFirst})
	if err != nil {
		return ExitError, err
	}
	selector := fields.Join(" ")

	for _, arm := range c.Arms {
		for _, patWord := range arm.Patterns {
			patFields, err := ec.EvalWord(ctx, patWord, expand.WordEvalConfig{Tilde: expand.TildeFirst})
			if err != nil {
				return ExitError, err
			}
			matched, err := caseMatch(patFields.Join(" "), selector)
			if err != nil {
				return ExitError, err
			}
			if matched {
				return s.RunSequence(ctx, arm.Body)
			}
		}
	}
	return ExitSuccess, nil
}
