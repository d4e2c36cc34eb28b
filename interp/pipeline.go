// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/nsheridan/posh/ast"
)

// invertStatus applies the `!` prefix's effect: success becomes Code(1),
// any non-zero becomes Code(0), per spec.md §4.7.
func invertStatus(status ExitStatus, invert bool) ExitStatus {
	if !invert {
		return status
	}
	if status.Success() {
		return Code(1)
	}
	return Code(0)
}

// runPipe implements spec.md §4.7's Pipeline semantics for a *ast.Pipe: a
// Single command runs in the caller's own environment, side effects and
// all; a multi-stage Pipe connects each adjacent pair with an OS pipe,
// gives every stage i its own sub_env() with stdin/stdout wired to the
// pipe (except the very first stage's stdin and the very last stage's
// stdout, which inherit the caller's), and drives every stage
// concurrently via golang.org/x/sync/errgroup. Only the final stage's
// exit status and error are observable; earlier stages' errors are
// swallowed (their closing their pipe ends is signal enough), and once
// the final stage finishes the remaining stages are left to drain in the
// background rather than blocking the caller.
func (s *Spawner) runPipe(ctx context.Context, p *ast.Pipe) (ExitStatus, error) {
	if len(p.Commands) == 0 {
		return ExitSuccess, nil
	}
	if len(p.Commands) == 1 {
		status, err := s.EvalCommand(ctx, p.Commands[0])
		return invertStatus(status, p.InvertLast), err
	}

	n := len(p.Commands)
	envs := make([]*Environment, n)
	for i := range envs {
		envs[i] = s.Env.SubEnv()
	}
	for i := 0; i < n-1; i++ {
		r, w, err := s.Env.OpenPipe()
		if err != nil {
			return ExitError, err
		}
		envs[i].SetFileDesc(1, w)
		envs[i+1].SetFileDesc(0, r)
	}

	var g errgroup.Group
	for i := 0; i < n-1; i++ {
		i := i
		g.Go(func() error {
			sub := NewSpawner(envs[i])
			_, _ = sub.EvalCommand(ctx, p.Commands[i])
			if i > 0 {
				_ = envs[i].CloseFileDesc(0)
			}
			_ = envs[i].CloseFileDesc(1)
			return nil // intermediate stage errors are swallowed by design
		})
	}
	// Reap the earlier stages in the background; the caller only waits on
	// the last stage below.
	go func() { _ = g.Wait() }()

	last := n - 1
	sub := NewSpawner(envs[last])
	status, err := sub.EvalCommand(ctx, p.Commands[last])
	if last > 0 {
		_ = envs[last].CloseFileDesc(0)
	}
	return invertStatus(status, p.InvertLast), err
}
