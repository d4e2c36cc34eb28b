// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"os"
	"strconv"

	"github.com/nsheridan/posh/ast"
	"github.com/nsheridan/posh/expand"
)

// defaultFd returns the conventional fd for a redirect operator that
// omitted an explicit one, per spec.md §4.6: "0 for read forms, 1 for
// write forms".
func defaultFd(op ast.RedirectOp) int {
	switch op {
	case ast.Read, ast.Heredoc, ast.DupRead:
		return 0
	default:
		return 1
	}
}

// EvalRedirect evaluates rd to a concrete fd action and applies it to env
// through restorer, per spec.md §4.6. I/O errors from opening the path
// produce a *RedirectError that the caller either propagates or swallows.
func EvalRedirect(ctx context.Context, env *Environment, ec *expand.Context, restorer *Restorer, rd ast.Redirect) error {
	fd := rd.Fd
	if fd < 0 {
		fd = defaultFd(rd.Op)
	}

	switch rd.Op {
	case ast.Heredoc:
		return evalHeredoc(env, restorer, fd, rd.Body)
	case ast.DupRead, ast.DupWrite:
		return evalDup(ctx, env, ec, restorer, fd, rd.Word)
	default:
		return evalFileRedirect(ctx, env, ec, restorer, fd, rd)
	}
}

// evalHeredoc opens a pipe, writes the here-document body into it from a
// goroutine (so a large body can't deadlock against a reader that hasn't
// started yet), and installs the read end at fd.
func evalHeredoc(env *Environment, restorer *Restorer, fd int, body string) error {
	r, w, err := env.OpenPipe()
	if err != nil {
		return &RedirectError{Fd: fd, Err: err}
	}
	go func() {
		defer w.Release()
		_, _ = w.file.WriteString(body)
	}()
	restorer.SetFileDesc(fd, r)
	return nil
}

// evalDup implements `<&n`/`>&n` (duplicate fd n onto fd) and `<&-`/`>&-`
// (close fd).
func evalDup(ctx context.Context, env *Environment, ec *expand.Context, restorer *Restorer, fd int, word *ast.Word) error {
	fields, err := ec.EvalWord(ctx, word, expand.WordEvalConfig{Tilde: expand.TildeFirst})
	if err != nil {
		return &RedirectError{Fd: fd, Err: err}
	}
	target := fields.Join(" ")
	if target == "-" {
		if err := restorer.CloseFileDesc(fd); err != nil {
			return &RedirectError{Fd: fd, Err: err}
		}
		return nil
	}
	srcFd, err := strconv.Atoi(target)
	if err != nil {
		return &RedirectError{Fd: fd, Err: err}
	}
	src, err := env.FileDesc(srcFd)
	if err != nil {
		return &RedirectError{Fd: fd, Err: err}
	}
	restorer.SetFileDesc(fd, src.Dup())
	return nil
}

// evalFileRedirect implements the Read/Write/ReadWrite/Append/Clobber
// forms: evaluate the target path, open it with POSIX-conventional
// flags, and install the resulting handle at fd.
func evalFileRedirect(ctx context.Context, env *Environment, ec *expand.Context, restorer *Restorer, fd int, rd ast.Redirect) error {
	fields, err := ec.EvalWord(ctx, rd.Word, expand.WordEvalConfig{Tilde: expand.TildeFirst})
	if err != nil {
		return &RedirectError{Fd: fd, Err: err}
	}
	path := fields.Join(" ")

	var flag int
	switch rd.Op {
	case ast.Read:
		flag = os.O_RDONLY
	case ast.Write, ast.Clobber:
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case ast.ReadWrite:
		flag = os.O_RDWR | os.O_CREATE
	case ast.Append:
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	h, err := env.OpenPath(path, flag, 0o644)
	if err != nil {
		return &RedirectError{Path: path, Fd: fd, Err: err}
	}
	restorer.SetFileDesc(fd, h)
	return nil
}
