// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nsheridan/posh/ast"
	"github.com/nsheridan/posh/expand"
)

// Spawner evaluates and runs ast.Command trees against one Environment,
// implementing spec.md §4.7's Command spawner (C7). It is the thin
// control-flow layer over Environment, grounded on the teacher's
// Runner.stmt/Runner.cmd dispatch in interp/runner.go, generalized to the
// ast package's Command/CompoundCommand shapes.
type Spawner struct {
	Env *Environment
}

// NewSpawner builds a Spawner over env.
func NewSpawner(env *Environment) *Spawner {
	return &Spawner{Env: env}
}

// ExpandContext builds the expand.Context this Spawner's Environment
// backs, wiring command substitution back into this same Spawner (spec.md
// §2: "C5 drives C7 for command substitution"). Exported so callers
// assembling redirects or words outside this package's own dispatch (e.g.
// a future parser front-end) can reuse the same wiring.
func (s *Spawner) ExpandContext() *expand.Context {
	return s.expandContext()
}

func (s *Spawner) expandContext() *expand.Context {
	return &expand.Context{
		Env:        s.Env,
		Args:       s.Env.Args(),
		Name:       s.Env.Name(),
		Pid:        s.Env.pid,
		LastStatus: s.Env.LastStatus(),
		Subshell:   s.runSubshellCapture,
	}
}

// runSubshellCapture runs body in a fresh sub_env() with stdout replaced
// by a pipe feeding w, implementing the command-substitution collaborator
// expand.SubshellFunc names.
func (s *Spawner) runSubshellCapture(ctx context.Context, w io.Writer, body []ast.Command) error {
	child := s.Env.SubEnv()
	r, pw, err := os.Pipe()
	if err != nil {
		return err
	}
	child.SetFileDesc(1, NewFileHandle(pw, false, true))

	copyDone := make(chan error, 1)
	go func() {
		_, cerr := io.Copy(w, r)
		r.Close()
		copyDone <- cerr
	}()

	sub := NewSpawner(child)
	_, runErr := sub.RunSequence(ctx, body)
	_ = pw.Close()
	if cerr := <-copyDone; cerr != nil && runErr == nil {
		runErr = cerr
	}
	return runErr
}

// RunSequence runs cmds in order, stopping (and propagating) on the first
// fatal error. The returned status is that of the last command run.
func (s *Spawner) RunSequence(ctx context.Context, cmds []ast.Command) (ExitStatus, error) {
	status := ExitSuccess
	for _, c := range cmds {
		var err error
		status, err = s.EvalCommand(ctx, c)
		s.Env.SetLastStatus(status)
		if err != nil {
			return status, err
		}
	}
	return status, nil
}

// EvalCommand dispatches one Command node to its handler, per spec.md
// §6's Command node family.
func (s *Spawner) EvalCommand(ctx context.Context, cmd ast.Command) (ExitStatus, error) {
	switch c := cmd.(type) {
	case *ast.SimpleCmd:
		return s.runSimple(ctx, &c.Command)
	case *ast.Compound:
		return s.runCompound(ctx, c)
	case *ast.FunctionDef:
		s.Env.SetFunction(c.Name, c.Body)
		return ExitSuccess, nil
	case *ast.Pipe:
		return s.runPipe(ctx, c)
	case *ast.And:
		status, err := s.EvalCommand(ctx, c.X)
		if err != nil || !status.Success() {
			return status, err
		}
		return s.EvalCommand(ctx, c.Y)
	case *ast.Or:
		status, err := s.EvalCommand(ctx, c.X)
		if err != nil || status.Success() {
			return status, err
		}
		return s.EvalCommand(ctx, c.Y)
	case *ast.Job:
		bg := NewSpawner(s.Env.SubEnv())
		go func() { _, _ = bg.EvalCommand(ctx, c.Command) }()
		return ExitSuccess, nil
	default:
		return ExitError, &UnknownCommandError{Command: cmd}
	}
}

// runSimple implements spec.md §4.7's Simple command semantics:
// interleave the assignment phase and the word phase in AST order through
// one Restorer, then dispatch to a function, builtin, or executable.
func (s *Spawner) runSimple(ctx context.Context, cmd *ast.SimpleCommand) (ExitStatus, error) {
	restorer := NewRestorer(s.Env)
	ec := s.expandContext()

	hasCmdWord := false
	for _, item := range cmd.Words {
		if item.CmdWord != nil {
			hasCmdWord = true
			break
		}
	}

	for _, item := range cmd.Assignments {
		if item.Redirect != nil {
			if err := EvalRedirect(ctx, s.Env, ec, restorer, *item.Redirect); err != nil {
				restorer.Restore()
				return ExitError, &RedirectOrVarAssigError{Redirect: err}
			}
			continue
		}
		value := ""
		if item.VarAssig.Word != nil {
			fields, err := ec.EvalWord(ctx, item.VarAssig.Word, expand.WordEvalConfig{Tilde: expand.TildeFirst})
			if err != nil {
				restorer.Restore()
				return ExitError, &RedirectOrVarAssigError{VarAssig: err}
			}
			value = fields.Join(" ")
		}
		vr := expand.Variable{Set: true, Kind: expand.String, Str: value, Exported: hasCmdWord}
		if err := restorer.SetVar(item.VarAssig.Name, vr); err != nil {
			restorer.Restore()
			return ExitError, &RedirectOrVarAssigError{VarAssig: err}
		}
	}

	var words []string
	for _, item := range cmd.Words {
		if item.Redirect != nil {
			if err := EvalRedirect(ctx, s.Env, ec, restorer, *item.Redirect); err != nil {
				restorer.Restore()
				return ExitError, &RedirectOrCmdWordError{Redirect: err}
			}
			continue
		}
		fields, err := ec.EvalWord(ctx, item.CmdWord, expand.WordEvalConfig{Tilde: expand.TildeFirst, Split: true})
		if err != nil {
			restorer.Restore()
			return ExitError, &RedirectOrCmdWordError{CmdWord: err}
		}
		words = append(words, fields.Slice()...)
	}

	if len(words) == 0 {
		// spec.md §4.7 step 4: assignments persist in the caller's
		// scope; only the redirections are undone.
		restorer.RestoreRedirects()
		return ExitSuccess, nil
	}

	status, err := s.runCommandWords(ctx, words)
	restorer.Restore()
	return status, err
}

// runCommandWords resolves words[0] as a function, then a builtin, then
// an executable, in that order, per spec.md §4.7 step 5.
func (s *Spawner) runCommandWords(ctx context.Context, words []string) (ExitStatus, error) {
	name := words[0]

	if body, ok := s.Env.Function(name); ok {
		return s.callFunction(ctx, body, words[1:])
	}

	if fn, ok := builtins[name]; ok {
		return fn(ctx, s, words)
	}

	stdin, stdout, stderr := s.stdioFiles()
	data := ExecutableData{
		Name:       name,
		Args:       words,
		EnvVars:    s.Env.EnvVars(),
		CurrentDir: s.Env.Cwd(),
		Stdin:      stdin,
		Stdout:     stdout,
		Stderr:     stderr,
	}
	status, err := s.Env.SpawnExecutable(ctx, data)
	if err != nil {
		s.Env.ReportError(err.Error())
		return ExitError, nil
	}
	return status, nil
}

// stdioFiles resolves the current fd 0/1/2 handles to the readers/writers
// a ProcessLauncher needs.
func (s *Spawner) stdioFiles() (io.Reader, io.Writer, io.Writer) {
	var stdin io.Reader
	var stdout, stderr io.Writer
	if h, err := s.Env.FileDesc(0); err == nil {
		stdin = h.file
	}
	if h, err := s.Env.FileDesc(1); err == nil {
		stdout = h.file
	}
	if h, err := s.Env.FileDesc(2); err == nil {
		stderr = h.file
	}
	return stdin, stdout, stderr
}

// callFunction invokes a declared function body, guaranteeing the
// argument swap and function-frame push/pop are undone on every exit
// path, per spec.md §4.7's Function invocation section.
func (s *Spawner) callFunction(ctx context.Context, body ast.Command, args []string) (ExitStatus, error) {
	oldArgs := s.Env.Args()
	s.Env.SetArgs(args)
	s.Env.PushFnFrame()
	defer func() {
		s.Env.PopFnFrame()
		s.Env.SetArgs(oldArgs)
	}()
	return s.EvalCommand(ctx, body)
}

// UnknownCommandError signals an ast.Command implementation this Spawner
// doesn't recognize; it indicates a bug in the AST producer.
type UnknownCommandError struct {
	Command ast.Command
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unhandled command: %T", e.Command)
}
