// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nsheridan/posh/ast"
	"github.com/nsheridan/posh/expand"
)

// FileHandle is a reference-counted file descriptor, so that dup'ing an fd
// (e.g. `2>&1`) and later closing either copy only closes the underlying
// OS file once both copies have gone away (spec.md §5: "File handles are
// reference-counted; handle duplication shares the underlying OS
// resource").
type FileHandle struct {
	file     *os.File
	readable bool
	writable bool
	refs     *int
}

// NewFileHandle wraps an already-open file with its access permissions.
func NewFileHandle(f *os.File, readable, writable bool) *FileHandle {
	refs := 1
	return &FileHandle{file: f, readable: readable, writable: writable, refs: &refs}
}

// Dup returns a new handle sharing the same underlying file, bumping the
// shared refcount.
func (h *FileHandle) Dup() *FileHandle {
	*h.refs++
	return &FileHandle{file: h.file, readable: h.readable, writable: h.writable, refs: h.refs}
}

// Release drops one reference, closing the underlying file once the last
// reference is gone.
func (h *FileHandle) Release() error {
	*h.refs--
	if *h.refs > 0 {
		return nil
	}
	return h.file.Close()
}

func (h *FileHandle) Read(p []byte) (int, error)  { return h.file.Read(p) }
func (h *FileHandle) Write(p []byte) (int, error) { return h.file.Write(p) }

// ExecutableData is the Process launcher collaborator's input, per
// spec.md §6: "Accepts ExecutableData{name, args, env_vars, current_dir,
// stdin, stdout, stderr} and returns a future yielding ExitStatus."
type ExecutableData struct {
	Name       string
	Args       []string
	EnvVars    []string
	CurrentDir string
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
}

// ProcessLauncher starts an external program and waits for it to finish.
// Failures to locate or start the program surface as a *CommandError
// rather than a generic error.
type ProcessLauncher func(ctx context.Context, data ExecutableData) (ExitStatus, error)

// DefaultProcessLauncher is the ProcessLauncher used when none is supplied
// via WithLauncher, grounded on the teacher's DefaultExecHandler
// (interp/handler.go): resolve the binary on PATH relative to CurrentDir,
// then run it with the given env/stdio.
func DefaultProcessLauncher() ProcessLauncher {
	return func(ctx context.Context, data ExecutableData) (ExitStatus, error) {
		path, err := lookPath(data.CurrentDir, data.EnvVars, data.Name)
		if err != nil {
			return ExitError, &CommandError{Name: data.Name, Kind: CommandNotFound, Err: err}
		}
		cmd := execCommand(ctx, path, data)
		err = cmd.Run()
		if err == nil {
			return ExitSuccess, nil
		}
		if status, ok := exitStatusFromError(err); ok {
			return status, nil
		}
		return ExitError, &CommandError{Name: data.Name, Kind: CommandIO, Err: err}
	}
}

// Environment is the composite capability struct spec.md §4.2 specifies:
// a single concrete type implementing every environment capability
// directly (spec.md §9: "Prefer a single concrete environment struct in
// the rewrite that implements all the capabilities directly").
//
// Environment satisfies expand.Environ (Get/Set/Each) so that
// expand.Context can be built directly from it.
type Environment struct {
	vars map[string]expand.Variable

	args []string
	name string
	pid  int

	lastStatus ExitStatus

	fds map[int]*FileHandle

	cwd string

	functions map[string]ast.Command

	// fnFrameDepth counts nested function invocations; IsFnRunning is
	// fnFrameDepth > 0. PopFnFrame saturates at zero (spec.md §4.2).
	fnFrameDepth int

	launcher ProcessLauncher
}

// Option configures a new Environment, in the spirit of the teacher's
// RunnerOption functional options (interp/api.go's New/Env/Dir/Params).
type Option func(*Environment) error

// WithArgs sets the initial positional parameters ($1, $2, ...) and $0.
func WithArgs(name string, args []string) Option {
	return func(e *Environment) error {
		e.name = name
		e.args = append([]string(nil), args...)
		return nil
	}
}

// WithEnvPairs seeds variables from "name=value" pairs (the shape of
// os.Environ()), all marked exported, matching the teacher's EnvFromList.
func WithEnvPairs(pairs []string) Option {
	return func(e *Environment) error {
		for _, kv := range pairs {
			name, value, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("env not in the form key=value: %q", kv)
			}
			e.vars[name] = expand.Variable{Set: true, Exported: true, Kind: expand.String, Str: value}
		}
		return nil
	}
}

// WithDir sets the initial working directory; it must be an absolute path.
func WithDir(dir string) Option {
	return func(e *Environment) error {
		if !filepath.IsAbs(dir) {
			return fmt.Errorf("dir %q must be absolute", dir)
		}
		e.cwd = dir
		return nil
	}
}

// WithLauncher overrides the default ProcessLauncher, e.g. to sandbox or
// record external commands in tests.
func WithLauncher(l ProcessLauncher) Option {
	return func(e *Environment) error {
		e.launcher = l
		return nil
	}
}

// WithStdio installs the initial fd 0/1/2 handles. Any not supplied keep
// whatever New already defaulted them to (the host process's own stdio).
func WithStdio(stdin, stdout, stderr *os.File) Option {
	return func(e *Environment) error {
		if stdin != nil {
			e.fds[0] = NewFileHandle(stdin, true, false)
		}
		if stdout != nil {
			e.fds[1] = NewFileHandle(stdout, false, true)
		}
		if stderr != nil {
			e.fds[2] = NewFileHandle(stderr, false, true)
		}
		return nil
	}
}

// New builds an Environment, seeding SHLVL/PWD/OLDPWD/IFS per spec.md
// §4.2's construction contract, then applying opts in order.
func New(opts ...Option) (*Environment, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	e := &Environment{
		vars:      map[string]expand.Variable{},
		name:      "posh",
		pid:       os.Getpid(),
		fds:       map[int]*FileHandle{},
		cwd:       cwd,
		functions: map[string]ast.Command{},
	}
	e.fds[0] = NewFileHandle(os.Stdin, true, false)
	e.fds[1] = NewFileHandle(os.Stdout, false, true)
	e.fds[2] = NewFileHandle(os.Stderr, false, true)
	e.launcher = DefaultProcessLauncher()

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	shlvl := 1
	if vr := e.vars["SHLVL"]; vr.IsSet() {
		if n, err := strconv.Atoi(vr.String()); err == nil {
			shlvl = n + 1
		}
	}
	e.vars["SHLVL"] = expand.Variable{Set: true, Exported: true, Kind: expand.String, Str: strconv.Itoa(shlvl)}

	e.vars["PWD"] = expand.Variable{Set: true, Exported: true, Kind: expand.String, Str: e.cwd}
	e.vars["OLDPWD"] = expand.Variable{Set: true, Exported: true, Kind: expand.String, Str: e.cwd}
	if !e.vars["IFS"].IsSet() {
		e.vars["IFS"] = expand.Variable{Set: true, Kind: expand.String, Str: " \t\n"}
	}
	return e, nil
}

// --- expand.Environ ---

func (e *Environment) Get(name string) expand.Variable { return e.Var(name) }

func (e *Environment) Set(name string, vr expand.Variable) error { return e.SetVar(name, vr) }

func (e *Environment) Each(fn func(name string, vr expand.Variable) bool) {
	for name, vr := range e.vars {
		if !fn(name, vr) {
			return
		}
	}
}

// --- args ---

// Arg returns the i-th positional parameter (1-indexed), or "" if out of
// range.
func (e *Environment) Arg(i int) string {
	if i < 1 || i > len(e.args) {
		return ""
	}
	return e.args[i-1]
}

// Args returns the current positional parameter list.
func (e *Environment) Args() []string { return e.args }

// ArgsLen is $#.
func (e *Environment) ArgsLen() int { return len(e.args) }

// Name is $0.
func (e *Environment) Name() string { return e.name }

// SetArgs replaces the positional parameter list, e.g. for a function call
// or `set --`.
func (e *Environment) SetArgs(args []string) { e.args = args }

// ShiftArgs removes n positional parameters from the front, saturating at
// the list's length rather than erroring.
func (e *Environment) ShiftArgs(n int) {
	if n > len(e.args) {
		n = len(e.args)
	}
	if n < 0 {
		n = 0
	}
	e.args = e.args[n:]
}

// --- variables ---

// Var looks up a variable by name. Use Variable.IsSet to tell a
// set-but-empty variable apart from an unset one.
func (e *Environment) Var(name string) expand.Variable { return e.vars[name] }

// SetVar assigns (or unsets, if !vr.IsSet()) a variable. A read-only
// variable rejects the write.
func (e *Environment) SetVar(name string, vr expand.Variable) error {
	if cur := e.vars[name]; cur.ReadOnly {
		return fmt.Errorf("%s: readonly variable", name)
	}
	if !vr.IsSet() {
		delete(e.vars, name)
		return nil
	}
	e.vars[name] = vr
	return nil
}

// UnsetVar removes a variable entirely.
func (e *Environment) UnsetVar(name string) error {
	if cur := e.vars[name]; cur.ReadOnly {
		return fmt.Errorf("%s: readonly variable", name)
	}
	delete(e.vars, name)
	return nil
}

// ExportedVar returns the variable only if it is set and exported; the
// zero Variable (unset) otherwise.
func (e *Environment) ExportedVar(name string) expand.Variable {
	vr := e.vars[name]
	if vr.IsSet() && vr.Exported {
		return vr
	}
	return expand.Variable{}
}

// SetExportedVar sets a plain string variable and marks it exported, the
// shape `export NAME=value` needs.
func (e *Environment) SetExportedVar(name, value string) error {
	return e.SetVar(name, expand.Variable{Set: true, Exported: true, Kind: expand.String, Str: value})
}

// EnvVars returns "name=value" pairs for every exported variable, the
// shape a ProcessLauncher needs for ExecutableData.EnvVars (grounded on
// the teacher's execEnv, interp/vars.go).
func (e *Environment) EnvVars() []string {
	list := make([]string, 0, len(e.vars))
	for name, vr := range e.vars {
		if vr.Exported {
			list = append(list, name+"="+vr.String())
		}
	}
	return list
}

// --- exit status ---

func (e *Environment) LastStatus() ExitStatus { return e.lastStatus }

func (e *Environment) SetLastStatus(s ExitStatus) { e.lastStatus = s }

// --- file descriptors ---

// FileDesc returns the handle installed at fd, or a *BadFileDescriptorError
// if none is installed.
func (e *Environment) FileDesc(fd int) (*FileHandle, error) {
	h, ok := e.fds[fd]
	if !ok {
		return nil, &BadFileDescriptorError{Fd: fd}
	}
	return h, nil
}

// SetFileDesc installs h at fd, releasing whatever was previously there.
func (e *Environment) SetFileDesc(fd int, h *FileHandle) {
	if old, ok := e.fds[fd]; ok {
		_ = old.Release()
	}
	e.fds[fd] = h
}

// CloseFileDesc releases the handle at fd and removes the entry.
func (e *Environment) CloseFileDesc(fd int) error {
	h, ok := e.fds[fd]
	if !ok {
		return &BadFileDescriptorError{Fd: fd}
	}
	delete(e.fds, fd)
	return h.Release()
}

// OpenPath opens path with the given flags/permission bits, returning a
// fresh, singly-referenced handle. flag is an os.O_* bitmask; the redirect
// evaluator (interp/redirect.go) computes it from the ast.RedirectOp.
func (e *Environment) OpenPath(path string, flag int, perm fs.FileMode) (*FileHandle, error) {
	f, err := os.OpenFile(e.PathRelativeToWorkingDir(path), flag, perm)
	if err != nil {
		return nil, err
	}
	readable := flag&(os.O_WRONLY|os.O_RDWR) != os.O_WRONLY
	writable := flag&(os.O_WRONLY|os.O_RDWR) != 0
	return NewFileHandle(f, readable, writable), nil
}

// OpenPipe creates an OS pipe, returning its read and write ends as
// singly-referenced handles (spec.md §4.7's pipeline step 1).
func (e *Environment) OpenPipe() (r, w *FileHandle, err error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, nil, err
	}
	return NewFileHandle(pr, true, false), NewFileHandle(pw, false, true), nil
}

// ReadAll reads fd to EOF.
func (e *Environment) ReadAll(fd int) ([]byte, error) {
	h, err := e.FileDesc(fd)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(h.file)
}

// WriteAll writes data to fd in full, returning any write error.
func (e *Environment) WriteAll(fd int, data []byte) error {
	h, err := e.FileDesc(fd)
	if err != nil {
		return err
	}
	_, err = h.file.Write(data)
	return err
}

// WriteAllBestEffort writes data to fd, discarding any error (used by
// ReportError, which must never itself fail the shell).
func (e *Environment) WriteAllBestEffort(fd int, data []byte) {
	h, err := e.FileDesc(fd)
	if err != nil {
		return
	}
	_, _ = h.file.Write(data)
}

// --- working directory ---

// Cwd returns the current working directory.
func (e *Environment) Cwd() string { return e.cwd }

// ChangeWorkingDir moves to path, updating OLDPWD/PWD. physical selects
// the `-P` form (resolve symlinks, collapse ".."/"." against the real
// filesystem); the default (`-L`, logical) keeps path textually joined
// onto the existing PWD, matching spec.md §9's recorded decision to
// reproduce the source's -L/-P handling verbatim.
func (e *Environment) ChangeWorkingDir(path string, physical bool) error {
	var next string
	if filepath.IsAbs(path) {
		next = path
	} else {
		next = filepath.Join(e.cwd, path)
	}
	if physical {
		resolved, err := filepath.EvalSymlinks(next)
		if err != nil {
			return err
		}
		next = resolved
	} else {
		next = filepath.Clean(next)
	}
	info, err := os.Stat(next)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", next)
	}
	oldpwd := e.cwd
	e.cwd = next
	e.vars["OLDPWD"] = expand.Variable{Set: true, Exported: true, Kind: expand.String, Str: oldpwd}
	e.vars["PWD"] = expand.Variable{Set: true, Exported: true, Kind: expand.String, Str: next}
	return nil
}

// PathRelativeToWorkingDir resolves path against the current working
// directory if it is not already absolute.
func (e *Environment) PathRelativeToWorkingDir(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.cwd, path)
}

// --- functions ---

// Function looks up a declared function body by name.
func (e *Environment) Function(name string) (ast.Command, bool) {
	body, ok := e.functions[name]
	return body, ok
}

// SetFunction declares (or redefines) a function.
func (e *Environment) SetFunction(name string, body ast.Command) {
	e.functions[name] = body
}

// UnsetFunction removes a declared function.
func (e *Environment) UnsetFunction(name string) { delete(e.functions, name) }

// HasFunction reports whether name is a declared function.
func (e *Environment) HasFunction(name string) bool {
	_, ok := e.functions[name]
	return ok
}

// --- function call frames ---

// PushFnFrame records entry into a function body.
func (e *Environment) PushFnFrame() { e.fnFrameDepth++ }

// PopFnFrame records exit from a function body, saturating at zero so an
// unbalanced pop can never underflow (spec.md §4.2).
func (e *Environment) PopFnFrame() {
	if e.fnFrameDepth > 0 {
		e.fnFrameDepth--
	}
}

// IsFnRunning reports whether any function body is currently executing.
func (e *Environment) IsFnRunning() bool { return e.fnFrameDepth > 0 }

// --- process spawn ---

// SpawnExecutable runs data via the configured ProcessLauncher.
func (e *Environment) SpawnExecutable(ctx context.Context, data ExecutableData) (ExitStatus, error) {
	return e.launcher(ctx, data)
}

// --- error reporting ---

// ReportError writes "<name>: <msg>\n" to the current stderr handle
// (fd 2) if it is writable, and silently drops the message otherwise
// (spec.md §4.2).
func (e *Environment) ReportError(msg string) {
	h, ok := e.fds[2]
	if !ok || !h.writable {
		return
	}
	_, _ = h.file.WriteString(e.name + ": " + msg + "\n")
}

// --- sub-environment ---

// SubEnv returns a child Environment with copy-on-write variables and
// functions, fresh file-descriptor references (duplicating, not sharing,
// each fd slot so the child's closes don't remove the parent's), a fresh
// function-frame counter, and the same backing args slice (spec.md §4.2,
// §5: "each stage takes a sub_env() copy... the function table is
// copy-on-write").
func (e *Environment) SubEnv() *Environment {
	child := &Environment{
		vars:       maps.Clone(e.vars),
		args:       e.args,
		name:       e.name,
		pid:        e.pid,
		lastStatus: e.lastStatus,
		fds:        make(map[int]*FileHandle, len(e.fds)),
		cwd:        e.cwd,
		functions:  maps.Clone(e.functions),
		launcher:   e.launcher,
	}
	for fd, h := range e.fds {
		child.fds[fd] = h.Dup()
	}
	return child
}
