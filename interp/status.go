// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package interp implements the Environment, Restorer, redirect evaluator,
// and command spawner that together run the ast package's command tree,
// per spec.md §4.2-§4.7.
package interp

// ExitStatus is the outcome of running a command: either a plain exit
// code, or the number of the signal that killed it ($? shows the latter
// as 128+signum, per spec.md §3).
// It satisfies expand.ExitStatus so the expand package can read $? without
// importing this package.
type ExitStatus struct {
	code     int
	isSignal bool
}

// EXIT_SUCCESS and EXIT_ERROR are the two constants spec.md §4.7 names.
var (
	ExitSuccess = ExitStatus{code: 0}
	ExitError   = ExitStatus{code: 1}
)

// Code builds a plain exit status.
func Code(n int) ExitStatus { return ExitStatus{code: n} }

// Signal builds an exit status for a command killed by a signal. It stores
// the raw signal number; the 128+signum form POSIX uses for $? is added by
// expand.LookupParameter when it sees IsSignal.
func Signal(signum int) ExitStatus { return ExitStatus{code: signum, isSignal: true} }

// Code returns the raw status code: the process's exit code, or the
// signal number if IsSignal is true (the caller adds 128 itself when it
// wants the $?-visible form; expand.LookupParameter does this for
// ast.Question).
func (e ExitStatus) Code() int { return e.code }

// IsSignal reports whether this status represents a signal death.
func (e ExitStatus) IsSignal() bool { return e.isSignal }

// Success reports whether the command completed with exit code 0 and no
// signal.
func (e ExitStatus) Success() bool { return !e.isSignal && e.code == 0 }
