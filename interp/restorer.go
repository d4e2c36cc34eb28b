// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import "github.com/nsheridan/posh/expand"

// Restorer borrows an Environment exclusively and records the prior value
// of every variable and file descriptor it touches, so the scope's
// effects can be undone in one call, per spec.md §4.3 and §9 ("implement
// as a struct that borrows the environment exclusively and owns two
// journals; on drop it replays both").
//
// A given name or fd is recorded exactly once per Restorer, the first
// time it is touched: re-assigning the same fd twice within one scope
// still restores to the value from *before* the scope began, not to the
// intermediate value (spec.md §8: "the Restorer scope for c leaves the
// environment byte-identical to its pre-scope state").
//
// Avoid holding more than one live Restorer on the same Environment at a
// time (spec.md §9).
type Restorer struct {
	env *Environment

	varSeen    map[string]bool
	varOrder   []string
	varPrior   map[string]expand.Variable

	fdSeen  map[int]bool
	fdOrder []int
	fdPrior map[int]fdSnapshot

	restored bool
}

type fdSnapshot struct {
	handle *FileHandle // nil if the fd was unset before this Restorer touched it
}

// NewRestorer opens a scope over env.
func NewRestorer(env *Environment) *Restorer {
	return &Restorer{
		env:      env,
		varSeen:  map[string]bool{},
		varPrior: map[string]expand.Variable{},
		fdSeen:   map[int]bool{},
		fdPrior:  map[int]fdSnapshot{},
	}
}

func (r *Restorer) recordVar(name string) {
	if r.varSeen[name] {
		return
	}
	r.varSeen[name] = true
	r.varOrder = append(r.varOrder, name)
	r.varPrior[name] = r.env.Var(name)
}

func (r *Restorer) recordFd(fd int) {
	if r.fdSeen[fd] {
		return
	}
	r.fdSeen[fd] = true
	r.fdOrder = append(r.fdOrder, fd)
	if h, err := r.env.FileDesc(fd); err == nil {
		r.fdPrior[fd] = fdSnapshot{handle: h.Dup()}
	} else {
		r.fdPrior[fd] = fdSnapshot{handle: nil}
	}
}

// SetVar assigns name through the Restorer, recording its pre-scope value
// on first touch.
func (r *Restorer) SetVar(name string, vr expand.Variable) error {
	r.recordVar(name)
	return r.env.SetVar(name, vr)
}

// SetFileDesc installs h at fd through the Restorer, recording fd's
// pre-scope handle (or absence) on first touch.
func (r *Restorer) SetFileDesc(fd int, h *FileHandle) {
	r.recordFd(fd)
	r.env.SetFileDesc(fd, h)
}

// CloseFileDesc closes fd through the Restorer, recording its pre-scope
// handle on first touch.
func (r *Restorer) CloseFileDesc(fd int) error {
	r.recordFd(fd)
	return r.env.CloseFileDesc(fd)
}

// RestoreVars replays the variable journal in reverse, returning every
// touched variable to its pre-scope value (or absence).
func (r *Restorer) RestoreVars() {
	for i := len(r.varOrder) - 1; i >= 0; i-- {
		name := r.varOrder[i]
		_ = r.env.SetVar(name, r.varPrior[name])
	}
}

// RestoreRedirects replays the fd journal in reverse, returning every
// touched fd to its pre-scope handle (or closing it if it was unset
// before the scope began).
func (r *Restorer) RestoreRedirects() {
	for i := len(r.fdOrder) - 1; i >= 0; i-- {
		fd := r.fdOrder[i]
		snap := r.fdPrior[fd]
		if snap.handle == nil {
			_ = r.env.CloseFileDesc(fd)
			continue
		}
		r.env.SetFileDesc(fd, snap.handle)
	}
}

// Restore undoes every variable and fd change this Restorer recorded.
// Idempotent: a second call is a no-op.
func (r *Restorer) Restore() {
	if r.restored {
		return
	}
	r.restored = true
	r.RestoreRedirects()
	r.RestoreVars()
}
