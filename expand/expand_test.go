// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand_test

import (
	"github.com/nsheridan/posh/expand"
)

// mapEnviron is a minimal mutable expand.Environ used across this
// package's tests, in the spirit of the teacher's own small in-memory
// Environ test doubles (interp/interp_test.go's mapEnviron-like helpers).
type mapEnviron map[string]expand.Variable

func newMapEnviron(pairs ...string) mapEnviron {
	m := mapEnviron{}
	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i]] = expand.Variable{Set: true, Kind: expand.String, Str: pairs[i+1]}
	}
	return m
}

func (m mapEnviron) Get(name string) expand.Variable {
	if vr, ok := m[name]; ok {
		return vr
	}
	return expand.Variable{}
}

func (m mapEnviron) Set(name string, vr expand.Variable) error {
	m[name] = vr
	return nil
}

func (m mapEnviron) Each(fn func(name string, vr expand.Variable) bool) {
	for name, vr := range m {
		if !fn(name, vr) {
			return
		}
	}
}

type fakeStatus struct {
	code     int
	isSignal bool
}

func (f fakeStatus) Code() int      { return f.code }
func (f fakeStatus) IsSignal() bool { return f.isSignal }

func newContext(env mapEnviron, args ...string) *expand.Context {
	return &expand.Context{
		Env:        env,
		Args:       args,
		Name:       "posh",
		Pid:        4242,
		LastStatus: fakeStatus{},
	}
}
