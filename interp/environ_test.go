// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp_test

import (
	"os"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/nsheridan/posh/expand"
	"github.com/nsheridan/posh/interp"
)

func TestNewSeedsShlvlPwdOldpwdIfs(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	env, err := interp.New(interp.WithDir(dir))
	c.Assert(err, qt.IsNil)

	c.Assert(env.Var("SHLVL").Str, qt.Equals, "1")
	c.Assert(env.Var("SHLVL").Exported, qt.IsTrue)
	c.Assert(env.Var("PWD").Str, qt.Equals, dir)
	c.Assert(env.Var("PWD").Exported, qt.IsTrue)
	c.Assert(env.Var("OLDPWD").Str, qt.Equals, dir)
	c.Assert(env.Var("IFS").Str, qt.Equals, " \t\n")
	c.Assert(env.Var("IFS").Exported, qt.IsFalse)
}

func TestNewOverwritesStalePwdFromInheritedEnv(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	env, err := interp.New(interp.WithDir(dir), interp.WithEnvPairs([]string{"PWD=/stale", "OLDPWD=/also-stale"}))
	c.Assert(err, qt.IsNil)
	c.Assert(env.Var("PWD").Str, qt.Equals, dir)
	c.Assert(env.Var("OLDPWD").Str, qt.Equals, dir)
}

func TestNewIncrementsExistingShlvl(t *testing.T) {
	c := qt.New(t)
	env, err := interp.New(interp.WithDir(t.TempDir()), interp.WithEnvPairs([]string{"SHLVL=2"}))
	c.Assert(err, qt.IsNil)
	c.Assert(env.Var("SHLVL").Str, qt.Equals, "3")
}

func TestNewDefaultsShlvlOnUnparseableExisting(t *testing.T) {
	c := qt.New(t)
	env, err := interp.New(interp.WithDir(t.TempDir()), interp.WithEnvPairs([]string{"SHLVL=nope"}))
	c.Assert(err, qt.IsNil)
	c.Assert(env.Var("SHLVL").Str, qt.Equals, "1")
}

func TestSetVarRejectsReadOnly(t *testing.T) {
	c := qt.New(t)
	env, err := interp.New(interp.WithDir(t.TempDir()))
	c.Assert(err, qt.IsNil)
	c.Assert(env.SetVar("X", expand.Variable{Set: true, ReadOnly: true, Kind: expand.String, Str: "1"}), qt.IsNil)
	c.Assert(env.SetVar("X", expand.Variable{Set: true, Kind: expand.String, Str: "2"}), qt.ErrorMatches, ".*readonly.*")
}

func TestShiftArgsSaturates(t *testing.T) {
	c := qt.New(t)
	env, err := interp.New(interp.WithDir(t.TempDir()), interp.WithArgs("posh", []string{"a", "b"}))
	c.Assert(err, qt.IsNil)
	env.ShiftArgs(10)
	c.Assert(env.ArgsLen(), qt.Equals, 0)
}

func TestSubEnvCopyOnWrite(t *testing.T) {
	c := qt.New(t)
	env, err := interp.New(interp.WithDir(t.TempDir()))
	c.Assert(err, qt.IsNil)
	c.Assert(env.SetVar("X", expand.Variable{Set: true, Kind: expand.String, Str: "parent"}), qt.IsNil)

	child := env.SubEnv()
	c.Assert(child.SetVar("X", expand.Variable{Set: true, Kind: expand.String, Str: "child"}), qt.IsNil)

	c.Assert(env.Var("X").Str, qt.Equals, "parent")
	c.Assert(child.Var("X").Str, qt.Equals, "child")
}

func TestSubEnvFunctionsAreCopyOnWrite(t *testing.T) {
	c := qt.New(t)
	env, err := interp.New(interp.WithDir(t.TempDir()))
	c.Assert(err, qt.IsNil)
	env.SetFunction("f", nil)

	child := env.SubEnv()
	child.UnsetFunction("f")

	c.Assert(env.HasFunction("f"), qt.IsTrue)
	c.Assert(child.HasFunction("f"), qt.IsFalse)
}

func TestFnFrameDepthSaturatesAtZero(t *testing.T) {
	c := qt.New(t)
	env, err := interp.New(interp.WithDir(t.TempDir()))
	c.Assert(err, qt.IsNil)
	c.Assert(env.IsFnRunning(), qt.IsFalse)
	env.PopFnFrame() // must not underflow
	c.Assert(env.IsFnRunning(), qt.IsFalse)
	env.PushFnFrame()
	c.Assert(env.IsFnRunning(), qt.IsTrue)
	env.PopFnFrame()
	c.Assert(env.IsFnRunning(), qt.IsFalse)
}

func TestChangeWorkingDirUpdatesPwdOldpwd(t *testing.T) {
	c := qt.New(t)
	base := t.TempDir()
	env, err := interp.New(interp.WithDir(base))
	c.Assert(err, qt.IsNil)

	sub := base + "/sub"
	c.Assert(os.Mkdir(sub, 0o755), qt.IsNil)

	c.Assert(env.ChangeWorkingDir("sub", false), qt.IsNil)
	c.Assert(env.Cwd(), qt.Equals, sub)
	c.Assert(env.Var("OLDPWD").Str, qt.Equals, base)
	c.Assert(env.Var("PWD").Str, qt.Equals, sub)
}
