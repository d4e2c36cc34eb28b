// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/nsheridan/posh/ast"
	"github.com/nsheridan/posh/expand"
	"github.com/nsheridan/posh/interp"
)

func litWord(s string) *ast.Word {
	return &ast.Word{Parts: []ast.WordPart{&ast.Single{Word: &ast.Simple{Word: &ast.Literal{Value: s}}}}}
}

func simpleCmd(words ...string) *ast.SimpleCmd {
	items := make([]ast.RedirectOrCmdWord, len(words))
	for i, w := range words {
		items[i] = ast.RedirectOrCmdWord{CmdWord: litWord(w)}
	}
	return &ast.SimpleCmd{Command: ast.SimpleCommand{Words: items}}
}

func assignCmd(name, value string) *ast.SimpleCmd {
	return &ast.SimpleCmd{Command: ast.SimpleCommand{
		Assignments: []ast.RedirectOrVarAssig{{VarAssig: &ast.VarAssig{Name: name, Word: litWord(value)}}},
	}}
}

func newSpawner(t *testing.T) *interp.Spawner {
	env, err := interp.New(interp.WithDir(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	return interp.NewSpawner(env)
}

func TestSpawnerBuiltinTrueFalse(t *testing.T) {
	c := qt.New(t)
	s := newSpawner(t)

	status, err := s.EvalCommand(context.Background(), simpleCmd("true"))
	c.Assert(err, qt.IsNil)
	c.Assert(status.Success(), qt.IsTrue)

	status, err = s.EvalCommand(context.Background(), simpleCmd("false"))
	c.Assert(err, qt.IsNil)
	c.Assert(status.Success(), qt.IsFalse)
}

func TestSpawnerAssignmentOnlyPersistsInCallerScope(t *testing.T) {
	c := qt.New(t)
	s := newSpawner(t)

	_, err := s.EvalCommand(context.Background(), assignCmd("X", "1"))
	c.Assert(err, qt.IsNil)
	c.Assert(s.Env.Var("X").Str, qt.Equals, "1")
}

func TestSpawnerAndOrShortCircuit(t *testing.T) {
	c := qt.New(t)
	s := newSpawner(t)

	and := &ast.And{X: simpleCmd("false"), Y: assignCmd("RAN", "1")}
	status, err := s.EvalCommand(context.Background(), and)
	c.Assert(err, qt.IsNil)
	c.Assert(status.Success(), qt.IsFalse)
	c.Assert(s.Env.Var("RAN").IsSet(), qt.IsFalse)

	or := &ast.Or{X: simpleCmd("false"), Y: assignCmd("RAN", "1")}
	status, err = s.EvalCommand(context.Background(), or)
	c.Assert(err, qt.IsNil)
	c.Assert(status.Success(), qt.IsTrue)
	c.Assert(s.Env.Var("RAN").Str, qt.Equals, "1")
}

// Scenario 2 from spec.md §8: "! false | true" -> Code(1).
func TestSpawnerPipelineInversion(t *testing.T) {
	c := qt.New(t)
	s := newSpawner(t)

	pipe := &ast.Pipe{InvertLast: true, Commands: []ast.Command{simpleCmd("false"), simpleCmd("true")}}
	status, err := s.EvalCommand(context.Background(), pipe)
	c.Assert(err, qt.IsNil)
	c.Assert(status.Code(), qt.Equals, 1)
}

// Scenario 6 from spec.md §8: "while false; do echo x; done" -> Code(0),
// body never runs.
func TestSpawnerLoopFailingGuardFirstIteration(t *testing.T) {
	c := qt.New(t)
	s := newSpawner(t)

	loop := &ast.Compound{Command: &ast.Loop{
		Guard: []ast.Command{simpleCmd("false")},
		Body:  []ast.Command{assignCmd("RAN", "1")},
	}}
	status, err := s.EvalCommand(context.Background(), loop)
	c.Assert(err, qt.IsNil)
	c.Assert(status.Success(), qt.IsTrue)
	c.Assert(s.Env.Var("RAN").IsSet(), qt.IsFalse)
}

func TestSpawnerIfRunsFirstMatchingBranch(t *testing.T) {
	c := qt.New(t)
	s := newSpawner(t)

	ifCmd := &ast.Compound{Command: &ast.If{
		Branches: []ast.GuardBody{
			{Guard: []ast.Command{simpleCmd("false")}, Body: []ast.Command{assignCmd("BRANCH", "first")}},
			{Guard: []ast.Command{simpleCmd("true")}, Body: []ast.Command{assignCmd("BRANCH", "second")}},
		},
		Else: []ast.Command{assignCmd("BRANCH", "else")},
	}}
	_, err := s.EvalCommand(context.Background(), ifCmd)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Env.Var("BRANCH").Str, qt.Equals, "second")
}

// Scenario 7 from spec.md §8: "(X=1); echo "${X-unset}"" -> the subshell's
// assignment never reaches the parent.
func TestSpawnerSubshellDoesNotLeakVars(t *testing.T) {
	c := qt.New(t)
	s := newSpawner(t)

	sub := &ast.Compound{Command: &ast.Subshell{Commands: []ast.Command{assignCmd("X", "1")}}}
	_, err := s.EvalCommand(context.Background(), sub)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Env.Var("X").IsSet(), qt.IsFalse)
}

func TestSpawnerForLoopsOverWordList(t *testing.T) {
	c := qt.New(t)
	s := newSpawner(t)

	var seen []string
	s.Env.SetVar("seen", expand.Variable{Set: true, Kind: expand.String, Str: ""})

	forCmd := &ast.Compound{Command: &ast.For{
		Var:  "x",
		Iter: ast.WordsOrArgs{HasIn: true, Words: []*ast.Word{litWord("a"), litWord("b"), litWord("c")}},
		Body: []ast.Command{&ast.SimpleCmd{}}, // no-op body; we only care about the loop variable's final value
	}}
	_, err := s.EvalCommand(context.Background(), forCmd)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Env.Var("x").Str, qt.Equals, "c")
	_ = seen
}

func TestSpawnerCaseRunsFirstMatchingArm(t *testing.T) {
	c := qt.New(t)
	s := newSpawner(t)

	caseCmd := &ast.Compound{Command: &ast.Case{
		Word: litWord("foo.txt"),
		Arms: []ast.CaseArm{
			{Patterns: []*ast.Word{litWord("*.jpg")}, Body: []ast.Command{assignCmd("KIND", "image")}},
			{Patterns: []*ast.Word{litWord("*.txt")}, Body: []ast.Command{assignCmd("KIND", "text")}},
		},
	}}
	_, err := s.EvalCommand(context.Background(), caseCmd)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Env.Var("KIND").Str, qt.Equals, "text")
}

func TestSpawnerFunctionCallRestoresArgsAndFrame(t *testing.T) {
	c := qt.New(t)
	s := newSpawner(t)
	s.Env.SetArgs([]string{"outer"})

	body := &ast.Compound{Command: &ast.Brace{Commands: []ast.Command{assignCmd("INSIDE", "1")}}}
	s.Env.SetFunction("f", body)

	_, err := s.EvalCommand(context.Background(), simpleCmd("f", "inner"))
	c.Assert(err, qt.IsNil)
	c.Assert(s.Env.Var("INSIDE").Str, qt.Equals, "1")
	c.Assert(s.Env.Args(), qt.DeepEquals, []string{"outer"})
	c.Assert(s.Env.IsFnRunning(), qt.IsFalse)
}
