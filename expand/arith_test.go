// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/nsheridan/posh/ast"
)

func TestEvalArithNil(t *testing.T) {
	c := qt.New(t)
	ctx := newContext(newMapEnviron())
	n, err := ctx.EvalArith(nil)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, int64(0))
}

func TestEvalArithLiteralAndBinOp(t *testing.T) {
	c := qt.New(t)
	ctx := newContext(newMapEnviron())
	expr := &ast.ArithBinOp{
		Op: ast.Add,
		X:  &ast.ArithLit{Value: 3},
		Y:  &ast.ArithLit{Value: 4},
	}
	n, err := ctx.EvalArith(expr)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, int64(7))
}

func TestEvalArithDivideByZero(t *testing.T) {
	c := qt.New(t)
	ctx := newContext(newMapEnviron())
	expr := &ast.ArithBinOp{Op: ast.Quo, X: &ast.ArithLit{Value: 1}, Y: &ast.ArithLit{Value: 0}}
	_, err := ctx.EvalArith(expr)
	c.Assert(err, qt.ErrorMatches, "division by zero")
}

func TestEvalArithNegativeExponent(t *testing.T) {
	c := qt.New(t)
	ctx := newContext(newMapEnviron())
	expr := &ast.ArithBinOp{Op: ast.Pow, X: &ast.ArithLit{Value: 2}, Y: &ast.ArithLit{Value: -1}}
	_, err := ctx.EvalArith(expr)
	c.Assert(err, qt.ErrorMatches, "exponent less than 0")
}

func TestEvalArithVarReadUnparseable(t *testing.T) {
	c := qt.New(t)
	ctx := newContext(newMapEnviron("x", "not-a-number"))
	n, err := ctx.EvalArith(&ast.ArithVar{Name: "x"})
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, int64(0))
}

func TestEvalArithIncDec(t *testing.T) {
	c := qt.New(t)
	env := newMapEnviron("x", "5")
	ctx := newContext(env)

	old, err := ctx.EvalArith(&ast.ArithUnOp{Op: ast.Inc, X: &ast.ArithVar{Name: "x"}, Post: true})
	c.Assert(err, qt.IsNil)
	c.Assert(old, qt.Equals, int64(5))
	c.Assert(env.Get("x").Str, qt.Equals, "6")

	next, err := ctx.EvalArith(&ast.ArithUnOp{Op: ast.Inc, X: &ast.ArithVar{Name: "x"}, Post: false})
	c.Assert(err, qt.IsNil)
	c.Assert(next, qt.Equals, int64(7))
}

func TestEvalArithTernaryAndAssign(t *testing.T) {
	c := qt.New(t)
	env := newMapEnviron()
	ctx := newContext(env)

	expr := &ast.ArithTernary{
		Cond: &ast.ArithLit{Value: 1},
		Then: &ast.ArithAssign{Name: "y", Value: &ast.ArithLit{Value: 9}},
		Else: &ast.ArithLit{Value: 0},
	}
	n, err := ctx.EvalArith(expr)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, int64(9))
	c.Assert(env.Get("y").Str, qt.Equals, "9")
}

func TestEvalArithLogicalShortCircuit(t *testing.T) {
	c := qt.New(t)
	ctx := newContext(newMapEnviron())
	expr := &ast.ArithBinOp{
		Op: ast.OrArith,
		X:  &ast.ArithLit{Value: 1},
		Y:  &ast.ArithBinOp{Op: ast.Quo, X: &ast.ArithLit{Value: 1}, Y: &ast.ArithLit{Value: 0}},
	}
	n, err := ctx.EvalArith(expr)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, int64(1))
}
