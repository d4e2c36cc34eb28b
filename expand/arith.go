// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"strconv"

	"github.com/nsheridan/posh/ast"
)

// EvalArith evaluates an arithmetic expression per spec.md §4.5: signed
// machine-width integers, strict left-to-right evaluation, C semantics for
// comparisons and logical/bitwise operators. A nil expression evaluates to
// 0 (spec.md §4.5's Arithmetic substitution: "None expression yields 0").
func (c *Context) EvalArith(expr ast.ArithExpr) (int64, error) {
	if expr == nil {
		return 0, nil
	}
	return c.evalArith(expr)
}

func (c *Context) evalArith(expr ast.ArithExpr) (int64, error) {
	switch x := expr.(type) {
	case *ast.ArithLit:
		return x.Value, nil
	case *ast.ArithVar:
		return c.arithVarRead(x.Name), nil
	case *ast.ArithUnOp:
		return c.evalArithUnOp(x)
	case *ast.ArithBinOp:
		return c.evalArithBinOp(x)
	case *ast.ArithTernary:
		cond, err := c.evalArith(x.Cond)
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return c.evalArith(x.Then)
		}
		return c.evalArith(x.Else)
	case *ast.ArithAssign:
		val, err := c.evalArith(x.Value)
		if err != nil {
			return 0, err
		}
		c.arithVarWrite(x.Name, val)
		return val, nil
	case *ast.ArithSeq:
		var last int64
		for _, e := range x.Exprs {
			v, err := c.evalArith(e)
			if err != nil {
				return 0, err
			}
			last = v
		}
		return last, nil
	default:
		return 0, &UnknownWordPartError{Part: expr}
	}
}

func (c *Context) arithVarRead(name string) int64 {
	vr := c.Env.Get(name)
	name, vr = vr.Resolve(c.Env)
	n, _ := strconv.ParseInt(vr.String(), 0, 64)
	return n
}

func (c *Context) arithVarWrite(name string, val int64) {
	if ref, vr := c.Env.Get(name).Resolve(c.Env); ref != "" {
		name = ref
		_ = vr
	}
	c.Env.Set(name, Variable{Set: true, Kind: String, Str: strconv.FormatInt(val, 10)})
}

func (c *Context) evalArithUnOp(x *ast.ArithUnOp) (int64, error) {
	switch x.Op {
	case ast.Inc, ast.Dec:
		v, ok := x.X.(*ast.ArithVar)
		if !ok {
			return 0, &UnknownWordPartError{Part: x}
		}
		old := c.arithVarRead(v.Name)
		delta := int64(1)
		if x.Op == ast.Dec {
			delta = -1
		}
		c.arithVarWrite(v.Name, old+delta)
		if x.Post {
			return old, nil
		}
		return old + delta, nil
	}
	v, err := c.evalArith(x.X)
	if err != nil {
		return 0, err
	}
	switch x.Op {
	case ast.Plus:
		return v, nil
	case ast.Minus:
		return -v, nil
	case ast.BitNot:
		return ^v, nil
	case ast.Not:
		if v == 0 {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, &UnknownWordPartError{Part: x}
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (c *Context) evalArithBinOp(x *ast.ArithBinOp) (int64, error) {
	// Short-circuit operators evaluate Y only when needed.
	switch x.Op {
	case ast.AndArith:
		lv, err := c.evalArith(x.X)
		if err != nil {
			return 0, err
		}
		if lv == 0 {
			return 0, nil
		}
		rv, err := c.evalArith(x.Y)
		if err != nil {
			return 0, err
		}
		return boolInt(rv != 0), nil
	case ast.OrArith:
		lv, err := c.evalArith(x.X)
		if err != nil {
			return 0, err
		}
		if lv != 0 {
			return 1, nil
		}
		rv, err := c.evalArith(x.Y)
		if err != nil {
			return 0, err
		}
		return boolInt(rv != 0), nil
	}

	lv, err := c.evalArith(x.X)
	if err != nil {
		return 0, err
	}
	rv, err := c.evalArith(x.Y)
	if err != nil {
		return 0, err
	}
	switch x.Op {
	case ast.Add:
		return lv + rv, nil
	case ast.Sub:
		return lv - rv, nil
	case ast.Mul:
		return lv * rv, nil
	case ast.Quo:
		if rv == 0 {
			return 0, &DivideByZeroError{}
		}
		return lv / rv, nil
	case ast.Rem:
		if rv == 0 {
			return 0, &DivideByZeroError{}
		}
		return lv % rv, nil
	case ast.Pow:
		if rv < 0 {
			return 0, &NegativeExponentError{}
		}
		var result int64 = 1
		for i := int64(0); i < rv; i++ {
			result *= lv
		}
		return result, nil
	case ast.Shl:
		return lv << uint(rv), nil
	case ast.Shr:
		return lv >> uint(rv), nil
	case ast.Lss:
		return boolInt(lv < rv), nil
	case ast.Leq:
		return boolInt(lv <= rv), nil
	case ast.Gtr:
		return boolInt(lv > rv), nil
	case ast.Geq:
		return boolInt(lv >= rv), nil
	case ast.Eql:
		return boolInt(lv == rv), nil
	case ast.Neq:
		return boolInt(lv != rv), nil
	case ast.And:
		return lv & rv, nil
	case ast.Xor:
		return lv ^ rv, nil
	case ast.Or:
		return lv | rv, nil
	default:
		return 0, &UnknownWordPartError{Part: x}
	}
}
