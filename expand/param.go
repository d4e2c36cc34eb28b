// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/nsheridan/posh/ast"
	"github.com/nsheridan/posh/pattern"
)

// LookupParameter evaluates a Parameter to its Fields value, per spec.md
// §4.5. The bool result reports presence: false means the parameter is
// unset (Positional(n>0) out of range, an unset Var, or the always-unset
// Dash/Bang). Every other variant always reports present, possibly with a
// Zero value. If split is true, §4.4 field splitting is applied to the
// result before it's returned.
func (c *Context) LookupParameter(ctx context.Context, p ast.Parameter, split bool) (Fields, bool) {
	fields, present := c.lookupParameterRaw(p)
	if !present {
		return Fields{}, false
	}
	if split {
		fields = c.splitFields(fields)
	}
	return fields, true
}

func (c *Context) lookupParameterRaw(p ast.Parameter) (Fields, bool) {
	switch x := p.(type) {
	case ast.At:
		if len(c.Args) == 0 {
			return Z(), true
		}
		return AtFields(append([]string(nil), c.Args...)), true
	case ast.Star:
		if len(c.Args) == 0 {
			return Z(), true
		}
		return StarFields(append([]string(nil), c.Args...)), true
	case ast.Pound:
		return SingleField(strconv.Itoa(len(c.Args))), true
	case ast.Dollar:
		return SingleField(strconv.Itoa(c.Pid)), true
	case ast.Question:
		code := 0
		if c.LastStatus != nil {
			code = c.LastStatus.Code()
			if c.LastStatus.IsSignal() {
				code += 128
			}
		}
		return SingleField(strconv.Itoa(code)), true
	case ast.Dash, ast.Bang:
		return Fields{}, false
	case ast.Positional:
		if x.Index == 0 {
			return SingleField(c.Name), true
		}
		idx := int(x.Index) - 1
		if idx < 0 || idx >= len(c.Args) {
			return Fields{}, false
		}
		return SingleField(c.Args[idx]), true
	case ast.Var:
		vr := c.Env.Get(x.Name)
		if !vr.IsSet() {
			return Fields{}, false
		}
		_, resolved := vr.Resolve(c.Env)
		switch resolved.Kind {
		case Indexed:
			return FromStrings(append([]string(nil), resolved.List...)), true
		case Associative:
			vals := make([]string, 0, len(resolved.Map))
			for _, v := range resolved.Map {
				vals = append(vals, v)
			}
			return FromStrings(vals), true
		default:
			return SingleField(resolved.String()), true
		}
	default:
		return Fields{}, false
	}
}

// parameterIsNull reports whether a present parameter's value counts as
// "null" for the ":"-strict substitution forms: a Zero Fields value, or one
// whose fields are all empty strings.
func parameterIsNull(fields Fields, present bool) bool {
	if !present {
		return true
	}
	return fields.Kind() == Zero || fields.IsNull()
}

// parameterPresent implements spec.md §4.5's "present"/"absent" rule used
// by every modifier substitution form: "present" if Some and (not strict,
// or not is_null); "absent" otherwise.
func (c *Context) parameterPresent(p ast.Parameter, strict bool) (Fields, bool) {
	fields, present := c.lookupParameterRaw(p)
	if !present {
		return Fields{}, false
	}
	if strict && parameterIsNull(fields, present) {
		return fields, false
	}
	return fields, true
}

// EvalSubstitution evaluates one of the eight ParameterSubstitution forms,
// per spec.md §4.5. If split is true, §4.4 field splitting is applied to
// the final result (substitution forms never split internally; "field
// splitting of the overall substitution result is applied by the caller
// only if split_fields_further=true").
func (c *Context) EvalSubstitution(ctx context.Context, sub ast.ParameterSubstitution, split bool) (Fields, error) {
	fields, err := c.evalSubstitutionRaw(ctx, sub)
	if err != nil {
		return Fields{}, err
	}
	if split {
		fields = c.splitFields(fields)
	}
	return fields, nil
}

func (c *Context) evalSubstitutionRaw(ctx context.Context, sub ast.ParameterSubstitution) (Fields, error) {
	switch x := sub.(type) {
	case *ast.CommandSubst:
		return c.evalCommandSubst(ctx, x)
	case *ast.Len:
		fields, present := c.lookupParameterRaw(x.Parameter)
		if !present {
			return SingleField("0"), nil
		}
		return SingleField(strconv.Itoa(fields.Len())), nil
	case *ast.Arith:
		n, err := c.EvalArith(x.Expr)
		if err != nil {
			return Fields{}, err
		}
		return SingleField(strconv.FormatInt(n, 10)), nil
	case *ast.Modifier:
		return c.evalModifier(ctx, x)
	default:
		return Fields{}, &UnknownWordPartError{Part: sub}
	}
}

// evalCommandSubst runs a subshell with stdout captured into a buffer, per
// spec.md §4.5: "evaluate body commands in a subshell whose STDOUT is a
// pipe; asynchronously read-to-end; trim trailing \n; result is
// Single(captured)."
func (c *Context) evalCommandSubst(ctx context.Context, x *ast.CommandSubst) (Fields, error) {
	if c.Subshell == nil {
		return Fields{}, fmt.Errorf("command substitution is not supported in this context")
	}
	var buf bytes.Buffer
	if err := c.Subshell(ctx, &buf, x.Body); err != nil {
		return Fields{}, err
	}
	out := buf.Bytes()
	for len(out) > 0 && out[len(out)-1] == '\n' {
		out = out[:len(out)-1]
	}
	if !utf8.Valid(out) {
		return Fields{}, fmt.Errorf("command substitution output is not valid UTF-8")
	}
	return SingleField(string(out)), nil
}

func (c *Context) evalModifierWord(ctx context.Context, w *ast.Word) (Fields, error) {
	if w == nil {
		return Z(), nil
	}
	return c.EvalWord(ctx, w, WordEvalConfig{Tilde: TildeNone, Split: false})
}

// evalModifier evaluates the six Default/Assign/Error/Alternative/Remove*
// forms. Assign and Error return a BadAssignmentError/EmptyParameterError
// on failure; setting $? to reflect that failure is the calling
// interpreter's job once it observes the error, not this function's.
func (c *Context) evalModifier(ctx context.Context, x *ast.Modifier) (Fields, error) {
	switch x.Op {
	case ast.Default:
		fields, present := c.parameterPresent(x.Parameter, x.Strict)
		if present {
			return fields, nil
		}
		return c.evalModifierWord(ctx, x.Word)

	case ast.Assign:
		fields, present := c.parameterPresent(x.Parameter, x.Strict)
		if present {
			return fields, nil
		}
		name, ok := x.Parameter.(ast.Var)
		if !ok {
			return Fields{}, &BadAssignmentError{Parameter: x.Parameter}
		}
		result, err := c.evalModifierWord(ctx, x.Word)
		if err != nil {
			return Fields{}, err
		}
		if err := c.Env.Set(name.Name, Variable{Set: true, Kind: String, Str: result.Join(c.ifsJoiner())}); err != nil {
			return Fields{}, err
		}
		return result, nil

	case ast.Error:
		fields, present := c.parameterPresent(x.Parameter, x.Strict)
		if present {
			return fields, nil
		}
		msgFields, err := c.evalModifierWord(ctx, x.Word)
		if err != nil {
			return Fields{}, err
		}
		msg := msgFields.Join(" ")
		if msg == "" {
			msg = "parameter null or not set"
		}
		return Fields{}, &EmptyParameterError{Parameter: x.Parameter, Message: msg}

	case ast.Alternative:
		_, present := c.parameterPresent(x.Parameter, x.Strict)
		if !present {
			return Z(), nil
		}
		return c.evalModifierWord(ctx, x.Word)

	case ast.RemoveSmallestSuffix, ast.RemoveLargestSuffix,
		ast.RemoveSmallestPrefix, ast.RemoveLargestPrefix:
		return c.evalPatternTrim(ctx, x)

	default:
		return Fields{}, &UnknownWordPartError{Part: x}
	}
}

// evalPatternTrim implements the four Remove{Smallest,Largest}{Prefix,Suffix}
// forms, applied element-wise to every field of the parameter per spec.md
// §9's recorded Open Question decision.
func (c *Context) evalPatternTrim(ctx context.Context, x *ast.Modifier) (Fields, error) {
	fields, present := c.lookupParameterRaw(x.Parameter)
	if !present {
		return Z(), nil
	}
	if x.Word == nil {
		return fields, nil
	}
	patFields, err := c.evalModifierWord(ctx, x.Word)
	if err != nil {
		return Fields{}, err
	}
	pat := patFields.Join(" ")
	if pat == "" {
		return fields, nil
	}

	suffix := x.Op == ast.RemoveSmallestSuffix || x.Op == ast.RemoveLargestSuffix
	shortest := x.Op == ast.RemoveSmallestSuffix || x.Op == ast.RemoveSmallestPrefix

	trimOne, err := trimFunc(pat, suffix, shortest)
	if err != nil {
		return Fields{}, err
	}

	switch fields.Kind() {
	case SingleKind:
		return SingleField(trimOne(fields.Slice()[0])), nil
	case AtKind:
		return AtFields(trimAll(fields.Slice(), trimOne)), nil
	case StarKind:
		return StarFields(trimAll(fields.Slice(), trimOne)), nil
	case SplitKind:
		return SplitFields(trimAll(fields.Slice(), trimOne)), nil
	default:
		return fields, nil
	}
}

func trimAll(vs []string, trimOne func(string) string) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = trimOne(v)
	}
	return out
}

// trimFunc builds a closure that removes the shortest or longest match of
// pat from the start (prefix) or end (suffix) of its argument, grounded on
// the teacher's removePattern (expand/param.go): the pattern is translated
// to a regexp with the "*"/"?" quantifiers made non-greedy for the shortest
// forms, wrapped in a capture group anchored to the appropriate end; for
// the shortest-suffix form a leading greedy ".*" is prepended so the match
// starts as far right as possible before the non-greedy group takes over.
func trimFunc(pat string, suffix, shortest bool) (func(string) string, error) {
	inner, err := pattern.Translate(pat, pattern.Options{Shortest: shortest})
	if err != nil {
		return nil, err
	}

	var expr string
	switch {
	case suffix && shortest:
		expr = ".*(" + inner + ")$"
	case suffix:
		expr = "(" + inner + ")$"
	default: // prefix
		expr = "^(" + inner + ")"
	}

	rx, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return func(s string) string {
		loc := rx.FindStringSubmatchIndex(s)
		if loc == nil {
			return s
		}
		return s[:loc[2]] + s[loc[3]:]
	}, nil
}
