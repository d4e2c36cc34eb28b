// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"context"
	"strings"

	"github.com/nsheridan/posh/ast"
)

// EvalWord evaluates a single word to a Fields value, per spec.md §4.4.
func (c *Context) EvalWord(ctx context.Context, w *ast.Word, cfg WordEvalConfig) (Fields, error) {
	if w == nil || len(w.Parts) == 0 {
		return Z(), nil
	}
	var result Fields
	first := true
	for _, part := range w.Parts {
		fields, err := c.evalWordPart(ctx, part, cfg, first)
		if err != nil {
			return Fields{}, err
		}
		result = concatFields(result, fields)
		first = false
	}
	return result, nil
}

// evalWordPart evaluates one top-level WordPart: either Single (passthrough)
// or Concat (concatenated SimpleWordHolders, spec.md §4.4's ComplexWord).
func (c *Context) evalWordPart(ctx context.Context, p ast.WordPart, cfg WordEvalConfig, atWordStart bool) (Fields, error) {
	switch x := p.(type) {
	case *ast.Single:
		return c.evalSimpleWordHolder(ctx, x.Word, cfg, atWordStart)
	case *ast.Concat:
		var result Fields
		for i, part := range x.Parts {
			// Only the very first part of a Concat sees the caller's
			// tilde config; later parts never expand a tilde.
			// TODO: tilde after a bare Colon part (PATH-like values,
			// e.g. "~:~foo") is not expanded here either way.
			partCfg := cfg
			if i > 0 || !atWordStart {
				partCfg.Tilde = TildeNone
			}
			fields, err := c.evalSimpleWordHolder(ctx, part, partCfg, i == 0 && atWordStart)
			if err != nil {
				return Fields{}, err
			}
			result = concatFields(result, fields)
		}
		return result, nil
	default:
		return Fields{}, &UnknownWordPartError{Part: p}
	}
}

func (c *Context) evalSimpleWordHolder(ctx context.Context, h ast.SimpleWordHolder, cfg WordEvalConfig, atWordStart bool) (Fields, error) {
	switch x := h.(type) {
	case *ast.Simple:
		return c.evalSimpleWord(ctx, x.Word, cfg, atWordStart)
	case *ast.SingleQuoted:
		// No expansion, no splitting, regardless of config.
		return SingleField(x.Value), nil
	case *ast.DoubleQuoted:
		return c.evalDoubleQuoted(ctx, x.Parts)
	default:
		return Fields{}, &UnknownWordPartError{Part: h}
	}
}

// evalSimpleWord evaluates one SimpleWord node outside of double quotes.
func (c *Context) evalSimpleWord(ctx context.Context, w ast.SimpleWord, cfg WordEvalConfig, atWordStart bool) (Fields, error) {
	switch x := w.(type) {
	case *ast.Literal:
		return SingleField(x.Value), nil
	case *ast.Escaped:
		return SingleField(x.Value), nil
	case *ast.Star:
		return SingleField("*"), nil
	case *ast.Question:
		return SingleField("?"), nil
	case *ast.SquareOpen:
		return SingleField("["), nil
	case *ast.SquareClose:
		return SingleField("]"), nil
	case *ast.Colon:
		return SingleField(":"), nil
	case *ast.Tilde:
		if cfg.Tilde == TildeNone {
			return SingleField("~"), nil
		}
		home := c.Env.Get("HOME")
		if !home.IsSet() {
			return Z(), nil
		}
		return SingleField(home.String()), nil
	case *ast.Param:
		return c.evalParamWord(ctx, x.Parameter, cfg.Split)
	case *ast.Subst:
		return c.EvalSubstitution(ctx, x.Substitution, cfg.Split)
	default:
		return Fields{}, &UnknownWordPartError{Part: w}
	}
}

func (c *Context) evalParamWord(ctx context.Context, p ast.Parameter, split bool) (Fields, error) {
	fields, present := c.LookupParameter(ctx, p, split)
	if !present {
		return Z(), nil
	}
	return fields, nil
}

// evalDoubleQuoted evaluates the contents of a "..." word, per spec.md
// §4.4's DoubleQuoted rule: each inner part is evaluated with
// tilde_expansion=None, split_fields_further=false, then the results are
// concatenated into a single field, except that $@ preserves its internal
// field boundaries (first arg concatenates left, last arg concatenates
// right, middle args stand alone) and $* is joined by IFS[0].
func (c *Context) evalDoubleQuoted(ctx context.Context, parts []ast.SimpleWord) (Fields, error) {
	innerCfg := WordEvalConfig{Tilde: TildeNone, Split: false}

	var out []string     // completed fields
	var cur strings.Builder
	haveCur := false

	flush := func() {
		if haveCur {
			out = append(out, cur.String())
			cur.Reset()
			haveCur = false
		}
	}

	for _, part := range parts {
		// $@ and $* need special handling; every other SimpleWord
		// contributes to the running accumulator as a plain string.
		if param, ok := part.(*ast.Param); ok {
			switch param.Parameter.(type) {
			case ast.At:
				fields, present := c.LookupParameter(ctx, param.Parameter, false)
				if !present {
					continue
				}
				args := fields.Slice()
				if len(args) == 0 {
					continue
				}
				// First arg concatenates onto whatever came
				// before; each middle arg is its own field;
				// the last arg starts the next accumulator.
				cur.WriteString(args[0])
				haveCur = true
				if len(args) > 1 {
					for _, mid := range args[1 : len(args)-1] {
						flush()
						out = append(out, mid)
					}
					flush()
					cur.WriteString(args[len(args)-1])
					haveCur = true
				}
				continue
			case ast.Star:
				fields, present := c.LookupParameter(ctx, param.Parameter, false)
				if !present {
					continue
				}
				cur.WriteString(fields.Join(c.ifsJoiner()))
				haveCur = true
				continue
			}
		}

		fields, err := c.evalSimpleWord(ctx, part, innerCfg, false)
		if err != nil {
			return Fields{}, err
		}
		// Per spec.md §4.4: "Unexpected Split/Star results from inner
		// evaluations... are joined with IFS as a fallback."
		switch fields.Kind() {
		case Zero:
			// contributes nothing
		case SingleKind:
			cur.WriteString(fields.Slice()[0])
			haveCur = true
		default:
			cur.WriteString(fields.Join(c.ifsJoiner()))
			haveCur = true
		}
	}
	flush()

	if len(out) == 0 {
		// A double-quoted word always yields at least an empty field,
		// e.g. "" or "$unset".
		return SingleField(""), nil
	}
	if len(out) == 1 {
		return SingleField(out[0]), nil
	}
	return SplitFields(out), nil
}

// concatFields merges two Fields values the way adjacent Concat parts do:
// when the previous result ended with a field and the next begins with
// one, they merge into a single field; any fields strictly between the
// merge points stay intact.
func concatFields(a, b Fields) Fields {
	if a.Kind() == Zero {
		return b
	}
	if b.Kind() == Zero {
		return a
	}
	av := a.observedValuesPublic()
	bv := b.observedValuesPublic()
	if len(av) == 0 {
		return b
	}
	if len(bv) == 0 {
		return a
	}
	merged := make([]string, 0, len(av)+len(bv)-1)
	merged = append(merged, av[:len(av)-1]...)
	merged = append(merged, av[len(av)-1]+bv[0])
	merged = append(merged, bv[1:]...)
	return FromStrings(merged)
}

// observedValuesPublic exposes observedValues to sibling files in this
// package; kept as a distinct name to flag it's an internal accessor, not
// part of Fields' public API surface used by other packages.
func (f Fields) observedValuesPublic() []string { return f.observedValues() }
