// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"cmp"
	"runtime"
	"slices"
	"strings"
)

// ValueKind describes which kind of value a Variable holds.
type ValueKind uint8

const (
	// Unknown is used for unset variables which do not have a kind yet.
	Unknown ValueKind = iota
	// String describes plain string variables, such as `foo=bar`.
	String
	// NameRef describes variables which reference another by name, such
	// as `declare -n foo=foo2`.
	NameRef
	// Indexed describes indexed array variables, such as `foo=(bar baz)`.
	Indexed
	// Associative describes associative array variables, such as
	// `foo=([bar]=x [baz]=y)`.
	Associative
)

// Variable describes a shell variable and its attributes (spec.md §3:
// "scalar and exported variables").
type Variable struct {
	// Set is true when the variable has been assigned a value, which
	// may be empty. The zero Variable is unset.
	Set bool

	Local    bool
	Exported bool
	ReadOnly bool

	// Kind defines which of the value fields below is meaningful.
	Kind ValueKind

	Str  string            // used when Kind is String or NameRef
	List []string          // used when Kind is Indexed
	Map  map[string]string // used when Kind is Associative
}

// IsSet reports whether the variable has been assigned a value.
func (v Variable) IsSet() bool { return v.Set }

// String returns the variable's value flattened to a scalar string.
func (v Variable) String() string {
	switch v.Kind {
	case String:
		return v.Str
	case Indexed:
		if len(v.List) > 0 {
			return v.List[0]
		}
	}
	return ""
}

// maxNameRefDepth caps how many nameref hops Resolve will follow, so a
// reference cycle can't hang the interpreter (spec.md §4.5 arithmetic
// shares the same cap for variable reads).
const maxNameRefDepth = 100

// Resolve follows a chain of NameRef variables, returning the final name
// followed and the Variable it points to.
func (v Variable) Resolve(env Environ) (string, Variable) {
	name := ""
	for i := 0; i < maxNameRefDepth; i++ {
		if v.Kind != NameRef {
			return name, v
		}
		name = v.Str
		v = env.Get(name)
	}
	return name, Variable{}
}

// Environ is the variable-lookup-and-mutation contract the expand package
// depends on. interp.Environment satisfies it directly; it's kept as a
// narrow interface (rather than requiring the whole interp.Environment) so
// expand never imports interp, and so tests can supply a minimal mock
// (spec.md §9: "keep interfaces only where mocking is needed for tests").
type Environ interface {
	// Get retrieves a variable by name. Use Variable.IsSet to tell a
	// set-but-empty variable apart from an unset one.
	Get(name string) Variable

	// Set assigns (or, if !vr.IsSet(), unsets) a variable by name. An
	// error is returned for invalid operations, such as overwriting a
	// read-only variable.
	Set(name string, vr Variable) error

	// Each iterates over every currently set variable, stopping early if
	// fn returns false. Exported variables must be included, since
	// process launchers rely on Each to build a child's environment.
	Each(fn func(name string, vr Variable) bool)
}

// FuncEnviron wraps a function mapping variable names to their string
// values as a read-only Environ. Empty strings are treated as unset; all
// variables are reported exported.
func FuncEnviron(fn func(string) string) Environ {
	return funcEnviron(fn)
}

type funcEnviron func(string) string

func (f funcEnviron) Get(name string) Variable {
	value := f(name)
	if value == "" {
		return Variable{}
	}
	return Variable{Set: true, Exported: true, Kind: String, Str: value}
}

func (f funcEnviron) Set(name string, vr Variable) error { return nil }
func (f funcEnviron) Each(func(name string, vr Variable) bool) {}

// ListEnviron returns a read-only Environ from "key=value" pairs, the
// shape of os.Environ(). All variables are reported exported. The last
// value wins if a name appears more than once.
//
// On Windows, where environment variable names are case-insensitive, the
// resulting names are all uppercased.
func ListEnviron(pairs ...string) Environ {
	return listEnvironWithUpper(runtime.GOOS == "windows", pairs...)
}

func listEnvironWithUpper(upper bool, pairs ...string) Environ {
	list := slices.Clone(pairs)
	if upper {
		for i, s := range list {
			if name, val, ok := strings.Cut(s, "="); ok {
				list[i] = strings.ToUpper(name) + "=" + val
			}
		}
	}

	slices.SortStableFunc(list, func(a, b string) int {
		isep := strings.IndexByte(a, '=')
		jsep := strings.IndexByte(b, '=')
		if isep < 0 {
			isep = 0
		} else {
			isep++
		}
		if jsep < 0 {
			jsep = 0
		} else {
			jsep++
		}
		return strings.Compare(a[:isep], b[:jsep])
	})

	last := ""
	for i := 0; i < len(list); {
		name, _, ok := strings.Cut(list[i], "=")
		if name == "" || !ok {
			list = slices.Delete(list, i, i+1)
			continue
		}
		if last == name {
			list = slices.Delete(list, i-1, i)
			continue
		}
		last = name
		i++
	}
	return listEnviron(list)
}

// listEnviron is a sorted list of "name=value" strings.
type listEnviron []string

func (l listEnviron) Get(name string) Variable {
	eqpos := len(name)
	endpos := len(name) + 1
	i, ok := slices.BinarySearchFunc(l, name, func(l, name string) int {
		if len(l) < endpos {
			return strings.Compare(l, name)
		}
		c := strings.Compare(l[:eqpos], name)
		eq := l[eqpos]
		if c == 0 {
			return cmp.Compare(eq, '=')
		}
		return c
	})
	if ok {
		return Variable{Set: true, Exported: true, Kind: String, Str: l[i][endpos:]}
	}
	return Variable{}
}

func (l listEnviron) Set(name string, vr Variable) error {
	return nil // ListEnviron snapshots are read-only by construction
}

func (l listEnviron) Each(fn func(name string, vr Variable) bool) {
	for _, pair := range l {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if !fn(name, Variable{Set: true, Exported: true, Kind: String, Str: value}) {
			return
		}
	}
}
