// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"fmt"

	"github.com/nsheridan/posh/ast"
)

// BadAssignmentError is returned when a ${param:=word}-style substitution
// targets a parameter that cannot be assigned to (anything but a plain
// Var), per spec.md §4.5.
type BadAssignmentError struct {
	Parameter ast.Parameter
}

func (e *BadAssignmentError) Error() string {
	return fmt.Sprintf("bad assignment to parameter %v", e.Parameter)
}

// DivideByZeroError is returned by arithmetic evaluation on `/` or `%` by
// zero.
type DivideByZeroError struct{}

func (e *DivideByZeroError) Error() string { return "division by zero" }

// NegativeExponentError is returned by arithmetic evaluation of `**` with a
// negative exponent.
type NegativeExponentError struct{}

func (e *NegativeExponentError) Error() string { return "exponent less than 0" }

// EmptyParameterError is returned by ${param:?message}-style substitutions
// when the parameter is absent.
type EmptyParameterError struct {
	Parameter ast.Parameter
	Message   string
}

func (e *EmptyParameterError) Error() string { return e.Message }

// UnknownWordPartError is returned when the word evaluator is handed an
// ast node it doesn't recognize; it signals a bug in the AST producer, not
// a user-facing shell error.
type UnknownWordPartError struct {
	Part any
}

func (e *UnknownWordPartError) Error() string {
	return fmt.Sprintf("unhandled word part: %T", e.Part)
}
