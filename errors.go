package main

import (
	"fmt"

	"github.com/jcorbin/minilisp/internal/fileinput"
)

// UndefinedSymbolError is returned when a name is not bound anywhere in the
// environment chain.
type UndefinedSymbolError struct {
	Name Symbol
}

func (err *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("undefined symbol: %v", err.Name)
}

// TypeError is returned when an operand fails a primitive's or special
// form's type contract, or when a non-callable value is called.
type TypeError struct {
	Op   string
	Want string
	Got  Value
}

func (err *TypeError) Error() string {
	return fmt.Sprintf("type error: %v expects %v, got %v", err.Op, err.Want, describe(err.Got))
}

// ParameterError is returned when an argument is outside of a primitive's
// valid domain, like a zero divisor.
type ParameterError struct {
	Op     string
	Reason string
}

func (err *ParameterError) Error() string {
	return fmt.Sprintf("parameter error: %v %v", err.Op, err.Reason)
}

// ArgumentError is returned when a special form, primitive, or procedure is
// given the wrong number of operands, or a malformed special form.
type ArgumentError struct {
	Op      string
	Want    int
	AtLeast bool
	Got     int

	// Reason, when set, describes a malformed form instead of a count mismatch.
	Reason string
}

func (err *ArgumentError) Error() string {
	if err.Reason != "" {
		return fmt.Sprintf("unexpected argument: %v %v", err.Op, err.Reason)
	}
	quant := "exactly"
	if err.AtLeast {
		quant = "at least"
	}
	return fmt.Sprintf("unexpected argument: %v expects %v %v, got %v",
		err.Op, quant, plural(err.Want, "argument"), err.Got)
}

// DepthError is returned when procedure calls nest deeper than an
// Evaluator's MaxDepth.
type DepthError struct {
	Limit int
}

func (err *DepthError) Error() string {
	return fmt.Sprintf("recursion depth limit %v exceeded", err.Limit)
}

// ParseError is returned by the reader for malformed source text.
type ParseError struct {
	Loc     fileinput.Location
	Message string

	// Incomplete is set when input ended inside an unclosed list, so more
	// input could complete it.
	Incomplete bool
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("parse error at %v: %v", err.Loc, err.Message)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%v %v", n, noun)
	}
	return fmt.Sprintf("%v %vs", n, noun)
}
