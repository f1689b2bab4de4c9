package main

import "fmt"

// Type tags the runtime kinds of Value.
type Type int

// Value types; NoType stands for the nil Value produced by forms evaluated
// only for effect, like define and print-num.
const (
	NoType Type = iota
	NumberType
	BooleanType
	ProcedureType
	PrimitiveType
)

var typeNames = [...]string{
	NoType:        "nothing",
	NumberType:    "Number",
	BooleanType:   "Boolean",
	ProcedureType: "Procedure",
	PrimitiveType: "Primitive",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Value is the result of evaluating an Expr: a Number, a Boolean, a
// *Procedure, or a *Primitive.
type Value interface {
	String() string
	Type() Type
}

// Boolean is a truth value, written #t or #f.
type Boolean bool

func (Number) Type() Type  { return NumberType }
func (Boolean) Type() Type { return BooleanType }

func (b Boolean) String() string {
	if b {
		return "#t"
	}
	return "#f"
}

// Procedure is a closure created by fun: calling it binds Params to the
// arguments in a new frame whose parent is Env, the environment that was
// current when the fun form was evaluated.
type Procedure struct {
	Params []Symbol
	Body   []Expr
	Env    *Env
}

func (*Procedure) Type() Type { return ProcedureType }

func (proc *Procedure) String() string {
	return fmt.Sprintf("#<procedure %v>", List(symbolExprs(proc.Params)))
}

func symbolExprs(syms []Symbol) []Expr {
	exprs := make([]Expr, len(syms))
	for i, sym := range syms {
		exprs[i] = sym
	}
	return exprs
}

func typeOf(val Value) Type {
	if val == nil {
		return NoType
	}
	return val.Type()
}

// describe formats a value for error messages, e.g. "Number 5" or "nothing".
func describe(val Value) string {
	if val == nil {
		return NoType.String()
	}
	return fmt.Sprintf("%v %v", val.Type(), val)
}
