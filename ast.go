package main

import (
	"strconv"
	"strings"
)

// Expr is a parsed expression: a Number literal, a Symbol reference, or a
// parenthesized List whose first element is in operator position.
type Expr interface {
	String() string
	isExpr()
}

// Number is an integer literal; it is also the runtime Number value, since a
// literal evaluates to itself.
type Number int

// Symbol is a reference to a name bound in some Env.
type Symbol string

// List is a parenthesized form.
type List []Expr

func (Number) isExpr() {}
func (Symbol) isExpr() {}
func (List) isExpr()   {}

func (n Number) String() string   { return strconv.Itoa(int(n)) }
func (sym Symbol) String() string { return string(sym) }

func (l List) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, expr := range l {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(expr.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
