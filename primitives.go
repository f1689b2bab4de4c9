package main

import (
	"fmt"
	"sort"
)

// Primitive is a built-in operator. Every operand must have type Operand;
// Arity is the exact operand count, or the minimum when Variadic.
type Primitive struct {
	Name     string
	Arity    int
	Variadic bool
	Operand  Type

	fn func(ev *Evaluator, args []Value) (Value, error)
}

func (*Primitive) Type() Type { return PrimitiveType }

func (prim *Primitive) String() string { return fmt.Sprintf("#<primitive %v>", prim.Name) }

// Apply checks the operand count and types of args, then computes the result.
func (prim *Primitive) Apply(ev *Evaluator, args []Value) (Value, error) {
	if err := prim.checkArity(len(args)); err != nil {
		return nil, err
	}
	if err := prim.checkTypes(args); err != nil {
		return nil, err
	}
	return prim.fn(ev, args)
}

func (prim *Primitive) checkArity(n int) error {
	if prim.Variadic {
		if n < prim.Arity {
			return &ArgumentError{Op: prim.Name, Want: prim.Arity, AtLeast: true, Got: n}
		}
	} else if n != prim.Arity {
		return &ArgumentError{Op: prim.Name, Want: prim.Arity, Got: n}
	}
	return nil
}

func (prim *Primitive) checkTypes(args []Value) error {
	for _, arg := range args {
		if typeOf(arg) != prim.Operand {
			return &TypeError{Op: prim.Name, Want: prim.Operand.String(), Got: arg}
		}
	}
	return nil
}

type specialForm int

const (
	formIf specialForm = iota + 1
	formDefine
	formFun
)

var formNames = map[specialForm]string{
	formIf:     "if",
	formDefine: "define",
	formFun:    "fun",
}

func (form specialForm) String() string { return formNames[form] }

// builtin is one registry entry: either a special form tag, or a value that
// is bound into every standard environment (a *Primitive or a constant).
type builtin struct {
	form  specialForm
	value Value
}

func (b builtin) primitive() *Primitive {
	prim, _ := b.value.(*Primitive)
	return prim
}

// registry maps every reserved name; it is built once and never modified.
var registry = buildRegistry(
	[]specialForm{formIf, formDefine, formFun},
	[]*Primitive{
		{Name: "+", Arity: 2, Variadic: true, Operand: NumberType, fn: foldNumbers(func(a, b int) int { return a + b })},
		{Name: "*", Arity: 2, Variadic: true, Operand: NumberType, fn: foldNumbers(func(a, b int) int { return a * b })},
		{Name: "=", Arity: 2, Variadic: true, Operand: NumberType, fn: allEqual},
		{Name: "and", Arity: 2, Variadic: true, Operand: BooleanType, fn: foldBooleans(func(a, b bool) bool { return a && b })},
		{Name: "or", Arity: 2, Variadic: true, Operand: BooleanType, fn: foldBooleans(func(a, b bool) bool { return a || b })},
		{Name: "-", Arity: 2, Operand: NumberType, fn: foldNumbers(func(a, b int) int { return a - b })},
		{Name: "/", Arity: 2, Operand: NumberType, fn: divide},
		{Name: "mod", Arity: 2, Operand: NumberType, fn: modulo},
		{Name: ">", Arity: 2, Operand: NumberType, fn: compareNumbers(func(a, b int) bool { return a > b })},
		{Name: "<", Arity: 2, Operand: NumberType, fn: compareNumbers(func(a, b int) bool { return a < b })},
		{Name: "not", Arity: 1, Operand: BooleanType, fn: not},
		{Name: "print-num", Arity: 1, Operand: NumberType, fn: printValue},
		{Name: "print-bool", Arity: 1, Operand: BooleanType, fn: printValue},
	},
	map[Symbol]Value{
		"#t": Boolean(true),
		"#f": Boolean(false),
	},
)

// builtinEnv is the shared outer frame of every standard environment.
var builtinEnv = func() *Env {
	env := NewEnv(nil)
	for name, b := range registry {
		if b.value != nil {
			env.vars[name] = b.value
		}
	}
	return env
}()

func buildRegistry(forms []specialForm, prims []*Primitive, consts map[Symbol]Value) map[Symbol]builtin {
	reg := make(map[Symbol]builtin, len(forms)+len(prims)+len(consts))
	add := func(name Symbol, b builtin) {
		if _, dup := reg[name]; dup {
			panic(fmt.Sprintf("duplicate builtin %q", name))
		}
		reg[name] = b
	}
	for _, form := range forms {
		add(Symbol(form.String()), builtin{form: form})
	}
	for _, prim := range prims {
		add(Symbol(prim.Name), builtin{value: prim})
	}
	for name, val := range consts {
		add(name, builtin{value: val})
	}
	return reg
}

// reservedNames returns every registry name in sorted order.
func reservedNames() []Symbol {
	names := make([]Symbol, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func isReserved(name string) bool {
	_, reserved := registry[Symbol(name)]
	return reserved
}

//// primitive implementations; operand types have already been checked

func foldNumbers(op func(a, b int) int) func(*Evaluator, []Value) (Value, error) {
	return func(_ *Evaluator, args []Value) (Value, error) {
		acc := int(args[0].(Number))
		for _, arg := range args[1:] {
			acc = op(acc, int(arg.(Number)))
		}
		return Number(acc), nil
	}
}

func foldBooleans(op func(a, b bool) bool) func(*Evaluator, []Value) (Value, error) {
	return func(_ *Evaluator, args []Value) (Value, error) {
		acc := bool(args[0].(Boolean))
		for _, arg := range args[1:] {
			acc = op(acc, bool(arg.(Boolean)))
		}
		return Boolean(acc), nil
	}
}

func compareNumbers(op func(a, b int) bool) func(*Evaluator, []Value) (Value, error) {
	return func(_ *Evaluator, args []Value) (Value, error) {
		return Boolean(op(int(args[0].(Number)), int(args[1].(Number)))), nil
	}
}

func allEqual(_ *Evaluator, args []Value) (Value, error) {
	first := args[0].(Number)
	for _, arg := range args[1:] {
		if arg.(Number) != first {
			return Boolean(false), nil
		}
	}
	return Boolean(true), nil
}

// divide truncates toward zero.
func divide(_ *Evaluator, args []Value) (Value, error) {
	a, b := args[0].(Number), args[1].(Number)
	if b == 0 {
		return nil, &ParameterError{Op: "/", Reason: "division by zero"}
	}
	return a / b, nil
}

// modulo is floored: the result takes the sign of the divisor.
func modulo(_ *Evaluator, args []Value) (Value, error) {
	a, b := args[0].(Number), args[1].(Number)
	if b == 0 {
		return nil, &ParameterError{Op: "mod", Reason: "division by zero"}
	}
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m, nil
}

func not(_ *Evaluator, args []Value) (Value, error) {
	return !args[0].(Boolean), nil
}

func printValue(ev *Evaluator, args []Value) (Value, error) {
	if _, err := fmt.Fprintln(ev.out, args[0]); err != nil {
		return nil, err
	}
	return nil, nil
}
