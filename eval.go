package main

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Evaluator evaluates expressions against an environment chain.
//
// Evaluation is plain recursion on the Go call stack; there is no tail call
// elimination, so a deeply recursive program is bounded only by MaxDepth, or
// by the Go stack limit when MaxDepth is zero.
type Evaluator struct {
	logging

	// MaxDepth limits how deeply procedure calls may nest; zero means no limit.
	MaxDepth int

	out   io.Writer
	depth int
}

// NewEvaluator creates an evaluator whose print primitives write to out.
func NewEvaluator(out io.Writer) *Evaluator {
	if out == nil {
		out = io.Discard
	}
	return &Evaluator{out: out}
}

// Eval evaluates a single expression, using a new evaluator that prints to
// standard output.
func Eval(expr Expr, env *Env) (Value, error) {
	return NewEvaluator(os.Stdout).Eval(context.Background(), expr, env)
}

// EvalAll evaluates a sequence of top-level expressions, using a new
// evaluator that prints to standard output.
func EvalAll(exprs []Expr, env *Env) ([]Value, error) {
	return NewEvaluator(os.Stdout).EvalAll(context.Background(), exprs, env)
}

// Eval evaluates expr in env. The context is checked before every procedure
// call, so cancelling it stops even a non-terminating program.
func (ev *Evaluator) Eval(ctx context.Context, expr Expr, env *Env) (Value, error) {
	return ev.eval(ctx, expr, env)
}

// EvalAll evaluates each expression in order against the same env, so that
// top-level defines accumulate. It stops at the first error, returning the
// values of the expressions evaluated before it.
func (ev *Evaluator) EvalAll(ctx context.Context, exprs []Expr, env *Env) ([]Value, error) {
	vals := make([]Value, 0, len(exprs))
	for _, expr := range exprs {
		val, err := ev.eval(ctx, expr, env)
		if err != nil {
			return vals, err
		}
		vals = append(vals, val)
	}
	return vals, nil
}

func (ev *Evaluator) eval(ctx context.Context, expr Expr, env *Env) (Value, error) {
	switch x := expr.(type) {
	case Number:
		return x, nil
	case Symbol:
		return env.Lookup(x)
	case List:
		ev.logf(">", "eval %v", x)
		return ev.evalList(ctx, x, env)
	default:
		return nil, fmt.Errorf("invalid expression %T", expr)
	}
}

func (ev *Evaluator) evalList(ctx context.Context, form List, env *Env) (Value, error) {
	if len(form) == 0 {
		return nil, &ArgumentError{Op: "()", Reason: "cannot evaluate an empty form"}
	}

	if name, ok := form[0].(Symbol); ok {
		b := registry[name]
		switch b.form {
		case formIf:
			return ev.evalIf(ctx, form, env)
		case formDefine:
			return ev.evalDefine(ctx, form, env)
		case formFun:
			return ev.evalFun(form, env)
		}
		if prim := b.primitive(); prim != nil {
			// arity is known before any operand is evaluated
			if err := prim.checkArity(len(form) - 1); err != nil {
				return nil, err
			}
			args, err := ev.evalArgs(ctx, form[1:], env)
			if err != nil {
				return nil, err
			}
			return prim.Apply(ev, args)
		}
	}

	fn, err := ev.eval(ctx, form[0], env)
	if err != nil {
		return nil, err
	}
	args, err := ev.evalArgs(ctx, form[1:], env)
	if err != nil {
		return nil, err
	}
	return ev.apply(ctx, fn, args)
}

// evalArgs evaluates every operand, left to right.
func (ev *Evaluator) evalArgs(ctx context.Context, exprs []Expr, env *Env) ([]Value, error) {
	args := make([]Value, len(exprs))
	for i, expr := range exprs {
		val, err := ev.eval(ctx, expr, env)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}
	return args, nil
}

func (ev *Evaluator) apply(ctx context.Context, fn Value, args []Value) (Value, error) {
	switch fn := fn.(type) {
	case *Primitive:
		return fn.Apply(ev, args)
	case *Procedure:
		return ev.call(ctx, fn, args)
	default:
		return nil, &TypeError{Op: "call", Want: "a Procedure or Primitive", Got: fn}
	}
}

// call evaluates the body of proc in a new frame inside of its closure
// environment, returning the value of the last body expression.
func (ev *Evaluator) call(ctx context.Context, proc *Procedure, args []Value) (Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ev.MaxDepth > 0 && ev.depth >= ev.MaxDepth {
		return nil, &DepthError{Limit: ev.MaxDepth}
	}
	frame, err := NewFrame(proc.Params, args, proc.Env)
	if err != nil {
		return nil, err
	}

	ev.depth++
	defer func() { ev.depth-- }()
	ev.logf("call", "%v %v", proc, args)
	if ev.logfn != nil {
		defer ev.withLogPrefix("  ")()
	}

	var val Value
	for _, expr := range proc.Body {
		if val, err = ev.eval(ctx, expr, frame); err != nil {
			return nil, err
		}
	}
	return val, nil
}

// (if cond then else): only the selected branch is evaluated.
func (ev *Evaluator) evalIf(ctx context.Context, form List, env *Env) (Value, error) {
	if len(form) != 4 {
		return nil, &ArgumentError{Op: "if", Want: 3, Got: len(form) - 1}
	}
	cond, err := ev.eval(ctx, form[1], env)
	if err != nil {
		return nil, err
	}
	b, ok := cond.(Boolean)
	if !ok {
		return nil, &TypeError{Op: "if", Want: BooleanType.String(), Got: cond}
	}
	if b {
		return ev.eval(ctx, form[2], env)
	}
	return ev.eval(ctx, form[3], env)
}

// (define name expr): binds in the current frame; produces no value.
func (ev *Evaluator) evalDefine(ctx context.Context, form List, env *Env) (Value, error) {
	if len(form) != 3 {
		return nil, &ArgumentError{Op: "define", Want: 2, Got: len(form) - 1}
	}
	name, ok := form[1].(Symbol)
	if !ok {
		return nil, &ArgumentError{Op: "define", Reason: fmt.Sprintf("expects a symbol name, got %v", form[1])}
	}
	val, err := ev.eval(ctx, form[2], env)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, &TypeError{Op: "define", Want: "a value", Got: val}
	}
	env.Define(name, val)
	ev.logf("define", "%v = %v", name, val)
	return nil, nil
}

// (fun (params...) body...): captures env by reference.
func (ev *Evaluator) evalFun(form List, env *Env) (Value, error) {
	if len(form) < 3 {
		return nil, &ArgumentError{Op: "fun", Want: 2, AtLeast: true, Got: len(form) - 1}
	}
	paramList, ok := form[1].(List)
	if !ok {
		return nil, &ArgumentError{Op: "fun", Reason: fmt.Sprintf("expects a parameter list, got %v", form[1])}
	}
	params := make([]Symbol, len(paramList))
	for i, expr := range paramList {
		param, ok := expr.(Symbol)
		if !ok {
			return nil, &ArgumentError{Op: "fun", Reason: fmt.Sprintf("expects symbol parameters, got %v", expr)}
		}
		for _, prior := range params[:i] {
			if prior == param {
				return nil, &ArgumentError{Op: "fun", Reason: fmt.Sprintf("duplicate parameter %v", param)}
			}
		}
		params[i] = param
	}
	return &Procedure{
		Params: params,
		Body:   form[2:],
		Env:    env,
	}, nil
}
