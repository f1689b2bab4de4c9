package main

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/minilisp/internal/fileinput"
	"github.com/jcorbin/minilisp/internal/logio"
)

func TestEval(t *testing.T) {
	evalTestCases{
		evalTest("numbers").
			withInput(`(print-num 42) (print-num -7) (print-num 0)`).
			expectOutput(lines("42", "-7", "0")),

		evalTest("arithmetic").
			withInput(`
				(print-num (+ 1 2 3))
				(print-num (- 10 4))
				(print-num (* 2 3 4))
			`).
			expectOutput(lines("6", "6", "24")),

		evalTest("division truncates").
			withInput(`(print-num (/ 7 2)) (print-num (/ -7 2))`).
			expectOutput(lines("3", "-3")),

		evalTest("mod takes the sign of the divisor").
			withInput(`(print-num (mod 7 3)) (print-num (mod -5 2)) (print-num (mod 5 -2))`).
			expectOutput(lines("1", "1", "-1")),

		evalTest("comparisons").
			withInput(`
				(print-bool (> 3 2))
				(print-bool (< 3 2))
				(print-bool (= 2 2 2))
				(print-bool (= 2 2 3))
			`).
			expectOutput(lines("#t", "#f", "#t", "#f")),

		evalTest("logic").
			withInput(`
				(print-bool (and #t #t #f))
				(print-bool (or #f #f #t))
				(print-bool (not #f))
			`).
			expectOutput(lines("#f", "#t", "#t")),

		evalTest("define").
			withInput(`(define x 5) (print-num (* x x))`).
			expectGlobal("x", Number(5)).
			expectOutput(lines("25")),

		evalTest("redefine").
			withInput(`(define x 5) (define x #t) (print-bool x)`).
			expectGlobal("x", Boolean(true)).
			expectOutput(lines("#t")),

		evalTest("primitives are values").
			withInput(`(define add +) (print-num (add 1 2))`).
			expectOutput(lines("3")),

		evalTest("factorial").
			withInput(`
				(define fact
				  (fun (n)
				    (if (< n 3) n (* n (fact (- n 1))))))
				(print-num (fact 4))
			`).
			expectOutput(lines("24")),

		evalTest("mutual recursion").
			withInput(`
				(define even (fun (n) (if (= n 0) #t (odd (- n 1)))))
				(define odd (fun (n) (if (= n 0) #f (even (- n 1)))))
				(print-bool (even 10))
				(print-bool (odd 7))
			`).
			expectOutput(lines("#t", "#t")),

		evalTest("closures").
			withInput(`
				(define adder (fun (x) (fun (y) (+ x y))))
				(define add5 (adder 5))
				(define add7 (adder 7))
				(print-num (add5 3))
				(print-num (add7 3))
			`).
			expectOutput(lines("8", "10")).
			withTestOutput(),

		evalTest("parameters shadow").
			withInput(`
				(define x 1)
				(define f (fun (x) (print-num x)))
				(f 2)
				(print-num x)
			`).
			expectOutput(lines("2", "1")),

		evalTest("scope is lexical").
			withInput(`
				(define x 1)
				(define getx (fun () x))
				(define g (fun (x) (getx)))
				(print-num (g 2))
			`).
			expectOutput(lines("1")),

		evalTest("procedure body is a sequence").
			withInput(`
				(define f (fun () (print-num 1) (print-num 2) 99))
				(print-num (f))
			`).
			expectOutput(lines("1", "2", "99")),

		evalTest("define inside a procedure is local").
			withInput(`
				(define f (fun () (define y 3) y))
				(print-num (f))
				(print-num y)
			`).
			expectOutput(lines("3")).
			expectError(&UndefinedSymbolError{"y"}),

		evalTest("if only evaluates one branch").
			withInput(`
				(if #t (print-num 1) (print-num undefined))
				(if #f (/ 1 0) (print-num 2))
			`).
			expectOutput(lines("1", "2")),

		evalTest("reserved operators ignore shadowing").
			withInput(`
				(define f (fun (+) (+ 1 2)))
				(print-num (f 5))
			`).
			expectOutput(lines("3")),

		evalTest("multiple inputs share definitions").
			withNamedInput("a.lisp", `(define x 2)`).
			withNamedInput("b.lisp", `(print-num x)`).
			expectOutput(lines("2")),

		evalTest("inputs do not run together").
			withNamedInput("a.lisp", `(define x 1) x`).
			withNamedInput("b.lisp", `y (print-num 2)`).
			expectErrorMessage("b.lisp:1:1: undefined symbol: y"),

		evalTest("inputs separate numbers").
			withNamedInput("a.lisp", `(print-num 1`).
			withNamedInput("b.lisp", `0)`).
			expectError(&ArgumentError{Op: "print-num", Want: 1, Got: 2}),

		evalTest("global dump").
			withInput(`(define x 5) (define sq (fun (n) (* n n)))`).
			expectDump(lines(
				"# Env Dump",
				"# Global",
				"  sq = #<procedure (n)> (* n n)",
				"  x  = Number 5",
				"# Builtins: 15 bindings",
			)),
	}.run(t)
}

func TestEval_sharedInput(t *testing.T) {
	fact := withEvalNamedInput("fact.lisp", `
		(define fact
		  (fun (n)
		    (if (< n 3) n (* n (fact (- n 1))))))
	`)
	evalTestCases{
		evalTest("fact 2").apply(fact,
			withEvalInput(`(print-num (fact 2))`),
			expectEvalOutput(lines("2"))),
		evalTest("fact 5").apply(fact,
			withEvalTestOutput(),
			withEvalInput(`(print-num (fact 5))`),
			expectEvalOutput(lines("120"))),
		evalTest("fact deeper than allowed").apply(fact,
			withEvalMaxDepth(3),
			withEvalInput(`(print-num (fact 5))`),
			expectEvalError(&DepthError{Limit: 3})),
		evalTest("fact of nothing").apply(fact,
			withEvalInput(`(fact (define y 1))`),
			expectEvalGlobal("y", Number(1)),
			expectEvalError(&TypeError{Op: "<", Want: "Number", Got: nil})),
	}.run(t)
}

func TestEval_errors(t *testing.T) {
	evalTestCases{
		evalTest("undefined symbol halts").
			withInput(`(print-num 1) (print-num nope) (print-num 2)`).
			expectOutput(lines("1")).
			expectError(&UndefinedSymbolError{"nope"}),

		evalTest("error location").
			withNamedInput("test.lisp", "(print-num 1)\n(print-num nope)").
			expectErrorMessage("test.lisp:2:1: undefined symbol: nope"),

		evalTest("special forms are not values").
			withInput(`(print-num if)`).
			expectError(&UndefinedSymbolError{"if"}),

		evalTest("not a Boolean").
			withInput(`(not 5)`).
			expectError(&TypeError{Op: "not", Want: "Boolean", Got: Number(5)}),

		evalTest("and a Number").
			withInput(`(and #t 5)`).
			expectError(&TypeError{Op: "and", Want: "Boolean", Got: Number(5)}),

		evalTest("add a Boolean").
			withInput(`(+ 1 #f)`).
			expectError(&TypeError{Op: "+", Want: "Number", Got: Boolean(false)}),

		evalTest("print-num nothing").
			withInput(`(print-num (print-num 1))`).
			expectOutput(lines("1")).
			expectError(&TypeError{Op: "print-num", Want: "Number", Got: nil}),

		evalTest("or evaluates every operand").
			withInput(`(or #t (print-bool #f))`).
			expectOutput(lines("#f")).
			expectError(&TypeError{Op: "or", Want: "Boolean", Got: nil}),

		evalTest("or runs a print operand").
			withInput(`(or #f (print-num 1))`).
			expectOutput(lines("1")).
			expectError(&TypeError{Op: "or", Want: "Boolean", Got: nil}),

		evalTest("if needs a Boolean").
			withInput(`(if 1 2 3)`).
			expectError(&TypeError{Op: "if", Want: "Boolean", Got: Number(1)}),

		evalTest("calling a Number").
			withInput(`(1 2)`).
			expectError(&TypeError{Op: "call", Want: "a Procedure or Primitive", Got: Number(1)}),

		evalTest("defining nothing").
			withInput(`(define x (print-num 1))`).
			expectOutput(lines("1")).
			expectError(&TypeError{Op: "define", Want: "a value", Got: nil}),

		evalTest("division by zero").
			withInput(`(print-num (/ 1 0))`).
			expectError(&ParameterError{Op: "/", Reason: "division by zero"}),

		evalTest("mod by zero").
			withInput(`(print-num (mod 1 0))`).
			expectError(&ParameterError{Op: "mod", Reason: "division by zero"}),

		evalTest("too few operands").
			withInput(`(+ 1)`).
			expectError(&ArgumentError{Op: "+", Want: 2, AtLeast: true, Got: 1}),

		evalTest("too many operands").
			withInput(`(- 1 2 3)`).
			expectError(&ArgumentError{Op: "-", Want: 2, Got: 3}),

		evalTest("arity is checked before operands").
			withInput(`(not nope nope)`).
			expectError(&ArgumentError{Op: "not", Want: 1, Got: 2}),

		evalTest("primitive value arity").
			withInput(`(define neg not) (neg #t #f)`).
			expectError(&ArgumentError{Op: "not", Want: 1, Got: 2}),

		evalTest("procedure arity").
			withInput(`(define f (fun (x) x)) (f 1 2)`).
			expectError(&ArgumentError{Op: "procedure", Want: 1, Got: 2}),

		evalTest("if arity").
			withInput(`(if #t 1)`).
			expectError(&ArgumentError{Op: "if", Want: 3, Got: 2}),

		evalTest("define arity").
			withInput(`(define x)`).
			expectError(&ArgumentError{Op: "define", Want: 2, Got: 1}),

		evalTest("define a Number").
			withInput(`(define 5 6)`).
			expectError(&ArgumentError{Op: "define", Reason: "expects a symbol name, got 5"}),

		evalTest("fun without body").
			withInput(`(fun (x))`).
			expectError(&ArgumentError{Op: "fun", Want: 2, AtLeast: true, Got: 1}),

		evalTest("fun without parameter list").
			withInput(`(fun x x)`).
			expectError(&ArgumentError{Op: "fun", Reason: "expects a parameter list, got x"}),

		evalTest("fun with Number parameter").
			withInput(`(fun (x 1) x)`).
			expectError(&ArgumentError{Op: "fun", Reason: "expects symbol parameters, got 1"}),

		evalTest("fun with duplicate parameters").
			withInput(`(fun (x x) x)`).
			expectError(&ArgumentError{Op: "fun", Reason: "duplicate parameter x"}),

		evalTest("empty form").
			withInput(`()`).
			expectError(&ArgumentError{Op: "()", Reason: "cannot evaluate an empty form"}),

		evalTest("parse errors prevent evaluation").
			withNamedInput("test.lisp", `(print-num 1) (print-num`).
			expectOutput("").
			expectError(&ParseError{
				Loc:        fileinput.Location{Name: "test.lisp", Line: 1, Col: 15},
				Message:    "unexpected end of input, expected ')'",
				Incomplete: true,
			}),

		evalTest("max depth").
			withMaxDepth(10).
			withInput(`
				(define loop (fun (n) (loop n)))
				(loop 1)
			`).
			expectError(&DepthError{Limit: 10}),

		evalTest("max depth allows shallow calls").
			withMaxDepth(10).
			withInput(`
				(define count (fun (n) (if (= n 0) 0 (+ 1 (count (- n 1))))))
				(print-num (count 9))
			`).
			expectOutput(lines("9")),

		evalTest("timeout").
			withTimeout(50*time.Millisecond).
			withInput(`
				(define fib (fun (n) (if (< n 2) n (+ (fib (- n 1)) (fib (- n 2))))))
				(print-num (fib 100))
			`).
			expectError(context.DeadlineExceeded),
	}.run(t)
}

func TestEvaluator_EvalAll(t *testing.T) {
	ctx := context.Background()
	exprs := func(t *testing.T, src string) []Expr {
		forms, err := ReadString(t.Name(), src)
		if !assert.NoError(t, err) {
			t.FailNow()
		}
		exprs := make([]Expr, len(forms))
		for i, form := range forms {
			exprs[i] = form.Expr
		}
		return exprs
	}

	t.Run("values in order", func(t *testing.T) {
		var out strings.Builder
		env := NewStandardEnv()
		vals, err := NewEvaluator(&out).EvalAll(ctx, exprs(t, `(define x 4) (+ x 5) (print-num x) #f`), env)
		assert.NoError(t, err)
		assert.Equal(t, []Value{nil, Number(9), nil, Boolean(false)}, vals)
		assert.Equal(t, "4\n", out.String())

		val, err := env.Lookup("x")
		assert.NoError(t, err)
		assert.Equal(t, Number(4), val, "expected defines to carry across forms")
	})

	t.Run("stops at the first error", func(t *testing.T) {
		var out strings.Builder
		vals, err := NewEvaluator(&out).EvalAll(ctx, exprs(t, `
			(define y 2)
			(* y y)
			(print-num (/ y 0))
			(print-num y)
		`), NewStandardEnv())
		assertErrorMatches(t, &ParameterError{Op: "/", Reason: "division by zero"}, err)
		assert.Equal(t, []Value{nil, Number(4)}, vals, "expected values before the failed form")
		assert.Empty(t, out.String(), "expected nothing after the failed form to run")
	})

	t.Run("package level", func(t *testing.T) {
		vals, err := EvalAll(exprs(t, `(define z 1) (+ z 8)`), NewStandardEnv())
		assert.NoError(t, err)
		assert.Equal(t, []Value{nil, Number(9)}, vals)
	})
}

func TestEval_inlineProcedure(t *testing.T) {
	forms, err := ReadString(t.Name(), `((fun (x) x) 5) ((fun (x y) (* x y)) 6 7) ((fun () #t))`)
	if !assert.NoError(t, err) {
		return
	}
	env := NewStandardEnv()
	for i, want := range []Value{Number(5), Number(42), Boolean(true)} {
		val, err := Eval(forms[i].Expr, env)
		assert.NoError(t, err)
		assert.Equal(t, want, val, "expected value of %v", forms[i].Expr)
	}
	assert.Empty(t, env.Names(), "expected calls to leave the global frame untouched")
}

func TestEvalTestCases_selected(t *testing.T) {
	var names []string
	for _, evt := range (evalTestCases{
		evalTest("a"),
		evalTest("b").apply(exclusiveEvalTest()),
		evalTest("c"),
		evalTest("d").apply(exclusiveEvalTest(), withEvalInput("1")),
	}).selected() {
		names = append(names, evt.name)
	}
	assert.Equal(t, []string{"b", "d"}, names)

	names = nil
	for _, evt := range (evalTestCases{evalTest("a"), evalTest("b")}).selected() {
		names = append(names, evt.name)
	}
	assert.Equal(t, []string{"a", "b"}, names)
}

type evalTestCases []evalTestCase

func (evts evalTestCases) run(t *testing.T) {
	for _, evt := range evts.selected() {
		if !t.Run(evt.name, evt.run) {
			return
		}
	}
}

// selected returns any cases marked exclusive, or else all of them.
func (evts evalTestCases) selected() evalTestCases {
	var exclusive evalTestCases
	for _, evt := range evts {
		if evt.exclusive {
			exclusive = append(exclusive, evt)
		}
	}
	if len(exclusive) > 0 {
		return exclusive
	}
	return evts
}

func evalTest(name string) (evt evalTestCase) {
	evt.name = name
	return evt
}

type evalTestCase struct {
	name    string
	opts    []interface{}
	expect  []func(t *testing.T, it *Interp)
	timeout time.Duration

	wantErr     error
	wantErrMess string

	exclusive   bool
	nextInputID int
}

func (evt evalTestCase) apply(wraps ...func(evalTestCase) evalTestCase) evalTestCase {
	for _, wrap := range wraps {
		evt = wrap(evt)
	}
	return evt
}

func (evt evalTestCase) exclusiveTest() evalTestCase {
	evt.exclusive = true
	return evt
}

func (evt evalTestCase) withOptions(opts ...Option) evalTestCase {
	for _, opt := range opts {
		evt.opts = append(evt.opts, opt)
	}
	return evt
}

func (evt evalTestCase) withInput(input string) evalTestCase {
	evt.opts = append(evt.opts, func(evt *evalTestCase, t *testing.T) Option {
		name := t.Name() + "/input"
		if id := evt.nextInputID; id > 0 {
			name += "_" + strconv.Itoa(id+1)
		}
		evt.nextInputID++
		return WithInput(NamedReader(name, strings.NewReader(input)))
	})
	return evt
}

func (evt evalTestCase) withNamedInput(name string, input string) evalTestCase {
	evt.opts = append(evt.opts, func(evt *evalTestCase, t *testing.T) Option {
		return WithInput(NamedReader(name, strings.NewReader(input)))
	})
	return evt
}

func (evt evalTestCase) withMaxDepth(limit int) evalTestCase {
	evt.opts = append(evt.opts, WithMaxDepth(limit))
	return evt
}

func (evt evalTestCase) withTimeout(timeout time.Duration) evalTestCase {
	evt.timeout = timeout
	return evt
}

func (evt evalTestCase) withTestOutput() evalTestCase {
	evt.opts = append(evt.opts, func(evt *evalTestCase, t *testing.T) Option {
		return WithTee(&logio.Writer{Logf: t.Logf, Prefix: "out: "})
	})
	return evt
}

func (evt evalTestCase) expectError(err error) evalTestCase {
	evt.wantErr = err
	return evt
}

func (evt evalTestCase) expectErrorMessage(mess string) evalTestCase {
	evt.wantErrMess = mess
	return evt
}

func (evt evalTestCase) expectOutput(output string) evalTestCase {
	var out strings.Builder
	evt.opts = append(evt.opts, WithOutput(&out))
	evt.expect = append(evt.expect, func(t *testing.T, it *Interp) {
		assert.Equal(t, output, out.String(), "expected output")
	})
	return evt
}

func (evt evalTestCase) expectGlobal(name Symbol, val Value) evalTestCase {
	evt.expect = append(evt.expect, func(t *testing.T, it *Interp) {
		got, err := it.Env().Lookup(name)
		if assert.NoError(t, err, "expected %v to be defined", name) {
			assert.Equal(t, val, got, "expected %v value", name)
		}
	})
	return evt
}

func (evt evalTestCase) expectDump(dump string) evalTestCase {
	evt.expect = append(evt.expect, func(t *testing.T, it *Interp) {
		var out strings.Builder
		envDumper{env: it.Env(), out: &out}.dump()
		assert.Equal(t, dump, out.String(), "expected dump")
	})
	return evt
}

func (evt evalTestCase) run(t *testing.T) {
	defer func(then time.Time) {
		label := "PASS"
		if t.Failed() {
			label = "FAIL"
		}
		t.Logf("%v\t%v\t%v", label, t.Name(), time.Since(then))
	}(time.Now())

	// trace logs are only shown for failed tests
	var trace []string
	defer func() {
		if t.Failed() {
			for _, line := range trace {
				t.Log(line)
			}
		}
	}()
	it := evt.build(t, WithLogf(func(mess string, args ...interface{}) {
		trace = append(trace, fmt.Sprintf(mess, args...))
	}))

	const defaultTimeout = time.Second
	timeout := evt.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	defer func() {
		if t.Failed() {
			evt.dumpToTest(t, it)
		}
	}()

	err := it.Run(ctx)
	if cerr := it.Close(); err == nil {
		err = cerr
	}
	switch {
	case evt.wantErr != nil:
		assertErrorMatches(t, evt.wantErr, err)
	case evt.wantErrMess != "":
		assert.EqualError(t, err, evt.wantErrMess)
	default:
		assert.NoError(t, err, "unexpected run error")
	}

	for _, expect := range evt.expect {
		expect(t, it)
	}
}

func (evt evalTestCase) build(t *testing.T, opts ...Option) *Interp {
	var opt Option = Options(opts...)
	for _, o := range evt.opts {
		switch impl := o.(type) {
		case func(evt *evalTestCase, t *testing.T) Option:
			opt = Options(opt, impl(&evt, t))
		case Option:
			opt = Options(opt, impl)
		default:
			t.Logf("unsupported evalTestCase opt type %T", o)
			t.FailNow()
		}
	}
	return New(opt)
}

func (evt evalTestCase) dumpToTest(t *testing.T, it *Interp) {
	lw := logio.Writer{Logf: t.Logf}
	defer lw.Close()
	envDumper{env: it.Env(), out: &lw}.dump()
}

//// utilities

// assertErrorMatches asserts that err wraps an error of want's type that
// is equal to want.
func assertErrorMatches(t *testing.T, want, err error) bool {
	if !assert.Error(t, err, "expected error: %v", want) {
		return false
	}
	got := reflect.New(reflect.TypeOf(want))
	if !assert.True(t, errors.As(err, got.Interface()), "expected %T error: %v\ngot: %+v", want, want, err) {
		return false
	}
	return assert.Equal(t, want, got.Elem().Interface(), "expected error")
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}
