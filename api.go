package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jcorbin/minilisp/internal/flushio"
	"github.com/jcorbin/minilisp/internal/panicerr"
)

// Interp is an interpreter session: its input queue, its output stream, an
// Evaluator, and the global environment that top-level forms are evaluated in.
// The session shares its Evaluator's trace logging.
type Interp struct {
	ioCore
	ev     Evaluator
	global *Env
}

// New creates an interpreter; without options it reads no input, discards
// output, and evaluates in a new standard environment.
func New(opts ...Option) *Interp {
	var it Interp
	it.logging = &it.ev.logging
	Options(opts...).apply(&it)
	if it.out == nil {
		it.out = flushio.Discard
		it.ev.out = it.out
	}
	if it.global == nil {
		it.global = NewStandardEnv()
	}
	return &it
}

// Env returns the global environment.
func (it *Interp) Env() *Env { return it.global }

// Reset discards every global definition by starting a new standard
// environment.
func (it *Interp) Reset() { it.global = NewStandardEnv() }

// Run reads all queued input, then evaluates each form in order. The first
// parse or evaluation error stops the run and is returned, annotated with
// the location of the failed form; output from earlier forms is kept.
func (it *Interp) Run(ctx context.Context) error {
	err := panicerr.Recover("interp", func() error {
		it.run(ctx)
		return nil
	})
	var halted haltError
	if errors.As(err, &halted) {
		err = halted.error
	}
	return err
}

func (it *Interp) run(ctx context.Context) {
	forms, err := NewReader(&it.in).ReadAll()
	it.haltif(err)
	_, err = it.evalForms(ctx, forms)
	it.halt(err)
}

// EvalString parses and evaluates src, returning the value of each form; the
// name labels locations in any error. Unlike Run, errors are simply returned,
// so that an interactive session can continue after one.
func (it *Interp) EvalString(ctx context.Context, name, src string) ([]Value, error) {
	forms, err := ReadString(name, src)
	if err != nil {
		return nil, err
	}
	vals, err := it.evalForms(ctx, forms)
	if ferr := it.out.Flush(); err == nil {
		err = ferr
	}
	return vals, err
}

func (it *Interp) evalForms(ctx context.Context, forms []Form) ([]Value, error) {
	vals := make([]Value, 0, len(forms))
	for _, form := range forms {
		it.logf("#", "%v %v", form.Loc, form.Expr)
		val, err := it.ev.Eval(ctx, form.Expr, it.global)
		if err != nil {
			return vals, errors.Wrapf(err, "%v", form.Loc)
		}
		vals = append(vals, val)
	}
	return vals, nil
}

// Flush writes out any buffered program output.
func (it *Interp) Flush() error { return it.out.Flush() }
