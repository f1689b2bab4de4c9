package main

import (
	"io"

	"github.com/jcorbin/minilisp/internal/flushio"
)

// Option configures an Interp.
type Option interface{ apply(it *Interp) }

// Options combines any number of options into one, applied in order.
func Options(opts ...Option) Option {
	var all options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			all = append(all, impl...)
		default:
			all = append(all, opt)
		}
	}
	if len(all) == 1 {
		return all[0]
	}
	return all
}

type options []Option

func (opts options) apply(it *Interp) {
	for _, opt := range opts {
		opt.apply(it)
	}
}

// WithInput queues r to be read after any previously given input.
// If r implements io.Closer, it is closed once fully read.
func WithInput(r io.Reader) Option { return inputOption{r} }

// WithOutput directs program output, flushing any prior output stream; an
// error from that flush is returned by Close.
func WithOutput(w io.Writer) Option { return outputOption{w} }

// WithTee copies program output to w, in addition to the current output.
func WithTee(w io.Writer) Option { return teeOption{w} }

// WithLogf enables trace logging of evaluation through logfn.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

// WithMaxDepth limits procedure call nesting; zero means no limit.
func WithMaxDepth(limit int) Option { return maxDepthOption(limit) }

// WithEnv evaluates in env, rather than a new standard environment.
func WithEnv(env *Env) Option { return envOption{env} }

type inputOption struct{ io.Reader }
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type withLogfn func(mess string, args ...interface{})
type maxDepthOption int
type envOption struct{ *Env }

func (i inputOption) apply(it *Interp) {
	it.in.Queue = append(it.in.Queue, i.Reader)
}

func (o outputOption) apply(it *Interp) {
	if it.out != nil {
		if err := it.out.Flush(); it.outErr == nil {
			it.outErr = err
		}
	}
	it.out = flushio.NewWriteFlusher(o.Writer)
	it.ev.out = it.out
}

func (o teeOption) apply(it *Interp) {
	it.out = flushio.Tee(it.out, flushio.NewWriteFlusher(o.Writer))
	it.ev.out = it.out
}

func (logfn withLogfn) apply(it *Interp) {
	it.ev.logfn = logfn
}

func (limit maxDepthOption) apply(it *Interp) {
	it.ev.MaxDepth = int(limit)
}

func (o envOption) apply(it *Interp) {
	it.global = o.Env
}
