package main

import (
	"fmt"
	"strings"

	"github.com/jcorbin/minilisp/internal/fileinput"
	"github.com/jcorbin/minilisp/internal/flushio"
)

type ioCore struct {
	*logging
	in  fileinput.Input
	out flushio.WriteFlusher

	// outErr holds the first error from flushing an output stream that
	// has since been replaced.
	outErr error
}

// Close flushes output, and closes any input not yet fully read. An error
// from flushing a replaced output stream is returned first.
func (core *ioCore) Close() (err error) {
	err = core.outErr
	if core.out != nil {
		if ferr := core.out.Flush(); err == nil {
			err = ferr
		}
	}
	if cerr := core.in.Close(); err == nil {
		err = cerr
	}
	return err
}

// halt stops the interpreter after flushing output; it never returns, but
// panics with a haltError to be recovered by Run.
func (core *ioCore) halt(err error) {
	// ignore any panics while trying to flush output
	func() {
		defer func() { recover() }()
		if core.out != nil {
			if ferr := core.out.Flush(); err == nil {
				err = ferr
			}
		}
	}()

	// ignore any panics while logging
	func() {
		defer func() { recover() }()
		if err == nil {
			core.logf("#", "halt")
		} else {
			core.logf("#", "halt error: %v", err)
		}
	}()

	panic(haltError{err})
}

func (core *ioCore) haltif(err error) {
	if err != nil {
		core.halt(err)
	}
}

type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}
func (err haltError) Unwrap() error { return err.error }

type logging struct {
	logfn func(mess string, args ...interface{})

	markWidth int
}

func (log *logging) withLogPrefix(prefix string) func() {
	logfn := log.logfn
	log.logfn = func(mess string, args ...interface{}) {
		logfn(prefix+mess, args...)
	}
	return func() {
		log.logfn = logfn
	}
}

// logf logs a message under a short mark like ">" or "call"; marks are
// left-padded to the widest one seen so far so that messages line up.
func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log == nil || log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		mark = strings.Repeat(" ", n) + mark
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}
