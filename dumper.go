package main

import (
	"fmt"
	"io"
	"strings"
)

// envDumper writes a readable listing of an environment chain, innermost
// frame first.
type envDumper struct {
	env *Env
	out io.Writer

	// withBuiltins lists every builtin binding instead of just counting them.
	withBuiltins bool
}

func (dump envDumper) dump() {
	fmt.Fprintf(dump.out, "# Env Dump\n")
	depth := 0
	for frame := dump.env; frame != nil; frame = frame.outer {
		if frame == builtinEnv && !dump.withBuiltins {
			fmt.Fprintf(dump.out, "# Builtins: %v bindings\n", len(frame.vars))
			continue
		}
		dump.dumpFrame(depth, frame)
		depth++
	}
}

func (dump envDumper) dumpFrame(depth int, frame *Env) {
	switch {
	case frame == builtinEnv:
		fmt.Fprintf(dump.out, "# Builtins\n")
	case frame.outer == builtinEnv:
		fmt.Fprintf(dump.out, "# Global\n")
	default:
		fmt.Fprintf(dump.out, "# Frame %v\n", depth)
	}

	names := frame.Names()
	width := 0
	for _, name := range names {
		if n := len(name); n > width {
			width = n
		}
	}
	for _, name := range names {
		fmt.Fprintf(dump.out, "  %-*v = %v\n", width, name, dump.format(frame.vars[name]))
	}
}

func (dump envDumper) format(val Value) string {
	proc, ok := val.(*Procedure)
	if !ok {
		return describe(val)
	}
	var body []string
	for _, expr := range proc.Body {
		body = append(body, expr.String())
	}
	return fmt.Sprintf("%v %v", proc, strings.Join(body, " "))
}
