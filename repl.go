package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
)

// repl runs an interactive session: each complete input is evaluated in the
// same global environment, and errors are reported without ending the
// session.
type repl struct {
	cfg    Config
	it     *Interp
	ln     *liner.State
	stdout io.Writer
	stderr io.Writer

	errColor *color.Color
	valColor *color.Color
}

func newREPL(cfg Config, it *Interp) *repl {
	return &repl{
		cfg:      cfg,
		it:       it,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		errColor: color.New(color.FgRed),
		valColor: color.New(color.FgBlue),
	}
}

func (r *repl) run(ctx context.Context) error {
	r.ln = liner.NewLiner()
	defer r.ln.Close()
	r.ln.SetCtrlCAborts(true)
	r.ln.SetWordCompleter(r.complete)

	histPath := r.cfg.historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = r.ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	for {
		src, ok := r.read()
		if !ok {
			fmt.Fprintln(r.stdout)
			break
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		r.ln.AppendHistory(strings.Join(strings.Fields(src), " "))

		if cmd := strings.TrimSpace(src); strings.HasPrefix(cmd, ":") {
			if done := r.command(cmd); done {
				break
			}
			continue
		}

		r.eval(ctx, src)
	}

	if histPath != "" {
		f, err := os.Create(histPath)
		if err != nil {
			return errors.Wrap(err, "saving history")
		}
		defer f.Close()
		if _, err := r.ln.WriteHistory(f); err != nil {
			return errors.Wrap(err, "saving history")
		}
	}
	return nil
}

func (r *repl) eval(ctx context.Context, src string) {
	if timeout := r.cfg.Timeout; timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	vals, err := r.it.EvalString(ctx, "<repl>", src)
	for _, val := range vals {
		if val != nil {
			r.valColor.Fprintln(r.stdout, val)
		}
	}
	if err != nil {
		r.errColor.Fprintln(r.stderr, err)
	}
}

// read collects lines until they hold complete forms, or until a parse error
// that more input could not fix. Returns false at end of input.
func (r *repl) read() (string, bool) {
	var sb strings.Builder
	for {
		prompt := r.cfg.Prompt
		if sb.Len() > 0 {
			prompt = r.cfg.ContinuePrompt
		}
		line, err := r.ln.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			// Ctrl+C abandons the current input
			return "", true
		} else if err != nil {
			return "", false
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)

		src := sb.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		_, err = ReadString("<repl>", src)
		var perr *ParseError
		if errors.As(err, &perr) && perr.Incomplete {
			continue
		}
		return src, true
	}
}

// command handles :help, :env, :builtins, :reset, and :quit; returns true
// to end the session.
func (r *repl) command(cmd string) (done bool) {
	switch fields := strings.Fields(cmd); fields[0] {
	case ":quit", ":q":
		return true
	case ":env":
		envDumper{env: r.it.Env(), out: r.stdout}.dump()
	case ":builtins":
		envDumper{env: builtinEnv, out: r.stdout, withBuiltins: true}.dump()
	case ":reset":
		r.it.Reset()
		fmt.Fprintln(r.stdout, "environment reset")
	case ":help":
		fmt.Fprintln(r.stdout, strings.Join([]string{
			":env       list global definitions",
			":builtins  list primitives and constants",
			":reset     discard all definitions",
			":quit      end the session",
		}, "\n"))
	default:
		r.errColor.Fprintf(r.stderr, "unknown command %v, try :help\n", fields[0])
	}
	return false
}

// complete offers reserved and globally defined names matching the word
// under the cursor.
func (r *repl) complete(line string, pos int) (head string, completions []string, tail string) {
	head, tail = line[:pos], line[pos:]
	start := strings.LastIndexAny(head, "() \t") + 1
	word := head[start:]
	head = head[:start]
	if word == "" {
		return head, nil, tail
	}

	seen := make(map[Symbol]bool)
	for _, name := range append(reservedNames(), r.it.Env().Names()...) {
		if !seen[name] && strings.HasPrefix(string(name), word) {
			seen[name] = true
			completions = append(completions, string(name))
		}
	}
	sort.Strings(completions)
	return head, completions, tail
}
