package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/jcorbin/minilisp/internal/logio"
	"github.com/jcorbin/minilisp/internal/panicerr"
)

func main() {
	ctx := context.Background()

	var log logio.Logger
	log.SetOutput(os.Stderr)
	log.Colors = logio.DefaultColors

	var (
		configPath  string
		timeout     time.Duration
		trace       bool
		maxDepth    int
		interactive bool
		noColor     bool
	)
	flag.StringVar(&configPath, "config", defaultConfigPath(), "load defaults from a YAML file")
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit")
	flag.BoolVar(&trace, "trace", false, "enable trace logging")
	flag.IntVar(&maxDepth, "max-depth", 0, "limit procedure call nesting")
	flag.BoolVar(&interactive, "i", false, "run an interactive session")
	flag.BoolVar(&noColor, "no-color", false, "disable colored output")
	flag.Parse()

	cfg := DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = LoadConfig(configPath); err != nil {
			log.Errorf("%v", err)
			os.Exit(log.ExitCode())
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "timeout":
			cfg.Timeout = timeout
		case "trace":
			cfg.Trace = trace
		case "max-depth":
			cfg.MaxDepth = maxDepth
		case "no-color":
			cfg.NoColor = noColor
		}
	})
	if cfg.NoColor {
		color.NoColor = true
	}

	var opts = []Option{
		WithOutput(os.Stdout),
		WithMaxDepth(cfg.MaxDepth),
	}
	if cfg.Trace {
		opts = append(opts, WithLogf(log.Leveledf("TRACE")))
	}
	for _, name := range flag.Args() {
		f, err := os.Open(name)
		if err != nil {
			log.Errorf("%v", err)
			os.Exit(log.ExitCode())
		}
		opts = append(opts, WithInput(f))
	}
	if flag.NArg() == 0 && !interactive {
		opts = append(opts, WithInput(NamedReader("<stdin>", os.Stdin)))
	}
	it := New(opts...)

	if interactive {
		// evaluate any files first, so their definitions are available
		if flag.NArg() > 0 {
			log.ErrorIf(runWithTimeout(ctx, cfg.Timeout, it))
		}
		if log.ExitCode() == 0 {
			log.ErrorIf(panicerr.Recover("repl", func() error {
				return newREPL(cfg, it).run(ctx)
			}))
		}
	} else {
		log.ErrorIf(runWithTimeout(ctx, cfg.Timeout, it))
	}

	if err := it.Close(); err != nil {
		log.Errorf("%v", err)
	}
	if code := log.ExitCode(); code != 0 {
		os.Exit(code)
	}
}

func runWithTimeout(ctx context.Context, timeout time.Duration, it *Interp) error {
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := it.Run(ctx); err != nil {
		if panicerr.IsPanic(err) {
			return fmt.Errorf("%+v", err)
		}
		return err
	}
	return nil
}
