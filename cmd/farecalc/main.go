// README: Command-line front end for the fare engine over a local store.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"farecalc/internal/config"
	"farecalc/internal/messages"
	"farecalc/internal/service"
)

const usage = `usage: farecalc [-v] <command> [flags]

commands:
  calc      -from ADDRESS -to ADDRESS [-profile NAME | -base N -min N -km N -minute N]
  config    show active settings, or save them with -base N -min N -km N -minute N
  profiles  list profiles, or save one with -save NAME -base N -min N -km N -minute N
  select    NAME   apply a profile as the active settings
  history   [-json] list recorded rides, newest first
  clear     remove all recorded rides
`

func main() {
	args := os.Args[1:]
	verbose := false
	if len(args) > 0 && args[0] == "-v" {
		verbose = true
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := zap.NewNop()
	if verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := service.NewEngine(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = run(ctx, engine, cfg.App.Name, args, os.Stdout)
	_ = engine.Close()
	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, messages.Format(cfg.App.Name, messages.ForError(err)))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
