package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nrfta/admin-go/internal/cli"
	"github.com/nrfta/admin-go/internal/config"
	"github.com/nrfta/admin-go/internal/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return cli.ExitCommandError
	}

	logger, err := log.NewLogger(cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to create logger:", err)
		return cli.ExitCommandError
	}
	defer logger.Sync() //nolint:errcheck

	deps, err := cli.NewDeps(cfg, logger, prometheus.NewRegistry())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return cli.ExitCommandError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand(deps).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
