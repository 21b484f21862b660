// Command fractalbench runs the allocator benchmark workloads with one
// worker cache per goroutine, verifies that no two live blocks overlap and
// that no payload is corrupted, and prints a latency report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pavanmanishd/fractalloc/internal/harness"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ca := newCmdArgs(stderr)
	if err := ca.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	level := slog.LevelInfo
	if ca.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config(ca)
	if err != nil {
		logger.Error("bad arguments", "err", err)
		return 2
	}
	r, err := harness.NewRunner(cfg, logger)
	if err != nil {
		logger.Error("bad arguments", "err", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if ca.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ca.Timeout)
		defer cancel()
	}

	logger.Info("starting", "workloads", ca.Workloads, "sizes", ca.Sizes,
		"workers", cfg.Workers, "rounds", cfg.Rounds, "iterations", cfg.Iterations, "verify", cfg.Verify)
	rep, err := r.Run(ctx)
	if rep != nil {
		if _, werr := rep.WriteTo(stdout); werr != nil {
			logger.Error("writing report", "err", werr)
		}
	}
	if err != nil {
		logger.Error("run failed", "err", err)
		return 1
	}
	return 0
}

func config(ca *cmdArgs) (harness.Config, error) {
	cfg := harness.DefaultConfig()
	var err error
	if cfg.Workloads, err = harness.ParseWorkloads(ca.Workloads); err != nil {
		return cfg, err
	}
	if cfg.Sizes, err = harness.ParseSizes(ca.Sizes); err != nil {
		return cfg, err
	}
	if ca.Workers == 0 {
		return cfg, fmt.Errorf("%w: -c must be positive", harness.ErrConfig)
	}
	cfg.Align = uintptr(ca.Align)
	cfg.Iterations = int(ca.Iter)
	cfg.Rounds = int(ca.Rounds)
	cfg.Workers = int(ca.Workers)
	cfg.Seed = ca.Seed
	cfg.PageLimit = int(ca.Pages)
	cfg.Verify = !ca.NoVerify
	return cfg, nil
}
