// Command reports runs the batch reports against the configured database
// profile. Each subcommand produces one report; "all" runs every report in
// order and keeps going when one of them fails.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/srbenoit/mathops-db-sub010/internal/app"
	"github.com/srbenoit/mathops-db-sub010/pkg/config"
	"github.com/srbenoit/mathops-db-sub010/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(bootstrap).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads the profile selected by MATHOPS_PROFILE and connects to it.
func bootstrap(ctx context.Context) (*runner, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := app.New(ctx, cfg, logr)
	if err != nil {
		_ = logr.Sync()
		return nil, nil, err
	}
	cleanup := func() {
		a.Close()
		_ = logr.Sync()
	}
	r := &runner{
		reports: a.Exports,
		term:    cfg.Reports.Term,
		format:  cfg.Reports.Format,
		logger:  logr,
	}
	return r, cleanup, nil
}
