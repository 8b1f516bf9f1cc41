// cleantownctl administers the record store behind cleantown-service:
// seeding the administrator account and moving data between the store
// and the client's legacy slot files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cleantownship/cleantown-service/internal/config"
	"github.com/cleantownship/cleantown-service/internal/observability"
	"github.com/cleantownship/cleantown-service/internal/persistence"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctl := &cli{
		cfg:    *cfg,
		logger: logger,
		stdout: os.Stdout,
		open: func(ctx context.Context) (*persistence.Stores, error) {
			return persistence.Open(ctx, *cfg, logger.Named("store"))
		},
	}
	if err := ctl.dispatch(ctx, args); err != nil {
		logger.Debug("command failed", zap.Error(err))
		return err
	}
	return nil
}
