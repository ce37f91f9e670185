package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/wire-scout/internal/config"
	"github.com/samvad-hq/wire-scout/internal/logger"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wirescout",
		Short:         "Crawl press-release wires and serve the extracted articles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newCrawlCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newDatabaseCommand())
	return cmd
}

// bootstrap loads config, applies flag overrides and starts the logger.
// The returned context is cancelled on SIGINT/SIGTERM.
func bootstrap(override func(*config.Config)) (context.Context, context.CancelFunc, *config.Config, logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if override != nil {
		override(cfg)
	}
	if cfg.CrawlConcurrency <= 0 {
		return nil, nil, nil, nil, fmt.Errorf("concurrency must be at least 1")
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx, stop, cfg, log, nil
}
