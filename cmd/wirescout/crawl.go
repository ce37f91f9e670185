package main

import (
	"context"
	"fmt"

	"github.com/samvad-hq/wire-scout/internal/app"
	"github.com/samvad-hq/wire-scout/internal/config"
	"github.com/samvad-hq/wire-scout/internal/logger"
	"github.com/spf13/cobra"
)

func newCrawlCommand() *cobra.Command {
	var (
		once        bool
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run crawl cycles against the configured sitemap",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop, cfg, log, err := bootstrap(func(c *config.Config) {
				if cmd.Flags().Changed("concurrency") {
					c.CrawlConcurrency = concurrency
				}
			})
			if err != nil {
				return err
			}
			defer stop()
			defer logger.Close()

			store, err := app.OpenStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer app.CloseStore(context.Background(), store, log)

			harvester, err := app.NewHarvester(ctx, cfg, store, nil, log)
			if err != nil {
				return fmt.Errorf("init harvester: %w", err)
			}
			defer harvester.Close()

			if !once {
				return harvester.Run(ctx)
			}

			res, err := harvester.RunOnce(ctx)
			if err != nil {
				return fmt.Errorf("crawl cycle: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: attempted %d, persisted %d, failed %d\n",
				res.RunID, res.Attempted, res.Persisted, len(res.Failures))
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&once, "once", false, "Run a single crawl cycle and exit")
	f.IntVarP(&concurrency, "concurrency", "c", 0, "Number of concurrent page workers (overrides CRAWL_CONCURRENCY)")
	return cmd
}
