package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samvad-hq/wire-scout/internal/app"
	"github.com/samvad-hq/wire-scout/internal/config"
	"github.com/samvad-hq/wire-scout/internal/logger"
	"github.com/samvad-hq/wire-scout/internal/metrics"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand() *cobra.Command {
	var (
		addr        string
		crawl       bool
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the article query API, optionally crawling in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop, cfg, log, err := bootstrap(func(c *config.Config) {
				if cmd.Flags().Changed("addr") {
					c.APIAddr = addr
				}
				if cmd.Flags().Changed("concurrency") {
					c.CrawlConcurrency = concurrency
				}
			})
			if err != nil {
				return err
			}
			defer stop()
			defer logger.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			m := metrics.New(reg)

			store, err := app.OpenStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer app.CloseStore(context.Background(), store, log)

			g, gctx := errgroup.WithContext(ctx)
			server := app.NewServer(cfg.APIAddr, store, m, reg, log)
			g.Go(func() error { return server.Run(gctx) })

			if crawl {
				harvester, err := app.NewHarvester(gctx, cfg, store, m, log)
				if err != nil {
					stop()
					_ = g.Wait()
					return fmt.Errorf("init harvester: %w", err)
				}
				defer harvester.Close()
				g.Go(func() error { return harvester.Run(gctx) })
			}

			return g.Wait()
		},
	}

	f := cmd.Flags()
	f.StringVarP(&addr, "addr", "a", ":8000", "Listen address (overrides API_ADDR)")
	f.BoolVar(&crawl, "crawl", false, "Run the crawl loop alongside the API")
	f.IntVarP(&concurrency, "concurrency", "c", 0, "Number of concurrent page workers (overrides CRAWL_CONCURRENCY)")
	return cmd
}
