package main

import (
	"context"
	"fmt"

	"github.com/samvad-hq/wire-scout/internal/app"
	"github.com/samvad-hq/wire-scout/internal/logger"
	"github.com/samvad-hq/wire-scout/internal/storage"
	"github.com/spf13/cobra"
)

func newDatabaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Prepare storage indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop, cfg, log, err := bootstrap(nil)
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

			indexer, ok := store.(storage.Indexer)
			if !ok {
				log.InfoObj("storage backend has no indexes to prepare", "storage_type", cfg.StorageType)
				return nil
			}
			if err := indexer.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("init-db: %w", err)
			}
			log.InfoObj("storage indexes ready", "storage_type", cfg.StorageType)
			return nil
		},
	}
	return cmd
}
