package app

import (
	"context"
	"fmt"

	"github.com/samvad-hq/wire-scout/internal/config"
	"github.com/samvad-hq/wire-scout/internal/logger"
	"github.com/samvad-hq/wire-scout/internal/storage"
)

// OpenStore creates the configured article store.
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (storage.Store, error) {
	store, err := storage.NewStore(ctx, storage.Options{
		Type:          cfg.StorageType,
		Mode:          cfg.IngestMode,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
		BBoltPath:     cfg.BBoltPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	meta := map[string]any{
		"type":        cfg.StorageType,
		"ingest_mode": cfg.IngestMode,
	}
	switch cfg.StorageType {
	case storage.TypeBBolt:
		meta["path"] = cfg.BBoltPath
	case storage.TypeMongo, "":
		meta["database"] = cfg.MongoDatabase
	}
	logger.Ensure(log).InfoObj("storage initialized", "storage_config", meta)
	return store, nil
}

// CloseStore closes store, logging any error.
func CloseStore(ctx context.Context, store storage.Store, log logger.Logger) {
	if store == nil {
		return
	}
	if err := store.Close(ctx); err != nil {
		logger.Ensure(log).ErrorObj("storage close failed", "error", err.Error())
	}
}
