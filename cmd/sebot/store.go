package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"sebot/internal/config"
	"sebot/internal/docstore"
	"sebot/internal/mongostore"
	"sebot/internal/query"
	"sebot/internal/storage"
)

// openStore opens the configured backend.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (docstore.Store, error) {
	switch cfg.Backend {
	case config.BackendMongo:
		return mongostore.Open(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.MongoTimeout(), logger)
	case config.BackendSQLite:
		if _, err := os.Stat(cfg.SQLite.Path); err != nil {
			return nil, fmt.Errorf("no snapshot at %s (create one with `sebot snapshot create`)", cfg.SQLite.Path)
		}
		db, err := storage.Open(cfg.SQLite.Path, logger)
		if err != nil {
			return nil, err
		}
		return storage.NewSnapshot(db), nil
	case config.BackendMemory:
		m := docstore.NewMemory()
		if cfg.Memory.Seed != "" {
			if err := m.LoadSeedFile(cfg.Memory.Seed); err != nil {
				return nil, err
			}
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// openEngine opens the configured backend and builds a query engine on it.
// Callers close the engine when done.
func openEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*query.Engine, error) {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Backend, err)
	}
	return query.NewEngine(store, logger, query.Options{
		DefaultPageSize: cfg.Query.DefaultPageSize,
		MaxPageSize:     cfg.Query.MaxPageSize,
		ResolverTTL:     cfg.ResolverTTL(),
	}), nil
}
