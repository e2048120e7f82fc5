// Package vectorstore opens the configured catalog store.
package vectorstore

import (
	"context"
	"fmt"

	"appsearch/internal/config"
	"appsearch/internal/domain"
	"appsearch/internal/vectorstore/memory"
	"appsearch/internal/vectorstore/postgres"
	"appsearch/internal/vectorstore/sqlite"
)

// Open returns the store selected by cfg, sized for vectors of dimension.
func Open(ctx context.Context, cfg config.StoreConfig, dimension int) (domain.Store, error) {
	switch cfg.Type {
	case "postgres":
		dsn := cfg.ResolveDSN()
		if dsn == "" {
			return nil, fmt.Errorf("store: no connection string (set %s or store.dsn)", cfg.DSNEnv)
		}
		s, err := postgres.Open(ctx, dsn, dimension, cfg.EnsureSchema)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		dsn := cfg.ResolveDSN()
		if dsn == "" {
			dsn = "appsearch.db"
		}
		s, err := sqlite.Open(ctx, dsn, dimension, cfg.EnsureSchema)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		s, err := memory.NewStorage(dimension)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store: %s", cfg.Type)
	}
}
