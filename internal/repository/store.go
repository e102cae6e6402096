// Package repository provides the catalog stores behind persist.Store.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/cropcatalog/internal/common"
	"github.com/joseph-ayodele/cropcatalog/internal/persist"
)

// OpenStore builds the store selected by cfg.Driver. The returned close
// function is never nil.
func OpenStore(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (persist.Store, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() {}

	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), noop, nil

	case "postgres":
		pool, err := Open(ctx, cfg, logger)
		if err != nil {
			return nil, noop, err
		}
		if err := HealthCheck(ctx, pool, cfg.DialTimeout, logger); err != nil {
			Close(pool, logger)
			return nil, noop, err
		}
		store := NewPostgresStore(pool, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			Close(pool, logger)
			return nil, noop, err
		}
		return store, func() { Close(pool, logger) }, nil

	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "file:catalog.db"
		}
		store, err := OpenSQLite(ctx, dsn, logger)
		if err != nil {
			return nil, noop, err
		}
		return store, closer(store.Close, logger), nil

	case "firestore":
		store, err := NewFirestoreStore(ctx, cfg.FirestoreProject, cfg.Collection, logger)
		if err != nil {
			return nil, noop, err
		}
		return store, closer(store.Close, logger), nil
	}
	return nil, noop, fmt.Errorf("%w: unknown database driver %q", common.ErrInvalidInput, cfg.Driver)
}

func closer(fn func() error, logger *slog.Logger) func() {
	return func() {
		if err := fn(); err != nil {
			logger.Error("store.close.failed", "error", err)
		}
	}
}
