package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/cropcatalog/internal/common"
	"github.com/joseph-ayodele/cropcatalog/internal/persist"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS catalog_entries (
	id               UUID PRIMARY KEY,
	name             TEXT NOT NULL,
	scientific_name  TEXT,
	category         TEXT,
	attributes       JSONB NOT NULL DEFAULT '{}'::jsonb,
	confidence_score DOUBLE PRECISION NOT NULL,
	source_document  TEXT,
	notes            TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore writes catalog entries to a catalog_entries table.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresStore(pool *pgxpool.Pool, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: logger.With("store", "postgres")}
}

// EnsureSchema creates the catalog table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("%w: create schema: %w", common.ErrDatabase, err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, e persist.CatalogEntry) (string, error) {
	id := uuid.New()
	attrs := e.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO catalog_entries (id, name, scientific_name, category, attributes, confidence_score, source_document, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, e.Name, nullable(e.ScientificName), nullable(e.Category), attrs,
		e.ConfidenceScore, nullable(e.SourceDocument), nullable(e.Notes))
	if err != nil {
		s.logger.Error("store.save.failed", "name", e.Name, "error", err)
		return "", fmt.Errorf("%w: insert catalog entry: %w", common.ErrDatabase, err)
	}
	return id.String(), nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
