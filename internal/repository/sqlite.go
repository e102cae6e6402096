package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/cropcatalog/internal/common"
	"github.com/joseph-ayodele/cropcatalog/internal/persist"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS catalog_entries (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	scientific_name  TEXT,
	category         TEXT,
	attributes       TEXT NOT NULL DEFAULT '{}',
	confidence_score REAL NOT NULL,
	source_document  TEXT,
	notes            TEXT,
	created_at       TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteStore keeps the catalog in a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the database at dsn and ensures the schema.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %w", common.ErrDatabase, err)
	}
	// one writer avoids SQLITE_BUSY under concurrent saves
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create schema: %w", common.ErrDatabase, err)
	}
	return &SQLiteStore{db: db, logger: logger.With("store", "sqlite")}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, e persist.CatalogEntry) (string, error) {
	attrs, err := json.Marshal(orEmpty(e.Attributes))
	if err != nil {
		return "", fmt.Errorf("%w: encode attributes: %w", common.ErrDatabase, err)
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO catalog_entries (id, name, scientific_name, category, attributes, confidence_score, source_document, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, e.Name, nullable(e.ScientificName), nullable(e.Category), string(attrs),
		e.ConfidenceScore, nullable(e.SourceDocument), nullable(e.Notes))
	if err != nil {
		s.logger.Error("store.save.failed", "name", e.Name, "error", err)
		return "", fmt.Errorf("%w: insert catalog entry: %w", common.ErrDatabase, err)
	}
	return id, nil
}

// Get loads one entry by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (persist.CatalogEntry, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT name, scientific_name, category, attributes, confidence_score, source_document, notes
FROM catalog_entries WHERE id = ?`, id)

	var (
		e                    persist.CatalogEntry
		sci, cat, src, notes sql.NullString
		attrs                string
	)
	if err := row.Scan(&e.Name, &sci, &cat, &attrs, &e.ConfidenceScore, &src, &notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persist.CatalogEntry{}, fmt.Errorf("%w: catalog entry %s", common.ErrNotFound, id)
		}
		return persist.CatalogEntry{}, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	e.ScientificName, e.Category, e.SourceDocument, e.Notes = sci.String, cat.String, src.String, notes.String
	if err := json.Unmarshal([]byte(attrs), &e.Attributes); err != nil {
		return persist.CatalogEntry{}, fmt.Errorf("%w: decode attributes: %w", common.ErrDatabase, err)
	}
	if len(e.Attributes) == 0 {
		e.Attributes = nil
	}
	return e, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
