// Package ingest reads files from disk and uploads them into the document registry.
package ingest

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string                 `json:"sourcePath"`
	DocumentID   uuid.UUID              `json:"documentId"`
	Kind         constants.DocumentKind `json:"kind,omitempty"`
	Size         int64                  `json:"size"`
	HashHex      string                 `json:"sha256,omitempty"`
	Deduplicated bool                   `json:"deduplicated,omitempty"`
	Err          string                 `json:"error,omitempty"`
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32 `json:"scanned"`
	Matched      uint32 `json:"matched"`
	Succeeded    uint32 `json:"succeeded"`
	Deduplicated uint32 `json:"deduplicated"`
	Failed       uint32 `json:"failed"`
}

// Uploader admits raw files. *registry.Registry satisfies it.
type Uploader interface {
	Upload(ctx context.Context, file entity.RawFile) (entity.Document, error)
}

// Ingestor is the behavior the binaries depend on.
type Ingestor interface {
	// IngestPath uploads a single file.
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
	// IngestDirectory uploads every matching file under root.
	IngestDirectory(ctx context.Context, root string) ([]IngestionResult, DirStats, error)
}
