package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

// FSIngestor reads from the local filesystem.
type FSIngestor struct {
	uploader   Uploader
	logger     *slog.Logger
	maxBytes   int64
	exts       map[string]struct{}
	skipHidden bool

	mu   sync.Mutex
	seen map[string]uuid.UUID
}

type Option func(*FSIngestor)

// WithExtensions limits directory walks to the given extensions.
func WithExtensions(exts ...string) Option {
	return func(i *FSIngestor) { i.exts = extSet(exts) }
}

// WithMaxBytes skips files larger than n without reading them.
func WithMaxBytes(n int64) Option {
	return func(i *FSIngestor) { i.maxBytes = n }
}

// WithHidden includes dot-files and dot-directories in walks.
func WithHidden() Option {
	return func(i *FSIngestor) { i.skipHidden = false }
}

func NewFSIngestor(uploader Uploader, logger *slog.Logger, opts ...Option) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	i := &FSIngestor{
		uploader:   uploader,
		logger:     logger,
		skipHidden: true,
		seen:       make(map[string]uuid.UUID),
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// IngestPath uploads one file. Identical content ingested twice by the same
// FSIngestor is reported as deduplicated and not uploaded again.
func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	out := IngestionResult{SourcePath: path}

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, err
	}
	out.SourcePath = abs

	info, err := os.Stat(abs)
	if err != nil {
		return out, err
	}
	if info.IsDir() {
		return out, fmt.Errorf("%s is a directory", abs)
	}
	out.Size = info.Size()
	if i.maxBytes > 0 && info.Size() > i.maxBytes {
		return out, fmt.Errorf("file is %d bytes, limit %d", info.Size(), i.maxBytes)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		i.logger.Error("ingest.read.failed", "path", abs, "error", err)
		return out, err
	}
	sum := sha256.Sum256(data)
	out.HashHex = hex.EncodeToString(sum[:])

	i.mu.Lock()
	if id, ok := i.seen[out.HashHex]; ok {
		i.mu.Unlock()
		out.DocumentID = id
		out.Deduplicated = true
		i.logger.Info("ingest.dedup", "path", abs, "doc_id", id)
		return out, nil
	}
	i.mu.Unlock()

	doc, err := i.uploader.Upload(ctx, entity.RawFile{
		Name: filepath.Base(abs),
		Size: info.Size(),
		Data: data,
	})
	if err != nil {
		i.logger.Error("ingest.upload.failed", "path", abs, "error", err)
		return out, err
	}

	i.mu.Lock()
	i.seen[out.HashHex] = doc.ID
	i.mu.Unlock()

	out.DocumentID = doc.ID
	out.Kind = doc.Kind
	i.logger.Info("ingest.upload.ok", "path", abs, "doc_id", doc.ID, "kind", doc.Kind, "size", doc.Size)
	return out, nil
}

// IngestDirectory walks root and calls IngestPath for each matching file.
// Per-file failures are recorded and the walk continues.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if i.skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if i.exts != nil {
			if _, ok := i.exts[constants.NormalizeExt(filepath.Ext(path))]; !ok {
				return nil
			}
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path)
		if err != nil {
			r.Err = err.Error()
			results = append(results, r)
			stats.Failed++
			return nil
		}
		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	i.logger.Info("ingest.dir.done",
		"root", root,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed)
	return results, stats, nil
}
