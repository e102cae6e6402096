package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/app"
	"github.com/joseph-ayodele/cropcatalog/internal/common"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
	"github.com/joseph-ayodele/cropcatalog/internal/export"
	"github.com/joseph-ayodele/cropcatalog/internal/ingest"
	"github.com/joseph-ayodele/cropcatalog/internal/persist"
	"github.com/joseph-ayodele/cropcatalog/internal/repository"
)

// summary is printed to stdout, one JSON object per document.
type summary struct {
	ID            uuid.UUID                `json:"id"`
	Name          string                   `json:"name"`
	Kind          constants.DocumentKind   `json:"kind"`
	Status        constants.DocumentStatus `json:"status"`
	Source        constants.RecordSource   `json:"source,omitempty"`
	Method        string                   `json:"method,omitempty"`
	Records       []entity.ExtractedRecord `json:"records"`
	Error         string                   `json:"error,omitempty"`
	Persisted     []string                 `json:"persisted,omitempty"`
	PersistFailed []persistFailure         `json:"persistFailed,omitempty"`
}

func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		doPersist = flag.Bool("persist", false, "save records of completed documents to the configured store")
		out       = flag.String("export", "", "write an XLSX review workbook to this path")
		workers   = flag.Int("workers", 0, "documents processed concurrently (default PROCESS_WORKERS)")
		exts      = flag.String("ext", "", "comma-separated extensions to pick up from directories (default all)")
	)
	flag.Usage = func() {
		printError("usage: ingest [-persist] [-export out.xlsx] [-workers N] FILE|DIR...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if *workers > 0 {
		cfg.Pipeline.Workers = *workers
	}
	cfg.Pipeline.Workers = max(cfg.Pipeline.Workers, 1)
	// stdout carries the summaries
	logger := common.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("app.init.failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	opts := []ingest.Option{ingest.WithMaxBytes(cfg.Pipeline.MaxUploadBytes)}
	if *exts != "" {
		opts = append(opts, ingest.WithExtensions(splitList(*exts)...))
	}
	ingestor := ingest.NewFSIngestor(a.Registry, logger, opts...)

	var ids []uuid.UUID
	failedIntake := 0
	for _, path := range flag.Args() {
		results, err := ingestPath(ctx, ingestor, path)
		if err != nil {
			logger.Error("ingest.failed", "path", path, "error", err)
			failedIntake++
			continue
		}
		for _, r := range results {
			switch {
			case r.Err != "":
				failedIntake++
			case !r.Deduplicated:
				ids = append(ids, r.DocumentID)
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Pipeline.Workers)
	for _, id := range ids {
		g.Go(func() error {
			if err := a.Registry.Process(gctx, id); err != nil {
				logger.Warn("document.process.failed", "doc_id", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	persisted := map[uuid.UUID]persistReport{}
	if *doPersist {
		persisted, err = persistAll(ctx, cfg, a, ids, logger)
		if err != nil {
			logger.Error("persist.failed", "error", err)
			os.Exit(1)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	failed := failedIntake
	for _, id := range ids {
		doc, err := a.Registry.Get(id)
		if err != nil {
			continue
		}
		report := persisted[id]
		if doc.Status != constants.StatusCompleted || len(report.Failed) > 0 {
			failed++
		}
		_ = enc.Encode(summary{
			ID:        doc.ID,
			Name:      doc.Name,
			Kind:      doc.Kind,
			Status:    doc.Status,
			Source:    doc.Source,
			Method:    doc.ExtractionMethod,
			Records:   doc.ExtractedRecords,
			Error:     doc.Error,
			Persisted:     report.IDs,
			PersistFailed: report.Failed,
		})
	}

	if *out != "" {
		data, err := export.NewService(a.Registry, logger).ExportXLSX(ctx)
		if err != nil {
			logger.Error("export.failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			logger.Error("export.write.failed", "path", *out, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("ingest.done", "documents", len(ids), "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func ingestPath(ctx context.Context, in *ingest.FSIngestor, path string) ([]ingest.IngestionResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		results, _, err := in.IngestDirectory(ctx, path)
		return results, err
	}
	r, err := in.IngestPath(ctx, path)
	if err != nil {
		return nil, err
	}
	return []ingest.IngestionResult{r}, nil
}

func persistAll(ctx context.Context, cfg *common.Config, a *app.App, ids []uuid.UUID, logger *slog.Logger) (map[uuid.UUID]persistReport, error) {
	store, closeStore, err := repository.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	p := persist.NewAdapter(store, logger, persist.WithConcurrency(cfg.Pipeline.PersistConcurrency))
	out := make(map[uuid.UUID]persistReport, len(ids))
	for _, id := range ids {
		outcomes, err := p.PersistDocument(ctx, a.Registry, id)
		if err != nil {
			logger.Warn("persist.document.skipped", "doc_id", id, "error", err)
			continue
		}
		report := newPersistReport(outcomes)
		for _, f := range report.Failed {
			logger.Error("persist.record.failed", "doc_id", id, "index", f.Index, "error", f.Error)
		}
		out[id] = report
	}
	return out, nil
}
