package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/app"
	"github.com/joseph-ayodele/cropcatalog/internal/async"
	"github.com/joseph-ayodele/cropcatalog/internal/common"
	"github.com/joseph-ayodele/cropcatalog/internal/ingest"
	"github.com/joseph-ayodele/cropcatalog/internal/persist"
	"github.com/joseph-ayodele/cropcatalog/internal/registry"
	"github.com/joseph-ayodele/cropcatalog/internal/repository"
	"github.com/joseph-ayodele/cropcatalog/internal/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("config.invalid", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("app.init.failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	store, closeStore, err := repository.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("store.open.failed", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	persister := persist.NewAdapter(store, logger, persist.WithConcurrency(cfg.Pipeline.PersistConcurrency))

	events, unsubscribe := a.Registry.Subscribe()
	defer unsubscribe()
	go logEvents(events, logger)

	// no review surface in the daemon, so completed documents go straight to the store
	queue := async.NewProcessorQueue(a.Registry, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
		async.WithOnDone(func(job async.Job, err error) {
			if err != nil {
				return
			}
			outcomes, err := persister.PersistDocument(context.WithoutCancel(ctx), a.Registry, job.DocumentID)
			if err != nil {
				logger.Warn("persist.document.skipped", "doc_id", job.DocumentID, "error", err)
				return
			}
			logger.Info("persist.document.done", "doc_id", job.DocumentID, "records", len(outcomes))
		}),
	)

	health := server.NewHealth(a.Adapter, logger)
	go health.Run(ctx, cfg.LLM.ProbeInterval)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("grpc.listen.failed", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	srv := server.New(health, logger)
	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc.serve.failed", "error", err)
			stop()
		}
	}()

	if dir := cfg.Server.IngestDir; dir != "" {
		go ingestDir(ctx, dir, a.Registry, queue, cfg.Pipeline.MaxUploadBytes, logger)
	}

	<-ctx.Done()
	logger.Info("shutdown.start")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	srv.Stop()
	logger.Info("shutdown.done")
}

func ingestDir(ctx context.Context, dir string, reg *registry.Registry, q async.Queue, maxBytes int64, logger *slog.Logger) {
	in := ingest.NewFSIngestor(reg, logger, ingest.WithMaxBytes(maxBytes))
	results, stats, err := in.IngestDirectory(ctx, dir)
	if err != nil {
		logger.Error("ingest.dir.failed", "dir", dir, "error", err)
	}
	for _, r := range results {
		if r.Err != "" || r.Deduplicated {
			continue
		}
		if err := q.Enqueue(ctx, async.Job{DocumentID: r.DocumentID}); err != nil {
			logger.Warn("queue.enqueue.failed", "doc_id", r.DocumentID, "error", err)
		}
	}
	logger.Info("ingest.dir.queued", "dir", dir, "succeeded", stats.Succeeded, "failed", stats.Failed)
}

func logEvents(events <-chan registry.Event, logger *slog.Logger) {
	for ev := range events {
		level := slog.LevelDebug
		if ev.Status.Terminal() || ev.Discarded {
			level = slog.LevelInfo
		}
		if ev.Status == constants.StatusFailed {
			level = slog.LevelWarn
		}
		logger.Log(context.Background(), level, "document.event",
			"doc_id", ev.DocumentID,
			"file", ev.Name,
			"status", ev.Status,
			"progress", ev.Progress,
			"stage", ev.Stage,
			"run", ev.Run)
	}
}
