package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/joseph-ayodele/cropcatalog/internal/common"
	"github.com/joseph-ayodele/cropcatalog/internal/persist"
	"github.com/joseph-ayodele/cropcatalog/internal/repository"
)

// dbhealth opens the configured catalog store. With DBHEALTH_WRITE=1 it also
// saves a probe entry.
func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	store, closeStore, err := repository.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("dbhealth.open.failed", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	if os.Getenv("DBHEALTH_WRITE") == "1" {
		id, err := store.Save(ctx, persist.CatalogEntry{
			Name:            "dbhealth probe",
			ConfidenceScore: 0,
			Notes:           "written by dbhealth at " + time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			logger.Error("dbhealth.write.failed", "error", err)
			os.Exit(1)
		}
		logger.Info("dbhealth.write.ok", "id", id)
	}
	logger.Info("dbhealth.ok", "driver", cfg.Database.Driver)
}
