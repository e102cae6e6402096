package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/cropcatalog/internal/app"
	"github.com/joseph-ayodele/cropcatalog/internal/classify"
	"github.com/joseph-ayodele/cropcatalog/internal/common"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
	"github.com/joseph-ayodele/cropcatalog/internal/extract"
	"github.com/joseph-ayodele/cropcatalog/internal/llm"
)

// llm probes the configured AI backend and, given a file, runs record
// extraction against it a number of times.
func main() {
	times := flag.Int("times", 1, "extraction attempts on the same file")
	flag.Parse()

	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stderr, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	backend, closeBackend, err := app.NewBackend(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Error("llm.init.failed", "error", err)
		os.Exit(1)
	}
	defer closeBackend()
	adapter := llm.NewAdapter(backend, cfg.LLM.Timeout, logger)

	ok := adapter.TestConnection(ctx)
	_, probeErr := adapter.LastProbe()
	logger.Info("llm.probe", "status", adapter.Status(), "error", probeErr)
	if flag.NArg() == 0 {
		if !ok {
			os.Exit(1)
		}
		return
	}

	path := flag.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read.failed", "path", path, "error", err)
		os.Exit(1)
	}
	file := entity.RawFile{Name: filepath.Base(path), Size: int64(len(data)), Data: data}
	kind := classify.Sniff(file.Name, data)
	content := extract.New(extract.Config{
		TesseractBin: cfg.OCR.TesseractBin,
		TessdataDir:  cfg.OCR.TessdataDir,
		Lang:         cfg.OCR.Lang,
		OCRTimeout:   cfg.OCR.Timeout,
	}, logger).Extract(ctx, kind, file)

	enc := json.NewEncoder(os.Stdout)
	for i := 1; i <= max(*times, 1); i++ {
		start := time.Now()
		res := adapter.Extract(ctx, content.Text, kind, file.Name)
		if !res.IsOk() {
			logger.Error("llm.run.failed", "iter", i, "error", res.Err)
			continue
		}
		logger.Info("llm.run.ok", "iter", i, "records", len(res.Records), "elapsed_ms", time.Since(start).Milliseconds())
		_ = enc.Encode(res.Records)
	}
}
