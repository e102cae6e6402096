package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/cropcatalog/internal/classify"
	"github.com/joseph-ayodele/cropcatalog/internal/common"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
	"github.com/joseph-ayodele/cropcatalog/internal/extract"
)

// extracttext prints the content a document would hand to the AI step.
func main() {
	asJSON := flag.Bool("json", false, "print the full result as JSON")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: extracttext [-json] FILE")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stderr, cfg.LogLevel)

	path := flag.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read.failed", "path", path, "error", err)
		os.Exit(1)
	}
	file := entity.RawFile{Name: filepath.Base(path), Size: int64(len(data)), Data: data}
	kind := classify.Sniff(file.Name, data)

	ctx, cancel := common.WithTimeout(context.Background(), cfg.Pipeline.ProcessTimeout)
	defer cancel()
	ex := extract.New(extract.Config{
		TesseractBin: cfg.OCR.TesseractBin,
		TessdataDir:  cfg.OCR.TessdataDir,
		Lang:         cfg.OCR.Lang,
		OCRTimeout:   cfg.OCR.Timeout,
	}, logger)
	res := ex.Extract(ctx, kind, file)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(struct {
			Kind string `json:"kind"`
			extract.Result
		}{string(kind), res})
		return
	}
	logger.Info("extract.done", "kind", kind, "method", res.Method, "degraded", res.Degraded)
	fmt.Println(res.Text)
}
