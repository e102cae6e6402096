// Package extract turns raw upload bytes into a text rendering for record extraction.
// Each DocumentKind has an ordered chain of strategies; the first usable result wins
// and a descriptive placeholder closes every chain, so Extract never fails.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

type Extractor struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.RWMutex
	chains map[constants.DocumentKind][]Strategy
}

// New builds an Extractor with the default chain for every kind. OCR joins the
// image chain only when cfg.TesseractBin is set.
func New(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRunes <= 0 {
		cfg.MaxRunes = defaultMaxRunes
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = 60 * time.Second
	}
	if cfg.Runner == nil {
		cfg.Runner = execRunner{logger: logger}
	}

	image := []Strategy{}
	if cfg.TesseractBin != "" {
		image = append(image, tesseractOCR{cfg: cfg, runner: cfg.Runner})
	}

	return &Extractor{
		cfg:    cfg,
		logger: logger,
		chains: map[constants.DocumentKind][]Strategy{
			constants.KindText:          {utf8Text{}},
			constants.KindTabular:       {csvTable{}, utf8Text{}},
			constants.KindSpreadsheet:   {xlsxSheets{}},
			constants.KindWordProcessor: {officeXML{}},
			constants.KindImage:         image,
			constants.KindOther:         {pdfPages{}, directDecode{}, chunkedDecode{}},
		},
	}
}

// SetChain replaces the strategy chain for kind.
func (e *Extractor) SetChain(kind constants.DocumentKind, strategies ...Strategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chains[kind] = strategies
}

// Extract runs the chain for kind. The returned Text is never empty.
func (e *Extractor) Extract(ctx context.Context, kind constants.DocumentKind, file entity.RawFile) Result {
	start := time.Now()
	e.mu.RLock()
	chain := e.chains[kind]
	e.mu.RUnlock()

	var warnings []string
	reason := "no reader for this format"
	if len(file.Data) == 0 {
		reason = "the file is empty"
	}

	for _, s := range chain {
		if err := ctx.Err(); err != nil {
			warnings = append(warnings, "extraction interrupted: "+err.Error())
			reason = "extraction was interrupted"
			break
		}
		text, ok, panicked := e.try(ctx, s, file)
		if panicked != "" {
			warnings = append(warnings, panicked)
			continue
		}
		if !ok {
			warnings = append(warnings, s.Name()+": no usable text")
			continue
		}
		if v, ok := s.(verbatim); ok && v.Verbatim() {
			text = strings.TrimPrefix(text, "\ufeff")
			if strings.TrimSpace(text) == "" {
				text = ""
			}
		} else {
			text = Normalize(text)
		}
		if text == "" {
			warnings = append(warnings, s.Name()+": empty after normalization")
			continue
		}
		if cut, truncated := truncateRunes(text, e.cfg.MaxRunes); truncated {
			text = cut
			warnings = append(warnings, fmt.Sprintf("content truncated to %d characters", e.cfg.MaxRunes))
		}
		degraded := false
		if l, ok := s.(lossy); ok && l.Lossy() {
			degraded = true
		}
		e.logger.Debug("extract.content.ok",
			"file", file.Name,
			"kind", kind,
			"method", s.Name(),
			"degraded", degraded,
			"chars", len(text),
			"elapsed_ms", time.Since(start).Milliseconds())
		return Result{Text: text, Method: s.Name(), Degraded: degraded, Warnings: warnings}
	}
	if len(chain) > 0 && len(file.Data) > 0 && reason == "no reader for this format" {
		reason = "every reader failed"
	}

	e.logger.Info("extract.content.placeholder",
		"file", file.Name,
		"kind", kind,
		"reason", reason,
		"elapsed_ms", time.Since(start).Milliseconds())
	return Result{
		Text:     Placeholder(kind, file.Name, reason),
		Method:   PlaceholderMethod,
		Degraded: true,
		Warnings: warnings,
	}
}

// try runs one strategy, turning a panic into a warning.
func (e *Extractor) try(ctx context.Context, s Strategy, file entity.RawFile) (text string, ok bool, panicked string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("extract.strategy.panic", "strategy", s.Name(), "file", file.Name, "panic", r)
			text, ok = "", false
			panicked = fmt.Sprintf("%s: recovered from panic: %v", s.Name(), r)
		}
	}()
	text, ok = s.Extract(ctx, file)
	return text, ok, ""
}
