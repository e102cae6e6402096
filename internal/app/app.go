// Package app wires the pipeline components from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/cropcatalog/internal/common"
	"github.com/joseph-ayodele/cropcatalog/internal/extract"
	"github.com/joseph-ayodele/cropcatalog/internal/fallback"
	"github.com/joseph-ayodele/cropcatalog/internal/llm"
	"github.com/joseph-ayodele/cropcatalog/internal/llm/openai"
	"github.com/joseph-ayodele/cropcatalog/internal/llm/vertex"
	"github.com/joseph-ayodele/cropcatalog/internal/registry"
)

// App holds the long-lived pipeline components.
type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	Extractor *extract.Extractor
	Adapter   *llm.Adapter
	Registry  *registry.Registry

	closers []func()
}

func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	backend, closeBackend, err := NewBackend(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	ex := extract.New(extract.Config{
		TesseractBin: cfg.OCR.TesseractBin,
		TessdataDir:  cfg.OCR.TessdataDir,
		Lang:         cfg.OCR.Lang,
		OCRTimeout:   cfg.OCR.Timeout,
	}, logger)
	adapter := llm.NewAdapter(backend, cfg.LLM.Timeout, logger)
	reg := registry.New(ex, adapter, fallback.Generate,
		registry.WithLogger(logger),
		registry.WithMaxUploadBytes(cfg.Pipeline.MaxUploadBytes),
		registry.WithProcessTimeout(cfg.Pipeline.ProcessTimeout),
	)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Extractor: ex,
		Adapter:   adapter,
		Registry:  reg,
		closers:   []func(){closeBackend},
	}, nil
}

// Close releases backend clients.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// NewBackend builds the configured AI backend. Provider "none" yields a nil
// backend, so every extraction falls back. The close function is never nil.
func NewBackend(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.Backend, func(), error) {
	noop := func() {}
	switch cfg.Provider {
	case "none", "":
		logger.Warn("llm.disabled", "reason", "LLM_PROVIDER=none; records will come from fallback")
		return nil, noop, nil

	case "openai":
		if cfg.APIKey == "" {
			logger.Warn("llm.disabled", "reason", "OPENAI_API_KEY not set; records will come from fallback")
			return nil, noop, nil
		}
		c := openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
		logger.Info("llm.backend", "provider", "openai", "model", cfg.Model)
		return c, noop, nil

	case "vertex":
		c, err := vertex.NewClient(ctx, vertex.Config{
			ProjectID:   cfg.VertexProject,
			Region:      cfg.VertexRegion,
			Model:       cfg.VertexModel,
			Temperature: cfg.Temperature,
		}, logger)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("llm.backend", "provider", "vertex", "model", cfg.VertexModel)
		return c, func() {
			if err := c.Close(); err != nil {
				logger.Error("llm.close.failed", "error", err)
			}
		}, nil
	}
	return nil, noop, fmt.Errorf("%w: unknown LLM provider %q", common.ErrInvalidInput, cfg.Provider)
}
