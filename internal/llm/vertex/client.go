// Package vertex is the Gemini-on-Vertex-AI extraction backend.
package vertex

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/cropcatalog/internal/entity"
	"github.com/joseph-ayodele/cropcatalog/internal/llm"
)

// Config selects the project, region and model.
type Config struct {
	ProjectID   string
	Region      string
	Model       string // default gemini-1.5-pro
	Temperature float32
}

type Client struct {
	cfg   Config
	base  *genai.Client
	model *genai.GenerativeModel
	log   *slog.Logger
}

var _ llm.Backend = (*Client)(nil)

// NewClient dials Vertex AI and configures a JSON-mode model with the extraction prompt.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.ProjectID == "" || cfg.Region == "" {
		return nil, fmt.Errorf("vertex: projectID and region cannot be empty")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-pro"
	}
	if logger == nil {
		logger = slog.Default()
	}

	base, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	model := base.GenerativeModel(cfg.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(llm.BuildSystemPrompt() + "\n\n" + llm.SchemaPrompt())},
	}
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](cfg.Temperature),
	}

	return &Client{cfg: cfg, base: base, model: model, log: logger.With("backend", "vertex")}, nil
}

func (c *Client) Name() string { return "vertex" }

// ExtractRecords implements llm.RecordExtractor.
func (c *Client) ExtractRecords(ctx context.Context, req llm.ExtractRequest) ([]entity.ExtractedRecord, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	resp, err := c.model.GenerateContent(ctx, genai.Text(llm.BuildUserPrompt(req)))
	if err != nil {
		return nil, nil, fmt.Errorf("vertex generate: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return nil, nil, fmt.Errorf("%w: empty vertex response", llm.ErrMalformed)
	}

	records, cleaned, err := llm.DecodeRecords([]byte(text), req, c.log)
	if err != nil {
		c.log.Error("llm.vertex.extract.decode_failed", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, cleaned, err
	}
	c.log.Debug("llm.vertex.extract.ok", "req_id", rid, "records", len(records),
		"elapsed_ms", time.Since(start).Milliseconds())
	return records, cleaned, nil
}

// Ping counts tokens for a trivial prompt, which authenticates without generating.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.model.CountTokens(ctx, genai.Text("ping")); err != nil {
		return fmt.Errorf("vertex count tokens: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	if c.base != nil {
		return c.base.Close()
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}
