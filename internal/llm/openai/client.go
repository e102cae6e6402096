package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cropcatalog/internal/entity"
	"github.com/joseph-ayodele/cropcatalog/internal/llm"
)

var _ llm.Backend = (*Client)(nil)

// ExtractRecords implements llm.RecordExtractor using text-only chat/completions in JSON mode.
func (c *Client) ExtractRecords(ctx context.Context, req llm.ExtractRequest) ([]entity.ExtractedRecord, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Debug("llm.openai.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Content),
		"kind", req.DocumentKind,
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt()},
			{"role": "user", "content": llm.BuildUserPrompt(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": llm.SchemaPrompt()},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, _, err := llm.SendJSON(ctx, c.httpClient, endpoint, body, c.headers(), c.log)
	if err != nil {
		return nil, raw, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, raw, fmt.Errorf("%w: decode openai response: %v", llm.ErrMalformed, err)
	}
	if len(cc.Choices) == 0 {
		return nil, raw, fmt.Errorf("%w: no choices in openai response", llm.ErrMalformed)
	}

	records, cleaned, err := llm.DecodeRecords([]byte(cc.Choices[0].Message.Content), req, c.log)
	if err != nil {
		c.log.Error("llm.openai.extract.decode_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, cleaned, err
	}

	c.log.Debug("llm.openai.extract.ok",
		"req_id", rid,
		"records", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return records, cleaned, nil
}

// Ping lists models, which needs a valid key but spends no tokens.
func (c *Client) Ping(ctx context.Context) error {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/models"
	_, _, err := llm.Do(ctx, c.httpClient, http.MethodGet, endpoint, nil, c.headers(), c.log)
	return err
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
}
