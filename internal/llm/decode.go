package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

// DefaultConfidence is assigned when a model omits confidenceScore.
const DefaultConfidence = 0.5

// DecodeRecords turns a model's JSON content into records: sanitize, validate
// against the records schema, unmarshal, then stamp the source document name.
// Every failure wraps ErrMalformed. The sanitized JSON is returned for auditing.
func DecodeRecords(content []byte, req ExtractRequest, logger *slog.Logger) ([]entity.ExtractedRecord, []byte, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cleaned, _, err := NormalizeRecordsJSON(content, logger)
	if err != nil {
		return nil, content, err
	}
	if err := validateRecords(cleaned); err != nil {
		return nil, cleaned, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var envelope struct {
		Records []struct {
			entity.ExtractedRecord
			ConfidenceScore *float64 `json:"confidenceScore"`
		} `json:"records"`
	}
	if err := json.Unmarshal(cleaned, &envelope); err != nil {
		return nil, cleaned, fmt.Errorf("%w: unmarshal records: %v", ErrMalformed, err)
	}

	out := make([]entity.ExtractedRecord, 0, len(envelope.Records))
	for _, r := range envelope.Records {
		rec := r.ExtractedRecord
		rec.ConfidenceScore = DefaultConfidence
		if r.ConfidenceScore != nil {
			rec.ConfidenceScore = *r.ConfidenceScore
		}
		rec.Name = strings.TrimSpace(rec.Name)
		rec.SourceDocumentName = req.FileName
		out = append(out, rec)
	}
	return out, cleaned, nil
}
