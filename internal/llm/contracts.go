package llm

import (
	"context"

	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

// ExtractRequest is the wire shape sent to a model: the extracted content plus
// the hints needed to interpret it.
type ExtractRequest struct {
	Content      string                 `json:"content"`
	DocumentKind constants.DocumentKind `json:"documentKind"`
	FileName     string                 `json:"fileName"`
}

// RecordExtractor is the interface our pipeline depends on.
type RecordExtractor interface {
	ExtractRecords(ctx context.Context, req ExtractRequest) ([]entity.ExtractedRecord, []byte /*rawJSON*/, error)
}

// Pinger is the lightweight connectivity probe, separate from extraction.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Backend is a concrete model provider.
type Backend interface {
	RecordExtractor
	Pinger
	Name() string
}
