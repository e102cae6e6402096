package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cropcatalog/constants"
)

// Document is one uploaded file and its processing lifecycle.
type Document struct {
	ID               uuid.UUID                `json:"id"`
	Name             string                   `json:"name"`
	Size             int64                    `json:"size"`
	Kind             constants.DocumentKind   `json:"kind"`
	Status           constants.DocumentStatus `json:"status"`
	Progress         int                      `json:"progress"`
	Stage            string                   `json:"stage,omitempty"`
	Run              int                      `json:"run"`
	ExtractedRecords []ExtractedRecord        `json:"extractedRecords"`
	ExtractionMethod string                   `json:"extractionMethod,omitempty"`
	Source           constants.RecordSource   `json:"source,omitempty"`
	Error            string                   `json:"error,omitempty"`
	UploadedAt       time.Time                `json:"uploadedAt"`
	FinishedAt       *time.Time               `json:"finishedAt,omitempty"`
}

// Clone returns a deep copy safe to hand to callers.
func (d Document) Clone() Document {
	out := d
	out.ExtractedRecords = CloneRecords(d.ExtractedRecords)
	if d.FinishedAt != nil {
		t := *d.FinishedAt
		out.FinishedAt = &t
	}
	return out
}
