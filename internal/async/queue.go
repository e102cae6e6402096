package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Job asks for one pipeline run of a registered document.
type Job struct {
	DocumentID  uuid.UUID
	Reprocess   bool
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Processor runs the pipeline for a document. *registry.Registry satisfies it.
type Processor interface {
	Process(ctx context.Context, id uuid.UUID) error
	Reprocess(ctx context.Context, id uuid.UUID) error
}
