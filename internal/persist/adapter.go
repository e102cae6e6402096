// Package persist validates extracted records and hands them to a catalog store.
package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/common"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

const defaultConcurrency = 4

// ErrNotCompleted is returned when persisting a document that has not completed.
var ErrNotCompleted = errors.New("document is not completed")

// Store saves one catalog entry and returns its persisted identifier.
type Store interface {
	Save(ctx context.Context, entry CatalogEntry) (string, error)
}

// DocumentSource looks documents up by ID. *registry.Registry satisfies it.
type DocumentSource interface {
	Get(id uuid.UUID) (entity.Document, error)
}

// Outcome is the result of persisting one record of a batch.
type Outcome struct {
	Index int
	ID    string
	Err   error
}

func (o Outcome) OK() bool { return o.Err == nil }

type Adapter struct {
	store       Store
	concurrency int
	logger      *slog.Logger
}

type Option func(*Adapter)

// WithConcurrency bounds the number of concurrent saves in PersistAll.
func WithConcurrency(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

func NewAdapter(store Store, logger *slog.Logger, opts ...Option) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{store: store, concurrency: defaultConcurrency, logger: logger}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Validate checks a record is fit for the catalog.
func Validate(rec entity.ExtractedRecord) error {
	v := common.NewValidator()
	v.Field("name", rec.Name, common.Required, common.MaxLength(200))
	v.Field("confidenceScore", rec.ConfidenceScore, common.Range(0, 1))
	v.Field("growingPeriodDays", rec.GrowingPeriodDays, common.NonNegative)
	return v.Error()
}

// PersistOne validates and saves a single record.
func (a *Adapter) PersistOne(ctx context.Context, rec entity.ExtractedRecord) (string, error) {
	if err := Validate(rec); err != nil {
		a.logger.Warn("persist.validate.failed", "name", rec.Name, "source", rec.SourceDocumentName, "error", err)
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id, err := a.store.Save(ctx, ToCatalogEntry(rec))
	if err != nil {
		a.logger.Error("persist.save.failed", "name", rec.Name, "source", rec.SourceDocumentName, "error", err)
		if errors.Is(err, common.ErrDatabase) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	a.logger.Info("persist.save.ok", "name", rec.Name, "id", id)
	return id, nil
}

// PersistAll saves every record independently and returns one outcome per
// input, in input order. A failure never stops its siblings.
func (a *Adapter) PersistAll(ctx context.Context, recs []entity.ExtractedRecord) []Outcome {
	out := make([]Outcome, len(recs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i := range recs {
		rec := recs[i].Clone()
		g.Go(func() error {
			id, err := a.PersistOne(gctx, rec)
			out[i] = Outcome{Index: i, ID: id, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range out {
		if o.Err != nil {
			failed++
		}
	}
	a.logger.Info("persist.batch.done", "total", len(recs), "failed", failed)
	return out
}

// PersistDocument saves the records of a completed document.
func (a *Adapter) PersistDocument(ctx context.Context, docs DocumentSource, id uuid.UUID) ([]Outcome, error) {
	doc, err := docs.Get(id)
	if err != nil {
		return nil, err
	}
	if doc.Status != constants.StatusCompleted {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotCompleted, id, doc.Status)
	}
	return a.PersistAll(ctx, doc.ExtractedRecords), nil
}
