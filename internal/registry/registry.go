package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/classify"
	"github.com/joseph-ayodele/cropcatalog/internal/common"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
	"github.com/joseph-ayodele/cropcatalog/internal/extract"
	"github.com/joseph-ayodele/cropcatalog/internal/llm"
)

const sniffBytes = 512

// ContentExtractor turns raw bytes into text. *extract.Extractor satisfies it.
type ContentExtractor interface {
	Extract(ctx context.Context, kind constants.DocumentKind, file entity.RawFile) extract.Result
}

// RecordExtractor asks a model for records. *llm.Adapter satisfies it.
type RecordExtractor interface {
	Extract(ctx context.Context, content string, kind constants.DocumentKind, fileName string) llm.Result
}

// FallbackFunc produces records when the model is unavailable.
type FallbackFunc func(fileName string) []entity.ExtractedRecord

type entry struct {
	doc    entity.Document
	file   entity.RawFile
	cancel context.CancelFunc
}

// Registry owns every document and drives it through the pipeline.
type Registry struct {
	extractor ContentExtractor
	records   RecordExtractor
	fallback  FallbackFunc
	logger    *slog.Logger

	maxUploadBytes int64
	processTimeout time.Duration
	now            func() time.Time

	mu      sync.RWMutex
	entries map[uuid.UUID]*entry
	order   []uuid.UUID

	subMu sync.Mutex
	subs  map[*subscriber]struct{}
}

type Option func(*Registry)

func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMaxUploadBytes caps accepted uploads; zero or less disables the cap.
func WithMaxUploadBytes(n int64) Option {
	return func(r *Registry) { r.maxUploadBytes = n }
}

// WithProcessTimeout bounds a whole pipeline run; zero or less disables it.
func WithProcessTimeout(d time.Duration) Option {
	return func(r *Registry) { r.processTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

func New(extractor ContentExtractor, records RecordExtractor, fallback FallbackFunc, opts ...Option) *Registry {
	r := &Registry{
		extractor: extractor,
		records:   records,
		fallback:  fallback,
		logger:    slog.Default(),
		now:       time.Now,
		entries:   make(map[uuid.UUID]*entry),
		subs:      make(map[*subscriber]struct{}),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Upload admits a file and returns its document in the uploading state.
func (r *Registry) Upload(_ context.Context, file entity.RawFile) (entity.Document, error) {
	size := file.EffectiveSize()
	if r.maxUploadBytes > 0 && size > r.maxUploadBytes {
		return entity.Document{}, fmt.Errorf("%w: %q is %d bytes, limit %d", ErrTooLarge, file.Name, size, r.maxUploadBytes)
	}
	head := file.Data
	if len(head) > sniffBytes {
		head = head[:sniffBytes]
	}

	doc := entity.Document{
		ID:               uuid.New(),
		Name:             file.Name,
		Size:             size,
		Kind:             classify.Sniff(file.Name, head),
		Status:           constants.StatusUploading,
		ExtractedRecords: []entity.ExtractedRecord{},
		UploadedAt:       r.now(),
	}

	r.mu.Lock()
	r.entries[doc.ID] = &entry{doc: doc, file: file}
	r.order = append(r.order, doc.ID)
	r.publish(r.eventLocked(&doc))
	r.mu.Unlock()

	r.logger.Info("registry.upload",
		"doc_id", doc.ID,
		"file", doc.Name,
		"size", doc.Size,
		"kind", doc.Kind)
	return doc.Clone(), nil
}

// Get returns a snapshot of one document.
func (r *Registry) Get(id uuid.UUID) (entity.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return entity.Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.doc.Clone(), nil
}

// List returns snapshots of all documents in upload order.
func (r *Registry) List() []entity.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Document, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].doc.Clone())
	}
	return out
}

// Discard removes a document. An in-flight run is cancelled and its
// remaining updates are ignored.
func (r *Registry) Discard(id uuid.UUID) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.entries, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	ev := r.eventLocked(&e.doc)
	ev.Discarded = true
	r.publish(ev)
	cancel := e.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.logger.Info("registry.discard", "doc_id", id, "status", e.doc.Status)
	return nil
}

// Process runs the pipeline for a freshly uploaded document and blocks until
// the document reaches a terminal state.
func (r *Registry) Process(ctx context.Context, id uuid.UUID) error {
	return r.run(ctx, id, false)
}

// Reprocess resets a completed or failed document and runs the pipeline again.
func (r *Registry) Reprocess(ctx context.Context, id uuid.UUID) error {
	return r.run(ctx, id, true)
}

func (r *Registry) run(ctx context.Context, id uuid.UUID, reprocess bool) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	runCtx, cancelTimeout := common.WithTimeout(runCtx, r.processTimeout)
	defer cancelTimeout()

	s, run, err := r.begin(id, reprocess, cancel)
	if err != nil {
		return err
	}
	defer r.release(id, run)

	logger := r.logger.With("doc_id", s.id, "file", s.name, "run", run)
	runCtx = common.WithLogger(common.WithDocumentID(runCtx, s.id), logger)
	start := r.now()
	logger.Info("registry.process.start", "kind", s.kind, "reprocess", reprocess)

	cps := checkpoints()
	for i, st := range pipeline {
		if err := runCtx.Err(); err != nil && !attachAfterDeadline(st.name, err) {
			return r.interrupt(id, run, st.name, err)
		}
		r.setStage(id, run, st.name)
		if err := r.safeStage(runCtx, st, s); err != nil {
			fault := fmt.Errorf("%w: stage %s: %v", ErrPipelineFault, st.name, err)
			logger.Error("registry.process.failed", "stage", st.name, "error", err)
			r.fail(id, run, fault.Error())
			return fault
		}
		if st.name == StageAttach {
			if !r.complete(id, run, s) {
				return fmt.Errorf("%w: %s", ErrDiscarded, id)
			}
			break
		}
		if !r.advance(id, run, cps[i]) {
			return fmt.Errorf("%w: %s", ErrDiscarded, id)
		}
	}

	logger.Info("registry.process.completed",
		"records", len(s.records),
		"source", s.result.Source,
		"method", s.content.Method,
		"degraded", s.content.Degraded,
		"duration", r.now().Sub(start))
	return nil
}

// attachAfterDeadline reports whether a stage may still run once the run
// deadline has passed. Record extraction already turned the timeout into
// fallback records, and attaching them does no I/O.
func attachAfterDeadline(name string, err error) bool {
	return name == StageAttach && errors.Is(err, context.DeadlineExceeded)
}

// safeStage runs one stage and converts a panic into an error.
func (r *Registry) safeStage(ctx context.Context, st stage, s *runState) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return st.run(r, ctx, s)
}

// begin moves the document into processing and opens a new run.
func (r *Registry) begin(id uuid.UUID, reprocess bool, cancel context.CancelFunc) (*runState, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	switch status := e.doc.Status; {
	case status == constants.StatusProcessing:
		return nil, 0, fmt.Errorf("%w: %s", ErrAlreadyProcessing, id)
	case reprocess && !status.Terminal():
		return nil, 0, fmt.Errorf("%w: %s is %s", ErrNotTerminal, id, status)
	case !reprocess && status.Terminal():
		return nil, 0, fmt.Errorf("%w: %s is %s", ErrTerminal, id, status)
	}

	d := &e.doc
	d.Run++
	d.Status = constants.StatusProcessing
	d.Progress = 0
	d.Stage = ""
	d.ExtractedRecords = []entity.ExtractedRecord{}
	d.ExtractionMethod = ""
	d.Source = ""
	d.Error = ""
	d.FinishedAt = nil
	e.cancel = cancel
	r.publish(r.eventLocked(d))

	return &runState{
		id:   d.ID.String(),
		name: d.Name,
		kind: d.Kind,
		file: e.file,
	}, d.Run, nil
}

// current returns the entry only while run is still the live run of id.
func (r *Registry) current(id uuid.UUID, run int) (*entry, bool) {
	e, ok := r.entries[id]
	if !ok || e.doc.Run != run || e.doc.Status != constants.StatusProcessing {
		return nil, false
	}
	return e, true
}

func (r *Registry) release(id uuid.UUID, run int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok && e.doc.Run == run {
		e.cancel = nil
	}
}

func (r *Registry) setStage(id uuid.UUID, run int, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.current(id, run); ok {
		e.doc.Stage = name
		r.publish(r.eventLocked(&e.doc))
	}
}

// advance raises progress; it never lowers it.
func (r *Registry) advance(id uuid.UUID, run, progress int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.current(id, run)
	if !ok {
		return false
	}
	if progress > e.doc.Progress {
		e.doc.Progress = min(progress, 100)
		r.publish(r.eventLocked(&e.doc))
	}
	return true
}

func (r *Registry) complete(id uuid.UUID, run int, s *runState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.current(id, run)
	if !ok {
		return false
	}
	now := r.now()
	d := &e.doc
	d.Kind = s.kind
	d.ExtractedRecords = entity.CloneRecords(s.records)
	d.ExtractionMethod = s.content.Method
	d.Source = s.result.Source
	d.Status = constants.StatusCompleted
	d.Progress = 100
	d.Stage = ""
	d.FinishedAt = &now
	r.publish(r.eventLocked(d))
	return true
}

func (r *Registry) fail(id uuid.UUID, run int, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.current(id, run)
	if !ok {
		return
	}
	now := r.now()
	d := &e.doc
	d.Status = constants.StatusFailed
	d.Error = msg
	d.ExtractedRecords = []entity.ExtractedRecord{}
	d.FinishedAt = &now
	r.publish(r.eventLocked(d))
}

// interrupt handles a cancelled or timed-out run. A discarded document is
// left alone; anything else is marked failed.
func (r *Registry) interrupt(id uuid.UUID, run int, stageName string, cause error) error {
	r.mu.RLock()
	_, live := r.current(id, run)
	r.mu.RUnlock()
	if !live {
		return fmt.Errorf("%w: %s", ErrDiscarded, id)
	}

	msg := "processing cancelled"
	if errors.Is(cause, context.DeadlineExceeded) {
		msg = "processing timed out"
	}
	r.logger.Warn("registry.process.interrupted", "doc_id", id, "run", run, "stage", stageName, "error", cause)
	r.fail(id, run, fmt.Sprintf("%s before stage %s", msg, stageName))
	return fmt.Errorf("%s: %w", msg, cause)
}

func (r *Registry) eventLocked(d *entity.Document) Event {
	return Event{
		DocumentID: d.ID,
		Name:       d.Name,
		Status:     d.Status,
		Progress:   d.Progress,
		Stage:      d.Stage,
		Run:        d.Run,
		At:         r.now(),
	}
}
