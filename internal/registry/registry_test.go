package registry

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/common"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
	"github.com/joseph-ayodele/cropcatalog/internal/extract"
	"github.com/joseph-ayodele/cropcatalog/internal/fallback"
	"github.com/joseph-ayodele/cropcatalog/internal/llm"
)

type stubBackend struct {
	records []entity.ExtractedRecord
	err     error
	calls   atomic.Int32
}

func (s *stubBackend) Name() string                   { return "stub" }
func (s *stubBackend) Ping(ctx context.Context) error { return nil }
func (s *stubBackend) ExtractRecords(ctx context.Context, req llm.ExtractRequest) ([]entity.ExtractedRecord, []byte, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, nil, s.err
	}
	return entity.CloneRecords(s.records), nil, nil
}

// blockingRecords parks in Extract until released or its context ends.
type blockingRecords struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingRecords() *blockingRecords {
	return &blockingRecords{entered: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingRecords) Extract(ctx context.Context, content string, kind constants.DocumentKind, fileName string) llm.Result {
	b.once.Do(func() { close(b.entered) })
	select {
	case <-b.release:
		return llm.Ok([]entity.ExtractedRecord{{Name: "Maize", ConfidenceScore: 0.7}})
	case <-ctx.Done():
		return llm.Fail(&llm.ExtractionFailure{Reason: llm.ReasonTimeout, Err: ctx.Err()})
	}
}

type fixedExtractor struct {
	res extract.Result
}

func (f fixedExtractor) Extract(context.Context, constants.DocumentKind, entity.RawFile) extract.Result {
	return f.res
}

func newRegistry(t *testing.T, backend llm.Backend, opts ...Option) *Registry {
	t.Helper()
	return New(
		extract.New(extract.Config{}, nil),
		llm.NewAdapter(backend, time.Second, nil),
		fallback.Generate,
		opts...,
	)
}

func TestProcessAttachesModelRecords(t *testing.T) {
	backend := &stubBackend{records: []entity.ExtractedRecord{{
		Name:            "Wheat",
		ScientificName:  "Triticum aestivum",
		Season:          []string{"Rabi"},
		ConfidenceScore: 0.9,
	}}}
	r := newRegistry(t, backend)
	ctx := context.Background()

	doc, err := r.Upload(ctx, entity.RawFile{Name: "crops.txt", Data: []byte("Wheat, Triticum aestivum, Rabi season")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.Status != constants.StatusUploading || doc.Kind != constants.KindText {
		t.Fatalf("unexpected upload state: %+v", doc)
	}
	if err := r.Process(ctx, doc.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, err := r.Get(doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != constants.StatusCompleted || got.Progress != 100 {
		t.Fatalf("status=%s progress=%d", got.Status, got.Progress)
	}
	if len(got.ExtractedRecords) != 1 {
		t.Fatalf("records = %d, want 1", len(got.ExtractedRecords))
	}
	rec := got.ExtractedRecords[0]
	if rec.SourceDocumentName != "crops.txt" {
		t.Errorf("sourceDocumentName = %q", rec.SourceDocumentName)
	}
	if rec.ConfidenceScore != 0.9 || got.Source != constants.SourceAI {
		t.Errorf("confidence=%v source=%s", rec.ConfidenceScore, got.Source)
	}
	if got.FinishedAt == nil {
		t.Error("finishedAt not set")
	}
}

func TestProcessFallsBackWhenModelUnavailable(t *testing.T) {
	backend := &stubBackend{err: &llm.ExtractionFailure{Reason: llm.ReasonUnavailable, Err: errors.New("down")}}
	r := newRegistry(t, backend)
	ctx := context.Background()

	name := "wheat_notes.bin"
	doc, err := r.Upload(ctx, entity.RawFile{Name: name, Data: []byte{0x00, 0x01, 0x02, 0xff, 0xfe, 0x80, 0x00, 0x13}})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Kind != constants.KindOther {
		t.Fatalf("kind = %s, want other", doc.Kind)
	}
	if err := r.Process(ctx, doc.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, _ := r.Get(doc.ID)
	if got.Status != constants.StatusCompleted {
		t.Fatalf("status = %s, error = %s", got.Status, got.Error)
	}
	if got.Source != constants.SourceFallback {
		t.Errorf("source = %s", got.Source)
	}
	if want := fallback.Generate(name); !reflect.DeepEqual(got.ExtractedRecords, want) {
		t.Errorf("records = %+v\nwant %+v", got.ExtractedRecords, want)
	}
}

func TestProgressIsMonotonic(t *testing.T) {
	r := newRegistry(t, &stubBackend{records: []entity.ExtractedRecord{{Name: "Rice", ConfidenceScore: 0.8}}})
	events, cancel := r.Subscribe()
	defer cancel()

	ctx := context.Background()
	doc, _ := r.Upload(ctx, entity.RawFile{Name: "rice.txt", Data: []byte("Rice is grown in Kharif.")})
	if err := r.Process(ctx, doc.ID); err != nil {
		t.Fatal(err)
	}
	cancel()

	last := -1
	var statuses []constants.DocumentStatus
	for ev := range events {
		if ev.Progress < last {
			t.Fatalf("progress went from %d to %d", last, ev.Progress)
		}
		last = ev.Progress
		if n := len(statuses); n == 0 || statuses[n-1] != ev.Status {
			statuses = append(statuses, ev.Status)
		}
	}
	want := []constants.DocumentStatus{constants.StatusUploading, constants.StatusProcessing, constants.StatusCompleted}
	if !reflect.DeepEqual(statuses, want) {
		t.Errorf("statuses = %v, want %v", statuses, want)
	}
	if last != 100 {
		t.Errorf("final progress = %d", last)
	}
}

func TestStagesCheckpoints(t *testing.T) {
	stages := Stages()
	want := []int{10, 30, 90, 100}
	if len(stages) != len(want) {
		t.Fatalf("got %d stages", len(stages))
	}
	for i, st := range stages {
		if st.Checkpoint != want[i] {
			t.Errorf("%s checkpoint = %d, want %d", st.Name, st.Checkpoint, want[i])
		}
	}
}

func TestDegradedContentCapsModelConfidence(t *testing.T) {
	r := New(
		fixedExtractor{res: extract.Result{Text: "garbled", Method: "direct-decode", Degraded: true}},
		llm.NewAdapter(&stubBackend{records: []entity.ExtractedRecord{{Name: "Cotton", ConfidenceScore: 0.95}}}, time.Second, nil),
		fallback.Generate,
	)
	ctx := context.Background()
	doc, _ := r.Upload(ctx, entity.RawFile{Name: "x.bin", Data: []byte{1, 2, 3}})
	if err := r.Process(ctx, doc.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := r.Get(doc.ID)
	rec := got.ExtractedRecords[0]
	if rec.ConfidenceScore != bestEffortConfidenceCap {
		t.Errorf("confidence = %v, want %v", rec.ConfidenceScore, bestEffortConfidenceCap)
	}
	if rec.ExtractionNotes == "" {
		t.Error("expected degradation note")
	}
	if got.ExtractionMethod != "direct-decode" {
		t.Errorf("method = %q", got.ExtractionMethod)
	}
}

func TestEmptyFileStillCompletes(t *testing.T) {
	backend := &stubBackend{err: &llm.ExtractionFailure{Reason: llm.ReasonNetwork, Err: errors.New("refused")}}
	r := newRegistry(t, backend)
	ctx := context.Background()
	doc, err := r.Upload(ctx, entity.RawFile{Name: "empty.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Process(ctx, doc.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := r.Get(doc.ID)
	if got.Status != constants.StatusCompleted || len(got.ExtractedRecords) == 0 {
		t.Errorf("got %+v", got)
	}
}

func TestUploadRejectsOversize(t *testing.T) {
	r := newRegistry(t, &stubBackend{}, WithMaxUploadBytes(4))
	_, err := r.Upload(context.Background(), entity.RawFile{Name: "big.txt", Data: []byte("too large")})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
	if n := len(r.List()); n != 0 {
		t.Errorf("list has %d documents", n)
	}
}

func TestProcessTransitionsAreGuarded(t *testing.T) {
	r := newRegistry(t, &stubBackend{records: []entity.ExtractedRecord{{Name: "Potato", ConfidenceScore: 0.6}}})
	ctx := context.Background()
	doc, _ := r.Upload(ctx, entity.RawFile{Name: "potato.txt", Data: []byte("Potato, Rabi crop")})

	if err := r.Reprocess(ctx, doc.ID); !errors.Is(err, ErrNotTerminal) {
		t.Errorf("reprocess before process: %v", err)
	}
	if err := r.Process(ctx, doc.ID); err != nil {
		t.Fatal(err)
	}
	err := r.Process(ctx, doc.ID)
	if !errors.Is(err, ErrTerminal) {
		t.Errorf("second process: %v", err)
	}
	if code := status.Code(common.ToStatus(err)); code != codes.FailedPrecondition {
		t.Errorf("second process maps to %s, want FailedPrecondition", code)
	}
	if err := r.Reprocess(ctx, doc.ID); err != nil {
		t.Fatalf("reprocess: %v", err)
	}
	got, _ := r.Get(doc.ID)
	if got.Run != 2 || got.Status != constants.StatusCompleted || len(got.ExtractedRecords) != 1 {
		t.Errorf("after reprocess: %+v", got)
	}
	err = r.Process(ctx, [16]byte{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: %v", err)
	}
	if code := status.Code(common.ToStatus(err)); code != codes.NotFound {
		t.Errorf("unknown id maps to %s, want NotFound", code)
	}
}

func TestConcurrentProcessIsRejected(t *testing.T) {
	blocker := newBlockingRecords()
	r := New(extract.New(extract.Config{}, nil), blocker, fallback.Generate)
	ctx := context.Background()
	doc, _ := r.Upload(ctx, entity.RawFile{Name: "maize.txt", Data: []byte("Maize grows in Kharif.")})

	done := make(chan error, 1)
	go func() { done <- r.Process(ctx, doc.ID) }()
	<-blocker.entered

	if err := r.Process(ctx, doc.ID); !errors.Is(err, ErrAlreadyProcessing) {
		t.Errorf("concurrent process: %v", err)
	}
	mid, _ := r.Get(doc.ID)
	if mid.Status != constants.StatusProcessing || mid.Progress != 30 {
		t.Errorf("mid-run status=%s progress=%d", mid.Status, mid.Progress)
	}

	close(blocker.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	got, _ := r.Get(doc.ID)
	if got.Status != constants.StatusCompleted || got.ExtractedRecords[0].Name != "Maize" {
		t.Errorf("got %+v", got)
	}
}

func TestDiscardDuringProcessing(t *testing.T) {
	blocker := newBlockingRecords()
	r := New(extract.New(extract.Config{}, nil), blocker, fallback.Generate)
	ctx := context.Background()
	doc, _ := r.Upload(ctx, entity.RawFile{Name: "maize.txt", Data: []byte("Maize grows in Kharif.")})

	done := make(chan error, 1)
	go func() { done <- r.Process(ctx, doc.ID) }()
	<-blocker.entered

	if err := r.Discard(doc.ID); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, ErrDiscarded) {
			t.Errorf("process after discard: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("process did not return after discard")
	}
	if _, err := r.Get(doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after discard: %v", err)
	}
	if err := r.Discard(doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second discard: %v", err)
	}
}

func TestRunDeadlineDuringRecordsKeepsFallback(t *testing.T) {
	uploaded := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	blocker := newBlockingRecords()
	r := New(extract.New(extract.Config{}, nil), blocker, fallback.Generate,
		WithProcessTimeout(50*time.Millisecond),
		WithClock(func() time.Time { return uploaded }),
	)
	ctx := context.Background()
	name := "maize_notes.txt"
	doc, _ := r.Upload(ctx, entity.RawFile{Name: name, Data: []byte("Maize grows in Kharif.")})
	if !doc.UploadedAt.Equal(uploaded) {
		t.Fatalf("uploadedAt = %v", doc.UploadedAt)
	}

	if err := r.Process(ctx, doc.ID); err != nil {
		t.Fatalf("process: %v", err)
	}
	got, _ := r.Get(doc.ID)
	if got.Status != constants.StatusCompleted || got.Progress != 100 {
		t.Fatalf("status=%s progress=%d error=%q", got.Status, got.Progress, got.Error)
	}
	if got.Source != constants.SourceFallback {
		t.Errorf("source = %s", got.Source)
	}
	if want := fallback.Generate(name); !reflect.DeepEqual(got.ExtractedRecords, want) {
		t.Errorf("records = %+v\nwant %+v", got.ExtractedRecords, want)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(uploaded) {
		t.Errorf("finishedAt = %v", got.FinishedAt)
	}
}

func TestFallbackPanicFailsDocument(t *testing.T) {
	backend := &stubBackend{err: &llm.ExtractionFailure{Reason: llm.ReasonUnavailable, Err: errors.New("down")}}
	r := New(
		extract.New(extract.Config{}, nil),
		llm.NewAdapter(backend, time.Second, nil),
		func(string) []entity.ExtractedRecord { panic("boom") },
	)
	ctx := context.Background()
	doc, _ := r.Upload(ctx, entity.RawFile{Name: "a.txt", Data: []byte("anything")})

	err := r.Process(ctx, doc.ID)
	if !errors.Is(err, ErrPipelineFault) {
		t.Fatalf("err = %v, want ErrPipelineFault", err)
	}
	got, _ := r.Get(doc.ID)
	if got.Status != constants.StatusFailed || got.Error == "" || len(got.ExtractedRecords) != 0 {
		t.Errorf("got %+v", got)
	}
	if err := r.Reprocess(ctx, doc.ID); !errors.Is(err, ErrPipelineFault) {
		t.Errorf("reprocess: %v", err)
	}
}

func TestCancelledContextFailsDocument(t *testing.T) {
	r := newRegistry(t, &stubBackend{})
	ctx, cancel := context.WithCancel(context.Background())
	doc, _ := r.Upload(ctx, entity.RawFile{Name: "a.txt", Data: []byte("text")})
	cancel()

	if err := r.Process(ctx, doc.ID); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	got, _ := r.Get(doc.ID)
	if got.Status != constants.StatusFailed {
		t.Errorf("status = %s", got.Status)
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	r := newRegistry(t, &stubBackend{records: []entity.ExtractedRecord{{Name: "Tomato", Season: []string{"Zaid"}, ConfidenceScore: 0.7}}})
	ctx := context.Background()
	doc, _ := r.Upload(ctx, entity.RawFile{Name: "tomato.txt", Data: []byte("Tomato")})
	_ = r.Process(ctx, doc.ID)

	a, _ := r.Get(doc.ID)
	a.ExtractedRecords[0].Season[0] = "changed"
	a.ExtractedRecords[0].Name = "changed"

	b, _ := r.Get(doc.ID)
	if b.ExtractedRecords[0].Name != "Tomato" || b.ExtractedRecords[0].Season[0] != "Zaid" {
		t.Errorf("registry state leaked: %+v", b.ExtractedRecords[0])
	}
	list := r.List()
	if len(list) != 1 || list[0].ID != doc.ID {
		t.Errorf("list = %+v", list)
	}
}

func TestReprocessRestartsProgress(t *testing.T) {
	r := newRegistry(t, &stubBackend{records: []entity.ExtractedRecord{{Name: "Barley", ConfidenceScore: 0.7}}})
	ctx := context.Background()
	doc, _ := r.Upload(ctx, entity.RawFile{Name: "barley.txt", Data: []byte("Barley, cool season cereal")})
	if err := r.Process(ctx, doc.ID); err != nil {
		t.Fatal(err)
	}

	events, cancel := r.Subscribe()
	defer cancel()
	if err := r.Reprocess(ctx, doc.ID); err != nil {
		t.Fatal(err)
	}

	first := <-events
	if first.Run != 2 || first.Progress != 0 || first.Status != constants.StatusProcessing {
		t.Errorf("first reprocess event = %+v", first)
	}
	got, _ := r.Get(doc.ID)
	if got.Progress != 100 || got.Status != constants.StatusCompleted {
		t.Errorf("after reprocess: %+v", got)
	}
}
