package registry

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/classify"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
	"github.com/joseph-ayodele/cropcatalog/internal/extract"
	"github.com/joseph-ayodele/cropcatalog/internal/llm"
)

const (
	StageClassify       = "classify"
	StageExtractContent = "extract-content"
	StageExtractRecords = "extract-records"
	StageAttach         = "attach"
)

// Confidence ceilings applied when the content handed to the model was degraded.
const (
	placeholderConfidenceCap = 0.3
	bestEffortConfidenceCap  = 0.5
)

// runState carries intermediate results between the stages of one run.
type runState struct {
	id      string
	name    string
	kind    constants.DocumentKind
	file    entity.RawFile
	content extract.Result
	result  llm.Result
	records []entity.ExtractedRecord
}

type stage struct {
	name   string
	weight int
	run    func(r *Registry, ctx context.Context, s *runState) error
}

var pipeline = []stage{
	{StageClassify, 10, (*Registry).classifyStage},
	{StageExtractContent, 20, (*Registry).extractContentStage},
	{StageExtractRecords, 60, (*Registry).extractRecordsStage},
	{StageAttach, 10, (*Registry).attachStage},
}

// StageInfo describes one pipeline stage and the progress reached when it completes.
type StageInfo struct {
	Name       string `json:"name"`
	Weight     int    `json:"weight"`
	Checkpoint int    `json:"checkpoint"`
}

// Stages lists the pipeline in execution order.
func Stages() []StageInfo {
	cps := checkpoints()
	out := make([]StageInfo, len(pipeline))
	for i, st := range pipeline {
		out[i] = StageInfo{Name: st.name, Weight: st.weight, Checkpoint: cps[i]}
	}
	return out
}

// checkpoints scales cumulative stage weights onto 0..100; the last is always 100.
func checkpoints() []int {
	total := 0
	for _, st := range pipeline {
		total += st.weight
	}
	out := make([]int, len(pipeline))
	cum := 0
	for i, st := range pipeline {
		cum += st.weight
		out[i] = cum * 100 / total
	}
	out[len(out)-1] = 100
	return out
}

func (r *Registry) classifyStage(_ context.Context, s *runState) error {
	if !s.kind.Valid() {
		s.kind = classify.Classify(s.name)
	}
	return nil
}

func (r *Registry) extractContentStage(ctx context.Context, s *runState) error {
	s.content = r.extractor.Extract(ctx, s.kind, s.file)
	if strings.TrimSpace(s.content.Text) == "" {
		return fmt.Errorf("extractor returned no text for %q", s.name)
	}
	return nil
}

func (r *Registry) extractRecordsStage(ctx context.Context, s *runState) error {
	res := r.records.Extract(ctx, s.content.Text, s.kind, s.name)
	if !res.IsOk() {
		r.logger.Warn("registry.extract.fallback",
			"doc_id", s.id,
			"file", s.name,
			"error", res.Err)
	}
	s.result = res.OrElse(func() []entity.ExtractedRecord { return r.fallback(s.name) })
	return nil
}

// attachStage finalizes the records. Model output derived from degraded
// content gets its confidence capped and a caveat in the notes.
func (r *Registry) attachStage(_ context.Context, s *runState) error {
	out := make([]entity.ExtractedRecord, 0, len(s.result.Records))
	for _, rec := range s.result.Records {
		rec = rec.Clone()
		rec.SourceDocumentName = s.name
		rec.ConfidenceScore = clamp01(rec.ConfidenceScore)
		if s.content.Degraded && s.result.Source == constants.SourceAI {
			ceiling := bestEffortConfidenceCap
			if s.content.Method == extract.PlaceholderMethod {
				ceiling = placeholderConfidenceCap
			}
			rec.ConfidenceScore = min(rec.ConfidenceScore, ceiling)
			rec.ExtractionNotes = appendNote(rec.ExtractionNotes,
				fmt.Sprintf("Content extraction degraded (method %s); treat as low-confidence input.", s.content.Method))
		}
		out = append(out, rec)
	}
	s.records = out
	return nil
}

func clamp01(f float64) float64 {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func appendNote(notes, note string) string {
	if strings.TrimSpace(notes) == "" {
		return note
	}
	return notes + " " + note
}
