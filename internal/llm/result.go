package llm

import (
	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

// Result is either the records a model produced or the failure that prevented it.
type Result struct {
	Records []entity.ExtractedRecord
	Err     error
	Source  constants.RecordSource
	// Cause keeps the model failure after OrElse has substituted records.
	Cause error
}

func Ok(records []entity.ExtractedRecord) Result {
	if records == nil {
		records = []entity.ExtractedRecord{}
	}
	return Result{Records: records, Source: constants.SourceAI}
}

func Fail(err error) Result {
	return Result{Err: err}
}

func (r Result) IsOk() bool { return r.Err == nil }

// OrElse returns r unchanged on success. On failure it calls fallback and
// returns its records as a successful Result tagged SourceFallback.
func (r Result) OrElse(fallback func() []entity.ExtractedRecord) Result {
	if r.Err == nil {
		return r
	}
	records := fallback()
	if records == nil {
		records = []entity.ExtractedRecord{}
	}
	return Result{Records: records, Source: constants.SourceFallback, Cause: r.Err}
}

// Unwrap returns the records and error in conventional Go form.
func (r Result) Unwrap() ([]entity.ExtractedRecord, error) {
	return r.Records, r.Err
}
