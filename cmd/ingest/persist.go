package main

import "github.com/joseph-ayodele/cropcatalog/internal/persist"

type persistFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// persistReport splits a document's outcomes into stored ids and failures.
type persistReport struct {
	IDs    []string
	Failed []persistFailure
}

func newPersistReport(outcomes []persist.Outcome) persistReport {
	var r persistReport
	for _, o := range outcomes {
		if o.OK() {
			r.IDs = append(r.IDs, o.ID)
			continue
		}
		r.Failed = append(r.Failed, persistFailure{Index: o.Index, Error: o.Err.Error()})
	}
	return r
}
