package registry

import (
	"github.com/joseph-ayodele/cropcatalog/internal/common"
)

var (
	ErrNotFound          = classed("document not found", common.ErrNotFound)
	ErrAlreadyProcessing = classed("document is already processing", common.ErrFailedPrecondition)
	ErrTerminal          = classed("document already finished; reprocess to run again", common.ErrFailedPrecondition)
	ErrNotTerminal       = classed("document has not finished processing", common.ErrFailedPrecondition)
	ErrTooLarge          = classed("upload exceeds size limit", common.ErrInvalidInput)
	ErrDiscarded         = classed("document was discarded", common.ErrNotFound)
	ErrPipelineFault     = classed("pipeline fault", nil)
)

// stateError keeps its own message and unwraps to the common class the
// transport layer maps onto a status code.
type stateError struct {
	msg   string
	class error
}

func classed(msg string, class error) error {
	return &stateError{msg: msg, class: class}
}

func (e *stateError) Error() string { return e.msg }
func (e *stateError) Unwrap() error { return e.class }
