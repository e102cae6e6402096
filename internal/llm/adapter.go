// Package llm wraps remote structured-extraction backends behind a connectivity
// probe and a timeout-bounded extraction call that reports typed failures.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

const defaultTimeout = 45 * time.Second

type Adapter struct {
	backend Backend
	timeout time.Duration
	logger  *slog.Logger

	mu        sync.RWMutex
	status    constants.ConnectionStatus
	lastErr   error
	checkedAt time.Time
}

// NewAdapter wraps backend. A nil backend is allowed: every extraction then
// fails with ReasonUnavailable and the probe reports failed.
func NewAdapter(backend Backend, timeout time.Duration, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Adapter{
		backend: backend,
		timeout: timeout,
		logger:  logger,
		status:  constants.ConnectionIdle,
	}
}

func (a *Adapter) backendName() string {
	if a.backend == nil {
		return "none"
	}
	return a.backend.Name()
}

// Status is the connectivity state from the most recent probe.
func (a *Adapter) Status() constants.ConnectionStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// LastProbe returns when the last probe finished and its error, if any.
func (a *Adapter) LastProbe() (time.Time, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.checkedAt, a.lastErr
}

func (a *Adapter) setStatus(s constants.ConnectionStatus, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = s
	if s != constants.ConnectionTesting {
		a.lastErr = err
		a.checkedAt = time.Now()
	}
}

// TestConnection probes the backend and records connected or failed.
// It touches no document state.
func (a *Adapter) TestConnection(ctx context.Context) bool {
	a.setStatus(constants.ConnectionTesting, nil)
	start := time.Now()

	if a.backend == nil {
		a.setStatus(constants.ConnectionFailed, ErrNoBackend)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.backend.Ping(ctx); err != nil {
		a.logger.Warn("llm.probe.failed",
			"backend", a.backendName(),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		a.setStatus(constants.ConnectionFailed, err)
		return false
	}
	a.logger.Info("llm.probe.ok", "backend", a.backendName(), "elapsed_ms", time.Since(start).Milliseconds())
	a.setStatus(constants.ConnectionConnected, nil)
	return true
}

// ExtractRecords asks the backend for records. It may be called from any
// connectivity state. Every error is an *ExtractionFailure.
func (a *Adapter) ExtractRecords(ctx context.Context, content string, kind constants.DocumentKind, fileName string) (records []entity.ExtractedRecord, err error) {
	rid := uuid.New().String()
	start := time.Now()

	if a.backend == nil {
		return nil, &ExtractionFailure{Reason: ReasonUnavailable, Backend: a.backendName(), Err: ErrNoBackend}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = &ExtractionFailure{Reason: ReasonUnavailable, Backend: a.backendName(), Err: fmt.Errorf("backend panic: %v", r)}
		}
		if err != nil {
			a.logger.Warn("llm.extract.failed",
				"req_id", rid,
				"backend", a.backendName(),
				"file", fileName,
				"error", err,
				"elapsed_ms", time.Since(start).Milliseconds())
		}
	}()

	a.logger.Info("llm.extract.start",
		"req_id", rid,
		"backend", a.backendName(),
		"file", fileName,
		"kind", kind,
		"text_len", len(content))

	req := ExtractRequest{Content: content, DocumentKind: kind, FileName: fileName}
	records, _, err = a.backend.ExtractRecords(ctx, req)
	if err != nil {
		f := AsFailure(err, a.backendName())
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			f.Reason = ReasonTimeout
		}
		return nil, f
	}
	if records == nil {
		records = []entity.ExtractedRecord{}
	}

	a.logger.Info("llm.extract.ok",
		"req_id", rid,
		"backend", a.backendName(),
		"file", fileName,
		"records", len(records),
		"elapsed_ms", time.Since(start).Milliseconds())
	return records, nil
}

// Extract is ExtractRecords in Result form, ready for OrElse.
func (a *Adapter) Extract(ctx context.Context, content string, kind constants.DocumentKind, fileName string) Result {
	records, err := a.ExtractRecords(ctx, content, kind, fileName)
	if err != nil {
		return Fail(err)
	}
	return Ok(records)
}
