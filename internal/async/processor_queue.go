package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/cropcatalog/internal/common"
)

// ProcessorQueue feeds jobs to a fixed pool of workers.
type ProcessorQueue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	onDone  func(Job, error)

	base   context.Context
	cancel context.CancelFunc

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

// WithProcessTimeout bounds each job; zero leaves it to the processor.
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithOnDone registers a callback run by the worker after every job.
func WithOnDone(fn func(Job, error)) Option {
	return func(q *ProcessorQueue) { q.onDone = fn }
}

func NewProcessorQueue(proc Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.base, q.cancel = context.WithCancel(context.Background())
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go q.work(i + 1)
		}
	})
}

func (q *ProcessorQueue) work(workerID int) {
	defer q.wg.Done()
	q.logger.Debug("queue.worker.start", "worker_id", workerID)

	for job := range q.ch {
		ctx, cancel := common.WithTimeout(q.base, q.timeout)
		if job.TraceID != "" {
			ctx = common.WithRequestID(ctx, job.TraceID)
		}
		start := time.Now()
		var err error
		if job.Reprocess {
			err = q.proc.Reprocess(ctx, job.DocumentID)
		} else {
			err = q.proc.Process(ctx, job.DocumentID)
		}
		cancel()

		if err != nil {
			q.logger.Error("queue.job.failed", "worker_id", workerID, "doc_id", job.DocumentID, "error", err)
		} else {
			q.logger.Info("queue.job.ok", "worker_id", workerID, "doc_id", job.DocumentID,
				"elapsed_ms", time.Since(start).Milliseconds())
		}
		if q.onDone != nil {
			q.onDone(job, err)
		}
	}

	q.logger.Debug("queue.worker.stop", "worker_id", workerID)
}

// Enqueue blocks while the queue is full, until ctx ends.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "doc_id", job.DocumentID)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queue.enqueue", "doc_id", job.DocumentID, "reprocess", job.Reprocess)
		return nil
	default:
	}

	q.logger.Warn("queue.full", "doc_id", job.DocumentID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued jobs to finish. If ctx ends
// first, running jobs are cancelled.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.cancel()
		q.logger.Warn("queue.shutdown.interrupted")
		<-done
	case <-done:
		q.cancel()
		q.logger.Info("queue.shutdown.drained")
	}
}
