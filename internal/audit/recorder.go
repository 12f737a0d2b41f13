package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/directory-gatekeeper/internal/repository"
)

const insertTimeout = 5 * time.Second

// Recorder is a fire-and-forget audit trail for privileged state changes.
// Record never blocks and never fails the caller: entries go onto a buffered
// queue drained by a background worker, write failures surface on the
// recorder's own error channel, and a full queue drops the entry (counted)
// rather than stall the primary operation.
type Recorder struct {
	repo    repository.AuditRepository
	logger  *zap.Logger
	queue   chan repository.AuditEntry
	errs    chan error
	once    sync.Once
	done    chan struct{}
	mu      sync.Mutex
	dropped int64
}

// NewRecorder constructs a recorder with the given queue capacity.
func NewRecorder(repo repository.AuditRepository, logger *zap.Logger, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Recorder{
		repo:   repo,
		logger: logger,
		queue:  make(chan repository.AuditEntry, queueSize),
		errs:   make(chan error, 16),
		done:   make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (r *Recorder) Start() {
	go r.run()
}

// Errors exposes write failures for out-of-band logging.
func (r *Recorder) Errors() <-chan error {
	return r.errs
}

// Record enqueues an entry. Safe under arbitrary concurrency.
func (r *Recorder) Record(actor, action, subject string, details map[string]any) {
	if r == nil {
		return
	}
	entry := repository.AuditEntry{
		ID:        uuid.NewString(),
		Actor:     actor,
		Action:    action,
		Subject:   subject,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}

	select {
	case r.queue <- entry:
	default:
		r.mu.Lock()
		r.dropped++
		dropped := r.dropped
		r.mu.Unlock()
		r.logger.Warn("audit queue full; entry dropped",
			zap.String("action", action),
			zap.Int64("dropped_total", dropped))
	}
}

// Dropped returns how many entries were discarded due to a full queue.
func (r *Recorder) Dropped() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Close drains the queue and stops the worker.
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.queue)
		<-r.done
		close(r.errs)
	})
}

func (r *Recorder) run() {
	defer close(r.done)
	for entry := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
		err := r.repo.Insert(ctx, &entry)
		cancel()
		if err != nil {
			select {
			case r.errs <- err:
			default:
			}
		}
	}
}
