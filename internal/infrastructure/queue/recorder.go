package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/culturecart/accounts-api/internal/api/metrics"
	"github.com/culturecart/accounts-api/internal/core/domain"
	"github.com/culturecart/accounts-api/internal/core/ports"
)

const (
	defaultWorkers = 2
	defaultBuffer  = 256
	writeTimeout   = 5 * time.Second
)

var _ ports.SessionRecorder = (*SessionRecorder)(nil)

// SessionRecorder writes login/logout audit entries off the request path.
// Entries are buffered on a channel and drained by a fixed set of workers.
// When the buffer is full the entry is dropped and logged; an audit write
// never delays or fails an authentication response.
type SessionRecorder struct {
	queue chan domain.Session
	repo  ports.SessionRepository
	log   zerolog.Logger

	workers int
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewSessionRecorder creates a recorder with numWorkers workers and a queue of
// bufferSize entries. Non-positive values fall back to defaults.
func NewSessionRecorder(repo ports.SessionRepository, numWorkers, bufferSize int, log zerolog.Logger) *SessionRecorder {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if bufferSize <= 0 {
		bufferSize = defaultBuffer
	}
	return &SessionRecorder{
		queue:   make(chan domain.Session, bufferSize),
		repo:    repo,
		log:     log.With().Str("component", "session_recorder").Logger(),
		workers: numWorkers,
	}
}

// Start launches the worker goroutines. Writes run on a context detached from
// ctx's cancellation so Stop can drain the queue after shutdown begins.
func (r *SessionRecorder) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.runWorker(base, i)
	}
}

// Record enqueues s without blocking.
func (r *SessionRecorder) Record(s domain.Session) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.drop(s, "recorder stopped")
		return
	}

	// Counted before the send so a fast worker never takes the gauge below zero.
	metrics.SessionQueueDepth.Inc()
	select {
	case r.queue <- s:
	default:
		metrics.SessionQueueDepth.Dec()
		r.drop(s, "queue full")
	}
}

// Stop closes the queue and waits for pending entries to be written or for
// ctx to expire, whichever comes first.
func (r *SessionRecorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *SessionRecorder) drop(s domain.Session, reason string) {
	metrics.SessionsRecordedTotal.WithLabelValues(string(s.Type), "dropped").Inc()
	r.log.Warn().
		Str("user_id", s.UserID).
		Str("type", string(s.Type)).
		Str("reason", reason).
		Msg("session audit entry dropped")
}

func (r *SessionRecorder) runWorker(ctx context.Context, id int) {
	defer r.wg.Done()
	for s := range r.queue {
		metrics.SessionQueueDepth.Dec()
		r.write(ctx, id, s)
	}
}

func (r *SessionRecorder) write(ctx context.Context, id int, s domain.Session) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := r.repo.Insert(ctx, &s); err != nil {
		metrics.SessionsRecordedTotal.WithLabelValues(string(s.Type), "error").Inc()
		r.log.Error().Err(err).
			Str("user_id", s.UserID).
			Str("type", string(s.Type)).
			Int("worker_id", id).
			Msg("session audit write failed")
		return
	}
	metrics.SessionsRecordedTotal.WithLabelValues(string(s.Type), "ok").Inc()
}
