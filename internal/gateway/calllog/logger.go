// Package calllog runs the asynchronous call logger: a bounded queue
// drained by a background worker so writes never block response
// delivery, dropping the oldest queued entry with a warning on overflow.
package calllog

import (
	"context"
	"log/slog"
	"sync"

	calllogdom "github.com/iruldev/golang-api-hexagonal/internal/domain/calllog"
)

// Store persists CallLog rows.
type Store interface {
	Create(ctx context.Context, l *calllogdom.CallLog) error
}

// Logger enqueues call-log records for asynchronous persistence.
type Logger struct {
	store  Store
	logger *slog.Logger

	mu      sync.Mutex
	queue   []*calllogdom.CallLog
	cap     int
	notify  chan struct{}
	done    chan struct{}
	stopped bool
}

// New builds a Logger with a bounded queue of the given capacity.
func New(store Store, capacity int, logger *slog.Logger) *Logger {
	if capacity <= 0 {
		capacity = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{
		store:  store,
		logger: logger,
		cap:    capacity,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Enqueue adds a record to the queue. If the queue is full, the oldest
// queued record is dropped (with a warning) to make room — backpressure
// never blocks the caller.
func (l *Logger) Enqueue(entry *calllogdom.CallLog) {
	l.mu.Lock()
	if len(l.queue) >= l.cap {
		dropped := l.queue[0]
		l.queue = l.queue[1:]
		l.logger.Warn("call log queue full, dropping oldest entry",
			"dropped_request_id", dropped.RequestID, "queue_capacity", l.cap)
	}
	l.queue = append(l.queue, entry)
	l.mu.Unlock()

	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// Run drains the queue until ctx is cancelled. Intended to be started
// once as a long-lived background task.
func (l *Logger) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.drainRemaining(context.Background())
			return
		case <-l.notify:
			l.drainAvailable(ctx)
		}
	}
}

func (l *Logger) drainAvailable(ctx context.Context) {
	for {
		entry := l.pop()
		if entry == nil {
			return
		}
		if err := l.store.Create(ctx, entry); err != nil {
			l.logger.Error("call log write failed", "request_id", entry.RequestID, "error", err)
		}
	}
}

func (l *Logger) drainRemaining(ctx context.Context) {
	l.drainAvailable(ctx)
}

func (l *Logger) pop() *calllogdom.CallLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	entry := l.queue[0]
	l.queue = l.queue[1:]
	return entry
}

// Wait blocks until Run has returned after ctx cancellation.
func (l *Logger) Wait() {
	<-l.done
}
