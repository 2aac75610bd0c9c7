package calllog

import (
	"context"
	"sync"
	"testing"
	"time"

	calllogdom "github.com/iruldev/golang-api-hexagonal/internal/domain/calllog"
)

type fakeStore struct {
	mu      sync.Mutex
	entries []*calllogdom.CallLog
}

func (s *fakeStore) Create(ctx context.Context, l *calllogdom.CallLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, l)
	return nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func TestLogger_EnqueueAndRun_Drains(t *testing.T) {
	store := &fakeStore{}
	logger := New(store, 10, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go logger.Run(ctx)

	for i := 0; i < 5; i++ {
		logger.Enqueue(&calllogdom.CallLog{RequestID: "req"})
	}

	deadline := time.Now().Add(time.Second)
	for store.count() < 5 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if store.count() != 5 {
		t.Fatalf("expected all 5 entries drained, got %d", store.count())
	}

	cancel()
	logger.Wait()
}

func TestLogger_Enqueue_DropsOldestOnOverflow(t *testing.T) {
	store := &fakeStore{}
	logger := New(store, 2, nil)

	logger.Enqueue(&calllogdom.CallLog{RequestID: "first"})
	logger.Enqueue(&calllogdom.CallLog{RequestID: "second"})
	logger.Enqueue(&calllogdom.CallLog{RequestID: "third"})

	if len(logger.queue) != 2 {
		t.Fatalf("expected queue capped at 2, got %d", len(logger.queue))
	}
	if logger.queue[0].RequestID != "second" {
		t.Fatalf("expected the oldest entry dropped, got queue head %q", logger.queue[0].RequestID)
	}
}

func TestLogger_Run_FlushesRemainingOnCancel(t *testing.T) {
	store := &fakeStore{}
	logger := New(store, 10, nil)

	ctx, cancel := context.WithCancel(context.Background())
	logger.Enqueue(&calllogdom.CallLog{RequestID: "req"})
	cancel()
	logger.Run(ctx)

	if store.count() != 1 {
		t.Fatalf("expected the queued entry flushed on shutdown, got %d entries", store.count())
	}
}
