package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"sentence-practice-service/internal/app"
	"sentence-practice-service/internal/domain"
	"sentence-practice-service/internal/infra/assignment"
)

// scriptedRecorder fails with the scripted errors in order, then succeeds.
type scriptedRecorder struct {
	mu       sync.Mutex
	script   []error
	attempts int
}

func (r *scriptedRecorder) RecordCompletion(_ context.Context, _ domain.CompletionRecord, _ bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if len(r.script) == 0 {
		return nil
	}
	err := r.script[0]
	r.script = r.script[1:]
	return err
}

func (r *scriptedRecorder) RecordRetry(_ context.Context, _ string, _ bool) error { return nil }

func (r *scriptedRecorder) attemptCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

type warnCapture struct {
	mu       sync.Mutex
	messages []string
}

func (w *warnCapture) warn(_, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, message)
}

func (w *warnCapture) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.messages)
}

func rec() domain.CompletionRecord {
	return domain.CompletionRecord{ContentItemID: "ci-1", ExpectedScore: 80, ErrorCount: 1}
}

func TestOutboxRetriesTransientFailures(t *testing.T) {
	recorder := &scriptedRecorder{script: []error{
		&assignment.StatusError{Code: 500},
		&assignment.StatusError{Code: 429},
	}}
	warns := &warnCapture{}
	outbox := app.NewOutbox(recorder, 5, time.Millisecond, warns.warn)

	outbox.Enqueue("s1", false, rec())
	waitForCond(t, func() bool { return recorder.attemptCount() == 3 })
	outbox.Close()

	if warns.count() != 0 {
		t.Fatalf("a delivered record must not warn, got %v", warns.messages)
	}
}

func TestOutboxAbandonsNonRetryableImmediately(t *testing.T) {
	recorder := &scriptedRecorder{script: []error{
		&assignment.StatusError{Code: 403},
		&assignment.StatusError{Code: 403},
	}}
	warns := &warnCapture{}
	outbox := app.NewOutbox(recorder, 5, time.Millisecond, warns.warn)

	outbox.Enqueue("s1", false, rec())
	waitForCond(t, func() bool { return warns.count() == 1 })
	outbox.Close()

	if recorder.attemptCount() != 1 {
		t.Fatalf("non-retryable failures must not be retried, got %d attempts", recorder.attemptCount())
	}
}

func TestOutboxWarnsAfterExhaustedAttempts(t *testing.T) {
	recorder := &scriptedRecorder{script: []error{
		&assignment.StatusError{Code: 503},
		&assignment.StatusError{Code: 503},
		&assignment.StatusError{Code: 503},
	}}
	warns := &warnCapture{}
	outbox := app.NewOutbox(recorder, 2, time.Millisecond, warns.warn)

	outbox.Enqueue("s1", false, rec())
	waitForCond(t, func() bool { return warns.count() == 1 })
	outbox.Close()

	if recorder.attemptCount() != 2 {
		t.Fatalf("expected bounded attempts, got %d", recorder.attemptCount())
	}
}

func TestOutboxSilentInPreviewMode(t *testing.T) {
	recorder := &scriptedRecorder{script: []error{
		&assignment.StatusError{Code: 403},
	}}
	warns := &warnCapture{}
	outbox := app.NewOutbox(recorder, 2, time.Millisecond, warns.warn)

	outbox.Enqueue("s1", true, rec())
	waitForCond(t, func() bool { return recorder.attemptCount() == 1 })
	outbox.Close()

	if warns.count() != 0 {
		t.Fatalf("preview sessions must swallow persistence failures, got %v", warns.messages)
	}
}

func TestOutboxEnqueueAfterCloseIsDropped(t *testing.T) {
	recorder := &scriptedRecorder{}
	warns := &warnCapture{}
	outbox := app.NewOutbox(recorder, 2, time.Millisecond, warns.warn)
	outbox.Close()

	// A session resolving during shutdown must not crash the process.
	outbox.Enqueue("s1", false, rec())

	if recorder.attemptCount() != 0 {
		t.Fatalf("record enqueued after close must be dropped, got %d attempts", recorder.attemptCount())
	}
	if warns.count() != 0 {
		t.Fatalf("dropping on shutdown must not warn a torn-down session, got %v", warns.messages)
	}
}

func TestOutboxDrainsQueuedRecordsOnClose(t *testing.T) {
	recorder := &scriptedRecorder{}
	outbox := app.NewOutbox(recorder, 2, time.Millisecond, nil)

	outbox.Enqueue("s1", false, rec())
	outbox.Enqueue("s1", false, rec())
	outbox.Close()

	if recorder.attemptCount() != 2 {
		t.Fatalf("queued records must get a final attempt on close, got %d", recorder.attemptCount())
	}
}

func waitForCond(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
