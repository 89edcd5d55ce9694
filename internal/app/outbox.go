package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"sentence-practice-service/internal/domain"
)

// Recorder persists resolution and retry records to the backend.
type Recorder interface {
	RecordCompletion(ctx context.Context, rec domain.CompletionRecord, preview bool) error
	RecordRetry(ctx context.Context, contentItemID string, preview bool) error
}

// retryableError lets the outbox classify backend failures without knowing
// the transport. Errors that do not implement it (connection resets and the
// like) are treated as transient.
type retryableError interface {
	Retryable() bool
}

// WarnFunc surfaces a non-blocking warning to a session's subscribers.
type WarnFunc func(sessionID, message string)

type pendingCompletion struct {
	sessionID string
	preview   bool
	rec       domain.CompletionRecord
}

// Outbox decouples score recording from the synchronous scoring path. Local
// state has already advanced by the time a record is enqueued; the drain
// goroutine retries transient failures with exponential backoff up to a
// bounded attempt count and abandons non-retryable ones with a warning.
// Preview sessions swallow persistence failures silently.
type Outbox struct {
	recorder       Recorder
	maxAttempts    int
	initialBackoff time.Duration
	warn           WarnFunc

	pending chan pendingCompletion
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewOutbox(recorder Recorder, maxAttempts int, initialBackoff time.Duration, warn WarnFunc) *Outbox {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if initialBackoff <= 0 {
		initialBackoff = 500 * time.Millisecond
	}
	o := &Outbox{
		recorder:       recorder,
		maxAttempts:    maxAttempts,
		initialBackoff: initialBackoff,
		warn:           warn,
		pending:        make(chan pendingCompletion, 64),
		done:           make(chan struct{}),
	}
	o.wg.Add(1)
	go o.run()
	return o
}

// Enqueue adds a completion record without blocking the caller. Records are
// best-effort: if the queue is somehow full, or the outbox is already closed,
// the record is dropped with a warning rather than stalling the session. The
// pending channel is never closed, so a session resolving on a hijacked
// websocket connection during shutdown cannot panic here.
func (o *Outbox) Enqueue(sessionID string, preview bool, rec domain.CompletionRecord) {
	select {
	case <-o.done:
		log.Printf("outbox closed, dropping completion record for %s", rec.ContentItemID)
		return
	default:
	}
	select {
	case o.pending <- pendingCompletion{sessionID: sessionID, preview: preview, rec: rec}:
	default:
		log.Printf("outbox full, dropping completion record for %s", rec.ContentItemID)
		if !preview && o.warn != nil {
			o.warn(sessionID, "score could not be recorded")
		}
	}
}

// Close stops backoff waits, gives every queued record a final attempt, and
// waits for the drain goroutine so a completed score gets its chance even on
// shutdown. Enqueue stays safe to call afterwards; late records are dropped.
func (o *Outbox) Close() {
	close(o.done)
	o.wg.Wait()
}

func (o *Outbox) run() {
	defer o.wg.Done()
	for {
		select {
		case p := <-o.pending:
			o.deliver(p)
		case <-o.done:
			// Drain whatever is already queued, then exit.
			for {
				select {
				case p := <-o.pending:
					o.deliver(p)
				default:
					return
				}
			}
		}
	}
}

func (o *Outbox) deliver(p pendingCompletion) {
	backoff := o.initialBackoff
	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		err := o.recorder.RecordCompletion(context.Background(), p.rec, p.preview)
		if err == nil {
			return
		}

		var re retryableError
		if errors.As(err, &re) && !re.Retryable() {
			log.Printf("abandoning completion record for %s: %v", p.rec.ContentItemID, err)
			o.notify(p, "score could not be recorded")
			return
		}

		log.Printf("completion record for %s failed (attempt %d/%d): %v", p.rec.ContentItemID, attempt, o.maxAttempts, err)
		if attempt == o.maxAttempts {
			break
		}
		select {
		case <-time.After(backoff):
		case <-o.done:
			return
		}
		backoff *= 2
	}
	o.notify(p, "score recording is delayed; your result is kept locally")
}

func (o *Outbox) notify(p pendingCompletion, message string) {
	if p.preview || o.warn == nil {
		return
	}
	o.warn(p.sessionID, message)
}
