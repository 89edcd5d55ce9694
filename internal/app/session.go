package app

import (
	"sync"
	"time"

	"sentence-practice-service/internal/domain"
	"sentence-practice-service/internal/engine"
)

// ResolutionSink receives persistence-worthy session events. Implementations
// must not block: the session calls it while holding its own lock.
type ResolutionSink interface {
	QuestionResolved(sessionID string, preview bool, rec domain.CompletionRecord)
	QuestionRetried(sessionID string, preview bool, contentItemID string)
}

// Session drives one learner through one assignment. Every mutation (word
// click, retry, advance, timer tick) funnels through the session mutex, so
// events are applied in a single total order and a tick can never race a
// click into double-scoring a question.
type Session struct {
	id            string
	assignmentID  string
	userID        string
	preview       bool
	scoreCategory string
	tickEvery     time.Duration
	sink          ResolutionSink

	mu          sync.Mutex
	arena       *engine.Arena
	active      int
	finished    bool
	closed      bool
	timerStop   chan struct{}
	subscribers map[chan Event]struct{}
}

// NewSession is exported for infrastructure layers and tests that need to
// seed sessions. A nil sink discards persistence events.
func NewSession(id string, set domain.QuestionSet, userID string, preview bool, sink ResolutionSink) *Session {
	if sink == nil {
		sink = discardSink{}
	}
	return newSession(id, set, userID, preview, sink, time.Second)
}

type discardSink struct{}

func (discardSink) QuestionResolved(string, bool, domain.CompletionRecord) {}
func (discardSink) QuestionRetried(string, bool, string)                   {}

func newSession(id string, set domain.QuestionSet, userID string, preview bool, sink ResolutionSink, tickEvery time.Duration) *Session {
	return &Session{
		id:            id,
		assignmentID:  set.AssignmentID,
		userID:        userID,
		preview:       preview,
		scoreCategory: set.ScoreCategory,
		tickEvery:     tickEvery,
		sink:          sink,
		arena:         engine.NewArena(set.Questions),
		subscribers:   make(map[chan Event]struct{}),
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) AssignmentID() string { return s.assignmentID }
func (s *Session) UserID() string       { return s.userID }
func (s *Session) Preview() bool        { return s.preview }

// Begin activates the first question and starts its countdown.
func (s *Session) Begin() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startTimerLocked()
	return s.snapshotLocked()
}

// SelectWord applies a word click to the active question. Clicks for any
// other question, or while the active question is terminal, are ignored.
func (s *Session) SelectWord(contentItemID, token string) (SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.arena.Lookup(contentItemID)
	if !ok {
		return SessionSnapshot{}, domain.ErrQuestionNotFound
	}
	if idx != s.active {
		return s.snapshotLocked(), nil
	}

	st := s.arena.At(idx)
	switch st.SelectWord(token) {
	case engine.TransitionCompleted, engine.TransitionChallengeFailed:
		s.stopTimerLocked()
		s.broadcastLocked(Event{Type: EventQuestion, Payload: s.questionSnapshotLocked(idx)})
		s.resolveLocked(idx, false)
	case engine.TransitionPlaced, engine.TransitionMismatch:
		s.broadcastLocked(Event{Type: EventQuestion, Payload: s.questionSnapshotLocked(idx)})
	}
	return s.snapshotLocked(), nil
}

// Retry restarts a failed question, activates it, and restarts its clock.
// Retrying reopens a session that had already reported completion.
func (s *Session) Retry(contentItemID string) (SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.arena.Lookup(contentItemID)
	if !ok {
		return SessionSnapshot{}, domain.ErrQuestionNotFound
	}

	st := s.arena.At(idx)
	if st.Retry() != engine.TransitionRetried {
		return s.snapshotLocked(), nil
	}

	s.active = idx
	s.finished = false
	s.sink.QuestionRetried(s.id, s.preview, contentItemID)
	s.startTimerLocked()
	s.broadcastLocked(Event{Type: EventQuestion, Payload: s.questionSnapshotLocked(idx)})
	return s.snapshotLocked(), nil
}

// Advance moves to the next unresolved question, scanning forward with wrap.
func (s *Session) Advance() (SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.arena.NextUnresolved(s.active)
	if !ok {
		return s.snapshotLocked(), nil
	}
	s.stopTimerLocked()
	s.active = next
	s.startTimerLocked()
	s.broadcastLocked(Event{Type: EventQuestion, Payload: s.questionSnapshotLocked(next)})
	return s.snapshotLocked(), nil
}

// Snapshot returns the current client-facing state.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Warn pushes a non-blocking warning onto the subscription stream.
func (s *Session) Warn(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastLocked(Event{Type: EventWarning, Payload: WarningPayload{Message: message}})
}

// Subscribe returns a channel of session events. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	// Sent under the lock so no broadcast can slip in ahead of the snapshot.
	ch <- Event{Type: EventSession, Payload: s.snapshotLocked()}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the timer and drops all subscribers. In-flight persistence
// records are left to the outbox; scores already computed are not lost.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopTimerLocked()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// resolveLocked persists the outcome of a question that just reached a
// terminal state and reports session completion when nothing is left.
func (s *Session) resolveLocked(idx int, timedOut bool) {
	st := s.arena.At(idx)
	s.sink.QuestionResolved(s.id, s.preview, domain.CompletionRecord{
		ContentItemID: st.Question().ContentItemID,
		Timeout:       timedOut,
		ExpectedScore: st.FinalScore(),
		ErrorCount:    st.ErrorCount(),
	})
	s.broadcastLocked(Event{Type: EventResolved, Payload: ResolvedPayload{
		ContentItemID: st.Question().ContentItemID,
		Status:        st.Status().String(),
		FinalScore:    st.FinalScore(),
		Timeout:       timedOut,
		TotalScore:    s.arena.TotalScore(),
	}})

	if s.arena.AllResolved() {
		s.finished = true
		s.broadcastLocked(Event{Type: EventSessionComplete, Payload: domain.SessionSummary{
			TotalScore:     s.arena.TotalScore(),
			TotalQuestions: s.arena.Len(),
		}})
	}
}

func (s *Session) startTimerLocked() {
	s.stopTimerLocked()
	if s.closed {
		return
	}
	st := s.arena.At(s.active)
	if st == nil || st.Resolved() || st.Question().TimeLimitSeconds == 0 {
		return
	}
	stop := make(chan struct{})
	s.timerStop = stop
	go s.runTimer(s.active, st.Generation(), stop)
}

func (s *Session) stopTimerLocked() {
	if s.timerStop != nil {
		close(s.timerStop)
		s.timerStop = nil
	}
}

func (s *Session) runTimer(idx, generation int, stop chan struct{}) {
	ticker := time.NewTicker(s.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.handleTick(idx, generation) {
				return
			}
		}
	}
}

// handleTick applies one second of countdown. Ticks from a stale attempt or a
// no-longer-active question are dropped; the generation check means a timer
// that fired just as a retry reset the clock cannot touch the new attempt.
func (s *Session) handleTick(idx, generation int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.arena.At(idx)
	if st == nil || idx != s.active || st.Generation() != generation || st.Resolved() {
		return false
	}

	remaining, expired := st.Tick()
	if !expired {
		s.broadcastLocked(Event{Type: EventTick, Payload: TickPayload{
			ContentItemID: st.Question().ContentItemID,
			TimeRemaining: remaining,
		}})
		return true
	}

	// The clock reached zero: the timer stops itself and resolves the
	// question through the timeout-scoring path.
	s.timerStop = nil
	if st.Timeout() == engine.TransitionTimedOut {
		s.broadcastLocked(Event{Type: EventQuestion, Payload: s.questionSnapshotLocked(idx)})
		s.resolveLocked(idx, true)
	}
	return false
}

func (s *Session) broadcastLocked(event Event) {
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Drop the oldest update rather than block the event path on a
			// slow subscriber.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

func (s *Session) questionSnapshotLocked(idx int) QuestionSnapshot {
	st := s.arena.At(idx)
	q := st.Question()

	snap := QuestionSnapshot{
		ContentItemID:     q.ContentItemID,
		Index:             idx,
		Status:            st.Status().String(),
		PlacedWords:       st.Placed(),
		RemainingPool:     st.Pool(),
		ErrorCount:        st.ErrorCount(),
		MaxErrors:         q.MaxErrors,
		CurrentScore:      st.CurrentScore(),
		ScoreCap:          st.ScoreCap(),
		TimeRemaining:     st.TimeRemaining(),
		HasRevealedAnswer: st.HasRevealedAnswer(),
		PlayAudio:         q.PlayAudio,
		AudioURL:          q.AudioURL,
		Translation:       q.Translation,
	}
	if st.Status() == engine.StatusChallengeFailed && q.AllowAnswerReveal {
		snap.RevealedSequence = q.CorrectSequence
	}
	return snap
}

func (s *Session) snapshotLocked() SessionSnapshot {
	return SessionSnapshot{
		SessionID:      s.id,
		AssignmentID:   s.assignmentID,
		ScoreCategory:  s.scoreCategory,
		Preview:        s.preview,
		TotalQuestions: s.arena.Len(),
		TotalScore:     s.arena.TotalScore(),
		Completed:      s.finished,
		ActiveQuestion: s.questionSnapshotLocked(s.active),
	}
}
