package app

import (
	"context"
	"log"
	"time"

	"sentence-practice-service/internal/domain"
	"github.com/google/uuid"
)

// SessionRepository abstracts how practice sessions are stored (in-memory,
// Redis-backed, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuestionSetRepository loads assignment content (from cache/backing store).
type QuestionSetRepository interface {
	GetQuestionSet(ctx context.Context, assignmentID string) (domain.QuestionSet, error)
}

// PracticeService contains the practice-session use cases.
type PracticeService struct {
	sessions  SessionRepository
	sets      QuestionSetRepository
	recorder  Recorder
	outbox    *Outbox
	tickEvery time.Duration
}

func NewPracticeService(sessions SessionRepository, sets QuestionSetRepository, recorder Recorder, maxAttempts int, initialBackoff time.Duration) *PracticeService {
	return newPracticeService(sessions, sets, recorder, maxAttempts, initialBackoff, time.Second)
}

// NewPracticeServiceWithTick is test-only: it shortens the one-second timer
// tick so timeout paths run fast.
func NewPracticeServiceWithTick(sessions SessionRepository, sets QuestionSetRepository, recorder Recorder, maxAttempts int, initialBackoff, tickEvery time.Duration) *PracticeService {
	return newPracticeService(sessions, sets, recorder, maxAttempts, initialBackoff, tickEvery)
}

func newPracticeService(sessions SessionRepository, sets QuestionSetRepository, recorder Recorder, maxAttempts int, initialBackoff, tickEvery time.Duration) *PracticeService {
	s := &PracticeService{
		sessions:  sessions,
		sets:      sets,
		recorder:  recorder,
		tickEvery: tickEvery,
	}
	s.outbox = NewOutbox(recorder, maxAttempts, initialBackoff, s.warnSession)
	return s
}

// Start loads the question set and opens a practice session. A load failure
// is blocking: no session starts without content.
func (s *PracticeService) Start(ctx context.Context, assignmentID, userID string, preview bool) (SessionSnapshot, error) {
	set, err := s.sets.GetQuestionSet(ctx, assignmentID)
	if err != nil {
		return SessionSnapshot{}, err
	}
	if len(set.Questions) == 0 {
		return SessionSnapshot{}, domain.ErrEmptyQuestionSet
	}

	session := newSession(uuid.NewString(), set, userID, preview, s, s.tickEvery)
	s.sessions.Put(session)
	return session.Begin(), nil
}

// SelectWord applies a word click to the session's active question.
func (s *PracticeService) SelectWord(_ context.Context, sessionID, contentItemID, token string) (SessionSnapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return session.SelectWord(contentItemID, token)
}

// Retry restarts a failed question.
func (s *PracticeService) Retry(_ context.Context, sessionID, contentItemID string) (SessionSnapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return session.Retry(contentItemID)
}

// Advance moves the session to the next unresolved question.
func (s *PracticeService) Advance(_ context.Context, sessionID string) (SessionSnapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return session.Advance()
}

// Subscribe returns a channel of session events. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *PracticeService) Subscribe(_ context.Context, sessionID string) (<-chan Event, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// End tears a session down: the timer stops and subscribers are dropped, but
// records already handed to the outbox are still delivered.
func (s *PracticeService) End(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
}

// Shutdown flushes the outbox.
func (s *PracticeService) Shutdown() {
	s.outbox.Close()
}

// QuestionResolved implements ResolutionSink: completion records go through
// the outbox so the scoring path never waits on the network.
func (s *PracticeService) QuestionResolved(sessionID string, preview bool, rec domain.CompletionRecord) {
	s.outbox.Enqueue(sessionID, preview, rec)
}

// QuestionRetried implements ResolutionSink: retry analytics are
// fire-and-forget and never affect local state.
func (s *PracticeService) QuestionRetried(sessionID string, preview bool, contentItemID string) {
	go func() {
		if err := s.recorder.RecordRetry(context.Background(), contentItemID, preview); err != nil {
			log.Printf("retry record for %s failed: %v", contentItemID, err)
		}
	}()
}

func (s *PracticeService) warnSession(sessionID, message string) {
	if session, ok := s.sessions.Get(sessionID); ok {
		session.Warn(message)
	}
}
