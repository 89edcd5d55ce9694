package engine

import "sentence-practice-service/internal/domain"

// Status is the lifecycle state of one question within a practice session.
type Status int

const (
	StatusInProgress Status = iota
	StatusCompleted
	StatusChallengeFailed
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusChallengeFailed:
		return "challenge-failed"
	default:
		return "in-progress"
	}
}

// Transition reports what a state-machine event did. Events received in a
// terminal state return TransitionIgnored rather than an error; late timer
// ticks and double clicks must never corrupt state.
type Transition int

const (
	TransitionIgnored Transition = iota
	TransitionPlaced
	TransitionMismatch
	TransitionCompleted
	TransitionChallengeFailed
	TransitionTimedOut
	TransitionRetried
)

// attempt holds the fields Retry replaces wholesale.
type attempt struct {
	placed        []string
	pool          []string
	errorCount    int
	timeRemaining int
	generation    int
}

// sticky holds the attempt-independent fields that survive retries. Keeping
// them apart from attempt means a retry cannot reset them by accident.
type sticky struct {
	hasRevealedAnswer bool
	scoreCap          int
}

// QuestionState is the mutable state machine for a single question. It is not
// safe for concurrent use; the session controller serializes all events.
type QuestionState struct {
	question domain.Question
	status   Status
	attempt  attempt
	sticky   sticky

	finalScore int
	timedOut   bool
}

// NewQuestionState initializes a fresh in-progress state with the full pool.
func NewQuestionState(q domain.Question) *QuestionState {
	s := &QuestionState{
		question: q,
		status:   StatusInProgress,
		sticky:   sticky{scoreCap: FullScore},
	}
	s.resetAttempt()
	return s
}

func (s *QuestionState) resetAttempt() {
	pool := make([]string, len(s.question.ShuffledPool))
	copy(pool, s.question.ShuffledPool)
	s.attempt = attempt{
		placed:        nil,
		pool:          pool,
		errorCount:    0,
		timeRemaining: s.question.TimeLimitSeconds,
		generation:    s.attempt.generation + 1,
	}
}

// SelectWord processes a word click. Valid only while in progress; terminal
// states swallow the event.
func (s *QuestionState) SelectWord(token string) Transition {
	if s.status != StatusInProgress {
		return TransitionIgnored
	}

	correctNext := s.question.CorrectSequence[len(s.attempt.placed)]
	placement := PlaceWord(s.attempt.pool, s.attempt.placed, correctNext, token)
	if placement.IsMatch {
		s.attempt.pool = placement.Pool
		s.attempt.placed = placement.Placed
		if len(s.attempt.placed) == s.question.WordCount {
			s.status = StatusCompleted
			s.finalScore = CompletionScore(s.attempt.errorCount, s.question.WordCount, s.sticky.scoreCap)
			return TransitionCompleted
		}
		return TransitionPlaced
	}

	s.attempt.errorCount++
	if s.attempt.errorCount >= s.question.MaxErrors {
		s.status = StatusChallengeFailed
		// The frozen score reflects the attempt as played, before any reveal
		// drops the cap for future attempts.
		s.finalScore = LiveScore(s.attempt.errorCount, s.question.WordCount, s.sticky.scoreCap)
		if s.question.AllowAnswerReveal {
			s.sticky.hasRevealedAnswer = true
			s.sticky.scoreCap = RevealedScoreCap
		}
		return TransitionChallengeFailed
	}
	return TransitionMismatch
}

// Timeout resolves the question as a completed attempt scored by the timeout
// formula. Running out of time is not a failed challenge.
func (s *QuestionState) Timeout() Transition {
	if s.status != StatusInProgress {
		return TransitionIgnored
	}
	s.status = StatusCompleted
	s.timedOut = true
	s.attempt.timeRemaining = 0
	s.finalScore = TimeoutScore(
		len(s.attempt.placed),
		s.question.WordCount,
		s.attempt.errorCount,
		s.sticky.hasRevealedAnswer,
		s.sticky.scoreCap,
	)
	return TransitionTimedOut
}

// Retry restarts a failed challenge with the identical shuffled pool. Sticky
// reveal state is preserved; everything else resets.
func (s *QuestionState) Retry() Transition {
	if s.status != StatusChallengeFailed {
		return TransitionIgnored
	}
	s.status = StatusInProgress
	s.finalScore = 0
	s.timedOut = false
	s.resetAttempt()
	return TransitionRetried
}

// Tick counts down one second. It reports whether the clock just expired; the
// caller then invokes Timeout through the same serialized event path.
func (s *QuestionState) Tick() (remaining int, expired bool) {
	if s.status != StatusInProgress || s.question.TimeLimitSeconds == 0 {
		return s.attempt.timeRemaining, false
	}
	s.attempt.timeRemaining--
	if s.attempt.timeRemaining <= 0 {
		s.attempt.timeRemaining = 0
		return 0, true
	}
	return s.attempt.timeRemaining, false
}

// Question returns the immutable question backing this state.
func (s *QuestionState) Question() domain.Question { return s.question }

func (s *QuestionState) Status() Status { return s.status }

// Resolved reports whether the question reached a terminal state.
func (s *QuestionState) Resolved() bool {
	return s.status == StatusCompleted || s.status == StatusChallengeFailed
}

// Placed returns a copy of the correctly placed prefix.
func (s *QuestionState) Placed() []string {
	out := make([]string, len(s.attempt.placed))
	copy(out, s.attempt.placed)
	return out
}

// Pool returns a copy of the not-yet-placed tokens.
func (s *QuestionState) Pool() []string {
	out := make([]string, len(s.attempt.pool))
	copy(out, s.attempt.pool)
	return out
}

func (s *QuestionState) ErrorCount() int    { return s.attempt.errorCount }
func (s *QuestionState) TimeRemaining() int { return s.attempt.timeRemaining }

// Generation identifies the current attempt; it increments on every retry so
// stale timer callbacks can be detected and dropped.
func (s *QuestionState) Generation() int { return s.attempt.generation }

func (s *QuestionState) HasRevealedAnswer() bool { return s.sticky.hasRevealedAnswer }
func (s *QuestionState) ScoreCap() int           { return s.sticky.scoreCap }

// CurrentScore is the live score while in progress and the frozen final score
// once resolved.
func (s *QuestionState) CurrentScore() int {
	if s.Resolved() {
		return s.finalScore
	}
	return LiveScore(s.attempt.errorCount, s.question.WordCount, s.sticky.scoreCap)
}

// FinalScore is the frozen score of a resolved question, zero otherwise.
func (s *QuestionState) FinalScore() int {
	if !s.Resolved() {
		return 0
	}
	return s.finalScore
}

// TimedOut reports whether the question was resolved by the clock.
func (s *QuestionState) TimedOut() bool { return s.timedOut }
