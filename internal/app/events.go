package app

// Event types pushed to session subscribers.
const (
	EventSession         = "session"
	EventQuestion        = "question"
	EventTick            = "tick"
	EventResolved        = "resolved"
	EventSessionComplete = "sessionComplete"
	EventWarning         = "warning"
)

// Event is one notification on a session's subscription stream.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// QuestionSnapshot is the client-facing view of one question's state.
type QuestionSnapshot struct {
	ContentItemID     string   `json:"contentItemId"`
	Index             int      `json:"index"`
	Status            string   `json:"status"`
	PlacedWords       []string `json:"placedWords"`
	RemainingPool     []string `json:"remainingPool"`
	ErrorCount        int      `json:"errorCount"`
	MaxErrors         int      `json:"maxErrors"`
	CurrentScore      int      `json:"currentScore"`
	ScoreCap          int      `json:"scoreCap"`
	TimeRemaining     int      `json:"timeRemaining"`
	HasRevealedAnswer bool     `json:"hasRevealedAnswer"`
	RevealedSequence  []string `json:"revealedSequence,omitempty"`
	PlayAudio         bool     `json:"playAudio"`
	AudioURL          string   `json:"audioUrl,omitempty"`
	Translation       string   `json:"translation,omitempty"`
}

// SessionSnapshot is the client-facing view of the whole practice session.
type SessionSnapshot struct {
	SessionID      string           `json:"sessionId"`
	AssignmentID   string           `json:"assignmentId"`
	ScoreCategory  string           `json:"scoreCategory,omitempty"`
	Preview        bool             `json:"preview"`
	TotalQuestions int              `json:"totalQuestions"`
	TotalScore     int              `json:"totalScore"`
	Completed      bool             `json:"completed"`
	ActiveQuestion QuestionSnapshot `json:"activeQuestion"`
}

// TickPayload carries one second of countdown.
type TickPayload struct {
	ContentItemID string `json:"contentItemId"`
	TimeRemaining int    `json:"timeRemaining"`
}

// ResolvedPayload announces a question reaching a terminal state.
type ResolvedPayload struct {
	ContentItemID string `json:"contentItemId"`
	Status        string `json:"status"`
	FinalScore    int    `json:"finalScore"`
	Timeout       bool   `json:"timeout"`
	TotalScore    int    `json:"totalScore"`
}

// WarningPayload surfaces a non-blocking problem, e.g. a score record the
// backend refused to accept.
type WarningPayload struct {
	Message string `json:"message"`
}
