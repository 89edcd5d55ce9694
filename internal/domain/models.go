package domain

// Question is a single sentence-rearrangement exercise, immutable once loaded.
type Question struct {
	ContentItemID     string   `json:"contentItemId"`
	WordCount         int      `json:"wordCount"`
	MaxErrors         int      `json:"maxErrors"`
	TimeLimitSeconds  int      `json:"timeLimitSeconds"` // 0 means unlimited
	CorrectSequence   []string `json:"correctSequence"`
	ShuffledPool      []string `json:"shuffledPool"`
	PlayAudio         bool     `json:"playAudio"`
	AudioURL          string   `json:"audioUrl,omitempty"`
	Translation       string   `json:"translation,omitempty"`
	AllowAnswerReveal bool     `json:"allowAnswerReveal"`
}

// QuestionSet is the full assignment payload a practice session runs against.
type QuestionSet struct {
	AssignmentID   string     `json:"assignmentId"`
	ScoreCategory  string     `json:"scoreCategory"` // display-only label
	TotalQuestions int        `json:"totalQuestions"`
	Questions      []Question `json:"questions"`
}

// CompletionRecord is posted to the backend once per question resolution.
type CompletionRecord struct {
	ContentItemID string `json:"contentItemId"`
	Timeout       bool   `json:"timeout"`
	ExpectedScore int    `json:"expectedScore"`
	ErrorCount    int    `json:"errorCount"`
}

// SessionSummary is reported once no unresolved question remains.
type SessionSummary struct {
	TotalScore     int `json:"totalScore"`
	TotalQuestions int `json:"totalQuestions"`
}

// DeriveMaxErrors computes the default error budget for a word count.
func DeriveMaxErrors(wordCount int) int {
	if wordCount <= 10 {
		return 3
	}
	return 5
}

// Normalize fills derived fields the backend may omit: the word count from
// the correct sequence and the default error budget.
func (q *Question) Normalize() {
	if q.WordCount == 0 {
		q.WordCount = len(q.CorrectSequence)
	}
	if q.MaxErrors == 0 {
		q.MaxErrors = DeriveMaxErrors(q.WordCount)
	}
}
