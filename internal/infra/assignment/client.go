package assignment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sentence-practice-service/internal/domain"
)

// StatusError is a non-2xx response from the assignment backend. 5xx and
// rate-limit responses are transient and worth retrying; other 4xx are not.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("assignment backend returned status %d", e.Code)
}

func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client talks to the assignment/score-recording backend over JSON HTTP.
// Preview sessions hit the preview base URL so demo traffic never touches
// real score records.
type Client struct {
	http           *http.Client
	baseURL        string
	previewBaseURL string
}

func NewClient(baseURL, previewBaseURL string, timeout time.Duration) *Client {
	if previewBaseURL == "" {
		previewBaseURL = strings.TrimRight(baseURL, "/") + "/preview"
	}
	return &Client{
		http:           &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(baseURL, "/"),
		previewBaseURL: strings.TrimRight(previewBaseURL, "/"),
	}
}

type questionDTO struct {
	ContentItemID     string   `json:"contentItemId"`
	ShuffledPool      []string `json:"shuffledPool"`
	WordCount         int      `json:"wordCount"`
	MaxErrors         int      `json:"maxErrors"`
	TimeLimitSeconds  int      `json:"timeLimitSeconds"`
	PlayAudio         bool     `json:"playAudio"`
	AudioURL          string   `json:"audioUrl"`
	Translation       string   `json:"translation"`
	OriginalText      string   `json:"originalText"`
	AllowAnswerReveal bool     `json:"allowAnswerReveal"`
}

type questionSetDTO struct {
	ScoreCategory  string        `json:"scoreCategory"`
	TotalQuestions int           `json:"totalQuestions"`
	Questions      []questionDTO `json:"questions"`
}

// LoadQuestionSet fetches and normalizes the question set for an assignment.
func (c *Client) LoadQuestionSet(ctx context.Context, assignmentID string) (domain.QuestionSet, error) {
	url := fmt.Sprintf("%s/assignments/%s/questions", c.baseURL, assignmentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("build question-set request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("fetch question set: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.QuestionSet{}, domain.ErrAssignmentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return domain.QuestionSet{}, &StatusError{Code: resp.StatusCode}
	}

	var dto questionSetDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("decode question set: %w", err)
	}

	set := domain.QuestionSet{
		AssignmentID:   assignmentID,
		ScoreCategory:  dto.ScoreCategory,
		TotalQuestions: dto.TotalQuestions,
		Questions:      make([]domain.Question, 0, len(dto.Questions)),
	}
	for _, qd := range dto.Questions {
		q := domain.Question{
			ContentItemID:     qd.ContentItemID,
			WordCount:         qd.WordCount,
			MaxErrors:         qd.MaxErrors,
			TimeLimitSeconds:  qd.TimeLimitSeconds,
			CorrectSequence:   strings.Fields(qd.OriginalText),
			ShuffledPool:      qd.ShuffledPool,
			PlayAudio:         qd.PlayAudio,
			AudioURL:          qd.AudioURL,
			Translation:       qd.Translation,
			AllowAnswerReveal: qd.AllowAnswerReveal,
		}
		q.Normalize()
		set.Questions = append(set.Questions, q)
	}
	if set.TotalQuestions == 0 {
		set.TotalQuestions = len(set.Questions)
	}
	if len(set.Questions) == 0 {
		return domain.QuestionSet{}, domain.ErrEmptyQuestionSet
	}
	return set, nil
}

// RecordCompletion posts one resolution record. The caller guarantees
// at-most-one call per resolution event.
func (c *Client) RecordCompletion(ctx context.Context, rec domain.CompletionRecord, preview bool) error {
	return c.post(ctx, "/completions", rec, preview)
}

// RecordRetry posts one retry analytics event.
func (c *Client) RecordRetry(ctx context.Context, contentItemID string, preview bool) error {
	body := struct {
		ContentItemID string `json:"contentItemId"`
	}{ContentItemID: contentItemID}
	return c.post(ctx, "/retries", body, preview)
}

func (c *Client) post(ctx context.Context, path string, body any, preview bool) error {
	base := c.baseURL
	if preview {
		base = c.previewBaseURL
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build record request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post record: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}
