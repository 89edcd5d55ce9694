package engine

import "sentence-practice-service/internal/domain"

// Arena owns every QuestionState for one practice session: a single slice of
// states plus an index from content item ID to slice position. All callbacks
// resolve "the current question" through an index, never a shared pointer.
type Arena struct {
	states []*QuestionState
	index  map[string]int
}

// NewArena builds one state per question, all starting in progress with the
// full shuffled pool.
func NewArena(questions []domain.Question) *Arena {
	a := &Arena{
		states: make([]*QuestionState, 0, len(questions)),
		index:  make(map[string]int, len(questions)),
	}
	for i, q := range questions {
		a.states = append(a.states, NewQuestionState(q))
		a.index[q.ContentItemID] = i
	}
	return a
}

func (a *Arena) Len() int { return len(a.states) }

// At returns the state at a slice position; nil when out of range.
func (a *Arena) At(i int) *QuestionState {
	if i < 0 || i >= len(a.states) {
		return nil
	}
	return a.states[i]
}

// Lookup resolves a content item ID to its arena position.
func (a *Arena) Lookup(contentItemID string) (int, bool) {
	i, ok := a.index[contentItemID]
	return i, ok
}

// NextUnresolved scans forward from the given position, wrapping around, for
// the first question still in progress. Completed and failed-without-retry
// questions are skipped.
func (a *Arena) NextUnresolved(from int) (int, bool) {
	n := len(a.states)
	for step := 1; step <= n; step++ {
		i := (from + step) % n
		if !a.states[i].Resolved() {
			return i, true
		}
	}
	return -1, false
}

// AllResolved reports whether every question reached a terminal state.
func (a *Arena) AllResolved() bool {
	for _, s := range a.states {
		if !s.Resolved() {
			return false
		}
	}
	return true
}

// TotalScore sums the frozen scores of resolved questions. Recomputing from
// the arena keeps a failed-then-retried question from counting twice.
func (a *Arena) TotalScore() int {
	total := 0
	for _, s := range a.states {
		total += s.FinalScore()
	}
	return total
}
