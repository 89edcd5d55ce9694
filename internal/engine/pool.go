package engine

import "strings"

// Placement is the outcome of attempting to place a candidate word. Pool and
// Placed are fresh slices; the inputs are never mutated.
type Placement struct {
	IsMatch bool
	Pool    []string
	Placed  []string
}

// PlaceWord compares candidate against correctNext (whitespace-trimmed exact
// equality). On a match it appends the token to the placed sequence and
// removes the first occurrence of the candidate from the pool, which keeps
// duplicate words correct. On a mismatch the returned pool and placed
// sequence equal the inputs; the caller owns the error counter.
func PlaceWord(pool, placed []string, correctNext, candidate string) Placement {
	if strings.TrimSpace(candidate) != strings.TrimSpace(correctNext) {
		return Placement{IsMatch: false, Pool: pool, Placed: placed}
	}

	newPool := make([]string, 0, len(pool))
	removed := false
	for _, token := range pool {
		if !removed && strings.TrimSpace(token) == strings.TrimSpace(candidate) {
			removed = true
			continue
		}
		newPool = append(newPool, token)
	}

	newPlaced := make([]string, len(placed), len(placed)+1)
	copy(newPlaced, placed)
	newPlaced = append(newPlaced, correctNext)

	return Placement{IsMatch: true, Pool: newPool, Placed: newPlaced}
}
