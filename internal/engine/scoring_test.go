package engine

import "testing"

func TestPointsPerWord(t *testing.T) {
	tests := []struct {
		wordCount int
		want      int
	}{
		{wordCount: 5, want: 20},
		{wordCount: 10, want: 10},
		{wordCount: 3, want: 33},
		{wordCount: 12, want: 8},
		{wordCount: 0, want: 0},
	}
	for _, tt := range tests {
		if got := PointsPerWord(tt.wordCount); got != tt.want {
			t.Errorf("PointsPerWord(%d) = %d, want %d", tt.wordCount, got, tt.want)
		}
	}
}

func TestLiveScore(t *testing.T) {
	tests := []struct {
		name       string
		errorCount int
		wordCount  int
		scoreCap   int
		want       int
	}{
		{name: "no errors", errorCount: 0, wordCount: 5, scoreCap: 100, want: 100},
		{name: "two errors of five words", errorCount: 2, wordCount: 5, scoreCap: 100, want: 60},
		{name: "clamped to zero", errorCount: 6, wordCount: 5, scoreCap: 100, want: 0},
		{name: "capped after reveal", errorCount: 0, wordCount: 5, scoreCap: 60, want: 60},
		{name: "cap and errors", errorCount: 1, wordCount: 5, scoreCap: 60, want: 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LiveScore(tt.errorCount, tt.wordCount, tt.scoreCap); got != tt.want {
				t.Fatalf("LiveScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompletionScoreFloor(t *testing.T) {
	// Two errors on a five-word question: 100 - 2*20 = 60, well above the floor.
	if got := CompletionScore(2, 5, 100); got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}
	// A completed attempt never drops below the floor.
	if got := CompletionScore(7, 7, 100); got != MinimumScore(7) {
		t.Fatalf("expected floor %d, got %d", MinimumScore(7), got)
	}
	// The cap still wins over the floor.
	if got := CompletionScore(0, 5, 60); got != 60 {
		t.Fatalf("expected cap 60, got %d", got)
	}
	// Even a one-word question, whose floor is the full score, stays capped
	// after a reveal.
	if got := CompletionScore(0, 1, 60); got != 60 {
		t.Fatalf("expected cap to win over the one-word floor, got %d", got)
	}
}

func TestTimeoutScoreZeroEffort(t *testing.T) {
	if got := TimeoutScore(0, 4, 0, false, 100); got != 0 {
		t.Fatalf("zero-effort timeout must score 0, got %d", got)
	}
}

func TestTimeoutScorePartialCredit(t *testing.T) {
	// Ten words, six placed, no errors: penalty 4*10=40, score 60.
	if got := TimeoutScore(6, 10, 0, false, 100); got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}
}

func TestTimeoutScoreFloorsEngagedAttempts(t *testing.T) {
	// One error and nothing placed is still engagement: raw goes negative but
	// the floor holds.
	if got := TimeoutScore(0, 10, 1, false, 100); got != MinimumScore(10) {
		t.Fatalf("expected floor %d, got %d", MinimumScore(10), got)
	}
	// A revealed answer alone also disables the zero-effort case.
	if got := TimeoutScore(0, 10, 0, true, 60); got != MinimumScore(10) {
		t.Fatalf("expected floor %d, got %d", MinimumScore(10), got)
	}
}

func TestTimeoutScoreRespectsCap(t *testing.T) {
	if got := TimeoutScore(9, 10, 0, true, 60); got > 60 {
		t.Fatalf("timeout score %d exceeds cap 60", got)
	}
}
