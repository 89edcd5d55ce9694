package engine

// FullScore is the per-question starting score and default cap.
const FullScore = 100

// RevealedScoreCap is the permanent cap applied once the learner has seen the
// correct sequence after a failed challenge.
const RevealedScoreCap = 60

// PointsPerWord returns the integer score value of a single word.
func PointsPerWord(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	return FullScore / wordCount
}

// MinimumScore is the floor guaranteed to any attempt that is not a
// zero-effort, never-revealed timeout.
func MinimumScore(wordCount int) int {
	return PointsPerWord(wordCount)
}

// LiveScore is the expected score shown while a question is in progress.
func LiveScore(errorCount, wordCount, scoreCap int) int {
	score := FullScore - errorCount*PointsPerWord(wordCount)
	if score < 0 {
		score = 0
	}
	if score > scoreCap {
		score = scoreCap
	}
	return score
}

// CompletionScore is the live score floored at MinimumScore. The floor applies
// only to attempts that actually reached completion; the cap still wins if the
// two conflict.
func CompletionScore(errorCount, wordCount, scoreCap int) int {
	score := LiveScore(errorCount, wordCount, scoreCap)
	if min := MinimumScore(wordCount); score < min {
		score = min
	}
	if score > scoreCap {
		score = scoreCap
	}
	return score
}

// TimeoutScore resolves a question whose clock ran out. A learner who never
// placed a word, never erred, and never saw the answer scores zero; every
// other timeout keeps the live score minus a penalty per unanswered word,
// floored at MinimumScore and capped at scoreCap.
func TimeoutScore(placedCount, totalCount, errorCount int, hasRevealedAnswer bool, scoreCap int) int {
	if placedCount == 0 && errorCount == 0 && !hasRevealedAnswer {
		return 0
	}

	unansweredPenalty := (totalCount - placedCount) * PointsPerWord(totalCount)
	score := LiveScore(errorCount, totalCount, scoreCap) - unansweredPenalty
	if score < 0 {
		score = 0
	}
	if min := MinimumScore(totalCount); score < min {
		score = min
	}
	if score > scoreCap {
		score = scoreCap
	}
	return score
}
