package domain

import "time"

const (
	// MaxGuessScore is awarded for an instant correct guess
	MaxGuessScore = 100

	// MinGuessScore is the floor for any correct guess
	MinGuessScore = 10

	// scoreDecayStep is how much elapsed time costs one point
	scoreDecayStep = 600 * time.Millisecond
)

// GuessScore computes the time-decayed score for a correct guess made
// elapsed time after the word was chosen: max(100 - floor(ms/600), 10).
func GuessScore(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}

	score := MaxGuessScore - int(elapsed/scoreDecayStep)
	if score < MinGuessScore {
		return MinGuessScore
	}
	return score
}
