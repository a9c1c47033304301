package domain

// GameState represents the coarse phase of a room, used by clients for routing
type GameState string

const (
	StateWaiting  GameState = "waiting"  // Lobby: players joining, game not started
	StatePlaying  GameState = "playing"  // Turns rotating through players
	StateFinished GameState = "finished" // All rounds exhausted
)

// String returns the string representation of the state
func (s GameState) String() string {
	return string(s)
}

// CanTransitionTo checks if a transition from the current state to target is valid
func (s GameState) CanTransitionTo(target GameState) bool {
	validTransitions := map[GameState][]GameState{
		StateWaiting: {StatePlaying},
		StatePlaying: {StateFinished},
	}

	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == target {
			return true
		}
	}
	return false
}
