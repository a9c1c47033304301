package domain

import "time"

// GameSettings holds configurable game parameters
type GameSettings struct {
	MinPlayers       int           `json:"minPlayers"`
	DefaultMaxRounds int           `json:"defaultMaxRounds"`
	MaxRoundsLimit   int           `json:"maxRoundsLimit"`
	TurnDuration     time.Duration `json:"turnDuration"`
	InterTurnDelay   time.Duration `json:"interTurnDelay"`
	GuessEndDelay    time.Duration `json:"guessEndDelay"`
	BotChooseDelay   time.Duration `json:"botChooseDelay"`
	BotOfferDelay    time.Duration `json:"botOfferDelay"`
	GracePeriod      time.Duration `json:"gracePeriod"`
	WordOptionCount  int           `json:"wordOptionCount"`
}

// DefaultGameSettings returns the default game settings
func DefaultGameSettings() GameSettings {
	return GameSettings{
		MinPlayers:       2,
		DefaultMaxRounds: 3,
		MaxRoundsLimit:   10,
		TurnDuration:     60 * time.Second,
		InterTurnDelay:   3 * time.Second,
		GuessEndDelay:    2 * time.Second,
		BotChooseDelay:   2 * time.Second,
		BotOfferDelay:    10 * time.Second,
		GracePeriod:      60 * time.Second,
		WordOptionCount:  4,
	}
}

// TurnSeconds returns the turn duration in whole seconds, as sent to clients
func (s GameSettings) TurnSeconds() int {
	return int(s.TurnDuration / time.Second)
}
