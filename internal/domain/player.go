package domain

import "time"

// Player represents a participant in a room. ID is the current session
// identifier and changes across reconnects; Username is the stable identity
// used to match a reconnecting session to its existing player.
type Player struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Score          int        `json:"score"`
	IsBot          bool       `json:"isBot,omitempty"`
	Connected      bool       `json:"connected"`
	DisconnectedAt *time.Time `json:"disconnectedAt,omitempty"`
	JoinedAt       time.Time  `json:"joinedAt"`
}

// NewPlayer creates a new connected human player
func NewPlayer(sessionID, username string) *Player {
	return &Player{
		ID:        sessionID,
		Username:  username,
		Score:     0,
		Connected: true,
		JoinedAt:  time.Now(),
	}
}

// NewBotPlayer creates a synthetic player. Bots are always considered connected.
func NewBotPlayer(id, username string) *Player {
	return &Player{
		ID:        id,
		Username:  username,
		Score:     0,
		IsBot:     true,
		Connected: true,
		JoinedAt:  time.Now(),
	}
}

// IsConnected returns true if the player counts as connected. Bots never
// disconnect.
func (p *Player) IsConnected() bool {
	return p.IsBot || p.Connected
}

// Disconnect marks the player as disconnected at the given time
func (p *Player) Disconnect(at time.Time) {
	if p.IsBot {
		return
	}
	p.Connected = false
	p.DisconnectedAt = &at
}

// Reconnect rebinds the player to a new session id and clears disconnect
// state. Score and join order are untouched.
func (p *Player) Reconnect(sessionID string) {
	p.ID = sessionID
	p.Connected = true
	p.DisconnectedAt = nil
}

// AddScore increases the player's score. Scores never decrease.
func (p *Player) AddScore(points int) {
	if points > 0 {
		p.Score += points
	}
}
