package domain

import (
	"strings"
	"time"
)

// Room represents one game session identified by a short code. Players are
// kept in join order, which is also the drawer rotation order. Disconnected
// players are retained (never removed) so the rotation length only changes
// when someone joins or a bot is added.
//
// Timer handles are deliberately NOT part of the room: the snapshot sent to
// clients is plain data, and live resources are owned by the app layer.
type Room struct {
	Code          string    `json:"code"`
	Players       []*Player `json:"players"`
	MaxRounds     int       `json:"maxRounds"`
	CurrentRound  int       `json:"currentRound"`
	DrawerIndex   int       `json:"drawerIndex"`
	CurrentDrawer string    `json:"currentDrawer,omitempty"`
	CurrentWord   string    `json:"currentWord,omitempty"`
	TurnStartTime time.Time `json:"turnStartTime,omitempty"`
	GameState     GameState `json:"gameState"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewRoom creates a room in the waiting state with a single connected player
func NewRoom(code string, creator *Player, maxRounds int) *Room {
	return &Room{
		Code:      code,
		Players:   []*Player{creator},
		MaxRounds: maxRounds,
		GameState: StateWaiting,
		CreatedAt: time.Now(),
	}
}

// AddPlayer appends a new player to the rotation
func (r *Room) AddPlayer(p *Player) {
	r.Players = append(r.Players, p)
}

// FindByUsername returns the player with the given username, if any.
// Matching is exact: usernames are the stable identity within a room.
func (r *Room) FindByUsername(username string) (*Player, bool) {
	for _, p := range r.Players {
		if p.Username == username {
			return p, true
		}
	}
	return nil, false
}

// FindBySessionID returns the player bound to the given session id, if any
func (r *Room) FindBySessionID(sessionID string) (*Player, bool) {
	for _, p := range r.Players {
		if p.ID == sessionID {
			return p, true
		}
	}
	return nil, false
}

// Drawer returns the player whose turn it is
func (r *Room) Drawer() *Player {
	if r.DrawerIndex < 0 || r.DrawerIndex >= len(r.Players) {
		return nil
	}
	return r.Players[r.DrawerIndex]
}

// AdvanceDrawer rotates the drawer role to the next player in join order.
// When the index wraps back to zero a full round has completed and
// CurrentRound increments. Returns true if the rotation wrapped.
func (r *Room) AdvanceDrawer() bool {
	if len(r.Players) == 0 {
		return false
	}

	r.DrawerIndex = (r.DrawerIndex + 1) % len(r.Players)
	if r.DrawerIndex == 0 {
		r.CurrentRound++
		return true
	}
	return false
}

// RoundsExhausted reports whether all configured rounds have been played
func (r *Room) RoundsExhausted() bool {
	return r.CurrentRound >= r.MaxRounds
}

// ConnectedHumanCount returns the number of connected non-bot players
func (r *Room) ConnectedHumanCount() int {
	count := 0
	for _, p := range r.Players {
		if !p.IsBot && p.Connected {
			count++
		}
	}
	return count
}

// HasBot reports whether a synthetic player is present
func (r *Room) HasBot() bool {
	for _, p := range r.Players {
		if p.IsBot {
			return true
		}
	}
	return false
}

// BotPlayer returns the synthetic player, if any
func (r *Room) BotPlayer() (*Player, bool) {
	for _, p := range r.Players {
		if p.IsBot {
			return p, true
		}
	}
	return nil, false
}

// IsCorrectGuess reports whether text matches the active word. Matching is
// exact after trimming and case-folding, never fuzzy.
func (r *Room) IsCorrectGuess(text string) bool {
	if r.CurrentWord == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(text), r.CurrentWord)
}

// Snapshot returns a copy of the room safe to hand to the transport layer.
// Player structs are copied so later mutations don't race with serialization.
func (r *Room) Snapshot() *Room {
	players := make([]*Player, len(r.Players))
	for i, p := range r.Players {
		cp := *p
		players[i] = &cp
	}

	cp := *r
	cp.Players = players
	return &cp
}
