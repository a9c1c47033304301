package domain

import "time"

// EventType identifies an outbound room event. The names are the wire event
// names consumed by clients.
type EventType string

const (
	EventConnected     EventType = "connected"
	EventRoomCreated   EventType = "room-created"
	EventRoomExists    EventType = "room-exists"
	EventRoomNotFound  EventType = "room-not-found"
	EventGameUpdate    EventType = "game-update"
	EventTurnStarted   EventType = "turn-started"
	EventWordChosen    EventType = "word-chosen"
	EventTimerUpdate   EventType = "timer-update"
	EventTurnEnded     EventType = "turn-ended"
	EventChatMessage   EventType = "chat-message"
	EventCorrectGuess  EventType = "correct-guess"
	EventDrawData      EventType = "draw-data"
	EventCanvasCleared EventType = "canvas-cleared"
	EventShowBotOption EventType = "show-bot-option"
	EventError         EventType = "error"
)

// RoomEvent is an event produced by a room, broadcast to every session
// subscribed to the room code (or to a single session when SessionID is set)
type RoomEvent struct {
	Type      EventType   `json:"type"`
	RoomCode  string      `json:"roomCode,omitempty"`
	SessionID string      `json:"-"` // target session; empty means broadcast
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a room-wide event
func NewEvent(eventType EventType, roomCode string, payload interface{}) *RoomEvent {
	return &RoomEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewSessionEvent creates an event addressed to a single session
func NewSessionEvent(eventType EventType, roomCode, sessionID string, payload interface{}) *RoomEvent {
	return &RoomEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		SessionID: sessionID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Event payloads

// ConnectedPayload tells a freshly connected client its session id, so it can
// recognize itself in room snapshots
type ConnectedPayload struct {
	SessionID string `json:"sessionId"`
}

// RoomPayload carries a full room snapshot
type RoomPayload struct {
	Room *Room `json:"room"`
}

// TurnStartedPayload announces a new turn. WordOptions is omitted when the
// drawer is a bot (the bot picks for itself).
type TurnStartedPayload struct {
	Room          *Room    `json:"room"`
	CurrentDrawer string   `json:"currentDrawer"`
	WordOptions   []string `json:"wordOptions,omitempty"`
	TimeLeft      int      `json:"timeLeft"`
}

// WordChosenPayload announces the drawer picked a word. The word itself is
// visible to everyone; guessers type it back in chat.
type WordChosenPayload struct {
	Word     string `json:"word"`
	TimeLeft int    `json:"timeLeft"`
}

// TimerUpdatePayload is sent on every countdown tick
type TimerUpdatePayload struct {
	TimeLeft int `json:"timeLeft"`
}

// ChatMessagePayload is an ordinary chat line
type ChatMessagePayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// CorrectGuessPayload announces a scored guess together with the updated room
type CorrectGuessPayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
	Score    int    `json:"score"`
	Room     *Room  `json:"room"`
}

// ErrorPayload carries a human-readable error message; clients redirect on it
type ErrorPayload struct {
	Message string `json:"message"`
}
