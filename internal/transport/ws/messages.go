package ws

import "encoding/json"

// MessageType represents the type of an inbound WebSocket message. The names
// are the wire event names clients emit.
type MessageType string

// Client → Server message types
const (
	MsgCreateRoom  MessageType = "create-room"
	MsgCheckRoom   MessageType = "check-room"
	MsgJoinRoom    MessageType = "join-room"
	MsgAddBot      MessageType = "add-bot"
	MsgStartGame   MessageType = "start-game"
	MsgChooseWord  MessageType = "choose-word"
	MsgDraw        MessageType = "draw"
	MsgClearCanvas MessageType = "clear-canvas"
	MsgChatMessage MessageType = "chat-message"
)

// ClientMessage represents a message from client to server. Payload stays raw
// until the type is known, then is decoded into the matching struct below.
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CreateRoomPayload is the payload for create-room
type CreateRoomPayload struct {
	Username  string `json:"username" validate:"required,max=24"`
	MaxRounds int    `json:"maxRounds" validate:"min=0,max=10"`
}

// CheckRoomPayload is the payload for check-room
type CheckRoomPayload struct {
	RoomCode string `json:"roomCode" validate:"required,len=6"`
}

// JoinRoomPayload is the payload for join-room
type JoinRoomPayload struct {
	Username string `json:"username" validate:"required,max=24"`
	RoomCode string `json:"roomCode" validate:"required,len=6"`
}

// RoomScopedPayload is the payload for messages that only carry a room code
// (add-bot, start-game, clear-canvas)
type RoomScopedPayload struct {
	RoomCode string `json:"roomCode" validate:"required,len=6"`
}

// ChooseWordPayload is the payload for choose-word
type ChooseWordPayload struct {
	RoomCode string `json:"roomCode" validate:"required,len=6"`
	Word     string `json:"word" validate:"required"`
}

// DrawPayload is the payload for draw. Stroke data is opaque to the server
// and relayed as-is.
type DrawPayload struct {
	RoomCode   string          `json:"roomCode" validate:"required,len=6"`
	StrokeData json.RawMessage `json:"strokeData"`
}

// ChatPayload is the payload for chat-message
type ChatPayload struct {
	RoomCode string `json:"roomCode" validate:"required,len=6"`
	Message  string `json:"message" validate:"required,max=256"`
}
