package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"sketchparty/internal/app"
	"sketchparty/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 65536

	// Size of the send channel buffer
	sendBufferSize = 256
)

var validate = validator.New()

// Client represents a WebSocket client connection. One connection is one
// session id; the session id is assigned at upgrade and dies with the
// connection, while the player's username survives for reconnects.
type Client struct {
	conn      *websocket.Conn
	registry  *app.Registry
	sessionID string
	send      chan []byte
	done      chan struct{}
	logger    *slog.Logger
	mu        sync.Mutex
	closed    bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, registry *app.Registry, sessionID string, logger *slog.Logger) *Client {
	return &Client{
		conn:      conn,
		registry:  registry,
		sessionID: sessionID,
		send:      make(chan []byte, sendBufferSize),
		done:      make(chan struct{}),
		logger:    logger,
	}
}

// SessionID implements app.ClientConnection
func (c *Client) SessionID() string {
	return c.sessionID
}

// Send implements app.ClientConnection. It never blocks: the room lock may be
// held by the caller, so a slow reader only costs itself dropped messages.
func (c *Client) Send(event *domain.RoomEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("send buffer full, message dropped", "sessionID", c.sessionID)
		return nil
	}
}

// Close implements app.ClientConnection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.sendConnected()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.registry.HandleDisconnect(c.sessionID)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("Invalid message format")
		return
	}

	switch msg.Type {
	case MsgCreateRoom:
		c.handleCreateRoom(msg.Payload)
	case MsgCheckRoom:
		c.handleCheckRoom(msg.Payload)
	case MsgJoinRoom:
		c.handleJoinRoom(msg.Payload)
	case MsgAddBot:
		c.handleAddBot(msg.Payload)
	case MsgStartGame:
		c.handleStartGame(msg.Payload)
	case MsgChooseWord:
		c.handleChooseWord(msg.Payload)
	case MsgDraw:
		c.handleDraw(msg.Payload)
	case MsgClearCanvas:
		c.handleClearCanvas(msg.Payload)
	case MsgChatMessage:
		c.handleChatMessage(msg.Payload)
	default:
		c.sendError("Unknown message type")
	}
}

// decode unmarshals and validates a payload into dst
func (c *Client) decode(data json.RawMessage, dst interface{}) bool {
	if err := json.Unmarshal(data, dst); err != nil {
		c.sendError("Invalid payload")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		c.sendError("Invalid payload: " + err.Error())
		return false
	}
	return true
}

// handleCreateRoom handles a create-room message
func (c *Client) handleCreateRoom(data json.RawMessage) {
	var payload CreateRoomPayload
	if !c.decode(data, &payload) {
		return
	}

	session, err := c.registry.CreateRoom(c, payload.Username, payload.MaxRounds)
	if err != nil {
		c.sendError("Failed to create room")
		return
	}

	c.Send(domain.NewSessionEvent(domain.EventRoomCreated, session.Code(), c.sessionID, &domain.RoomPayload{
		Room: session.Snapshot(),
	}))
}

// handleCheckRoom handles a check-room message
func (c *Client) handleCheckRoom(data json.RawMessage) {
	var payload CheckRoomPayload
	if !c.decode(data, &payload) {
		return
	}

	code := normalizeCode(payload.RoomCode)
	if _, err := c.registry.Find(code); err != nil {
		c.Send(domain.NewSessionEvent(domain.EventRoomNotFound, code, c.sessionID, nil))
		return
	}

	c.Send(domain.NewSessionEvent(domain.EventRoomExists, code, c.sessionID, nil))
}

// handleJoinRoom handles a join-room message
func (c *Client) handleJoinRoom(data json.RawMessage) {
	var payload JoinRoomPayload
	if !c.decode(data, &payload) {
		return
	}

	_, _, err := c.registry.Join(normalizeCode(payload.RoomCode), c, payload.Username)
	if errors.Is(err, domain.ErrRoomNotFound) {
		c.sendError("Room not found")
		return
	}
}

// handleAddBot handles an add-bot message
func (c *Client) handleAddBot(data json.RawMessage) {
	var payload RoomScopedPayload
	if !c.decode(data, &payload) {
		return
	}

	session, err := c.registry.Find(normalizeCode(payload.RoomCode))
	if err != nil {
		return
	}

	session.AddBot()
}

// handleStartGame handles a start-game message
func (c *Client) handleStartGame(data json.RawMessage) {
	var payload RoomScopedPayload
	if !c.decode(data, &payload) {
		return
	}

	session, err := c.registry.Find(normalizeCode(payload.RoomCode))
	if err != nil {
		return
	}

	switch err := session.StartGame(); {
	case errors.Is(err, domain.ErrNotEnoughPlayers):
		c.sendError("At least two players are required to start")
	case errors.Is(err, domain.ErrGameAlreadyStarted):
		c.sendError("Game has already started")
	}
}

// handleChooseWord handles a choose-word message
func (c *Client) handleChooseWord(data json.RawMessage) {
	var payload ChooseWordPayload
	if !c.decode(data, &payload) {
		return
	}

	session, err := c.registry.Find(normalizeCode(payload.RoomCode))
	if err != nil {
		return
	}

	if err := session.ChooseWord(c.sessionID, payload.Word); errors.Is(err, domain.ErrNotDrawer) {
		c.sendError("Only the current drawer can choose the word")
	}
}

// handleDraw handles a draw message
func (c *Client) handleDraw(data json.RawMessage) {
	var payload DrawPayload
	if !c.decode(data, &payload) {
		return
	}

	session, err := c.registry.Find(normalizeCode(payload.RoomCode))
	if err != nil {
		return
	}

	session.RelayDraw(c.sessionID, payload.StrokeData)
}

// handleClearCanvas handles a clear-canvas message
func (c *Client) handleClearCanvas(data json.RawMessage) {
	var payload RoomScopedPayload
	if !c.decode(data, &payload) {
		return
	}

	session, err := c.registry.Find(normalizeCode(payload.RoomCode))
	if err != nil {
		return
	}

	session.ClearCanvas(c.sessionID)
}

// handleChatMessage handles a chat-message message
func (c *Client) handleChatMessage(data json.RawMessage) {
	var payload ChatPayload
	if !c.decode(data, &payload) {
		return
	}

	session, err := c.registry.Find(normalizeCode(payload.RoomCode))
	if err != nil {
		return
	}

	if err := session.HandleChat(c.sessionID, payload.Message); err != nil {
		c.logger.Debug("chat from unknown session", "sessionID", c.sessionID, "error", err)
	}
}

// sendConnected tells the client its assigned session id
func (c *Client) sendConnected() {
	c.Send(domain.NewSessionEvent(domain.EventConnected, "", c.sessionID, &domain.ConnectedPayload{
		SessionID: c.sessionID,
	}))
}

// sendError sends a generic error event with a human-readable message
func (c *Client) sendError(message string) {
	c.Send(domain.NewSessionEvent(domain.EventError, "", c.sessionID, &domain.ErrorPayload{
		Message: message,
	}))
}

// normalizeCode upcases a client-supplied room code
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
