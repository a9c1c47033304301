package app

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"sketchparty/internal/domain"
)

// ClientConnection represents a connected session handle
type ClientConnection interface {
	Send(event *domain.RoomEvent) error
	SessionID() string
	Close() error
}

// DisconnectResult describes the outcome of a session disconnect
type DisconnectResult struct {
	Found     bool // the session belonged to this room
	RoomEmpty bool // no connected human players remain
}

// RoomSession wraps a room with concurrency control, client management, and
// the turn state machine. All timers scheduled for a turn capture the current
// turn sequence number; a fired callback that finds a different sequence (or a
// closed session) must leave the room alone. That compare-and-act guard is
// what makes stale countdowns, delayed advances, and bot guesses harmless.
type RoomSession struct {
	room     *domain.Room
	settings domain.GameSettings
	mu       sync.RWMutex

	clients   map[string]ClientConnection // sessionID -> client
	clientsMu sync.RWMutex

	sched  Scheduler
	logger *slog.Logger

	// turnSeq identifies the turn/word context. Bumped on every turn change.
	turnSeq  uint64
	timeLeft int

	countdown TimerHandle
	pending   []TimerHandle // delayed advances and bot guesses for this turn

	closed bool
}

// NewRoomSession creates a session around an existing room
func NewRoomSession(room *domain.Room, settings domain.GameSettings, sched Scheduler, logger *slog.Logger) *RoomSession {
	return &RoomSession{
		room:     room,
		settings: settings,
		clients:  make(map[string]ClientConnection),
		sched:    sched,
		logger:   logger,
	}
}

// Code returns the room code
func (s *RoomSession) Code() string {
	return s.room.Code
}

// CreatedAt returns when the room was created
func (s *RoomSession) CreatedAt() time.Time {
	return s.room.CreatedAt
}

// Snapshot returns a consistent copy of the room
func (s *RoomSession) Snapshot() *domain.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room.Snapshot()
}

// PlayerCount returns the number of players, bots included
func (s *RoomSession) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.room.Players)
}

// State returns the current game state
func (s *RoomSession) State() domain.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room.GameState
}

// FullyDisconnected reports whether no connected human players remain
func (s *RoomSession) FullyDisconnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room.ConnectedHumanCount() == 0
}

// RegisterClient registers a client connection for a session id
func (s *RoomSession) RegisterClient(client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.SessionID()] = client
}

// UnregisterClient removes a client connection
func (s *RoomSession) UnregisterClient(sessionID string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, sessionID)
}

// ClientCount returns the number of attached client connections
func (s *RoomSession) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Join adds a player to the room, or rebinds an existing player when the
// username matches (reconnection). Either way the full room snapshot is
// broadcast so every client converges on the same state. Returns the player
// and whether this was a reconnection.
func (s *RoomSession) Join(sessionID, username string) (*domain.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, reconnected := s.room.FindByUsername(username)
	if reconnected {
		player.Reconnect(sessionID)
		s.logger.Info("player reconnected", "roomCode", s.room.Code, "username", username)
	} else {
		player = domain.NewPlayer(sessionID, username)
		s.room.AddPlayer(player)
		s.logger.Info("player joined", "roomCode", s.room.Code, "username", username)
	}

	s.broadcastLocked(domain.NewEvent(domain.EventGameUpdate, s.room.Code, &domain.RoomPayload{Room: s.room.Snapshot()}))

	return player, reconnected
}

// StartGame begins the game: requires at least MinPlayers, resets rounds and
// rotation, then starts the first turn.
func (s *RoomSession) StartGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room.GameState != domain.StateWaiting {
		return domain.ErrGameAlreadyStarted
	}
	if len(s.room.Players) < s.settings.MinPlayers {
		return domain.ErrNotEnoughPlayers
	}

	s.room.GameState = domain.StatePlaying
	s.room.CurrentRound = 0
	s.room.DrawerIndex = 0

	s.broadcastLocked(domain.NewEvent(domain.EventGameUpdate, s.room.Code, &domain.RoomPayload{Room: s.room.Snapshot()}))
	s.advanceTurnLocked()

	return nil
}

// ChooseWord records the drawer's choice, starts the clock on the turn, and
// kicks off bot guessing if a bot is present
func (s *RoomSession) ChooseWord(sessionID, word string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room.GameState != domain.StatePlaying {
		return domain.ErrGameNotStarted
	}
	if s.room.CurrentDrawer != sessionID {
		return domain.ErrNotDrawer
	}

	s.chooseWordLocked(word)
	return nil
}

// HandleChat evaluates a chat message against the active word. A correct
// guess scores and ends the turn shortly after; anything else is plain chat.
func (s *RoomSession) HandleChat(sessionID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.room.FindBySessionID(sessionID)
	if !ok {
		return domain.ErrPlayerNotFound
	}

	// The drawer typing the word is chat, never a guess
	if s.room.IsCorrectGuess(text) && sessionID != s.room.CurrentDrawer {
		s.applyCorrectGuessLocked(player, text)
		return nil
	}

	s.broadcastLocked(domain.NewEvent(domain.EventChatMessage, s.room.Code, &domain.ChatMessagePayload{
		Username: player.Username,
		Message:  text,
	}))
	return nil
}

// RelayDraw forwards stroke data to everyone except the sender. Strokes are
// never stored.
func (s *RoomSession) RelayDraw(sessionID string, strokeData interface{}) {
	s.mu.RLock()
	code := s.room.Code
	s.mu.RUnlock()

	s.broadcastExcept(sessionID, domain.NewEvent(domain.EventDrawData, code, strokeData))
}

// ClearCanvas tells everyone except the sender to wipe their canvas
func (s *RoomSession) ClearCanvas(sessionID string) {
	s.mu.RLock()
	code := s.room.Code
	s.mu.RUnlock()

	s.broadcastExcept(sessionID, domain.NewEvent(domain.EventCanvasCleared, code, nil))
}

// DisconnectSession marks the player bound to sessionID as disconnected. If
// connected players remain, the room is updated and a disconnecting drawer's
// turn is skipped; if none remain, the caller is expected to start the
// grace-period eviction clock.
func (s *RoomSession) DisconnectSession(sessionID string) DisconnectResult {
	s.UnregisterClient(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.room.FindBySessionID(sessionID)
	if !ok || player.IsBot {
		return DisconnectResult{}
	}

	player.Disconnect(s.sched.Now())
	s.logger.Info("player disconnected", "roomCode", s.room.Code, "username", player.Username)

	if s.room.ConnectedHumanCount() == 0 {
		return DisconnectResult{Found: true, RoomEmpty: true}
	}

	s.broadcastLocked(domain.NewEvent(domain.EventGameUpdate, s.room.Code, &domain.RoomPayload{Room: s.room.Snapshot()}))

	// Skip the turn if the drawer just left mid-game
	if s.room.GameState == domain.StatePlaying && s.room.CurrentDrawer == sessionID {
		s.stopTurnTimersLocked()
		s.room.AdvanceDrawer()

		if s.room.RoundsExhausted() {
			s.room.GameState = domain.StateFinished
			s.broadcastLocked(domain.NewEvent(domain.EventGameUpdate, s.room.Code, &domain.RoomPayload{Room: s.room.Snapshot()}))
		} else {
			s.scheduleAdvanceLocked()
		}
	}

	return DisconnectResult{Found: true}
}

// OfferBotIfIdle sends the bot offer to the room creator if the room is still
// waiting with a single player
func (s *RoomSession) OfferBotIfIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.room.GameState != domain.StateWaiting || len(s.room.Players) != 1 {
		return
	}

	creator := s.room.Players[0]
	s.sendToLocked(creator.ID, domain.NewSessionEvent(domain.EventShowBotOption, s.room.Code, creator.ID, nil))
}

// Close shuts down the session, cancelling all timers and closing clients
func (s *RoomSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTurnTimersLocked()
	s.mu.Unlock()

	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}

// advanceTurnLocked starts the next turn, or finishes the game when the
// rounds are exhausted. Caller must hold the lock.
func (s *RoomSession) advanceTurnLocked() {
	if s.room.RoundsExhausted() {
		s.room.GameState = domain.StateFinished
		s.broadcastLocked(domain.NewEvent(domain.EventGameUpdate, s.room.Code, &domain.RoomPayload{Room: s.room.Snapshot()}))
		s.logger.Info("game finished", "roomCode", s.room.Code)
		return
	}

	s.stopTurnTimersLocked()

	drawer := s.room.Drawer()
	if drawer == nil {
		return
	}

	s.room.CurrentDrawer = drawer.ID
	s.room.CurrentWord = ""
	s.timeLeft = s.settings.TurnSeconds()

	wordOptions := RandomWords(s.settings.WordOptionCount)

	payload := &domain.TurnStartedPayload{
		Room:          s.room.Snapshot(),
		CurrentDrawer: drawer.ID,
		TimeLeft:      s.settings.TurnSeconds(),
	}
	if !drawer.IsBot {
		payload.WordOptions = wordOptions
	}
	s.broadcastLocked(domain.NewEvent(domain.EventTurnStarted, s.room.Code, payload))

	s.logger.Info("turn started",
		"roomCode", s.room.Code,
		"drawer", drawer.Username,
		"round", s.room.CurrentRound,
	)

	// A bot drawer picks one of its options after a short pause
	if drawer.IsBot {
		seq := s.turnSeq
		word := wordOptions[rand.Intn(len(wordOptions))]
		s.schedulePendingLocked(s.settings.BotChooseDelay, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.closed || s.turnSeq != seq {
				return
			}
			s.chooseWordLocked(word)
		})
	}
}

// chooseWordLocked records the word, stamps the turn start time, begins the
// countdown, and schedules bot guesses. Caller must hold the lock.
func (s *RoomSession) chooseWordLocked(word string) {
	s.room.CurrentWord = word
	s.room.TurnStartTime = s.sched.Now()

	s.broadcastLocked(domain.NewEvent(domain.EventWordChosen, s.room.Code, &domain.WordChosenPayload{
		Word:     word,
		TimeLeft: s.settings.TurnSeconds(),
	}))

	s.startCountdownLocked()

	// The bot guesses only when someone else is drawing
	if bot, ok := s.room.BotPlayer(); ok && bot.ID != s.room.CurrentDrawer {
		s.scheduleBotGuessesLocked(word)
	}
}

// startCountdownLocked starts the per-turn countdown, replacing any previous
// one. At most one countdown is ever live for a room: the old handle is
// stopped and its sequence guard keeps an already-fired tick from acting.
func (s *RoomSession) startCountdownLocked() {
	if s.countdown != nil {
		s.countdown.Stop()
	}

	s.timeLeft = s.settings.TurnSeconds()
	seq := s.turnSeq
	s.countdown = s.sched.AfterFunc(time.Second, func() { s.tick(seq) })
}

// tick decrements the countdown and either re-arms itself or ends the turn
func (s *RoomSession) tick(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.turnSeq != seq {
		return
	}

	s.timeLeft--
	s.broadcastLocked(domain.NewEvent(domain.EventTimerUpdate, s.room.Code, &domain.TimerUpdatePayload{TimeLeft: s.timeLeft}))

	if s.timeLeft <= 0 {
		s.endTurnLocked()
		return
	}

	s.countdown = s.sched.AfterFunc(time.Second, func() { s.tick(seq) })
}

// endTurnLocked rotates the drawer, broadcasts the turn end, and schedules
// the next turn. Caller must hold the lock.
func (s *RoomSession) endTurnLocked() {
	s.stopTurnTimersLocked()

	s.room.AdvanceDrawer()

	s.broadcastLocked(domain.NewEvent(domain.EventTurnEnded, s.room.Code, &domain.RoomPayload{Room: s.room.Snapshot()}))

	s.scheduleAdvanceLocked()
}

// scheduleAdvanceLocked schedules the next turn after the inter-turn delay
func (s *RoomSession) scheduleAdvanceLocked() {
	seq := s.turnSeq
	s.schedulePendingLocked(s.settings.InterTurnDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.turnSeq != seq {
			return
		}
		s.advanceTurnLocked()
	})
}

// applyCorrectGuessLocked scores a correct guess and schedules the early turn
// end. The active word is cleared immediately so a second identical guess in
// the window before the turn ends is treated as plain chat, never scored
// twice. Caller must hold the lock.
func (s *RoomSession) applyCorrectGuessLocked(player *domain.Player, message string) {
	elapsed := s.sched.Now().Sub(s.room.TurnStartTime)
	score := domain.GuessScore(elapsed)
	player.AddScore(score)

	s.room.CurrentWord = ""

	s.logger.Info("correct guess",
		"roomCode", s.room.Code,
		"username", player.Username,
		"score", score,
	)

	s.broadcastLocked(domain.NewEvent(domain.EventCorrectGuess, s.room.Code, &domain.CorrectGuessPayload{
		Username: player.Username,
		Message:  message,
		Score:    score,
		Room:     s.room.Snapshot(),
	}))

	seq := s.turnSeq
	s.schedulePendingLocked(s.settings.GuessEndDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.turnSeq != seq {
			return
		}
		s.endTurnLocked()
	})
}

// stopTurnTimersLocked cancels everything scheduled for the current turn and
// bumps the sequence so in-flight callbacks become no-ops. Caller must hold
// the lock.
func (s *RoomSession) stopTurnTimersLocked() {
	s.turnSeq++

	if s.countdown != nil {
		s.countdown.Stop()
		s.countdown = nil
	}
	for _, h := range s.pending {
		h.Stop()
	}
	s.pending = nil
}

// schedulePendingLocked schedules a callback tied to the current turn
func (s *RoomSession) schedulePendingLocked(d time.Duration, fn func()) {
	s.pending = append(s.pending, s.sched.AfterFunc(d, fn))
}

// broadcastLocked sends an event to every client. Client sends are buffered
// and non-blocking, so this is safe to call while holding the room lock, which
// guarantees the snapshot inside the event matches the state the mutation
// produced.
func (s *RoomSession) broadcastLocked(event *domain.RoomEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for sessionID, client := range s.clients {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "sessionID", sessionID, "error", err)
		}
	}
}

// broadcastExcept sends an event to every client except one session
func (s *RoomSession) broadcastExcept(sessionID string, event *domain.RoomEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for id, client := range s.clients {
		if id == sessionID {
			continue
		}
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "sessionID", id, "error", err)
		}
	}
}

// sendToLocked sends an event to a single session if it is attached
func (s *RoomSession) sendToLocked(sessionID string, event *domain.RoomEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	if client, ok := s.clients[sessionID]; ok {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "sessionID", sessionID, "error", err)
		}
	}
}
