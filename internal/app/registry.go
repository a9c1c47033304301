package app

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sketchparty/internal/domain"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6

	// StaleRoomTimeout is how long a room with no attached clients survives
	// before the periodic sweep removes it
	StaleRoomTimeout = 2 * time.Hour
)

// RoomCodeChars are characters used for room codes
const RoomCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Registry is the authoritative map of active rooms. It exclusively owns all
// room sessions; other components reach rooms only through registry lookups.
// It also owns the per-room grace-period eviction timers, so a reconnecting
// join can cancel a pending deletion in one place.
type Registry struct {
	sessions map[string]*RoomSession
	mu       sync.RWMutex

	evictions   map[string]TimerHandle
	evictionsMu sync.Mutex

	settings domain.GameSettings
	sched    Scheduler
	logger   *slog.Logger
	done     chan struct{}
}

// NewRegistry creates a new room registry and starts the stale-room sweep
func NewRegistry(settings domain.GameSettings, sched Scheduler, logger *slog.Logger) *Registry {
	r := &Registry{
		sessions:  make(map[string]*RoomSession),
		evictions: make(map[string]TimerHandle),
		settings:  settings,
		sched:     sched,
		logger:    logger,
		done:      make(chan struct{}),
	}

	go r.sweepLoop()

	return r
}

// CreateRoom allocates a fresh code and a waiting room with one connected
// player, attaching the creator's client to it. If the creator is still alone
// when the bot-offer delay elapses, they are offered a synthetic opponent.
func (r *Registry) CreateRoom(client ClientConnection, username string, maxRounds int) (*RoomSession, error) {
	if maxRounds <= 0 {
		maxRounds = r.settings.DefaultMaxRounds
	}

	r.mu.Lock()

	// Collisions are unlikely but possible; retry against the live map
	var code string
	for attempts := 0; attempts < 10; attempts++ {
		code = generateRoomCode()
		if _, exists := r.sessions[code]; !exists {
			break
		}
	}
	if _, exists := r.sessions[code]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("failed to generate unique room code")
	}

	creator := domain.NewPlayer(client.SessionID(), username)
	room := domain.NewRoom(code, creator, maxRounds)
	session := NewRoomSession(room, r.settings, r.sched, r.logger)
	r.sessions[code] = session
	r.mu.Unlock()

	session.RegisterClient(client)

	r.logger.Info("room created", "roomCode", code, "username", username, "maxRounds", maxRounds)

	r.sched.AfterFunc(r.settings.BotOfferDelay, session.OfferBotIfIdle)

	return session, nil
}

// Find returns a room session by code
func (r *Registry) Find(code string) (*RoomSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[code]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	return session, nil
}

// Join adds or reconnects a player to the room with the given code, attaching
// the client so the join broadcast reaches it too. A join cancels any pending
// eviction for the room: someone is back.
func (r *Registry) Join(code string, client ClientConnection, username string) (*RoomSession, *domain.Player, error) {
	session, err := r.Find(code)
	if err != nil {
		return nil, nil, err
	}

	r.cancelEviction(code)

	session.RegisterClient(client)
	player, _ := session.Join(client.SessionID(), username)
	return session, player, nil
}

// Delete removes a room, cancelling its timers and closing its clients.
// Reached only through grace-period expiry or the stale sweep, never by
// direct user action.
func (r *Registry) Delete(code string) {
	r.cancelEviction(code)

	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[code]; ok {
		session.Close()
		delete(r.sessions, code)
		r.logger.Info("room deleted", "roomCode", code)
	}
}

// HandleDisconnect marks the session's player as disconnected in whichever
// room it belongs to. When the room is left with no connected humans, the
// grace-period clock starts; a reconnection before it expires saves the room.
func (r *Registry) HandleDisconnect(sessionID string) {
	r.mu.RLock()
	sessions := make([]*RoomSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, session := range sessions {
		result := session.DisconnectSession(sessionID)
		if !result.Found {
			continue
		}
		if result.RoomEmpty {
			r.scheduleEviction(session.Code())
		}
		return
	}
}

// RoomCount returns the number of active rooms
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// TotalPlayerCount returns the total number of players across all rooms
func (r *Registry) TotalPlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, session := range r.sessions {
		total += session.PlayerCount()
	}
	return total
}

// Close shuts down the registry and all sessions
func (r *Registry) Close() {
	close(r.done)

	r.evictionsMu.Lock()
	for _, handle := range r.evictions {
		handle.Stop()
	}
	r.evictions = make(map[string]TimerHandle)
	r.evictionsMu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		session.Close()
	}
	r.sessions = make(map[string]*RoomSession)
}

// scheduleEviction starts (or restarts) the grace-period deletion clock for a
// fully disconnected room
func (r *Registry) scheduleEviction(code string) {
	r.evictionsMu.Lock()
	defer r.evictionsMu.Unlock()

	if handle, ok := r.evictions[code]; ok {
		handle.Stop()
	}

	r.logger.Info("room empty, eviction scheduled", "roomCode", code, "gracePeriod", r.settings.GracePeriod)

	r.evictions[code] = r.sched.AfterFunc(r.settings.GracePeriod, func() {
		r.expireEviction(code)
	})
}

// expireEviction fires at the end of the grace period. The room is deleted
// only if it is still fully disconnected; a reconnect that raced the timer
// wins.
func (r *Registry) expireEviction(code string) {
	r.evictionsMu.Lock()
	delete(r.evictions, code)
	r.evictionsMu.Unlock()

	session, err := r.Find(code)
	if err != nil {
		return
	}

	if !session.FullyDisconnected() {
		return
	}

	r.logger.Info("grace period expired", "roomCode", code)
	r.Delete(code)
}

// cancelEviction stops a pending eviction for the room, if any
func (r *Registry) cancelEviction(code string) {
	r.evictionsMu.Lock()
	defer r.evictionsMu.Unlock()

	if handle, ok := r.evictions[code]; ok {
		handle.Stop()
		delete(r.evictions, code)
		r.logger.Info("room eviction cancelled", "roomCode", code)
	}
}

// generateRoomCode returns a random 6-character uppercase alphanumeric code
func generateRoomCode() string {
	b := make([]byte, RoomCodeLength)
	rand.Read(b)

	code := make([]byte, RoomCodeLength)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code)
}

// sweepLoop periodically cleans up rooms nobody is attached to anymore,
// covering rooms whose creator vanished without ever triggering a disconnect
func (r *Registry) sweepLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.sweepStaleRooms()
		}
	}
}

// sweepStaleRooms removes old rooms with no attached client connections
func (r *Registry) sweepStaleRooms() {
	r.mu.RLock()
	now := time.Now()
	stale := make([]string, 0)
	for code, session := range r.sessions {
		if session.ClientCount() == 0 && now.Sub(session.CreatedAt()) > StaleRoomTimeout {
			stale = append(stale, code)
		}
	}
	r.mu.RUnlock()

	for _, code := range stale {
		r.logger.Info("stale room swept", "roomCode", code)
		r.Delete(code)
	}
}
