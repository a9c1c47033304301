package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketchparty/internal/domain"
)

// newTestSession builds a room session with one attached fake client per
// username, the first being the creator
func newTestSession(sched *manualScheduler, maxRounds int, usernames ...string) (*RoomSession, []*fakeClient) {
	settings := domain.DefaultGameSettings()

	creator := domain.NewPlayer("sid-0", usernames[0])
	room := domain.NewRoom("ROOM01", creator, maxRounds)
	session := NewRoomSession(room, settings, sched, testLogger())

	clients := []*fakeClient{newFakeClient("sid-0")}
	session.RegisterClient(clients[0])

	for i := 1; i < len(usernames); i++ {
		client := newFakeClient(fmt.Sprintf("sid-%d", i))
		session.RegisterClient(client)
		session.Join(client.SessionID(), usernames[i])
		clients = append(clients, client)
	}

	return session, clients
}

func TestStartGameRequiresTwoPlayers(t *testing.T) {
	t.Parallel()

	sched := newManualScheduler()
	session, _ := newTestSession(sched, 3, "alice")

	err := session.StartGame()
	assert.ErrorIs(t, err, domain.ErrNotEnoughPlayers)
	assert.Equal(t, domain.StateWaiting, session.State())
}

func TestStartGameTwiceFails(t *testing.T) {
	t.Parallel()

	sched := newManualScheduler()
	session, _ := newTestSession(sched, 3, "alice", "bob")

	require.NoError(t, session.StartGame())
	assert.ErrorIs(t, session.StartGame(), domain.ErrGameAlreadyStarted)
}

func TestChooseWordOnlyByDrawer(t *testing.T) {
	t.Parallel()

	sched := newManualScheduler()
	session, _ := newTestSession(sched, 3, "alice", "bob")

	assert.ErrorIs(t, session.ChooseWord("sid-0", "castle"), domain.ErrGameNotStarted)

	require.NoError(t, session.StartGame())

	assert.ErrorIs(t, session.ChooseWord("sid-1", "castle"), domain.ErrNotDrawer)
	assert.NoError(t, session.ChooseWord("sid-0", "castle"))
}

func TestFullGameFlow(t *testing.T) {
	t.Parallel()

	sched := newManualScheduler()
	session, clients := newTestSession(sched, 1, "alice", "bob")

	require.NoError(t, session.StartGame())

	// First turn goes to the creator, with word options for a human drawer
	started := clients[1].lastOfType(domain.EventTurnStarted)
	require.NotNil(t, started)
	payload := started.Payload.(*domain.TurnStartedPayload)
	assert.Equal(t, "sid-0", payload.CurrentDrawer)
	assert.Len(t, payload.WordOptions, 4)
	assert.Equal(t, 60, payload.TimeLeft)

	require.NoError(t, session.ChooseWord("sid-0", "castle"))
	require.NotNil(t, clients[1].lastOfType(domain.EventWordChosen))

	// The drawer typing the word is plain chat, never a scored guess
	require.NoError(t, session.HandleChat("sid-0", "castle"))
	assert.Empty(t, clients[1].eventsOfType(domain.EventCorrectGuess))

	// Half the turn elapses
	sched.Advance(30 * time.Second)
	tick := clients[0].lastOfType(domain.EventTimerUpdate)
	require.NotNil(t, tick)
	assert.Equal(t, 30, tick.Payload.(*domain.TimerUpdatePayload).TimeLeft)

	// A correct guess scores by elapsed time
	require.NoError(t, session.HandleChat("sid-1", "  CASTLE "))
	guess := clients[0].lastOfType(domain.EventCorrectGuess)
	require.NotNil(t, guess)
	guessPayload := guess.Payload.(*domain.CorrectGuessPayload)
	assert.Equal(t, "bob", guessPayload.Username)
	assert.Equal(t, 50, guessPayload.Score)

	snap := session.Snapshot()
	assert.Empty(t, snap.CurrentWord)
	assert.Equal(t, 50, snap.Players[1].Score)

	// Guessing again lands as chat: the word is already gone
	require.NoError(t, session.HandleChat("sid-1", "castle"))
	assert.Len(t, clients[0].eventsOfType(domain.EventCorrectGuess), 1)
	assert.Equal(t, 50, session.Snapshot().Players[1].Score)

	// Turn ends shortly after the guess, then the next one starts
	sched.Advance(2 * time.Second)
	require.NotNil(t, clients[0].lastOfType(domain.EventTurnEnded))

	sched.Advance(3 * time.Second)
	started = clients[0].lastOfType(domain.EventTurnStarted)
	require.NotNil(t, started)
	assert.Equal(t, "sid-1", started.Payload.(*domain.TurnStartedPayload).CurrentDrawer)

	// Nobody guesses; the countdown runs out and the single round is done
	require.NoError(t, session.ChooseWord("sid-1", "dragon"))
	sched.Advance(60 * time.Second)
	assert.Len(t, clients[0].eventsOfType(domain.EventTurnEnded), 2)

	sched.Advance(3 * time.Second)
	assert.Equal(t, domain.StateFinished, session.State())

	update := clients[1].lastOfType(domain.EventGameUpdate)
	require.NotNil(t, update)
	assert.Equal(t, domain.StateFinished, update.Payload.(*domain.RoomPayload).Room.GameState)
}

func TestChatBeforeWordChosen(t *testing.T) {
	t.Parallel()

	sched := newManualScheduler()
	session, clients := newTestSession(sched, 3, "alice", "bob")
	require.NoError(t, session.StartGame())

	require.NoError(t, session.HandleChat("sid-1", "castle"))
	assert.Empty(t, clients[0].eventsOfType(domain.EventCorrectGuess))

	chat := clients[0].lastOfType(domain.EventChatMessage)
	require.NotNil(t, chat)
	assert.Equal(t, "castle", chat.Payload.(*domain.ChatMessagePayload).Message)
}

func TestChatFromUnknownSession(t *testing.T) {
	t.Parallel()

	sched := newManualScheduler()
	session, _ := newTestSession(sched, 3, "alice", "bob")

	assert.ErrorIs(t, session.HandleChat("sid-nope", "hello"), domain.ErrPlayerNotFound)
}

func TestDrawerDisconnectSkipsTurn(t *testing.T) {
	t.Parallel()

	sched := newManualScheduler()
	session, clients := newTestSession(sched, 3, "alice", "bob", "carol")
	require.NoError(t, session.StartGame())
	require.NoError(t, session.ChooseWord("sid-0", "castle"))

	result := session.DisconnectSession("sid-0")
	assert.True(t, result.Found)
	assert.False(t, result.RoomEmpty)

	update := clients[1].lastOfType(domain.EventGameUpdate)
	require.NotNil(t, update)
	room := update.Payload.(*domain.RoomPayload).Room
	assert.False(t, room.Players[0].Connected)

	timerUpdates := len(clients[1].eventsOfType(domain.EventTimerUpdate))

	sched.Advance(3 * time.Second)
	started := clients[1].lastOfType(domain.EventTurnStarted)
	require.NotNil(t, started)
	assert.Equal(t, "sid-1", started.Payload.(*domain.TurnStartedPayload).CurrentDrawer)

	// The abandoned turn's countdown must not have kept ticking
	assert.Len(t, clients[1].eventsOfType(domain.EventTimerUpdate), timerUpdates)
}

func TestDisconnectLastHumanReportsEmpty(t *testing.T) {
	t.Parallel()

	sched := newManualScheduler()
	session, _ := newTestSession(sched, 3, "alice", "bob")

	result := session.DisconnectSession("sid-1")
	assert.True(t, result.Found)
	assert.False(t, result.RoomEmpty)

	result = session.DisconnectSession("sid-0")
	assert.True(t, result.Found)
	assert.True(t, result.RoomEmpty)

	assert.True(t, session.FullyDisconnected())

	result = session.DisconnectSession("sid-unknown")
	assert.False(t, result.Found)
}

func TestRejoinRestoresPlayer(t *testing.T) {
	t.Parallel()

	sched := newManualScheduler()
	session, _ := newTestSession(sched, 3, "alice", "bob")

	session.DisconnectSession("sid-1")

	player, reconnected := session.Join("sid-9", "bob")
	assert.True(t, reconnected)
	assert.Equal(t, "sid-9", player.ID)
	assert.True(t, player.Connected)
	assert.Equal(t, 2, session.PlayerCount())
}

func TestStaleTickIsIgnored(t *testing.T) {
	t.Parallel()

	sched := newManualScheduler()
	session, clients := newTestSession(sched, 3, "alice", "bob")
	require.NoError(t, session.StartGame())
	require.NoError(t, session.ChooseWord("sid-0", "castle"))

	session.tick(999)

	assert.Empty(t, clients[0].eventsOfType(domain.EventTimerUpdate))
	assert.Equal(t, 60, session.timeLeft)
}

func TestRelayDrawExcludesSender(t *testing.T) {
	t.Parallel()

	sched := newManualScheduler()
	session, clients := newTestSession(sched, 3, "alice", "bob", "carol")

	session.RelayDraw("sid-0", map[string]int{"x": 1, "y": 2})

	assert.Empty(t, clients[0].eventsOfType(domain.EventDrawData))
	assert.Len(t, clients[1].eventsOfType(domain.EventDrawData), 1)
	assert.Len(t, clients[2].eventsOfType(domain.EventDrawData), 1)

	session.ClearCanvas("sid-1")

	assert.Empty(t, clients[1].eventsOfType(domain.EventCanvasCleared))
	assert.Len(t, clients[0].eventsOfType(domain.EventCanvasCleared), 1)
}

func TestCloseStopsEverything(t *testing.T) {
	t.Parallel()

	sched := newManualScheduler()
	session, clients := newTestSession(sched, 3, "alice", "bob")
	require.NoError(t, session.StartGame())
	require.NoError(t, session.ChooseWord("sid-0", "castle"))

	session.Close()
	assert.True(t, clients[0].isClosed())
	assert.True(t, clients[1].isClosed())

	ticks := len(clients[0].eventsOfType(domain.EventTimerUpdate))
	sched.Advance(time.Minute)
	assert.Len(t, clients[0].eventsOfType(domain.EventTimerUpdate), ticks)
}
