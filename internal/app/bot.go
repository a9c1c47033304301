package app

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"sketchparty/internal/domain"
)

// BotUsername is the display name of the synthetic player
const BotUsername = "Bot Player"

// botVocabulary is what the bot shouts into chat when it isn't guessing right
var botVocabulary = []string{
	"circle", "square", "line", "house", "tree", "car", "cat", "dog",
}

// Bot guess delay windows, in line with how slowly a human would catch on
const (
	botFirstGuessMin  = 5 * time.Second
	botFirstGuessMax  = 15 * time.Second
	botSecondGuessMin = 20 * time.Second
	botSecondGuessMax = 30 * time.Second
	botFinalGuessMin  = 35 * time.Second
	botFinalGuessMax  = 50 * time.Second
)

// newBotID returns a bot identifier namespaced so it can never collide with a
// real session id
func newBotID() string {
	return "bot-" + uuid.New().String()
}

// AddBot appends a permanently-connected synthetic player and broadcasts the
// updated room
func (s *RoomSession) AddBot() *domain.Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	bot := domain.NewBotPlayer(newBotID(), BotUsername)
	s.room.AddPlayer(bot)

	s.logger.Info("bot added", "roomCode", s.room.Code, "botID", bot.ID)

	s.broadcastLocked(domain.NewEvent(domain.EventGameUpdate, s.room.Code, &domain.RoomPayload{Room: s.room.Snapshot()}))

	return bot
}

// scheduleBotGuessesLocked sets up the bot's guessing for the turn the given
// word belongs to: two wrong guesses at random delays, and with even odds one
// correct guess late in the turn. Every fire re-checks that the word it was
// scheduled for is still the active one; the pending sweep on turn change
// stops whatever hasn't fired yet. Caller must hold the lock.
func (s *RoomSession) scheduleBotGuessesLocked(word string) {
	s.scheduleWrongBotGuessLocked(randDelay(botFirstGuessMin, botFirstGuessMax))
	s.scheduleWrongBotGuessLocked(randDelay(botSecondGuessMin, botSecondGuessMax))

	if rand.Intn(2) == 0 {
		return
	}

	seq := s.turnSeq
	s.schedulePendingLocked(randDelay(botFinalGuessMin, botFinalGuessMax), func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.closed || s.turnSeq != seq || s.room.CurrentWord != word {
			return
		}

		bot, ok := s.room.BotPlayer()
		if !ok {
			return
		}

		s.applyCorrectGuessLocked(bot, word)
	})
}

// scheduleWrongBotGuessLocked schedules one incorrect guess broadcast as
// ordinary chat, skipped if the turn's word is no longer active at fire time
func (s *RoomSession) scheduleWrongBotGuessLocked(delay time.Duration) {
	seq := s.turnSeq
	s.schedulePendingLocked(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.closed || s.turnSeq != seq || s.room.CurrentWord == "" {
			return
		}

		s.broadcastLocked(domain.NewEvent(domain.EventChatMessage, s.room.Code, &domain.ChatMessagePayload{
			Username: BotUsername,
			Message:  botVocabulary[rand.Intn(len(botVocabulary))],
		}))
	})
}

// randDelay returns a random duration in [min, max)
func randDelay(min, max time.Duration) time.Duration {
	return min + time.Duration(rand.Int63n(int64(max-min)))
}
