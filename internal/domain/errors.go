package domain

import "errors"

// Domain errors
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrNotEnoughPlayers   = errors.New("at least two players are required to start")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrGameNotStarted     = errors.New("game has not started")
	ErrNotDrawer          = errors.New("only the current drawer can do this")
)
