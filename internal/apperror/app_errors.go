package apperror

import "errors"

var (
	ErrInvalidMove    = errors.New("invalid move")
	ErrOutOfTurn      = errors.New("it's not your turn")
	ErrInvalidState   = errors.New("action is not valid in current state")
	ErrRoomFull       = errors.New("room is full")
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrGameFinished   = errors.New("game is already finished")
	ErrGameNotStarted = errors.New("game is not started")
)
