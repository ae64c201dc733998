package entity

import "time"

// GameResult is the archive record written once a game finishes. Winner
// is the display mark, empty on a draw.
type GameResult struct {
	RoomCode   string    `json:"room_code"`
	Winner     string    `json:"winner,omitempty"`
	Players    []string  `json:"players"`
	FinishedAt time.Time `json:"finished_at"`
}
