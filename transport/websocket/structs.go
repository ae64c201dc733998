package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/entity"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is the request envelope shared by all client actions.
type Payload struct {
	Player   *entity.Player `json:"player,omitempty"`
	Position *int           `json:"position,omitempty"`
	WithBot  bool           `json:"with_bot,omitempty"`
	Message  string         `json:"message,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// ChatMessage is relayed to the room verbatim; it never touches the game
// session.
type ChatMessage struct {
	PlayerSlot int    `json:"player_slot"`
	PlayerName string `json:"player_name"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
}
