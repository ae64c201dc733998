package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

func (that *Server) handlePlace(ctx context.Context, roomCode string, sender *client, msg *Message) error {
	position, err := positionFromPayload(msg)
	if err != nil {
		return err
	}

	return that.manager.Place(ctx, roomCode, sender.playerID, position)
}

func (that *Server) handleReveal(ctx context.Context, roomCode string, sender *client, msg *Message) error {
	position, err := positionFromPayload(msg)
	if err != nil {
		return err
	}

	return that.manager.Reveal(ctx, roomCode, sender.playerID, position)
}

func (that *Server) handleMontyChooseOriginal(ctx context.Context, roomCode string, sender *client, msg *Message) error {
	position, err := positionFromPayload(msg)
	if err != nil {
		return err
	}

	return that.manager.MontyChooseOriginal(ctx, roomCode, sender.playerID, position)
}

func (that *Server) handleMontyFinalChoice(ctx context.Context, roomCode string, sender *client, msg *Message) error {
	position, err := positionFromPayload(msg)
	if err != nil {
		return err
	}

	return that.manager.MontyFinalChoice(ctx, roomCode, sender.playerID, position)
}

func (that *Server) handlePlayAgain(ctx context.Context, roomCode string, sender *client, _ *Message) error {
	return that.manager.VoteNewGame(ctx, roomCode, sender.playerID)
}

// handleStateSync resends the current public view to the requesting
// player only, for client-side recovery.
func (that *Server) handleStateSync(_ context.Context, roomCode string, sender *client, msg *Message) error {
	state, err := that.manager.StateFor(roomCode)
	if err != nil {
		return err
	}

	return sender.send(Message{Action: msg.Action, Payload: mustMarshal(state)})
}

// handleChat relays chat to the whole room; the game session is never
// involved.
func (that *Server) handleChat(_ context.Context, roomCode string, sender *client, msg *Message) error {
	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal chat payload: %w", err)
	}

	if payload.Message == "" {
		return nil
	}

	that.Broadcast(roomCode, "chat:message", ChatMessage{
		PlayerSlot: sender.playerSlot,
		PlayerName: sender.playerName,
		Message:    payload.Message,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})

	return nil
}

func positionFromPayload(msg *Message) (int, error) {
	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return 0, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.Position == nil {
		return 0, fmt.Errorf("position is required")
	}

	return *payload.Position, nil
}
