package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/pkg"
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/service"
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/session"
)

const (
	ActionState         = "game:state"
	ActionTimeout       = "game:timeout"
	ActionReset         = "game:reset"
	ActionPlayAgainVote = "game:play_again_vote"
	ActionPlayerJoined  = "room:player_joined"
	ActionPlayerLeft    = "room:player_left"
	ActionMontyHint     = "monty:hint"
)

// Notifier delivers payloads to room members. Narrowcast exists solely
// for the monty hall private hint; everything else is broadcast.
type Notifier interface {
	Broadcast(roomCode, action string, payload any)
	Narrowcast(roomCode, playerID, action string, payload any)
}

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
}

type resultRepo interface {
	Save(ctx context.Context, result *entity.GameResult) error
}

// RoomInfo mirrors the lobby header sent with every state broadcast.
type RoomInfo struct {
	Code             string          `json:"code"`
	Players          []entity.Player `json:"players"`
	WaitingForPlayer bool            `json:"waiting_for_player"`
}

type StatePayload struct {
	State    session.StateView `json:"state"`
	RoomInfo RoomInfo          `json:"room_info"`
}

type VotePayload struct {
	PlayerSlot int               `json:"player_slot"`
	State      session.StateView `json:"state"`
}

// RoomManager owns every room and mediates all external access to the
// sessions. Rooms are fully independent; commands for different rooms
// run concurrently, commands for one room serialize on its lock.
type RoomManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	resultRepo resultRepo
	bot        service.BotService

	turnTimeout time.Duration

	mu       sync.RWMutex
	rooms    map[string]*Room
	notifier Notifier
}

func NewRoomManager(logger *slog.Logger, playerRepo playerRepo, resultRepo resultRepo, bot service.BotService, turnTimeout time.Duration) *RoomManager {
	return &RoomManager{
		logger: logger,

		playerRepo: playerRepo,
		resultRepo: resultRepo,
		bot:        bot,

		turnTimeout: turnTimeout,
		rooms:       make(map[string]*Room),
	}
}

// SetNotifier wires the transport in after construction; the websocket
// server needs the manager first.
func (that *RoomManager) SetNotifier(notifier Notifier) {
	that.notifier = notifier
}

// CreateRoomCode reserves nothing: like the original lobby, it hands out
// a code not currently in use, and the room comes to life on first join.
func (that *RoomManager) CreateRoomCode() string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for {
		code := pkg.GenerateRoomCode()
		if _, exists := that.rooms[code]; !exists {
			return code
		}
	}
}

// JoinRoom adds a player to the room, creating it on first join. With
// withBot set, a bot opponent fills the second slot immediately.
func (that *RoomManager) JoinRoom(ctx context.Context, code, playerID, name string, withBot bool) (*entity.Player, StatePayload, error) {
	log := that.logger.With("method", "JoinRoom", "roomCode", code)

	room := that.getOrCreateRoom(code)

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return nil, StatePayload{}, apperror.ErrRoomNotFound
	}

	slot, ok := room.freeSlot()
	if !ok {
		return nil, StatePayload{}, apperror.ErrRoomFull
	}

	player := &entity.Player{ID: playerID, Name: name, Slot: slot}
	room.players[slot] = player

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		log.Error("failed to store player profile", "error", err)
	}

	if withBot {
		if botSlot, free := room.freeSlot(); free {
			room.players[botSlot] = entity.NewBotPlayer(botSlot)
			room.botSlot = botSlot
		}
	}

	if room.playerCount() == session.PlayerSlots {
		room.sess.StartClock()
	}

	payload := that.statePayload(room)

	that.notify(room.code, ActionPlayerJoined, struct {
		Player   entity.Player `json:"player"`
		RoomInfo RoomInfo      `json:"room_info"`
	}{Player: *player, RoomInfo: payload.RoomInfo})

	that.notify(room.code, ActionState, payload)

	log.Info("player joined", "playerID", playerID, "slot", slot)

	return player, payload, nil
}

// LeaveRoom removes a player. The game itself is not forfeited: the turn
// clock keeps the turn flow moving until the player returns or the room
// empties out, at which point the room is destroyed.
func (that *RoomManager) LeaveRoom(code, playerID string) error {
	room, err := that.getRoom(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	slot, err := room.slotOf(playerID)
	if err != nil {
		return err
	}

	room.players[slot] = nil

	humansLeft := 0
	for _, player := range room.players {
		if player != nil && !player.IsBot() {
			humansLeft++
		}
	}

	if humansLeft == 0 {
		that.destroyRoom(room)
		return nil
	}

	that.notify(room.code, ActionPlayerLeft, struct {
		PlayerSlot int      `json:"player_slot"`
		RoomInfo   RoomInfo `json:"room_info"`
	}{PlayerSlot: slot, RoomInfo: that.roomInfo(room)})

	return nil
}

// Place handles the placement-phase command.
func (that *RoomManager) Place(ctx context.Context, code, playerID string, position int) error {
	return that.withRoom(code, func(room *Room) error {
		slot, err := room.slotOf(playerID)
		if err != nil {
			return err
		}

		if err = room.sess.Place(slot, position); err != nil {
			return err
		}

		that.afterAction(ctx, room)

		return nil
	})
}

// Reveal handles the plain reveal-phase command.
func (that *RoomManager) Reveal(ctx context.Context, code, playerID string, position int) error {
	return that.withRoom(code, func(room *Room) error {
		slot, err := room.slotOf(playerID)
		if err != nil {
			return err
		}

		if err = room.sess.Reveal(slot, position); err != nil {
			return err
		}

		that.afterAction(ctx, room)

		return nil
	})
}

// MontyChooseOriginal runs step one of the monty exchange; the private
// hint goes to the acting player alone.
func (that *RoomManager) MontyChooseOriginal(ctx context.Context, code, playerID string, position int) error {
	return that.withRoom(code, func(room *Room) error {
		slot, err := room.slotOf(playerID)
		if err != nil {
			return err
		}

		hint, err := room.sess.MontyChooseOriginal(slot, position)
		if err != nil {
			return err
		}

		if that.notifier != nil {
			that.notifier.Narrowcast(room.code, playerID, ActionMontyHint, hint)
		}

		that.notify(room.code, ActionState, that.statePayload(room))

		return nil
	})
}

// MontyFinalChoice settles the exchange and publicly reveals the chosen
// cell.
func (that *RoomManager) MontyFinalChoice(ctx context.Context, code, playerID string, position int) error {
	return that.withRoom(code, func(room *Room) error {
		slot, err := room.slotOf(playerID)
		if err != nil {
			return err
		}

		if err = room.sess.MontyFinalChoice(slot, position); err != nil {
			return err
		}

		that.afterAction(ctx, room)

		return nil
	})
}

// VoteNewGame tallies a play-again vote; when both players have voted,
// the room swaps in a brand-new session object.
func (that *RoomManager) VoteNewGame(ctx context.Context, code, playerID string) error {
	return that.withRoom(code, func(room *Room) error {
		slot, err := room.slotOf(playerID)
		if err != nil {
			return err
		}

		both, err := room.sess.VoteNewGame(slot)
		if err != nil {
			return err
		}

		if room.botSlot >= 0 {
			// The bot always agrees to a rematch.
			both, _ = room.sess.VoteNewGame(room.botSlot)
		}

		if !both {
			that.notify(room.code, ActionPlayAgainVote, VotePayload{
				PlayerSlot: slot,
				State:      room.sess.StateView(),
			})
			return nil
		}

		room.sess.StopClock()
		room.sess = that.newSession(room)
		if room.playerCount() == session.PlayerSlots {
			room.sess.StartClock()
		}

		that.notify(room.code, ActionReset, that.statePayload(room))

		return nil
	})
}

// StateFor returns the current public view, for reconnects and initial
// sync.
func (that *RoomManager) StateFor(code string) (StatePayload, error) {
	var payload StatePayload

	err := that.withRoom(code, func(room *Room) error {
		payload = that.statePayload(room)
		return nil
	})

	return payload, err
}

// handleTimeout is the clock expiry path: a synthetic pass serialized
// through the room lock like any player command.
func (that *RoomManager) handleTimeout(ctx context.Context, room *Room) {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed || room.sess.IsGameOver() {
		return
	}

	// A command that slipped in just before the timer fired has already
	// restarted the clock; that fire is stale.
	if remaining := room.sess.StateView().TimeRemaining; remaining != nil && *remaining > 0 {
		return
	}

	room.sess.PassOnTimeout()

	that.notify(room.code, ActionTimeout, that.statePayload(room))

	that.runBotTurn(ctx, room)
}

// afterAction is the common tail of every mutating command: archive a
// finished game, broadcast the new state, and let the bot take its turn.
func (that *RoomManager) afterAction(ctx context.Context, room *Room) {
	that.archiveIfFinished(ctx, room)
	that.notify(room.code, ActionState, that.statePayload(room))
	that.runBotTurn(ctx, room)
}

func (that *RoomManager) runBotTurn(ctx context.Context, room *Room) {
	if !room.hasBotTurn() {
		return
	}

	if err := that.bot.PlayTurn(room.sess, room.botSlot); err != nil {
		that.logger.Error("bot turn failed", "roomCode", room.code, "error", err)
		return
	}

	that.archiveIfFinished(ctx, room)
	that.notify(room.code, ActionState, that.statePayload(room))
}

func (that *RoomManager) archiveIfFinished(ctx context.Context, room *Room) {
	if !room.sess.IsGameOver() || room.archived {
		return
	}
	room.archived = true

	result := &entity.GameResult{
		RoomCode:   room.code,
		Winner:     room.sess.WinnerMark(),
		Players:    room.playerNames(),
		FinishedAt: time.Now().UTC(),
	}

	if err := that.resultRepo.Save(ctx, result); err != nil {
		that.logger.Error("failed to archive game result", "roomCode", room.code, "error", err)
	}
}

func (that *RoomManager) withRoom(code string, fn func(room *Room) error) error {
	room, err := that.getRoom(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return apperror.ErrRoomNotFound
	}

	return fn(room)
}

func (that *RoomManager) getRoom(code string) (*Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, code)
	}

	return room, nil
}

func (that *RoomManager) getOrCreateRoom(code string) *Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	if room, ok := that.rooms[code]; ok {
		return room
	}

	room := &Room{code: code, botSlot: -1}
	room.sess = that.newSession(room)
	that.rooms[code] = room

	that.logger.Info("room created", "roomCode", code)

	return room
}

// newSession builds a session with its own rand stream and a timeout
// callback bound to this room's serialized command path.
func (that *RoomManager) newSession(room *Room) *session.GameSession {
	room.archived = false

	rng := rand.New(rand.NewSource(rand.Int63())) //nolint: gosec // it's ok

	return session.NewGameSession(rng, that.turnTimeout, func() {
		that.handleTimeout(context.Background(), room)
	})
}

// destroyRoom tears the room down with its lock already held: clock and
// any in-flight monty state go with the session, nothing persists.
func (that *RoomManager) destroyRoom(room *Room) {
	room.closed = true
	room.sess.StopClock()

	that.mu.Lock()
	delete(that.rooms, room.code)
	that.mu.Unlock()

	that.logger.Info("room destroyed", "roomCode", room.code)
}

func (that *RoomManager) statePayload(room *Room) StatePayload {
	return StatePayload{
		State:    room.sess.StateView(),
		RoomInfo: that.roomInfo(room),
	}
}

func (that *RoomManager) roomInfo(room *Room) RoomInfo {
	return RoomInfo{
		Code:             room.code,
		Players:          room.playerList(),
		WaitingForPlayer: room.playerCount() < session.PlayerSlots,
	}
}

func (that *RoomManager) notify(code, action string, payload any) {
	if that.notifier == nil {
		return
	}

	that.notifier.Broadcast(code, action, payload)
}
