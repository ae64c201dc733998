package service

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/session"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// preferredOrder ranks placement targets: corners first, edges last. The
// center is never placeable.
var preferredOrder = []int{0, 2, 6, 8, 1, 3, 5, 7}

type BotService interface {
	PlayTurn(sess *session.GameSession, slot int) error
}

type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

// PlayTurn makes one full turn for the bot: a placement, a plain reveal,
// or the complete monty hall exchange, depending on the session state.
func (that *botService) PlayTurn(sess *session.GameSession, slot int) error {
	if sess.IsGameOver() || sess.CurrentTurn() != slot {
		return nil
	}

	switch sess.Phase() {
	case session.PhasePlacement:
		return that.playPlacement(sess, slot)
	case session.PhaseReveal:
		return that.playReveal(sess, slot)
	default:
		return nil
	}
}

func (that *botService) playPlacement(sess *session.GameSession, slot int) error {
	board := sess.Board()

	candidates := make([]int, 0, entity.BoardSize)
	for _, position := range preferredOrder {
		if board.StatusAt(position) == entity.CellEmpty {
			candidates = append(candidates, position)
		}
	}

	if len(candidates) == 0 {
		return ErrNoAvailableMoves
	}

	// Keep the first few preferred cells in contention so the bot does
	// not become fully predictable.
	limit := 3
	if len(candidates) < limit {
		limit = len(candidates)
	}

	position := candidates[rand.Intn(limit)] //nolint: gosec // it's ok
	if err := sess.Place(slot, position); err != nil {
		return fmt.Errorf("bot placement: %w", err)
	}

	return nil
}

func (that *botService) playReveal(sess *session.GameSession, slot int) error {
	position := that.pickRevealTarget(sess)
	if position < 0 {
		return ErrNoAvailableMoves
	}

	if sess.Monty().IsIdle() {
		if err := sess.Reveal(slot, position); err != nil {
			return fmt.Errorf("bot reveal: %w", err)
		}
		return nil
	}

	hint, err := sess.MontyChooseOriginal(slot, position)
	if err != nil {
		return fmt.Errorf("bot monty original: %w", err)
	}

	final := position
	if hint.MontySymbol == that.preferredMark(sess) {
		// The privately shown cell holds the mark the bot is hunting
		// for; switch onto it.
		final = hint.MontyPosition
	}

	if err = sess.MontyFinalChoice(slot, final); err != nil {
		return fmt.Errorf("bot monty final: %w", err)
	}

	return nil
}

// pickRevealTarget prefers a hidden cell completing a line that already
// shows two equal symbols, otherwise any hidden cell. The hint pairs are
// identical across hidden cells, so cell choice is purely tactical.
func (that *botService) pickRevealTarget(sess *session.GameSession) int {
	board := sess.Board()

	hidden := board.HiddenPositions()
	if len(hidden) == 0 {
		return -1
	}

	for _, combo := range entity.WinCombos {
		revealed := 0
		hiddenInLine := -1
		var first entity.Symbol
		matched := true

		for _, position := range combo {
			switch board.StatusAt(position) {
			case entity.CellRevealed:
				if revealed == 0 {
					first = board.SymbolAt(position)
				} else if board.SymbolAt(position) != first {
					matched = false
				}
				revealed++
			case entity.CellPlacedHidden:
				hiddenInLine = position
			case entity.CellEmpty:
				matched = false
			}
		}

		if matched && revealed == 2 && hiddenInLine >= 0 {
			return hiddenInLine
		}
	}

	return hidden[rand.Intn(len(hidden))] //nolint: gosec // it's ok
}

// preferredMark is the mark revealed most often so far; before any
// reveal the bot hunts X.
func (that *botService) preferredMark(sess *session.GameSession) string {
	view := sess.StateView()

	counts := map[string]int{}
	for _, cell := range view.Board {
		if cell.Symbol != "" {
			counts[cell.Symbol]++
		}
	}

	if counts[entity.MarkO] > counts[entity.MarkX] {
		return entity.MarkO
	}

	return entity.MarkX
}
