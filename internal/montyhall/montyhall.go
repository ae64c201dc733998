package montyhall

import (
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/probability"
)

type State string

const (
	StateIdle                State = "idle"
	StateAwaitingOriginal    State = "awaiting_original"
	StateAwaitingFinalChoice State = "awaiting_final_choice"
)

// switchBias is the probability of drawing the switch-favoring candidate
// category. The bias is fixed regardless of the true odds so the hint is
// never a free tell.
const switchBias = 0.8

// Mechanic runs the private-information exchange injected on qualifying
// reveal turns. Its state never survives past the turn it started on.
type Mechanic struct {
	state State

	InitiatorSlot    int
	OriginalPosition int
	MontyPosition    int
	ShownSymbol      entity.Symbol
}

func New() *Mechanic {
	return &Mechanic{state: StateIdle, OriginalPosition: -1, MontyPosition: -1}
}

func (that *Mechanic) State() State {
	return that.state
}

func (that *Mechanic) IsIdle() bool {
	return that.state == StateIdle
}

// Activate arms the mechanic for the acting player's turn.
func (that *Mechanic) Activate(initiatorSlot int) error {
	if that.state != StateIdle {
		return fmt.Errorf("%w: monty hall exchange already in progress", apperror.ErrInvalidState)
	}

	that.state = StateAwaitingOriginal
	that.InitiatorSlot = initiatorSlot

	return nil
}

// ChooseOriginal records the player's nominated cell and privately draws
// the cell whose symbol will be shown to them. The board is not mutated.
func (that *Mechanic) ChooseOriginal(board *entity.Board, position int, rng *rand.Rand) error {
	if that.state != StateAwaitingOriginal {
		return fmt.Errorf("%w: no original choice expected", apperror.ErrInvalidState)
	}

	if position < 0 || position >= entity.BoardSize || board.StatusAt(position) != entity.CellPlacedHidden {
		return fmt.Errorf("%w: cell %d is not hidden", apperror.ErrInvalidMove, position)
	}

	montyPosition := that.drawMontyPosition(board, position, rng)
	if montyPosition < 0 {
		// Qualification requires at least two hidden cells, so this is
		// unreachable through the session; guard anyway.
		return fmt.Errorf("%w: no candidate cell to show", apperror.ErrInvalidState)
	}

	that.OriginalPosition = position
	that.MontyPosition = montyPosition
	that.ShownSymbol = board.SymbolAt(montyPosition)
	that.state = StateAwaitingFinalChoice

	return nil
}

// FinalChoice validates the cell the player settles on, either the
// original nomination or any other hidden cell. The caller performs the
// actual public reveal.
func (that *Mechanic) FinalChoice(board *entity.Board, position int) error {
	if that.state != StateAwaitingFinalChoice {
		return fmt.Errorf("%w: no final choice expected", apperror.ErrInvalidState)
	}

	if position < 0 || position >= entity.BoardSize || board.StatusAt(position) != entity.CellPlacedHidden {
		return fmt.Errorf("%w: cell %d is not hidden", apperror.ErrInvalidMove, position)
	}

	return nil
}

// Reset discards all exchange state after the public reveal completes or
// the turn is forfeited.
func (that *Mechanic) Reset() {
	that.state = StateIdle
	that.InitiatorSlot = 0
	that.OriginalPosition = -1
	that.MontyPosition = -1
	that.ShownSymbol = ""
}

// drawMontyPosition picks the privately shown cell: an 80/20 weighted
// choice between the switch-favoring and stay-favoring candidate
// categories, uniform within the drawn category, falling back to the
// other category when the drawn one is empty.
func (that *Mechanic) drawMontyPosition(board *entity.Board, originalPosition int, rng *rand.Rand) int {
	switchFavoring, stayFavoring := classifyCandidates(board, originalPosition)

	preferSwitch := rng.Float64() < switchBias

	picked := switchFavoring
	fallback := stayFavoring
	if !preferSwitch {
		picked, fallback = stayFavoring, switchFavoring
	}

	if len(picked) == 0 {
		picked = fallback
	}
	if len(picked) == 0 {
		return -1
	}

	return picked[rng.Intn(len(picked))]
}

// classifyCandidates splits the hidden cells other than the original
// nomination by what learning their symbol does to the remaining cells'
// majority odds: a candidate holding the scarcer remaining symbol pushes
// those odds up, which reads as an invitation to switch.
func classifyCandidates(board *entity.Board, originalPosition int) (switchFavoring, stayFavoring []int) {
	remainingMajority, remainingUnrevealed := probability.MajorityOdds(board)

	for _, position := range board.HiddenPositions() {
		if position == originalPosition {
			continue
		}

		majorityLeft := remainingMajority
		if board.SymbolAt(position) == entity.SymbolMajority {
			majorityLeft--
		}

		// P(majority | candidate shown) > P(majority), compared
		// cross-multiplied to stay in integers.
		if majorityLeft*remainingUnrevealed > remainingMajority*(remainingUnrevealed-1) {
			switchFavoring = append(switchFavoring, position)
		} else {
			stayFavoring = append(stayFavoring, position)
		}
	}

	return switchFavoring, stayFavoring
}
