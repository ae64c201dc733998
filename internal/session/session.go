package session

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/montyhall"
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/probability"
)

type Phase string

const (
	PhasePlacement Phase = "placement"
	PhaseReveal    Phase = "reveal"
	PhaseGameOver  Phase = "game_over"
)

const PlayerSlots = 2

// GameSession is the per-room phase machine. It exclusively owns the
// board, the hint array, the monty hall state, the turn clock and the
// play-again votes. It is not safe for concurrent use: the owning room
// serializes every command, including the synthetic timeout pass.
type GameSession struct {
	board *entity.Board
	hints [entity.BoardSize]*probability.Hint
	monty *montyhall.Mechanic
	clock *TurnClock
	rng   *rand.Rand

	phase       Phase
	currentTurn int
	revealTurn  int

	gameOver   bool
	winner     entity.Symbol
	winnerMark string

	playAgainVotes [PlayerSlots]bool

	// One-time secret permutations, applied only when building views.
	majorityMark  string
	slotAMajority bool
}

// NewGameSession creates a fresh session: symbols drawn 5/4 at random,
// display mark and probability slot mappings drawn once, center cell
// auto-placed. The clock stays stopped until StartClock.
func NewGameSession(rng *rand.Rand, turnDuration time.Duration, onTimeout func()) *GameSession {
	board := entity.NewBoard(rng)

	// Center is placed before either player acts; its hint is withheld
	// until the reveal phase.
	if err := board.Place(entity.CenterCell); err != nil {
		panic(fmt.Errorf("auto-placing center: %w", err))
	}

	majorityMark := entity.MarkX
	if rng.Intn(2) == 0 {
		majorityMark = entity.MarkO
	}

	that := &GameSession{
		board:         board,
		monty:         montyhall.New(),
		rng:           rng,
		phase:         PhasePlacement,
		currentTurn:   0,
		majorityMark:  majorityMark,
		slotAMajority: rng.Intn(2) == 0,
	}
	that.clock = NewTurnClock(turnDuration, onTimeout)
	that.hints = probability.Compute(board)

	return that
}

func (that *GameSession) Phase() Phase {
	return that.phase
}

func (that *GameSession) CurrentTurn() int {
	return that.currentTurn
}

func (that *GameSession) RevealTurn() int {
	return that.revealTurn
}

func (that *GameSession) IsGameOver() bool {
	return that.gameOver
}

func (that *GameSession) WinnerMark() string {
	return that.winnerMark
}

func (that *GameSession) Board() *entity.Board {
	return that.board
}

func (that *GameSession) Monty() *montyhall.Mechanic {
	return that.monty
}

// StartClock starts the turn countdown; called once the second player
// joins the room.
func (that *GameSession) StartClock() {
	that.clock.Start()
}

// StopClock cancels the countdown, on room teardown or when a player
// leaves.
func (that *GameSession) StopClock() {
	that.clock.Stop()
}

// Place puts a hidden piece on an empty non-center cell during the
// placement phase.
func (that *GameSession) Place(slot, position int) error {
	if that.phase != PhasePlacement {
		return fmt.Errorf("%w: placement phase is over", apperror.ErrInvalidMove)
	}

	if slot != that.currentTurn {
		return apperror.ErrOutOfTurn
	}

	if position == entity.CenterCell {
		return fmt.Errorf("%w: center cell is placed automatically", apperror.ErrInvalidMove)
	}

	if err := that.board.Place(position); err != nil {
		return err
	}

	that.hints = probability.Compute(that.board)

	if that.board.IsFull() {
		that.enterRevealPhase()
		return nil
	}

	that.advanceTurn()

	return nil
}

// Reveal publicly reveals a hidden cell on a plain reveal turn. On monty
// turns the player must go through the monty protocol instead.
func (that *GameSession) Reveal(slot, position int) error {
	if err := that.confirmRevealTurn(slot); err != nil {
		return err
	}

	if !that.monty.IsIdle() {
		return fmt.Errorf("%w: monty hall exchange must be resolved first", apperror.ErrInvalidState)
	}

	return that.doReveal(position)
}

// MontyChooseOriginal is step one of the monty protocol: nominate a hidden
// cell, receive a private look at another one. The returned hint must be
// narrowcast to the acting player only.
func (that *GameSession) MontyChooseOriginal(slot, position int) (*PrivateHint, error) {
	if err := that.confirmRevealTurn(slot); err != nil {
		return nil, err
	}

	if that.monty.IsIdle() {
		return nil, fmt.Errorf("%w: no monty hall exchange on this turn", apperror.ErrInvalidState)
	}

	if err := that.monty.ChooseOriginal(that.board, position, that.rng); err != nil {
		return nil, err
	}

	// A completed protocol step counts as an action for the clock.
	that.clock.Restart()

	return &PrivateHint{
		OriginalPosition: that.monty.OriginalPosition,
		MontyPosition:    that.monty.MontyPosition,
		MontySymbol:      that.markFor(that.monty.ShownSymbol),
	}, nil
}

// MontyFinalChoice is step two: settle on the original cell or any other
// hidden cell; the chosen cell is revealed through the normal path.
func (that *GameSession) MontyFinalChoice(slot, position int) error {
	if err := that.confirmRevealTurn(slot); err != nil {
		return err
	}

	if err := that.monty.FinalChoice(that.board, position); err != nil {
		return err
	}

	return that.doReveal(position)
}

// PassOnTimeout is the synthetic command delivered when the turn clock
// expires: the turn is forfeited with no board mutation. Any in-flight
// monty exchange is discarded.
func (that *GameSession) PassOnTimeout() {
	if that.gameOver || that.phase == PhaseGameOver {
		return
	}

	that.advanceTurn()
}

// VoteNewGame registers a play-again vote; it reports whether both
// players have now voted.
func (that *GameSession) VoteNewGame(slot int) (bool, error) {
	if !that.gameOver {
		return false, fmt.Errorf("%w: game is still in progress", apperror.ErrInvalidState)
	}

	if slot < 0 || slot >= PlayerSlots {
		return false, apperror.ErrPlayerNotFound
	}

	that.playAgainVotes[slot] = true

	return that.playAgainVotes[0] && that.playAgainVotes[1], nil
}

func (that *GameSession) confirmRevealTurn(slot int) error {
	if that.gameOver {
		return apperror.ErrGameFinished
	}

	if that.phase != PhaseReveal {
		return fmt.Errorf("%w: reveal phase has not started", apperror.ErrInvalidMove)
	}

	if slot != that.currentTurn {
		return apperror.ErrOutOfTurn
	}

	return nil
}

func (that *GameSession) doReveal(position int) error {
	if err := that.board.Reveal(position); err != nil {
		return err
	}

	that.hints = probability.Compute(that.board)

	winner, over := that.board.DetermineGameResult()
	if over {
		that.finishGame(winner)
		return nil
	}

	that.advanceTurn()

	return nil
}

func (that *GameSession) enterRevealPhase() {
	that.phase = PhaseReveal
	that.currentTurn = 0
	that.revealTurn = 1
	that.hints = probability.Compute(that.board)
	that.monty.Reset()
	that.armMontyIfQualifying()
	that.clock.Restart()
}

// advanceTurn hands the turn to the other player, advancing the reveal
// turn counter and re-arming the monty mechanic when the new turn
// qualifies. Strict alternation: no extra-turn rule exists anywhere.
func (that *GameSession) advanceTurn() {
	that.currentTurn = 1 - that.currentTurn

	that.monty.Reset()

	if that.phase == PhaseReveal {
		that.revealTurn++
		that.armMontyIfQualifying()
	}

	that.clock.Restart()
}

// armMontyIfQualifying activates the mechanic on even reveal turns. A
// distinct cell to show privately must exist, so at least two hidden
// cells are required.
func (that *GameSession) armMontyIfQualifying() {
	if that.revealTurn%2 != 0 {
		return
	}

	if len(that.board.HiddenPositions()) < 2 {
		return
	}

	_ = that.monty.Activate(that.currentTurn)
}

func (that *GameSession) finishGame(winner entity.Symbol) {
	that.gameOver = true
	that.phase = PhaseGameOver
	that.winner = winner
	that.winnerMark = that.markFor(winner)
	that.monty.Reset()
	that.clock.Stop()
}

// markFor maps a symbol category onto its display mark through the
// session's one-time secret assignment. Empty in, empty out.
func (that *GameSession) markFor(symbol entity.Symbol) string {
	switch symbol {
	case entity.SymbolMajority:
		return that.majorityMark
	case entity.SymbolMinority:
		if that.majorityMark == entity.MarkX {
			return entity.MarkO
		}
		return entity.MarkX
	default:
		return ""
	}
}
