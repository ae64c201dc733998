package session

import (
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/entity"
)

// StateView is the public projection of a session: true symbols appear
// only for revealed cells, and the probability pairs have already been
// run through the secret slot permutation. Safe to broadcast as-is.
type StateView struct {
	Board          [entity.BoardSize]CellView `json:"board"`
	Phase          Phase                      `json:"phase"`
	CurrentTurn    int                        `json:"current_turn"`
	GameOver       bool                       `json:"game_over"`
	Winner         string                     `json:"winner,omitempty"`
	PlayAgainVotes [PlayerSlots]bool          `json:"play_again_votes"`
	TimeRemaining  *int                       `json:"turn_time_remaining,omitempty"`
	TurnTimeout    int                        `json:"turn_timeout"`
}

type CellView struct {
	Status        entity.CellStatus `json:"status"`
	Symbol        string            `json:"symbol,omitempty"`
	Probabilities *ProbabilityPair  `json:"probabilities,omitempty"`
}

// ProbabilityPair is the (pA, pB) hint pair; which slot carries the
// majority percentage is fixed secretly per session.
type ProbabilityPair struct {
	A int `json:"a"`
	B int `json:"b"`
}

// PrivateHint is the monty hall disclosure for the acting player only;
// it must never be broadcast.
type PrivateHint struct {
	OriginalPosition int    `json:"original_position"`
	MontyPosition    int    `json:"monty_position"`
	MontySymbol      string `json:"monty_symbol"`
}

// StateView builds the public view of the session.
func (that *GameSession) StateView() StateView {
	view := StateView{
		Phase:          that.phase,
		CurrentTurn:    that.currentTurn,
		GameOver:       that.gameOver,
		Winner:         that.winnerMark,
		PlayAgainVotes: that.playAgainVotes,
		TurnTimeout:    int(that.clock.duration.Seconds()),
	}

	if remaining := that.clock.Remaining(); remaining >= 0 {
		view.TimeRemaining = &remaining
	}

	for i := 0; i < entity.BoardSize; i++ {
		view.Board[i] = that.cellView(i)
	}

	return view
}

func (that *GameSession) cellView(position int) CellView {
	status := that.board.StatusAt(position)

	cell := CellView{Status: status}

	switch status {
	case entity.CellRevealed:
		cell.Symbol = that.markFor(that.board.SymbolAt(position))
	case entity.CellPlacedHidden:
		cell.Probabilities = that.hintView(position)
	case entity.CellEmpty:
	}

	return cell
}

// hintView maps the engine's majority/minority percentages onto the
// session's secret display slots. The center hint is withheld during the
// placement phase, and everything is withheld once the game is over.
func (that *GameSession) hintView(position int) *ProbabilityPair {
	if that.gameOver {
		return nil
	}

	if position == entity.CenterCell && that.phase == PhasePlacement {
		return nil
	}

	hint := that.hints[position]
	if hint == nil {
		return nil
	}

	if that.slotAMajority {
		return &ProbabilityPair{A: hint.Majority, B: hint.Minority}
	}

	return &ProbabilityPair{A: hint.Minority, B: hint.Majority}
}
