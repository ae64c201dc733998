package probability

import (
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/entity"
)

// Hint is the percentage pair shown for one hidden cell, expressed in
// majority/minority terms. The session maps it onto the secret display
// slots before anything leaves the server.
type Hint struct {
	Majority int
	Minority int
}

// Compute returns a hint for every placed-hidden cell and nil for the
// rest, using a sampling-without-replacement model over the symbols not
// yet revealed. It is a pure function of the board, so recomputation with
// an unchanged board yields identical output.
func Compute(board *entity.Board) [entity.BoardSize]*Hint {
	var hints [entity.BoardSize]*Hint

	remainingMajority, remainingUnrevealed := MajorityOdds(board)
	if remainingUnrevealed == 0 {
		return hints
	}

	majorityPct := roundPercent(remainingMajority, remainingUnrevealed)
	minorityPct := roundPercent(remainingUnrevealed-remainingMajority, remainingUnrevealed)

	// Rounding may leave the pair a point off 100; the larger value
	// absorbs the remainder.
	if rest := 100 - majorityPct - minorityPct; rest != 0 {
		if majorityPct >= minorityPct {
			majorityPct += rest
		} else {
			minorityPct += rest
		}
	}

	for i := 0; i < entity.BoardSize; i++ {
		if board.StatusAt(i) != entity.CellPlacedHidden {
			continue
		}
		hints[i] = &Hint{Majority: majorityPct, Minority: minorityPct}
	}

	return hints
}

// MajorityOdds returns the exact odds that any unrevealed cell holds the
// majority symbol, as the fraction remainingMajority/remainingUnrevealed.
func MajorityOdds(board *entity.Board) (remainingMajority, remainingUnrevealed int) {
	remainingMajority = entity.MajorityCount - board.RevealedCountOf(entity.SymbolMajority)
	remainingUnrevealed = entity.BoardSize - board.RevealedCount()
	return remainingMajority, remainingUnrevealed
}

func roundPercent(numerator, denominator int) int {
	return (200*numerator + denominator) / (2 * denominator)
}
