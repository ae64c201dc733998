package entity

import (
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/apperror"
)

type Symbol string

type CellStatus string

const (
	SymbolMajority Symbol = "majority"
	SymbolMinority Symbol = "minority"

	CellEmpty        CellStatus = "empty"
	CellPlacedHidden CellStatus = "placed"
	CellRevealed     CellStatus = "revealed"

	MarkX = "X"
	MarkO = "O"

	BoardSize     = 9
	CenterCell    = 4
	MajorityCount = 5
	MinorityCount = 4
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Cell holds the fixed hidden symbol and the monotonic reveal status.
type Cell struct {
	TrueSymbol Symbol
	Status     CellStatus
}

// Board is the 9-cell grid. Exactly 5 cells hold the majority symbol and
// 4 the minority symbol, fixed once at creation.
type Board struct {
	Cells [BoardSize]Cell
}

// NewBoard draws one of the C(9,5) symbol layouts uniformly at random.
// All cells start empty.
func NewBoard(rng *rand.Rand) *Board {
	symbols := make([]Symbol, 0, BoardSize)
	for i := 0; i < MajorityCount; i++ {
		symbols = append(symbols, SymbolMajority)
	}
	for i := 0; i < MinorityCount; i++ {
		symbols = append(symbols, SymbolMinority)
	}

	rng.Shuffle(len(symbols), func(i, j int) {
		symbols[i], symbols[j] = symbols[j], symbols[i]
	})

	board := &Board{}
	for i := range board.Cells {
		board.Cells[i] = Cell{TrueSymbol: symbols[i], Status: CellEmpty}
	}

	return board
}

// Place transitions a cell from empty to placed-hidden.
func (that *Board) Place(position int) error {
	if position < 0 || position >= BoardSize {
		return fmt.Errorf("%w: cell %d is out of range", apperror.ErrInvalidMove, position)
	}

	if that.Cells[position].Status != CellEmpty {
		return fmt.Errorf("%w: cell %d is already occupied", apperror.ErrInvalidMove, position)
	}

	that.Cells[position].Status = CellPlacedHidden

	return nil
}

// Reveal transitions a cell from placed-hidden to revealed.
func (that *Board) Reveal(position int) error {
	if position < 0 || position >= BoardSize {
		return fmt.Errorf("%w: cell %d is out of range", apperror.ErrInvalidMove, position)
	}

	if that.Cells[position].Status != CellPlacedHidden {
		return fmt.Errorf("%w: cell %d is not hidden", apperror.ErrInvalidMove, position)
	}

	that.Cells[position].Status = CellRevealed

	return nil
}

// SymbolAt - internal-only accessor; callers must not forward the symbol
// for cells that are not revealed.
func (that *Board) SymbolAt(position int) Symbol {
	return that.Cells[position].TrueSymbol
}

func (that *Board) StatusAt(position int) CellStatus {
	if position < 0 || position >= BoardSize {
		return CellEmpty
	}
	return that.Cells[position].Status
}

func (that *Board) IsFull() bool {
	for _, cell := range that.Cells {
		if cell.Status == CellEmpty {
			return false
		}
	}
	return true
}

func (that *Board) RevealedCount() int {
	count := 0
	for _, cell := range that.Cells {
		if cell.Status == CellRevealed {
			count++
		}
	}
	return count
}

// RevealedCountOf reports how many revealed cells hold the given symbol.
func (that *Board) RevealedCountOf(symbol Symbol) int {
	count := 0
	for _, cell := range that.Cells {
		if cell.Status == CellRevealed && cell.TrueSymbol == symbol {
			count++
		}
	}
	return count
}

// HiddenPositions lists the cells currently in placed-hidden status.
func (that *Board) HiddenPositions() []int {
	positions := make([]int, 0, BoardSize)
	for i, cell := range that.Cells {
		if cell.Status == CellPlacedHidden {
			positions = append(positions, i)
		}
	}
	return positions
}

// DetermineGameResult evaluates the 8 canonical lines over revealed cells
// only. It returns the winning symbol and whether the game is over; a draw
// is game over with no winner.
func (that *Board) DetermineGameResult() (Symbol, bool) {
	for _, combo := range WinCombos {
		a, b, c := that.Cells[combo[0]], that.Cells[combo[1]], that.Cells[combo[2]]
		if a.Status != CellRevealed || b.Status != CellRevealed || c.Status != CellRevealed {
			continue
		}
		if a.TrueSymbol == b.TrueSymbol && b.TrueSymbol == c.TrueSymbol {
			return a.TrueSymbol, true
		}
	}

	if that.RevealedCount() == BoardSize {
		return "", true
	}

	return "", false
}
