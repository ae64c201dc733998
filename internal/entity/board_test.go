package entity

import (
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	t.Run("Draws exactly five majority and four minority symbols", func(t *testing.T) {
		// Given: boards created from many different seeds
		for seed := int64(0); seed < 50; seed++ {
			board := NewBoard(rand.New(rand.NewSource(seed))) //nolint: gosec // it's ok

			// When: counting the symbol split
			majority, minority := 0, 0
			for _, cell := range board.Cells {
				switch cell.TrueSymbol {
				case SymbolMajority:
					majority++
				case SymbolMinority:
					minority++
				}
			}

			// Then: the split is always 5/4 and all cells start empty
			assert.Equal(t, MajorityCount, majority)
			assert.Equal(t, MinorityCount, minority)

			for position := 0; position < BoardSize; position++ {
				assert.Equal(t, CellEmpty, board.StatusAt(position))
			}
		}
	})
}

func TestBoard_Place(t *testing.T) {
	t.Run("Places a piece on an empty cell", func(t *testing.T) {
		// Given: a fresh board
		board := NewBoard(rand.New(rand.NewSource(1))) //nolint: gosec // it's ok

		// When: placing on cell 0
		err := board.Place(0)

		// Then: the cell is placed and hidden
		require.NoError(t, err)
		assert.Equal(t, CellPlacedHidden, board.StatusAt(0))
	})

	t.Run("Returns ErrInvalidMove for an occupied cell", func(t *testing.T) {
		// Given: a board with cell 0 already placed
		board := NewBoard(rand.New(rand.NewSource(1))) //nolint: gosec // it's ok
		require.NoError(t, board.Place(0))

		// When: placing on cell 0 again
		err := board.Place(0)

		// Then: the move is rejected
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
	})

	t.Run("Returns ErrInvalidMove for an out of range cell", func(t *testing.T) {
		// Given: a fresh board
		board := NewBoard(rand.New(rand.NewSource(1))) //nolint: gosec // it's ok

		// When: placing outside the grid
		err := board.Place(9)

		// Then: the move is rejected
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
	})
}

func TestBoard_Reveal(t *testing.T) {
	t.Run("Reveals a hidden cell", func(t *testing.T) {
		// Given: a board with cell 3 placed
		board := NewBoard(rand.New(rand.NewSource(2))) //nolint: gosec // it's ok
		require.NoError(t, board.Place(3))

		// When: revealing cell 3
		err := board.Reveal(3)

		// Then: the cell becomes revealed and counts update
		require.NoError(t, err)
		assert.Equal(t, CellRevealed, board.StatusAt(3))
		assert.Equal(t, 1, board.RevealedCount())
	})

	t.Run("Returns ErrInvalidMove for an empty cell", func(t *testing.T) {
		// Given: a fresh board
		board := NewBoard(rand.New(rand.NewSource(2))) //nolint: gosec // it's ok

		// When: revealing a cell that was never placed
		err := board.Reveal(3)

		// Then: the move is rejected
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
	})

	t.Run("Returns ErrInvalidMove for an already revealed cell", func(t *testing.T) {
		// Given: a board with cell 3 revealed
		board := NewBoard(rand.New(rand.NewSource(2))) //nolint: gosec // it's ok
		require.NoError(t, board.Place(3))
		require.NoError(t, board.Reveal(3))

		// When: revealing cell 3 again
		err := board.Reveal(3)

		// Then: the move is rejected
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
	})
}

// fixedBoard builds a board with an explicit symbol layout, all cells
// placed and hidden.
func fixedBoard(t *testing.T, symbols [BoardSize]Symbol) *Board {
	t.Helper()

	board := &Board{}
	for i := range board.Cells {
		board.Cells[i] = Cell{TrueSymbol: symbols[i], Status: CellPlacedHidden}
	}

	return board
}

func TestBoard_DetermineGameResult(t *testing.T) {
	layout := [BoardSize]Symbol{
		SymbolMajority, SymbolMajority, SymbolMajority,
		SymbolMinority, SymbolMinority, SymbolMinority,
		SymbolMajority, SymbolMajority, SymbolMinority,
	}

	t.Run("No result while no line is fully revealed", func(t *testing.T) {
		// Given: a board with two revealed cells of the top row
		board := fixedBoard(t, layout)
		require.NoError(t, board.Reveal(0))
		require.NoError(t, board.Reveal(1))

		// When: evaluating the result
		winner, over := board.DetermineGameResult()

		// Then: the game is still running
		assert.False(t, over)
		assert.Empty(t, winner)
	})

	t.Run("Majority wins when a revealed line matches", func(t *testing.T) {
		// Given: a board with the full top row revealed
		board := fixedBoard(t, layout)
		require.NoError(t, board.Reveal(0))
		require.NoError(t, board.Reveal(1))
		require.NoError(t, board.Reveal(2))

		// When: evaluating the result
		winner, over := board.DetermineGameResult()

		// Then: the majority symbol wins
		assert.True(t, over)
		assert.Equal(t, SymbolMajority, winner)
	})

	t.Run("Hidden cells never complete a line", func(t *testing.T) {
		// Given: two revealed cells of the middle row, the third hidden
		board := fixedBoard(t, layout)
		require.NoError(t, board.Reveal(3))
		require.NoError(t, board.Reveal(4))

		// When: evaluating the result
		_, over := board.DetermineGameResult()

		// Then: the hidden cell does not count
		assert.False(t, over)
	})

	t.Run("All cells revealed with no line is a draw", func(t *testing.T) {
		// Given: a layout where no full line shares a symbol
		drawLayout := [BoardSize]Symbol{
			SymbolMajority, SymbolMajority, SymbolMinority,
			SymbolMinority, SymbolMinority, SymbolMajority,
			SymbolMajority, SymbolMajority, SymbolMinority,
		}
		// guard against an accidental winning layout
		board := fixedBoard(t, drawLayout)
		for _, combo := range WinCombos {
			same := drawLayout[combo[0]] == drawLayout[combo[1]] && drawLayout[combo[1]] == drawLayout[combo[2]]
			require.False(t, same, "layout must not contain a winning line")
		}

		for position := 0; position < BoardSize; position++ {
			require.NoError(t, board.Reveal(position))
		}

		// When: evaluating the result
		winner, over := board.DetermineGameResult()

		// Then: the game is over with no winner
		assert.True(t, over)
		assert.Empty(t, winner)
	})
}

func TestBoard_Counters(t *testing.T) {
	t.Run("RevealedCountOf and HiddenPositions track reveals", func(t *testing.T) {
		// Given: a fully placed board with a known layout
		board := fixedBoard(t, [BoardSize]Symbol{
			SymbolMajority, SymbolMajority, SymbolMajority,
			SymbolMinority, SymbolMinority, SymbolMinority,
			SymbolMajority, SymbolMajority, SymbolMinority,
		})

		// When: revealing one majority and one minority cell
		require.NoError(t, board.Reveal(0))
		require.NoError(t, board.Reveal(3))

		// Then: the per-symbol counters and hidden set reflect it
		assert.Equal(t, 1, board.RevealedCountOf(SymbolMajority))
		assert.Equal(t, 1, board.RevealedCountOf(SymbolMinority))
		assert.Len(t, board.HiddenPositions(), 7)
		assert.NotContains(t, board.HiddenPositions(), 0)
		assert.NotContains(t, board.HiddenPositions(), 3)
		assert.True(t, board.IsFull())
	})
}
