package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMiniredisClient backs the repository with an in-process redis so
// the tests run without docker.
func newMiniredisClient(t *testing.T) *redis.Client {
	t.Helper()

	server := miniredis.RunT(t)

	return redis.NewClient(&redis.Options{Addr: server.Addr()})
}

func TestResultRepository_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores a finished game", func(t *testing.T) {
		// Given: a result repository and one finished game
		resultRepo := NewResultRepository(newMiniredisClient(t))

		result := &entity.GameResult{
			RoomCode:   "ABC123",
			Winner:     entity.MarkX,
			Players:    []string{"ann", "bob"},
			FinishedAt: time.Now().UTC().Truncate(time.Second),
		}

		// When: Save is called
		err := resultRepo.Save(ctx, result)

		// Then: the result can be read back
		require.NoError(t, err)

		results, err := resultRepo.ListByRoom(ctx, "ABC123")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, result.RoomCode, results[0].RoomCode)
		assert.Equal(t, result.Winner, results[0].Winner)
		assert.Equal(t, result.Players, results[0].Players)
		assert.True(t, result.FinishedAt.Equal(results[0].FinishedAt))
	})

	t.Run("Newest result comes first", func(t *testing.T) {
		// Given: two finished games in the same room
		resultRepo := NewResultRepository(newMiniredisClient(t))

		first := &entity.GameResult{RoomCode: "ABC123", Winner: entity.MarkX}
		second := &entity.GameResult{RoomCode: "ABC123", Winner: ""}

		require.NoError(t, resultRepo.Save(ctx, first))
		require.NoError(t, resultRepo.Save(ctx, second))

		// When: listing the room's history
		results, err := resultRepo.ListByRoom(ctx, "ABC123")

		// Then: the most recent game leads, a draw keeps its empty winner
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Empty(t, results[0].Winner)
		assert.Equal(t, entity.MarkX, results[1].Winner)
	})

	t.Run("History is capped", func(t *testing.T) {
		// Given: more finished games than the history keeps
		resultRepo := NewResultRepository(newMiniredisClient(t))

		for i := 0; i < resultHistoryLimit+10; i++ {
			require.NoError(t, resultRepo.Save(ctx, &entity.GameResult{RoomCode: "ABC123"}))
		}

		// When: listing the room's history
		results, err := resultRepo.ListByRoom(ctx, "ABC123")

		// Then: only the cap survives
		require.NoError(t, err)
		assert.Len(t, results, resultHistoryLimit)
	})
}

func TestResultRepository_ListByRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns ErrResultNotFound for a room with no history", func(t *testing.T) {
		// Given: an empty repository
		resultRepo := NewResultRepository(newMiniredisClient(t))

		// When: listing an unknown room
		_, err := resultRepo.ListByRoom(ctx, "NOROOM")

		// Then: the sentinel error comes back
		require.ErrorIs(t, err, ErrResultNotFound)
	})

	t.Run("Results are isolated per room", func(t *testing.T) {
		// Given: results in two different rooms
		resultRepo := NewResultRepository(newMiniredisClient(t))

		require.NoError(t, resultRepo.Save(ctx, &entity.GameResult{RoomCode: "ROOMA"}))
		require.NoError(t, resultRepo.Save(ctx, &entity.GameResult{RoomCode: "ROOMB"}))

		// When: listing one room
		results, err := resultRepo.ListByRoom(ctx, "ROOMA")

		// Then: only that room's game is returned
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "ROOMA", results[0].RoomCode)
	})
}
