package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/entity"
)

var ErrResultNotFound = errors.New("game result not found")

// resultHistoryLimit caps the per-room result list; live sessions are
// never stored here, only finished games.
const resultHistoryLimit = 50

type ResultRepository interface {
	Save(ctx context.Context, result *entity.GameResult) error
	ListByRoom(ctx context.Context, roomCode string) ([]*entity.GameResult, error)
}

type dbResult struct {
	client *redis.Client
}

func NewResultRepository(client *redis.Client) ResultRepository {
	return &dbResult{
		client: client,
	}
}

func (that *dbResult) Save(ctx context.Context, result *entity.GameResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not marshal game result: %w", err)
	}

	resultKey := "results:" + result.RoomCode

	if err = that.client.LPush(ctx, resultKey, resultJSON).Err(); err != nil {
		return fmt.Errorf("failed to push game result: %w", err)
	}

	if err = that.client.LTrim(ctx, resultKey, 0, resultHistoryLimit-1).Err(); err != nil {
		return fmt.Errorf("failed to trim game results: %w", err)
	}

	return nil
}

func (that *dbResult) ListByRoom(ctx context.Context, roomCode string) ([]*entity.GameResult, error) {
	resultKey := "results:" + roomCode

	entries, err := that.client.LRange(ctx, resultKey, 0, resultHistoryLimit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get game results: %w", err)
	}

	if len(entries) == 0 {
		return nil, ErrResultNotFound
	}

	results := make([]*entity.GameResult, 0, len(entries))
	for _, entry := range entries {
		var result entity.GameResult
		if err = json.Unmarshal([]byte(entry), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game result: %w", err)
		}
		results = append(results, &result)
	}

	return results, nil
}
