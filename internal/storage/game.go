package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/detective-engine/pkg/state"
)

func gameKey(id uuid.UUID) string {
	return "game:" + id.String()
}

// Game operations (Redis-backed)

// SaveGame stamps UpdatedAt and refreshes the TTL.
func (r *RedisStorage) SaveGame(ctx context.Context, game *state.Game) error {
	if game == nil {
		return errors.New("game cannot be nil")
	}
	game.UpdatedAt = time.Now()

	data, err := json.Marshal(game)
	if err != nil {
		r.logger.Error("Failed to marshal game", "game_id", game.ID, "error", err)
		return fmt.Errorf("failed to marshal game: %w", err)
	}

	if err := r.client.Set(ctx, gameKey(game.ID), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save game", "game_id", game.ID, "error", err)
		return fmt.Errorf("failed to save game: %w", err)
	}
	// keep the action log alive as long as the game
	if err := r.client.Expire(ctx, actionsKey(game.ID), r.ttl).Err(); err != nil {
		r.logger.Warn("Failed to refresh action log TTL", "game_id", game.ID, "error", err)
	}

	return nil
}

// LoadGame returns nil, nil when the game does not exist or has expired.
func (r *RedisStorage) LoadGame(ctx context.Context, id uuid.UUID) (*state.Game, error) {
	data, err := r.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Game not found", "game_id", id)
			return nil, nil
		}
		r.logger.Error("Failed to load game", "game_id", id, "error", err)
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if len(data) == 0 {
		r.logger.Warn("Game not found", "game_id", id)
		return nil, nil
	}

	var game state.Game
	if err := json.Unmarshal(data, &game); err != nil {
		r.logger.Error("Failed to unmarshal game", "game_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &game, nil
}

func (r *RedisStorage) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, gameKey(id), actionsKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete game", "game_id", id, "error", err)
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}
