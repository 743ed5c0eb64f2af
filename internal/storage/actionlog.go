package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/detective-engine/pkg/state"
)

// actionsKey returns the Redis list holding a game's dispatched actions
func actionsKey(id uuid.UUID) string {
	return "game-actions:" + id.String()
}

// AppendAction adds a wire action to the end of the game's log
func (r *RedisStorage) AppendAction(ctx context.Context, id uuid.UUID, env state.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal action: %w", err)
	}

	key := actionsKey(id)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to append action",
			"error", err,
			"game_id", id,
			"key", key)
		return fmt.Errorf("failed to append action: %w", err)
	}

	r.logger.Debug("Appended action", "game_id", id, "action", env.Type)
	return nil
}

// ListActions returns the game's log in dispatch order
func (r *RedisStorage) ListActions(ctx context.Context, id uuid.UUID) ([]state.Envelope, error) {
	key := actionsKey(id)

	raw, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Error("Failed to list actions",
			"error", err,
			"game_id", id,
			"key", key)
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}

	actions := make([]state.Envelope, 0, len(raw))
	for i, item := range raw {
		var env state.Envelope
		if err := json.Unmarshal([]byte(item), &env); err != nil {
			return nil, fmt.Errorf("failed to unmarshal action %d: %w", i, err)
		}
		actions = append(actions, env)
	}
	return actions, nil
}
