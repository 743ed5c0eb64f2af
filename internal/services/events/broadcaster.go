package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/detective-engine/pkg/state"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeHypothesisUnlocked      EventType = "hypothesis.unlocked"
	EventTypeContradictionDiscovered EventType = "contradiction.discovered"
	EventTypeGameStateUpdated        EventType = "game.state_updated"
)

// Event represents a generic event structure
type Event struct {
	Type   EventType      `json:"type"`
	GameID string         `json:"game_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// Channel is the pub/sub channel carrying one game's events.
func Channel(gameID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", gameID.String())
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishHypothesisUnlocked publishes a hypothesis.unlocked event
func (b *Broadcaster) PublishHypothesisUnlocked(ctx context.Context, gameID uuid.UUID, event state.UnlockEvent, label string) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeHypothesisUnlocked,
		GameID: gameID.String(),
		Data: map[string]any{
			"event_id":         event.ID,
			"hypothesis_id":    event.HypothesisID,
			"hypothesis_label": label,
			"trigger":          event.Trigger,
		},
	})
}

// PublishContradictionDiscovered publishes a contradiction.discovered event
func (b *Broadcaster) PublishContradictionDiscovered(ctx context.Context, gameID uuid.UUID, contradictionID, description string) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeContradictionDiscovered,
		GameID: gameID.String(),
		Data: map[string]any{
			"contradiction_id": contradictionID,
			"description":      description,
		},
	})
}

// PublishGameStateUpdated publishes a game.state_updated event
func (b *Broadcaster) PublishGameStateUpdated(ctx context.Context, gameID uuid.UUID, action state.ActionType, s *state.PlayerState) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeGameStateUpdated,
		GameID: gameID.String(),
		Data: map[string]any{
			"action":                         action,
			"phase":                          s.Phase,
			"investigation_points_remaining": s.InvestigationPointsRemaining,
		},
	})
}

// publishToGame publishes an event to the game-specific channel
func (b *Broadcaster) publishToGame(ctx context.Context, gameID uuid.UUID, event Event) error {
	channel := Channel(gameID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type)

	return nil
}
