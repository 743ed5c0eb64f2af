package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/detective-engine/pkg/state"
	"github.com/jwebster45206/detective-engine/pkg/unlock"
)

func setupBroadcaster(t *testing.T) (*Broadcaster, *redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewBroadcaster(client, logger), client, mr
}

func subscribe(t *testing.T, client *redis.Client, gameID uuid.UUID) *redis.PubSub {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, Channel(gameID))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	return sub
}

func receive(t *testing.T, sub *redis.PubSub) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	return event
}

func TestChannel(t *testing.T) {
	id := uuid.MustParse("7f1d3c2a-0000-4000-8000-000000000001")
	assert.Equal(t, "game-events:7f1d3c2a-0000-4000-8000-000000000001", Channel(id))
}

func TestBroadcaster_PublishHypothesisUnlocked(t *testing.T) {
	b, client, _ := setupBroadcaster(t)
	gameID := uuid.New()
	sub := subscribe(t, client, gameID)

	err := b.PublishHypothesisUnlocked(context.Background(), gameID, state.UnlockEvent{
		ID:           "evt-1",
		HypothesisID: "smugglers",
		Trigger:      unlock.Trigger{Type: unlock.TriggerEvidence, EvidenceID: "logbook"},
	}, "Silenced by smugglers")
	require.NoError(t, err)

	event := receive(t, sub)
	assert.Equal(t, EventTypeHypothesisUnlocked, event.Type)
	assert.Equal(t, gameID.String(), event.GameID)
	assert.Equal(t, "smugglers", event.Data["hypothesis_id"])
	assert.Equal(t, "Silenced by smugglers", event.Data["hypothesis_label"])
	assert.Equal(t, map[string]any{"type": "evidence", "evidence_id": "logbook"}, event.Data["trigger"])
}

func TestBroadcaster_PublishContradictionDiscovered(t *testing.T) {
	b, client, _ := setupBroadcaster(t)
	gameID := uuid.New()
	sub := subscribe(t, client, gameID)

	require.NoError(t, b.PublishContradictionDiscovered(context.Background(), gameID, "calm_but_broken", "calm night, bent railing"))

	event := receive(t, sub)
	assert.Equal(t, EventTypeContradictionDiscovered, event.Type)
	assert.Equal(t, "calm_but_broken", event.Data["contradiction_id"])
}

func TestBroadcaster_PublishGameStateUpdated(t *testing.T) {
	b, client, _ := setupBroadcaster(t)
	gameID := uuid.New()
	sub := subscribe(t, client, gameID)

	s := state.NewPlayerState(7)
	s.Phase = state.PhaseInvestigation
	require.NoError(t, b.PublishGameStateUpdated(context.Background(), gameID, state.ActionCollectEvidence, s))

	event := receive(t, sub)
	assert.Equal(t, EventTypeGameStateUpdated, event.Type)
	assert.Equal(t, "COLLECT_EVIDENCE", event.Data["action"])
	assert.Equal(t, "investigation", event.Data["phase"])
	assert.Equal(t, float64(7), event.Data["investigation_points_remaining"])
}

func TestBroadcaster_PublishOtherGameNotReceived(t *testing.T) {
	b, client, _ := setupBroadcaster(t)
	gameID := uuid.New()
	sub := subscribe(t, client, gameID)

	require.NoError(t, b.PublishContradictionDiscovered(context.Background(), uuid.New(), "other", ""))
	require.NoError(t, b.PublishContradictionDiscovered(context.Background(), gameID, "mine", ""))

	event := receive(t, sub)
	assert.Equal(t, "mine", event.Data["contradiction_id"])
}

func TestBroadcaster_PublishError(t *testing.T) {
	b, _, mr := setupBroadcaster(t)
	mr.Close()

	err := b.PublishContradictionDiscovered(context.Background(), uuid.New(), "c1", "")
	assert.Error(t, err)
}
