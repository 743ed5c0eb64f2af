package storage

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/detective-engine/pkg/casefile"
	"github.com/jwebster45206/detective-engine/pkg/state"
	"github.com/jwebster45206/detective-engine/pkg/storage"
)

func setupTestStorage(t *testing.T, dataDir string) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	rs, err := NewRedisStorage(mr.Addr(), dataDir, time.Hour, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rs.Close() })

	return rs, mr
}

func TestNewRedisStorage_URL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	rs, err := NewRedisStorage("redis://localhost:6390/2", "", 0, logger)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6390", rs.Client().Options().Addr)
	assert.Equal(t, 2, rs.Client().Options().DB)
	assert.Equal(t, "./data", rs.dataDir)
	assert.Equal(t, DefaultGameTTL, rs.ttl)

	_, err = NewRedisStorage("redis://%zz", "", 0, logger)
	assert.Error(t, err)
}

func TestRedisStorage_Ping(t *testing.T) {
	rs, mr := setupTestStorage(t, t.TempDir())
	ctx := context.Background()

	assert.NoError(t, rs.Ping(ctx))

	mr.SetError("LOADING")
	assert.Error(t, rs.Ping(ctx))
}

func TestRedisStorage_WaitForConnection(t *testing.T) {
	rs, _ := setupTestStorage(t, t.TempDir())
	assert.NoError(t, rs.WaitForConnection(context.Background(), 3, time.Millisecond))
}

func TestRedisStorage_GameRoundTrip(t *testing.T) {
	rs, mr := setupTestStorage(t, t.TempDir())
	ctx := context.Background()

	created := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	game := state.NewGame("lighthouse", state.NewPlayerState(12), created)
	game.State.CollectedEvidenceIDs = []string{"logbook"}
	game.State.UnlockHistory = []state.UnlockEvent{{ID: "evt-1", HypothesisID: "smugglers", Timestamp: created}}

	require.NoError(t, rs.SaveGame(ctx, game))
	assert.True(t, mr.Exists("game:"+game.ID.String()))
	assert.Equal(t, time.Hour, mr.TTL("game:"+game.ID.String()))
	assert.True(t, game.UpdatedAt.After(created))

	loaded, err := rs.LoadGame(ctx, game.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, game.ID, loaded.ID)
	assert.Equal(t, "lighthouse", loaded.CaseID)
	assert.Equal(t, []string{"logbook"}, loaded.State.CollectedEvidenceIDs)
	assert.Equal(t, "smugglers", loaded.State.UnlockHistory[0].HypothesisID)
	assert.True(t, loaded.CreatedAt.Equal(created))
}

func TestRedisStorage_LoadMissingGame(t *testing.T) {
	rs, _ := setupTestStorage(t, t.TempDir())

	loaded, err := rs.LoadGame(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_LoadExpiredGame(t *testing.T) {
	rs, mr := setupTestStorage(t, t.TempDir())
	ctx := context.Background()

	game := state.NewGame("lighthouse", state.NewPlayerState(12), time.Now())
	require.NoError(t, rs.SaveGame(ctx, game))

	mr.FastForward(2 * time.Hour)

	loaded, err := rs.LoadGame(ctx, game.ID)
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_LoadCorruptGame(t *testing.T) {
	rs, mr := setupTestStorage(t, t.TempDir())
	id := uuid.New()
	require.NoError(t, mr.Set("game:"+id.String(), "{not json"))

	_, err := rs.LoadGame(context.Background(), id)
	assert.Error(t, err)
}

func TestRedisStorage_ActionLog(t *testing.T) {
	rs, mr := setupTestStorage(t, t.TempDir())
	ctx := context.Background()
	id := uuid.New()

	empty, err := rs.ListActions(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, empty)

	collect, err := state.EncodeAction(state.CollectEvidence{ActionID: "logbook", Cost: 3})
	require.NoError(t, err)
	require.NoError(t, rs.AppendAction(ctx, id, state.Envelope{Type: state.ActionAdvancePhase}))
	require.NoError(t, rs.AppendAction(ctx, id, collect))

	actions, err := rs.ListActions(ctx, id)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, state.ActionAdvancePhase, actions[0].Type)
	assert.Equal(t, state.ActionCollectEvidence, actions[1].Type)
	assert.JSONEq(t, `{"action_id":"logbook","cost":3}`, string(actions[1].Payload))
	assert.Equal(t, time.Hour, mr.TTL("game-actions:"+id.String()))
}

func TestRedisStorage_DeleteGame(t *testing.T) {
	rs, mr := setupTestStorage(t, t.TempDir())
	ctx := context.Background()

	game := state.NewGame("lighthouse", state.NewPlayerState(12), time.Now())
	require.NoError(t, rs.SaveGame(ctx, game))
	require.NoError(t, rs.AppendAction(ctx, game.ID, state.Envelope{Type: state.ActionResetGame}))

	require.NoError(t, rs.DeleteGame(ctx, game.ID))
	assert.False(t, mr.Exists("game:"+game.ID.String()))
	assert.False(t, mr.Exists("game-actions:"+game.ID.String()))
}

func writeCase(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cases"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cases", name), []byte(content), 0o644))
}

func copyFixture(t *testing.T, dir, name string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "pkg", "casefile", "testdata", name))
	require.NoError(t, err)
	writeCase(t, dir, name, string(data))
}

func TestRedisStorage_ListCases(t *testing.T) {
	dir := t.TempDir()
	copyFixture(t, dir, "lighthouse.json")
	copyFixture(t, dir, "orchard.yaml")
	writeCase(t, dir, "broken.json", `{"id": "broken", "hypotheses": [}`)
	writeCase(t, dir, "notes.txt", "not a case")

	rs, _ := setupTestStorage(t, dir)
	cases, err := rs.ListCases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"lighthouse": "The Keeper of Gull Point",
		"orchard":    "Blight in the Orchard",
	}, cases)
}

func TestRedisStorage_ListCasesMissingDir(t *testing.T) {
	rs, _ := setupTestStorage(t, t.TempDir())
	cases, err := rs.ListCases(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cases)
}

func TestRedisStorage_GetCase(t *testing.T) {
	dir := t.TempDir()
	copyFixture(t, dir, "lighthouse.json")
	copyFixture(t, dir, "orchard.yaml")
	writeCase(t, dir, "two_correct.json", `{
		"title": "Two answers",
		"briefing": {"title": "x", "investigation_points": 1},
		"hypotheses": [
			{"id": "a", "label": "A", "is_correct": true, "tier": 1},
			{"id": "b", "label": "B", "is_correct": true, "tier": 1}
		]
	}`)
	rs, _ := setupTestStorage(t, dir)
	ctx := context.Background()

	c, err := rs.GetCase(ctx, "lighthouse")
	require.NoError(t, err)
	assert.Equal(t, 12, c.InitialBudget())

	c, err = rs.GetCase(ctx, "orchard")
	require.NoError(t, err)
	assert.Equal(t, "Blight in the Orchard", c.Title)

	tests := []struct {
		name   string
		caseID string
		target error
	}{
		{"missing", "nope", storage.ErrNotFound},
		{"empty", "", storage.ErrNotFound},
		{"traversal", "../secrets", storage.ErrNotFound},
		{"invalid content", "two_correct", casefile.ErrInvalidCase},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rs.GetCase(ctx, tt.caseID)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestRedisStorage_CaseIDMustMatchFilename(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join("..", "..", "pkg", "casefile", "testdata", "lighthouse.json"))
	require.NoError(t, err)
	writeCase(t, dir, "gull_point.json", string(data))
	copyFixture(t, dir, "orchard.yaml")

	rs, _ := setupTestStorage(t, dir)
	ctx := context.Background()

	cases, err := rs.ListCases(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"orchard": "Blight in the Orchard"}, cases)

	// every listed case resolves under the id it was listed with
	for id := range cases {
		c, err := rs.GetCase(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, c.ID)
	}

	_, err = rs.GetCase(ctx, "gull_point")
	assert.ErrorIs(t, err, casefile.ErrInvalidCase)
	_, err = rs.GetCase(ctx, "lighthouse")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
