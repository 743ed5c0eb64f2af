package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/detective-engine/internal/metrics"
	"github.com/jwebster45206/detective-engine/pkg/casefile"
	"github.com/jwebster45206/detective-engine/pkg/state"
	"github.com/jwebster45206/detective-engine/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func loadFixture(t *testing.T, name string) *casefile.Case {
	t.Helper()
	data, err := os.ReadFile("../../pkg/casefile/testdata/" + name)
	require.NoError(t, err)
	c, err := casefile.Decode(name, data)
	require.NoError(t, err)
	return c
}

type published struct {
	kind string
	id   string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) PublishHypothesisUnlocked(ctx context.Context, gameID uuid.UUID, event state.UnlockEvent, label string) error {
	p.record("unlocked", event.HypothesisID)
	return nil
}

func (p *recordingPublisher) PublishContradictionDiscovered(ctx context.Context, gameID uuid.UUID, contradictionID, description string) error {
	p.record("discovered", contradictionID)
	return nil
}

func (p *recordingPublisher) PublishGameStateUpdated(ctx context.Context, gameID uuid.UUID, action state.ActionType, s *state.PlayerState) error {
	p.record("updated", string(action))
	return nil
}

func (p *recordingPublisher) record(kind, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{kind, id})
}

func (p *recordingPublisher) snapshot() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

type testServer struct {
	handler   http.Handler
	storage   *storage.MockStorage
	publisher *recordingPublisher
	metrics   *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := storage.NewMockStorage()
	store.AddCase(loadFixture(t, "lighthouse.json"))
	store.AddCase(loadFixture(t, "orchard.yaml"))

	pub := &recordingPublisher{}
	m := metrics.New()
	return &testServer{
		handler: NewRouter(RouterConfig{
			Storage:   store,
			Publisher: pub,
			Metrics:   m,
			Logger:    testLogger(),
		}),
		storage:   store,
		publisher: pub,
		metrics:   m,
	}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}
