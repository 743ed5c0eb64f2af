package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/detective-engine/pkg/casefile"
	"github.com/jwebster45206/detective-engine/pkg/state"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	games     map[uuid.UUID]state.Game
	actions   map[uuid.UUID][]state.Envelope
	cases     map[string]*casefile.Case
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		games:   make(map[uuid.UUID]state.Game),
		actions: make(map[uuid.UUID][]state.Envelope),
		cases:   make(map[string]*casefile.Case),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError makes every SaveGame call fail with err
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

// SaveGame stores a copy of the game record
func (m *MockStorage) SaveGame(ctx context.Context, game *state.Game) error {
	if game == nil {
		return errors.New("game cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.games[game.ID] = *game
	return nil
}

// LoadGame returns nil, nil when the game does not exist
func (m *MockStorage) LoadGame(ctx context.Context, id uuid.UUID) (*state.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	game, exists := m.games[id]
	if !exists {
		return nil, nil
	}
	return &game, nil
}

func (m *MockStorage) DeleteGame(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	delete(m.actions, id)
	return nil
}

func (m *MockStorage) AppendAction(ctx context.Context, id uuid.UUID, env state.Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions[id] = append(m.actions[id], env)
	return nil
}

func (m *MockStorage) ListActions(ctx context.Context, id uuid.UUID) ([]state.Envelope, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Clone(m.actions[id])
	if out == nil {
		out = []state.Envelope{}
	}
	return out, nil
}

// ListCases maps case IDs to titles
func (m *MockStorage) ListCases(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]string)
	for id, c := range m.cases {
		result[id] = c.Title
	}
	return result, nil
}

func (m *MockStorage) GetCase(ctx context.Context, caseID string) (*casefile.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, exists := m.cases[caseID]
	if !exists {
		return nil, fmt.Errorf("case %q: %w", caseID, ErrNotFound)
	}
	return c, nil
}

// AddCase adds a case to the mock storage (for testing)
func (m *MockStorage) AddCase(c *casefile.Case) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cases[c.ID] = c
}
