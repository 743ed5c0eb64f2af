package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jwebster45206/detective-engine/pkg/casefile"
	"github.com/jwebster45206/detective-engine/pkg/state"
)

// ErrNotFound is returned when a case does not exist. Missing games load as
// nil, nil instead.
var ErrNotFound = errors.New("not found")

// Storage defines a unified interface for all storage operations
// This interface combines game persistence (Redis) with case loading (filesystem)
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Game operations (Redis-backed)
	SaveGame(ctx context.Context, game *state.Game) error
	LoadGame(ctx context.Context, id uuid.UUID) (*state.Game, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error

	// Action log operations (Redis-backed), in dispatch order
	AppendAction(ctx context.Context, id uuid.UUID, env state.Envelope) error
	ListActions(ctx context.Context, id uuid.UUID) ([]state.Envelope, error)

	// Case operations (filesystem-backed)
	ListCases(ctx context.Context) (map[string]string, error)
	GetCase(ctx context.Context, caseID string) (*casefile.Case, error)
}
