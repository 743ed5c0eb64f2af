package state

import (
	"time"

	"github.com/google/uuid"
)

// Game is a persisted play session: one player state bound to one case.
type Game struct {
	ID        uuid.UUID    `json:"id"`
	CaseID    string       `json:"case_id"`
	State     *PlayerState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewGame starts a game for a case with the given initial state.
func NewGame(caseID string, initial *PlayerState, now time.Time) *Game {
	return &Game{
		ID:        uuid.New(),
		CaseID:    caseID,
		State:     initial,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
