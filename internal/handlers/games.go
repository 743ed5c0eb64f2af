package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jwebster45206/detective-engine/internal/logger"
	"github.com/jwebster45206/detective-engine/internal/metrics"
	"github.com/jwebster45206/detective-engine/pkg/casefile"
	"github.com/jwebster45206/detective-engine/pkg/scoring"
	"github.com/jwebster45206/detective-engine/pkg/session"
	"github.com/jwebster45206/detective-engine/pkg/state"
	"github.com/jwebster45206/detective-engine/pkg/storage"
)

const maxActionBody = 1 << 20

// Publisher receives game events after a successful dispatch.
type Publisher interface {
	PublishHypothesisUnlocked(ctx context.Context, gameID uuid.UUID, event state.UnlockEvent, label string) error
	PublishContradictionDiscovered(ctx context.Context, gameID uuid.UUID, contradictionID, description string) error
	PublishGameStateUpdated(ctx context.Context, gameID uuid.UUID, action state.ActionType, s *state.PlayerState) error
}

// CreateGameRequest defines the request body for starting a game
type CreateGameRequest struct {
	CaseID string `json:"case_id"`
}

// DispatchResponse is the state after an action plus what the action caused.
type DispatchResponse struct {
	State      *state.PlayerState  `json:"state"`
	Changed    bool                `json:"changed"`
	Unlocked   []state.UnlockEvent `json:"unlocked"`
	Discovered []string            `json:"discovered"`
}

type ScoresResponse struct {
	Scores          scoring.PlayerScores              `json:"scores"`
	Interpretations map[string]scoring.Interpretation `json:"interpretations"`
}

type GameHandler struct {
	storage   storage.Storage
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewGameHandler builds the game endpoints. publisher may be nil.
func NewGameHandler(storage storage.Storage, publisher Publisher, m *metrics.Metrics, logger *slog.Logger) *GameHandler {
	if m == nil {
		m = metrics.New()
	}
	return &GameHandler{
		storage:   storage,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Create handles POST /v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid create game request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CaseID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "case_id is required")
		return
	}

	c, err := h.storage.GetCase(r.Context(), req.CaseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Case not found")
			return
		}
		h.logger.Error("Failed to load case", "error", err, "case_id", req.CaseID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load case")
		return
	}

	sess := session.New(c)
	game := state.NewGame(c.ID, sess.State(), h.now())
	if err := h.storage.SaveGame(r.Context(), game); err != nil {
		h.logger.Error("Failed to save game", "error", err, "case_id", c.ID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save game")
		return
	}

	h.metrics.GameCreated(c.ID)
	h.logger.Info("Game created", "game_id", game.ID, "case_id", c.ID)
	writeJSON(w, h.logger, http.StatusCreated, game)
}

// Get handles GET /v1/games/{gameID}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	game, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, game)
}

// Delete handles DELETE /v1/games/{gameID}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	game, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	if err := h.storage.DeleteGame(r.Context(), game.ID); err != nil {
		h.logger.Error("Failed to delete game", "error", err, "game_id", game.ID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	h.logger.Info("Game deleted", "game_id", game.ID)
	w.WriteHeader(http.StatusNoContent)
}

// Dispatch handles POST /v1/games/{gameID}/actions
func (h *GameHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	game, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	log := logger.WithGameID(h.logger, game.ID.String())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxActionBody))
	if err != nil {
		writeError(w, log, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	action, err := state.DecodeAction(body)
	if err != nil {
		log.Warn("Rejected action", "error", err)
		if errors.Is(err, state.ErrUnknownAction) {
			writeError(w, log, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, log, http.StatusBadRequest, "Invalid action")
		return
	}

	c, ok := h.loadCase(w, r, game)
	if !ok {
		return
	}

	sess := session.New(c, session.WithState(game.State), session.WithLogger(log))
	change := sess.Dispatch(action)
	h.metrics.ActionDispatched(action.Type(), change.Changed)

	ctx := r.Context()
	if change.Changed {
		game.State = change.State
		if err := h.storage.SaveGame(ctx, game); err != nil {
			log.Error("Failed to save game", "error", err)
			writeError(w, log, http.StatusInternalServerError, "Failed to save game")
			return
		}
		h.metrics.HypothesesUnlocked(c.ID, len(change.Unlocked))
		h.metrics.ContradictionsDiscovered(c.ID, len(change.Discovered))
		if _, ok := action.(state.CalculateScores); ok && change.State.Scores != nil {
			h.metrics.ScoresCalculated(*change.State.Scores)
		}
	}

	if env, err := state.EncodeAction(action); err == nil {
		if err := h.storage.AppendAction(ctx, game.ID, env); err != nil {
			log.Warn("Failed to record action", "error", err, "action", action.Type())
		}
	}

	if change.Changed {
		h.publish(ctx, log, game.ID, c, action.Type(), change)
	}

	writeJSON(w, log, http.StatusOK, DispatchResponse{
		State:      change.State,
		Changed:    change.Changed,
		Unlocked:   orEmpty(change.Unlocked),
		Discovered: orEmpty(change.Discovered),
	})
}

// Notifications handles GET /v1/games/{gameID}/notifications
func (h *GameHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	game, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	c, ok := h.loadCase(w, r, game)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, state.PendingNotifications(game.State, c.HypothesisLabels()))
}

// Scores handles GET /v1/games/{gameID}/scores. Scores are computed from
// the current state and not saved.
func (h *GameHandler) Scores(w http.ResponseWriter, r *http.Request) {
	game, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	c, ok := h.loadCase(w, r, game)
	if !ok {
		return
	}

	scores := session.New(c, session.WithState(game.State)).Scores()
	interpretations := make(map[string]scoring.Interpretation)
	for _, n := range scores.Named() {
		interpretations[n.Name] = scoring.Interpret(n.Score)
	}
	writeJSON(w, h.logger, http.StatusOK, ScoresResponse{Scores: scores, Interpretations: interpretations})
}

// History handles GET /v1/games/{gameID}/actions
func (h *GameHandler) History(w http.ResponseWriter, r *http.Request) {
	game, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	actions, err := h.storage.ListActions(r.Context(), game.ID)
	if err != nil {
		h.logger.Error("Failed to list actions", "error", err, "game_id", game.ID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list actions")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, actions)
}

func (h *GameHandler) publish(ctx context.Context, log *slog.Logger, gameID uuid.UUID, c *casefile.Case, action state.ActionType, change session.Change) {
	if h.publisher == nil {
		return
	}
	labels := c.HypothesisLabels()
	for _, e := range change.Unlocked {
		if err := h.publisher.PublishHypothesisUnlocked(ctx, gameID, e, labels[e.HypothesisID]); err != nil {
			log.Warn("Failed to publish unlock", "error", err, "hypothesis_id", e.HypothesisID)
		}
	}
	for _, id := range change.Discovered {
		ct, _ := c.Contradiction(id)
		if err := h.publisher.PublishContradictionDiscovered(ctx, gameID, id, ct.Description); err != nil {
			log.Warn("Failed to publish contradiction", "error", err, "contradiction_id", id)
		}
	}
	if err := h.publisher.PublishGameStateUpdated(ctx, gameID, action, change.State); err != nil {
		log.Warn("Failed to publish state update", "error", err)
	}
}

// loadGame writes the error response itself and reports false on failure.
func (h *GameHandler) loadGame(w http.ResponseWriter, r *http.Request) (*state.Game, bool) {
	idStr := chi.URLParam(r, "gameID")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid game ID", "id", idStr, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
		return nil, false
	}

	game, err := h.storage.LoadGame(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load game", "error", err, "game_id", id)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game")
		return nil, false
	}
	if game == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return nil, false
	}
	// records saved without a state resume from the case's opening budget
	if game.State == nil {
		c, ok := h.loadCase(w, r, game)
		if !ok {
			return nil, false
		}
		game.State = state.NewReducer(c).InitialState()
	}
	return game, true
}

func (h *GameHandler) loadCase(w http.ResponseWriter, r *http.Request, game *state.Game) (*casefile.Case, bool) {
	c, err := h.storage.GetCase(r.Context(), game.CaseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Case for this game no longer exists")
			return nil, false
		}
		h.logger.Error("Failed to load case", "error", err, "case_id", game.CaseID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load case")
		return nil, false
	}
	return c, true
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
