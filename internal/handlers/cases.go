package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jwebster45206/detective-engine/pkg/storage"
)

type CaseHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewCaseHandler(storage storage.Storage, logger *slog.Logger) *CaseHandler {
	return &CaseHandler{
		storage: storage,
		logger:  logger,
	}
}

// List handles GET /v1/cases
func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	cases, err := h.storage.ListCases(r.Context())
	if err != nil {
		h.logger.Error("Failed to list cases", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list cases")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, cases)
}

// Get handles GET /v1/cases/{caseID}
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	c, err := h.storage.GetCase(r.Context(), caseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Case not found")
			return
		}
		h.logger.Error("Failed to get case", "error", err, "case_id", caseID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve case")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, c)
}
