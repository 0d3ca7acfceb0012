package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/upsimu/internal/errors"
	"github.com/vytor/upsimu/internal/logger"
	"github.com/vytor/upsimu/internal/services"
)

type startAttemptRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type submitTurnRequest struct {
	Text string `json:"text"`
}

// turnResponse adds the presentation delay the client should wait before
// showing the character's line.
type turnResponse struct {
	*services.TurnResult
	RevealAfterMS int64 `json:"reveal_after_ms"`
}

func newTurnResponse(res *services.TurnResult) turnResponse {
	return turnResponse{TurnResult: res, RevealAfterMS: res.Action.RevealAfter.Milliseconds()}
}

func (s *Server) handleStartAttempt(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req startAttemptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.ScenarioID == "" {
		handleError(w, r, errors.NewValidationError("scenario_id", "cannot be empty"))
		return
	}

	attempt, err := s.ConversationService.Start(r.Context(), profile.ID, req.ScenarioID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, attempt)
}

func (s *Server) handleGetAttempt(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	attempt, err := s.ConversationService.Get(r.Context(), profile.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, attempt)
}

func (s *Server) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	attemptID := chi.URLParam(r, "id")

	var req submitTurnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.ConversationService.Submit(r.Context(), profile.ID, attemptID, req.Text)
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Debug("turn accepted: attempt=%s kind=%s", attemptID, res.Action.Kind)
	writeJSON(w, r, http.StatusOK, newTurnResponse(res))
}

func (s *Server) handleAbandonAttempt(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	if err := s.ConversationService.Abandon(r.Context(), profile.ID, chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
