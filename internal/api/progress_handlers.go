package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vytor/upsimu/internal/errors"
	"github.com/vytor/upsimu/internal/models"
	"github.com/vytor/upsimu/internal/services"
)

type progressResponse struct {
	*services.ProgressView
	BestScores []models.BestScore `json:"bestScores"`
}

type historyResponse struct {
	Records []models.AttemptRecord `json:"records"`
	Total   int                    `json:"total"`
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	view, err := s.ProgressService.GetProgress(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	scores, err := s.ProgressService.BestScores(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if scores == nil {
		scores = []models.BestScore{}
	}
	writeJSON(w, r, http.StatusOK, progressResponse{ProgressView: view, BestScores: scores})
}

func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	if err := s.ProgressService.ResetProgress(r.Context(), profile.ID); err != nil {
		handleError(w, r, err)
		return
	}
	view, err := s.ProgressService.GetProgress(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	filter, err := parseHistoryFilter(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	filter.ProfileID = profile.ID

	records, total, err := s.ProgressService.History(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if records == nil {
		records = []models.AttemptRecord{}
	}
	writeJSON(w, r, http.StatusOK, historyResponse{Records: records, Total: total})
}

func parseHistoryFilter(r *http.Request) (models.HistoryFilter, error) {
	q := r.URL.Query()
	filter := models.HistoryFilter{
		ScenarioID: q.Get("scenario"),
		OrderDir:   strings.ToUpper(q.Get("order")),
	}

	if v := q.Get("min_stars"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, errors.NewValidationError("min_stars", "must be a number")
		}
		filter.MinStars = &f
	}
	if v := q.Get("off_topic"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.NewValidationError("off_topic", "must be true or false")
		}
		filter.OffTopic = &b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, errors.NewValidationError("limit", "must be an integer")
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, errors.NewValidationError("offset", "must be an integer")
		}
		filter.Offset = n
	}
	return filter, nil
}
