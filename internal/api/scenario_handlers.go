package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/upsimu/internal/models"
)

// scenarioDetail never carries the keyword rubric.
type scenarioDetail struct {
	models.ScenarioSummary
	OpeningQuestion string `json:"opening_question"`
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.ScenarioService.ListScenarios(r.Context()))
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := s.ScenarioService.GetScenario(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, scenarioDetail{
		ScenarioSummary: sc.Summary(),
		OpeningQuestion: sc.OpeningQuestion(),
	})
}
