package services

import (
	"context"

	"github.com/vytor/upsimu/internal/logger"
	"github.com/vytor/upsimu/internal/models"
)

// ScenarioSource is the read side of the scenario catalog.
type ScenarioSource interface {
	Get(id string) (models.Scenario, error)
	List() []models.Scenario
}

// ScenarioService exposes the scenario catalog
type ScenarioService interface {
	ListScenarios(ctx context.Context) []models.ScenarioSummary
	GetScenario(ctx context.Context, id string) (models.Scenario, error)
}

type scenarioService struct {
	catalog ScenarioSource
}

func NewScenarioService(catalog ScenarioSource) ScenarioService {
	return &scenarioService{catalog: catalog}
}

func (s *scenarioService) ListScenarios(ctx context.Context) []models.ScenarioSummary {
	scenarios := s.catalog.List()
	out := make([]models.ScenarioSummary, 0, len(scenarios))
	for _, sc := range scenarios {
		out = append(out, sc.Summary())
	}
	logger.FromContext(ctx).Debug("listed %d scenarios", len(out))
	return out
}

func (s *scenarioService) GetScenario(ctx context.Context, id string) (models.Scenario, error) {
	logger.FromContext(ctx).Debug("getting scenario: id=%s", id)
	return s.catalog.Get(id)
}
