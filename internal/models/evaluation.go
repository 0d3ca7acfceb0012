package models

import "time"

// OffTopicMarker is appended to a final transcript when the conversation ended off-topic.
const OffTopicMarker = "[OFF_TOPIC]"

type DetailedFeedback struct {
	RequiredFound   []string `json:"required_found"`
	BonusFound      []string `json:"bonus_found"`
	ForbiddenFound  []string `json:"forbidden_found"`
	MissingRequired []string `json:"missing_required"`
	NumericalHints  []string `json:"numerical_hints,omitempty"`
	SpecificHints   []string `json:"specific_hints,omitempty"`
}

type EvaluationResult struct {
	Stars           float64          `json:"stars"`
	Feedback        string           `json:"feedback"`
	SummaryFeedback string           `json:"summary_feedback,omitempty"`
	Detailed        DetailedFeedback `json:"detailed_feedback"`
}

// AttemptRecord is the archived outcome of a completed attempt.
type AttemptRecord struct {
	ID         int64     `json:"id"`
	ProfileID  int64     `json:"profile_id"`
	ScenarioID string    `json:"scenario_id"`
	AttemptID  string    `json:"attempt_id"`
	Stars      float64   `json:"stars"`
	Transcript string    `json:"transcript"`
	Feedback   string    `json:"feedback"`
	OffTopic   bool      `json:"off_topic"`
	Turns      int       `json:"turns"`
	CreatedAt  time.Time `json:"created_at"`
}

type HistoryFilter struct {
	ProfileID  int64
	ScenarioID string
	MinStars   *float64
	OffTopic   *bool
	Limit      int
	Offset     int
	OrderDir   string
}

type BestScore struct {
	ScenarioID string  `json:"scenario_id"`
	BestStars  float64 `json:"best_stars"`
	Attempts   int     `json:"attempts"`
}
