package models

type Level string

const (
	LevelBeginner   Level = "Beginner"
	LevelCompetent  Level = "Competent"
	LevelProficient Level = "Proficient"
	LevelExpert     Level = "Expert"
)

// MaxStars is the best score a single attempt can earn.
const MaxStars = 3.0

// ScenarioProgress uses camelCase keys so stored records stay readable by older clients.
type ScenarioProgress struct {
	ScenarioID string  `json:"scenarioId,omitempty"`
	BestScore  float64 `json:"bestScore"`
	Attempts   int     `json:"attempts"`
	Completed  bool    `json:"completed"`
}

type GameState struct {
	CurrentLevel       Level                       `json:"currentLevel"`
	TotalXP            int                         `json:"totalXP"`
	ScenarioProgress   map[string]ScenarioProgress `json:"scenarioProgress"`
	CompletedScenarios []string                    `json:"completedScenarios"`
}
