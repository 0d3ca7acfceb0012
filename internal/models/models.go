package models

import "strings"

type Character struct {
	Name   string `json:"name" yaml:"name"`
	Role   string `json:"role" yaml:"role"`
	Avatar string `json:"avatar" yaml:"avatar"`
}

// Keywords is the rubric of a scenario. Aliases maps a keyword to extra
// spellings that count as the keyword itself.
type Keywords struct {
	Required  []string            `json:"required" yaml:"required"`
	Bonus     []string            `json:"bonus" yaml:"bonus"`
	Forbidden []string            `json:"forbidden" yaml:"forbidden"`
	Aliases   map[string][]string `json:"aliases,omitempty" yaml:"aliases"`
}

type Feedback struct {
	Perfect   string `json:"perfect" yaml:"perfect"`
	Good      string `json:"good" yaml:"good"`
	NeedsWork string `json:"needs_work" yaml:"needs_work"`
	Poor      string `json:"poor" yaml:"poor"`
	OffTopic  string `json:"off_topic,omitempty" yaml:"off_topic"`
}

type Scenario struct {
	ID          string            `json:"id" yaml:"id"`
	Title       string            `json:"title" yaml:"title"`
	Description string            `json:"description" yaml:"description"`
	Character   Character         `json:"character" yaml:"character"`
	Questions   []string          `json:"questions" yaml:"questions"`
	Keywords    Keywords          `json:"keywords" yaml:"keywords"`
	Feedback    Feedback          `json:"feedback" yaml:"feedback"`
	Concepts    map[string]string `json:"concepts,omitempty" yaml:"concepts"`
	Policy      string            `json:"policy,omitempty" yaml:"policy"`
}

// OpeningQuestion returns the first prompt of the scenario, or "" when there is none.
func (s Scenario) OpeningQuestion() string {
	if len(s.Questions) == 0 {
		return ""
	}
	return s.Questions[0]
}

// PolicyName is the registry key of the scenario's dialogue/rubric policy.
func (s Scenario) PolicyName() string {
	if s.Policy != "" {
		return s.Policy
	}
	return s.ID
}

// Concept returns the human-readable name of a keyword, falling back to the keyword.
func (s Scenario) Concept(keyword string) string {
	for k, v := range s.Concepts {
		if strings.EqualFold(k, keyword) {
			return v
		}
	}
	return keyword
}

// ScenarioSummary is the listing view of a scenario; it leaves the rubric out.
type ScenarioSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Character   Character `json:"character"`
}

func (s Scenario) Summary() ScenarioSummary {
	return ScenarioSummary{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Character:   s.Character,
	}
}
