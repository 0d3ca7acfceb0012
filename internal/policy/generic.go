package policy

import (
	"github.com/vytor/upsimu/internal/dialogue"
	"github.com/vytor/upsimu/internal/matcher"
	"github.com/vytor/upsimu/internal/models"
)

const genericConfirm = "Are you sure that's your final answer? Have one more go"

// Generic drives any scenario without a dedicated policy: it walks through the
// scenario's own questions, then asks about the first missing concept.
type Generic struct {
	base
}

func NewGeneric(m *matcher.Matcher) *Generic {
	return &Generic{base: base{m: m}}
}

func (*Generic) Name() string { return NameGeneric }

// State sets one bit per covered required keyword, by position.
func (*Generic) State(sc models.Scenario, cov matcher.Coverage) models.CoverageState {
	var s models.CoverageState
	for i, k := range sc.Keywords.Required {
		if i >= 32 {
			break
		}
		if cov.Has(k) || cov.IsClose(k) {
			s = s.With(1 << uint(i))
		}
	}
	return s
}

func (g *Generic) FollowUp(c dialogue.Context) (models.CoverageState, string) {
	s := g.State(c.Scenario, c.Coverage)
	asked := 0
	if c.Attempt != nil {
		for _, t := range c.Attempt.Transcript {
			if t.Speaker == models.SpeakerCharacter {
				asked++
			}
		}
	}
	if next := asked; next >= 1 && next < len(c.Scenario.Questions) {
		return s, c.Scenario.Questions[next]
	}
	if len(c.Coverage.Missing) == 0 {
		return s, ""
	}
	return s, "Could you tell me more about " + c.Scenario.Concept(c.Coverage.Missing[0]) + "?"
}

func (*Generic) ConfirmLines(models.Scenario) []string {
	return []string{genericConfirm}
}
