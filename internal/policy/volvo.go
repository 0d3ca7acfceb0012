package policy

import (
	"github.com/vytor/upsimu/internal/dialogue"
	"github.com/vytor/upsimu/internal/matcher"
	"github.com/vytor/upsimu/internal/models"
)

// Coverage bits of the volvo conversation.
const (
	VolvoYear models.CoverageState = 1 << iota
	VolvoModel
	VolvoInspiration
)

const (
	volvoYearKeyword        = "1927"
	volvoModelKeyword       = "ÖV4"
	volvoInspirationKeyword = "Jakob"

	volvoConfirm = "Are you sure you remember that correctly? Have one more go"
)

var volvoFollowUps = map[models.CoverageState]string{
	0:                            "That doesn't ring a bell. Which car did we build first, when, and who was it nicknamed after?",
	VolvoModel | VolvoInspiration: "Good! But what year did we start production?",
	VolvoYear:                    "Good, you know the year! But what was the model name and who was it nicknamed after?",
	VolvoYear | VolvoInspiration: "Great! You know the year and inspiration. What was the model name?",
	VolvoYear | VolvoModel:       "Excellent! You know the year and model. Who was it nicknamed after?",
	VolvoInspiration:             "Good, you know about Jakob! What year did we start production and what was the model name?",
	VolvoModel:                   "Good, you know the model! What year did we start production and who was it nicknamed after?",
}

// Volvo scripts the historical-trivia conversation about the first Volvo car.
type Volvo struct {
	base
}

func NewVolvo(m *matcher.Matcher) *Volvo {
	return &Volvo{base: base{m: m}}
}

func (*Volvo) Name() string { return NameVolvo }

// State derives the coverage bitmask; a close year counts as an answered year.
func (*Volvo) State(cov matcher.Coverage) models.CoverageState {
	var s models.CoverageState
	if cov.Has(volvoYearKeyword) || cov.IsClose(volvoYearKeyword) {
		s = s.With(VolvoYear)
	}
	if cov.Has(volvoModelKeyword) {
		s = s.With(VolvoModel)
	}
	if cov.Has(volvoInspirationKeyword) {
		s = s.With(VolvoInspiration)
	}
	return s
}

func (v *Volvo) FollowUp(c dialogue.Context) (models.CoverageState, string) {
	s := v.State(c.Coverage)
	return s, volvoFollowUps[s]
}

func (*Volvo) ConfirmLines(models.Scenario) []string {
	return []string{
		volvoConfirm,
		"Nice try :) " + volvoConfirm,
		"Almost there :) " + volvoConfirm,
	}
}

func (*Volvo) Hints(_ models.Scenario, text string) []string {
	if matcher.ContainsWord(text, "ÖV3") || matcher.ContainsWord(text, "ÖV5") {
		return []string{"Check the model name of the first car."}
	}
	return nil
}

func (*Volvo) OffTopicHint(models.Scenario) string {
	return "Stick to the history of the first Volvo car."
}
