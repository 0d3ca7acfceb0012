package models

import (
	"fmt"
	"strings"
	"time"
)

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerCharacter Speaker = "character"
)

type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// DialogueState is the position of an attempt in the conversation state machine.
type DialogueState int

const (
	StateAwaitingInput DialogueState = iota
	StateEvaluating
	StateAskingFollowUp
	StateConfirmingBeforeEnd
	StateCompleted
)

var dialogueStateNames = map[DialogueState]string{
	StateAwaitingInput:       "awaiting_input",
	StateEvaluating:          "evaluating",
	StateAskingFollowUp:      "asking_follow_up",
	StateConfirmingBeforeEnd: "confirming_before_end",
	StateCompleted:           "completed",
}

func (s DialogueState) String() string {
	if name, ok := dialogueStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("DialogueState(%d)", int(s))
}

func (s DialogueState) MarshalText() ([]byte, error) {
	name, ok := dialogueStateNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown dialogue state %d", int(s))
	}
	return []byte(name), nil
}

func (s *DialogueState) UnmarshalText(b []byte) error {
	for state, name := range dialogueStateNames {
		if name == string(b) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown dialogue state %q", string(b))
}

// CoverageState is a bitmask of the keyword categories a conversation has satisfied.
// Bit meanings are owned by the scenario's policy.
type CoverageState uint32

func (c CoverageState) Has(bit CoverageState) bool { return c&bit == bit }

func (c CoverageState) With(bit CoverageState) CoverageState { return c | bit }

// Attempt is one play-through of a scenario.
type Attempt struct {
	ID         string                `json:"id"`
	ScenarioID string                `json:"scenario_id"`
	ProfileID  int64                 `json:"profile_id"`
	Transcript []Turn                `json:"transcript"`
	ForceEnd   bool                  `json:"force_end"`
	FollowUps  map[CoverageState]int `json:"follow_ups"`
	State      DialogueState         `json:"state"`
	OffTopic   bool                  `json:"off_topic"`
	StartedAt  time.Time             `json:"started_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// NewAttempt starts an attempt with the character's opening question already asked.
func NewAttempt(id string, profileID int64, scenario Scenario, now time.Time) *Attempt {
	a := &Attempt{
		ID:         id,
		ScenarioID: scenario.ID,
		ProfileID:  profileID,
		FollowUps:  make(map[CoverageState]int),
		State:      StateAwaitingInput,
		StartedAt:  now,
		UpdatedAt:  now,
	}
	if q := scenario.OpeningQuestion(); q != "" {
		a.Transcript = append(a.Transcript, Turn{Speaker: SpeakerCharacter, Text: q})
	}
	return a
}

func (a *Attempt) Completed() bool { return a.State == StateCompleted }

func (a *Attempt) AddTurn(speaker Speaker, text string) {
	a.Transcript = append(a.Transcript, Turn{Speaker: speaker, Text: text})
}

// UserTurns returns the user's utterances in order.
func (a *Attempt) UserTurns() []string {
	var out []string
	for _, t := range a.Transcript {
		if t.Speaker == SpeakerUser {
			out = append(out, t.Text)
		}
	}
	return out
}

// CombinedUserText joins every user utterance with a single space.
func (a *Attempt) CombinedUserText() string {
	return strings.Join(a.UserTurns(), " ")
}

// LastCharacterLine returns the most recent thing the character said.
func (a *Attempt) LastCharacterLine() string {
	for i := len(a.Transcript) - 1; i >= 0; i-- {
		if a.Transcript[i].Speaker == SpeakerCharacter {
			return a.Transcript[i].Text
		}
	}
	return ""
}
