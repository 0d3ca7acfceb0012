// Package dialogue drives the multi-turn exchange of a single attempt.
//
// Each user utterance is appended to the transcript and the combined user text
// is checked against the scenario's required keywords. The engine then either
// completes the attempt, asks a follow-up chosen by the scenario's Script, or,
// when the same follow-up would be asked twice, asks the user to confirm and
// ends the attempt on the next turn.
package dialogue

import (
	"fmt"
	"strings"
	"time"

	"github.com/vytor/upsimu/internal/errors"
	"github.com/vytor/upsimu/internal/matcher"
	"github.com/vytor/upsimu/internal/models"
)

const (
	DefaultMaxTurns      = 6
	DefaultFollowUpDelay = 1500 * time.Millisecond
	DefaultOffTopicDelay = 2500 * time.Millisecond

	defaultConfirmLine = "Are you sure? Have one more go"
)

// Context is what a Script sees when deciding the next move.
type Context struct {
	Scenario  models.Scenario
	Attempt   *models.Attempt
	Coverage  matcher.Coverage
	Combined  string
	Utterance string
}

// Script holds the scenario-specific parts of a conversation.
type Script interface {
	// Complete reports whether the answer is good enough to stop even though
	// some required keywords are still missing.
	Complete(c Context) bool
	// OffTopic reports whether the latest utterance strayed from the scenario.
	OffTopic(c Context) bool
	// ConfusedLine is what the character says before leaving an off-topic conversation.
	ConfusedLine(sc models.Scenario) string
	// FollowUp returns the coverage state and the prompt for it. An empty prompt
	// means there is nothing left worth asking.
	FollowUp(c Context) (models.CoverageState, string)
	// ConfirmLines are the equivalent "are you sure" prompts used before a forced end.
	ConfirmLines(sc models.Scenario) []string
}

// Scripts resolves the Script for a scenario.
type Scripts interface {
	ScriptFor(sc models.Scenario) Script
}

type ActionKind int

const (
	ActionFollowUp ActionKind = iota
	ActionConfirm
	ActionComplete
)

func (k ActionKind) String() string {
	switch k {
	case ActionFollowUp:
		return "follow_up"
	case ActionConfirm:
		return "confirm"
	case ActionComplete:
		return "complete"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Action is the engine's answer to one utterance. Text is the character line to
// show, if any. FinalTranscript is set when Kind is ActionComplete and is the
// only input the evaluator should see. RevealAfter is a presentation delay.
type Action struct {
	Kind            ActionKind    `json:"kind"`
	Text            string        `json:"text,omitempty"`
	FinalTranscript string        `json:"final_transcript,omitempty"`
	OffTopic        bool          `json:"off_topic,omitempty"`
	RevealAfter     time.Duration `json:"-"`
}

func (a Action) Completed() bool { return a.Kind == ActionComplete }

type Engine struct {
	matcher       *matcher.Matcher
	scripts       Scripts
	variator      Variator
	maxTurns      int
	followUpDelay time.Duration
	offTopicDelay time.Duration
	now           func() time.Time
}

type Option func(*Engine)

func WithVariator(v Variator) Option {
	return func(e *Engine) {
		if v != nil {
			e.variator = v
		}
	}
}

// WithMaxTurns caps the number of user turns; the attempt completes when the cap
// is reached. Zero or less disables the cap.
func WithMaxTurns(n int) Option {
	return func(e *Engine) {
		e.maxTurns = n
	}
}

func WithDelays(followUp, offTopic time.Duration) Option {
	return func(e *Engine) {
		e.followUpDelay = followUp
		e.offTopicDelay = offTopic
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(m *matcher.Matcher, scripts Scripts, opts ...Option) *Engine {
	e := &Engine{
		matcher:       m,
		scripts:       scripts,
		variator:      FirstVariator{},
		maxTurns:      DefaultMaxTurns,
		followUpDelay: DefaultFollowUpDelay,
		offTopicDelay: DefaultOffTopicDelay,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit feeds one user utterance into the attempt and mutates it in place.
// Every state except Completed accepts input; AskingFollowUp and
// ConfirmingBeforeEnd record which prompt the user is answering.
func (e *Engine) Submit(a *models.Attempt, sc models.Scenario, utterance string) (Action, error) {
	if a == nil {
		return Action{}, errors.NewBadRequestError("attempt is required")
	}
	if a.Completed() {
		return Action{}, errors.NewConflictError("attempt "+a.ID, "already completed")
	}
	if a.ScenarioID != sc.ID {
		return Action{}, errors.NewBadRequestError(fmt.Sprintf("attempt %s belongs to scenario %s, not %s", a.ID, a.ScenarioID, sc.ID))
	}
	// The off-topic marker is reserved for transcripts the engine ends itself.
	text := strings.TrimSpace(strings.ReplaceAll(utterance, models.OffTopicMarker, ""))
	if text == "" {
		return Action{}, errors.NewValidationError("text", "cannot be empty")
	}
	if a.FollowUps == nil {
		a.FollowUps = make(map[models.CoverageState]int)
	}

	previous := a.CombinedUserText()
	a.AddTurn(models.SpeakerUser, text)
	a.State = models.StateEvaluating
	a.UpdatedAt = e.now()

	combined := a.CombinedUserText()
	m := e.matcher.Extend(sc.Keywords.Aliases)
	cov := m.Cover(combined, sc.Keywords.Required)
	script := e.scripts.ScriptFor(sc)
	c := Context{Scenario: sc, Attempt: a, Coverage: cov, Combined: combined, Utterance: text}

	// The reply to a confirmation prompt only lets the user re-decide; it is not scored.
	if a.ForceEnd {
		return e.complete(a, previous), nil
	}
	if len(cov.Missing) == 0 || script.Complete(c) {
		return e.complete(a, combined), nil
	}
	if script.OffTopic(c) {
		line := script.ConfusedLine(sc)
		a.AddTurn(models.SpeakerCharacter, line)
		a.OffTopic = true
		a.State = models.StateCompleted
		return Action{
			Kind:            ActionComplete,
			Text:            line,
			FinalTranscript: combined + " " + models.OffTopicMarker,
			OffTopic:        true,
			RevealAfter:     e.offTopicDelay,
		}, nil
	}
	if e.maxTurns > 0 && len(a.UserTurns()) >= e.maxTurns {
		return e.complete(a, combined), nil
	}

	state, prompt := script.FollowUp(c)
	if prompt == "" {
		return e.complete(a, combined), nil
	}

	if a.FollowUps[state] >= 1 {
		line := e.variator.Pick(script.ConfirmLines(sc))
		if line == "" {
			line = defaultConfirmLine
		}
		a.ForceEnd = true
		a.AddTurn(models.SpeakerCharacter, line)
		a.State = models.StateConfirmingBeforeEnd
		return Action{Kind: ActionConfirm, Text: line, RevealAfter: e.followUpDelay}, nil
	}

	a.FollowUps[state]++
	a.AddTurn(models.SpeakerCharacter, prompt)
	a.State = models.StateAskingFollowUp
	return Action{Kind: ActionFollowUp, Text: prompt, RevealAfter: e.followUpDelay}, nil
}

func (e *Engine) complete(a *models.Attempt, transcript string) Action {
	a.State = models.StateCompleted
	return Action{Kind: ActionComplete, FinalTranscript: transcript}
}
