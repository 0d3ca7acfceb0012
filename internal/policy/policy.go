// Package policy holds the scenario-specific conversation scripts and scoring
// hooks, selected by the scenario's policy name.
package policy

import (
	"strings"
	"sync"

	"github.com/vytor/upsimu/internal/dialogue"
	"github.com/vytor/upsimu/internal/evaluator"
	"github.com/vytor/upsimu/internal/matcher"
	"github.com/vytor/upsimu/internal/models"
)

const (
	NameGeneric   = "generic"
	NameVolvo     = "volvo"
	NameFinancial = "financial"

	DefaultConfusedLine = "Am I talking to the right person? I'm lost. Will call back later."
)

// Policy is everything scenario-specific about a conversation.
type Policy interface {
	dialogue.Script
	evaluator.Rubric
	Name() string
}

// Registry maps policy names to policies. Unknown names resolve to the generic policy.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]Policy
	fallback Policy
}

// NewRegistry returns a registry with the built-in policies.
func NewRegistry(m *matcher.Matcher) *Registry {
	r := &Registry{
		policies: make(map[string]Policy),
		fallback: NewGeneric(m),
	}
	r.Register(r.fallback)
	r.Register(NewVolvo(m))
	r.Register(NewFinancial(m))
	return r
}

func (r *Registry) Register(p Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[p.Name()] = p
}

func (r *Registry) Lookup(name string) (Policy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[name]
	return p, ok
}

func (r *Registry) For(sc models.Scenario) Policy {
	if p, ok := r.Lookup(sc.PolicyName()); ok {
		return p
	}
	return r.fallback
}

func (r *Registry) ScriptFor(sc models.Scenario) dialogue.Script { return r.For(sc) }

func (r *Registry) RubricFor(sc models.Scenario) evaluator.Rubric { return r.For(sc) }

// base provides the no-op parts shared by the policies.
type base struct {
	m *matcher.Matcher
}

func (base) Complete(dialogue.Context) bool { return false }

func (base) OffTopic(dialogue.Context) bool { return false }

func (base) ConfusedLine(sc models.Scenario) string {
	if sc.Feedback.OffTopic != "" {
		return sc.Feedback.OffTopic
	}
	return DefaultConfusedLine
}

func (base) Excused(models.Scenario, string, []string) []string { return nil }

func (base) AcceptableRefusal(models.Scenario, string) bool { return false }

func (base) FallbackAccept(models.Scenario, string) bool { return false }

func (base) Hints(models.Scenario, string) []string { return nil }

func (base) OffTopicHint(models.Scenario) string {
	return "Stay on topic and answer the question you were asked."
}

// anyWord reports whether text contains one of words as a whole word.
func anyWord(text string, words []string) bool {
	for _, w := range words {
		if matcher.ContainsWord(text, w) {
			return true
		}
	}
	return false
}

// anyStem reports whether text contains one of stems anywhere.
func anyStem(text string, stems []string) bool {
	t := matcher.Normalize(text)
	for _, s := range stems {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}
