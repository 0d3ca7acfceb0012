package policy

import (
	"strings"
	"unicode/utf8"

	"github.com/vytor/upsimu/internal/dialogue"
	"github.com/vytor/upsimu/internal/matcher"
	"github.com/vytor/upsimu/internal/models"
)

// Coverage bits of the financial compliance conversation.
const (
	FinancialRefusal models.CoverageState = 1 << iota
	FinancialCompliance
	FinancialPolicy
	FinancialSpecifics
)

const (
	// refusalWindow is how far back, in bytes, a negation may sit before a
	// forbidden word and still excuse it.
	refusalWindow = 30

	financialWhyNot    = "How come? Why not? I thought you were supposed to help me make money!"
	financialPolicyWhy = "What about the policies makes this problematic? Can you be more specific?"
	financialSpecifics = "But what specific regulations prevent you from giving me tips? I don't understand."
	financialConfirm   = "Are you sure that's your final answer? Think about compliance requirements."
)

var (
	yesWords         = []string{"yes", "sure", "ok", "okay", "yeah", "yep"}
	noWords          = []string{"no", "nope", "not", "never", "cannot", "can't", "cant", "don't", "won't", "unable", "sorry"}
	refusalWords     = []string{"no", "nope", "won't", "refuse", "decline"}
	negationCues     = []string{"cannot", "can't", "cant", "not", "won't", "no", "never", "unable", "don't", "shouldn't", "mustn't", "refuse"}
	financeStems     = []string{"money", "tip", "invest", "stock", "trad", "complia", "polic", "regulat", "insider", "legal", "ethic", "profit", "market", "financ", "fund"}
	specificStems    = []string{"insider", "legal", "ethic", "trading"}
	complianceStems  = []string{"complia", "polic", "regulat", "legal", "ethic", "rule", "law"}
	fallbackPhrases  = []string{"no", "nope"}
	clauseDelimiters = ".!?;"
)

// Financial scripts the compliance conversation where a client asks for insider tips.
type Financial struct {
	base
}

func NewFinancial(m *matcher.Matcher) *Financial {
	return &Financial{base: base{m: m}}
}

func (*Financial) Name() string { return NameFinancial }

func (f *Financial) refusal(text string) bool {
	return anyWord(text, refusalWords) || f.m.Matches(text, "cannot") || f.m.Matches(text, "not allowed")
}

func specifics(text string) bool {
	return anyStem(text, specificStems) || matcher.ContainsWord(text, "sec")
}

// State derives the coverage bitmask from the combined user text.
func (f *Financial) State(cov matcher.Coverage, combined string) models.CoverageState {
	var s models.CoverageState
	if f.refusal(combined) {
		s = s.With(FinancialRefusal)
	}
	if cov.Has("compliance") || cov.Has("regulations") {
		s = s.With(FinancialCompliance)
	}
	if cov.Has("policy") {
		s = s.With(FinancialPolicy)
	}
	if specifics(combined) {
		s = s.With(FinancialSpecifics)
	}
	return s
}

// Complete accepts a refusal that names a rule and gives a concrete reason.
func (f *Financial) Complete(c dialogue.Context) bool {
	s := f.State(c.Coverage, c.Combined)
	return s.Has(FinancialRefusal) &&
		(s.Has(FinancialCompliance) || s.Has(FinancialPolicy)) &&
		s.Has(FinancialSpecifics)
}

// OffTopic fires when the latest reply has no yes/no answer, no finance
// vocabulary and more than a few characters.
func (*Financial) OffTopic(c dialogue.Context) bool {
	u := c.Utterance
	if anyWord(u, yesWords) || anyWord(u, noWords) {
		return false
	}
	if anyStem(u, financeStems) || matcher.ContainsWord(u, "sec") {
		return false
	}
	return len(matcher.Normalize(u)) > 5
}

func (f *Financial) FollowUp(c dialogue.Context) (models.CoverageState, string) {
	s := f.State(c.Coverage, c.Combined)
	switch {
	case !s.Has(FinancialRefusal):
		return s, ""
	case !s.Has(FinancialCompliance) && !s.Has(FinancialPolicy):
		return s, financialWhyNot
	case s.Has(FinancialPolicy) && !s.Has(FinancialSpecifics):
		return s, financialPolicyWhy
	case !s.Has(FinancialSpecifics):
		return s, financialSpecifics
	default:
		return s, ""
	}
}

func (*Financial) ConfirmLines(models.Scenario) []string {
	return []string{financialConfirm}
}

// Excused returns the forbidden words that only ever appear inside a refusal,
// such as "tips" in "I cannot share tips".
func (f *Financial) Excused(sc models.Scenario, text string, found []string) []string {
	m := f.m.Extend(sc.Keywords.Aliases)
	t := matcher.Normalize(text)
	var out []string
	for _, word := range found {
		spans := m.Spans(text, word)
		if len(spans) == 0 {
			continue
		}
		excused := true
		for _, sp := range spans {
			if !inRefusalClause(t, sp[0]) {
				excused = false
				break
			}
		}
		if excused {
			out = append(out, word)
		}
	}
	return out
}

// inRefusalClause reports whether a negation cue precedes position start in the
// same clause and within refusalWindow bytes.
func inRefusalClause(t string, start int) bool {
	from := strings.LastIndexAny(t[:start], clauseDelimiters) + 1
	if limit := start - refusalWindow; limit > from {
		from = limit
	}
	for from < start && !utf8.RuneStart(t[from]) {
		from++
	}
	return anyWord(t[from:start], negationCues)
}

func (f *Financial) AcceptableRefusal(_ models.Scenario, text string) bool {
	if !f.refusal(text) {
		return false
	}
	return anyStem(text, complianceStems) || matcher.ContainsWord(text, "sec")
}

func (*Financial) FallbackAccept(_ models.Scenario, text string) bool {
	return anyWord(text, fallbackPhrases) || strings.Contains(matcher.Normalize(text), "no thanks")
}

func (f *Financial) Hints(_ models.Scenario, text string) []string {
	var hints []string
	if !f.refusal(text) {
		hints = append(hints, "Start with a clear refusal.")
	}
	if !specifics(text) {
		hints = append(hints, "Name the rule behind the refusal, such as insider trading laws or SEC regulations.")
	}
	return hints
}

func (*Financial) OffTopicHint(models.Scenario) string {
	return "Stay with the client's question and explain why you cannot give tips."
}
