// Package evaluator scores a final transcript against a scenario rubric.
//
// Evaluate is pure: the same transcript and scenario always produce the same
// result. Stars are multiples of 0.5 between 0 and 3.
package evaluator

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vytor/upsimu/internal/matcher"
	"github.com/vytor/upsimu/internal/models"
)

const (
	DefaultBonusWeight = 0.5

	defaultOffTopicLine = "The conversation went off-topic."
	defaultOffTopicHint = "Stay on topic and answer the question you were asked."
)

// Rubric holds the scenario-specific scoring hooks.
type Rubric interface {
	// Excused returns the forbidden keywords in found that text uses in a way
	// that should not be penalised.
	Excused(sc models.Scenario, text string, found []string) []string
	// AcceptableRefusal reports whether text is a refusal worth partial credit.
	AcceptableRefusal(sc models.Scenario, text string) bool
	// FallbackAccept reports whether text earns minimal credit when nothing else does.
	FallbackAccept(sc models.Scenario, text string) bool
	// Hints returns extra coaching lines for the result.
	Hints(sc models.Scenario, text string) []string
	OffTopicHint(sc models.Scenario) string
}

type Rubrics interface {
	RubricFor(sc models.Scenario) Rubric
}

type Evaluator struct {
	matcher     *matcher.Matcher
	rubrics     Rubrics
	bonusWeight float64
}

type Option func(*Evaluator)

// WithBonusWeight sets how much each bonus keyword is worth; with the default
// of 0.5 a single bonus keyword lifts a full answer to three stars.
func WithBonusWeight(w float64) Option {
	return func(e *Evaluator) {
		if w >= 0 {
			e.bonusWeight = w
		}
	}
}

func WithRubrics(r Rubrics) Option {
	return func(e *Evaluator) {
		e.rubrics = r
	}
}

func New(m *matcher.Matcher, opts ...Option) *Evaluator {
	e := &Evaluator{matcher: m, bonusWeight: DefaultBonusWeight}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) rubric(sc models.Scenario) Rubric {
	if e.rubrics != nil {
		if r := e.rubrics.RubricFor(sc); r != nil {
			return r
		}
	}
	return noRubric{}
}

func (e *Evaluator) Evaluate(transcript string, sc models.Scenario) models.EvaluationResult {
	rub := e.rubric(sc)
	kw := sc.Keywords

	if strings.HasSuffix(transcript, " "+models.OffTopicMarker) {
		return offTopicResult(sc, rub)
	}

	text := strings.TrimSpace(transcript)
	m := e.matcher.Extend(kw.Aliases)

	requiredFound := m.Find(text, kw.Required)
	bonusFound := m.Find(text, kw.Bonus)
	forbiddenFound := m.Find(text, kw.Forbidden)

	var closeYears []matcher.YearMatch
	var numericalHints []string
	missing := make([]string, 0, len(kw.Required))
	for _, k := range kw.Required {
		if contains(requiredFound, k) {
			continue
		}
		if y := m.Year(text, k); y.Close {
			closeYears = append(closeYears, y)
			numericalHints = append(numericalHints, y.Hint)
			continue
		}
		missing = append(missing, k)
	}
	hasClose := len(closeYears) > 0

	effective := effectiveForbidden(forbiddenFound, closeYears, rub.Excused(sc, text, forbiddenFound), m.Tolerance())
	exact := len(requiredFound)
	total := len(kw.Required)

	var stars float64
	var feedback string
	switch {
	case len(effective) > 0 && !hasClose:
		stars, feedback = 0, sc.Feedback.Poor
	case hasClose && len(effective) > 0:
		stars, feedback = 0.5, withHints(numericalHints, sc.Feedback.NeedsWork)
	case exact == total:
		stars = math.Min(models.MaxStars, 2+math.Floor(float64(len(bonusFound))*e.bonusWeight*2))
		feedback = sc.Feedback.Good
		if stars == models.MaxStars {
			feedback = sc.Feedback.Perfect
		}
	case exact >= 1 && exact == total-1:
		stars, feedback = 2, withHints(numericalHints, sc.Feedback.Good)
	case exact >= 1 || hasClose || rub.AcceptableRefusal(sc, text):
		switch {
		case hasClose && exact == 0:
			stars = 0.5
		case hasClose:
			stars = 1.5
		default:
			stars = 1
		}
		feedback = withHints(numericalHints, sc.Feedback.NeedsWork)
	case rub.FallbackAccept(sc, text):
		stars, feedback = 1, sc.Feedback.NeedsWork
	default:
		stars, feedback = 0, sc.Feedback.Poor
	}

	result := models.EvaluationResult{
		Stars:    stars,
		Feedback: feedback,
		Detailed: models.DetailedFeedback{
			RequiredFound:   requiredFound,
			BonusFound:      bonusFound,
			ForbiddenFound:  effective,
			MissingRequired: missing,
			NumericalHints:  numericalHints,
			SpecificHints:   specificHints(sc, missing, rub.Hints(sc, text)),
		},
	}
	if stars > 0 {
		result.SummaryFeedback = summary(sc, requiredFound, closeYears, missing)
	}
	return result
}

func offTopicResult(sc models.Scenario, rub Rubric) models.EvaluationResult {
	line := sc.Feedback.OffTopic
	if line == "" {
		line = defaultOffTopicLine
	}
	hint := rub.OffTopicHint(sc)
	if hint == "" {
		hint = defaultOffTopicHint
	}
	return models.EvaluationResult{
		Stars:    0,
		Feedback: strings.TrimSpace(line + " " + sc.Feedback.Poor),
		Detailed: models.DetailedFeedback{
			RequiredFound:   []string{},
			BonusFound:      []string{},
			ForbiddenFound:  []string{},
			MissingRequired: append([]string{}, sc.Keywords.Required...),
			SpecificHints:   []string{hint},
		},
	}
}

// effectiveForbidden drops forbidden years that sit next to a close required
// year, so a near-miss is not punished twice, and drops excused words.
func effectiveForbidden(found []string, closeYears []matcher.YearMatch, excused []string, tolerance int) []string {
	out := make([]string, 0, len(found))
	for _, f := range found {
		if contains(excused, f) {
			continue
		}
		if nearCloseYear(f, closeYears, tolerance) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func nearCloseYear(keyword string, closeYears []matcher.YearMatch, tolerance int) bool {
	if !matcher.IsYearKeyword(keyword) {
		return false
	}
	v, _ := strconv.Atoi(strings.TrimSpace(keyword))
	for _, y := range closeYears {
		target, _ := strconv.Atoi(strings.TrimSpace(y.Keyword))
		if d := v - target; d >= -tolerance && d <= tolerance {
			return true
		}
	}
	return false
}

func withHints(hints []string, msg string) string {
	if len(hints) == 0 {
		return msg
	}
	return strings.Join(hints, " ") + " " + msg
}

func specificHints(sc models.Scenario, missing []string, extra []string) []string {
	var out []string
	for _, k := range missing {
		out = append(out, "Try mentioning "+sc.Concept(k)+".")
	}
	return append(out, extra...)
}

func summary(sc models.Scenario, covered []string, closeYears []matcher.YearMatch, missing []string) string {
	concepts := func(keys []string) []string {
		out := make([]string, len(keys))
		for i, k := range keys {
			out[i] = sc.Concept(k)
		}
		return out
	}
	closeKeys := make([]string, len(closeYears))
	for i, y := range closeYears {
		closeKeys[i] = y.Keyword
	}

	var parts []string
	if len(covered) > 0 {
		parts = append(parts, "you covered "+joinList(concepts(covered)))
	}
	if len(closeKeys) > 0 {
		parts = append(parts, "you were close on "+joinList(concepts(closeKeys)))
	}
	if len(missing) > 0 {
		parts = append(parts, "you missed "+joinList(concepts(missing)))
	}
	if len(parts) == 0 {
		return ""
	}
	return capitalize(strings.Join(parts, "; ") + ".")
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type noRubric struct{}

func (noRubric) Excused(models.Scenario, string, []string) []string { return nil }
func (noRubric) AcceptableRefusal(models.Scenario, string) bool     { return false }
func (noRubric) FallbackAccept(models.Scenario, string) bool        { return false }
func (noRubric) Hints(models.Scenario, string) []string             { return nil }
func (noRubric) OffTopicHint(models.Scenario) string                { return "" }
