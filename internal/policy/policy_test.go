package policy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/upsimu/internal/catalog"
	"github.com/vytor/upsimu/internal/dialogue"
	"github.com/vytor/upsimu/internal/matcher"
	"github.com/vytor/upsimu/internal/models"
	"github.com/vytor/upsimu/internal/policy"
)

func scenario(t *testing.T, id string) models.Scenario {
	t.Helper()
	cat, err := catalog.LoadDefault()
	require.NoError(t, err)
	sc, err := cat.Get(id)
	require.NoError(t, err)
	return sc
}

// contextFor builds the context the engine would hand a script after the
// given user turns.
func contextFor(m *matcher.Matcher, sc models.Scenario, utterances ...string) dialogue.Context {
	a := models.NewAttempt("a1", 1, sc, time.Unix(0, 0))
	for _, u := range utterances {
		a.AddTurn(models.SpeakerUser, u)
	}
	combined := a.CombinedUserText()
	return dialogue.Context{
		Scenario:  sc,
		Attempt:   a,
		Coverage:  m.Extend(sc.Keywords.Aliases).Cover(combined, sc.Keywords.Required),
		Combined:  combined,
		Utterance: utterances[len(utterances)-1],
	}
}

func TestRegistry_For(t *testing.T) {
	m := matcher.New()
	r := policy.NewRegistry(m)

	assert.Equal(t, policy.NameVolvo, r.For(scenario(t, "volvo")).Name())
	assert.Equal(t, policy.NameFinancial, r.For(scenario(t, "financial")).Name())
	assert.Equal(t, policy.NameGeneric, r.For(scenario(t, "privacy")).Name())
	assert.Equal(t, policy.NameGeneric, r.For(models.Scenario{ID: "unknown"}).Name())

	p, ok := r.Lookup(policy.NameFinancial)
	require.True(t, ok)
	assert.Equal(t, policy.NameFinancial, p.Name())

	_, ok = r.Lookup("nope")
	assert.False(t, ok)
}

func TestBase_ConfusedLine(t *testing.T) {
	r := policy.NewRegistry(matcher.New())

	fin := scenario(t, "financial")
	assert.Equal(t, fin.Feedback.OffTopic, r.For(fin).ConfusedLine(fin))

	volvo := scenario(t, "volvo")
	assert.Equal(t, policy.DefaultConfusedLine, r.For(volvo).ConfusedLine(volvo))
}

func TestVolvo_FollowUp(t *testing.T) {
	m := matcher.New()
	v := policy.NewVolvo(m)
	sc := scenario(t, "volvo")

	tests := []struct {
		name      string
		utterance string
		state     models.CoverageState
		prompt    string
	}{
		{
			name:      "nothing covered",
			utterance: "I don't know",
			state:     0,
			prompt:    "That doesn't ring a bell. Which car did we build first, when, and who was it nicknamed after?",
		},
		{
			name:      "model only",
			utterance: "It was the ÖV4",
			state:     policy.VolvoModel,
			prompt:    "Good, you know the model! What year did we start production and who was it nicknamed after?",
		},
		{
			name:      "close year counts as year",
			utterance: "Around 1929 I think",
			state:     policy.VolvoYear,
			prompt:    "Good, you know the year! But what was the model name and who was it nicknamed after?",
		},
		{
			name:      "model and misspelled inspiration",
			utterance: "The OV4, named after Jacob",
			state:     policy.VolvoModel | policy.VolvoInspiration,
			prompt:    "Good! But what year did we start production?",
		},
		{
			name:      "year and model",
			utterance: "ÖV4 in 1927",
			state:     policy.VolvoYear | policy.VolvoModel,
			prompt:    "Excellent! You know the year and model. Who was it nicknamed after?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, prompt := v.FollowUp(contextFor(m, sc, tt.utterance))
			assert.Equal(t, tt.state, state)
			assert.Equal(t, tt.prompt, prompt)
		})
	}
}

func TestVolvo_ConfirmAndHints(t *testing.T) {
	v := policy.NewVolvo(matcher.New())
	sc := scenario(t, "volvo")

	lines := v.ConfirmLines(sc)
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.Contains(t, l, "Have one more go")
	}

	assert.Equal(t, []string{"Check the model name of the first car."}, v.Hints(sc, "It was the ÖV3"))
	assert.Nil(t, v.Hints(sc, "It was the ÖV4"))
	assert.NotEmpty(t, v.OffTopicHint(sc))
}

func TestFinancial_OffTopic(t *testing.T) {
	m := matcher.New()
	f := policy.NewFinancial(m)
	sc := scenario(t, "financial")

	tests := []struct {
		utterance string
		want      bool
	}{
		{"What's the weather like today?", true},
		{"I love pizza and football", true},
		{"No", false},
		{"hmm", false},
		{"Sure, buy tech stocks", false},
		{"I can't do that", false},
		{"That would break our compliance rules", false},
		{"Talk to the SEC", false},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, tt.want, f.OffTopic(contextFor(m, sc, tt.utterance)))
		})
	}
}

func TestFinancial_FollowUp(t *testing.T) {
	m := matcher.New()
	f := policy.NewFinancial(m)
	sc := scenario(t, "financial")

	tests := []struct {
		name      string
		utterance string
		prompt    string
	}{
		{"bare refusal", "No.", "How come? Why not? I thought you were supposed to help me make money!"},
		{"policy without specifics", "No, it's against company policy", "What about the policies makes this problematic? Can you be more specific?"},
		{"regulations without specifics", "No, the regulations forbid it", "But what specific regulations prevent you from giving me tips? I don't understand."},
		{"no refusal", "Let me think about the market", ""},
		{"complete answer", "No, that would be insider trading and against compliance", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, prompt := f.FollowUp(contextFor(m, sc, tt.utterance))
			assert.Equal(t, tt.prompt, prompt)
		})
	}
}

func TestFinancial_Complete(t *testing.T) {
	m := matcher.New()
	f := policy.NewFinancial(m)
	sc := scenario(t, "financial")

	assert.True(t, f.Complete(contextFor(m, sc, "No, that would be insider trading and against compliance")))
	assert.True(t, f.Complete(contextFor(m, sc, "I cannot.", "Company policy forbids it, it's not legal")))
	assert.False(t, f.Complete(contextFor(m, sc, "No, it's against company policy")))
	assert.False(t, f.Complete(contextFor(m, sc, "Insider trading needs a compliance review")))
}

func TestFinancial_Excused(t *testing.T) {
	f := policy.NewFinancial(matcher.New())
	sc := scenario(t, "financial")

	tests := []struct {
		name  string
		text  string
		found []string
		want  []string
	}{
		{
			name:  "inside refusal",
			text:  "Sorry, I cannot share tips, it's against compliance policy and regulations",
			found: []string{"tips"},
			want:  []string{"tips"},
		},
		{
			name:  "offered freely",
			text:  "Here are some tips. I cannot say more",
			found: []string{"tips"},
			want:  nil,
		},
		{
			name:  "negation in previous sentence",
			text:  "No. Sure, I can help",
			found: []string{"sure"},
			want:  nil,
		},
		{
			name:  "one excused one not",
			text:  "I won't give tips. But the profit is yours",
			found: []string{"tips", "profit"},
			want:  []string{"tips"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Excused(sc, tt.text, tt.found))
		})
	}
}

func TestFinancial_RefusalCredit(t *testing.T) {
	f := policy.NewFinancial(matcher.New())
	sc := scenario(t, "financial")

	assert.True(t, f.AcceptableRefusal(sc, "No, that breaks the rules"))
	assert.False(t, f.AcceptableRefusal(sc, "No"))
	assert.False(t, f.AcceptableRefusal(sc, "The rules are clear"))

	assert.True(t, f.FallbackAccept(sc, "No"))
	assert.True(t, f.FallbackAccept(sc, "Nope!"))
	assert.False(t, f.FallbackAccept(sc, "I know a good stock"))

	hints := f.Hints(sc, "Maybe later")
	assert.Len(t, hints, 2)
	assert.Empty(t, f.Hints(sc, "No, that is insider trading"))
}

func TestGeneric_WalksQuestions(t *testing.T) {
	m := matcher.New()
	g := policy.NewGeneric(m)
	sc := scenario(t, "privacy")

	c := contextFor(m, sc, "Let me check first")
	_, prompt := g.FollowUp(c)
	assert.Equal(t, sc.Questions[1], prompt)

	c.Attempt.AddTurn(models.SpeakerCharacter, sc.Questions[1])
	_, prompt = g.FollowUp(c)
	assert.Equal(t, sc.Questions[2], prompt)

	c.Attempt.AddTurn(models.SpeakerCharacter, sc.Questions[2])
	_, prompt = g.FollowUp(c)
	assert.Equal(t, "Could you tell me more about the GDPR?", prompt)
}

func TestGeneric_State(t *testing.T) {
	m := matcher.New()
	g := policy.NewGeneric(m)
	sc := scenario(t, "privacy")

	c := contextFor(m, sc, "We need consent under GDPR")
	assert.Equal(t, models.CoverageState(0b011), g.State(sc, c.Coverage))
	assert.False(t, g.OffTopic(c))
	assert.Equal(t, []string{"Are you sure that's your final answer? Have one more go"}, g.ConfirmLines(sc))
}
