package matcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/upsimu/internal/matcher"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "aao", matcher.Normalize("  ÅÄÖ "))
	assert.Equal(t, "ov4", matcher.Normalize("ÖV4"))
	assert.Equal(t, "can't", matcher.Normalize("Can’t"))
}

func TestMatches(t *testing.T) {
	m := matcher.New()

	tests := []struct {
		name    string
		text    string
		keyword string
		want    bool
	}{
		{"substring", "We follow compliance rules", "compliance", true},
		{"case insensitive", "COMPLIANCE first", "compliance", true},
		{"transliteration", "I drove the OV4 once", "ÖV4", true},
		{"diacritics in text", "the ÖV4 of course", "OV4", true},
		{"alias", "It was named after Jacob", "Jakob", true},
		{"plural ies", "our policies forbid it", "policy", true},
		{"drop plural s", "that regulation applies", "regulations", true},
		{"e to ing", "I am not sharing that", "share", true},
		{"synonym cannot", "I can't do that", "cannot", true},
		{"synonym unable", "I'm unable to help", "cannot", true},
		{"synonym phrase", "that is against the rules", "not allowed", true},
		{"verbatim phrase", "it is not allowed", "not allowed", true},
		{"reordered phrase", "trading on insider knowledge", "insider trading", true},
		{"phrase words far apart", "insider information is something I never discuss, and trading happens elsewhere", "insider trading", false},
		{"short keyword inside word", "that's a secret", "SEC", false},
		{"short keyword whole word", "the SEC would object", "SEC", true},
		{"short keyword with possessive", "the SEC's rules", "SEC", true},
		{"short plural inside word", "there are multiple options", "tips", false},
		{"year whole word", "it was made in 1927.", "1927", true},
		{"year inside longer number", "model 19270", "1927", false},
		{"year inside word", "batch1927 units", "1927", false},
		{"missing", "nothing relevant here", "Gothenburg", false},
		{"empty text", "", "policy", false},
		{"empty keyword", "anything", "  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Matches(tt.text, tt.keyword))
		})
	}
}

func TestFind_PreservesOrder(t *testing.T) {
	m := matcher.New()
	found := m.Find("Jakob built the ÖV4 in 1927", []string{"ÖV4", "1927", "Jakob", "Ford"})
	assert.Equal(t, []string{"ÖV4", "1927", "Jakob"}, found)

	none := m.Find("nothing", []string{"Ford"})
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestExtend_DoesNotMutateParent(t *testing.T) {
	base := matcher.New()
	ext := base.Extend(map[string][]string{"Gothenburg": {"Göteborg"}})

	assert.True(t, ext.Matches("made in Göteborg", "Gothenburg"))
	assert.False(t, base.Matches("made in Göteborg", "Gothenburg"))
	assert.True(t, ext.Matches("named after Jacob", "Jakob"))
}

func TestWithProximity(t *testing.T) {
	text := "insider information and then trading"
	assert.False(t, matcher.New(matcher.WithProximity(5)).Matches(text, "insider trading"))
	assert.True(t, matcher.New(matcher.WithProximity(30)).Matches(text, "insider trading"))
}

func TestYear(t *testing.T) {
	m := matcher.New()

	tests := []struct {
		name      string
		text      string
		keyword   string
		exact     bool
		close     bool
		delta     int
		direction string
		hint      string
	}{
		{name: "exact", text: "in 1927 and 1928", keyword: "1927", exact: true},
		{name: "later answer", text: "It was 1929", keyword: "1927", close: true, delta: 2, direction: "earlier", hint: matcher.HintEarlier},
		{name: "earlier answer", text: "around 1925 I think", keyword: "1927", close: true, delta: -2, direction: "later", hint: matcher.HintLater},
		{name: "outside tolerance", text: "1930", keyword: "1927"},
		{name: "not a year pattern", text: "1827", keyword: "1827"},
		{name: "not a year keyword", text: "ÖV4", keyword: "ÖV4"},
		{name: "embedded digits", text: "model 19270", keyword: "1927"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := m.Year(tt.text, tt.keyword)
			assert.Equal(t, tt.exact, y.Exact)
			assert.Equal(t, tt.close, y.Close)
			assert.Equal(t, tt.delta, y.Delta)
			assert.Equal(t, tt.direction, y.Direction)
			assert.Equal(t, tt.hint, y.Hint)
		})
	}
}

func TestYear_WithTolerance(t *testing.T) {
	m := matcher.New(matcher.WithTolerance(5))
	y := m.Year("1932", "1927")
	assert.True(t, y.Close)
	assert.Equal(t, 5, y.Delta)
}

func TestSpans_YearNeedsWordBoundary(t *testing.T) {
	m := matcher.New()

	assert.Empty(t, m.Spans("model 19270", "1927"))
	assert.Equal(t, [][2]int{{6, 10}}, m.Spans("model 1927", "1927"))
}

func TestCover(t *testing.T) {
	m := matcher.New()
	cov := m.Cover("The ÖV4 came out in 1929", []string{"ÖV4", "1927", "Jakob"})

	assert.Equal(t, []string{"ÖV4"}, cov.Covered)
	assert.Equal(t, []string{"Jakob"}, cov.Missing)
	require.Len(t, cov.Close, 1)
	assert.Equal(t, "1927", cov.Close[0].Keyword)
	assert.True(t, cov.IsClose("1927"))
	assert.True(t, cov.Has("öv4"))
	assert.False(t, cov.Has("1927"))
}

func TestSpans(t *testing.T) {
	m := matcher.New()
	spans := m.Spans("No tips. Really, no tips!", "tips")
	require.Len(t, spans, 2)
	assert.Equal(t, [2]int{3, 7}, spans[0])
}
