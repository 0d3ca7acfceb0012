// Package matcher decides whether free text covers rubric keywords.
//
// Matching is lexical and deterministic: both sides are lowercased, trimmed and
// folded to ASCII, then compared by substring. A keyword also matches its
// aliases, its built-in synonyms and a few inflected forms, and multi-word
// keywords may match by proximity when the words are reordered or split.
// Keywords of three characters or fewer only match whole words.
package matcher

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultProximity = 15
	DefaultTolerance = 2

	HintEarlier = "Almost! A little bit earlier"
	HintLater   = "Almost! A little bit later"

	// shortWordLen is the longest term that must match on word boundaries.
	shortWordLen = 3
	// maxCandidates bounds the proximity search per phrase word.
	maxCandidates = 32
)

var (
	yearRe        = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	yearKeywordRe = regexp.MustCompile(`^\d{4}$`)
	quoteFolder   = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")
)

var defaultAliases = map[string][]string{
	"jakob": {"jacob"},
}

var defaultSynonyms = map[string][]string{
	"cannot":      {"can't", "cant", "unable", "can not"},
	"not allowed": {"against", "not permitted", "prohibited", "forbidden"},
}

type Matcher struct {
	aliases   map[string][]string
	synonyms  map[string][]string
	proximity int
	tolerance int
}

type Option func(*Matcher)

// WithAliases adds misspelling variants on top of the built-in ones.
func WithAliases(aliases map[string][]string) Option {
	return func(m *Matcher) {
		mergeInto(m.aliases, aliases)
	}
}

// WithSynonyms adds synonym phrases on top of the built-in ones.
func WithSynonyms(synonyms map[string][]string) Option {
	return func(m *Matcher) {
		mergeInto(m.synonyms, synonyms)
	}
}

// WithProximity sets the largest gap, in characters, allowed between the words
// of a multi-word keyword.
func WithProximity(chars int) Option {
	return func(m *Matcher) {
		if chars >= 0 {
			m.proximity = chars
		}
	}
}

// WithTolerance sets how many years away an answer may be to count as close.
func WithTolerance(years int) Option {
	return func(m *Matcher) {
		if years >= 0 {
			m.tolerance = years
		}
	}
}

func New(opts ...Option) *Matcher {
	m := &Matcher{
		aliases:   make(map[string][]string),
		synonyms:  make(map[string][]string),
		proximity: DefaultProximity,
		tolerance: DefaultTolerance,
	}
	mergeInto(m.aliases, defaultAliases)
	mergeInto(m.synonyms, defaultSynonyms)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Extend returns a copy of m that also knows the given aliases. m is not modified.
func (m *Matcher) Extend(aliases map[string][]string) *Matcher {
	if len(aliases) == 0 {
		return m
	}
	c := &Matcher{
		aliases:   make(map[string][]string, len(m.aliases)+len(aliases)),
		synonyms:  m.synonyms,
		proximity: m.proximity,
		tolerance: m.tolerance,
	}
	mergeInto(c.aliases, m.aliases)
	mergeInto(c.aliases, aliases)
	return c
}

func (m *Matcher) Tolerance() int { return m.tolerance }

func mergeInto(dst, src map[string][]string) {
	for k, vs := range src {
		key := Normalize(k)
		if key == "" {
			continue
		}
		for _, v := range vs {
			if v = Normalize(v); v != "" && v != key {
				dst[key] = append(dst[key], v)
			}
		}
	}
}

// Normalize lowercases, trims and folds s to plain ASCII letters where possible,
// so "ÖV4" and "ov4" compare equal.
func Normalize(s string) string {
	s = quoteFolder.Replace(strings.ToLower(strings.TrimSpace(s)))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Matches reports whether text covers keyword.
func (m *Matcher) Matches(text, keyword string) bool {
	return m.matchNormalized(Normalize(text), Normalize(keyword))
}

// Find returns the keywords covered by text, in the order given.
func (m *Matcher) Find(text string, keywords []string) []string {
	return m.find(Normalize(text), keywords)
}

func (m *Matcher) find(t string, keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if m.matchNormalized(t, Normalize(k)) {
			out = append(out, k)
		}
	}
	return out
}

// Spans returns the byte ranges in Normalize(text) where keyword, or one of its
// variants, occurs verbatim.
func (m *Matcher) Spans(text, keyword string) [][2]int {
	t, k := Normalize(text), Normalize(keyword)
	if k == "" {
		return nil
	}
	var out [][2]int
	for _, v := range m.variants(k) {
		out = append(out, occurrences(t, v, wholeWordOnly(v))...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// ContainsWord reports whether word occurs in text as a whole word.
func ContainsWord(text, word string) bool {
	return len(occurrences(Normalize(text), Normalize(word), true)) > 0
}

func (m *Matcher) matchNormalized(t, k string) bool {
	if k == "" || t == "" {
		return false
	}
	for _, v := range m.variants(k) {
		if containsTerm(t, v) {
			return true
		}
		if strings.ContainsRune(v, ' ') && m.near(t, v) {
			return true
		}
	}
	return false
}

func (m *Matcher) variants(k string) []string {
	out := []string{k}
	out = append(out, m.aliases[k]...)
	out = append(out, m.synonyms[k]...)
	if !strings.ContainsRune(k, ' ') && isLetters(k) {
		out = append(out, inflections(k)...)
	}
	return out
}

// inflections returns plural and suffix forms that plain substring search would miss.
func inflections(k string) []string {
	n := len(k)
	var out []string
	switch {
	case strings.HasSuffix(k, "y") && n > 2:
		out = append(out, k[:n-1]+"ies")
	case strings.HasSuffix(k, "e") && n > 2:
		out = append(out, k[:n-1]+"ing")
	case strings.HasSuffix(k, "s") && n > shortWordLen:
		out = append(out, k[:n-1])
	}
	if isShort(k) {
		out = append(out, k+"s", k+"ing")
	}
	return out
}

func stem(w string) string {
	for _, suffix := range []string{"ies", "ing", "ed", "es", "s"} {
		if strings.HasSuffix(w, suffix) && len(w)-len(suffix) >= 3 {
			return strings.TrimSuffix(w, suffix)
		}
	}
	return w
}

// near reports whether every word of phrase (or its stem) occurs in t with at
// most m.proximity characters between consecutive matched words, in any order.
func (m *Matcher) near(t, phrase string) bool {
	words := strings.Fields(phrase)
	if len(words) < 2 {
		return false
	}
	cands := make([][][2]int, len(words))
	for i, w := range words {
		s := stem(w)
		spans := occurrences(t, s, wholeWordOnly(s))
		if len(spans) == 0 {
			return false
		}
		if len(spans) > maxCandidates {
			spans = spans[:maxCandidates]
		}
		for j := range spans {
			spans[j][1] = wordEnd(t, spans[j][1])
		}
		cands[i] = spans
	}
	return m.pick(cands, make([][2]int, len(words)), 0)
}

func (m *Matcher) pick(cands [][][2]int, chosen [][2]int, i int) bool {
	if i == len(cands) {
		return m.withinReach(chosen)
	}
	for _, sp := range cands[i] {
		if overlapsAny(chosen[:i], sp) {
			continue
		}
		chosen[i] = sp
		if m.pick(cands, chosen, i+1) {
			return true
		}
	}
	return false
}

func (m *Matcher) withinReach(spans [][2]int) bool {
	sorted := append([][2]int(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i][0] < sorted[j][0] })
	for i := 1; i < len(sorted); i++ {
		if sorted[i][0]-sorted[i-1][1] > m.proximity {
			return false
		}
	}
	return true
}

func overlapsAny(spans [][2]int, sp [2]int) bool {
	for _, o := range spans {
		if sp[0] < o[1] && o[0] < sp[1] {
			return true
		}
	}
	return false
}

func containsTerm(t, term string) bool {
	if wholeWordOnly(term) {
		return len(occurrences(t, term, true)) > 0
	}
	return strings.Contains(t, term)
}

// wholeWordOnly reports whether term must match on word boundaries: short
// words and years, so "19270" never counts as "1927".
func wholeWordOnly(term string) bool {
	return isShort(term) || IsYearKeyword(term)
}

func occurrences(t, term string, bounded bool) [][2]int {
	if term == "" {
		return nil
	}
	var out [][2]int
	for start := 0; start <= len(t)-len(term); {
		i := strings.Index(t[start:], term)
		if i < 0 {
			break
		}
		i += start
		j := i + len(term)
		if !bounded || (boundaryBefore(t, i) && boundaryAfter(t, j)) {
			out = append(out, [2]int{i, j})
		}
		start = i + 1
	}
	return out
}

func boundaryBefore(t string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(t[:i])
	return !isWordRune(r)
}

func boundaryAfter(t string, j int) bool {
	if j >= len(t) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(t[j:])
	return !isWordRune(r)
}

func wordEnd(t string, j int) int {
	for j < len(t) {
		r, size := utf8.DecodeRuneInString(t[j:])
		if !isWordRune(r) {
			break
		}
		j += size
	}
	return j
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isShort(term string) bool {
	return utf8.RuneCountInString(term) <= shortWordLen
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

// YearMatch describes how a year-like keyword was answered.
type YearMatch struct {
	Keyword   string `json:"keyword"`
	Exact     bool   `json:"exact"`
	Close     bool   `json:"close"`
	Found     int    `json:"found,omitempty"`
	Delta     int    `json:"delta,omitempty"`
	Direction string `json:"direction,omitempty"`
	Hint      string `json:"hint,omitempty"`
}

// IsYearKeyword reports whether keyword is a four-digit number.
func IsYearKeyword(keyword string) bool {
	return yearKeywordRe.MatchString(strings.TrimSpace(keyword))
}

// Years returns the year-like tokens (1900-2099) found in text.
func Years(text string) []int {
	var out []int
	for _, y := range yearRe.FindAllString(Normalize(text), -1) {
		v, _ := strconv.Atoi(y)
		out = append(out, v)
	}
	return out
}

// Year checks text against a four-digit keyword. An exact year wins; otherwise
// the first year within tolerance is reported as close, with a hint pointing
// toward the right answer. Non-year keywords yield a zero YearMatch.
func (m *Matcher) Year(text, keyword string) YearMatch {
	res := YearMatch{Keyword: keyword}
	if !IsYearKeyword(keyword) {
		return res
	}
	target, _ := strconv.Atoi(strings.TrimSpace(keyword))
	years := Years(text)
	for _, y := range years {
		if y == target {
			res.Exact = true
			res.Found = y
			return res
		}
	}
	for _, y := range years {
		d := y - target
		if d < -m.tolerance || d > m.tolerance {
			continue
		}
		res.Close, res.Found, res.Delta = true, y, d
		if d > 0 {
			res.Direction, res.Hint = "earlier", HintEarlier
		} else {
			res.Direction, res.Hint = "later", HintLater
		}
		return res
	}
	return res
}

// Coverage splits required keywords by how well text covers them. A close year
// is neither covered nor missing.
type Coverage struct {
	Covered []string    `json:"covered"`
	Missing []string    `json:"missing"`
	Close   []YearMatch `json:"close,omitempty"`
}

func (c Coverage) Has(keyword string) bool {
	for _, k := range c.Covered {
		if strings.EqualFold(k, keyword) {
			return true
		}
	}
	return false
}

func (c Coverage) IsClose(keyword string) bool {
	for _, y := range c.Close {
		if y.Keyword == keyword {
			return true
		}
	}
	return false
}

func (m *Matcher) Cover(text string, required []string) Coverage {
	t := Normalize(text)
	cov := Coverage{Covered: []string{}, Missing: []string{}}
	for _, k := range required {
		if m.matchNormalized(t, Normalize(k)) {
			cov.Covered = append(cov.Covered, k)
			continue
		}
		if y := m.Year(text, k); y.Close {
			cov.Close = append(cov.Close, y)
			continue
		}
		cov.Missing = append(cov.Missing, k)
	}
	return cov
}
