package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/upsimu/internal/catalog"
	"github.com/vytor/upsimu/internal/errors"
	"github.com/vytor/upsimu/internal/models"
)

func validScenario() models.Scenario {
	return models.Scenario{
		ID:        "demo",
		Questions: []string{"What is the rule?"},
		Keywords: models.Keywords{
			Required:  []string{"rule"},
			Bonus:     []string{"why"},
			Forbidden: []string{"whatever"},
		},
		Feedback: models.Feedback{Perfect: "p", Good: "g", NeedsWork: "n", Poor: "x"},
	}
}

func TestLoadDefault(t *testing.T) {
	c, err := catalog.LoadDefault()
	require.NoError(t, err)

	ids := make([]string, 0)
	for _, sc := range c.List() {
		ids = append(ids, sc.ID)
	}
	assert.Equal(t, []string{"financial", "privacy", "volvo"}, ids)

	volvo, err := c.Get("volvo")
	require.NoError(t, err)
	assert.Equal(t, []string{"ÖV4", "1927", "Jakob"}, volvo.Keywords.Required)
	assert.Equal(t, "Gustav Larson", volvo.Character.Name)
	assert.Equal(t, "the year", volvo.Concept("1927"))

	financial, err := c.Get("financial")
	require.NoError(t, err)
	assert.Contains(t, financial.Keywords.Forbidden, "yes")
	assert.NotEmpty(t, financial.Feedback.OffTopic)

	privacy, err := c.Get("privacy")
	require.NoError(t, err)
	assert.Equal(t, "generic", privacy.PolicyName())
}

func TestGet_NotFound(t *testing.T) {
	c := catalog.New()
	_, err := c.Get("missing")
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Scenario)
		wantErr string
	}{
		{"valid", func(*models.Scenario) {}, ""},
		{"missing id", func(s *models.Scenario) { s.ID = "" }, "id is required"},
		{"missing question", func(s *models.Scenario) { s.Questions = nil }, "opening question"},
		{"empty required", func(s *models.Scenario) { s.Keywords.Required = nil }, "keywords.required cannot be empty"},
		{"cross category duplicate", func(s *models.Scenario) { s.Keywords.Forbidden = append(s.Keywords.Forbidden, "RULE") }, `"RULE" appears in both required and forbidden`},
		{"diacritic duplicate", func(s *models.Scenario) { s.Keywords.Bonus = append(s.Keywords.Bonus, "rulé") }, "appears in both required and bonus"},
		{"same category duplicate", func(s *models.Scenario) { s.Keywords.Bonus = append(s.Keywords.Bonus, "Why") }, "listed twice in bonus"},
		{"blank keyword", func(s *models.Scenario) { s.Keywords.Bonus = append(s.Keywords.Bonus, " ") }, "keywords.bonus contains an empty keyword"},
		{"missing feedback", func(s *models.Scenario) { s.Feedback.Poor = "" }, "feedback.poor is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := validScenario()
			tt.mutate(&sc)
			err := catalog.Validate(sc)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAdd_RejectsInvalidAndDuplicate(t *testing.T) {
	c := catalog.New()

	bad := validScenario()
	bad.Keywords.Required = nil
	err := c.Add(bad)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfiguration))

	require.NoError(t, c.Add(validScenario()))
	err = c.Add(validScenario())
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfiguration))
	assert.Equal(t, 1, c.Len())
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	doc := `id: custom
title: Custom
questions: ["Ready?"]
keywords:
  required: [alpha, beta]
feedback:
  perfect: p
  good: g
  needs_work: n
  poor: x
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.yml"), []byte(doc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	c := catalog.New()
	require.NoError(t, c.LoadFromDir(dir))

	sc, err := c.Get("custom")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, sc.Keywords.Required)
}

func TestLoadBytes_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "id: [unterminated"},
		{"unknown field", "id: x\nquestions: [q]\nrubric: {}\n"},
		{"overlapping keywords", `id: x
questions: [q]
keywords:
  required: [tips]
  forbidden: [Tips]
feedback: {perfect: p, good: g, needs_work: n, poor: x}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := catalog.New().LoadBytes([]byte(tt.doc), "inline.yaml")
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeConfiguration))
			assert.Contains(t, err.Error(), "inline.yaml")
		})
	}
}
