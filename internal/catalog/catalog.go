// Package catalog loads scenario definitions from YAML and keeps them in memory.
package catalog

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vytor/upsimu/internal/errors"
	"github.com/vytor/upsimu/internal/logger"
	"github.com/vytor/upsimu/internal/matcher"
	"github.com/vytor/upsimu/internal/models"
)

//go:embed scenarios/*.yaml
var defaultFS embed.FS

// Catalog is a read-mostly registry of scenarios keyed by ID.
type Catalog struct {
	mu        sync.RWMutex
	scenarios map[string]*models.Scenario
	sources   map[string]string
	log       *logger.Logger
}

func New() *Catalog {
	return &Catalog{
		scenarios: make(map[string]*models.Scenario),
		sources:   make(map[string]string),
		log:       logger.Default().WithPrefix("catalog"),
	}
}

// LoadDefault returns a catalog holding the built-in scenarios.
func LoadDefault() (*Catalog, error) {
	c := New()
	if err := c.LoadFS(defaultFS, "scenarios"); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFromDir loads every *.yaml / *.yml file in dir. A scenario whose ID is
// already loaded from another file is a configuration error.
func (c *Catalog) LoadFromDir(dir string) error {
	c.log.Info("loading scenarios from directory: %s", dir)
	return c.LoadFS(os.DirFS(dir), ".")
}

func (c *Catalog) LoadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return errors.NewConfigError(dir, err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := entry.Name()
		if dir != "." {
			path = dir + "/" + entry.Name()
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return errors.NewConfigError(path, err)
		}
		if err := c.LoadBytes(data, path); err != nil {
			c.log.Error("failed to load scenario file %s: %v", path, err)
			return err
		}
		loaded++
	}

	c.log.Info("scenarios loaded: count=%d", loaded)
	return nil
}

// LoadFromFile loads a single scenario file.
func (c *Catalog) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewConfigError(path, err)
	}
	return c.LoadBytes(data, path)
}

// LoadBytes parses one YAML scenario document and registers it.
func (c *Catalog) LoadBytes(data []byte, source string) error {
	var sc models.Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return errors.NewConfigError(source, fmt.Errorf("parse YAML: %w", err))
	}
	return c.add(sc, source)
}

// Add registers a scenario built in code.
func (c *Catalog) Add(sc models.Scenario) error {
	return c.add(sc, "scenario "+sc.ID)
}

func (c *Catalog) add(sc models.Scenario, source string) error {
	if err := Validate(sc); err != nil {
		return errors.NewConfigError(source, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.sources[sc.ID]; ok {
		return errors.NewConfigError(source, fmt.Errorf("scenario %q already loaded from %s", sc.ID, prev))
	}
	s := sc
	c.scenarios[sc.ID] = &s
	c.sources[sc.ID] = source
	c.log.Debug("scenario registered: id=%s source=%s", sc.ID, source)
	return nil
}

// Get returns a copy of the scenario, or a not found error.
func (c *Catalog) Get(id string) (models.Scenario, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sc, ok := c.scenarios[id]
	if !ok {
		return models.Scenario{}, errors.NewNotFoundError("scenario", id)
	}
	return *sc, nil
}

// List returns all scenarios sorted by ID.
func (c *Catalog) List() []models.Scenario {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]models.Scenario, 0, len(c.scenarios))
	for _, sc := range c.scenarios {
		result = append(result, *sc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scenarios)
}

// Validate reports every structural problem of a scenario in one error.
func Validate(sc models.Scenario) error {
	var problems []string

	if strings.TrimSpace(sc.ID) == "" {
		problems = append(problems, "id is required")
	}
	if strings.TrimSpace(sc.OpeningQuestion()) == "" {
		problems = append(problems, "an opening question is required")
	}
	if len(sc.Keywords.Required) == 0 {
		problems = append(problems, "keywords.required cannot be empty")
	}

	seen := make(map[string]string)
	check := func(category string, list []string) {
		for _, k := range list {
			norm := matcher.Normalize(k)
			if norm == "" {
				problems = append(problems, fmt.Sprintf("keywords.%s contains an empty keyword", category))
				continue
			}
			if prev, ok := seen[norm]; ok {
				if prev == category {
					problems = append(problems, fmt.Sprintf("keyword %q is listed twice in %s", k, category))
				} else {
					problems = append(problems, fmt.Sprintf("keyword %q appears in both %s and %s", k, prev, category))
				}
				continue
			}
			seen[norm] = category
		}
	}
	check("required", sc.Keywords.Required)
	check("bonus", sc.Keywords.Bonus)
	check("forbidden", sc.Keywords.Forbidden)

	fb := sc.Feedback
	for name, msg := range map[string]string{
		"perfect":    fb.Perfect,
		"good":       fb.Good,
		"needs_work": fb.NeedsWork,
		"poor":       fb.Poor,
	} {
		if strings.TrimSpace(msg) == "" {
			problems = append(problems, fmt.Sprintf("feedback.%s is required", name))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("%s", strings.Join(problems, "; "))
}
