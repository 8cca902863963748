package goal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
)

// TemplateFile is one declarative goal template loaded from YAML.
//
// Facts map state keys to target values; every key must belong to the
// state vocabulary and every value must be a bool, integer, or string.
type TemplateFile struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Priority    int               `yaml:"priority"`
	Timeout     string            `yaml:"timeout"` // duration string; empty = unbounded
	Facts       map[string]any    `yaml:"facts"`
	Labels      map[string]string `yaml:"labels"`
}

// Validate checks the template's invariants.
//
// Postcondition: nil return guarantees a non-empty name, at least one
// fact, all fact keys in the vocabulary, and a parseable timeout.
func (t *TemplateFile) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("goal template: name must not be empty")
	}
	if len(t.Facts) == 0 {
		return fmt.Errorf("goal template %q: facts must not be empty", t.Name)
	}
	if _, err := state.ValidateDict(t.Facts); err != nil {
		return fmt.Errorf("goal template %q: %w", t.Name, err)
	}
	if t.Timeout != "" {
		if _, err := time.ParseDuration(t.Timeout); err != nil {
			return fmt.Errorf("goal template %q: timeout %q is not a valid duration: %w", t.Name, t.Timeout, err)
		}
	}
	return nil
}

// yamlTemplateFile wraps the YAML top-level key.
type yamlTemplateFile struct {
	Goal *TemplateFile `yaml:"goal"`
}

// LoadTemplates reads all *.yaml files from dir and registers each as a
// goal template on m. The template's target state is static: the declared
// facts, independent of current state.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns the loaded template names, or an error if any
// file fails to parse or validate.
func (m *Manager) LoadTemplates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("goal.LoadTemplates: reading %q: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("goal.LoadTemplates: reading %s: %w", e.Name(), err)
		}
		var f yamlTemplateFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("goal.LoadTemplates: parsing %s: %w", e.Name(), err)
		}
		if f.Goal == nil {
			return nil, fmt.Errorf("goal.LoadTemplates: %s missing top-level 'goal' key", e.Name())
		}
		if err := f.Goal.Validate(); err != nil {
			return nil, err
		}

		target, err := state.ValidateDict(f.Goal.Facts)
		if err != nil {
			return nil, err
		}
		m.RegisterTemplate(f.Goal.Name, func(state.State) state.State {
			return target.Clone()
		})
		timeout := time.Duration(0)
		if f.Goal.Timeout != "" {
			timeout, _ = time.ParseDuration(f.Goal.Timeout)
		}
		priority := f.Goal.Priority
		if priority == 0 {
			priority = defaultGoalPriority
		}
		m.meta[f.Goal.Name] = templateMeta{priority: priority, timeout: timeout}
		names = append(names, f.Goal.Name)
	}
	return names, nil
}
