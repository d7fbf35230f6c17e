// Package registry holds the score catalog: how each cabinet game labels,
// describes and formats its best score. A package-level catalog built from
// the embedded defaults serves callers that do not load their own.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"text/template"

	"github.com/vovakirdan/arcade-ledger/internal/scores"
)

// ErrDuplicate is returned when a game id is registered twice.
var ErrDuplicate = errors.New("registry: game already registered")

// Fallback texts for games without a catalog entry.
const (
	DefaultLabel = "High Score"
	DefaultEmpty = "No score recorded yet."
)

// ScoreConfig describes how one game presents its high score.
type ScoreConfig struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Label string `yaml:"label"`
	Empty string `yaml:"empty"`

	// Template is a text/template rendered with FormatData. Empty means
	// the plain number.
	Template string `yaml:"format"`

	tmpl *template.Template
}

// Fallback returns the configuration used for games the catalog does not know.
func Fallback(id string) ScoreConfig {
	return ScoreConfig{ID: id, Title: id, Label: DefaultLabel, Empty: DefaultEmpty}
}

// compile parses the format template.
func (c *ScoreConfig) compile() error {
	if c.Template == "" {
		c.tmpl = nil
		return nil
	}
	t, err := newTemplate(c.ID).Parse(c.Template)
	if err != nil {
		return fmt.Errorf("registry: bad format for %q: %w", c.ID, err)
	}
	c.tmpl = t
	return nil
}

// Format renders e. A missing or failing template yields the plain number.
func (c ScoreConfig) Format(e scores.Entry) string {
	if c.tmpl == nil && c.Template != "" {
		if err := c.compile(); err != nil {
			return scores.FormatValue(e.Value)
		}
	}
	if c.tmpl == nil {
		return scores.FormatValue(e.Value)
	}
	out, err := execute(c.tmpl, e)
	if err != nil {
		return scores.FormatValue(e.Value)
	}
	return out
}

// Catalog is a set of score configurations keyed by game id.
type Catalog struct {
	mu      sync.RWMutex
	configs map[string]ScoreConfig
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{configs: make(map[string]ScoreConfig)}
}

// Register adds cfg. Ids must be unique and non-empty; label and empty
// text default to the fallback texts.
func (c *Catalog) Register(cfg ScoreConfig) error {
	if cfg.ID == "" {
		return errors.New("registry: game id is required")
	}
	if cfg.Label == "" {
		cfg.Label = DefaultLabel
	}
	if cfg.Empty == "" {
		cfg.Empty = DefaultEmpty
	}
	if cfg.Title == "" {
		cfg.Title = cfg.ID
	}
	if err := cfg.compile(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.configs[cfg.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicate, cfg.ID)
	}
	c.configs[cfg.ID] = cfg
	return nil
}

// Lookup returns the configuration for id.
func (c *Catalog) Lookup(id string) (ScoreConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cfg, ok := c.configs[id]
	return cfg, ok
}

// Get returns the configuration for id, or the fallback.
func (c *Catalog) Get(id string) ScoreConfig {
	if cfg, ok := c.Lookup(id); ok {
		return cfg
	}
	return Fallback(id)
}

// List returns all configurations, sorted by ID.
func (c *Catalog) List() []ScoreConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]ScoreConfig, 0, len(c.configs))
	for _, cfg := range c.configs {
		result = append(result, cfg)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Exists checks if a game with the given ID is registered.
func (c *Catalog) Exists(id string) bool {
	_, ok := c.Lookup(id)
	return ok
}

// Len returns the number of registered games.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.configs)
}

var std = mustDefaultCatalog()

// Register adds cfg to the package-level catalog.
func Register(cfg ScoreConfig) error { return std.Register(cfg) }

// Lookup looks id up in the package-level catalog.
func Lookup(id string) (ScoreConfig, bool) { return std.Lookup(id) }

// Get returns the package-level configuration for id, or the fallback.
func Get(id string) ScoreConfig { return std.Get(id) }

// List returns the package-level catalog, sorted by ID.
func List() []ScoreConfig { return std.List() }

// Exists checks the package-level catalog for id.
func Exists(id string) bool { return std.Exists(id) }
