// ABOUTME: Read-only catalog of learning activities tagged by learning style.
// ABOUTME: Loaded once from embedded YAML or an override file; never mutated.

package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed activities.yaml
var embedded []byte

type Activity struct {
	Name           string   `yaml:"name" json:"name"`
	Link           string   `yaml:"link" json:"link"`
	LearningStyles []string `yaml:"learning_styles" json:"learningStyles"`
}

// Matches reports whether the activity suits style.
func (a Activity) Matches(style string) bool {
	return style != "" && slices.Contains(a.LearningStyles, style)
}

// Catalog is an ordered list of activities.
type Catalog struct {
	activities []Activity
}

// Default returns the catalog shipped with the binary.
func Default() *Catalog {
	c, err := parse(embedded)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog from r.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return parse(data)
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path) //nolint:gosec // user-chosen catalog file
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// New builds a catalog from activities, for tests and callers that
// assemble their own list.
func New(activities []Activity) *Catalog {
	return &Catalog{activities: slices.Clone(activities)}
}

func parse(data []byte) (*Catalog, error) {
	var activities []Activity
	if err := yaml.Unmarshal(data, &activities); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, a := range activities {
		if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Link) == "" {
			return nil, fmt.Errorf("catalog entry %d: %w", i, errors.New("name and link are required"))
		}
	}
	return &Catalog{activities: activities}, nil
}

// All returns a copy of every activity in catalog order.
func (c *Catalog) All() []Activity {
	return slices.Clone(c.activities)
}

// ForStyle returns the activities suited to style, in catalog order.
func (c *Catalog) ForStyle(style string) []Activity {
	var out []Activity
	for _, a := range c.activities {
		if a.Matches(style) {
			out = append(out, a)
		}
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.activities)
}
