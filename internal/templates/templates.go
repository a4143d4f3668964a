// Package templates is the resume template gallery. The catalogue ships
// embedded in the binary.
package templates

import (
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const AllCategories = "All"

var ErrNotFound = errors.New("template not found")

//go:embed catalog.yaml
var catalogYAML []byte

type Template struct {
	ID          int    `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Category    string `yaml:"category" json:"category"`
	Description string `yaml:"description" json:"description"`
	Popular     bool   `yaml:"popular" json:"popular"`
	ATSScore    int    `yaml:"ats_score" json:"atsScore"`
	Font        string `yaml:"font" json:"font"`
	Accent      string `yaml:"accent" json:"accent"`
}

type Catalog struct {
	categories []string
	templates  []Template
}

type catalogFile struct {
	Categories []string   `yaml:"categories"`
	Templates  []Template `yaml:"templates"`
}

// Parse reads a catalogue document. Template ids must be unique and accents
// must be #RRGGBB.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog: %w", err)
	}
	if len(f.Templates) == 0 {
		return nil, errors.New("template catalog is empty")
	}

	seen := make(map[int]bool, len(f.Templates))
	for _, t := range f.Templates {
		if seen[t.ID] {
			return nil, fmt.Errorf("duplicate template id %d", t.ID)
		}
		seen[t.ID] = true
		if _, _, _, err := ParseHex(t.Accent); err != nil {
			return nil, fmt.Errorf("template %d: %w", t.ID, err)
		}
	}

	return &Catalog{categories: f.Categories, templates: f.Templates}, nil
}

var defaultCatalog = mustParse(catalogYAML)

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the embedded catalogue.
func Default() *Catalog { return defaultCatalog }

// Categories are the gallery filters, "All" first.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Filter returns the templates in category; "All" or "" returns everything.
func (c *Catalog) Filter(category string) []Template {
	if category == "" || category == AllCategories {
		return append([]Template(nil), c.templates...)
	}
	out := []Template{}
	for _, t := range c.templates {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

func (c *Catalog) Get(id int) (Template, error) {
	for _, t := range c.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %d", ErrNotFound, id)
}

// Lookup resolves an id as it arrives in a query string. Empty selects the
// first template.
func (c *Catalog) Lookup(raw string) (Template, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return c.templates[0], nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return Template{}, fmt.Errorf("%w: %q", ErrNotFound, raw)
	}
	return c.Get(id)
}

// ParseHex splits a #RRGGBB colour into its components.
func ParseHex(hex string) (r, g, b int, err error) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, fmt.Errorf("invalid colour %q", hex)
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid colour %q", hex)
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), nil
}
