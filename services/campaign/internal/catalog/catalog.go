// Package catalog holds the fixed set of content templates and picks one per run.
package catalog

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"brandcast/services/campaign/internal/entity"

	"gopkg.in/yaml.v3"
)

// Default is the built-in catalog used when no catalog file is configured.
// Its text stays within the glyphs of the bundled Go fonts.
func Default() []entity.ContentTemplate {
	return []entity.ContentTemplate{
		{
			Text:       "Amazing Deal\n50% OFF",
			Caption:    "Limited time offer! Don't miss out! #deals #shopping #offer",
			Background: "#FF6B6B",
			Foreground: "#FFFFFF",
			Style:      entity.StyleBorder,
		},
		{
			Text:       "New Collection\nAvailable Now",
			Caption:    "Check out our latest products! #new #collection #trend",
			Background: "#4ECDC4",
			Foreground: "#FFFFFF",
			Style:      entity.StyleSimple,
		},
		{
			Text:       "Weekend Special\nBig Discount",
			Caption:    "Perfect gifts for everyone! #weekend #special #offer",
			Background: "#95E1D3",
			Foreground: "#FFFFFF",
			Style:      entity.StyleSimple,
		},
	}
}

type file struct {
	Templates []entity.ContentTemplate `yaml:"templates"`
}

// Load reads a YAML catalog of the form `templates: [{text, caption, bg_color, text_color, style}]`.
func Load(path string) ([]entity.ContentTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := Validate(f.Templates); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return f.Templates, nil
}

// Validate fills in the default style and rejects unusable entries.
func Validate(templates []entity.ContentTemplate) error {
	if len(templates) == 0 {
		return errors.New("catalog has no templates")
	}
	for i := range templates {
		t := &templates[i]
		if strings.TrimSpace(t.Text) == "" {
			return fmt.Errorf("template %d: text is required", i)
		}
		if strings.TrimSpace(t.Caption) == "" {
			return fmt.Errorf("template %d: caption is required", i)
		}
		if t.Style == "" {
			t.Style = entity.StyleSimple
		}
		if !t.Style.Valid() {
			return fmt.Errorf("template %d: unknown style %q", i, t.Style)
		}
	}
	return nil
}

// Selector picks templates uniformly at random. Repeats are allowed.
type Selector struct {
	mu        sync.Mutex
	rng       *rand.Rand
	templates []entity.ContentTemplate
}

// NewSelector copies and validates templates. A zero seed seeds from the clock.
func NewSelector(templates []entity.ContentTemplate, seed int64) (*Selector, error) {
	own := make([]entity.ContentTemplate, len(templates))
	copy(own, templates)
	if err := Validate(own); err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Selector{rng: rand.New(rand.NewSource(seed)), templates: own}, nil
}

func (s *Selector) Select() entity.ContentTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templates[s.rng.Intn(len(s.templates))]
}

func (s *Selector) Len() int {
	return len(s.templates)
}

// Templates returns a copy of the catalog.
func (s *Selector) Templates() []entity.ContentTemplate {
	out := make([]entity.ContentTemplate, len(s.templates))
	copy(out, s.templates)
	return out
}
