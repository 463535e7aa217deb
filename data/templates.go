// Package data loads entity templates: named recipes that describe which
// components an entity starts with and which assets they reference.
package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrInvalidTemplate is returned for templates missing required fields
var ErrInvalidTemplate = errors.New("invalid entity template")

// TextTemplate describes a text component
type TextTemplate struct {
	Font  string  `yaml:"font"`
	Value string  `yaml:"value"`
	Scale float32 `yaml:"scale"`
}

// SpriteTemplate describes a sprite component
type SpriteTemplate struct {
	Material string     `yaml:"material"`
	Mesh     string     `yaml:"mesh"`
	Offset   [2]float32 `yaml:"offset"`
}

// ColliderTemplate describes a collider component
type ColliderTemplate struct {
	HalfExtents [3]float32 `yaml:"half_extents"`
	Trigger     bool       `yaml:"trigger"`
}

// EntityTemplate represents a template for creating entities. Asset
// references are names in the asset manager's pools.
type EntityTemplate struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Tags  []string `yaml:"tags"`
	Color string   `yaml:"color"` // Hex, e.g. "#00FF00"; empty is white

	Scale    [3]float32 `yaml:"scale"`
	Rotation float32    `yaml:"rotation"` // Degrees about Z

	Model    string            `yaml:"model"`
	Text     *TextTemplate     `yaml:"text"`
	Sprite   *SpriteTemplate   `yaml:"sprite"`
	Collider *ColliderTemplate `yaml:"collider"`
	Mass     float32           `yaml:"mass"` // Non-zero adds a rigid body
}

// Validate checks that the template can be spawned
func (t *EntityTemplate) Validate() error {
	if t.ID == "" {
		return eris.Wrap(ErrInvalidTemplate, "missing id")
	}
	if t.Text != nil && t.Text.Font == "" {
		return eris.Wrapf(ErrInvalidTemplate, "template %q: text without font", t.ID)
	}
	if t.Sprite != nil && (t.Sprite.Material == "" || t.Sprite.Mesh == "") {
		return eris.Wrapf(ErrInvalidTemplate, "template %q: sprite needs material and mesh", t.ID)
	}
	if t.Mass < 0 {
		return eris.Wrapf(ErrInvalidTemplate, "template %q: negative mass", t.ID)
	}
	return nil
}

// EntityTemplateManager manages all entity templates
type EntityTemplateManager struct {
	Templates map[string]*EntityTemplate
}

// NewEntityTemplateManager creates a new template manager
func NewEntityTemplateManager() *EntityTemplateManager {
	return &EntityTemplateManager{
		Templates: make(map[string]*EntityTemplate),
	}
}

// LoadTemplatesFromDirectory loads every .yaml, .yml and .json template file
// in dirPath, in name order.
func (m *EntityTemplateManager) LoadTemplatesFromDirectory(dirPath string) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return eris.Wrap(err, "read template directory")
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		if err := m.LoadTemplateFromFile(filepath.Join(dirPath, entry.Name())); err != nil {
			return eris.Wrapf(err, "load template from %s", entry.Name())
		}
	}
	return nil
}

// LoadTemplateFromFile loads a single entity template. JSON files parse as
// YAML.
func (m *EntityTemplateManager) LoadTemplateFromFile(filePath string) error {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	var template EntityTemplate
	if err := yaml.Unmarshal(raw, &template); err != nil {
		return eris.Wrapf(ErrInvalidTemplate, "%s: %v", filePath, err)
	}
	return m.Add(&template)
}

// Add validates and registers a template, replacing any with the same ID
func (m *EntityTemplateManager) Add(template *EntityTemplate) error {
	if err := template.Validate(); err != nil {
		return err
	}
	m.Templates[template.ID] = template
	return nil
}

// GetTemplate returns a template by ID
func (m *EntityTemplateManager) GetTemplate(id string) (*EntityTemplate, bool) {
	template, ok := m.Templates[id]
	return template, ok
}

// ParseHexColor converts "#RRGGBB" or "#RRGGBBAA" to a normalized color.
// Anything else yields opaque white.
func ParseHexColor(hex string) mgl32.Vec4 {
	white := mgl32.Vec4{1, 1, 1, 1}
	var r, g, b, a uint8 = 0, 0, 0, 0xff

	switch len(hex) {
	case 7:
		if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return white
		}
	case 9:
		if _, err := fmt.Sscanf(hex, "#%02x%02x%02x%02x", &r, &g, &b, &a); err != nil {
			return white
		}
	default:
		return white
	}
	return mgl32.Vec4{float32(r) / 255, float32(g) / 255, float32(b) / 255, float32(a) / 255}
}
