// Package spawners creates entities from data templates, resolving the
// asset names a template references into pool handles.
package spawners

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"ebiten-forge/assets"
	"ebiten-forge/components"
	"ebiten-forge/data"
	"ebiten-forge/ecs"
	"ebiten-forge/systems"
)

// ErrUnknownTemplate is returned when spawning a template ID that was never
// loaded
var ErrUnknownTemplate = errors.New("unknown entity template")

// EntitySpawner manages the creation of entities from templates
type EntitySpawner struct {
	store     *components.Store
	assets    *assets.Manager
	templates *data.EntityTemplateManager
	log       *zap.Logger
}

// NewEntitySpawner creates a new entity spawner
func NewEntitySpawner(store *components.Store, manager *assets.Manager, templates *data.EntityTemplateManager, log *zap.Logger) *EntitySpawner {
	if log == nil {
		log = zap.NewNop()
	}
	return &EntitySpawner{
		store:     store,
		assets:    manager,
		templates: templates,
		log:       log,
	}
}

// Spawn creates an entity from template id at pos. If any referenced asset
// is missing nothing is created.
func (s *EntitySpawner) Spawn(id string, pos mgl32.Vec3) (ecs.Entity, error) {
	template, ok := s.templates.GetTemplate(id)
	if !ok {
		return ecs.Entity{}, eris.Wrapf(ErrUnknownTemplate, "%q", id)
	}

	parts, err := s.resolve(template)
	if err != nil {
		return ecs.Entity{}, eris.Wrapf(err, "template %q", id)
	}

	e, err := s.store.CreateEntity()
	if err != nil {
		s.releaseParts(parts)
		return ecs.Entity{}, err
	}

	transform := components.NewTransformComponent(pos)
	if template.Scale != ([3]float32{}) {
		transform.Scale = template.Scale
	}
	if template.Rotation != 0 {
		transform.Rotation = mgl32.QuatRotate(mgl32.DegToRad(template.Rotation), mgl32.Vec3{0, 0, 1})
	}

	// Adds on a freshly created entity cannot fail
	_ = s.store.AddTransform(e, transform)
	_ = s.store.AddMetadata(e, components.MetadataComponent{Name: template.Name, Tags: template.Tags})
	if parts.model != nil {
		_ = s.store.AddModel(e, *parts.model)
	}
	if parts.text != nil {
		_ = s.store.AddText(e, *parts.text)
	}
	if parts.sprite != nil {
		_ = s.store.AddSprite(e, *parts.sprite)
	}
	if template.Collider != nil {
		_ = s.store.AddCollider(e, components.ColliderComponent{
			HalfExtents: template.Collider.HalfExtents,
			Trigger:     template.Collider.Trigger,
		})
	}
	if template.Mass > 0 {
		_ = s.store.AddRigidBody(e, components.RigidBodyComponent{Mass: template.Mass})
	}

	s.log.Debug("spawned entity",
		zap.String("template", id),
		zap.Stringer("entity", e))
	return e, nil
}

type resolved struct {
	model  *components.ModelComponent
	text   *components.TextComponent
	sprite *components.SpriteComponent
}

func (s *EntitySpawner) releaseParts(parts resolved) {
	if parts.text != nil {
		systems.ReleaseText(s.assets, *parts.text)
	}
}

func (s *EntitySpawner) resolve(template *data.EntityTemplate) (resolved, error) {
	var parts resolved
	color := data.ParseHexColor(template.Color)

	if template.Model != "" {
		h, err := s.assets.Models.GetHandle(template.Model)
		if err != nil {
			return resolved{}, eris.Wrap(err, "model")
		}
		model := components.NewModelComponent(h, color)
		parts.model = &model
	}

	if template.Sprite != nil {
		material, err := s.assets.Materials.GetHandle(template.Sprite.Material)
		if err != nil {
			return resolved{}, eris.Wrap(err, "sprite material")
		}
		mesh, err := s.assets.Meshes.GetHandle(template.Sprite.Mesh)
		if err != nil {
			return resolved{}, eris.Wrap(err, "sprite mesh")
		}
		parts.sprite = &components.SpriteComponent{
			Material: material,
			Mesh:     mesh,
			Color:    color,
			Offset:   template.Sprite.Offset,
		}
	}

	// Text last: it is the only part that allocates GPU memory
	if template.Text != nil {
		font, err := s.assets.Fonts.GetHandle(template.Text.Font)
		if err != nil {
			return resolved{}, eris.Wrap(err, "text font")
		}
		text, err := systems.BuildText(s.assets, font, template.Text.Value, color)
		if err != nil {
			return resolved{}, err
		}
		if template.Text.Scale != 0 {
			text.Scale = mgl32.Vec3{template.Text.Scale, template.Text.Scale, 1}
		}
		parts.text = &text
	}
	return parts, nil
}

// Despawn destroys e and schedules its text buffer for release
func (s *EntitySpawner) Despawn(e ecs.Entity) error {
	if text, ok := s.store.Text(e); ok {
		systems.ReleaseText(s.assets, *text)
	}
	return s.store.DestroyEntity(e)
}
