package components

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"ebiten-forge/assets"
	"ebiten-forge/ecs"
	"ebiten-forge/gfx"
	"ebiten-forge/resource"
)

// TransformComponent places an entity in the world
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3 // Zero means unit scale
}

// NewTransformComponent creates an unrotated, unit-scale transform at pos
func NewTransformComponent(pos mgl32.Vec3) TransformComponent {
	return TransformComponent{
		Position: pos,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix returns translate * rotate * scale
func (t TransformComponent) Matrix() mgl32.Mat4 {
	scale := t.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	rotation := mgl32.Ident4()
	if t.Rotation != (mgl32.Quat{}) {
		rotation = t.Rotation.Normalize().Mat4()
	}
	return mgl32.Translate3D(t.Position.Elem()).
		Mul4(rotation).
		Mul4(mgl32.Scale3D(scale.Elem()))
}

// ModelComponent draws a pooled model
type ModelComponent struct {
	Model resource.Handle[assets.Model]
	Color mgl32.Vec4
	Local mgl32.Mat4 // Applied before the transform; zero means identity
}

// NewModelComponent creates a model component with an identity local matrix
func NewModelComponent(model resource.Handle[assets.Model], color mgl32.Vec4) ModelComponent {
	return ModelComponent{
		Model: model,
		Color: color,
		Local: mgl32.Ident4(),
	}
}

// LocalMatrix returns the local matrix, treating the zero matrix as identity
func (m ModelComponent) LocalMatrix() mgl32.Mat4 {
	if m.Local == (mgl32.Mat4{}) {
		return mgl32.Ident4()
	}
	return m.Local
}

// TextComponent draws a string with a bitmap font. Buffer holds the glyph
// quads laid out for Text; it is built once, not per frame.
type TextComponent struct {
	Font        resource.Handle[assets.Font]
	Text        string
	Scale       mgl32.Vec3 // Zero means unit scale
	Color       mgl32.Vec4
	Buffer      gfx.BufferID
	VertexCount int
}

// ScaleMatrix returns the text's own scale as a matrix
func (t TextComponent) ScaleMatrix() mgl32.Mat4 {
	if t.Scale == (mgl32.Vec3{}) {
		return mgl32.Ident4()
	}
	return mgl32.Scale3D(t.Scale.Elem())
}

// SpriteComponent draws a textured quad. Offset selects the sprite's
// position inside the material's texture atlas.
type SpriteComponent struct {
	Material resource.Handle[assets.Material]
	Mesh     resource.Handle[assets.Mesh]
	Color    mgl32.Vec4
	Offset   mgl32.Vec2
}

// ColliderComponent is an axis-aligned box around the entity's position
type ColliderComponent struct {
	HalfExtents mgl32.Vec3
	Trigger     bool // Reports overlaps without blocking
}

// RigidBodyComponent stores motion state
type RigidBodyComponent struct {
	Velocity mgl32.Vec3
	Mass     float32
}

// ParentComponent refers to the entity this one is attached to. It does not
// own the parent and may go stale when the parent is destroyed.
type ParentComponent struct {
	Entity ecs.Entity
}

// MetadataComponent stores a display name and free-form tags
type MetadataComponent struct {
	Name string
	Tags []string
}

// HasTag checks if the entity has a specific tag
func (m MetadataComponent) HasTag(tag string) bool {
	return slices.Contains(m.Tags, tag)
}
