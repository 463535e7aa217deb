package components

import (
	"ebiten-forge/ecs"
)

// Store is the entity store: an ecs.World plus one fixed-capacity array per
// component type, indexed by entity ID and gated by the entity's signature.
type Store struct {
	world *ecs.World

	transforms  *ecs.Array[TransformComponent]
	models      *ecs.Array[ModelComponent]
	texts       *ecs.Array[TextComponent]
	sprites     *ecs.Array[SpriteComponent]
	colliders   *ecs.Array[ColliderComponent]
	rigidBodies *ecs.Array[RigidBodyComponent]
	parents     *ecs.Array[ParentComponent]
	metadata    *ecs.Array[MetadataComponent]
}

// NewStore creates a store with room for capacity live entities
func NewStore(capacity int) *Store {
	world := ecs.NewWorld(capacity)
	r := world.Registry()
	return &Store{
		world:       world,
		transforms:  ecs.NewArray[TransformComponent](r, Transform),
		models:      ecs.NewArray[ModelComponent](r, Model),
		texts:       ecs.NewArray[TextComponent](r, Text),
		sprites:     ecs.NewArray[SpriteComponent](r, Sprite),
		colliders:   ecs.NewArray[ColliderComponent](r, Collider),
		rigidBodies: ecs.NewArray[RigidBodyComponent](r, RigidBody),
		parents:     ecs.NewArray[ParentComponent](r, Parent),
		metadata:    ecs.NewArray[MetadataComponent](r, Metadata),
	}
}

// World returns the underlying world
func (s *Store) World() *ecs.World {
	return s.world
}

// CreateEntity allocates an entity with an empty signature
func (s *Store) CreateEntity() (ecs.Entity, error) {
	return s.world.CreateEntity()
}

// DestroyEntity clears e's signature and frees its ID
func (s *Store) DestroyEntity(e ecs.Entity) error {
	return s.world.DestroyEntity(e)
}

// Alive reports whether e is a live entity
func (s *Store) Alive(e ecs.Entity) bool {
	return s.world.Registry().Alive(e)
}

// Len returns the number of live entities
func (s *Store) Len() int {
	return s.world.Registry().Len()
}

// Entities returns the live entities in ID order
func (s *Store) Entities() []ecs.Entity {
	return s.world.Registry().Entities()
}

// Each calls fn for every live entity with its signature
func (s *Store) Each(fn func(ecs.Entity, ecs.Signature)) {
	s.world.Registry().Each(fn)
}

// Signature returns e's component signature
func (s *Store) Signature(e ecs.Entity) (ecs.Signature, error) {
	return s.world.Registry().Signature(e)
}

// Has reports whether e has component id
func (s *Store) Has(e ecs.Entity, id ecs.ComponentID) bool {
	return s.world.Registry().Has(e, id)
}

// Remove clears component id from e. The array slot keeps its old data but
// is unreachable until the component is added again.
func (s *Store) Remove(e ecs.Entity, id ecs.ComponentID) error {
	return s.world.Registry().Remove(e, id)
}

// Update advances the world's systems by dt seconds
func (s *Store) Update(dt float64) {
	s.world.Update(dt)
}

// AddTransform sets e's Transform component, replacing any existing one
func (s *Store) AddTransform(e ecs.Entity, c TransformComponent) error {
	return s.transforms.Set(e, c)
}

// AddModel sets e's Model component, replacing any existing one
func (s *Store) AddModel(e ecs.Entity, c ModelComponent) error {
	return s.models.Set(e, c)
}

// AddText sets e's Text component, replacing any existing one
func (s *Store) AddText(e ecs.Entity, c TextComponent) error {
	return s.texts.Set(e, c)
}

// AddSprite sets e's Sprite component, replacing any existing one
func (s *Store) AddSprite(e ecs.Entity, c SpriteComponent) error {
	return s.sprites.Set(e, c)
}

// AddCollider sets e's Collider component, replacing any existing one
func (s *Store) AddCollider(e ecs.Entity, c ColliderComponent) error {
	return s.colliders.Set(e, c)
}

// AddRigidBody sets e's RigidBody component, replacing any existing one
func (s *Store) AddRigidBody(e ecs.Entity, c RigidBodyComponent) error {
	return s.rigidBodies.Set(e, c)
}

// AddParent sets e's Parent component, replacing any existing one
func (s *Store) AddParent(e ecs.Entity, c ParentComponent) error {
	return s.parents.Set(e, c)
}

// AddMetadata sets e's Metadata component, replacing any existing one
func (s *Store) AddMetadata(e ecs.Entity, c MetadataComponent) error {
	return s.metadata.Set(e, c)
}

// Transform returns e's Transform component if it has one
func (s *Store) Transform(e ecs.Entity) (*TransformComponent, bool) {
	return s.transforms.Get(e)
}

// Model returns e's Model component if it has one
func (s *Store) Model(e ecs.Entity) (*ModelComponent, bool) {
	return s.models.Get(e)
}

// Text returns e's Text component if it has one
func (s *Store) Text(e ecs.Entity) (*TextComponent, bool) {
	return s.texts.Get(e)
}

// Sprite returns e's Sprite component if it has one
func (s *Store) Sprite(e ecs.Entity) (*SpriteComponent, bool) {
	return s.sprites.Get(e)
}

// Collider returns e's Collider component if it has one
func (s *Store) Collider(e ecs.Entity) (*ColliderComponent, bool) {
	return s.colliders.Get(e)
}

// RigidBody returns e's RigidBody component if it has one
func (s *Store) RigidBody(e ecs.Entity) (*RigidBodyComponent, bool) {
	return s.rigidBodies.Get(e)
}

// Parent returns e's Parent component if it has one
func (s *Store) Parent(e ecs.Entity) (*ParentComponent, bool) {
	return s.parents.Get(e)
}

// Metadata returns e's Metadata component if it has one
func (s *Store) Metadata(e ecs.Entity) (*MetadataComponent, bool) {
	return s.metadata.Get(e)
}

// FindByTag returns the live entities whose metadata carries tag
func (s *Store) FindByTag(tag string) []ecs.Entity {
	var found []ecs.Entity
	s.Each(func(e ecs.Entity, sig ecs.Signature) {
		if !sig.Has(Metadata) {
			return
		}
		if meta, ok := s.metadata.Get(e); ok && meta.HasTag(tag) {
			found = append(found, e)
		}
	})
	return found
}
