package systems

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"ebiten-forge/assets"
	"ebiten-forge/components"
	"ebiten-forge/ecs"
	"ebiten-forge/gfx"
	"ebiten-forge/resource"
)

// Signatures that select a render path, checked in this order
var (
	modelSignature  = ecs.SignatureOf(components.Transform, components.Model)
	textSignature   = ecs.SignatureOf(components.Transform, components.Text)
	spriteSignature = ecs.SignatureOf(components.Transform, components.Sprite)
)

// RenderStats summarizes one Render call
type RenderStats struct {
	Considered int // Live entities inspected
	Drawn      int // Entities that issued draws
	Skipped    int // Entities matching no render path or with nothing to draw
	Failed     int // Entities dropped because a resource handle was stale
}

// RenderSystem dispatches draws for every live entity based on its
// signature. Model beats Text beats Sprite when an entity has more than one
// renderable component.
type RenderSystem struct {
	ctx    gfx.Context
	assets *assets.Manager
	log    *zap.Logger
	errs   []error
}

// NewRenderSystem creates a render system drawing through ctx
func NewRenderSystem(ctx gfx.Context, manager *assets.Manager, log *zap.Logger) *RenderSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &RenderSystem{
		ctx:    ctx,
		assets: manager,
		log:    log,
	}
}

// Errors returns the per-entity failures from the last Render call. Each
// Render starts a new slice, so earlier results stay intact.
func (s *RenderSystem) Errors() []error {
	return s.errs
}

// Render issues draws for every live entity in the store. An entity whose
// resources have gone stale is skipped and reported; the frame continues.
// Entities that resolve but have nothing to draw count as skipped.
func (s *RenderSystem) Render(store *components.Store) RenderStats {
	var stats RenderStats
	s.errs = nil

	store.Each(func(e ecs.Entity, sig ecs.Signature) {
		stats.Considered++

		var (
			draws int
			err   error
		)
		switch {
		case sig.Contains(modelSignature):
			draws, err = s.drawModel(store, e)
		case sig.Contains(textSignature):
			draws, err = s.drawText(store, e)
		case sig.Contains(spriteSignature):
			draws, err = s.drawSprite(store, e)
		}

		switch {
		case err != nil:
			stats.Failed++
			s.errs = append(s.errs, eris.Wrapf(err, "entity %s", e))
			s.log.Warn("skipped entity draw",
				zap.Stringer("entity", e),
				zap.String("signature", components.FormatSignature(sig)),
				zap.Error(err))
		case draws == 0:
			stats.Skipped++
		default:
			stats.Drawn++
		}
	})

	return stats
}

// material is a material with its texture and filter resolved
type material struct {
	pipeline gfx.Pipeline
	image    gfx.ImageID
	filter   gfx.Filter
	color    mgl32.Vec4
}

func (s *RenderSystem) drawModel(store *components.Store, e ecs.Entity) (int, error) {
	transform, _ := store.Transform(e)
	comp, _ := store.Model(e)

	model, err := s.assets.Models.Get(comp.Model)
	if err != nil {
		return 0, eris.Wrap(err, "model")
	}

	// Resolve every part before drawing so a stale part never leaves a
	// half-drawn model behind.
	meshes := make([]*assets.Mesh, len(model.Parts))
	materials := make([]material, len(model.Parts))
	for i, part := range model.Parts {
		if meshes[i], err = s.assets.Meshes.Get(part.Mesh); err != nil {
			return 0, eris.Wrapf(err, "mesh of part %d", i)
		}
		if materials[i], err = s.resolveMaterial(part.Material, gfx.PipelineModel); err != nil {
			return 0, eris.Wrapf(err, "part %d", i)
		}
	}

	matrix := transform.Matrix().Mul4(comp.LocalMatrix())
	for i := range model.Parts {
		s.bind(materials[i])
		s.ctx.PushConstants(gfx.PushConstants{
			Model: matrix,
			Color: tint(comp.Color, materials[i].color),
		})
		s.drawMesh(meshes[i])
	}
	return len(model.Parts), nil
}

func (s *RenderSystem) drawText(store *components.Store, e ecs.Entity) (int, error) {
	transform, _ := store.Transform(e)
	comp, _ := store.Text(e)

	font, err := s.assets.Fonts.Get(comp.Font)
	if err != nil {
		return 0, eris.Wrap(err, "font")
	}
	mat, err := s.resolveMaterial(font.Material, gfx.PipelineText)
	if err != nil {
		return 0, eris.Wrap(err, "font")
	}
	// Blank text has no glyph buffer
	if comp.VertexCount == 0 {
		return 0, nil
	}

	s.bind(mat)
	s.ctx.PushConstants(gfx.PushConstants{
		Model: transform.Matrix().Mul4(comp.ScaleMatrix()),
		Color: tint(comp.Color, mat.color),
	})
	s.ctx.Draw(comp.Buffer, comp.VertexCount)
	return 1, nil
}

func (s *RenderSystem) drawSprite(store *components.Store, e ecs.Entity) (int, error) {
	transform, _ := store.Transform(e)
	comp, _ := store.Sprite(e)

	mat, err := s.resolveMaterial(comp.Material, gfx.PipelineSprite)
	if err != nil {
		return 0, eris.Wrap(err, "sprite")
	}
	mesh, err := s.assets.Meshes.Get(comp.Mesh)
	if err != nil {
		return 0, eris.Wrap(err, "sprite mesh")
	}

	s.bind(mat)
	s.ctx.PushConstants(gfx.PushConstants{
		Model:        transform.Matrix(),
		Color:        tint(comp.Color, mat.color),
		SpriteOffset: comp.Offset,
	})
	s.drawMesh(mesh)
	return 1, nil
}

// resolveMaterial looks up h and everything it references. A material
// without a pipeline uses fallback. Without a sampler, text is filtered
// nearest and everything else linear.
func (s *RenderSystem) resolveMaterial(h resource.Handle[assets.Material], fallback gfx.Pipeline) (material, error) {
	mat, err := s.assets.Materials.Get(h)
	if err != nil {
		return material{}, eris.Wrap(err, "material")
	}

	resolved := material{
		pipeline: mat.Pipeline,
		filter:   gfx.FilterLinear,
		color:    mat.Tint(),
	}
	if resolved.pipeline == gfx.PipelineNone {
		resolved.pipeline = fallback
	}
	if resolved.pipeline == gfx.PipelineText {
		resolved.filter = gfx.FilterNearest
	}

	if mat.HasTexture {
		tex, err := s.assets.Textures.Get(mat.Texture)
		if err != nil {
			return material{}, eris.Wrap(err, "texture")
		}
		resolved.image = tex.Image
	}
	if mat.HasSampler {
		sampler, err := s.assets.Samplers.Get(mat.Sampler)
		if err != nil {
			return material{}, eris.Wrap(err, "sampler")
		}
		resolved.filter = sampler.Filter
	}
	return resolved, nil
}

func (s *RenderSystem) bind(mat material) {
	s.ctx.BindPipeline(mat.pipeline)
	s.ctx.BindImage(mat.image)
	s.ctx.BindFilter(mat.filter)
}

func (s *RenderSystem) drawMesh(mesh *assets.Mesh) {
	if mesh.IndexCount > 0 {
		s.ctx.DrawIndexed(mesh.Buffer, mesh.IndexCount)
		return
	}
	s.ctx.Draw(mesh.Buffer, mesh.VertexCount)
}

// tint multiplies two colors channel by channel
func tint(a, b mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}
