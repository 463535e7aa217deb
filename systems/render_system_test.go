package systems

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"ebiten-forge/assets"
	"ebiten-forge/components"
	"ebiten-forge/ecs"
	"ebiten-forge/gfx"
	"ebiten-forge/resource"
)

var white = mgl32.Vec4{1, 1, 1, 1}

type fixture struct {
	rec      *gfx.Recorder
	manager  *assets.Manager
	store    *components.Store
	renderer *RenderSystem
	model    resource.Handle[assets.Model]
	mesh     resource.Handle[assets.Mesh]
	material resource.Handle[assets.Material]
	font     resource.Handle[assets.Font]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec := gfx.NewRecorder()
	manager := assets.NewManager(rec)

	mesh, err := manager.UploadMesh("quad", assets.QuadMesh())
	require.NoError(t, err)
	material, err := manager.Materials.Add(assets.Material{Color: white}, "plain")
	require.NoError(t, err)
	model, err := manager.Models.Add(assets.Model{
		Parts: []assets.Part{{Mesh: mesh, Material: material}},
	}, "cube")
	require.NoError(t, err)

	tex, err := manager.UploadTexture("glyphs", image.NewRGBA(image.Rect(0, 0, 128, 128)))
	require.NoError(t, err)
	fontMaterial, err := manager.Materials.Add(assets.Material{
		Pipeline:   gfx.PipelineText,
		Texture:    tex,
		HasTexture: true,
		Color:      white,
	}, "glyphs")
	require.NoError(t, err)
	font, err := manager.Fonts.Add(assets.Font{
		Material:   fontMaterial,
		CellWidth:  8,
		CellHeight: 8,
		Columns:    16,
		Rows:       16,
	}, "mono")
	require.NoError(t, err)

	return &fixture{
		rec:      rec,
		manager:  manager,
		store:    components.NewStore(16),
		renderer: NewRenderSystem(rec, manager, nil),
		model:    model,
		mesh:     mesh,
		material: material,
		font:     font,
	}
}

func (f *fixture) spawnModel(t *testing.T, pos mgl32.Vec3, model resource.Handle[assets.Model]) ecs.Entity {
	t.Helper()
	e, err := f.store.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, f.store.AddTransform(e, components.NewTransformComponent(pos)))
	require.NoError(t, f.store.AddModel(e, components.NewModelComponent(model, white)))
	return e
}

func TestRenderSingleModel(t *testing.T) {
	f := newFixture(t)
	f.spawnModel(t, mgl32.Vec3{1, 0, 0}, f.model)

	stats := f.renderer.Render(f.store)
	assert.Equal(t, RenderStats{Considered: 1, Drawn: 1}, stats)

	draws := f.rec.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, gfx.PipelineModel, draws[0].Pipeline)
	assert.Equal(t, mgl32.Translate3D(1, 0, 0), draws[0].Constants.Model)
	assert.Equal(t, white, draws[0].Constants.Color)
	assert.True(t, draws[0].Indexed)
	assert.Equal(t, 6, draws[0].Count)
}

func TestRenderRequiresTransform(t *testing.T) {
	f := newFixture(t)
	e, err := f.store.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, f.store.AddModel(e, components.NewModelComponent(f.model, white)))

	stats := f.renderer.Render(f.store)
	assert.Equal(t, RenderStats{Considered: 1, Skipped: 1}, stats)
	assert.Empty(t, f.rec.Draws())
}

func TestRenderModelBeatsTextAndSprite(t *testing.T) {
	f := newFixture(t)
	e := f.spawnModel(t, mgl32.Vec3{}, f.model)
	text, err := BuildText(f.manager, f.font, "hi", white)
	require.NoError(t, err)
	require.NoError(t, f.store.AddText(e, text))
	require.NoError(t, f.store.AddSprite(e, components.SpriteComponent{Material: f.material, Mesh: f.mesh, Color: white}))

	f.renderer.Render(f.store)
	draws := f.rec.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, gfx.PipelineModel, draws[0].Pipeline)
}

func TestRenderTextBeatsSprite(t *testing.T) {
	f := newFixture(t)
	e, _ := f.store.CreateEntity()
	require.NoError(t, f.store.AddTransform(e, components.NewTransformComponent(mgl32.Vec3{0, 5, 0})))
	text, err := BuildText(f.manager, f.font, "ok", mgl32.Vec4{1, 0, 0, 1})
	require.NoError(t, err)
	require.NoError(t, f.store.AddText(e, text))
	require.NoError(t, f.store.AddSprite(e, components.SpriteComponent{Material: f.material, Mesh: f.mesh}))

	f.renderer.Render(f.store)
	draws := f.rec.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, gfx.PipelineText, draws[0].Pipeline)
	assert.NotZero(t, draws[0].Image)
	assert.False(t, draws[0].Indexed)
	assert.Equal(t, 12, draws[0].Count)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, draws[0].Constants.Color)
	assert.Equal(t, mgl32.Translate3D(0, 5, 0), draws[0].Constants.Model)
}

func TestRenderSprite(t *testing.T) {
	f := newFixture(t)
	e, _ := f.store.CreateEntity()
	require.NoError(t, f.store.AddTransform(e, components.NewTransformComponent(mgl32.Vec3{})))
	require.NoError(t, f.store.AddSprite(e, components.SpriteComponent{
		Material: f.material,
		Mesh:     f.mesh,
		Color:    white,
		Offset:   mgl32.Vec2{0.5, 0.25},
	}))

	stats := f.renderer.Render(f.store)
	assert.Equal(t, 1, stats.Drawn)
	draws := f.rec.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, gfx.PipelineSprite, draws[0].Pipeline)
	assert.Equal(t, gfx.ImageID(0), draws[0].Image)
	assert.Equal(t, mgl32.Vec2{0.5, 0.25}, draws[0].Constants.SpriteOffset)
}

func TestRenderStaleModelSkipsEntity(t *testing.T) {
	f := newFixture(t)
	stale, err := f.manager.Models.Add(assets.Model{
		Parts: []assets.Part{{Mesh: f.mesh, Material: f.material}},
	}, "doomed")
	require.NoError(t, err)
	f.spawnModel(t, mgl32.Vec3{}, stale)
	f.spawnModel(t, mgl32.Vec3{2, 0, 0}, f.model)
	require.NoError(t, f.manager.Models.Remove(stale))

	stats := f.renderer.Render(f.store)
	assert.Equal(t, RenderStats{Considered: 2, Drawn: 1, Failed: 1}, stats)
	require.Len(t, f.renderer.Errors(), 1)
	assert.ErrorIs(t, f.renderer.Errors()[0], resource.ErrStaleHandle)

	draws := f.rec.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, mgl32.Translate3D(2, 0, 0), draws[0].Constants.Model)
}

func TestRenderLogsSkippedEntity(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.WarnLevel)
	f.renderer = NewRenderSystem(f.rec, f.manager, zap.New(core))

	e := f.spawnModel(t, mgl32.Vec3{}, f.model)
	require.NoError(t, f.manager.Models.Remove(f.model))
	f.renderer.Render(f.store)

	entries := logs.FilterMessage("skipped entity draw").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, e.String(), fields["entity"])
	assert.Equal(t, "{Transform,Model}", fields["signature"])
}

func TestRenderStalePartDrawsNothing(t *testing.T) {
	f := newFixture(t)
	doomed, err := f.manager.UploadMesh("doomed", assets.QuadMesh())
	require.NoError(t, err)
	model, err := f.manager.Models.Add(assets.Model{Parts: []assets.Part{
		{Mesh: f.mesh, Material: f.material},
		{Mesh: doomed, Material: f.material},
	}}, "pair")
	require.NoError(t, err)
	f.spawnModel(t, mgl32.Vec3{}, model)
	require.NoError(t, f.manager.Meshes.Remove(doomed))

	stats := f.renderer.Render(f.store)
	assert.Equal(t, 1, stats.Failed)
	assert.Empty(t, f.rec.Draws())
}

func TestRenderStaleTextureFailsText(t *testing.T) {
	f := newFixture(t)
	e, _ := f.store.CreateEntity()
	require.NoError(t, f.store.AddTransform(e, components.NewTransformComponent(mgl32.Vec3{})))
	text, err := BuildText(f.manager, f.font, "x", white)
	require.NoError(t, err)
	require.NoError(t, f.store.AddText(e, text))

	tex, err := f.manager.Textures.GetHandle("glyphs")
	require.NoError(t, err)
	require.NoError(t, f.manager.Textures.Remove(tex))

	stats := f.renderer.Render(f.store)
	assert.Equal(t, 1, stats.Failed)
	assert.Empty(t, f.rec.Draws())
	assert.ErrorIs(t, f.renderer.Errors()[0], resource.ErrStaleHandle)
}

func TestRenderDestroyedEntityNotDrawn(t *testing.T) {
	f := newFixture(t)
	e := f.spawnModel(t, mgl32.Vec3{}, f.model)
	require.NoError(t, f.store.DestroyEntity(e))

	stats := f.renderer.Render(f.store)
	assert.Equal(t, RenderStats{}, stats)
	assert.Empty(t, f.rec.Draws())
}

func TestLayoutText(t *testing.T) {
	font := assets.Font{CellWidth: 8, CellHeight: 10, Columns: 16, Rows: 16}

	vertices := LayoutText(font, "A B\nC")
	require.Len(t, vertices, 18)

	// 'A' is 65: column 1, row 4
	assert.Equal(t, mgl32.Vec2{1.0 / 16, 4.0 / 16}, vertices[0].UV)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, vertices[0].Position)
	// 'B' skips a cell for the space
	assert.Equal(t, mgl32.Vec3{16, 0, 0}, vertices[6].Position)
	// 'C' starts the next row
	assert.Equal(t, mgl32.Vec3{0, 10, 0}, vertices[12].Position)
	assert.Equal(t, mgl32.Vec3{8, 20, 0}, vertices[14].Position)
}

func TestGlyphCellFallback(t *testing.T) {
	font := assets.Font{Columns: 16, Rows: 16}
	col, row := GlyphCell(font, '€')
	assert.Equal(t, '?'%16, rune(col))
	assert.Equal(t, '?'/16, rune(row))
}

func TestBuildAndReleaseText(t *testing.T) {
	f := newFixture(t)
	before := f.rec.LiveBuffers()

	text, err := BuildText(f.manager, f.font, "abc", white)
	require.NoError(t, err)
	assert.Equal(t, 18, text.VertexCount)
	assert.Equal(t, before+1, f.rec.LiveBuffers())

	f.manager.BeginFrame(3)
	ReleaseText(f.manager, text)
	f.rec.Complete(2)
	assert.Equal(t, 0, f.manager.Collect(f.rec))
	f.rec.Complete(3)
	assert.Equal(t, 1, f.manager.Collect(f.rec))
	assert.Equal(t, before, f.rec.LiveBuffers())

	empty, err := BuildText(f.manager, f.font, " ", white)
	require.NoError(t, err)
	assert.Zero(t, empty.VertexCount)

	require.NoError(t, f.manager.Fonts.Remove(f.font))
	_, err = BuildText(f.manager, f.font, "abc", white)
	assert.ErrorIs(t, err, resource.ErrStaleHandle)
}

func TestRenderMaterialColorTintsDraw(t *testing.T) {
	f := newFixture(t)
	wood := mgl32.Vec4{0.8, 0.5, 0.25, 1}
	material, err := f.manager.Materials.Add(assets.Material{Color: wood}, "wood")
	require.NoError(t, err)
	model, err := f.manager.Models.Add(assets.Model{
		Parts: []assets.Part{{Mesh: f.mesh, Material: material}},
	}, "crate")
	require.NoError(t, err)

	f.spawnModel(t, mgl32.Vec3{}, model)
	e, _ := f.store.CreateEntity()
	require.NoError(t, f.store.AddTransform(e, components.NewTransformComponent(mgl32.Vec3{})))
	require.NoError(t, f.store.AddSprite(e, components.SpriteComponent{
		Material: material,
		Mesh:     f.mesh,
		Color:    mgl32.Vec4{0.5, 1, 1, 0.5},
	}))

	f.renderer.Render(f.store)
	draws := f.rec.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, wood, draws[0].Constants.Color)
	assert.Equal(t, mgl32.Vec4{0.4, 0.5, 0.25, 0.5}, draws[1].Constants.Color)
}

func TestRenderFontMaterialTintsText(t *testing.T) {
	f := newFixture(t)
	glyphs, err := f.manager.Materials.GetByName("glyphs")
	require.NoError(t, err)
	glyphs.Color = mgl32.Vec4{0.5, 0.5, 0.5, 1}

	e, _ := f.store.CreateEntity()
	require.NoError(t, f.store.AddTransform(e, components.NewTransformComponent(mgl32.Vec3{})))
	text, err := BuildText(f.manager, f.font, "a", mgl32.Vec4{1, 0, 1, 1})
	require.NoError(t, err)
	require.NoError(t, f.store.AddText(e, text))

	f.renderer.Render(f.store)
	draws := f.rec.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, mgl32.Vec4{0.5, 0, 0.5, 1}, draws[0].Constants.Color)
}

func TestRenderSamplerSelectsFilter(t *testing.T) {
	f := newFixture(t)
	sampler, err := f.manager.Samplers.Add(assets.Sampler{Filter: assets.FilterNearest}, "pixel")
	require.NoError(t, err)
	material, err := f.manager.Materials.Add(assets.Material{Sampler: sampler, HasSampler: true}, "pixel")
	require.NoError(t, err)

	sharp, _ := f.store.CreateEntity()
	require.NoError(t, f.store.AddTransform(sharp, components.NewTransformComponent(mgl32.Vec3{})))
	require.NoError(t, f.store.AddSprite(sharp, components.SpriteComponent{Material: material, Mesh: f.mesh, Color: white}))
	smooth, _ := f.store.CreateEntity()
	require.NoError(t, f.store.AddTransform(smooth, components.NewTransformComponent(mgl32.Vec3{})))
	require.NoError(t, f.store.AddSprite(smooth, components.SpriteComponent{Material: f.material, Mesh: f.mesh, Color: white}))

	f.renderer.Render(f.store)
	draws := f.rec.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, gfx.FilterNearest, draws[0].Filter)
	assert.Equal(t, gfx.FilterLinear, draws[1].Filter)

	f.rec.Reset()
	require.NoError(t, f.manager.Samplers.Remove(sampler))
	stats := f.renderer.Render(f.store)
	assert.Equal(t, RenderStats{Considered: 2, Drawn: 1, Failed: 1}, stats)
	assert.ErrorIs(t, f.renderer.Errors()[0], resource.ErrStaleHandle)
	require.Len(t, f.rec.Draws(), 1)
	assert.Equal(t, gfx.FilterLinear, f.rec.Draws()[0].Filter)
}

func TestRenderBlankTextSkipped(t *testing.T) {
	f := newFixture(t)
	e, _ := f.store.CreateEntity()
	require.NoError(t, f.store.AddTransform(e, components.NewTransformComponent(mgl32.Vec3{})))
	text, err := BuildText(f.manager, f.font, "   ", white)
	require.NoError(t, err)
	require.NoError(t, f.store.AddText(e, text))

	stats := f.renderer.Render(f.store)
	assert.Equal(t, RenderStats{Considered: 1, Skipped: 1}, stats)
	assert.Empty(t, f.rec.Draws())
}

func TestRenderEmptyModelSkipped(t *testing.T) {
	f := newFixture(t)
	empty, err := f.manager.Models.Add(assets.Model{}, "empty")
	require.NoError(t, err)
	f.spawnModel(t, mgl32.Vec3{}, empty)

	stats := f.renderer.Render(f.store)
	assert.Equal(t, RenderStats{Considered: 1, Skipped: 1}, stats)
	assert.Empty(t, f.rec.Draws())
}

func TestRenderErrorsSurviveNextRender(t *testing.T) {
	f := newFixture(t)
	stale, err := f.manager.Models.Add(assets.Model{
		Parts: []assets.Part{{Mesh: f.mesh, Material: f.material}},
	}, "doomed")
	require.NoError(t, err)
	e := f.spawnModel(t, mgl32.Vec3{}, stale)
	require.NoError(t, f.manager.Models.Remove(stale))

	f.renderer.Render(f.store)
	first := f.renderer.Errors()
	require.Len(t, first, 1)
	want := first[0]

	require.NoError(t, f.store.DestroyEntity(e))
	broken, err := f.manager.Models.Add(assets.Model{
		Parts: []assets.Part{{Mesh: f.mesh, Material: f.material}},
	}, "broken")
	require.NoError(t, err)
	f.spawnModel(t, mgl32.Vec3{}, broken)
	require.NoError(t, f.manager.Models.Remove(broken))

	f.renderer.Render(f.store)
	require.Len(t, f.renderer.Errors(), 1)
	assert.Same(t, want, first[0])
	assert.NotSame(t, first[0], f.renderer.Errors()[0])
}
