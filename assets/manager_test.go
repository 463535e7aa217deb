package assets

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebiten-forge/gfx"
	"ebiten-forge/resource"
)

func TestRemoveDefersGPURelease(t *testing.T) {
	rec := gfx.NewRecorder()
	m := NewManager(rec)

	m.BeginFrame(3)
	h, err := m.UploadMesh("quad", QuadMesh())
	require.NoError(t, err)
	assert.Equal(t, 1, rec.LiveBuffers())

	m.BeginFrame(5)
	require.NoError(t, m.Meshes.Remove(h))

	// Handles die immediately, GPU memory waits for the fence
	_, err = m.Meshes.Get(h)
	assert.ErrorIs(t, err, resource.ErrStaleHandle)
	assert.Equal(t, 1, rec.LiveBuffers())
	assert.Equal(t, 1, m.PendingReleases())

	rec.Complete(4)
	assert.Equal(t, 0, m.Collect(rec))
	assert.Equal(t, 1, rec.LiveBuffers())

	rec.Complete(5)
	assert.Equal(t, 1, m.Collect(rec))
	assert.Equal(t, 0, rec.LiveBuffers())
	assert.Equal(t, 0, m.PendingReleases())
}

func TestUploadTexture(t *testing.T) {
	rec := gfx.NewRecorder()
	m := NewManager(rec)

	h, err := m.UploadTexture("atlas", image.NewRGBA(image.Rect(0, 0, 192, 96)))
	require.NoError(t, err)
	tex, err := m.Textures.Get(h)
	require.NoError(t, err)
	assert.Equal(t, 192, tex.Width)
	assert.Equal(t, 96, tex.Height)

	_, err = m.UploadTexture("atlas", image.NewRGBA(image.Rect(0, 0, 1, 1)))
	assert.ErrorIs(t, err, resource.ErrDuplicateName)
	assert.Equal(t, 1, rec.LiveImages())
}

func TestUploadFailures(t *testing.T) {
	rec := gfx.NewRecorder()
	m := NewManager(rec)

	_, err := m.UploadMesh("bad", MeshData{Vertices: QuadMesh().Vertices, Indices: []uint16{0, 1, 9}})
	assert.ErrorIs(t, err, ErrInvalidMesh)

	rec.FailCreate = true
	_, err = m.UploadMesh("quad", QuadMesh())
	assert.ErrorIs(t, err, gfx.ErrInjected)
	assert.Equal(t, 0, m.Meshes.Len())
}

func TestShutdownFlushesEverything(t *testing.T) {
	rec := gfx.NewRecorder()
	m := NewManager(rec)

	mesh, err := m.UploadMesh("quad", QuadMesh())
	require.NoError(t, err)
	tex, err := m.UploadTexture("atlas", image.NewRGBA(image.Rect(0, 0, 4, 4)))
	require.NoError(t, err)
	mat, err := m.Materials.Add(Material{Pipeline: gfx.PipelineModel, Texture: tex, HasTexture: true}, "atlas")
	require.NoError(t, err)
	model, err := m.Models.Add(Model{Parts: []Part{{Mesh: mesh, Material: mat}}}, "crate")
	require.NoError(t, err)

	m.Shutdown()

	assert.Equal(t, 0, rec.LiveBuffers())
	assert.Equal(t, 0, rec.LiveImages())
	assert.Equal(t, 2, rec.Destroyed())
	assert.False(t, m.Models.Valid(model))
	_, err = m.Models.GetHandle("crate")
	assert.ErrorIs(t, err, resource.ErrUnknownName)
}

func TestAudioWithoutDecoder(t *testing.T) {
	m := NewManager(gfx.NewRecorder())
	_, err := m.Audio.Load([]string{"theme.ogg"}, "theme")
	assert.ErrorIs(t, err, ErrNoDecoder)
}

func TestReleaseQueue(t *testing.T) {
	var q ReleaseQueue
	var ran []int
	q.Defer(1, func() { ran = append(ran, 1) })
	q.Defer(2, func() { ran = append(ran, 2) })
	q.Defer(2, func() { ran = append(ran, 3) })
	q.Defer(4, func() { ran = append(ran, 4) })

	assert.Equal(t, 0, q.Collect(0))
	assert.Equal(t, 3, q.Collect(2))
	assert.Equal(t, []int{1, 2, 3}, ran)
	assert.Equal(t, 1, q.Len())

	assert.Equal(t, 1, q.Flush())
	assert.Equal(t, []int{1, 2, 3, 4}, ran)
	assert.Equal(t, 0, q.Len())
}
