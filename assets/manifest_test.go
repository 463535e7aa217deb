package assets

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebiten-forge/gfx"
)

const triangleYAML = `
vertices:
  - pos: [0, 0, 0]
    uv: [0, 0]
  - pos: [1, 0, 0]
    uv: [1, 0]
    color: [1, 0, 0, 1]
  - pos: [0, 1, 0]
    uv: [0, 1]
indices: [0, 1, 2]
`

const manifestYAML = `
samplers:
  - name: pixel
    filter: nearest
textures:
  - name: atlas
    path: atlas.png
meshes:
  - name: quad
    builtin: quad
  - name: tri
    path: tri.yaml
materials:
  - name: atlas
    pipeline: sprite
    texture: atlas
    sampler: pixel
  - name: red
    pipeline: model
    color: [1, 0, 0, 1]
models:
  - name: arrow
    parts:
      - mesh: tri
        material: red
      - mesh: quad
        material: red
fonts:
  - name: curses
    material: atlas
    cell: [12, 12]
    grid: [16, 16]
audio:
  - name: theme
    path: theme.ogg
`

func writeAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	file, err := os.Create(filepath.Join(dir, "atlas.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, image.NewRGBA(image.Rect(0, 0, 192, 192))))
	require.NoError(t, file.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.yaml"), []byte(triangleYAML), 0o644))
	return dir
}

func TestLoadManifest(t *testing.T) {
	dir := writeAssets(t)
	rec := gfx.NewRecorder()
	var decoded []string
	m := NewManager(rec, WithAudioDecoder(func(path string) (AudioClip, error) {
		decoded = append(decoded, filepath.Base(path))
		return AudioClip{PCM: make([]byte, 16), SampleRate: 44100}, nil
	}))

	manifest, err := ParseManifest(strings.NewReader(manifestYAML))
	require.NoError(t, err)
	require.NoError(t, m.LoadManifest(context.Background(), manifest, dir))

	assert.Equal(t, []string{"theme.ogg"}, decoded)
	assert.Equal(t, 2, m.Meshes.Len())
	assert.Equal(t, 1, rec.LiveImages())
	assert.Equal(t, 2, rec.LiveBuffers())

	tri, err := m.Meshes.GetByName("tri")
	require.NoError(t, err)
	assert.Equal(t, 3, tri.VertexCount)
	assert.Equal(t, 3, tri.IndexCount)

	red, err := m.Materials.GetByName("red")
	require.NoError(t, err)
	assert.Equal(t, gfx.PipelineModel, red.Pipeline)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, red.Color)
	assert.False(t, red.HasTexture)
	assert.False(t, red.HasSampler)

	atlas, err := m.Materials.GetByName("atlas")
	require.NoError(t, err)
	assert.True(t, atlas.HasTexture)
	assert.True(t, atlas.HasSampler)
	pixel, err := m.Samplers.Get(atlas.Sampler)
	require.NoError(t, err)
	assert.Equal(t, FilterNearest, pixel.Filter)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, atlas.Color)

	arrow, err := m.Models.GetByName("arrow")
	require.NoError(t, err)
	require.Len(t, arrow.Parts, 2)
	triHandle, _ := m.Meshes.GetHandle("tri")
	assert.Equal(t, triHandle, arrow.Parts[0].Mesh)

	font, err := m.Fonts.GetByName("curses")
	require.NoError(t, err)
	assert.Equal(t, 12, font.CellWidth)
	assert.Equal(t, 16, font.Columns)

	clip, err := m.Audio.GetByName("theme")
	require.NoError(t, err)
	assert.Equal(t, 44100, clip.SampleRate)
}

func TestLoadManifestMissingFile(t *testing.T) {
	m := NewManager(gfx.NewRecorder())
	manifest := &Manifest{Textures: []FileEntry{{Name: "gone", Path: "gone.png"}}}

	err := m.LoadManifest(context.Background(), manifest, t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 0, m.Textures.Len())
}

func TestLoadManifestBadReferences(t *testing.T) {
	m := NewManager(gfx.NewRecorder())

	err := m.LoadManifest(context.Background(), &Manifest{
		Materials: []MaterialEntry{{Name: "m", Pipeline: "wireframe"}},
	}, "")
	assert.ErrorIs(t, err, ErrInvalidManifest)

	err = m.LoadManifest(context.Background(), &Manifest{
		Meshes: []MeshEntry{{Name: "cone", Builtin: "cone"}},
	}, "")
	assert.ErrorIs(t, err, ErrInvalidManifest)

	err = m.LoadManifest(context.Background(), &Manifest{
		Models: []ModelEntry{{Name: "empty"}},
	}, "")
	assert.ErrorIs(t, err, ErrInvalidManifest)
}

func TestDecodeMesh(t *testing.T) {
	data, err := DecodeMesh(strings.NewReader(triangleYAML))
	require.NoError(t, err)
	require.Len(t, data.Vertices, 3)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, data.Vertices[0].Color)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, data.Vertices[1].Color)

	_, err = DecodeMesh(strings.NewReader("vertices: []\nindices: []\n"))
	assert.ErrorIs(t, err, ErrInvalidMesh)

	_, err = DecodeMesh(strings.NewReader("vertices:\n  - pos: [0,0,0]\n    color: [1,2]\n"))
	assert.ErrorIs(t, err, ErrInvalidMesh)
}

func TestDecodeFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := DecodeImageFile(filepath.Join(dir, "gone.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "gone.png")

	_, err = DecodeMeshFile(filepath.Join(dir, "gone.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "gone.yaml")

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))
	_, err = DecodeImageFile(garbage)
	assert.ErrorIs(t, err, image.ErrFormat)
	assert.Contains(t, err.Error(), "garbage.png")
}
