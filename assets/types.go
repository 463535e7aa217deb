// Package assets owns the engine's pooled resources: meshes, models,
// materials, textures, samplers, fonts and audio clips.
package assets

import (
	"github.com/go-gl/mathgl/mgl32"

	"ebiten-forge/gfx"
	"ebiten-forge/resource"
)

// Texture is an image uploaded to the graphics context
type Texture struct {
	Image  gfx.ImageID
	Width  int
	Height int
}

// Filter selects texel filtering for a Sampler
type Filter = gfx.Filter

const (
	FilterNearest = gfx.FilterNearest
	FilterLinear  = gfx.FilterLinear
)

// Sampler describes how a material's texture is read
type Sampler struct {
	Filter Filter
	Repeat bool
}

// Material binds a pipeline to an optional texture and sampler and a base
// color. The base color multiplies the drawing component's color; zero means
// white.
type Material struct {
	Pipeline   gfx.Pipeline
	Texture    resource.Handle[Texture]
	HasTexture bool
	Sampler    resource.Handle[Sampler]
	HasSampler bool
	Color      mgl32.Vec4
}

// Tint returns the material color, treating zero as white
func (m Material) Tint() mgl32.Vec4 {
	if m.Color == (mgl32.Vec4{}) {
		return mgl32.Vec4{1, 1, 1, 1}
	}
	return m.Color
}

// Mesh is vertex and index data uploaded to the graphics context
type Mesh struct {
	Buffer      gfx.BufferID
	VertexCount int
	IndexCount  int
}

// Part pairs one mesh with the material it is drawn with
type Part struct {
	Mesh     resource.Handle[Mesh]
	Material resource.Handle[Material]
}

// Model is a set of mesh/material parts drawn with one transform
type Model struct {
	Parts []Part
}

// Font is a bitmap font laid out as a grid of fixed-size glyph cells in the
// texture of its material. Glyph i sits at column i%Columns, row i/Columns.
type Font struct {
	Material   resource.Handle[Material]
	CellWidth  int
	CellHeight int
	Columns    int
	Rows       int
}

// AudioClip is decoded PCM ready for playback
type AudioClip struct {
	PCM        []byte
	SampleRate int
}
