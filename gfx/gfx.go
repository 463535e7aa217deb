// Package gfx defines the graphics context the engine core draws through.
package gfx

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// BufferID identifies a vertex (and optional index) buffer owned by a Context
type BufferID uint32

// ImageID identifies an image owned by a Context
type ImageID uint32

// Pipeline selects the shading path for subsequent draws
type Pipeline uint8

const (
	PipelineNone Pipeline = iota
	PipelineModel
	PipelineText
	PipelineSprite
)

// String returns the pipeline name
func (p Pipeline) String() string {
	switch p {
	case PipelineModel:
		return "model"
	case PipelineText:
		return "text"
	case PipelineSprite:
		return "sprite"
	default:
		return "none"
	}
}

// Filter selects texel filtering for subsequent draws
type Filter uint8

const (
	FilterNearest Filter = iota
	FilterLinear
)

// Vertex is the single vertex layout used by every pipeline
type Vertex struct {
	Position mgl32.Vec3
	UV       mgl32.Vec2
	Color    mgl32.Vec4
}

// PushConstants are the per-draw values a pipeline reads
type PushConstants struct {
	Model        mgl32.Mat4
	Color        mgl32.Vec4
	SpriteOffset mgl32.Vec2
}

// Context is the graphics API boundary. Resource creation happens at load
// time; binding and drawing happen during render dispatch.
type Context interface {
	CreateBuffer(vertices []Vertex, indices []uint16) (BufferID, error)
	DestroyBuffer(id BufferID)
	CreateImage(img image.Image) (ImageID, error)
	DestroyImage(id ImageID)

	BindPipeline(p Pipeline)
	BindImage(id ImageID)
	BindFilter(f Filter)
	PushConstants(pc PushConstants)
	Draw(buffer BufferID, vertexCount int)
	DrawIndexed(buffer BufferID, indexCount int)
}

// Fence reports the newest frame the GPU has finished reading. Resources
// released in frame n may be destroyed once CompletedFrame() >= n.
type Fence interface {
	CompletedFrame() uint64
}
