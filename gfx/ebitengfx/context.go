// Package ebitengfx implements gfx.Context on top of ebiten's triangle
// rasterizer.
package ebitengfx

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"ebiten-forge/gfx"
)

// ErrTooManyVertices is returned for buffers ebiten cannot index with uint16
var ErrTooManyVertices = errors.New("buffer exceeds uint16 index range")

type buffer struct {
	vertices []gfx.Vertex
	indices  []uint16
	// sequential indices used for non-indexed draws
	linear []uint16
}

type texture struct {
	image  *ebiten.Image
	width  float32
	height float32
}

// Context records resources in memory and rasterizes draws onto the target
// image set by BeginFrame. World positions go through the push-constant
// model matrix and then View, which maps world units to target pixels.
type Context struct {
	View mgl32.Mat4

	buffers  map[gfx.BufferID]*buffer
	images   map[gfx.ImageID]*texture
	nextID   uint32
	white    *ebiten.Image
	scratch  []ebiten.Vertex
	target   *ebiten.Image
	pipeline gfx.Pipeline
	image    gfx.ImageID
	filter   gfx.Filter
	pc       gfx.PushConstants

	inFlight  uint64
	frame     uint64
	completed uint64
	log       *zap.Logger
}

// NewContext creates a context whose View maps one world unit to one pixel.
// A frame counts as completed once framesInFlight frames, itself included,
// have ended.
func NewContext(framesInFlight int, log *zap.Logger) *Context {
	if framesInFlight < 1 {
		framesInFlight = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	return &Context{
		View:     mgl32.Ident4(),
		buffers:  make(map[gfx.BufferID]*buffer),
		images:   make(map[gfx.ImageID]*texture),
		white:    white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
		inFlight: uint64(framesInFlight),
		log:      log,
	}
}

// CreateBuffer stores a copy of the vertex and index data
func (c *Context) CreateBuffer(vertices []gfx.Vertex, indices []uint16) (gfx.BufferID, error) {
	if len(vertices) > math.MaxUint16+1 {
		return 0, eris.Wrapf(ErrTooManyVertices, "%d vertices", len(vertices))
	}
	linear := make([]uint16, len(vertices))
	for i := range linear {
		linear[i] = uint16(i)
	}
	c.nextID++
	id := gfx.BufferID(c.nextID)
	c.buffers[id] = &buffer{
		vertices: append([]gfx.Vertex(nil), vertices...),
		indices:  append([]uint16(nil), indices...),
		linear:   linear,
	}
	return id, nil
}

// DestroyBuffer frees a buffer. Unknown IDs are ignored.
func (c *Context) DestroyBuffer(id gfx.BufferID) {
	delete(c.buffers, id)
}

// CreateImage uploads img
func (c *Context) CreateImage(img image.Image) (gfx.ImageID, error) {
	b := img.Bounds()
	if b.Empty() {
		return 0, eris.New("empty image")
	}
	c.nextID++
	id := gfx.ImageID(c.nextID)
	c.images[id] = &texture{
		image:  ebiten.NewImageFromImage(img),
		width:  float32(b.Dx()),
		height: float32(b.Dy()),
	}
	return id, nil
}

// DestroyImage frees an image. Unknown IDs are ignored.
func (c *Context) DestroyImage(id gfx.ImageID) {
	if tex, ok := c.images[id]; ok {
		tex.image.Deallocate()
		delete(c.images, id)
	}
}

// BindPipeline sets the pipeline for subsequent draws
func (c *Context) BindPipeline(p gfx.Pipeline) {
	c.pipeline = p
}

// BindImage sets the image sampled by subsequent draws; 0 draws untextured
func (c *Context) BindImage(id gfx.ImageID) {
	c.image = id
}

// BindFilter selects nearest or linear sampling for subsequent draws
func (c *Context) BindFilter(f gfx.Filter) {
	c.filter = f
}

// PushConstants sets the per-draw constants
func (c *Context) PushConstants(pc gfx.PushConstants) {
	c.pc = pc
}

// Draw draws the first vertexCount vertices of buffer as triangles
func (c *Context) Draw(id gfx.BufferID, vertexCount int) {
	buf, ok := c.buffers[id]
	if !ok {
		c.log.Warn("draw from unknown buffer", zap.Uint32("buffer", uint32(id)))
		return
	}
	c.rasterize(buf, buf.linear[:min(vertexCount, len(buf.linear))])
}

// DrawIndexed draws the first indexCount indices of buffer as triangles
func (c *Context) DrawIndexed(id gfx.BufferID, indexCount int) {
	buf, ok := c.buffers[id]
	if !ok {
		c.log.Warn("draw from unknown buffer", zap.Uint32("buffer", uint32(id)))
		return
	}
	c.rasterize(buf, buf.indices[:min(indexCount, len(buf.indices))])
}

func (c *Context) rasterize(buf *buffer, indices []uint16) {
	if c.target == nil || len(indices) < 3 {
		return
	}
	indices = indices[:len(indices)-len(indices)%3]

	src, width, height := c.white, float32(1), float32(1)
	if tex, ok := c.images[c.image]; ok {
		src, width, height = tex.image, tex.width, tex.height
	}
	sampled := src != c.white
	mvp := c.View.Mul4(c.pc.Model)

	c.scratch = c.scratch[:0]
	for _, v := range buf.vertices {
		p := mvp.Mul4x1(v.Position.Vec4(1))
		col := v.Color
		for i := range col {
			col[i] *= c.pc.Color[i]
		}
		ev := ebiten.Vertex{
			DstX:   p.X(),
			DstY:   p.Y(),
			SrcX:   1.5,
			SrcY:   1.5,
			ColorR: col[0],
			ColorG: col[1],
			ColorB: col[2],
			ColorA: col[3],
		}
		if sampled {
			uv := v.UV.Add(c.pc.SpriteOffset)
			ev.SrcX = uv.X() * width
			ev.SrcY = uv.Y() * height
		}
		c.scratch = append(c.scratch, ev)
	}

	op := &ebiten.DrawTrianglesOptions{Filter: ebiten.FilterNearest}
	if c.filter == gfx.FilterLinear {
		op.Filter = ebiten.FilterLinear
	}
	c.target.DrawTriangles(c.scratch, indices, src, op)
}

// BeginFrame starts frame n, drawing onto target
func (c *Context) BeginFrame(n uint64, target *ebiten.Image) {
	c.frame = n
	c.target = target
}

// EndFrame retires the frame that is now framesInFlight frames old
func (c *Context) EndFrame() {
	if c.frame+1 > c.inFlight {
		c.completed = c.frame + 1 - c.inFlight
	}
	c.target = nil
}

// CompletedFrame implements gfx.Fence
func (c *Context) CompletedFrame() uint64 {
	return c.completed
}

// Stats returns the number of live buffers and images
func (c *Context) Stats() (buffers, images int) {
	return len(c.buffers), len(c.images)
}
