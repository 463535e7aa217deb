package gfx

import (
	"errors"
	"image"
)

// ErrInjected is returned by a Recorder when FailCreate is set
var ErrInjected = errors.New("injected graphics failure")

// DrawCall is one draw captured by a Recorder together with the state bound
// when it was issued.
type DrawCall struct {
	Pipeline  Pipeline
	Image     ImageID
	Filter    Filter
	Buffer    BufferID
	Count     int
	Indexed   bool
	Constants PushConstants
}

// Recorder is an in-memory Context that records draws instead of issuing
// them. It also acts as a Fence driven by Complete.
type Recorder struct {
	FailCreate bool

	draws     []DrawCall
	buffers   map[BufferID]int
	images    map[ImageID]image.Rectangle
	nextID    uint32
	pipeline  Pipeline
	image     ImageID
	filter    Filter
	constants PushConstants
	completed uint64
	destroyed int
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{
		buffers: make(map[BufferID]int),
		images:  make(map[ImageID]image.Rectangle),
	}
}

// CreateBuffer tracks a new buffer of len(vertices) vertices, failing when FailCreate is set
func (r *Recorder) CreateBuffer(vertices []Vertex, indices []uint16) (BufferID, error) {
	if r.FailCreate {
		return 0, ErrInjected
	}
	r.nextID++
	id := BufferID(r.nextID)
	r.buffers[id] = len(vertices)
	return id, nil
}

// DestroyBuffer forgets a live buffer and counts the destruction
func (r *Recorder) DestroyBuffer(id BufferID) {
	if _, ok := r.buffers[id]; ok {
		delete(r.buffers, id)
		r.destroyed++
	}
}

// CreateImage tracks a new image with img's bounds, failing when FailCreate is set
func (r *Recorder) CreateImage(img image.Image) (ImageID, error) {
	if r.FailCreate {
		return 0, ErrInjected
	}
	r.nextID++
	id := ImageID(r.nextID)
	r.images[id] = img.Bounds()
	return id, nil
}

// DestroyImage forgets a live image and counts the destruction
func (r *Recorder) DestroyImage(id ImageID) {
	if _, ok := r.images[id]; ok {
		delete(r.images, id)
		r.destroyed++
	}
}

// BindPipeline sets the pipeline recorded with subsequent draws
func (r *Recorder) BindPipeline(p Pipeline) {
	r.pipeline = p
}

// BindImage sets the image recorded with subsequent draws
func (r *Recorder) BindImage(id ImageID) {
	r.image = id
}

// BindFilter sets the filter recorded with subsequent draws
func (r *Recorder) BindFilter(f Filter) {
	r.filter = f
}

// PushConstants sets the constants recorded with subsequent draws
func (r *Recorder) PushConstants(pc PushConstants) {
	r.constants = pc
}

// Draw records a non-indexed draw
func (r *Recorder) Draw(buffer BufferID, vertexCount int) {
	r.record(buffer, vertexCount, false)
}

// DrawIndexed records an indexed draw
func (r *Recorder) DrawIndexed(buffer BufferID, indexCount int) {
	r.record(buffer, indexCount, true)
}

func (r *Recorder) record(buffer BufferID, count int, indexed bool) {
	r.draws = append(r.draws, DrawCall{
		Pipeline:  r.pipeline,
		Image:     r.image,
		Filter:    r.filter,
		Buffer:    buffer,
		Count:     count,
		Indexed:   indexed,
		Constants: r.constants,
	})
}

// Draws returns the draws recorded since the last Reset
func (r *Recorder) Draws() []DrawCall {
	return r.draws
}

// Reset forgets recorded draws and bound state, keeping live resources
func (r *Recorder) Reset() {
	r.draws = r.draws[:0]
	r.pipeline = PipelineNone
	r.image = 0
	r.filter = FilterNearest
	r.constants = PushConstants{}
}

// LiveBuffers returns the number of buffers not yet destroyed
func (r *Recorder) LiveBuffers() int {
	return len(r.buffers)
}

// LiveImages returns the number of images not yet destroyed
func (r *Recorder) LiveImages() int {
	return len(r.images)
}

// Destroyed returns how many buffers and images have been destroyed
func (r *Recorder) Destroyed() int {
	return r.destroyed
}

// Complete marks frame as finished on the GPU side
func (r *Recorder) Complete(frame uint64) {
	r.completed = frame
}

// CompletedFrame implements Fence
func (r *Recorder) CompletedFrame() uint64 {
	return r.completed
}
