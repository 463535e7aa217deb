package assets

import (
	"image"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"ebiten-forge/gfx"
	"ebiten-forge/resource"
)

// AudioDecoder turns an audio file into a playable clip
type AudioDecoder func(path string) (AudioClip, error)

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the manager's logger
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithAudioDecoder sets the decoder used to load audio clips
func WithAudioDecoder(decode AudioDecoder) Option {
	return func(m *Manager) {
		m.decodeAudio = decode
	}
}

// Manager owns one pool per resource kind. Removing a GPU-backed resource
// invalidates its handles immediately, but the graphics memory is only
// destroyed once the frame it was removed in has passed the context's fence.
type Manager struct {
	Meshes    *resource.Pool[Mesh]
	Models    *resource.Pool[Model]
	Materials *resource.Pool[Material]
	Textures  *resource.Pool[Texture]
	Samplers  *resource.Pool[Sampler]
	Fonts     *resource.Pool[Font]
	Audio     *resource.Pool[AudioClip]

	ctx         gfx.Context
	releases    ReleaseQueue
	frame       uint64
	decodeAudio AudioDecoder
	log         *zap.Logger
}

// NewManager creates a manager whose GPU resources live in ctx
func NewManager(ctx gfx.Context, opts ...Option) *Manager {
	m := &Manager{
		ctx: ctx,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.Meshes = resource.NewPool(
		resource.WithLoader(m.loadMesh),
		resource.WithRelease(func(mesh Mesh) {
			m.deferRelease(func() { m.ctx.DestroyBuffer(mesh.Buffer) })
		}),
	)
	m.Textures = resource.NewPool(
		resource.WithLoader(m.loadTexture),
		resource.WithRelease(func(tex Texture) {
			m.deferRelease(func() { m.ctx.DestroyImage(tex.Image) })
		}),
	)
	m.Audio = resource.NewPool(resource.WithLoader(m.loadAudio))
	m.Models = resource.NewPool[Model]()
	m.Materials = resource.NewPool[Material]()
	m.Samplers = resource.NewPool[Sampler]()
	m.Fonts = resource.NewPool[Font]()
	return m
}

// Context returns the graphics context resources are created in
func (m *Manager) Context() gfx.Context {
	return m.ctx
}

func (m *Manager) deferRelease(release func()) {
	m.releases.Defer(m.frame, release)
}

// BeginFrame records the frame number that subsequent removals belong to
func (m *Manager) BeginFrame(frame uint64) {
	m.frame = frame
}

// Frame returns the current frame number
func (m *Manager) Frame() uint64 {
	return m.frame
}

// Collect destroys the GPU memory of resources removed in frames the fence
// reports as completed.
func (m *Manager) Collect(fence gfx.Fence) int {
	completed := fence.CompletedFrame()
	n := m.releases.Collect(completed)
	if n > 0 {
		m.log.Debug("released gpu resources",
			zap.Int("count", n),
			zap.Uint64("completed_frame", completed),
			zap.Int("pending", m.releases.Len()))
	}
	return n
}

// ReleaseBuffer destroys a buffer that is not owned by a pool, such as a
// text component's glyph quads, once the current frame has completed.
func (m *Manager) ReleaseBuffer(id gfx.BufferID) {
	m.deferRelease(func() { m.ctx.DestroyBuffer(id) })
}

// PendingReleases returns the number of GPU releases waiting on the fence
func (m *Manager) PendingReleases() int {
	return m.releases.Len()
}

// UploadMesh validates data, uploads it and adds the mesh under name
func (m *Manager) UploadMesh(name string, data MeshData) (resource.Handle[Mesh], error) {
	mesh, err := m.createMesh(data)
	if err != nil {
		return resource.Handle[Mesh]{}, eris.Wrapf(err, "mesh %q", name)
	}
	h, err := m.Meshes.Add(mesh, name)
	if err != nil {
		m.ctx.DestroyBuffer(mesh.Buffer)
		return resource.Handle[Mesh]{}, err
	}
	return h, nil
}

// UploadTexture uploads img and adds the texture under name
func (m *Manager) UploadTexture(name string, img image.Image) (resource.Handle[Texture], error) {
	tex, err := m.createTexture(img)
	if err != nil {
		return resource.Handle[Texture]{}, eris.Wrapf(err, "texture %q", name)
	}
	h, err := m.Textures.Add(tex, name)
	if err != nil {
		m.ctx.DestroyImage(tex.Image)
		return resource.Handle[Texture]{}, err
	}
	return h, nil
}

func (m *Manager) createMesh(data MeshData) (Mesh, error) {
	if err := data.Validate(); err != nil {
		return Mesh{}, err
	}
	buffer, err := m.ctx.CreateBuffer(data.Vertices, data.Indices)
	if err != nil {
		return Mesh{}, eris.Wrap(err, "create buffer")
	}
	return Mesh{Buffer: buffer, VertexCount: len(data.Vertices), IndexCount: len(data.Indices)}, nil
}

func (m *Manager) createTexture(img image.Image) (Texture, error) {
	id, err := m.ctx.CreateImage(img)
	if err != nil {
		return Texture{}, eris.Wrap(err, "create image")
	}
	b := img.Bounds()
	return Texture{Image: id, Width: b.Dx(), Height: b.Dy()}, nil
}

func (m *Manager) loadMesh(paths []string) (Mesh, error) {
	if len(paths) != 1 {
		return Mesh{}, eris.Wrapf(ErrInvalidMesh, "mesh takes one path, got %d", len(paths))
	}
	data, err := DecodeMeshFile(paths[0])
	if err != nil {
		return Mesh{}, err
	}
	return m.createMesh(data)
}

func (m *Manager) loadTexture(paths []string) (Texture, error) {
	if len(paths) != 1 {
		return Texture{}, eris.Errorf("texture takes one path, got %d", len(paths))
	}
	img, err := DecodeImageFile(paths[0])
	if err != nil {
		return Texture{}, err
	}
	return m.createTexture(img)
}

func (m *Manager) loadAudio(paths []string) (AudioClip, error) {
	if m.decodeAudio == nil {
		return AudioClip{}, eris.Wrap(ErrNoDecoder, "audio")
	}
	if len(paths) != 1 {
		return AudioClip{}, eris.Errorf("audio takes one path, got %d", len(paths))
	}
	return m.decodeAudio(paths[0])
}

// Shutdown clears every pool and destroys all GPU memory immediately. The
// caller must ensure the graphics context is idle.
func (m *Manager) Shutdown() {
	m.Models.ClearAll()
	m.Fonts.ClearAll()
	m.Materials.ClearAll()
	m.Samplers.ClearAll()
	m.Meshes.ClearAll()
	m.Textures.ClearAll()
	m.Audio.ClearAll()
	n := m.releases.Flush()
	m.log.Info("asset manager shut down", zap.Int("released", n))
}
