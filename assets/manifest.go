package assets

import (
	"context"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"ebiten-forge/gfx"
)

// Manifest lists the assets to load at startup
type Manifest struct {
	Samplers  []SamplerEntry  `yaml:"samplers"`
	Textures  []FileEntry     `yaml:"textures"`
	Meshes    []MeshEntry     `yaml:"meshes"`
	Materials []MaterialEntry `yaml:"materials"`
	Models    []ModelEntry    `yaml:"models"`
	Fonts     []FontEntry     `yaml:"fonts"`
	Audio     []FileEntry     `yaml:"audio"`
}

// FileEntry names an asset backed by a single file
type FileEntry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// MeshEntry is a mesh file or a built-in shape ("quad")
type MeshEntry struct {
	Name    string `yaml:"name"`
	Path    string `yaml:"path,omitempty"`
	Builtin string `yaml:"builtin,omitempty"`
}

type SamplerEntry struct {
	Name   string `yaml:"name"`
	Filter string `yaml:"filter"`
	Repeat bool   `yaml:"repeat"`
}

type MaterialEntry struct {
	Name     string     `yaml:"name"`
	Pipeline string     `yaml:"pipeline"`
	Texture  string     `yaml:"texture,omitempty"`
	Sampler  string     `yaml:"sampler,omitempty"`
	Color    [4]float32 `yaml:"color"`
}

type ModelEntry struct {
	Name  string `yaml:"name"`
	Parts []struct {
		Mesh     string `yaml:"mesh"`
		Material string `yaml:"material"`
	} `yaml:"parts"`
}

type FontEntry struct {
	Name     string `yaml:"name"`
	Material string `yaml:"material"`
	Cell     [2]int `yaml:"cell"`
	Grid     [2]int `yaml:"grid"`
}

// ParseManifest decodes a YAML manifest
func ParseManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, eris.Wrap(err, "decode manifest")
	}
	return &m, nil
}

// ReadManifest decodes the YAML manifest at path
func ReadManifest(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open manifest %s", path)
	}
	defer file.Close()
	return ParseManifest(file)
}

func parsePipeline(name string) (gfx.Pipeline, error) {
	switch name {
	case "model":
		return gfx.PipelineModel, nil
	case "text":
		return gfx.PipelineText, nil
	case "sprite":
		return gfx.PipelineSprite, nil
	}
	return gfx.PipelineNone, eris.Wrapf(ErrInvalidManifest, "unknown pipeline %q", name)
}

func parseFilter(name string) (Filter, error) {
	switch name {
	case "", "nearest":
		return FilterNearest, nil
	case "linear":
		return FilterLinear, nil
	}
	return 0, eris.Wrapf(ErrInvalidManifest, "unknown filter %q", name)
}

// LoadManifest loads every asset in manifest, resolving relative paths
// against dir. Files are decoded concurrently; uploads and pool insertions
// happen afterwards on the calling goroutine, in dependency order.
func (m *Manager) LoadManifest(ctx context.Context, manifest *Manifest, dir string) error {
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	images := make([]image.Image, len(manifest.Textures))
	meshes := make([]MeshData, len(manifest.Meshes))
	clips := make([]AudioClip, len(manifest.Audio))

	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range manifest.Textures {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := DecodeImageFile(resolve(entry.Path))
			if err != nil {
				return eris.Wrapf(err, "texture %q", entry.Name)
			}
			images[i] = img
			return nil
		})
	}
	for i, entry := range manifest.Meshes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			switch {
			case entry.Builtin == "quad":
				meshes[i] = QuadMesh()
			case entry.Builtin != "":
				return eris.Wrapf(ErrInvalidManifest, "mesh %q: unknown builtin %q", entry.Name, entry.Builtin)
			default:
				data, err := DecodeMeshFile(resolve(entry.Path))
				if err != nil {
					return eris.Wrapf(err, "mesh %q", entry.Name)
				}
				meshes[i] = data
			}
			return nil
		})
	}
	for i, entry := range manifest.Audio {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if m.decodeAudio == nil {
				return eris.Wrapf(ErrNoDecoder, "audio %q", entry.Name)
			}
			clip, err := m.decodeAudio(resolve(entry.Path))
			if err != nil {
				return eris.Wrapf(err, "audio %q", entry.Name)
			}
			clips[i] = clip
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, entry := range manifest.Samplers {
		filter, err := parseFilter(entry.Filter)
		if err != nil {
			return eris.Wrapf(err, "sampler %q", entry.Name)
		}
		if _, err := m.Samplers.Add(Sampler{Filter: filter, Repeat: entry.Repeat}, entry.Name); err != nil {
			return err
		}
	}
	for i, entry := range manifest.Textures {
		if _, err := m.UploadTexture(entry.Name, images[i]); err != nil {
			return err
		}
	}
	for i, entry := range manifest.Meshes {
		if _, err := m.UploadMesh(entry.Name, meshes[i]); err != nil {
			return err
		}
	}
	for i, entry := range manifest.Audio {
		if _, err := m.Audio.Add(clips[i], entry.Name); err != nil {
			return err
		}
	}
	for _, entry := range manifest.Materials {
		if err := m.addMaterial(entry); err != nil {
			return eris.Wrapf(err, "material %q", entry.Name)
		}
	}
	for _, entry := range manifest.Models {
		if err := m.addModel(entry); err != nil {
			return eris.Wrapf(err, "model %q", entry.Name)
		}
	}
	for _, entry := range manifest.Fonts {
		if err := m.addFont(entry); err != nil {
			return eris.Wrapf(err, "font %q", entry.Name)
		}
	}

	m.log.Info("loaded asset manifest",
		zap.String("dir", dir),
		zap.Int("textures", len(manifest.Textures)),
		zap.Int("meshes", len(manifest.Meshes)),
		zap.Int("materials", len(manifest.Materials)),
		zap.Int("models", len(manifest.Models)),
		zap.Int("fonts", len(manifest.Fonts)),
		zap.Int("audio", len(manifest.Audio)))
	return nil
}

func (m *Manager) addMaterial(entry MaterialEntry) error {
	pipeline, err := parsePipeline(entry.Pipeline)
	if err != nil {
		return err
	}
	mat := Material{Pipeline: pipeline, Color: mgl32.Vec4(entry.Color)}
	if mat.Color == (mgl32.Vec4{}) {
		mat.Color = mgl32.Vec4{1, 1, 1, 1}
	}
	if entry.Texture != "" {
		if mat.Texture, err = m.Textures.GetHandle(entry.Texture); err != nil {
			return err
		}
		mat.HasTexture = true
	}
	if entry.Sampler != "" {
		if mat.Sampler, err = m.Samplers.GetHandle(entry.Sampler); err != nil {
			return err
		}
		mat.HasSampler = true
	}
	_, err = m.Materials.Add(mat, entry.Name)
	return err
}

func (m *Manager) addModel(entry ModelEntry) error {
	if len(entry.Parts) == 0 {
		return eris.Wrap(ErrInvalidManifest, "model has no parts")
	}
	model := Model{Parts: make([]Part, len(entry.Parts))}
	for i, part := range entry.Parts {
		mesh, err := m.Meshes.GetHandle(part.Mesh)
		if err != nil {
			return err
		}
		mat, err := m.Materials.GetHandle(part.Material)
		if err != nil {
			return err
		}
		model.Parts[i] = Part{Mesh: mesh, Material: mat}
	}
	_, err := m.Models.Add(model, entry.Name)
	return err
}

func (m *Manager) addFont(entry FontEntry) error {
	if entry.Cell[0] <= 0 || entry.Cell[1] <= 0 || entry.Grid[0] <= 0 || entry.Grid[1] <= 0 {
		return eris.Wrapf(ErrInvalidManifest, "cell %v and grid %v must be positive", entry.Cell, entry.Grid)
	}
	mat, err := m.Materials.GetHandle(entry.Material)
	if err != nil {
		return err
	}
	_, err = m.Fonts.Add(Font{
		Material:   mat,
		CellWidth:  entry.Cell[0],
		CellHeight: entry.Cell[1],
		Columns:    entry.Grid[0],
		Rows:       entry.Grid[1],
	}, entry.Name)
	return err
}
