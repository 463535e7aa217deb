package assets

import (
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"ebiten-forge/gfx"
)

// MeshData is mesh geometry on the CPU side, before upload
type MeshData struct {
	Vertices []gfx.Vertex
	Indices  []uint16
}

// Validate checks that every index refers to a vertex
func (d MeshData) Validate() error {
	if len(d.Vertices) == 0 {
		return eris.Wrap(ErrInvalidMesh, "no vertices")
	}
	if len(d.Indices)%3 != 0 {
		return eris.Wrapf(ErrInvalidMesh, "%d indices is not a triangle list", len(d.Indices))
	}
	for i, idx := range d.Indices {
		if int(idx) >= len(d.Vertices) {
			return eris.Wrapf(ErrInvalidMesh, "index %d at %d exceeds %d vertices", idx, i, len(d.Vertices))
		}
	}
	return nil
}

// QuadMesh returns a unit quad centered on the origin facing +Z
func QuadMesh() MeshData {
	white := mgl32.Vec4{1, 1, 1, 1}
	return MeshData{
		Vertices: []gfx.Vertex{
			{Position: mgl32.Vec3{-0.5, -0.5, 0}, UV: mgl32.Vec2{0, 1}, Color: white},
			{Position: mgl32.Vec3{0.5, -0.5, 0}, UV: mgl32.Vec2{1, 1}, Color: white},
			{Position: mgl32.Vec3{0.5, 0.5, 0}, UV: mgl32.Vec2{1, 0}, Color: white},
			{Position: mgl32.Vec3{-0.5, 0.5, 0}, UV: mgl32.Vec2{0, 0}, Color: white},
		},
		Indices: []uint16{0, 1, 2, 2, 3, 0},
	}
}

// meshFile is the YAML layout of a mesh file
type meshFile struct {
	Vertices []struct {
		Pos   [3]float32 `yaml:"pos"`
		UV    [2]float32 `yaml:"uv"`
		Color []float32  `yaml:"color,omitempty"`
	} `yaml:"vertices"`
	Indices []uint16 `yaml:"indices"`
}

// DecodeMesh reads YAML mesh data from r
func DecodeMesh(r io.Reader) (MeshData, error) {
	var f meshFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return MeshData{}, eris.Wrap(err, "decode mesh yaml")
	}

	data := MeshData{
		Vertices: make([]gfx.Vertex, len(f.Vertices)),
		Indices:  f.Indices,
	}
	for i, v := range f.Vertices {
		color := mgl32.Vec4{1, 1, 1, 1}
		switch len(v.Color) {
		case 0:
		case 3, 4:
			copy(color[:], v.Color)
		default:
			return MeshData{}, eris.Wrapf(ErrInvalidMesh, "vertex %d has %d color channels", i, len(v.Color))
		}
		data.Vertices[i] = gfx.Vertex{
			Position: mgl32.Vec3(v.Pos),
			UV:       mgl32.Vec2(v.UV),
			Color:    color,
		}
	}
	if err := data.Validate(); err != nil {
		return MeshData{}, err
	}
	return data, nil
}

// DecodeMeshFile reads a YAML mesh file
func DecodeMeshFile(path string) (MeshData, error) {
	file, err := os.Open(path)
	if err != nil {
		return MeshData{}, eris.Wrapf(err, "open mesh %s", path)
	}
	defer file.Close()

	data, err := DecodeMesh(file)
	if err != nil {
		return MeshData{}, eris.Wrapf(err, "mesh %s", path)
	}
	return data, nil
}
