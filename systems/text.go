package systems

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"

	"ebiten-forge/assets"
	"ebiten-forge/components"
	"ebiten-forge/gfx"
	"ebiten-forge/resource"
)

// GlyphCell returns the column and row of a character in a font's glyph
// grid. Fonts follow the Code Page 437 layout, so the cell index is the
// character code. Characters outside the grid fall back to '?'.
func GlyphCell(font assets.Font, char rune) (int, int) {
	index := int(char)
	if index < 0 || index >= font.Columns*font.Rows {
		index = '?'
	}
	return index % font.Columns, index / font.Columns
}

// LayoutText builds two triangles per glyph, one font cell apart, with rows
// growing downward on each newline. Spaces advance without emitting quads.
// Vertices are white; the text color is applied through push constants.
func LayoutText(font assets.Font, text string) []gfx.Vertex {
	color := mgl32.Vec4{1, 1, 1, 1}
	cw, ch := float32(font.CellWidth), float32(font.CellHeight)
	du, dv := 1/float32(font.Columns), 1/float32(font.Rows)

	vertices := make([]gfx.Vertex, 0, len(text)*6)
	x, y := float32(0), float32(0)
	for _, char := range text {
		switch char {
		case '\n':
			x = 0
			y += ch
			continue
		case ' ':
			x += cw
			continue
		}

		col, row := GlyphCell(font, char)
		u0, v0 := float32(col)*du, float32(row)*dv
		u1, v1 := u0+du, v0+dv

		tl := gfx.Vertex{Position: mgl32.Vec3{x, y, 0}, UV: mgl32.Vec2{u0, v0}, Color: color}
		tr := gfx.Vertex{Position: mgl32.Vec3{x + cw, y, 0}, UV: mgl32.Vec2{u1, v0}, Color: color}
		br := gfx.Vertex{Position: mgl32.Vec3{x + cw, y + ch, 0}, UV: mgl32.Vec2{u1, v1}, Color: color}
		bl := gfx.Vertex{Position: mgl32.Vec3{x, y + ch, 0}, UV: mgl32.Vec2{u0, v1}, Color: color}
		vertices = append(vertices, tl, tr, br, br, bl, tl)
		x += cw
	}
	return vertices
}

// BuildText lays out text with the font behind fontHandle and uploads the
// glyph quads, returning a ready-to-add text component.
func BuildText(manager *assets.Manager, fontHandle resource.Handle[assets.Font], text string, color mgl32.Vec4) (components.TextComponent, error) {
	font, err := manager.Fonts.Get(fontHandle)
	if err != nil {
		return components.TextComponent{}, eris.Wrap(err, "text font")
	}

	comp := components.TextComponent{
		Font:  fontHandle,
		Text:  text,
		Color: color,
	}
	vertices := LayoutText(*font, text)
	if len(vertices) == 0 {
		return comp, nil
	}

	buffer, err := manager.Context().CreateBuffer(vertices, nil)
	if err != nil {
		return components.TextComponent{}, eris.Wrap(err, "upload glyph quads")
	}
	comp.Buffer = buffer
	comp.VertexCount = len(vertices)
	return comp, nil
}

// ReleaseText schedules the component's glyph buffer for destruction
func ReleaseText(manager *assets.Manager, comp components.TextComponent) {
	if comp.VertexCount > 0 {
		manager.ReleaseBuffer(comp.Buffer)
	}
}
