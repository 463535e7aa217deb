package assets

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// GlyphAtlas renders the printable ASCII range of face into a grid image
// laid out the way Font expects: glyph i at column i%columns, row
// i/columns, each cell sized cell. Glyphs are white on transparent so text
// color comes from the draw.
func GlyphAtlas(face font.Face, cell image.Point, columns, rows int) *image.RGBA {
	atlas := image.NewRGBA(image.Rect(0, 0, cell.X*columns, cell.Y*rows))
	ascent := face.Metrics().Ascent.Ceil()

	drawer := &font.Drawer{
		Dst:  atlas,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	for i := 0; i < columns*rows; i++ {
		if i < ' ' || i > '~' {
			continue
		}
		x, y := (i%columns)*cell.X, (i/columns)*cell.Y
		clip := image.Rect(x, y, x+cell.X, y+cell.Y)
		drawer.Dst = atlas.SubImage(clip).(draw.Image)
		drawer.Dot = fixed.P(x, y+ascent)
		drawer.DrawString(string(rune(i)))
	}
	return atlas
}
