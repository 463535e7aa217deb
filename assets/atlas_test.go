package assets

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/image/font/basicfont"
)

func TestGlyphAtlas(t *testing.T) {
	face := basicfont.Face7x13
	atlas := GlyphAtlas(face, image.Pt(7, 13), 16, 16)
	assert.Equal(t, image.Rect(0, 0, 112, 208), atlas.Bounds())

	opaque := func(col, row int) int {
		n := 0
		for y := row * 13; y < (row+1)*13; y++ {
			for x := col * 7; x < (col+1)*7; x++ {
				if atlas.RGBAAt(x, y).A > 0 {
					n++
				}
			}
		}
		return n
	}
	// 'A' is 65: column 1, row 4
	assert.Positive(t, opaque(1, 4))
	// ' ' and control characters stay empty
	assert.Zero(t, opaque(0, 2))
	assert.Zero(t, opaque(1, 0))
}
