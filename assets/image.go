package assets

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/rotisserie/eris"
)

// DecodeImageFile decodes a PNG or JPEG file
func DecodeImageFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open image %s", path)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, eris.Wrapf(err, "decode image %s", path)
	}
	return img, nil
}
