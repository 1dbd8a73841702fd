package image

import (
	"fmt"
	goimage "image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/tiff"
)

// Load reads a detector image (TIFF, PNG, or JPEG) and converts it to a
// grayscale intensity buffer. 16-bit sample depth is preserved.
func Load(path string) (*Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := goimage.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	return FromImage(img), nil
}

// FromImage converts a decoded image to an intensity buffer using the
// standard luminance weights on the 16-bit channel values.
func FromImage(img goimage.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	buf := NewBuffer(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			lum := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)
			buf.Pix[y*w+x] = lum
		}
	}
	return buf
}
