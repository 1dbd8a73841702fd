// Package image provides the float-valued detector image buffer that
// templates are cropped against and masks are applied to.
package image

import (
	"fmt"

	"xrd-template/internal/raster"
)

// Buffer is a 2D intensity image with row-major float64 storage. The
// surrounding application owns the buffer; the template engine holds a
// reference and mutates it in place for cropping and masking.
type Buffer struct {
	W, H int
	Pix  []float64
}

// NewBuffer creates a zero-filled buffer.
func NewBuffer(w, h int) *Buffer {
	return &Buffer{W: w, H: h, Pix: make([]float64, w*h)}
}

// At returns the intensity at (x, y). Out-of-range reads return 0.
func (b *Buffer) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return 0
	}
	return b.Pix[y*b.W+x]
}

// Set writes the intensity at (x, y). Out-of-range writes are ignored.
func (b *Buffer) Set(x, y int, v float64) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return
	}
	b.Pix[y*b.W+x] = v
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	out := NewBuffer(b.W, b.H)
	copy(out.Pix, b.Pix)
	return out
}

// Equal reports exact equality of dimensions and pixel data.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.W != other.W || b.H != other.H {
		return false
	}
	for i, v := range b.Pix {
		if v != other.Pix[i] {
			return false
		}
	}
	return true
}

// Crop returns a copy of the sub-rectangle [left, right) x [top, bottom),
// clamped to the buffer bounds.
func (b *Buffer) Crop(left, top, right, bottom int) (*Buffer, error) {
	left = clampInt(left, 0, b.W)
	right = clampInt(right, 0, b.W)
	top = clampInt(top, 0, b.H)
	bottom = clampInt(bottom, 0, b.H)
	if right <= left || bottom <= top {
		return nil, fmt.Errorf("image: empty crop region [%d:%d, %d:%d]", top, bottom, left, right)
	}

	out := NewBuffer(right-left, bottom-top)
	for y := top; y < bottom; y++ {
		src := b.Pix[y*b.W+left : y*b.W+right]
		copy(out.Pix[(y-top)*out.W:], src)
	}
	return out, nil
}

// ZeroOutside zeroes every pixel whose mask bit is false, in place. The mask
// must match the buffer dimensions.
func (b *Buffer) ZeroOutside(m *raster.Mask) error {
	if m == nil || m.W != b.W || m.H != b.H {
		return fmt.Errorf("image: mask size mismatch")
	}
	for i := range b.Pix {
		if !m.Bits[i] {
			b.Pix[i] = 0
		}
	}
	return nil
}

// Extent describes the display extent of a buffer drawn in the raw-image
// orientation: x grows right, y grows down, so Top < Bottom numerically.
type Extent struct {
	Left, Right  float64
	Bottom, Top  float64
}

// Extent returns the display extent of the buffer.
func (b *Buffer) Extent() Extent {
	return Extent{Left: 0, Right: float64(b.W), Bottom: float64(b.H), Top: 0}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
