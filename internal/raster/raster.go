// Package raster rasterizes polygons into binary masks. Sub-loops are
// combined by exclusive-or, so overlapping loops cut holes.
package raster

import (
	"xrd-template/pkg/geometry"
)

// Mask is a binary raster with row-major storage.
type Mask struct {
	W, H int
	Bits []bool
}

// NewMask creates an all-false mask of the given size.
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Bits: make([]bool, w*h)}
}

// At returns the bit at (x, y). Out-of-range coordinates read as false.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.Bits[y*m.W+x]
}

// Set writes the bit at (x, y). Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return
	}
	m.Bits[y*m.W+x] = v
}

// Xor flips every bit of m that is set in other. The masks must have the
// same dimensions; mismatched sizes leave m unchanged.
func (m *Mask) Xor(other *Mask) {
	if other == nil || m.W != other.W || m.H != other.H {
		return
	}
	for i, b := range other.Bits {
		if b {
			m.Bits[i] = !m.Bits[i]
		}
	}
}

// Count returns the number of true bits.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Equal reports bit-for-bit equality, including dimensions.
func (m *Mask) Equal(other *Mask) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.W != other.W || m.H != other.H {
		return false
	}
	for i, b := range m.Bits {
		if b != other.Bits[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	out := NewMask(m.W, m.H)
	copy(out.Bits, m.Bits)
	return out
}

// FillPolygon rasterizes one closed loop into a w x h mask under the
// even-odd rule. Pixels are sampled at their integer grid coordinates and
// the loop is clipped to the mask bounds via its bounding box.
func FillPolygon(loop []geometry.Point2D, w, h int) *Mask {
	m := NewMask(w, h)
	if len(loop) < 3 {
		return m
	}

	bb := geometry.BoundingBox(loop)
	y0 := clampInt(int(bb.Y), 0, h-1)
	y1 := clampInt(int(bb.Y+bb.Height)+1, 0, h-1)
	x0 := clampInt(int(bb.X), 0, w-1)
	x1 := clampInt(int(bb.X+bb.Width)+1, 0, w-1)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			p := geometry.Point2D{X: float64(x), Y: float64(y)}
			if geometry.PointInLoop(p, loop) {
				m.Bits[y*w+x] = true
			}
		}
	}
	return m
}

// Rasterize fills every loop of the polygon and XOR-composites the results.
// An empty loop list yields the all-false mask; callers that pass the result
// to a masking operation will therefore erase everything, which is the
// documented fail-safe for degenerate shapes.
func Rasterize(poly *geometry.Polygon, w, h int) *Mask {
	master := NewMask(w, h)
	if poly == nil {
		return master
	}
	for _, loop := range poly.Loops {
		master.Xor(FillPolygon(loop, w, h))
	}
	return master
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
