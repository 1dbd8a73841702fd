package geometry

import "math"

// Polygon is an ordered collection of closed sub-loops. Loops may overlap;
// overlapping regions are treated as holes (even-odd rule), which is how
// annular template regions are expressed.
type Polygon struct {
	Loops [][]Point2D
}

// NewPolygon creates a polygon from a single loop.
func NewPolygon(loop []Point2D) *Polygon {
	return &Polygon{Loops: [][]Point2D{loop}}
}

// FromFlat splits a flat vertex list into sub-loops at NaN sentinel
// vertices. This is the on-disk template layout: independent loops separated
// by a single not-a-number coordinate pair. Empty segments are dropped.
func FromFlat(flat []Point2D) *Polygon {
	poly := &Polygon{}
	var loop []Point2D
	for _, p := range flat {
		if p.HasNaN() {
			if len(loop) > 0 {
				poly.Loops = append(poly.Loops, loop)
				loop = nil
			}
			continue
		}
		loop = append(loop, p)
	}
	if len(loop) > 0 {
		poly.Loops = append(poly.Loops, loop)
	}
	return poly
}

// Flatten returns the flat NaN-separated vertex list, the inverse of
// FromFlat. Loops are joined with a single NaN-NaN sentinel vertex.
func (poly *Polygon) Flatten() []Point2D {
	nan := math.NaN()
	var flat []Point2D
	for i, loop := range poly.Loops {
		if i > 0 {
			flat = append(flat, Point2D{X: nan, Y: nan})
		}
		flat = append(flat, loop...)
	}
	return flat
}

// Clone returns a deep copy.
func (poly *Polygon) Clone() *Polygon {
	out := &Polygon{Loops: make([][]Point2D, len(poly.Loops))}
	for i, loop := range poly.Loops {
		out.Loops[i] = make([]Point2D, len(loop))
		copy(out.Loops[i], loop)
	}
	return out
}

// Vertices returns all loop vertices in order, without sentinels.
func (poly *Polygon) Vertices() []Point2D {
	var all []Point2D
	for _, loop := range poly.Loops {
		all = append(all, loop...)
	}
	return all
}

// VertexCount returns the total number of vertices across all loops.
func (poly *Polygon) VertexCount() int {
	n := 0
	for _, loop := range poly.Loops {
		n += len(loop)
	}
	return n
}

// Translate shifts every vertex by (dx, dy) in place.
func (poly *Polygon) Translate(dx, dy float64) {
	for _, loop := range poly.Loops {
		for i := range loop {
			loop[i].X += dx
			loop[i].Y += dy
		}
	}
}

// Transform applies an affine transform to every vertex in place.
func (poly *Polygon) Transform(t AffineTransform) {
	for _, loop := range poly.Loops {
		for i := range loop {
			loop[i] = t.Apply(loop[i])
		}
	}
}

// Bounds returns the axis-aligned bounding box over all loops.
func (poly *Polygon) Bounds() Rect {
	return BoundingBox(poly.Vertices())
}

// Midpoint returns the average of the bounding box corners over all loops.
func (poly *Polygon) Midpoint() Point2D {
	return Midpoint(poly.Vertices())
}

// Area returns the total absolute shoelace area over all loops.
func (poly *Polygon) Area() float64 {
	total := 0.0
	for _, loop := range poly.Loops {
		total += math.Abs(loopArea(loop))
	}
	return total
}

// Contains tests point containment under the even-odd rule: a point inside
// an odd number of loops is inside the polygon, so overlapping loops form
// holes. This is the hit test used for gesture presses.
func (poly *Polygon) Contains(p Point2D) bool {
	inside := false
	for _, loop := range poly.Loops {
		if PointInLoop(p, loop) {
			inside = !inside
		}
	}
	return inside
}

// Equal reports whether two polygons have bit-for-bit identical loops.
func (poly *Polygon) Equal(other *Polygon) bool {
	if poly == nil || other == nil {
		return poly == other
	}
	if len(poly.Loops) != len(other.Loops) {
		return false
	}
	for i, loop := range poly.Loops {
		if len(loop) != len(other.Loops[i]) {
			return false
		}
		for j, p := range loop {
			if p != other.Loops[i][j] {
				return false
			}
		}
	}
	return true
}

// PointInLoop tests if a point is inside a single closed loop using ray
// casting.
func PointInLoop(p Point2D, loop []Point2D) bool {
	if len(loop) < 3 {
		return false
	}

	inside := false
	n := len(loop)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := loop[i], loop[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// loopArea computes the signed shoelace area of a closed loop.
func loopArea(loop []Point2D) float64 {
	if len(loop) < 3 {
		return 0
	}
	sum := 0.0
	n := len(loop)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += loop[i].X*loop[j].Y - loop[j].X*loop[i].Y
	}
	return sum / 2
}

// EdgeDistance returns the minimum distance from p to any loop edge.
// Returns +Inf for a polygon with no edges.
func (poly *Polygon) EdgeDistance(p Point2D) float64 {
	best := math.Inf(1)
	for _, loop := range poly.Loops {
		n := len(loop)
		if n < 2 {
			continue
		}
		for i := 0; i < n; i++ {
			d := distToSegment(p, loop[i], loop[(i+1)%n])
			if d < best {
				best = d
			}
		}
	}
	return best
}

// distToSegment computes the distance from p to the segment a-b.
func distToSegment(p, a, b Point2D) float64 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Distance(a.Add(ab.Scale(t)))
}
