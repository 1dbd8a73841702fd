package geometry

import (
	"math"
	"testing"
)

func square(x, y, size float64) []Point2D {
	return []Point2D{
		{X: x, Y: y},
		{X: x + size, Y: y},
		{X: x + size, Y: y + size},
		{X: x, Y: y + size},
	}
}

func TestFromFlatSplitsAtSentinels(t *testing.T) {
	nan := math.NaN()
	flat := []Point2D{
		{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4},
		{X: nan, Y: nan},
		{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 3}, {X: 1, Y: 3},
	}
	poly := FromFlat(flat)
	if len(poly.Loops) != 2 {
		t.Fatalf("expected 2 loops, got %d", len(poly.Loops))
	}
	if len(poly.Loops[0]) != 4 || len(poly.Loops[1]) != 4 {
		t.Fatalf("unexpected loop sizes: %d, %d", len(poly.Loops[0]), len(poly.Loops[1]))
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	poly := &Polygon{Loops: [][]Point2D{square(0, 0, 4), square(1, 1, 2)}}
	back := FromFlat(poly.Flatten())
	if !poly.Equal(back) {
		t.Fatalf("flat round trip mismatch: %+v vs %+v", poly.Loops, back.Loops)
	}
}

func TestFromFlatDropsEmptySegments(t *testing.T) {
	nan := math.NaN()
	flat := []Point2D{
		{X: nan, Y: nan},
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1},
		{X: nan, Y: nan},
		{X: nan, Y: nan},
	}
	poly := FromFlat(flat)
	if len(poly.Loops) != 1 {
		t.Fatalf("expected 1 loop, got %d", len(poly.Loops))
	}
}

func TestContainsEvenOdd(t *testing.T) {
	// Outer square with a hole in the middle.
	poly := &Polygon{Loops: [][]Point2D{square(0, 0, 10), square(3, 3, 4)}}

	tests := []struct {
		name string
		p    Point2D
		want bool
	}{
		{"inside outer only", Point2D{X: 1, Y: 1}, true},
		{"inside hole", Point2D{X: 5, Y: 5}, false},
		{"outside", Point2D{X: 20, Y: 20}, false},
	}
	for _, tt := range tests {
		if got := poly.Contains(tt.p); got != tt.want {
			t.Errorf("%s: Contains(%v) = %v, want %v", tt.name, tt.p, got, tt.want)
		}
	}
}

func TestBoundingBoxSkipsNaN(t *testing.T) {
	nan := math.NaN()
	pts := []Point2D{
		{X: 1, Y: 2}, {X: nan, Y: nan}, {X: 5, Y: 8},
	}
	bb := BoundingBox(pts)
	if bb.X != 1 || bb.Y != 2 || bb.Width != 4 || bb.Height != 6 {
		t.Fatalf("unexpected bbox: %+v", bb)
	}
	mid := Midpoint(pts)
	if mid.X != 3 || mid.Y != 5 {
		t.Fatalf("unexpected midpoint: %+v", mid)
	}
}

func TestTransformPropagatesNaN(t *testing.T) {
	nan := math.NaN()
	flat := []Point2D{{X: 1, Y: 0}, {X: nan, Y: nan}, {X: 0, Y: 1}}
	rot := Rotation(math.Pi / 2)
	out := make([]Point2D, len(flat))
	for i, p := range flat {
		out[i] = rot.Apply(p)
	}
	if !out[1].HasNaN() {
		t.Fatal("sentinel vertex lost under transform")
	}
	if math.Abs(out[0].X) > 1e-12 || math.Abs(out[0].Y-1) > 1e-12 {
		t.Fatalf("unexpected rotation result: %+v", out[0])
	}
}

func TestRotationAboutCenterFixesCenter(t *testing.T) {
	c := Point2D{X: 3, Y: 4}
	rot := RotationAbout(1.2345, c)
	got := rot.Apply(c)
	if math.Abs(got.X-c.X) > 1e-12 || math.Abs(got.Y-c.Y) > 1e-12 {
		t.Fatalf("center moved under rotation: %+v", got)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	tr := Translation(5, -2).Compose(Rotation(0.7)).Compose(Scaling(2, 3))
	inv, ok := tr.Inverse()
	if !ok {
		t.Fatal("transform not invertible")
	}
	p := Point2D{X: 1.5, Y: -7.25}
	back := inv.Apply(tr.Apply(p))
	if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
		t.Fatalf("inverse round trip mismatch: %+v", back)
	}
}

func TestPolygonArea(t *testing.T) {
	poly := &Polygon{Loops: [][]Point2D{square(0, 0, 2)}}
	if got := poly.Area(); math.Abs(got-4) > 1e-12 {
		t.Fatalf("area = %v, want 4", got)
	}
}
