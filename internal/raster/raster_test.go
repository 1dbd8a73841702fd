package raster

import (
	"testing"

	"xrd-template/pkg/geometry"
)

func rect(x, y, w, h float64) []geometry.Point2D {
	return []geometry.Point2D{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}
}

func TestFillPolygonBasic(t *testing.T) {
	m := FillPolygon(rect(2, 2, 5, 5), 10, 10)

	if !m.At(4, 4) {
		t.Error("interior pixel not filled")
	}
	if m.At(0, 0) || m.At(9, 9) {
		t.Error("exterior pixel filled")
	}
	if m.Count() == 0 {
		t.Fatal("nothing rasterized")
	}
}

func TestFillPolygonDegenerateLoop(t *testing.T) {
	m := FillPolygon(rect(0, 0, 4, 4)[:2], 8, 8)
	if m.Count() != 0 {
		t.Fatalf("degenerate loop filled %d pixels", m.Count())
	}
}

func TestRasterizeHole(t *testing.T) {
	poly := &geometry.Polygon{Loops: [][]geometry.Point2D{
		rect(0, 0, 9, 9),
		rect(3, 3, 3, 3),
	}}
	m := Rasterize(poly, 10, 10)

	if !m.At(1, 1) {
		t.Error("ring interior not filled")
	}
	if m.At(4, 4) {
		t.Error("hole pixel filled")
	}
}

func TestRasterizeIdenticalLoopsCancel(t *testing.T) {
	loop := rect(1, 1, 6, 6)
	poly := &geometry.Polygon{Loops: [][]geometry.Point2D{loop, loop}}
	m := Rasterize(poly, 10, 10)
	if m.Count() != 0 {
		t.Fatalf("identical loops should cancel, %d pixels set", m.Count())
	}
}

func TestRasterizeEmptyPolygon(t *testing.T) {
	m := Rasterize(&geometry.Polygon{}, 5, 5)
	if m.Count() != 0 {
		t.Fatal("empty polygon should rasterize to all-false")
	}
	m = Rasterize(nil, 5, 5)
	if m.Count() != 0 {
		t.Fatal("nil polygon should rasterize to all-false")
	}
}

func TestRasterizeIdempotent(t *testing.T) {
	poly := &geometry.Polygon{Loops: [][]geometry.Point2D{rect(2, 1, 5, 6)}}
	a := Rasterize(poly, 12, 9)
	b := Rasterize(poly, 12, 9)
	if !a.Equal(b) {
		t.Fatal("rasterization not deterministic")
	}
}

func TestXorSizeMismatchIgnored(t *testing.T) {
	a := NewMask(4, 4)
	a.Set(1, 1, true)
	before := a.Clone()
	a.Xor(NewMask(3, 3))
	if !a.Equal(before) {
		t.Fatal("size-mismatched Xor mutated mask")
	}
}

func TestMaskOutOfRangeAccess(t *testing.T) {
	m := NewMask(3, 3)
	if m.At(-1, 0) || m.At(0, 5) {
		t.Error("out-of-range At should read false")
	}
	m.Set(-1, 0, true)
	m.Set(0, 5, true)
	if m.Count() != 0 {
		t.Error("out-of-range Set should be ignored")
	}
}
