package panel

import (
	"math"
	"strings"
	"testing"

	"xrd-template/pkg/geometry"
)

func TestPlanarPanelMapsCenterAndFlipsRows(t *testing.T) {
	p := NewPlanarPanel(100, 200, 0.5)

	pts := p.CartToPixel([]geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 2}})
	if pts[0].X != 100 || pts[0].Y != 50 {
		t.Fatalf("origin maps to %+v, want (100, 50)", pts[0])
	}
	// +y physical is up, rows grow down.
	if pts[1].X != 102 || pts[1].Y != 46 {
		t.Fatalf("point maps to %+v, want (102, 46)", pts[1])
	}
}

func TestNewPlanarPanelSatisfiesPanel(t *testing.T) {
	// The constructor's return type must be usable wherever a Panel is
	// expected; CartToPixel has a pointer receiver, so value copies do not
	// qualify.
	var det Panel = NewPlanarPanel(10, 10, 1)
	pts := det.CartToPixel([]geometry.Point2D{{X: 0, Y: 0}})
	if pts[0].X != 5 || pts[0].Y != 5 {
		t.Fatalf("origin maps to %+v, want (5, 5)", pts[0])
	}
}

func TestNewPlanarPanelGuardsPixelSize(t *testing.T) {
	p := NewPlanarPanel(10, 10, 0)
	if p.PixelSize != 1 {
		t.Fatalf("pixel size = %g, want 1", p.PixelSize)
	}
	p = NewPlanarPanel(10, 10, -0.5)
	if p.PixelSize != 1 {
		t.Fatalf("pixel size = %g, want 1", p.PixelSize)
	}
}

func TestPlanarPanelPropagatesNaN(t *testing.T) {
	p := NewPlanarPanel(10, 10, 1)
	nan := math.NaN()
	pts := p.CartToPixel([]geometry.Point2D{{X: nan, Y: nan}})
	if !pts[0].HasNaN() {
		t.Fatal("sentinel vertex lost in panel mapping")
	}
}

func TestReadTemplate(t *testing.T) {
	src := `# ring template
1.0 2.0
3.5 -4.25

nan nan
0 0
`
	pts, err := ReadTemplate(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 4 {
		t.Fatalf("got %d points, want 4", len(pts))
	}
	if !pts[2].HasNaN() {
		t.Fatal("nan row not preserved as sentinel")
	}
	if pts[1].X != 3.5 || pts[1].Y != -4.25 {
		t.Fatalf("unexpected point: %+v", pts[1])
	}
}

func TestReadTemplateBadColumnCount(t *testing.T) {
	if _, err := ReadTemplate(strings.NewReader("1.0\n")); err == nil {
		t.Fatal("expected column count error")
	}
}

func TestReadTemplateBadFloat(t *testing.T) {
	if _, err := ReadTemplate(strings.NewReader("1.0 abc\n")); err == nil {
		t.Fatal("expected parse error")
	}
}
