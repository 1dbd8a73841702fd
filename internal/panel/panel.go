// Package panel models the detector-geometry collaborator that maps
// physical (cartesian) coordinates to detector pixel coordinates. Template
// shapes are authored in physical units and mapped into pixel space once, at
// construction time.
package panel

import (
	"xrd-template/pkg/geometry"
)

// Panel maps physical coordinates to fractional pixel coordinates as
// (column, row) pairs.
type Panel interface {
	// CartToPixel maps physical points to pixel space. NaN coordinates
	// must pass through unchanged so sub-loop sentinels survive mapping.
	CartToPixel(pts []geometry.Point2D) []geometry.Point2D
}

// PlanarPanel is a flat detector with square pixels and no distortion. The
// physical origin sits at the panel center; pixel (0, 0) is the top-left
// corner, with rows growing downward.
type PlanarPanel struct {
	Rows, Cols int
	PixelSize  float64 // physical units per pixel
}

// NewPlanarPanel creates a planar panel. A non-positive pixel size defaults
// to 1 so the mapping stays invertible.
func NewPlanarPanel(rows, cols int, pixelSize float64) *PlanarPanel {
	if pixelSize <= 0 {
		pixelSize = 1
	}
	return &PlanarPanel{Rows: rows, Cols: cols, PixelSize: pixelSize}
}

// CartToPixel maps physical (x, y) to fractional pixel (column, row). The
// physical y axis grows upward while rows grow downward, so the row
// coordinate is flipped about the panel center. NaN propagates through the
// arithmetic untouched.
func (p *PlanarPanel) CartToPixel(pts []geometry.Point2D) []geometry.Point2D {
	cx := float64(p.Cols) / 2
	cy := float64(p.Rows) / 2
	out := make([]geometry.Point2D, len(pts))
	for i, pt := range pts {
		out[i] = geometry.Point2D{
			X: pt.X/p.PixelSize + cx,
			Y: cy - pt.Y/p.PixelSize,
		}
	}
	return out
}
