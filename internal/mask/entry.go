// Package mask maintains the registry of named detector masks: polygon
// regions drawn on a view, raw per-detector regions, threshold-derived
// rasters, and imported masks. The registry enforces name uniqueness,
// tracks per-mask visibility, and persists masks as archives.
package mask

import (
	"image/color"

	"xrd-template/internal/raster"
	"xrd-template/pkg/geometry"
)

// Type tags a mask with its origin.
type Type int

const (
	// TypeRegion is a region-of-interest polygon drawn on the integrated
	// (polar) view.
	TypeRegion Type = iota
	// TypeRaw is a polygon drawn directly on a raw detector panel.
	TypeRaw
	// TypeThreshold is the raster derived from an intensity threshold.
	// At most one threshold mask exists per registry.
	TypeThreshold
	// TypeImported is a mask merged in from an archive file.
	TypeImported
)

func (t Type) String() string {
	switch t {
	case TypeRegion:
		return "region"
	case TypeRaw:
		return "raw"
	case TypeThreshold:
		return "threshold"
	case TypeImported:
		return "imported"
	default:
		return "unknown"
	}
}

// Entry is one registered mask. Exactly one of Polygon or Array is set,
// matching the Type: polygon payloads for region/raw masks, raster payloads
// for threshold and imported masks may also be polygons when the archive
// carried vertices.
type Entry struct {
	Name     string
	Type     Type
	Detector string // raw masks only: the panel the polygon belongs to
	Polygon  *geometry.Polygon
	Array    *raster.Mask
	Color    color.RGBA // display color assigned on registration
}

// samePayload reports bit-for-bit payload equality regardless of name or
// type. This is the ingestion dedup rule: the same mask arriving through
// two source formats must not register twice.
func samePayload(a, b *Entry) bool {
	if a.Polygon != nil && b.Polygon != nil {
		return a.Polygon.Equal(b.Polygon)
	}
	if a.Array != nil && b.Array != nil {
		return a.Array.Equal(b.Array)
	}
	return false
}

// palette provides saturated display colors assigned to masks in
// registration order.
var palette = []color.RGBA{
	{255, 0, 0, 255},   // Red
	{0, 255, 0, 255},   // Green
	{0, 0, 255, 255},   // Blue
	{255, 255, 0, 255}, // Yellow
	{255, 0, 255, 255}, // Magenta
	{0, 255, 255, 255}, // Cyan
	{255, 128, 0, 255}, // Orange
	{128, 0, 255, 255}, // Purple
}

// nextColor returns the palette color for the n-th registered mask.
func nextColor(n int) color.RGBA {
	return palette[n%len(palette)]
}
