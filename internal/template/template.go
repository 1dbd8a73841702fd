// Package template implements the interactive template transform engine:
// a multi-loop polygon overlaid on a detector image that can be translated
// and rotated with pointer gestures, scaled, cropped against the image, and
// rasterized into a mask.
package template

import (
	"math"

	"xrd-template/internal/align"
	"xrd-template/internal/image"
	"xrd-template/internal/panel"
	"xrd-template/internal/raster"
	"xrd-template/pkg/geometry"
)

// DefaultHitTolerance is the edge distance, in pixels, within which a press
// just outside the shape still counts as a hit. Substituted when the caller
// does not configure a tolerance.
const DefaultHitTolerance = 3.0

// HitTester decides whether a pointer press at p grabs the shape. The
// default test combines even-odd containment with an edge tolerance; callers
// with a rendering toolkit may substitute its path-containment primitive.
type HitTester func(shape *geometry.Polygon, p geometry.Point2D) bool

// Template owns one multi-loop polygon attached to a detector image buffer.
// All methods are synchronous and must be called from the event-delivery
// thread; the gesture record is the only transient state.
type Template struct {
	shape         *geometry.Polygon
	img           *image.Buffer
	center        geometry.Point2D
	press         *gesture
	totalRotation float64

	hitTest HitTester
	redraw  func()
}

// gesture records one in-progress drag: the polygon snapshot at press time
// and the anchor position in data coordinates.
type gesture struct {
	snapshot *geometry.Polygon
	anchor   geometry.Point2D
}

// New creates a template engine attached to the given image buffer. The
// buffer may be nil until SetImage is called.
func New(img *image.Buffer) *Template {
	return &Template{
		img:     img,
		hitTest: ToleranceHitTester(DefaultHitTolerance),
	}
}

// ToleranceHitTester builds the standard hit test with a configured edge
// tolerance, for callers that surface the tolerance as a user setting.
func ToleranceHitTester(tolerance float64) HitTester {
	return func(shape *geometry.Polygon, p geometry.Point2D) bool {
		return shape.Contains(p) || shape.EdgeDistance(p) <= tolerance
	}
}

// SetHitTester replaces the press hit test.
func (t *Template) SetHitTester(ht HitTester) {
	if ht != nil {
		t.hitTest = ht
	}
}

// OnRedraw registers the notification invoked after any mutation that
// changes on-screen geometry. The collaborator repaints; the engine never
// draws.
func (t *Template) OnRedraw(fn func()) {
	t.redraw = fn
}

func (t *Template) requestRedraw() {
	if t.redraw != nil {
		t.redraw()
	}
}

// CreateShape builds the polygon from raw template-file vertices by mapping
// them through the panel's coordinate transform and swapping the axes into
// the row/column convention. Returns a GeometryError if the mapped data is
// empty or encloses no area.
func (t *Template) CreateShape(raw []geometry.Point2D, pnl panel.Panel) error {
	if len(raw) == 0 {
		return &geometry.GeometryError{Reason: "empty template data"}
	}

	verts := pnl.CartToPixel(raw)
	for i := range verts {
		verts[i].X, verts[i].Y = verts[i].Y, verts[i].X
	}

	poly := geometry.FromFlat(verts)
	if poly.VertexCount() == 0 {
		return &geometry.GeometryError{Reason: "template data is all sentinels"}
	}
	if poly.Area() == 0 {
		return &geometry.GeometryError{Reason: "degenerate template: zero area"}
	}

	t.shape = poly
	t.center = poly.Midpoint()
	t.press = nil
	t.totalRotation = 0
	t.requestRedraw()
	return nil
}

// SetShape attaches an existing polygon, transferring ownership to the
// engine.
func (t *Template) SetShape(poly *geometry.Polygon) {
	t.shape = poly
	t.press = nil
	if poly != nil {
		t.center = poly.Midpoint()
	}
	t.requestRedraw()
}

// Shape returns the current polygon. The engine retains ownership while the
// shape is attached.
func (t *Template) Shape() *geometry.Polygon {
	return t.shape
}

// Clear detaches the polygon from the engine, returning ownership of the
// released shape to the caller.
func (t *Template) Clear() *geometry.Polygon {
	poly := t.shape
	t.shape = nil
	t.press = nil
	t.requestRedraw()
	return poly
}

// SetImage swaps the image buffer the template operates on.
func (t *Template) SetImage(img *image.Buffer) {
	t.img = img
}

// Image returns the current image buffer.
func (t *Template) Image() *image.Buffer {
	return t.img
}

// TotalRotation returns the accumulated rotation in radians. It is signed
// and unbounded: successive gestures sum without wrapping.
func (t *Template) TotalRotation() float64 {
	return t.totalRotation
}

// Midpoint returns the center of the shape's bounding box, ignoring
// sentinel vertices. It must be recomputed whenever the shape may have
// moved, which the gesture entry points do.
func (t *Template) Midpoint() geometry.Point2D {
	if t.shape == nil {
		return geometry.Point2D{}
	}
	return t.shape.Midpoint()
}

// RotateBy rotates the shape by the given angle in degrees about the
// recorded reference center.
func (t *Template) RotateBy(degrees float64) {
	if t.shape == nil {
		return
	}
	radians := degrees * math.Pi / 180
	t.shape.Transform(geometry.RotationAbout(radians, t.center))
	t.requestRedraw()
}

// ScaleBy scales the shape by (sx, sy) about the origin, then re-centers it
// at its pre-scale midpoint so scaling is visually anchored at the shape's
// own center.
func (t *Template) ScaleBy(sx, sy float64) {
	if t.shape == nil {
		return
	}
	t.center = t.shape.Midpoint()
	t.shape.Transform(geometry.Scaling(sx, sy))
	diff := t.center.Sub(t.shape.Midpoint())
	t.shape.Translate(diff.X, diff.Y)
	t.requestRedraw()
}

// Register fits a rigid transform from src onto dst, applies it to the
// shape, and folds its rotation into the accumulated total.
func (t *Template) Register(src, dst []geometry.Point2D) error {
	if t.shape == nil {
		return &geometry.GeometryError{Reason: "no shape attached"}
	}
	tr, theta, err := align.FitRigid(src, dst)
	if err != nil {
		return err
	}
	t.shape.Transform(tr)
	t.totalRotation += theta
	t.center = t.shape.Midpoint()
	t.requestRedraw()
	return nil
}

// CropBounds returns integer pixel bounds (top, bottom, left, right): the
// intersection of the shape's bounding box with the image extent. Bound
// selection follows the extent's own min/max orientation, so it remains
// correct for an inverted display axis.
func (t *Template) CropBounds() (top, bottom, left, right int, err error) {
	if t.shape == nil {
		return 0, 0, 0, 0, &geometry.GeometryError{Reason: "no shape attached"}
	}
	if t.img == nil {
		return 0, 0, 0, 0, &geometry.GeometryError{Reason: "no image attached"}
	}

	ext := t.img.Extent()
	bb := t.shape.Bounds()

	yLo := math.Min(ext.Top, ext.Bottom)
	yHi := math.Max(ext.Top, ext.Bottom)
	xLo := math.Min(ext.Left, ext.Right)
	xHi := math.Max(ext.Left, ext.Right)

	top = int(math.Max(math.Floor(bb.Y), yLo))
	bottom = int(math.Min(math.Ceil(bb.Y+bb.Height), yHi))
	left = int(math.Max(math.Floor(bb.X), xLo))
	right = int(math.Min(math.Ceil(bb.X+bb.Width), xHi))
	return top, bottom, left, right, nil
}

// CropToTemplate slices the image buffer to the crop bounds and shifts the
// shape's vertices by the crop origin so the shape stays registered to the
// cropped frame. Returns the cropped buffer, which replaces the attached
// image.
func (t *Template) CropToTemplate() (*image.Buffer, error) {
	top, bottom, left, right, err := t.CropBounds()
	if err != nil {
		return nil, err
	}
	cropped, err := t.img.Crop(left, top, right, bottom)
	if err != nil {
		return nil, err
	}
	t.img = cropped
	t.shape.Translate(-float64(left), -float64(top))
	t.requestRedraw()
	return cropped, nil
}

// ApplyMask rasterizes each sub-loop, XOR-composites them (overlapping
// loops cut holes), and zeroes every image pixel outside the composite, in
// place. A shape with no loops yields an all-false composite and erases the
// entire image; callers must guard against that when it is not intended.
func (t *Template) ApplyMask() (*raster.Mask, error) {
	if t.img == nil {
		return nil, &geometry.GeometryError{Reason: "no image attached"}
	}
	mask := raster.Rasterize(t.shape, t.img.W, t.img.H)
	if err := t.img.ZeroOutside(mask); err != nil {
		return nil, err
	}
	return mask, nil
}
