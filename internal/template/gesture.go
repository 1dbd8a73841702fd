package template

import (
	"math"

	"xrd-template/pkg/geometry"
)

// Pointer is one pointer-event position. Data holds the position in data
// (pixel) coordinates and is meaningful only when HasData is true; Device
// is the raw device position, which is always available and is used to pick
// a substitute when the cursor leaves the plotted axes.
type Pointer struct {
	Data    geometry.Point2D
	HasData bool
	Device  geometry.Point2D
}

// At builds an in-axes pointer at data coordinates (x, y).
func At(x, y float64) Pointer {
	p := geometry.Point2D{X: x, Y: y}
	return Pointer{Data: p, HasData: true, Device: p}
}

// BeginTranslate starts a translate gesture if the press hits the shape.
// A miss, a missing shape, or an out-of-axes press is a no-op.
func (t *Template) BeginTranslate(p Pointer) {
	if t.shape == nil || !p.HasData {
		return
	}
	if !t.hitTest(t.shape, p.Data) {
		return
	}
	t.press = &gesture{snapshot: t.shape.Clone(), anchor: p.Data}
}

// UpdateTranslate moves the shape to snapshot + (pointer - anchor). No-op
// without an active gesture or when the pointer has left the axes.
func (t *Template) UpdateTranslate(p Pointer) {
	if t.press == nil || !p.HasData {
		return
	}
	delta := p.Data.Sub(t.press.anchor)
	t.center = t.shape.Midpoint()
	moved := t.press.snapshot.Clone()
	moved.Translate(delta.X, delta.Y)
	t.shape = moved
	t.requestRedraw()
}

// EndTranslate finalizes the position with the same displacement as
// UpdateTranslate and clears the gesture record.
func (t *Template) EndTranslate(p Pointer) {
	if t.press == nil {
		return
	}
	if p.HasData {
		delta := p.Data.Sub(t.press.anchor)
		moved := t.press.snapshot.Clone()
		moved.Translate(delta.X, delta.Y)
		t.shape = moved
	}
	t.press = nil
	t.requestRedraw()
}

// BeginRotate starts a rotate gesture if the press hits the shape. The
// reference center is recomputed from the current shape, since it may have
// moved since the last gesture.
func (t *Template) BeginRotate(p Pointer) {
	if t.shape == nil || !p.HasData {
		return
	}
	if !t.hitTest(t.shape, p.Data) {
		return
	}
	t.center = t.shape.Midpoint()
	t.press = &gesture{snapshot: t.shape.Clone(), anchor: p.Data}
}

// Angle returns the signed angle, in (-pi, pi], from the anchor vector to
// the current pointer vector, both taken from the reference center and
// normalized: atan2(det(v0, v1), dot(v0, v1)). Returns 0 without an active
// gesture.
func (t *Template) Angle(p Pointer) float64 {
	if t.press == nil {
		return 0
	}
	v0 := t.press.anchor.Sub(t.center).Unit()
	v1 := t.pointerData(p).Sub(t.center).Unit()
	return math.Atan2(v0.Cross(v1), v0.Dot(v1))
}

// pointerData resolves the pointer's data position. Outside the axes the
// data coordinates are undefined, so each coordinate is substituted with 0
// or the axis extent depending on which side of the shape midpoint the raw
// device position falls, keeping the rotation angle continuous.
func (t *Template) pointerData(p Pointer) geometry.Point2D {
	if p.HasData {
		return p.Data
	}

	mid := t.shape.Midpoint()
	out := geometry.Point2D{X: 0, Y: 0}
	if t.img != nil {
		ext := t.img.Extent()
		if p.Device.X >= mid.X {
			out.X = math.Max(ext.Left, ext.Right)
		}
		if p.Device.Y >= mid.Y {
			out.Y = math.Max(ext.Top, ext.Bottom)
		}
	}
	return out
}

// UpdateRotate re-applies the current signed angle to the press snapshot.
// The accumulated total is untouched until release, so repeated updates
// never compound.
func (t *Template) UpdateRotate(p Pointer) {
	if t.press == nil {
		return
	}
	t.applyRotation(t.Angle(p))
	t.requestRedraw()
}

// EndRotate applies the final signed angle, adds it to the accumulated
// total, and clears the gesture record.
func (t *Template) EndRotate(p Pointer) {
	if t.press == nil {
		return
	}
	angle := t.Angle(p)
	t.totalRotation += angle
	t.applyRotation(angle)
	t.press = nil
	t.requestRedraw()
}

// applyRotation sets the shape to the press snapshot rotated about the
// reference center. NaN sentinels propagate through the transform.
func (t *Template) applyRotation(angle float64) {
	rotated := t.press.snapshot.Clone()
	rotated.Transform(geometry.RotationAbout(angle, t.center))
	t.shape = rotated
}
