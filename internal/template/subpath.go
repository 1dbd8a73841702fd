package template

import (
	"xrd-template/pkg/geometry"
)

// Verb is a path drawing command.
type Verb int

const (
	// MoveTo begins a new sub-loop at its point.
	MoveTo Verb = iota
	// LineTo extends the current sub-loop.
	LineTo
)

// Subpath is one closed sub-loop exported as a point/verb list: the first
// verb is MoveTo, the rest LineTo. This is the interchange form consumed by
// persisted template formats.
type Subpath struct {
	Points []geometry.Point2D
	Verbs  []Verb
}

// Subpaths splits the shape into per-loop subpaths. Returns nil when no
// shape is attached.
func (t *Template) Subpaths() []Subpath {
	if t.shape == nil {
		return nil
	}

	out := make([]Subpath, 0, len(t.shape.Loops))
	for _, loop := range t.shape.Loops {
		if len(loop) == 0 {
			continue
		}
		sp := Subpath{
			Points: make([]geometry.Point2D, len(loop)),
			Verbs:  make([]Verb, len(loop)),
		}
		copy(sp.Points, loop)
		sp.Verbs[0] = MoveTo
		for i := 1; i < len(loop); i++ {
			sp.Verbs[i] = LineTo
		}
		out = append(out, sp)
	}
	return out
}
