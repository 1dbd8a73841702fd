package geometry

// GeometryError reports malformed or degenerate source geometry, such as an
// empty template file or a shape whose mapped vertices enclose zero area.
// It is recoverable by the caller; interactive gesture handling never
// produces one.
type GeometryError struct {
	Reason string
}

func (e *GeometryError) Error() string {
	return "geometry: " + e.Reason
}
