package mask

import (
	"bytes"
	"testing"

	"xrd-template/internal/raster"
	"xrd-template/internal/threshold"
	"xrd-template/pkg/geometry"
)

func squarePolygon(x0, y0, size float64) *geometry.Polygon {
	return geometry.NewPolygon([]geometry.Point2D{
		{X: x0, Y: y0},
		{X: x0 + size, Y: y0},
		{X: x0 + size, Y: y0 + size},
		{X: x0, Y: y0 + size},
	})
}

func stripeMask(w, h, col int) *raster.Mask {
	m := raster.NewMask(w, h)
	for y := 0; y < h; y++ {
		m.Set(col, y, true)
	}
	return m
}

func TestAddDeduplicatesByPayload(t *testing.T) {
	r := NewRegistry(nil)

	if !r.AddRegion("m1", squarePolygon(0, 0, 4)) {
		t.Fatal("first add failed")
	}
	// Same vertices arriving under another name and even another type
	// must not register a second mask.
	if r.AddRaw("m2", "detector_1", squarePolygon(0, 0, 4)) {
		t.Error("duplicate payload was added")
	}
	if got := r.Count(); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}
	// A genuinely different polygon registers fine.
	if !r.AddRegion("m2", squarePolygon(1, 1, 4)) {
		t.Error("distinct payload was rejected")
	}
}

func TestAddAssignsUniqueNames(t *testing.T) {
	r := NewRegistry(nil)
	r.AddRegion("mask", squarePolygon(0, 0, 1))
	r.AddRegion("mask", squarePolygon(5, 5, 1))
	r.AddRegion("mask", squarePolygon(9, 9, 1))

	names := r.Names()
	want := []string{"mask", "mask_1", "mask_2"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestVisibility(t *testing.T) {
	r := NewRegistry(nil)
	r.AddRegion("a", squarePolygon(0, 0, 1))
	r.AddRegion("b", squarePolygon(2, 2, 1))

	// New masks start hidden.
	if len(r.VisibleNames()) != 0 {
		t.Fatalf("visible = %v, want none", r.VisibleNames())
	}

	events := 0
	r.On(EventVisibilityChanged, func(data interface{}) {
		events++
		vc := data.(VisibilityChange)
		if vc.Name == "" {
			t.Error("event without a name")
		}
	})

	r.SetVisibility("a", true)
	r.SetVisibility("a", true) // already visible: no event
	r.SetVisibility("missing", true)
	if events != 1 {
		t.Errorf("events = %d, want 1", events)
	}
	if !r.IsVisible("a") || r.IsVisible("b") {
		t.Error("visibility state wrong after SetVisibility")
	}

	r.ShowAll()
	if got := len(r.VisibleNames()); got != 2 {
		t.Errorf("visible after ShowAll = %d, want 2", got)
	}
	r.HideAll()
	if got := len(r.VisibleNames()); got != 0 {
		t.Errorf("visible after HideAll = %d, want 0", got)
	}
}

func TestRenameTwoPhase(t *testing.T) {
	r := NewRegistry(nil)
	r.AddRegion("first", squarePolygon(0, 0, 1))
	r.AddRegion("second", squarePolygon(2, 2, 1))
	r.SetVisibility("first", true)

	// Committing without a pending rename fails.
	if r.CommitRename("anything") {
		t.Error("commit without begin succeeded")
	}

	// Collision with another mask leaves everything unchanged.
	if !r.BeginRename("first") {
		t.Fatal("begin rename failed")
	}
	if r.CommitRename("second") {
		t.Error("rename onto an existing name succeeded")
	}
	if _, ok := r.Get("first"); !ok {
		t.Fatal("colliding rename modified the registry")
	}

	// A cancelled rename commits nothing.
	r.BeginRename("first")
	r.CancelRename()
	if r.CommitRename("renamed") {
		t.Error("commit after cancel succeeded")
	}

	var renamed Rename
	r.On(EventRenamed, func(data interface{}) { renamed = data.(Rename) })

	r.BeginRename("first")
	if !r.CommitRename("renamed") {
		t.Fatal("valid rename failed")
	}
	if renamed.Old != "first" || renamed.New != "renamed" {
		t.Errorf("rename event = %+v", renamed)
	}
	if names := r.Names(); names[0] != "renamed" || names[1] != "second" {
		t.Errorf("order after rename = %v", names)
	}
	if !r.IsVisible("renamed") || r.IsVisible("first") {
		t.Error("visibility did not follow the rename")
	}
}

func TestThresholdSingleton(t *testing.T) {
	cfg := threshold.NewConfig()
	cfg.Value = 99
	cfg.Comparison = threshold.LessThan
	r := NewRegistry(cfg)

	name, ok := r.ActivateThreshold(stripeMask(4, 4, 1))
	if !ok {
		t.Fatal("threshold activation failed")
	}
	// The threshold mask shows immediately, unlike drawn masks.
	if !r.IsVisible(name) {
		t.Error("threshold mask is not visible")
	}
	if _, ok := r.ActivateThreshold(stripeMask(4, 4, 2)); ok {
		t.Error("second threshold activation succeeded")
	}

	if !r.UpdateThreshold(stripeMask(4, 4, 3)) {
		t.Error("threshold update failed")
	}
	e, _ := r.Get(name)
	if !e.Array.At(3, 0) {
		t.Error("threshold payload was not replaced")
	}

	// Removing the threshold mask resets the session config.
	r.Remove(name)
	if r.ThresholdActive() {
		t.Error("threshold still active after removal")
	}
	if cfg.Value != threshold.DefaultValue || cfg.Comparison != threshold.DefaultComparison {
		t.Errorf("config not reset: %+v", cfg)
	}

	// A fresh activation is possible again.
	if _, ok := r.ActivateThreshold(stripeMask(4, 4, 2)); !ok {
		t.Error("reactivation after removal failed")
	}
}

func TestRemove(t *testing.T) {
	r := NewRegistry(nil)
	r.AddRegion("a", squarePolygon(0, 0, 1))
	r.AddRegion("b", squarePolygon(2, 2, 1))
	r.SetVisibility("a", true)

	var removed Removal
	r.On(EventRemoved, func(data interface{}) { removed = data.(Removal) })

	r.Remove("a")
	if removed.Name != "a" {
		t.Errorf("removal event = %+v", removed)
	}
	if _, ok := r.Get("a"); ok {
		t.Error("entry survived removal")
	}
	if r.IsVisible("a") {
		t.Error("removed mask still listed visible")
	}
	r.Remove("a") // absent: silent no-op
	if got := r.Count(); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	r := NewRegistry(nil)
	r.AddRegion("roi", squarePolygon(0, 0, 4))
	r.AddRaw("panel_edge", "detector_1", squarePolygon(10, 10, 2))
	r.AddImported("beamstop", stripeMask(6, 6, 2))
	r.SetVisibility("roi", true)

	var buf bytes.Buffer
	if err := r.WriteArchive(&buf, nil); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	// Loading into the same registry is a complete no-op: every payload
	// already exists.
	if n, err := r.ReadArchive(bytes.NewReader(buf.Bytes())); err != nil || n != 0 {
		t.Errorf("reimport added %d masks (err %v), want 0", n, err)
	}

	fresh := NewRegistry(nil)
	n, err := fresh.ReadArchive(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if n != 3 {
		t.Fatalf("imported %d masks, want 3", n)
	}

	roi, ok := fresh.Get("roi")
	if !ok || roi.Polygon == nil || !roi.Polygon.Equal(squarePolygon(0, 0, 4)) {
		t.Error("region polygon did not survive the round trip")
	}
	if !fresh.IsVisible("roi") || fresh.IsVisible("beamstop") {
		t.Error("visibility did not survive the round trip")
	}
	raw, ok := fresh.Get("panel_edge")
	if !ok || raw.Detector != "detector_1" {
		t.Error("raw mask detector did not survive the round trip")
	}
	arr, ok := fresh.Get("beamstop")
	if !ok || arr.Array == nil || !arr.Array.Equal(stripeMask(6, 6, 2)) {
		t.Error("raster payload did not survive the round trip")
	}
}

func TestWriteSingle(t *testing.T) {
	r := NewRegistry(nil)
	r.AddRegion("only", squarePolygon(0, 0, 4))

	var buf bytes.Buffer
	if err := r.WriteSingle(&buf, "only"); err != nil {
		t.Fatalf("write single: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty single-mask output")
	}
	if err := r.WriteSingle(&buf, "missing"); err == nil {
		t.Error("expected an error for an unknown mask")
	}
}

// Exercises the documented lifecycle end to end: duplicate ingestion,
// visibility, rename collision, removal back to empty.
func TestLifecycle(t *testing.T) {
	r := NewRegistry(nil)

	r.AddRegion("m1", squarePolygon(0, 0, 4))
	r.AddRegion("m2", squarePolygon(0, 0, 4)) // identical payload
	if got := r.Count(); got != 1 {
		t.Fatalf("count after duplicate add = %d, want 1", got)
	}

	r.SetVisibility("m1", true)
	if got := r.VisibleNames(); len(got) != 1 || got[0] != "m1" {
		t.Fatalf("visible = %v, want [m1]", got)
	}

	r.AddRegion("m3", squarePolygon(5, 5, 4))
	r.BeginRename("m3")
	if r.CommitRename("m1") {
		t.Error("rename onto m1 succeeded")
	}
	if names := r.Names(); len(names) != 2 || names[1] != "m3" {
		t.Errorf("names after failed rename = %v", names)
	}

	r.Remove("m1")
	r.Remove("m3")
	if r.Count() != 0 || len(r.VisibleNames()) != 0 {
		t.Errorf("registry not empty: %v / %v", r.Names(), r.VisibleNames())
	}
}
