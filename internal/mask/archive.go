package mask

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"xrd-template/internal/raster"
	"xrd-template/pkg/geometry"
)

// ArchiveVersion is written into every archive so future format changes
// can be detected on load.
const ArchiveVersion = 1

type archivedMask struct {
	Name     string               `json:"name"`
	Type     string               `json:"type"`
	Detector string               `json:"detector,omitempty"`
	Visible  bool                 `json:"visible,omitempty"`
	Loops    [][]geometry.Point2D `json:"loops,omitempty"`
	Width    int                  `json:"width,omitempty"`
	Height   int                  `json:"height,omitempty"`
	Bits     []bool               `json:"bits,omitempty"`
}

type archive struct {
	Version int            `json:"version"`
	Masks   []archivedMask `json:"masks"`
}

func archiveEntry(e *Entry) archivedMask {
	a := archivedMask{
		Name:     e.Name,
		Type:     e.Type.String(),
		Detector: e.Detector,
	}
	if e.Polygon != nil {
		a.Loops = e.Polygon.Loops
	}
	if e.Array != nil {
		a.Width = e.Array.W
		a.Height = e.Array.H
		a.Bits = e.Array.Bits
	}
	return a
}

func parseType(s string) Type {
	switch s {
	case "region":
		return TypeRegion
	case "raw":
		return TypeRaw
	case "threshold":
		return TypeThreshold
	default:
		return TypeImported
	}
}

func unarchiveEntry(a archivedMask) (*Entry, error) {
	e := &Entry{Name: a.Name, Type: parseType(a.Type), Detector: a.Detector}
	switch {
	case len(a.Loops) > 0:
		e.Polygon = &geometry.Polygon{Loops: a.Loops}
	case len(a.Bits) > 0:
		if a.Width*a.Height != len(a.Bits) {
			return nil, fmt.Errorf("mask %q: %dx%d does not match %d bits",
				a.Name, a.Width, a.Height, len(a.Bits))
		}
		m := raster.NewMask(a.Width, a.Height)
		copy(m.Bits, a.Bits)
		e.Array = m
	default:
		return nil, fmt.Errorf("mask %q has no payload", a.Name)
	}
	return e, nil
}

// WriteArchive serializes the named masks to w. A nil names slice exports
// every registered mask, in insertion order.
func (r *Registry) WriteArchive(w io.Writer, names []string) error {
	if names == nil {
		names = r.Names()
	}
	doc := archive{Version: ArchiveVersion}
	for _, name := range names {
		e, ok := r.Get(name)
		if !ok {
			return fmt.Errorf("no mask named %q", name)
		}
		a := archiveEntry(e)
		a.Visible = r.IsVisible(name)
		doc.Masks = append(doc.Masks, a)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize masks: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteSingle serializes one mask's bare payload, without the archive
// envelope, for handoff to tools that expect a single region or array.
func (r *Registry) WriteSingle(w io.Writer, name string) error {
	e, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("no mask named %q", name)
	}
	a := archiveEntry(e)
	a.Name = ""
	a.Type = ""
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize mask %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

// ReadArchive merges masks from rd into the registry. Entries whose
// payload duplicates an existing mask are skipped; name collisions get a
// derived unique name. It returns the number of masks added.
func (r *Registry) ReadArchive(rd io.Reader) (int, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return 0, fmt.Errorf("failed to read mask archive: %w", err)
	}
	var doc archive
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("failed to parse mask archive: %w", err)
	}
	if doc.Version > ArchiveVersion {
		return 0, fmt.Errorf("unsupported mask archive version %d", doc.Version)
	}

	added := 0
	for _, a := range doc.Masks {
		e, err := unarchiveEntry(a)
		if err != nil {
			return added, err
		}
		// A second threshold mask cannot be imported alongside an
		// active one; it merges as a plain imported mask instead.
		if e.Type == TypeThreshold && r.ThresholdActive() {
			e.Type = TypeImported
		}
		if r.add(e) {
			added++
			if a.Visible {
				r.SetVisibility(e.Name, true)
			}
		}
	}
	return added, nil
}

// SaveArchive writes the named masks to a file.
func (r *Registry) SaveArchive(path string, names []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create mask archive: %w", err)
	}
	defer f.Close()
	return r.WriteArchive(f, names)
}

// LoadArchive merges masks from a file into the registry.
func (r *Registry) LoadArchive(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open mask archive: %w", err)
	}
	defer f.Close()
	return r.ReadArchive(f)
}
