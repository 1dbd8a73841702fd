// Package config provides session file handling and persistence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Defaults applied when a session file omits or mangles a setting.
const (
	DefaultPixelSize    = 0.1
	DefaultHitTolerance = 3.0
)

// File represents a template session file (.xrdsess).
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Data file paths (relative to session file)
	ImagePath    string `json:"image,omitempty"`
	TemplatePath string `json:"template,omitempty"`
	MasksPath    string `json:"masks,omitempty"`

	// Detector geometry
	Rows      int     `json:"rows"`
	Cols      int     `json:"cols"`
	PixelSize float64 `json:"pixel_size"`

	// User settings
	Settings Settings `json:"settings,omitempty"`
}

// Settings holds user preferences for the session.
type Settings struct {
	HitTolerance        float64 `json:"hit_tolerance,omitempty"`
	ThresholdComparison string  `json:"threshold_comparison,omitempty"`
	ThresholdValue      float64 `json:"threshold_value,omitempty"`
}

// New creates a new session file with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:   1,
		Name:      name,
		Created:   now,
		Modified:  now,
		PixelSize: DefaultPixelSize,
		Settings: Settings{
			HitTolerance:        DefaultHitTolerance,
			ThresholdComparison: "greater",
		},
	}
}

// Load loads a session from an .xrdsess file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sess File
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}

	return &sess, nil
}

// Save saves the session to a file.
func (f *File) Save(path string) error {
	f.Modified = time.Now()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate replaces out-of-range settings with their defaults and
// returns a warning for each substitution so callers can surface them.
func (f *File) Validate() []string {
	var warnings []string
	if f.PixelSize <= 0 {
		warnings = append(warnings,
			fmt.Sprintf("pixel size %g is not positive, using %g", f.PixelSize, DefaultPixelSize))
		f.PixelSize = DefaultPixelSize
	}
	if f.Rows < 0 {
		warnings = append(warnings, fmt.Sprintf("rows %d is negative, using 0", f.Rows))
		f.Rows = 0
	}
	if f.Cols < 0 {
		warnings = append(warnings, fmt.Sprintf("cols %d is negative, using 0", f.Cols))
		f.Cols = 0
	}
	if f.Settings.HitTolerance < 0 {
		warnings = append(warnings,
			fmt.Sprintf("hit tolerance %g is negative, using %g",
				f.Settings.HitTolerance, DefaultHitTolerance))
		f.Settings.HitTolerance = DefaultHitTolerance
	}
	if f.Settings.HitTolerance == 0 {
		warnings = append(warnings,
			fmt.Sprintf("hit tolerance not set, using %g", DefaultHitTolerance))
		f.Settings.HitTolerance = DefaultHitTolerance
	}
	if f.Settings.ThresholdComparison == "" {
		f.Settings.ThresholdComparison = "greater"
	}
	return warnings
}

// SetImage sets the image path (relative to session).
func (f *File) SetImage(sessionPath, imagePath string) {
	rel, err := filepath.Rel(filepath.Dir(sessionPath), imagePath)
	if err != nil {
		f.ImagePath = imagePath
	} else {
		f.ImagePath = rel
	}
	f.Modified = time.Now()
}

// GetImagePath returns the absolute path to the image.
func (f *File) GetImagePath(sessionPath string) string {
	return f.resolve(sessionPath, f.ImagePath)
}

// GetTemplatePath returns the absolute path to the template file.
func (f *File) GetTemplatePath(sessionPath string) string {
	return f.resolve(sessionPath, f.TemplatePath)
}

// GetMasksPath returns the absolute path to the mask archive. When the
// session file does not name one, it defaults next to the session file.
func (f *File) GetMasksPath(sessionPath string) string {
	if f.MasksPath == "" {
		base := sessionPath[:len(sessionPath)-len(filepath.Ext(sessionPath))]
		return base + "_masks.json"
	}
	return f.resolve(sessionPath, f.MasksPath)
}

func (f *File) resolve(sessionPath, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(sessionPath), p)
}
