// Package threshold derives raster masks from pixel intensity cutoffs.
package threshold

import (
	"fmt"

	"gocv.io/x/gocv"

	"xrd-template/internal/image"
	"xrd-template/internal/raster"
)

// Comparison selects which side of the cutoff value gets flagged.
type Comparison int

const (
	// GreaterThan flags pixels whose intensity exceeds the cutoff.
	GreaterThan Comparison = iota
	// LessThan flags pixels whose intensity falls below the cutoff.
	LessThan
)

func (c Comparison) String() string {
	switch c {
	case GreaterThan:
		return "greater"
	case LessThan:
		return "less"
	default:
		return "unknown"
	}
}

// ParseComparison maps a config string to a Comparison.
func ParseComparison(s string) (Comparison, error) {
	switch s {
	case "greater", ">":
		return GreaterThan, nil
	case "less", "<":
		return LessThan, nil
	default:
		return 0, fmt.Errorf("unknown threshold comparison %q", s)
	}
}

// Defaults for a fresh threshold session.
const (
	DefaultComparison = GreaterThan
	DefaultValue      = 0.0
)

// Config holds the current threshold session parameters. Removing the
// threshold mask from the registry resets it so the next session starts
// from defaults.
type Config struct {
	Comparison Comparison
	Value      float64
}

// NewConfig returns a Config at the documented defaults.
func NewConfig() *Config {
	return &Config{Comparison: DefaultComparison, Value: DefaultValue}
}

// Reset restores the defaults.
func (c *Config) Reset() {
	c.Comparison = DefaultComparison
	c.Value = DefaultValue
}

// Compute flags every pixel of buf that satisfies the configured
// comparison against the cutoff value. The returned mask matches the
// buffer's dimensions.
func Compute(buf *image.Buffer, cfg Config) (*raster.Mask, error) {
	if buf == nil || buf.W == 0 || buf.H == 0 {
		return nil, fmt.Errorf("cannot threshold an empty image")
	}

	var thresholdType gocv.ThresholdType
	switch cfg.Comparison {
	case GreaterThan:
		thresholdType = gocv.ThresholdBinary
	case LessThan:
		thresholdType = gocv.ThresholdBinaryInv
	default:
		return nil, fmt.Errorf("unknown threshold comparison %d", cfg.Comparison)
	}

	src := gocv.NewMatWithSize(buf.H, buf.W, gocv.MatTypeCV64F)
	defer src.Close()
	for y := 0; y < buf.H; y++ {
		for x := 0; x < buf.W; x++ {
			src.SetDoubleAt(y, x, buf.At(x, y))
		}
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Threshold(src, &dst, float32(cfg.Value), 1, thresholdType)

	mask := raster.NewMask(buf.W, buf.H)
	for y := 0; y < buf.H; y++ {
		for x := 0; x < buf.W; x++ {
			if dst.GetDoubleAt(y, x) > 0 {
				mask.Set(x, y, true)
			}
		}
	}
	return mask, nil
}
