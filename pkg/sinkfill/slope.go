package sinkfill

import (
	"strconv"
	"strings"

	errs "github.com/hurstaa/landlab/pkg/errors"
)

// DefaultSlope is the gradient used by [DefaultGradient].
const DefaultSlope = 1e-5

// Slope is the base gradient of the slope stage, in elevation units per unit
// of planar distance from a lake's outlet. Zero means a flat fill.
type Slope float64

const (
	// Flat fills depressions to their spill elevation without a gradient.
	Flat Slope = 0
	// DefaultGradient applies DefaultSlope.
	DefaultGradient Slope = DefaultSlope
)

// Gradient returns a Slope of s. FillPits rejects negative values.
func Gradient(s float64) Slope { return Slope(s) }

// ParseSlope reads a slope given as text: "", "false" or "none" is Flat,
// "true" is DefaultGradient, anything else must be a non-negative number.
func ParseSlope(s string) (Slope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "none":
		return Flat, nil
	case "true":
		return DefaultGradient, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Flat, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid slope %q", s)
	}
	if err := errs.ValidateSlope(v); err != nil {
		return Flat, err
	}
	return Slope(v), nil
}

// String formats s the way ParseSlope reads it.
func (s Slope) String() string {
	if s == Flat {
		return "false"
	}
	return strconv.FormatFloat(float64(s), 'g', -1, 64)
}
