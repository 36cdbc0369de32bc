package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateFieldName validates a grid field name.
//
// Field names follow the grid's naming scheme (for example
// topographic__elevation), so the rules are conservative:
//   - No empty names
//   - No control characters or whitespace
//   - Maximum length of 128 characters
func ValidateFieldName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "field name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "field name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "field name %q contains whitespace or control characters", name)
		}
	}

	return nil
}

// ValidateSlope validates a base gradient for the slope stage.
// Zero means a flat fill; negative or non-finite values are rejected.
func ValidateSlope(s float64) error {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return New(ErrCodeInvalidInput, "slope must be finite, got %g", s)
	}
	if s < 0 {
		return New(ErrCodeInvalidInput, "slope cannot be negative, got %g", s)
	}
	return nil
}

// ValidateGridShape validates raster dimensions and node spacing.
func ValidateGridShape(rows, cols int, spacing float64) error {
	if rows < 3 || cols < 3 {
		return New(ErrCodeInvalidInput, "grid must be at least 3x3, got %dx%d", rows, cols)
	}
	if math.IsNaN(spacing) || math.IsInf(spacing, 0) || spacing <= 0 {
		return New(ErrCodeInvalidInput, "grid spacing must be positive and finite, got %g", spacing)
	}
	return nil
}

// ValidatePath validates a file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
