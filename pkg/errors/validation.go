package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxCategoryLength bounds category names read from input files.
const maxCategoryLength = 256

// ValidateCategoryName validates a category name read from an input row.
//
// The rules are intentionally small:
//   - No empty (or whitespace-only) names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "category name cannot be empty")
	}
	if len(name) > maxCategoryLength {
		return New(ErrCodeInvalidInput, "category name too long (max %d characters)", maxCategoryLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "category name %q contains control characters", name)
		}
	}
	return nil
}

// ValidateDimensions validates a canvas size requested by a caller.
// Zero is allowed and produces an empty drawing; negative or non-finite
// values are rejected.
func ValidateDimensions(width, height float64) error {
	for _, v := range []float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidInput, "canvas size must be finite, got %vx%v", width, height)
		}
		if v < 0 {
			return New(ErrCodeInvalidInput, "canvas size cannot be negative, got %vx%v", width, height)
		}
	}
	return nil
}
