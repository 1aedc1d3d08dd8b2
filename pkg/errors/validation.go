package errors

import (
	"math"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateFinite rejects NaN and infinite values for the named quantity.
// Levels, bounds and transform parameters all pass through here before any
// sampling work is done.
func ValidateFinite(code Code, name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(code, "%s must be finite, got %v", name, v)
	}
	return nil
}

// ValidatePositive rejects values that are not finite or not strictly positive.
func ValidatePositive(code Code, name string, v float64) error {
	if err := ValidateFinite(code, name, v); err != nil {
		return err
	}
	if v <= 0 {
		return New(code, "%s must be > 0, got %g", name, v)
	}
	return nil
}

// ValidateChartID validates a stored chart identifier.
// IDs are UUIDs; anything else is rejected before it reaches a storage backend.
func ValidateChartID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "chart id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid chart id %q", id)
	}
	return nil
}

// ValidateName validates a short identifier such as a projection or family
// name supplied by a user.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 64 characters
//   - No control characters or whitespace
func ValidateName(code Code, name string) error {
	if name == "" {
		return New(code, "name cannot be empty")
	}

	const maxNameLength = 64
	if len(name) > maxNameLength {
		return New(code, "name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(code, "name contains invalid characters: %q", name)
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(code, "name cannot contain path separators: %q", name)
	}

	return nil
}
