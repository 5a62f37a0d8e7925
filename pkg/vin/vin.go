// Package vin normalizes and validates vehicle identification numbers.
package vin

import (
	"fmt"
	"regexp"
	"strings"
)

// Length is the fixed VIN length mandated since the 1981 model year.
const Length = 17

// I, O and Q are excluded from the VIN alphabet to avoid confusion with 1/0.
var pattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// Normalize trims surrounding whitespace and uppercases the VIN. Duplicate
// detection throughout the system keys on the normalized form.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Validate reports whether the raw value is a well-formed VIN after
// normalization.
func Validate(raw string) error {
	normalized := Normalize(raw)
	if len(normalized) != Length {
		return fmt.Errorf("vin must be %d characters, got %d", Length, len(normalized))
	}
	if !pattern.MatchString(normalized) {
		return fmt.Errorf("vin contains invalid characters (I, O and Q are not allowed)")
	}
	return nil
}
