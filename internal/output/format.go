package output

import (
	"fmt"
	"strings"
)

// Format represents the output format type.
type Format string

const (
	// FormatYAML is the default output format
	FormatYAML Format = "yaml"

	// FormatJSON is the JSON output format
	FormatJSON Format = "json"

	// FormatDiff prints only the unified diff of an edit
	FormatDiff Format = "diff"
)

// ParseFormat parses a format string into a Format value.
// Accepts: "yaml", "json", "diff" (case-insensitive)
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !ValidateFormat(f) {
		return "", fmt.Errorf("invalid format: %q (expected yaml, json, or diff)", s)
	}
	return f, nil
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// Density represents the level of detail in output.
type Density string

const (
	// DensitySparse lists touched files only
	DensitySparse Density = "sparse"

	// DensityMedium adds line statistics (default)
	DensityMedium Density = "medium"

	// DensityDense adds the unified diff
	DensityDense Density = "dense"
)

// ParseDensity parses a density string into a Density value.
// Accepts: "sparse", "medium", "dense" (case-insensitive)
func ParseDensity(s string) (Density, error) {
	d := Density(strings.ToLower(strings.TrimSpace(s)))
	if !ValidateDensity(d) {
		return "", fmt.Errorf("invalid density: %q (expected sparse, medium, or dense)", s)
	}
	return d, nil
}

// String returns the string representation of the density.
func (d Density) String() string {
	return string(d)
}

// IncludesStats returns true if this density level includes line counts.
func (d Density) IncludesStats() bool {
	return d == DensityMedium || d == DensityDense
}

// IncludesDiff returns true if this density level includes the diff.
func (d Density) IncludesDiff() bool {
	return d == DensityDense
}

// DefaultFormat is the default output format when none is specified.
const DefaultFormat = FormatYAML

// DefaultDensity is the default density level when none is specified.
const DefaultDensity = DensityMedium

// ValidateFormat checks if a format value is valid.
func ValidateFormat(f Format) bool {
	switch f {
	case FormatYAML, FormatJSON, FormatDiff:
		return true
	default:
		return false
	}
}

// ValidateDensity checks if a density value is valid.
func ValidateDensity(d Density) bool {
	switch d {
	case DensitySparse, DensityMedium, DensityDense:
		return true
	default:
		return false
	}
}
