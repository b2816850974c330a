package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Formatter is the interface for formatting command output in different formats.
type Formatter interface {
	// Format formats a value according to the specified density level.
	Format(v any, density Density) (string, error)

	// FormatToWriter writes formatted output directly to a writer.
	FormatToWriter(w io.Writer, v any, density Density) error
}

// YAMLFormatter formats output as YAML.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format formats a value as YAML.
func (f *YAMLFormatter) Format(v any, density Density) (string, error) {
	var buf bytes.Buffer
	if err := f.FormatToWriter(&buf, v, density); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatToWriter writes YAML output to a writer.
func (f *YAMLFormatter) FormatToWriter(w io.Writer, v any, density Density) error {
	filtered := applyDensityFilter(v, density)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	return encoder.Encode(filtered)
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format formats a value as JSON.
func (f *JSONFormatter) Format(v any, density Density) (string, error) {
	var buf bytes.Buffer
	if err := f.FormatToWriter(&buf, v, density); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatToWriter writes JSON output to a writer.
func (f *JSONFormatter) FormatToWriter(w io.Writer, v any, density Density) error {
	filtered := applyDensityFilter(v, density)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(filtered)
}

// DiffFormatter writes the unified diff of an EditOutput and nothing else.
// Density is ignored.
type DiffFormatter struct{}

// NewDiffFormatter creates a new diff formatter.
func NewDiffFormatter() *DiffFormatter {
	return &DiffFormatter{}
}

// Format returns the diff of an EditOutput.
func (f *DiffFormatter) Format(v any, density Density) (string, error) {
	var buf bytes.Buffer
	if err := f.FormatToWriter(&buf, v, density); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatToWriter writes the diff of an EditOutput to a writer.
func (f *DiffFormatter) FormatToWriter(w io.Writer, v any, _ Density) error {
	out, ok := v.(*EditOutput)
	if !ok {
		return fmt.Errorf("diff formatter does not support type %T", v)
	}
	_, err := io.WriteString(w, out.Diff)
	return err
}

// applyDensityFilter strips what the density level hides.
func applyDensityFilter(v any, density Density) any {
	if out, ok := v.(*EditOutput); ok {
		return out.withDensity(density)
	}
	return v
}

// GetFormatter returns the appropriate formatter for the given format.
func GetFormatter(format Format) (Formatter, error) {
	switch format {
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatDiff:
		return NewDiffFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
