package syntax

import (
	"strings"
	"unicode"
)

// CaseStyle names an identifier naming convention.
type CaseStyle string

const (
	SnakeCase  CaseStyle = "snake_case"
	CamelCase  CaseStyle = "camelCase"
	PascalCase CaseStyle = "PascalCase"
)

// Format converts an identifier to the style.
func (s CaseStyle) Format(text string) string {
	switch s {
	case SnakeCase:
		return ToSnakeCase(text)
	case PascalCase:
		return ToPascalCase(text)
	default:
		return ToCamelCase(text)
	}
}

// ToSnakeCase inserts '_' before upper case letters that do not start the
// identifier or follow an underscore, then lower cases everything.
func ToSnakeCase(text string) string {
	var sb strings.Builder
	for i, r := range text {
		if unicode.IsUpper(r) && i > 0 && text[i-1] != '_' {
			sb.WriteByte('_')
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

// ToCamelCase turns "_x" sequences into "X" and lower cases the first letter.
func ToCamelCase(text string) string {
	return firstToLower(joinUnderscores(text))
}

// ToPascalCase turns "_x" sequences into "X" and upper cases the first letter.
func ToPascalCase(text string) string {
	return FirstToUpper(joinUnderscores(text))
}

func joinUnderscores(text string) string {
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] == '_' && i+1 < len(text) && text[i+1] >= 'a' && text[i+1] <= 'z' {
			sb.WriteByte(text[i+1] - 'a' + 'A')
			i++
			continue
		}
		sb.WriteByte(text[i])
	}
	out := sb.String()
	// A single stray underscore (for example a trailing one) is dropped.
	return strings.Replace(out, "_", "", 1)
}

// FirstToUpper upper cases the first byte of an ASCII identifier.
func FirstToUpper(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func firstToLower(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
