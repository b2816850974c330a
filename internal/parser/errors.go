package parser

import "fmt"

// ParseError is returned when tree-sitter gives up on a file, which only
// happens when parsing is cancelled. Syntax errors are reported through
// ParseResult.HasErrors instead.
type ParseError struct {
	Message string
	File    string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// UnsupportedLanguageError is returned when asking for a grammar other than C or C++.
type UnsupportedLanguageError struct {
	Language string
}

// Error implements the error interface.
func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %s", e.Language)
}
