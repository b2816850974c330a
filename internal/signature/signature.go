// Package signature models the signature of a C/C++ function as written in
// its declaration or definition, so that the two can be compared and kept in
// sync.
package signature

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/mask"
	"github.com/hargabyte/cppgen/internal/params"
	"github.com/hargabyte/cppgen/internal/semantic"
	"github.com/hargabyte/cppgen/internal/syntax"
)

// RefQualifier is the ref-qualifier of a member function: "", "&" or "&&".
type RefQualifier string

const (
	NoRef     RefQualifier = ""
	LValueRef RefQualifier = "&"
	RValueRef RefQualifier = "&&"
)

// ConstructionError is returned when a signature cannot be built from a symbol.
type ConstructionError struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	return fmt.Sprintf("signature of %q: %s", e.Name, e.Reason)
}

// Signature is the return type, parameters and qualifiers of a function.
type Signature struct {
	Name         string
	Path         string
	IsDefinition bool
	// Range spans the declaration, from after any template statements to
	// before the body or final semicolon.
	Range           document.Range
	ReturnType      string
	ReturnTypeRange document.Range
	Parameters      params.List
	IsConstexpr     bool
	IsConsteval     bool
	IsConst         bool
	IsVolatile      bool
	RefQualifier    RefQualifier
	// Noexcept is the noexcept specifier as written, or "".
	Noexcept string
	// TrailingSpecifierRange spans the text between the closing parenthesis
	// and the end of the declaration or the "->" of a trailing return type.
	TrailingSpecifierRange document.Range

	normalizedReturnType string
	normalizedNoexcept   string
}

var (
	reNoexcept       = regexp.MustCompile(`\bnoexcept\b(\s*\(\s*\))?`)
	reTrailingReturn = regexp.MustCompile(`(?s)(->\s*)(.+)$`)
	reConstWord      = regexp.MustCompile(`\bconst\b`)
	reVolatileWord   = regexp.MustCompile(`\bvolatile\b`)
)

// New reads the signature of a function symbol. It returns a
// *ConstructionError if v is not a function or its parameter list cannot be
// found.
func New(v *semantic.View) (*Signature, error) {
	if !v.IsFunction() {
		return nil, &ConstructionError{Name: v.Name, Reason: "not a function"}
	}
	doc := v.Doc()

	declStart := v.DeclarationStart()
	declEnd := v.DeclarationEnd()
	startOffset := doc.OffsetAt(declStart)
	declaration := doc.GetText(document.NewRange(declStart, declEnd))
	masked := mask.Parentheses(mask.NonSourceText(declaration, true), true)

	nameIndex := doc.OffsetAt(v.SelectionRange.Start) - startOffset
	if nameIndex < 0 || nameIndex > len(masked) {
		return nil, &ConstructionError{Name: v.Name, Reason: "name lies outside the declaration"}
	}
	open := strings.IndexByte(masked[nameIndex:], '(')
	closing := strings.IndexByte(masked[nameIndex:], ')')
	if open < 0 || closing < 0 {
		return nil, &ConstructionError{Name: v.Name, Reason: "cannot find the parameter list"}
	}
	open += nameIndex
	closing += nameIndex

	s := &Signature{
		Name:         v.Name,
		Path:         v.Path(),
		IsDefinition: v.IsFunctionDefinition(),
		Range:        document.NewRange(declStart, declEnd),
		Parameters:   params.Parse(doc, declaration[open+1:closing], startOffset+open+1),
		IsConstexpr:  v.IsConstexpr(),
		IsConsteval:  v.IsConsteval(),
	}

	trailingStart := startOffset + closing + 1
	s.TrailingSpecifierRange = document.NewRange(doc.PositionAt(trailingStart), declEnd)
	trailing := declaration[closing+1:]
	maskedTrailing := masked[closing+1:]

	if m := reNoexcept.FindStringIndex(maskedTrailing); m != nil {
		s.Noexcept = trailing[m[0]:m[1]]
	}

	if v.IsConstructor() || v.IsDestructor() {
		s.ReturnTypeRange = v.SelectionRange
		return s, nil
	}

	if m := reTrailingReturn.FindStringSubmatchIndex(maskedTrailing); m != nil {
		specifiers := maskedTrailing[:m[0]]
		s.setQualifiers(specifiers)
		specEnd := trailingStart + m[0]
		s.TrailingSpecifierRange = document.NewRange(doc.PositionAt(trailingStart), doc.PositionAt(specEnd))

		s.ReturnType = syntax.TrailingReturnType(trailing[m[4]:])
		returnStart := trailingStart + m[4]
		s.ReturnTypeRange = doc.RangeAt(returnStart, returnStart+len(s.ReturnType))
		return s, nil
	}

	s.setQualifiers(maskedTrailing)
	returnEnd := doc.OffsetAt(v.ScopeStringStart()) - startOffset
	if returnEnd < 0 {
		returnEnd = 0
	}
	leading := syntax.LeadingReturnType(declaration[:returnEnd])
	s.ReturnType = strings.TrimRight(leading, " \t\r\n")
	returnStart := startOffset + returnEnd - len(leading)
	s.ReturnTypeRange = doc.RangeAt(returnStart, returnStart+len(s.ReturnType))
	return s, nil
}

func (s *Signature) setQualifiers(maskedSpecifiers string) {
	s.IsConst = reConstWord.MatchString(maskedSpecifiers)
	s.IsVolatile = reVolatileWord.MatchString(maskedSpecifiers)
	switch {
	case strings.Contains(maskedSpecifiers, "&&"):
		s.RefQualifier = RValueRef
	case strings.Contains(maskedSpecifiers, "&"):
		s.RefQualifier = LValueRef
	default:
		s.RefQualifier = NoRef
	}
}

// NormalizedReturnType is the return type with comments removed and
// whitespace normalized.
func (s *Signature) NormalizedReturnType() string {
	if s.normalizedReturnType == "" && s.ReturnType != "" {
		s.normalizedReturnType = syntax.NormalizeSourceText(s.ReturnType)
	}
	return s.normalizedReturnType
}

// NormalizedNoexcept is the noexcept specifier with whitespace normalized.
func (s *Signature) NormalizedNoexcept() string {
	if s.normalizedNoexcept == "" && s.Noexcept != "" {
		s.normalizedNoexcept = syntax.NormalizeSourceText(s.Noexcept)
	}
	return s.normalizedNoexcept
}

// Equal reports whether two signatures declare the same function type.
// Parameter names and formatting are ignored.
func (s *Signature) Equal(other *Signature) bool {
	return s.Parameters.TypesEqual(other.Parameters) &&
		s.NormalizedReturnType() == other.NormalizedReturnType() &&
		s.IsConstexpr == other.IsConstexpr &&
		s.IsConsteval == other.IsConsteval &&
		s.IsConst == other.IsConst &&
		s.IsVolatile == other.IsVolatile &&
		s.RefQualifier == other.RefQualifier &&
		s.NormalizedNoexcept() == other.NormalizedNoexcept()
}

// TrailingSpecifiers renders the qualifiers that follow the parameter list,
// as in " const & noexcept".
func (s *Signature) TrailingSpecifiers() string {
	var sb strings.Builder
	if s.IsConst {
		sb.WriteString(" const")
	}
	if s.IsVolatile {
		sb.WriteString(" volatile")
	}
	if s.RefQualifier != NoRef {
		sb.WriteString(" " + string(s.RefQualifier))
	}
	if s.Noexcept != "" {
		sb.WriteString(" " + s.Noexcept)
	}
	return sb.String()
}
