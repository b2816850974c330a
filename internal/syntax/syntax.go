// Package syntax holds lexical helpers for C/C++ declarations that operate on
// masked text: whitespace normalization, default value stripping and return
// type recovery.
package syntax

import (
	"regexp"
	"strings"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/mask"
)

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// NormalizeWhitespace removes whitespace that does not separate two words and
// collapses the rest to single spaces, so "const  T &  x" becomes "const T&x".
func NormalizeWhitespace(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); {
		if !isSpaceByte(text[i]) {
			sb.WriteByte(text[i])
			i++
			continue
		}
		j := i
		for j < len(text) && isSpaceByte(text[j]) {
			j++
		}
		if i > 0 && j < len(text) && isWordByte(text[i-1]) && isWordByte(text[j]) {
			sb.WriteByte(' ')
		}
		i = j
	}
	return sb.String()
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// NormalizeSourceText removes comments and attributes and normalizes whitespace.
func NormalizeSourceText(text string) string {
	return NormalizeWhitespace(RemoveAttributes(RemoveComments(text)))
}

// RemoveComments deletes comments from text. Unlike the maskers, the result is shorter.
func RemoveComments(text string) string {
	return removeMasked(text, mask.Comments(text, false))
}

// RemoveAttributes deletes [[...]] attribute specifiers from text.
func RemoveAttributes(text string) string {
	return removeMasked(text, mask.Attributes(text, false))
}

// removeMasked drops the bytes that differ between text and its masked form.
func removeMasked(text, masked string) string {
	if text == masked {
		return text
	}
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] == masked[i] {
			sb.WriteByte(text[i])
		}
	}
	return sb.String()
}

var reStatementTail = regexp.MustCompile(`^(\s*;)*`)

// EndOfStatement returns the position after any semicolons that directly
// follow p. Document symbol ranges do not always include the final semicolon.
func EndOfStatement(doc *document.Document, p document.Position) document.Position {
	m := reStatementTail.FindString(doc.TextFrom(p))
	if m == "" {
		return p
	}
	return doc.PositionAt(doc.OffsetAt(p) + len(m))
}

// MaskForParameters masks everything in a parameter list that may contain a
// comma or '=' that does not separate parameters.
func MaskForParameters(text string, keep bool) string {
	masked := mask.NonSourceText(text, keep)
	masked = mask.Parentheses(masked, true)
	masked = mask.AngleBrackets(masked, true)
	masked = mask.Braces(masked, true)
	masked = mask.Brackets(masked, true)
	return mask.ComparisonOperators(masked)
}

// StripDefaultValues removes "= value" from every parameter in a raw parameter list.
func StripDefaultValues(parameters string) string {
	masked := MaskForParameters(parameters, true)
	var sb strings.Builder
	pos := 0
	for i, piece := range strings.Split(masked, ",") {
		if i > 0 {
			sb.WriteByte(',')
		}
		if eq := strings.IndexByte(piece, '='); eq >= 0 {
			sb.WriteString(strings.TrimRight(parameters[pos:pos+eq], " \t\r\n"))
		} else {
			sb.WriteString(parameters[pos : pos+len(piece)])
		}
		pos += len(piece) + 1
	}
	return sb.String()
}

var reQualifiedIdentifier = regexp.MustCompile(`\b[A-Za-z_]\w*\b(\s*::\s*[A-Za-z_]\w*\b)*`)

// builtinTypeWords are keywords that combine into a single type, as in "unsigned long long".
var builtinTypeWords = map[string]bool{
	"unsigned": true, "signed": true, "short": true, "long": true,
	"int": true, "char": true, "double": true,
}

// LeadingReturnType extracts the return type from the text that precedes a
// function name, dropping specifiers such as static or virtual that come
// before the type.
func LeadingReturnType(leadingText string) string {
	masked := mask.AngleBrackets(mask.NonSourceText(leadingText, true), true)
	matches := reQualifiedIdentifier.FindAllStringIndex(masked, -1)

	start := -1
	startWord := ""
	for i := len(matches) - 1; i >= 0; i-- {
		word := masked[matches[i][0]:matches[i][1]]
		cv := word == "const" || word == "volatile"
		switch {
		case start < 0 && !cv:
		case start >= 0 && cv:
		case start >= 0 && builtinTypeWords[word] && builtinTypeWords[startWord]:
		case start >= 0:
			return leadingText[start:]
		default:
			continue
		}
		start, startWord = matches[i][0], word
	}
	if start < 0 {
		return leadingText
	}
	return leadingText[start:]
}

var (
	reTrailingFragments = regexp.MustCompile(`\b[A-Za-z_]\w*\b(\s*::\s*[A-Za-z_]\w*\b)*(\s*<\s*>)?(\s*\(\s*\)){0,2}|&{1,2}|\*+`)
	reCVRefPtr          = regexp.MustCompile(`^(const|volatile|&{1,2}|\*+)$`)
)

// TrailingReturnType extracts the type that follows "->" in a trailing return
// type, stopping before anything that is not part of the type.
func TrailingReturnType(trailingText string) string {
	masked := mask.AngleBrackets(mask.Parentheses(mask.NonSourceText(trailingText, true), true), true)
	end := -1
	for _, m := range reTrailingFragments.FindAllStringIndex(masked, -1) {
		frag := masked[m[0]:m[1]]
		qualifier := reCVRefPtr.MatchString(frag)
		if (end < 0 && !qualifier) || (end >= 0 && qualifier) {
			end = m[1]
		} else if end >= 0 {
			break
		}
	}
	if end < 0 {
		return trailingText
	}
	return trailingText[:end]
}

var rePrimitiveType = regexp.MustCompile(`\b(void|bool|char|wchar_t|char8_t|char16_t|char32_t|int|short|long|signed|unsigned|float|double)\b`)

// MatchesPrimitiveType reports whether a type looks like a built-in type.
// Typedefs and aliases are not resolved.
func MatchesPrimitiveType(text string) bool {
	return !(strings.Contains(text, "<") && strings.Contains(text, ">")) && rePrimitiveType.MatchString(text)
}
