// Package mask blanks out parts of C/C++ source text so that regular
// expressions can scan the remaining code safely.
//
// Every masker returns a string of exactly the same length as its input.
// Masked bytes become spaces; newlines are never masked, so line and column
// numbers computed on masked text are valid for the original text. When keep
// is true the enclosing characters of a masked construct (the "//" of a
// comment, the quotes of a literal, the brackets of a group) are left in
// place and only the interior is blanked.
//
// Maskers compose: callers typically chain NonSourceText, then
// AngleBrackets, then Parentheses.
package mask

import "strings"

type spanKind int

const (
	lineComment spanKind = iota
	blockComment
	charLiteral
	stringLiteral
	rawString
)

// span is a lexical region found by scanLiterals. Open and close are the
// lengths of the delimiters at each end that keep=true preserves.
type span struct {
	kind        spanKind
	start, end  int
	open, close int
}

// scanLiterals finds comments and literals in a single left-to-right pass so
// that a "//" inside a string, or a quote inside a comment, is not mistaken
// for the other construct.
func scanLiterals(text string) []span {
	var spans []span
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				end = len(text)
			} else {
				end += i
				if end > i && text[end-1] == '\r' {
					end--
				}
			}
			spans = append(spans, span{kind: lineComment, start: i, end: end, open: 2})
			i = end
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				spans = append(spans, span{kind: blockComment, start: i, end: len(text), open: 2})
				i = len(text)
				continue
			}
			end += i + 4
			spans = append(spans, span{kind: blockComment, start: i, end: end, open: 2, close: 2})
			i = end
		case c == 'R' && i+1 < len(text) && text[i+1] == '"' && !identBefore(text, i):
			s, ok := scanRawString(text, i)
			if !ok {
				i++
				continue
			}
			spans = append(spans, s)
			i = s.end
		case c == '"' || (c == '\'' && !digitSeparator(text, i)):
			end := scanQuoted(text, i)
			kind := stringLiteral
			if c == '\'' {
				kind = charLiteral
			}
			closeLen := 0
			if end > i+1 && text[end-1] == c {
				closeLen = 1
			}
			spans = append(spans, span{kind: kind, start: i, end: end, open: 1, close: closeLen})
			i = end
		default:
			i++
		}
	}
	return spans
}

// identBefore reports whether the byte before i continues an identifier, so
// that "FOOR"x"" is not read as a raw string. Encoding prefixes u8R, uR, UR
// and LR end in R and are accepted.
func identBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	j := i - 1
	for j >= 0 && isIdentByte(text[j]) {
		j--
	}
	prefix := text[j+1 : i]
	switch prefix {
	case "", "u8", "u", "U", "L":
		return false
	}
	return true
}

// digitSeparator reports whether a single quote is a C++14 digit separator such as 1'000.
func digitSeparator(text string, i int) bool {
	return i > 0 && i+1 < len(text) && isHexDigit(text[i-1]) && isHexDigit(text[i+1]) && inNumber(text, i)
}

func inNumber(text string, i int) bool {
	j := i - 1
	for j >= 0 && (isIdentByte(text[j]) || text[j] == '\'' || text[j] == '.') {
		j--
	}
	return j+1 < len(text) && text[j+1] >= '0' && text[j+1] <= '9'
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// scanQuoted returns the end offset of a quoted literal starting at i. An
// unterminated literal ends at the end of its line.
func scanQuoted(text string, i int) int {
	q := text[i]
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case q:
			return j + 1
		case '\n':
			return j
		}
	}
	return len(text)
}

// scanRawString scans R"delim( ... )delim" starting at the R.
func scanRawString(text string, i int) (span, bool) {
	open := strings.IndexByte(text[i+2:], '(')
	if open < 0 || open > 16 {
		return span{}, false
	}
	delim := text[i+2 : i+2+open]
	if strings.ContainsAny(delim, " ()\\\t\n") {
		return span{}, false
	}
	terminator := ")" + delim + "\""
	bodyStart := i + 2 + open + 1
	end := strings.Index(text[bodyStart:], terminator)
	if end < 0 {
		return span{kind: rawString, start: i, end: len(text), open: 2}, true
	}
	return span{kind: rawString, start: i, end: bodyStart + end + len(terminator), open: 2, close: 1}, true
}

// blank replaces bytes in [start, end) with spaces, preserving line breaks.
func blank(b []byte, start, end int) {
	for i := start; i < end; i++ {
		if b[i] != '\n' && b[i] != '\r' {
			b[i] = ' '
		}
	}
}

func maskSpans(text string, keep bool, kinds ...spanKind) string {
	var b []byte
	for _, s := range scanLiterals(text) {
		if !hasKind(kinds, s.kind) {
			continue
		}
		if b == nil {
			b = []byte(text)
		}
		if keep {
			blank(b, s.start+s.open, s.end-s.close)
		} else {
			blank(b, s.start, s.end)
		}
	}
	if b == nil {
		return text
	}
	return string(b)
}

func hasKind(kinds []spanKind, k spanKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// Comments masks line and block comments.
func Comments(text string, keep bool) string {
	return maskSpans(text, keep, lineComment, blockComment)
}

// Quotes masks string and character literals.
func Quotes(text string, keep bool) string {
	return maskSpans(text, keep, stringLiteral, charLiteral)
}

// RawStringLiterals masks raw string literals such as R"x(...)x".
func RawStringLiterals(text string, keep bool) string {
	return maskSpans(text, keep, rawString)
}

// Attributes masks [[...]] attribute specifiers.
func Attributes(text string, keep bool) string {
	var b []byte
	for i := 0; i+1 < len(text); i++ {
		if text[i] != '[' || text[i+1] != '[' {
			continue
		}
		end := strings.Index(text[i+2:], "]]")
		if end < 0 {
			break
		}
		end += i + 2
		if strings.IndexByte(text[i:end], '\n') >= 0 {
			continue
		}
		if b == nil {
			b = []byte(text)
		}
		if keep {
			blank(b, i+2, end)
		} else {
			blank(b, i, end+2)
		}
		i = end + 1
	}
	if b == nil {
		return text
	}
	return string(b)
}

// NonSourceText masks comments (including their delimiters), raw string
// literals, quoted literals and attributes. keep applies to the literals and
// attributes.
func NonSourceText(text string, keep bool) string {
	var b []byte
	for _, s := range scanLiterals(text) {
		if b == nil {
			b = []byte(text)
		}
		if keep && s.kind != lineComment && s.kind != blockComment {
			blank(b, s.start+s.open, s.end-s.close)
		} else {
			blank(b, s.start, s.end)
		}
	}
	if b != nil {
		text = string(b)
	}
	return Attributes(text, keep)
}

// ComparisonOperators masks two-character operators ending in '=' (such as
// <=, >=, ==, !=) so that their '<' and '>' do not disturb angle bracket
// matching and their '=' is not read as a default value.
func ComparisonOperators(text string) string {
	var b []byte
	for i := 0; i+1 < len(text); i++ {
		c := text[i]
		if text[i+1] != '=' || isIdentByte(c) || isSpace(c) {
			continue
		}
		if i+2 < len(text) && text[i+2] == '=' {
			continue
		}
		if b == nil {
			b = []byte(text)
		}
		b[i], b[i+1] = ' ', ' '
		i++
	}
	if b == nil {
		return text
	}
	return string(b)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
