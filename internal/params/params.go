// Package params splits C/C++ parameter lists into parameters and recovers
// the type, name and default value of each one.
package params

import (
	"regexp"
	"strings"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/mask"
	"github.com/hargabyte/cppgen/internal/syntax"
)

// Ellipsis is the text of a C-style variadic parameter.
const Ellipsis = "..."

// Parameter is one entry of a parameter list. Raw, Type, Name and
// DefaultValue are taken verbatim from the source text.
type Parameter struct {
	Raw          string
	Type         string
	Name         string
	DefaultValue string
	Range        document.Range
	// NameIndex is the byte offset in Type at which a name belongs. For an
	// unnamed parameter it is where a name would be inserted.
	NameIndex int
	// Variadic marks the synthetic parameter standing for a trailing "...".
	Variadic bool

	// declarator is the parameter text without its default value; the name,
	// if any, occupies declarator[nameStart:nameStart+len(Name)].
	declarator string
	nameStart  int
}

// Declarator returns the parameter text without its default value.
func (p Parameter) Declarator() string {
	return p.declarator
}

// HasName reports whether the parameter names its argument.
func (p Parameter) HasName() bool {
	return p.Name != "" && !p.Variadic
}

// WithName returns the declarator with its name replaced by name. An empty
// name removes the existing name.
func (p Parameter) WithName(name string) string {
	if p.Variadic {
		return Ellipsis
	}
	if p.HasName() {
		out := p.declarator[:p.nameStart] + name + p.declarator[p.nameStart+len(p.Name):]
		return strings.TrimSpace(out)
	}
	if name == "" {
		return p.Type
	}
	head, tail := p.Type[:p.NameIndex], p.Type[p.NameIndex:]
	if needsSpace(head, tail == "") {
		return head + " " + name + tail
	}
	return head + name + tail
}

func needsSpace(head string, atEnd bool) bool {
	if head == "" {
		return false
	}
	c := head[len(head)-1]
	if isIdentByte(c) {
		return true
	}
	return atEnd && (c == '*' || c == '&' || c == '>')
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p Parameter) normalizedType() string {
	return syntax.NormalizeSourceText(p.Type)
}

// List is a parsed parameter list.
type List struct {
	Params []Parameter
	// Range spans the text between the parentheses.
	Range document.Range
}

var (
	reName           = regexp.MustCompile(`\b([A-Za-z_]\w*)((?:\s*\[\s*\])*)\s*$`)
	reTrailingArray  = regexp.MustCompile(`(?:\s*\[\s*\])+\s*$`)
	reNestedDecl     = regexp.MustCompile(`\(\s*\)(?:\s*\(\s*\)|(?:\s*\[\s*\])+)\s*$`)
	reTrailingIdent  = regexp.MustCompile(`\b[A-Za-z_]\w*\s*$`)
	reTypePrefixOnly = regexp.MustCompile(`^((const|volatile|struct|class|enum|union|typename)\b\s*)+$`)
	reVariadicSuffix = regexp.MustCompile(`(^|,)\s*\.\.\.\s*$`)
	reBareVariadic   = regexp.MustCompile(`[^\s,.]\s*\.\.\.\s*$`)
	reEmptyList      = regexp.MustCompile(`^\s*(void)?\s*$`)
)

// Parse splits the parameter list text, which starts at byte offset start in
// doc. A trailing "..." becomes a synthetic variadic parameter. A lone "void"
// yields an empty list.
func Parse(doc *document.Document, text string, start int) List {
	list := List{Range: doc.RangeAt(start, start+len(text))}
	if reEmptyList.MatchString(mask.NonSourceText(text, false)) {
		return list
	}

	partial := mask.NonSourceText(text, true)
	masked := syntax.MaskForParameters(text, true)

	var variadic *Parameter
	if cut, ok := variadicCut(text, partial, masked); ok {
		dots := strings.LastIndex(masked, Ellipsis)
		variadic = &Parameter{
			Raw:        Ellipsis,
			Type:       Ellipsis,
			Name:       Ellipsis,
			NameIndex:  len(Ellipsis),
			Variadic:   true,
			declarator: Ellipsis,
			Range:      doc.RangeAt(start+dots, start+dots+len(Ellipsis)),
		}
		text, partial, masked = text[:cut], partial[:cut], masked[:cut]
	}

	offset := 0
	for _, piece := range strings.Split(masked, ",") {
		lead := len(piece) - len(strings.TrimLeft(piece, " \t\r\n"))
		trimmed := strings.TrimSpace(piece)
		if trimmed != "" {
			from := offset + lead
			to := from + len(trimmed)
			p := parseParameter(text[from:to], partial[from:to], masked[from:to])
			p.Range = doc.RangeAt(start+from, start+to)
			list.Params = append(list.Params, p)
		}
		offset += len(piece) + 1
	}
	if variadic != nil {
		list.Params = append(list.Params, *variadic)
	}
	return list
}

// variadicCut returns where the parameters before a trailing C-style "..."
// end. A "..." glued to a named parameter, as in "const char* fmt...", counts.
// One glued to an unnamed type, as in "Ts...", is a pack expansion and does
// not.
func variadicCut(text, partial, masked string) (int, bool) {
	if loc := reVariadicSuffix.FindStringIndex(masked); loc != nil {
		return loc[0], true
	}
	if !reBareVariadic.MatchString(masked) {
		return 0, false
	}
	dots := strings.LastIndex(masked, Ellipsis)
	from := strings.LastIndexByte(masked[:dots], ',') + 1
	to := from + len(strings.TrimRight(masked[from:dots], " \t\r\n"))
	from = to - len(strings.TrimLeft(masked[from:to], " \t\r\n"))
	if !parseParameter(text[from:to], partial[from:to], masked[from:to]).HasName() {
		return 0, false
	}
	return dots, true
}

// parseParameter extracts the parts of one parameter. raw, partial and masked
// have equal length: partial has comments and literals masked, masked also
// has every bracketed group masked.
func parseParameter(raw, partial, masked string) Parameter {
	p := Parameter{Raw: raw}

	declEnd := len(raw)
	if eq := strings.IndexByte(masked, '='); eq >= 0 {
		valueMasked := masked[eq+1:]
		lead := len(valueMasked) - len(strings.TrimLeft(valueMasked, " \t\r\n"))
		p.DefaultValue = strings.TrimRight(raw[eq+1+lead:], " \t\r\n")
		declEnd = len(strings.TrimRight(masked[:eq], " \t\r\n"))
	}
	decl, maskedDecl, partialDecl := raw[:declEnd], masked[:declEnd], partial[:declEnd]
	p.declarator = decl

	if m := reName.FindStringSubmatchIndex(maskedDecl); m != nil && m[2] > 0 {
		name := decl[m[2]:m[3]]
		typ := strings.TrimSpace(decl[:m[2]])
		if validName(name) && typ != "" && !strings.HasSuffix(typ, "::") && !reTypePrefixOnly.MatchString(typ) {
			p.Name = name
			p.nameStart = m[2]
			p.NameIndex = len(typ)
			p.Type = typ + strings.TrimSpace(decl[m[4]:m[5]])
			return p
		}
	}

	if loc := reNestedDecl.FindStringIndex(maskedDecl); loc != nil {
		if rp := strings.IndexByte(partialDecl[loc[0]:], ')'); rp >= 0 {
			rp += loc[0]
			inner := decl[:rp]
			if m := reTrailingIdent.FindStringIndex(inner); m != nil {
				nameEnd := m[0] + len(strings.TrimRight(inner[m[0]:], " \t\r\n"))
				name := inner[m[0]:nameEnd]
				if validName(name) {
					p.Name = name
					p.nameStart = m[0]
					p.NameIndex = m[0]
					p.Type = strings.TrimSpace(inner[:m[0]] + inner[nameEnd:] + decl[rp:])
					return p
				}
			}
			p.Type = decl
			p.NameIndex = len(strings.TrimRight(inner, " \t\r\n"))
			return p
		}
	}

	p.Type = decl
	p.NameIndex = len(decl)
	if loc := reTrailingArray.FindStringIndex(maskedDecl); loc != nil {
		p.NameIndex = loc[0]
	}
	return p
}

// typeKeywords cannot name a parameter; a declarator ending in one of them is
// unnamed, as in "unsigned int".
var typeKeywords = map[string]bool{
	"const": true, "volatile": true, "int": true, "char": true, "short": true,
	"long": true, "float": true, "double": true, "bool": true, "void": true,
	"signed": true, "unsigned": true, "auto": true, "wchar_t": true,
	"char8_t": true, "char16_t": true, "char32_t": true,
}

func validName(name string) bool {
	return !typeKeywords[name]
}

// Len returns the number of parameters, counting a variadic marker.
func (l List) Len() int {
	return len(l.Params)
}

// Variadic reports whether the list ends in "...".
func (l List) Variadic() bool {
	return len(l.Params) > 0 && l.Params[len(l.Params)-1].Variadic
}

// Equal reports whether both lists have the same parameter types and names
// in the same order. Formatting differences are ignored.
func (l List) Equal(other List) bool {
	return l.sameOrder(other, true)
}

// TypesEqual is like Equal but ignores parameter names.
func (l List) TypesEqual(other List) bool {
	return l.sameOrder(other, false)
}

// IsReordered reports whether other holds the same parameters as l in a
// different order.
func (l List) IsReordered(other List) bool {
	return !l.Equal(other) && l.permutationOf(other, true)
}

// TypesReordered is like IsReordered but ignores parameter names.
func (l List) TypesReordered(other List) bool {
	return !l.TypesEqual(other) && l.permutationOf(other, false)
}

func (l List) sameOrder(other List, withNames bool) bool {
	if len(l.Params) != len(other.Params) {
		return false
	}
	for i := range l.Params {
		if key(l.Params[i], withNames) != key(other.Params[i], withNames) {
			return false
		}
	}
	return true
}

func (l List) permutationOf(other List, withNames bool) bool {
	if len(l.Params) != len(other.Params) {
		return false
	}
	counts := make(map[string]int, len(l.Params))
	for _, p := range l.Params {
		counts[key(p, withNames)]++
	}
	for _, p := range other.Params {
		k := key(p, withNames)
		if counts[k] == 0 {
			return false
		}
		counts[k]--
	}
	return true
}

func key(p Parameter, withName bool) string {
	if withName {
		return p.normalizedType() + "\x00" + p.Name
	}
	return p.normalizedType()
}

// Names returns the parameter names in order, skipping unnamed and variadic parameters.
func (l List) Names() []string {
	var names []string
	for _, p := range l.Params {
		if p.HasName() {
			names = append(names, p.Name)
		}
	}
	return names
}

// Join renders the list as declarators separated by ", ", without default values.
func (l List) Join() string {
	parts := make([]string, len(l.Params))
	for i, p := range l.Params {
		parts[i] = p.Declarator()
	}
	return strings.Join(parts, ", ")
}
