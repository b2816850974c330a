// Package semantic binds symbol tree nodes to the text of a document and
// answers questions about them: where a declaration starts and ends, which
// scopes qualify it, whether it is a definition, and how to rewrite it for
// another place in the code.
package semantic

import (
	"regexp"
	"strings"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/mask"
	"github.com/hargabyte/cppgen/internal/symbol"
	"github.com/hargabyte/cppgen/internal/syntax"
)

// File is a document together with its symbol tree.
type File struct {
	Doc  *document.Document
	Tree *symbol.Tree
	// Header is true for header files.
	Header bool
}

// NewFile pairs a document with its symbols. headerExtensions decides whether
// the file is a header.
func NewFile(doc *document.Document, tree *symbol.Tree, headerExtensions []string) *File {
	if tree == nil {
		tree = &symbol.Tree{Path: doc.Path()}
	}
	return &File{Doc: doc, Tree: tree, Header: doc.IsHeader(headerExtensions)}
}

// Path returns the file path.
func (f *File) Path() string {
	return f.Doc.Path()
}

// View wraps n for this file.
func (f *File) View(n *symbol.Node) *View {
	if n == nil {
		return nil
	}
	return newView(f, n)
}

// SymbolAt returns the innermost symbol at p, or nil.
func (f *File) SymbolAt(p document.Position) *View {
	return f.View(f.Tree.SymbolAt(p))
}

// TopLevel returns views of the top-level symbols.
func (f *File) TopLevel() []*View {
	return f.views(f.Tree.TopLevel())
}

func (f *File) views(nodes []*symbol.Node) []*View {
	out := make([]*View, len(nodes))
	for i, n := range nodes {
		out[i] = newView(f, n)
	}
	return out
}

// FindMatching returns the first symbol, depth first, that matches target:
// same name, compatible kind and the same enclosing scopes.
func (f *File) FindMatching(target *View) *View {
	var found *View
	f.Tree.Walk(func(n *symbol.Node) bool {
		if n.Name != target.Name || !kindsCompatible(n.Kind, target.Kind) {
			return true
		}
		if v := newView(f, n); v.Matches(target) {
			found = v
			return false
		}
		return true
	})
	return found
}

// View is a symbol node read against the text of its document. Views are
// cheap to create and are not shared between goroutines.
type View struct {
	*symbol.Node
	file *File

	// Range is the node's range extended over any semicolons that directly
	// follow it.
	Range document.Range

	parsable    string
	trueStart   *document.Position
	commentFrom *document.Position
}

func newView(f *File, n *symbol.Node) *View {
	v := &View{Node: n, file: f}
	v.Range = n.Range.WithEnd(syntax.EndOfStatement(f.Doc, n.Range.End))
	v.parsable = mask.NonSourceText(f.Doc.GetText(v.Range), true)
	return v
}

// File returns the file the view reads from.
func (v *View) File() *File { return v.file }

// Doc returns the document the view reads from.
func (v *View) Doc() *document.Document { return v.file.Doc }

// Path returns the path of the view's document.
func (v *View) Path() string { return v.file.Doc.Path() }

// Parent returns the enclosing symbol, or nil.
func (v *View) Parent() *View {
	return v.file.View(v.file.Tree.Parent(v.Node))
}

// Children returns the nested symbols in range order.
func (v *View) Children() []*View {
	return v.file.views(v.file.Tree.Children(v.Node))
}

// Scopes returns the enclosing symbols, outermost first.
func (v *View) Scopes() []*View {
	return v.file.views(v.file.Tree.Scopes(v.Node))
}

// Siblings returns the symbols sharing v's parent, including v.
func (v *View) Siblings() []*View {
	return v.file.views(v.file.Tree.Siblings(v.Node))
}

func (v *View) offset(p document.Position) int {
	return v.file.Doc.OffsetAt(p)
}

func (v *View) startOffset() int { return v.offset(v.Range.Start) }

func (v *View) endOffset() int { return v.offset(v.Range.End) }

func (v *View) positionAt(offset int) document.Position {
	return v.file.Doc.PositionAt(offset)
}

func (v *View) text(from, to document.Position) string {
	return v.file.Doc.GetText(document.NewRange(from, to))
}

// relative converts p to an index into the view's text, clamped to it.
func (v *View) relative(p document.Position) int {
	i := v.offset(p) - v.startOffset()
	if i < 0 {
		return 0
	}
	if i > len(v.parsable) {
		return len(v.parsable)
	}
	return i
}

// Text returns the text of the symbol.
func (v *View) Text() string {
	return v.file.Doc.GetText(v.Range)
}

// ParsableText returns the symbol text with comments removed and literals blanked.
func (v *View) ParsableText() string { return v.parsable }

// ParsableLeadingText is the parsable text before the symbol's name.
func (v *View) ParsableLeadingText() string {
	return v.parsable[:v.relative(v.SelectionRange.Start)]
}

// parsableTemplateSnippet is the masked text between TrueStart and the start
// of the reported range, usually a template statement.
func (v *View) parsableTemplateSnippet() string {
	snippet := v.text(v.TrueStart(), v.Range.Start)
	if snippet == "" {
		return ""
	}
	return mask.NonSourceText(snippet, true)
}

// ParsableFullText is ParsableText including a preceding template statement.
func (v *View) ParsableFullText() string {
	return v.parsableTemplateSnippet() + v.parsable
}

// ParsableFullLeadingText is ParsableLeadingText including a preceding template statement.
func (v *View) ParsableFullLeadingText() string {
	return v.parsableTemplateSnippet() + v.ParsableLeadingText()
}

// LeadingText is the text between the start of the symbol and its name.
func (v *View) LeadingText() string {
	return v.text(v.Range.Start, v.SelectionRange.Start)
}

// FullRange spans the symbol including a preceding template statement.
func (v *View) FullRange() document.Range {
	return document.NewRange(v.TrueStart(), v.Range.End)
}

// FullText returns the text of FullRange.
func (v *View) FullText() string {
	return v.file.Doc.GetText(v.FullRange())
}

// RangeWithLeadingComment spans the symbol including its leading comment.
func (v *View) RangeWithLeadingComment() document.Range {
	return document.NewRange(v.LeadingCommentStart(), v.Range.End)
}

var (
	reTemplateTail       = regexp.MustCompile(`\btemplate\s*<\s*>\s*$`)
	reTemplateStatements = regexp.MustCompile(`^(template(\s*<\s*>)?\s*)*`)
	reBodyOrSemicolon    = regexp.MustCompile(`\s*\{|\s*;$`)
	reLineCommentAhead   = regexp.MustCompile(`^[ \t]*//`)
	reBlockCommentAhead  = regexp.MustCompile(`^[ \t]*/\*`)
)

// TrueStart is the start of the symbol including template statements that
// language servers leave out of the reported range.
func (v *View) TrueStart() document.Position {
	if v.trueStart != nil {
		return *v.trueStart
	}
	start := v.Range.Start
	before := v.file.Doc.TextUntil(start)
	masked := mask.AngleBrackets(mask.Comments(before, false), true)
	for {
		trimmed := strings.TrimRight(masked, " \t\r\n")
		if !strings.HasSuffix(trimmed, ">") {
			break
		}
		loc := reTemplateTail.FindStringIndex(trimmed)
		if loc == nil {
			break
		}
		start = v.positionAt(loc[0])
		masked = trimmed[:loc[0]]
	}
	v.trueStart = &start
	return start
}

// DeclarationStart is the start of the declaration after any template statements.
func (v *View) DeclarationStart() document.Position {
	leading := v.ParsableLeadingText()
	if !strings.HasPrefix(leading, "template") {
		return v.Range.Start
	}
	m := reTemplateStatements.FindString(mask.AngleBrackets(leading, true))
	if m == "" {
		return v.Range.Start
	}
	return v.positionAt(v.startOffset() + len(m))
}

// DeclarationEnd is the end of the declaration: before the function body,
// constructor initializer list, class body or final semicolon.
func (v *View) DeclarationEnd() document.Position {
	masked := mask.Parentheses(v.parsable, true)
	nameEnd := v.relative(v.SelectionRange.End)
	loc := reBodyOrSemicolon.FindStringIndex(masked[nameEnd:])
	if loc == nil {
		return v.Range.End
	}
	bodyStart := nameEnd + loc[0]
	if !v.IsConstructor() {
		return v.positionAt(v.startOffset() + bodyStart)
	}
	if i := indexInitializerColon(masked[nameEnd:bodyStart]); i >= 0 {
		return v.positionAt(v.startOffset() + nameEnd + i)
	}
	return v.positionAt(v.startOffset() + bodyStart)
}

// indexInitializerColon returns the index of the whitespace run preceding the
// first ':' that is not part of "::", or -1.
func indexInitializerColon(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != ':' {
			continue
		}
		if i+1 < len(s) && s[i+1] == ':' {
			i++
			continue
		}
		return len(strings.TrimRight(s[:i], " \t\r\n"))
	}
	return -1
}

// BodyStart is the position just inside the opening brace of the body.
func (v *View) BodyStart() document.Position {
	masked := mask.Braces(mask.Parentheses(v.parsable, true), true)
	i := strings.LastIndexByte(masked, '{')
	if i < 0 {
		return v.Range.End
	}
	return v.positionAt(v.startOffset() + i + 1)
}

// BodyEnd is the position of the closing brace of the body.
func (v *View) BodyEnd() document.Position {
	i := strings.LastIndexByte(v.parsable, '}')
	if i < 0 {
		return v.Range.End
	}
	return v.positionAt(v.startOffset() + i)
}

// ScopeStringStart is where the scope qualifiers in front of the name start,
// as in "ns::Widget::" of "void ns::Widget::resize()". It equals the start of
// the name when there are none.
func (v *View) ScopeStringStart() document.Position {
	trimmed := mask.AngleBrackets(strings.TrimRight(v.ParsableLeadingText(), " \t\r\n"), false)
	if !strings.HasSuffix(trimmed, "::") {
		return v.SelectionRange.Start
	}
	if i := lastScopeStringStart(trimmed); i >= 0 {
		return v.positionAt(v.startOffset() + i)
	}
	return v.SelectionRange.Start
}

var reIdentifier = regexp.MustCompile(`[A-Za-z_]\w*`)

// lastScopeStringStart returns the index of the last identifier that is
// followed by "::" but not preceded by one.
func lastScopeStringStart(text string) int {
	last := -1
	for _, m := range reIdentifier.FindAllStringIndex(text, -1) {
		if m[0] > 0 && isIdentByte(text[m[0]-1]) {
			continue
		}
		after := strings.TrimLeft(text[m[1]:], " \t\r\n")
		if !strings.HasPrefix(after, "::") {
			continue
		}
		before := strings.TrimRight(text[:m[0]], " \t\r\n")
		if strings.HasSuffix(before, "::") {
			continue
		}
		last = m[0]
	}
	return last
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// HasLeadingComment reports whether a comment directly precedes the symbol.
func (v *View) HasLeadingComment() bool {
	return v.LeadingCommentStart() != v.TrueStart()
}

// LeadingCommentStart is the start of the comment directly above the symbol,
// or TrueStart if there is none.
func (v *View) LeadingCommentStart() document.Position {
	if v.commentFrom != nil {
		return *v.commentFrom
	}
	p := v.leadingCommentStart()
	v.commentFrom = &p
	return p
}

func (v *View) leadingCommentStart() document.Position {
	doc := v.file.Doc
	trueStart := v.TrueStart()
	masked := trimLastLineBreak(mask.Comments(doc.TextUntil(trueStart), true))

	switch {
	case strings.HasSuffix(masked, "*/"):
		if i := strings.LastIndex(masked, "/*"); i >= 0 {
			return doc.PositionAt(i)
		}
		return trueStart
	case strings.HasSuffix(masked, "//"):
		for i := trueStart.Line - 1; i >= 0; i-- {
			if strings.HasPrefix(strings.TrimLeft(doc.LineAt(i).Text, " \t"), "//") {
				if i == 0 {
					return document.Position{Line: 0, Character: strings.Index(doc.LineAt(0).Text, "//")}
				}
				continue
			}
			col := strings.Index(doc.LineAt(i+1).Text, "//")
			if col < 0 || i+1 >= trueStart.Line {
				return trueStart
			}
			return document.Position{Line: i + 1, Character: col}
		}
	}
	return trueStart
}

// trimLastLineBreak removes trailing blanks and at most one line break.
func trimLastLineBreak(s string) string {
	s = strings.TrimRight(s, " \t")
	if strings.HasSuffix(s, "\r\n") {
		s = s[:len(s)-2]
	} else if strings.HasSuffix(s, "\n") {
		s = s[:len(s)-1]
	}
	return strings.TrimRight(s, " \t")
}

// TrailingCommentEnd is the end of a comment that starts on the line where
// the symbol ends, or the end of the symbol.
func (v *View) TrailingCommentEnd() document.Position {
	doc := v.file.Doc
	trailing := doc.TextFrom(v.Range.End)
	if reLineCommentAhead.MatchString(trailing) {
		return doc.LineAt(v.Range.End.Line).Range.End
	}
	if reBlockCommentAhead.MatchString(trailing) {
		masked := mask.Comments(trailing, true)
		if i := strings.Index(masked, "*/"); i >= 0 {
			return doc.PositionAt(v.endOffset() + i + 2)
		}
	}
	return v.Range.End
}

// dedent removes the indentation of the symbol's first line from the start
// of every line of text.
func (v *View) dedent(text string) string {
	indent := v.file.Doc.LineAt(v.TrueStart().Line).Indentation()
	if indent == "" {
		return text
	}
	return regexp.MustCompile("(?m)^" + regexp.QuoteMeta(indent)).ReplaceAllLiteralString(text, "")
}

// SubSymbol is a named piece of a symbol's text that language servers do
// not report, such as a base class or an access specifier.
type SubSymbol struct {
	Name           string
	Range          document.Range
	SelectionRange document.Range
}

func newSubSymbol(doc *document.Document, r, sel document.Range) SubSymbol {
	return SubSymbol{Name: doc.GetText(r), Range: r, SelectionRange: sel}
}
