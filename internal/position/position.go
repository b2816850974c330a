// Package position describes where generated code goes and formats the text
// inserted there.
package position

import (
	"regexp"
	"strings"

	"github.com/hargabyte/cppgen/internal/document"
)

// Options qualify a proposed position.
type Options struct {
	// RelativeTo is the range of the symbol the position was chosen relative
	// to. Its first line supplies the indentation of inserted text.
	RelativeTo *document.Range
	Before     bool
	After      bool
	// NextTo suppresses the blank line normally placed between the new text
	// and its neighbour.
	NextTo bool
	// EmptyScope marks a position just inside the braces of an empty scope;
	// inserted text gets one extra level of indentation.
	EmptyScope bool
	// InNamespace qualifies EmptyScope: namespace bodies are only indented
	// when configured to be.
	InNamespace bool
}

// Proposed is a candidate insertion point.
type Proposed struct {
	At document.Position
	Options
}

// New returns a proposed position.
func New(p document.Position, opts Options) Proposed {
	return Proposed{At: p, Options: opts}
}

// RelativeRange returns a pointer to a copy of r, for use in Options.
func RelativeRange(r document.Range) *document.Range {
	return &r
}

// Style controls indentation of inserted text.
type Style struct {
	// Indent is one level of indentation, for example four spaces or a tab.
	Indent string
	// IndentNamespaceBody indents text inserted into an empty namespace.
	IndentNamespaceBody bool
	Braces              BraceStyle
}

// BraceStyle is where the opening brace of a function body goes.
type BraceStyle string

const (
	SameLine BraceStyle = "same-line"
	NewLine  BraceStyle = "new-line"
	// NewLineCtorDtor puts braces on a new line for constructors and
	// destructors only.
	NewLineCtorDtor BraceStyle = "new-line-ctor-dtor"
)

// Separator returns the text between a function head and its opening brace.
func (s BraceStyle) Separator(eol string, ctorOrDtor bool) string {
	if s == NewLine || (s == NewLineCtorDtor && ctorOrDtor) {
		return eol
	}
	return " "
}

var (
	reLineStart   = regexp.MustCompile(`(?m)^`)
	reClosingLine = regexp.MustCompile(`^\s*}`)
	reOpeningLine = regexp.MustCompile(`\{\s*$`)
)

// Format prepares text for insertion at p in doc: it indents the text to
// match its surroundings, adds separating line breaks, and keeps access
// specifiers one level left of the members they introduce.
func (p Proposed) Format(text string, doc *document.Document, style Style) string {
	if p.EmptyScope && (!p.InNamespace || style.IndentNamespaceBody) {
		text = reLineStart.ReplaceAllLiteralString(text, style.Indent)
	}

	indentLine := doc.LineAt(p.At.Line)
	if p.RelativeTo != nil {
		indentLine = doc.LineAt(p.RelativeTo.Start.Line)
	}
	indentation := indentLine.Indentation()
	if !p.Before {
		text = reLineStart.ReplaceAllLiteralString(text, indentation)
	} else {
		text = strings.ReplaceAll(text, "\n", "\n"+indentation)
	}

	if style.Indent != "" {
		for _, access := range []string{"public", "protected", "private"} {
			text = strings.ReplaceAll(text, style.Indent+access, access)
		}
	}

	eol := doc.EOL()
	newLines := eol + eol
	next, hasNext := p.neighbourLine(doc)
	switch {
	case p.NextTo || !hasNext:
		newLines = eol
	case !next.IsEmptyOrWhitespace() && p.After && !reClosingLine.MatchString(next.Text):
		newLines = eol
	case !next.IsEmptyOrWhitespace() && p.Before && !reOpeningLine.MatchString(next.Text):
		newLines = eol
	}

	if p.After {
		text = newLines + text
	} else if p.Before {
		text += newLines
	}

	if p.At.Line == doc.LineCount()-1 {
		text += eol
	}
	if p.Before {
		text += indentation
	}
	return text
}

// neighbourLine returns the line after an After position or before a Before position.
func (p Proposed) neighbourLine(doc *document.Document) (document.Line, bool) {
	switch {
	case p.After:
		if p.At.Line+1 < doc.LineCount() {
			return doc.LineAt(p.At.Line + 1), true
		}
	case p.Before:
		if p.At.Line-1 >= 0 {
			return doc.LineAt(p.At.Line - 1), true
		}
	}
	return document.Line{}, false
}
