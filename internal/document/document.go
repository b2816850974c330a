// Package document provides an in-memory text buffer for C/C++ source files.
//
// A Document answers the position queries every other package relies on:
// converting between byte offsets and line/column positions, slicing text by
// range, and inspecting individual lines. Columns are byte offsets within a
// line, which matches the points reported by tree-sitter.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Document is an immutable snapshot of a file's text.
type Document struct {
	// URI identifies the document. For files on disk it is the absolute path.
	URI string

	text       string
	lineStarts []int
	eol        string
}

// Line describes a single line of a document, excluding its line terminator.
type Line struct {
	Number             int
	Text               string
	Range              Range
	FirstNonWhitespace int
}

// IsEmptyOrWhitespace reports whether the line contains only whitespace.
func (l Line) IsEmptyOrWhitespace() bool {
	return strings.TrimSpace(l.Text) == ""
}

// Indentation returns the leading whitespace of the line.
func (l Line) Indentation() string {
	return l.Text[:l.FirstNonWhitespace]
}

// New creates a document from text.
func New(uri, text string) *Document {
	d := &Document{URI: uri, text: text}
	d.lineStarts = append(d.lineStarts, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			d.lineStarts = append(d.lineStarts, i+1)
		}
	}
	d.eol = detectEOL(text)
	return d
}

// Open reads a document from disk.
func Open(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}
	return New(abs, string(data)), nil
}

func detectEOL(text string) string {
	if i := strings.IndexByte(text, '\n'); i > 0 && text[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// Path returns the file system path of the document.
func (d *Document) Path() string {
	return d.URI
}

// Text returns the full document text.
func (d *Document) Text() string {
	return d.text
}

// EOL returns the line terminator used by the document.
func (d *Document) EOL() string {
	return d.eol
}

// Len returns the document length in bytes.
func (d *Document) Len() int {
	return len(d.text)
}

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int {
	return len(d.lineStarts)
}

// OffsetAt converts a position to a byte offset, clamping out-of-range values.
func (d *Document) OffsetAt(p Position) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(d.lineStarts) {
		return len(d.text)
	}
	start := d.lineStarts[p.Line]
	end := d.lineEnd(p.Line)
	off := start + p.Character
	if p.Character < 0 {
		off = start
	}
	if off > end {
		off = end
	}
	return off
}

// PositionAt converts a byte offset to a position.
func (d *Document) PositionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.text) {
		offset = len(d.text)
	}
	line := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1
	char := offset - d.lineStarts[line]
	if end := d.lineEnd(line); offset > end {
		char = end - d.lineStarts[line]
	}
	return Position{Line: line, Character: char}
}

// lineEnd returns the offset of the end of a line's content, before "\r\n" or "\n".
func (d *Document) lineEnd(line int) int {
	var end int
	if line+1 < len(d.lineStarts) {
		end = d.lineStarts[line+1] - 1
		if end > d.lineStarts[line] && d.text[end-1] == '\r' {
			end--
		}
	} else {
		end = len(d.text)
	}
	return end
}

// GetText returns the text within a range.
func (d *Document) GetText(r Range) string {
	start, end := d.OffsetAt(r.Start), d.OffsetAt(r.End)
	if end < start {
		return ""
	}
	return d.text[start:end]
}

// TextFrom returns the text from a position to the end of the document.
func (d *Document) TextFrom(p Position) string {
	return d.text[d.OffsetAt(p):]
}

// TextUntil returns the text from the start of the document to a position.
func (d *Document) TextUntil(p Position) string {
	return d.text[:d.OffsetAt(p)]
}

// LineAt returns the line with the given zero-based number, clamped to the document.
func (d *Document) LineAt(n int) Line {
	if n < 0 {
		n = 0
	}
	if n >= len(d.lineStarts) {
		n = len(d.lineStarts) - 1
	}
	start, end := d.lineStarts[n], d.lineEnd(n)
	text := d.text[start:end]
	first := len(text) - len(strings.TrimLeft(text, " \t"))
	return Line{
		Number:             n,
		Text:               text,
		Range:              Range{Start: Position{Line: n}, End: Position{Line: n, Character: end - start}},
		FirstNonWhitespace: first,
	}
}

// End returns the position at the end of the document.
func (d *Document) End() Position {
	return d.PositionAt(len(d.text))
}

// RangeAt returns the range spanning two offsets.
func (d *Document) RangeAt(start, end int) Range {
	return Range{Start: d.PositionAt(start), End: d.PositionAt(end)}
}

// IsHeader reports whether the document path has one of the given header extensions.
// Extensions are given without the leading dot.
func (d *Document) IsHeader(headerExtensions []string) bool {
	ext := strings.TrimPrefix(filepath.Ext(d.URI), ".")
	for _, e := range headerExtensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// PositionAfterLastNonEmptyLine returns the end of the last line that has content.
func (d *Document) PositionAfterLastNonEmptyLine() Position {
	for n := d.LineCount() - 1; n >= 0; n-- {
		if line := d.LineAt(n); !line.IsEmptyOrWhitespace() {
			return line.Range.End
		}
	}
	return Position{}
}
