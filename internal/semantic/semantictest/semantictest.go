// Package semantictest builds semantic files from source text for tests.
// Symbols are located by searching the text, so fixtures stay readable.
package semantictest

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/oracle"
	"github.com/hargabyte/cppgen/internal/semantic"
	"github.com/hargabyte/cppgen/internal/symbol"
)

// HeaderExtensions are the header extensions test files are judged by.
var HeaderExtensions = []string{"h", "hpp"}

// Builder creates document symbols for one document.
type Builder struct {
	tb  testing.TB
	Doc *document.Document
}

// Sym returns a symbol whose range starts at the first occurrence of from
// and ends after the first occurrence of to that follows it. An empty to
// makes the range cover from alone. The selection range is the first
// occurrence of name in the range, less any qualifiers.
func (b Builder) Sym(name string, kind protocol.SymbolKind, from, to string, children ...protocol.DocumentSymbol) protocol.DocumentSymbol {
	b.tb.Helper()
	text := b.Doc.Text()
	start := strings.Index(text, from)
	if start < 0 {
		b.tb.Fatalf("%q not found", from)
	}
	return b.SymAt(name, kind, start, from, to, children...)
}

// SymAt is Sym with the search for from starting at byte offset at, for
// text that occurs more than once.
func (b Builder) SymAt(name string, kind protocol.SymbolKind, at int, from, to string, children ...protocol.DocumentSymbol) protocol.DocumentSymbol {
	b.tb.Helper()
	text := b.Doc.Text()
	i := strings.Index(text[at:], from)
	if i < 0 {
		b.tb.Fatalf("%q not found after offset %d", from, at)
	}
	start := at + i
	end := start + len(from)
	if to != "" {
		j := strings.Index(text[start:], to)
		if j < 0 {
			b.tb.Fatalf("%q not found after %q", to, from)
		}
		end = start + j + len(to)
	}
	sel := strings.Index(text[start:end], name)
	if sel < 0 {
		b.tb.Fatalf("name %q not in range of %q", name, from)
	}
	bare := name
	if k := strings.LastIndex(name, "::"); k >= 0 {
		bare = name[k+2:]
		sel += k + 2
	}
	sel += start
	return protocol.DocumentSymbol{
		Name:           name,
		Kind:           kind,
		Range:          oracle.ToProtocolRange(b.Doc.RangeAt(start, end)),
		SelectionRange: oracle.ToProtocolRange(b.Doc.RangeAt(sel, sel+len(bare))),
		Children:       children,
	}
}

// File builds a semantic file from text. symbols may be nil.
func File(tb testing.TB, path, text string, symbols func(b Builder) []protocol.DocumentSymbol) *semantic.File {
	tb.Helper()
	doc := document.New(path, text)
	var syms []protocol.DocumentSymbol
	if symbols != nil {
		syms = symbols(Builder{tb: tb, Doc: doc})
	}
	return semantic.NewFile(doc, symbol.Build(path, syms), HeaderExtensions)
}

// Find returns the first symbol, depth first, with the given name.
func Find(tb testing.TB, f *semantic.File, name string) *semantic.View {
	tb.Helper()
	n := f.Tree.Find(func(n *symbol.Node) bool { return n.Name == name })
	if n == nil {
		tb.Fatalf("symbol %q not found in %s", name, f.Path())
	}
	return f.View(n)
}

// Insert returns the text of doc with text inserted at p.
func Insert(doc *document.Document, p document.Position, text string) string {
	offset := doc.OffsetAt(p)
	return doc.Text()[:offset] + text + doc.Text()[offset:]
}
