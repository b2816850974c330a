package semantic

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/oracle"
	"github.com/hargabyte/cppgen/internal/symbol"
)

var headerExts = []string{"h", "hpp"}

// builder creates document symbols by locating text in a document.
type builder struct {
	t   *testing.T
	doc *document.Document
}

// sym returns a symbol whose range starts at the first occurrence of from
// and ends after the first occurrence of to that follows it. An empty to
// makes the range cover from alone. The selection range is the first
// occurrence of name in the range, less any qualifiers.
func (b builder) sym(name string, kind protocol.SymbolKind, from, to string, children ...protocol.DocumentSymbol) protocol.DocumentSymbol {
	b.t.Helper()
	text := b.doc.Text()
	start := strings.Index(text, from)
	if start < 0 {
		b.t.Fatalf("%q not found", from)
	}
	end := start + len(from)
	if to != "" {
		i := strings.Index(text[start:], to)
		if i < 0 {
			b.t.Fatalf("%q not found after %q", to, from)
		}
		end = start + i + len(to)
	}
	bare := name
	sel := strings.Index(text[start:end], name)
	if sel < 0 {
		b.t.Fatalf("name %q not in range of %q", name, from)
	}
	if i := strings.LastIndex(name, "::"); i >= 0 {
		bare = name[i+2:]
		sel += i + 2
	}
	sel += start
	return protocol.DocumentSymbol{
		Name:           name,
		Kind:           kind,
		Range:          oracle.ToProtocolRange(b.doc.RangeAt(start, end)),
		SelectionRange: oracle.ToProtocolRange(b.doc.RangeAt(sel, sel+len(bare))),
		Children:       children,
	}
}

func newTestFile(t *testing.T, path, text string, symbols func(b builder) []protocol.DocumentSymbol) *File {
	t.Helper()
	doc := document.New(path, text)
	var syms []protocol.DocumentSymbol
	if symbols != nil {
		syms = symbols(builder{t: t, doc: doc})
	}
	return NewFile(doc, symbol.Build(path, syms), headerExts)
}

func find(t *testing.T, f *File, name string) *View {
	t.Helper()
	n := f.Tree.Find(func(n *symbol.Node) bool { return n.Name == name })
	if n == nil {
		t.Fatalf("symbol %q not found", name)
	}
	return f.View(n)
}

const widgetHeader = `#pragma once

namespace ui {

// A resizable widget.
class Widget : public Base, private detail::Counter<int> {
public:
    Widget();
    virtual ~Widget();

    void resize(int w, int h = 10) const;
    static int count();
    virtual void draw() = 0;
    int area() const { return w_ * h_; }

private:
    int w_;
    const int h_;
    std::string &name_;
    static int s_total;
};

}
`

func widgetFile(t *testing.T) *File {
	return newTestFile(t, "/ws/widget.h", widgetHeader, func(b builder) []protocol.DocumentSymbol {
		return []protocol.DocumentSymbol{
			b.sym("ui", protocol.SymbolKindNamespace, "namespace ui {", "};\n\n}",
				b.sym("Widget", protocol.SymbolKindClass, "class Widget", "\n}",
					b.sym("Widget", protocol.SymbolKindConstructor, "Widget()", ""),
					b.sym("~Widget", protocol.SymbolKindMethod, "virtual ~Widget()", ""),
					b.sym("resize", protocol.SymbolKindMethod, "void resize(int w, int h = 10) const", ""),
					b.sym("count", protocol.SymbolKindMethod, "static int count()", ""),
					b.sym("draw", protocol.SymbolKindMethod, "virtual void draw() = 0", ""),
					b.sym("area", protocol.SymbolKindMethod, "int area() const { return w_ * h_; }", ""),
					b.sym("w_", protocol.SymbolKindField, "int w_", ""),
					b.sym("h_", protocol.SymbolKindField, "const int h_", ""),
					b.sym("name_", protocol.SymbolKindField, "std::string &name_", ""),
					b.sym("s_total", protocol.SymbolKindField, "static int s_total", ""),
				),
			),
		}
	})
}
