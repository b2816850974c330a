package placement

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/oracle"
	"github.com/hargabyte/cppgen/internal/position"
	"github.com/hargabyte/cppgen/internal/semantic"
	st "github.com/hargabyte/cppgen/internal/semantic/semantictest"
)

// fakeLinker links symbols by name to fixed locations.
type fakeLinker struct {
	definitions  map[string]oracle.Location
	declarations map[string]oracle.Location
	err          error
	asked        []string
}

func (l *fakeLinker) Definition(_ context.Context, v *semantic.View) (oracle.Location, bool, error) {
	l.asked = append(l.asked, v.Name)
	if l.err != nil {
		return oracle.Location{}, false, l.err
	}
	loc, ok := l.definitions[v.Name]
	return loc, ok, nil
}

func (l *fakeLinker) Declaration(_ context.Context, v *semantic.View) (oracle.Location, bool, error) {
	l.asked = append(l.asked, v.Name)
	if l.err != nil {
		return oracle.Location{}, false, l.err
	}
	loc, ok := l.declarations[v.Name]
	return loc, ok, nil
}

func locationOf(f *semantic.File, v *semantic.View) oracle.Location {
	return oracle.Location{Path: f.Path(), Range: v.SelectionRange}
}

var style = position.Style{Indent: "    "}

const widgetHeader = "class Widget {\npublic:\n    Widget();\n    void resize(int w, int h);\n};\n"

func widgetHeaderFile(t *testing.T) *semantic.File {
	return st.File(t, "/ws/widget.h", widgetHeader, func(b st.Builder) []protocol.DocumentSymbol {
		return []protocol.DocumentSymbol{
			b.Sym("Widget", protocol.SymbolKindClass, "class Widget", "}",
				b.Sym("Widget", protocol.SymbolKindConstructor, "Widget()", ""),
				b.Sym("resize", protocol.SymbolKindMethod, "void resize(int w, int h)", ""),
			),
		}
	})
}

func TestDefinitionAfterLinkedSibling(t *testing.T) {
	header := widgetHeaderFile(t)
	source := st.File(t, "/ws/widget.cpp", "#include \"widget.h\"\n\nWidget::Widget()\n{\n}\n", func(b st.Builder) []protocol.DocumentSymbol {
		return []protocol.DocumentSymbol{
			b.Sym("Widget::Widget", protocol.SymbolKindConstructor, "Widget::Widget()", "}"),
		}
	})
	links := &fakeLinker{definitions: map[string]oracle.Location{
		"Widget": locationOf(source, st.Find(t, source, "Widget")),
	}}

	resize := st.Find(t, header, "resize")
	p, err := New(links).ForFunctionDefinition(context.Background(), resize, source)
	require.NoError(t, err)
	assert.True(t, p.After)
	assert.False(t, p.NextTo)
	assert.Equal(t, document.Position{Line: 4, Character: 1}, p.At)

	definition := resize.NewFunctionDefinition(source, p.At) + "\n{\n\n}"
	assert.Equal(t, "void Widget::resize(int w, int h)\n{\n\n}", definition)

	got := st.Insert(source.Doc, p.At, p.Format(definition, source.Doc, style))
	want := "#include \"widget.h\"\n\nWidget::Widget()\n{\n}\n\nvoid Widget::resize(int w, int h)\n{\n\n}\n"
	assert.Equal(t, want, got)
}

const freeFunctions = "namespace ui {\nvoid a();\nvoid b();\nvoid c();\n}\n"

func freeFunctionsFile(t *testing.T) *semantic.File {
	return st.File(t, "/ws/ui.h", freeFunctions, func(b st.Builder) []protocol.DocumentSymbol {
		return []protocol.DocumentSymbol{
			b.Sym("ui", protocol.SymbolKindNamespace, "namespace ui {", "}",
				b.Sym("a", protocol.SymbolKindFunction, "void a()", ""),
				b.Sym("b", protocol.SymbolKindFunction, "void b()", ""),
				b.Sym("c", protocol.SymbolKindFunction, "void c()", ""),
			),
		}
	})
}

func TestDefinitionBeforeLinkedSibling(t *testing.T) {
	header := freeFunctionsFile(t)
	source := st.File(t, "/ws/ui.cpp", "namespace ui {\n\n// Does c.\nvoid c() {}\n\n}\n", func(b st.Builder) []protocol.DocumentSymbol {
		return []protocol.DocumentSymbol{
			b.Sym("ui", protocol.SymbolKindNamespace, "namespace ui {", "\n\n}",
				b.Sym("c", protocol.SymbolKindFunction, "void c() {}", ""),
			),
		}
	})
	links := &fakeLinker{definitions: map[string]oracle.Location{
		"c": locationOf(source, st.Find(t, source, "c")),
	}}

	p, err := New(links).ForFunctionDefinition(context.Background(), st.Find(t, header, "b"), source)
	require.NoError(t, err)
	assert.True(t, p.Before)
	assert.Equal(t, document.Position{Line: 2}, p.At, "position is above the leading comment")
	assert.Equal(t, []string{"a", "c"}, links.asked)
}

func TestNamespaceFallback(t *testing.T) {
	header := freeFunctionsFile(t)
	links := &fakeLinker{}

	t.Run("populated namespace", func(t *testing.T) {
		source := st.File(t, "/ws/ui.cpp", "namespace ui {\n\nvoid x() {}\n}\n", func(b st.Builder) []protocol.DocumentSymbol {
			return []protocol.DocumentSymbol{
				b.Sym("ui", protocol.SymbolKindNamespace, "namespace ui {", "}\n}",
					b.Sym("x", protocol.SymbolKindFunction, "void x() {}", ""),
				),
			}
		})
		p, err := New(links).ForFunctionDefinition(context.Background(), st.Find(t, header, "b"), source)
		require.NoError(t, err)
		assert.True(t, p.After)
		assert.Equal(t, st.Find(t, source, "x").Range.End, p.At)
	})

	t.Run("empty namespace", func(t *testing.T) {
		source := st.File(t, "/ws/ui.cpp", "namespace ui {\n}\n", func(b st.Builder) []protocol.DocumentSymbol {
			return []protocol.DocumentSymbol{b.Sym("ui", protocol.SymbolKindNamespace, "namespace ui {", "}")}
		})
		p, err := New(links).ForFunctionDefinition(context.Background(), st.Find(t, header, "b"), source)
		require.NoError(t, err)
		assert.Equal(t, document.Position{Character: 14}, p.At)
		assert.True(t, p.EmptyScope)
		assert.True(t, p.InNamespace)
		assert.True(t, p.NextTo)
	})
}

func TestLastResortFallbacks(t *testing.T) {
	header := freeFunctionsFile(t)
	b := st.Find(t, header, "b")
	engine := New(&fakeLinker{})

	t.Run("unrelated symbols", func(t *testing.T) {
		source := st.File(t, "/ws/main.cpp", "int main() {}\n\nint x;\n", func(b st.Builder) []protocol.DocumentSymbol {
			return []protocol.DocumentSymbol{
				b.Sym("main", protocol.SymbolKindFunction, "int main() {}", ""),
				b.Sym("x", protocol.SymbolKindVariable, "int x", ""),
			}
		})
		p, err := engine.ForFunctionDefinition(context.Background(), b, source)
		require.NoError(t, err)
		assert.Equal(t, document.Position{Line: 2, Character: 6}, p.At, "after the semicolon of the last symbol")
		assert.True(t, p.After)
	})

	t.Run("no symbols", func(t *testing.T) {
		source := st.File(t, "/ws/main.cpp", "// header comment\n\n", nil)
		p, err := engine.ForFunctionDefinition(context.Background(), b, source)
		require.NoError(t, err)
		assert.Equal(t, document.Position{Character: 17}, p.At)
		assert.True(t, p.After)
	})

	t.Run("empty file", func(t *testing.T) {
		source := st.File(t, "/ws/main.cpp", "", nil)
		p, err := engine.ForFunctionDefinition(context.Background(), b, source)
		require.NoError(t, err)
		assert.Equal(t, position.Proposed{}, p)
	})
}

func TestRejectsClassAndInlineLinks(t *testing.T) {
	header := widgetHeaderFile(t)
	class := st.Find(t, header, "Widget")
	links := &fakeLinker{definitions: map[string]oracle.Location{
		"Widget": locationOf(header, class),
	}}
	p, err := New(links).ForFunctionDefinition(context.Background(), st.Find(t, header, "resize"), header)
	require.NoError(t, err)
	assert.Equal(t, document.Position{Line: 4, Character: 2}, p.At, "falls back to after the class")
}

func TestLookaheadIsBounded(t *testing.T) {
	text := "namespace n {\n"
	for i := 0; i < 8; i++ {
		text += fmt.Sprintf("void f%d();\n", i)
	}
	text += "void anchor();\n}\n"
	header := st.File(t, "/ws/n.h", text, func(b st.Builder) []protocol.DocumentSymbol {
		var children []protocol.DocumentSymbol
		for i := 0; i < 8; i++ {
			children = append(children, b.Sym(fmt.Sprintf("f%d", i), protocol.SymbolKindFunction, fmt.Sprintf("void f%d()", i), ""))
		}
		children = append(children, b.Sym("anchor", protocol.SymbolKindFunction, "void anchor()", ""))
		return []protocol.DocumentSymbol{b.Sym("n", protocol.SymbolKindNamespace, "namespace n {", "}", children...)}
	})
	source := st.File(t, "/ws/n.cpp", "void f0() {}\n", func(b st.Builder) []protocol.DocumentSymbol {
		return []protocol.DocumentSymbol{b.Sym("f0", protocol.SymbolKindFunction, "void f0() {}", "")}
	})
	links := &fakeLinker{definitions: map[string]oracle.Location{
		"f0": locationOf(source, st.Find(t, source, "f0")),
	}}

	_, err := New(links).ForFunctionDefinition(context.Background(), st.Find(t, header, "anchor"), source)
	require.NoError(t, err)
	assert.Len(t, links.asked, Lookahead)
	assert.NotContains(t, links.asked, "f0")
}

func TestOracleErrorsPropagate(t *testing.T) {
	header := freeFunctionsFile(t)
	source := st.File(t, "/ws/ui.cpp", "void z() {}\n", func(b st.Builder) []protocol.DocumentSymbol {
		return []protocol.DocumentSymbol{b.Sym("z", protocol.SymbolKindFunction, "void z() {}", "")}
	})
	boom := errors.New("server crashed")
	_, err := New(&fakeLinker{err: boom}).ForFunctionDefinition(context.Background(), st.Find(t, header, "b"), source)
	require.ErrorIs(t, err, boom)
}

func TestCancelledContext(t *testing.T) {
	header := freeFunctionsFile(t)
	source := st.File(t, "/ws/ui.cpp", "void z() {}\n", func(b st.Builder) []protocol.DocumentSymbol {
		return []protocol.DocumentSymbol{b.Sym("z", protocol.SymbolKindFunction, "void z() {}", "")}
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(&fakeLinker{}).ForFunctionDefinition(ctx, st.Find(t, header, "b"), source)
	require.ErrorIs(t, err, context.Canceled)
}

func TestForFunctionDeclaration(t *testing.T) {
	header := widgetHeaderFile(t)
	source := st.File(t, "/ws/widget.cpp", "void Widget::paint() {}\n", func(b st.Builder) []protocol.DocumentSymbol {
		return []protocol.DocumentSymbol{b.Sym("Widget::paint", protocol.SymbolKindMethod, "void Widget::paint() {}", "")}
	})
	class := st.Find(t, header, "Widget")
	public := semantic.Public

	p, err := New(&fakeLinker{}).ForFunctionDeclaration(context.Background(), st.Find(t, source, "paint"), header, class, &public)
	require.NoError(t, err)
	assert.Equal(t, st.Find(t, header, "resize").Range.End, p.At)
	assert.True(t, p.After)

	got := st.Insert(header.Doc, p.At, p.Format("void paint();", header.Doc, style))
	assert.Equal(t, "class Widget {\npublic:\n    Widget();\n    void resize(int w, int h);\n\n    void paint();\n};\n", got)
}

func TestDefinitionNearProposedDeclaration(t *testing.T) {
	header := freeFunctionsFile(t)
	source := st.File(t, "/ws/ui.cpp", "namespace ui {\nvoid a() {}\nvoid c() {}\n}\n", func(b st.Builder) []protocol.DocumentSymbol {
		return []protocol.DocumentSymbol{
			b.Sym("ui", protocol.SymbolKindNamespace, "namespace ui {", "\n}",
				b.Sym("a", protocol.SymbolKindFunction, "void a() {}", ""),
				b.Sym("c", protocol.SymbolKindFunction, "void c() {}", ""),
			),
		}
	})
	links := &fakeLinker{definitions: map[string]oracle.Location{
		"a": locationOf(source, st.Find(t, source, "a")),
		"c": locationOf(source, st.Find(t, source, "c")),
	}}

	a := st.Find(t, header, "a")
	at := position.New(a.Range.End, position.Options{RelativeTo: position.RelativeRange(a.Range), After: true})
	p, err := New(links).ForFunctionDefinitionNear(context.Background(), header, at, source)
	require.NoError(t, err)
	assert.Equal(t, "a", links.asked[0], "the symbol the declaration follows is the nearest sibling")
	assert.Equal(t, st.Find(t, source, "a").Range.End, p.At)
}

func TestForNewSymbol(t *testing.T) {
	f := freeFunctionsFile(t)
	p := ForNewSymbol(f)
	assert.Equal(t, document.Position{Line: 4, Character: 1}, p.At)
	assert.True(t, p.After)
}
