package index

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/hargabyte/cppgen/internal/cache"
	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/oracle"
	"github.com/hargabyte/cppgen/internal/workspace"
)

const widgetHeader = `#pragma once

namespace ui {

enum class Color { Red, Green };

class Widget {
public:
    Widget();
    ~Widget();
    void resize(int w, int h = 10) const;
    int area() const;
    int area();
    virtual void draw() = 0;

private:
    int w_;
    int h_;
};

template <typename T>
struct Box {
    T get() const { return value; }
    T value;
};

namespace {
int hidden;
}

}
`

const widgetSource = `#include "widget.h"

namespace ui {

Widget::Widget() {}

Widget::~Widget() {}

void Widget::resize(int width, int height) const {
}

int Widget::area() const { return w_ * h_; }

int Widget::area() { return 0; }

}
`

const utilHeader = `#ifndef UTIL_H
#define UTIL_H

int add(int a, int b);

#endif
`

const utilSource = `#include "util.h"

static int counter, total;

int add(int a, int b) {
    return a + b;
}
`

func newIndex(t *testing.T, store SymbolStore) (*Index, string) {
	t.Helper()
	root := t.TempDir()
	for rel, text := range map[string]string{
		"include/widget.h": widgetHeader,
		"src/widget.cpp":   widgetSource,
		"include/util.h":   utilHeader,
		"src/util.c":       utilSource,
	} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	}
	ws, err := workspace.New(root, workspace.Options{
		HeaderExtensions: []string{"h"},
		SourceExtensions: []string{"c", "cpp"},
	}, nil)
	require.NoError(t, err)
	return New(ws, store), root
}

// at returns the position of the first occurrence of substr in text.
func at(t *testing.T, text, substr string) protocol.Position {
	t.Helper()
	i := strings.Index(text, substr)
	require.GreaterOrEqual(t, i, 0, "%q not found", substr)
	return oracle.ToProtocolPosition(document.New("", text).PositionAt(i))
}

func rangeText(text string, r protocol.Range) string {
	return document.New("", text).GetText(oracle.FromProtocolRange(r))
}

func find(symbols []protocol.DocumentSymbol, name string) *protocol.DocumentSymbol {
	for i := range symbols {
		if symbols[i].Name == name {
			return &symbols[i]
		}
		if s := find(symbols[i].Children, name); s != nil {
			return s
		}
	}
	return nil
}

func names(symbols []protocol.DocumentSymbol) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = s.Name
	}
	return out
}

func TestDocumentSymbols(t *testing.T) {
	idx, root := newIndex(t, nil)
	symbols, err := idx.DocumentSymbols(context.Background(), oracle.URIFromPath(filepath.Join(root, "include", "widget.h")))
	require.NoError(t, err)

	require.Len(t, symbols, 1)
	ns := symbols[0]
	assert.Equal(t, "ui", ns.Name)
	assert.Equal(t, protocol.SymbolKindNamespace, ns.Kind)
	assert.Equal(t, []string{"Color", "Widget", "Box", "hidden"}, names(ns.Children), "anonymous namespace is flattened")

	color := find(symbols, "Color")
	assert.Equal(t, protocol.SymbolKindEnum, color.Kind)
	assert.Equal(t, []string{"Red", "Green"}, names(color.Children))

	widget := find(symbols, "Widget")
	assert.Equal(t, protocol.SymbolKindClass, widget.Kind)
	assert.Equal(t, []string{"Widget", "~Widget", "resize", "area", "area", "draw", "w_", "h_"}, names(widget.Children))
	assert.True(t, strings.HasPrefix(rangeText(widgetHeader, widget.Range), "class Widget {"))
	assert.True(t, strings.HasSuffix(rangeText(widgetHeader, widget.Range), "int h_;\n}"))
	assert.Equal(t, "Widget", rangeText(widgetHeader, widget.SelectionRange))

	kinds := map[string]protocol.SymbolKind{}
	for _, c := range widget.Children {
		kinds[c.Name] = c.Kind
	}
	assert.Equal(t, protocol.SymbolKindConstructor, kinds["Widget"])
	assert.Equal(t, protocol.SymbolKindMethod, kinds["~Widget"])
	assert.Equal(t, protocol.SymbolKindMethod, kinds["resize"])
	assert.Equal(t, protocol.SymbolKindField, kinds["w_"])

	resize := find(widget.Children, "resize")
	assert.Equal(t, "void resize(int w, int h = 10) const", rangeText(widgetHeader, resize.Range))
	assert.Equal(t, "resize", rangeText(widgetHeader, resize.SelectionRange))
	require.NotNil(t, resize.Detail)
	assert.Equal(t, "resize(int w, int h = 10) const", *resize.Detail)

	assert.Equal(t, "virtual void draw() = 0", rangeText(widgetHeader, find(widget.Children, "draw").Range))
	assert.Equal(t, "int w_", rangeText(widgetHeader, find(widget.Children, "w_").Range))

	box := find(symbols, "Box")
	assert.Equal(t, protocol.SymbolKindStruct, box.Kind)
	assert.True(t, strings.HasPrefix(rangeText(widgetHeader, box.Range), "struct Box {"), "template statement is not part of the range")
	assert.Equal(t, "T get() const { return value; }", rangeText(widgetHeader, find(box.Children, "get").Range))
}

func TestDocumentSymbolsOutOfLine(t *testing.T) {
	idx, root := newIndex(t, nil)
	symbols, err := idx.DocumentSymbols(context.Background(), oracle.URIFromPath(filepath.Join(root, "src", "widget.cpp")))
	require.NoError(t, err)

	require.Len(t, symbols, 1)
	assert.Equal(t, []string{"Widget::Widget", "Widget::~Widget", "Widget::resize", "Widget::area", "Widget::area"}, names(symbols[0].Children))
	ctor := find(symbols, "Widget::Widget")
	assert.Equal(t, protocol.SymbolKindConstructor, ctor.Kind)
	assert.Equal(t, "Widget", rangeText(widgetSource, ctor.SelectionRange))
	assert.Equal(t, protocol.SymbolKindMethod, find(symbols, "Widget::resize").Kind)
}

func TestDocumentSymbolsC(t *testing.T) {
	idx, root := newIndex(t, nil)
	symbols, err := idx.DocumentSymbols(context.Background(), oracle.URIFromPath(filepath.Join(root, "src", "util.c")))
	require.NoError(t, err)

	assert.Equal(t, []string{"counter", "total", "add"}, names(symbols))
	assert.Equal(t, "static int counter", rangeText(utilSource, symbols[0].Range))
	assert.Equal(t, "total", rangeText(utilSource, symbols[1].Range))
	assert.Equal(t, protocol.SymbolKindFunction, symbols[2].Kind)

	header, err := idx.DocumentSymbols(context.Background(), oracle.URIFromPath(filepath.Join(root, "include", "util.h")))
	require.NoError(t, err)
	assert.Equal(t, []string{"add"}, names(header), "header guard is transparent")
}

func TestDefinition(t *testing.T) {
	idx, root := newIndex(t, nil)
	ctx := context.Background()
	header := oracle.URIFromPath(filepath.Join(root, "include", "widget.h"))
	source := filepath.Join(root, "src", "widget.cpp")

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"method", "resize(int w", "resize(int width"},
		{"const overload", "area() const;", "area() const {"},
		{"non-const overload", "area();", "area() { return 0; }"},
		{"constructor", "Widget();", "Widget() {}"},
		{"destructor", "~Widget();", "~Widget() {}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := idx.Definition(ctx, header, at(t, widgetHeader, tt.query))
			require.NoError(t, err)
			locs := results.Flatten()
			require.Len(t, locs, 1)
			assert.Equal(t, source, locs[0].Path)
			assert.Equal(t, oracle.FromProtocolPosition(at(t, widgetSource, tt.want)), locs[0].Range.Start)
		})
	}

	t.Run("pure virtual", func(t *testing.T) {
		results, err := idx.Definition(ctx, header, at(t, widgetHeader, "draw"))
		require.NoError(t, err)
		assert.Zero(t, results.Len())
	})

	t.Run("not a function", func(t *testing.T) {
		results, err := idx.Definition(ctx, header, at(t, widgetHeader, "w_;"))
		require.NoError(t, err)
		assert.Zero(t, results.Len())
	})

	t.Run("C function", func(t *testing.T) {
		results, err := idx.Definition(ctx, oracle.URIFromPath(filepath.Join(root, "include", "util.h")), at(t, utilHeader, "add"))
		require.NoError(t, err)
		locs := results.Flatten()
		require.Len(t, locs, 1)
		assert.Equal(t, filepath.Join(root, "src", "util.c"), locs[0].Path)
	})
}

func TestDeclaration(t *testing.T) {
	idx, root := newIndex(t, nil)
	source := oracle.URIFromPath(filepath.Join(root, "src", "widget.cpp"))

	results, err := idx.Declaration(context.Background(), source, at(t, widgetSource, "resize"))
	require.NoError(t, err)
	locs := results.Flatten()
	require.Len(t, locs, 1)
	assert.Equal(t, filepath.Join(root, "include", "widget.h"), locs[0].Path)
	assert.Equal(t, oracle.FromProtocolPosition(at(t, widgetHeader, "resize")), locs[0].Range.Start)

	// Inside the body still resolves to the enclosing function.
	results, err = idx.Declaration(context.Background(), source, at(t, widgetSource, "w_ * h_"))
	require.NoError(t, err)
	require.Equal(t, 1, results.Len())
	assert.Equal(t, oracle.FromProtocolPosition(at(t, widgetHeader, "area() const;")), results.Flatten()[0].Range.Start)
}

func TestInvalidate(t *testing.T) {
	idx, root := newIndex(t, nil)
	ctx := context.Background()
	header := oracle.URIFromPath(filepath.Join(root, "include", "widget.h"))
	source := filepath.Join(root, "src", "widget.cpp")

	results, err := idx.Definition(ctx, header, at(t, widgetHeader, "resize"))
	require.NoError(t, err)
	require.Equal(t, 1, results.Len())
	assert.Equal(t, 4, idx.Len())

	require.NoError(t, os.WriteFile(source, []byte("#include \"widget.h\"\n"), 0644))
	idx.ws.Documents().Invalidate(source)
	idx.Invalidate(source)

	results, err = idx.Definition(ctx, header, at(t, widgetHeader, "resize"))
	require.NoError(t, err)
	assert.Zero(t, results.Len())

	idx.InvalidateAll()
	assert.Zero(t, idx.Len())
}

func TestSymbolStore(t *testing.T) {
	c, err := cache.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	idx, root := newIndex(t, c)
	ctx := context.Background()
	require.NoError(t, idx.IndexAll(ctx))

	path := filepath.Join(root, "include", "widget.h")
	stored, ok, err := c.LoadSymbols(path, ContentHash(widgetHeader))
	require.NoError(t, err)
	require.True(t, ok)

	fresh, err := New(idx.ws, nil).DocumentSymbols(ctx, oracle.URIFromPath(path))
	require.NoError(t, err)
	assert.Equal(t, fresh, stored)

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Symbols)
}
