package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hargabyte/cppgen/internal/document"
)

func TestForNewInclude(t *testing.T) {
	t.Run("separate blocks", func(t *testing.T) {
		doc := document.New("/ws/a.h", "#pragma once\n#include <vector>\n#include <string>\n\n#include \"a.h\"\n\nint x;\n")
		got := ForNewInclude(doc, "")
		assert.Equal(t, document.Position{Line: 2, Character: 17}, got.System.At)
		assert.True(t, got.System.After)
		assert.True(t, got.System.NextTo)
		assert.Equal(t, document.Position{Line: 4, Character: 14}, got.Project.At)
	})

	t.Run("largest block wins", func(t *testing.T) {
		doc := document.New("/ws/a.cpp", "#include <a>\n\n#include <b>\n#include <c>\nint x;\n")
		got := ForNewInclude(doc, "")
		assert.Equal(t, 3, got.System.At.Line)
		assert.Equal(t, got.System, got.Project, "one kind of include serves both")
	})

	t.Run("after guard", func(t *testing.T) {
		doc := document.New("/ws/a.h", "#pragma once\n\nint x;\n")
		got := ForNewInclude(doc, "")
		assert.Equal(t, document.Position{Character: 12}, got.System.At)
		assert.True(t, got.Project.After)
	})

	t.Run("after header comment", func(t *testing.T) {
		doc := document.New("/ws/a.cpp", "// c\n\nint x;")
		got := ForNewInclude(doc, "")
		assert.Equal(t, document.Position{Line: 2}, got.System.At)
		assert.True(t, got.System.Before)
	})
}

func TestAfterHeaderGuard(t *testing.T) {
	doc := document.New("/ws/a.h", "#ifndef A_H\n#define A_H\n\n#endif\n")
	line, ok := AfterHeaderGuard(doc, "A_H")
	assert.True(t, ok)
	assert.Equal(t, 1, line.Number)

	_, ok = AfterHeaderGuard(doc, "")
	assert.False(t, ok)
	_, ok = AfterHeaderGuard(document.New("/ws/a.h", "// #pragma once\n"), "")
	assert.False(t, ok, "commented out")
	_, ok = AfterHeaderGuard(document.New("/ws/a.h", "  # pragma once\n"), "")
	assert.True(t, ok)
}

func TestAfterHeaderComment(t *testing.T) {
	p := AfterHeaderComment(document.New("/ws/a.cpp", "/* license */\n"))
	assert.True(t, p.After)
	assert.Equal(t, document.Position{Character: 13}, p.At)

	p = AfterHeaderComment(document.New("/ws/a.cpp", ""))
	assert.False(t, p.After)
	assert.False(t, p.Before)
}

func TestIncludedFiles(t *testing.T) {
	doc := document.New("/ws/a.cpp", "#include <ostream>\n#  include \"detail/a.h\"\n// #include <x>\nint x;\n")
	assert.Equal(t, []string{"ostream", "detail/a.h"}, IncludedFiles(doc))
}
