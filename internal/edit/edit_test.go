package edit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hargabyte/cppgen/internal/document"
)

func TestResult(t *testing.T) {
	doc := document.New("/ws/a.cpp", "int a;\nint c;\n")
	w := New()
	w.Insert(doc, document.Position{Line: 1}, "int b1;\n")
	w.Insert(doc, document.Position{Line: 1}, "int b2;\n")
	w.Replace(doc, document.NewRange(document.Position{Line: 1, Character: 4}, document.Position{Line: 1, Character: 5}), "d")

	got, err := w.Files()[0].Result()
	if err != nil {
		t.Fatal(err)
	}
	if want := "int a;\nint b1;\nint b2;\nint d;\n"; got != want {
		t.Errorf("Result() = %q, want %q", got, want)
	}
}

func TestOverlappingEdits(t *testing.T) {
	doc := document.New("/ws/a.cpp", "int a;\n")
	w := New()
	w.Delete(doc, document.NewRange(document.Position{}, document.Position{Character: 5}))
	w.Insert(doc, document.Position{Character: 2}, "x")
	if _, err := w.Files()[0].Result(); !errors.Is(err, ErrOverlappingEdits) {
		t.Errorf("err = %v, want ErrOverlappingEdits", err)
	}
}

func TestEmpty(t *testing.T) {
	w := New()
	if !w.Empty() {
		t.Error("new edit is not empty")
	}
	w.CreateFile("/ws/b.cpp", "")
	if w.Empty() {
		t.Error("edit with a created file is empty")
	}
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.h")
	if err := os.WriteFile(path, []byte("#pragma once\n"), 0600); err != nil {
		t.Fatal(err)
	}
	doc, err := document.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	w := New()
	w.Insert(doc, document.Position{Line: 1}, "\nvoid f();\n")
	source := filepath.Join(dir, "src", "a.cpp")
	w.CreateFile(source, "#include \"a.h\"\n")
	if err := w.Apply(); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "#pragma once\n\nvoid f();\n" {
		t.Errorf("header = %q", data)
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
	data, _ = os.ReadFile(source)
	if string(data) != "#include \"a.h\"\n" {
		t.Errorf("source = %q", data)
	}

	again := New()
	again.CreateFile(source, "")
	if err := again.Apply(); !errors.Is(err, os.ErrExist) {
		t.Errorf("second create: err = %v, want ErrExist", err)
	}
}

func TestDiff(t *testing.T) {
	doc := document.New("/ws/src/a.cpp", "int a;\n")
	w := New()
	w.Insert(doc, document.Position{Line: 1}, "int b;\n")
	w.CreateFile("/ws/src/b.cpp", "#include \"b.h\"\n")

	out, err := w.Diff("/ws")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"--- a/src/a.cpp\n+++ b/src/a.cpp\n",
		"@@ -1,1 +1,2 @@\n int a;\n+int b;\n",
		"--- /dev/null\n+++ b/src/b.cpp\n",
		"@@ -0,0 +1,1 @@\n+#include \"b.h\"\n",
	} {
		if !strings.Contains(string(out), want) {
			t.Errorf("diff lacks %q:\n%s", want, out)
		}
	}

	stat, err := w.Stat("/ws")
	if err != nil {
		t.Fatal(err)
	}
	if stat.Added != 2 || stat.Deleted != 0 {
		t.Errorf("Stat() = %+v", stat)
	}
}

func TestDiffSeparateHunks(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 20; i++ {
		fmt.Fprintf(&sb, "int v%d;\n", i)
	}
	doc := document.New("/ws/v.cpp", sb.String())
	w := New()
	w.Insert(doc, document.Position{}, "// top\n")
	w.Insert(doc, document.Position{Line: 20}, "// bottom\n")

	out, err := w.Diff("/ws")
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(out), "\n@@ "); n != 2 {
		t.Errorf("got %d hunks:\n%s", n, out)
	}
	if !strings.Contains(string(out), "@@ -1,3 +1,4 @@\n+// top\n int v1;\n") {
		t.Errorf("first hunk wrong:\n%s", out)
	}
	if !strings.Contains(string(out), "@@ -18,3 +19,4 @@\n int v18;\n int v19;\n int v20;\n+// bottom\n") {
		t.Errorf("second hunk wrong:\n%s", out)
	}
}

func TestDiffMissingFinalNewline(t *testing.T) {
	doc := document.New("/ws/a.cpp", "int a;")
	w := New()
	w.Replace(doc, document.NewRange(document.Position{Character: 4}, document.Position{Character: 5}), "b")

	out, err := w.Diff("/ws")
	if err != nil {
		t.Fatal(err)
	}
	want := "-int a;\n\\ No newline at end of file\n+int b;\n\\ No newline at end of file\n"
	if !strings.Contains(string(out), want) {
		t.Errorf("got:\n%s\nwant suffix:\n%s", out, want)
	}
}
