package document

import "testing"

func TestOffsetRoundTrip(t *testing.T) {
	d := New("/tmp/a.cpp", "int a;\r\nint b;\r\n\r\nvoid f();")

	if d.EOL() != "\r\n" {
		t.Fatalf("EOL() = %q, want CRLF", d.EOL())
	}
	if d.LineCount() != 4 {
		t.Fatalf("LineCount() = %d, want 4", d.LineCount())
	}

	for off := 0; off <= d.Len(); off++ {
		p := d.PositionAt(off)
		back := d.OffsetAt(p)
		// Offsets inside a CRLF map to the end of the line content.
		if back != off && d.Text()[back:off] != "\r" && d.Text()[back:off] != "\r\n" {
			t.Errorf("offset %d -> %v -> %d", off, p, back)
		}
	}
}

func TestLineAt(t *testing.T) {
	d := New("/tmp/a.h", "class A {\n    int x;\n\n};\n")

	tests := []struct {
		n     int
		text  string
		first int
		blank bool
	}{
		{0, "class A {", 0, false},
		{1, "    int x;", 4, false},
		{2, "", 0, true},
		{3, "};", 0, false},
		{4, "", 0, true},
	}
	for _, tt := range tests {
		line := d.LineAt(tt.n)
		if line.Text != tt.text {
			t.Errorf("LineAt(%d).Text = %q, want %q", tt.n, line.Text, tt.text)
		}
		if line.FirstNonWhitespace != tt.first {
			t.Errorf("LineAt(%d).FirstNonWhitespace = %d, want %d", tt.n, line.FirstNonWhitespace, tt.first)
		}
		if line.IsEmptyOrWhitespace() != tt.blank {
			t.Errorf("LineAt(%d).IsEmptyOrWhitespace() = %v", tt.n, line.IsEmptyOrWhitespace())
		}
	}

	if got := d.PositionAfterLastNonEmptyLine(); got != (Position{Line: 3, Character: 2}) {
		t.Errorf("PositionAfterLastNonEmptyLine() = %v", got)
	}
}

func TestGetText(t *testing.T) {
	d := New("/tmp/a.cpp", "void f(int a);\nint g();\n")
	r := Range{Start: Position{0, 5}, End: Position{1, 3}}
	if got := d.GetText(r); got != "f(int a);\nint" {
		t.Errorf("GetText() = %q", got)
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{Start: Position{1, 0}, End: Position{3, 4}}
	if !r.Contains(Position{2, 100}) {
		t.Error("expected position inside range")
	}
	if r.Contains(Position{3, 5}) {
		t.Error("expected position outside range")
	}
	if !r.ContainsRange(Range{Start: Position{1, 2}, End: Position{3, 4}}) {
		t.Error("expected nested range")
	}
}

func TestIsHeader(t *testing.T) {
	exts := []string{"h", "hpp"}
	if !New("/x/widget.HPP", "").IsHeader(exts) {
		t.Error("widget.HPP should be a header")
	}
	if New("/x/widget.cpp", "").IsHeader(exts) {
		t.Error("widget.cpp should not be a header")
	}
}
