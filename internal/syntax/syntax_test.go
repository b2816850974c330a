package syntax

import (
	"testing"

	"github.com/hargabyte/cppgen/internal/document"
)

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"const  std::string &  name", "const std::string&name"},
		{"  int\n   x  ", "int x"},
		{"std::map< int , char >", "std::map<int,char>"},
		{"unsigned long long", "unsigned long long"},
	}
	for _, tt := range tests {
		if got := NormalizeWhitespace(tt.in); got != tt.want {
			t.Errorf("NormalizeWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeSourceText(t *testing.T) {
	a := NormalizeSourceText("int  f(int a, /* b */ bool c) // trailing")
	b := NormalizeSourceText("int f(int a,\n      bool c)")
	if a != b {
		t.Errorf("%q != %q", a, b)
	}
}

func TestStripDefaultValues(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"int a = 1, bool b", "int a, bool b"},
		{"std::pair<int, int> p = {1, 2}, int q = f(3, 4)", "std::pair<int, int> p, int q"},
		{"bool c = (1 >= 2)", "bool c"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripDefaultValues(tt.in); got != tt.want {
			t.Errorf("StripDefaultValues(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLeadingReturnType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"static const std::string &", "const std::string &"},
		{"virtual int ", "int "},
		{"inline std::vector<int> ", "std::vector<int> "},
		{"static unsigned long ", "unsigned long "},
		{"int ", "int "},
	}
	for _, tt := range tests {
		if got := LeadingReturnType(tt.in); got != tt.want {
			t.Errorf("LeadingReturnType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTrailingReturnType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" int const & override", " int const &"},
		{" std::vector<int> final", " std::vector<int>"},
		{" decltype(a + b)", " decltype(a + b)"},
	}
	for _, tt := range tests {
		if got := TrailingReturnType(tt.in); got != tt.want {
			t.Errorf("TrailingReturnType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchesPrimitiveType(t *testing.T) {
	tests := map[string]bool{
		"int":                true,
		"const unsigned int": true,
		"std::string":        false,
		"std::vector<int>":   false,
		"double *":           true,
	}
	for in, want := range tests {
		if got := MatchesPrimitiveType(in); got != want {
			t.Errorf("MatchesPrimitiveType(%q) = %v", in, got)
		}
	}
}

func TestEndOfStatement(t *testing.T) {
	d := document.New("/tmp/a.h", "int x ; ;\nint y;")
	got := EndOfStatement(d, document.Position{Line: 0, Character: 5})
	if got != (document.Position{Line: 0, Character: 9}) {
		t.Errorf("EndOfStatement() = %v", got)
	}
	got = EndOfStatement(d, document.Position{Line: 1, Character: 0})
	if got != (document.Position{Line: 1, Character: 0}) {
		t.Errorf("EndOfStatement() moved without a semicolon: %v", got)
	}
}

func TestCaseStyles(t *testing.T) {
	tests := []struct {
		style CaseStyle
		in    string
		want  string
	}{
		{SnakeCase, "itemCount", "item_count"},
		{SnakeCase, "item_count", "item_count"},
		{CamelCase, "item_count", "itemCount"},
		{CamelCase, "ItemCount", "itemCount"},
		{PascalCase, "item_count", "ItemCount"},
	}
	for _, tt := range tests {
		if got := tt.style.Format(tt.in); got != tt.want {
			t.Errorf("%s.Format(%q) = %q, want %q", tt.style, tt.in, got, tt.want)
		}
	}
}
