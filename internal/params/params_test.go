package params

import (
	"testing"

	"github.com/hargabyte/cppgen/internal/document"
)

func parse(text string) List {
	doc := document.New("/ws/a.h", "void f("+text+");")
	return Parse(doc, text, len("void f("))
}

func TestParseTypesNamesAndDefaults(t *testing.T) {
	list := parse("const std::vector<int>& items = {}, bool flag = true")
	if list.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", list.Len())
	}

	tests := []struct {
		typ, name, def string
	}{
		{"const std::vector<int>&", "items", "{}"},
		{"bool", "flag", "true"},
	}
	for i, tt := range tests {
		p := list.Params[i]
		if p.Type != tt.typ || p.Name != tt.name || p.DefaultValue != tt.def {
			t.Errorf("param %d = {%q %q %q}, want {%q %q %q}", i, p.Type, p.Name, p.DefaultValue, tt.typ, tt.name, tt.def)
		}
	}

	if got := list.Params[0].WithName("x"); got != "const std::vector<int>& x" {
		t.Errorf("WithName(x) = %q", got)
	}
	if got := list.Params[1].Range; got.Start.Character != 43 {
		t.Errorf("second parameter starts at %v", got.Start)
	}
}

func TestParseDeclarators(t *testing.T) {
	tests := []struct {
		in        string
		typ, name string
		def       string
	}{
		{"int *p", "int *", "p", ""},
		{"int values[10]", "int[10]", "values", ""},
		{"void (*callback)(int, char)", "void (*)(int, char)", "callback", ""},
		{"int (&arr)[4]", "int (&)[4]", "arr", ""},
		{"unsigned int", "unsigned int", "", ""},
		{"std::string", "std::string", "", ""},
		{"const T", "const T", "", ""},
		{"std::map<int, std::string> m = {}", "std::map<int, std::string>", "m", "{}"},
		{"bool b = (1 >= 2)", "bool", "b", "(1 >= 2)"},
		{"const char* s = \"a, b = c\"", "const char*", "s", "\"a, b = c\""},
		{"int n /* count */", "int", "n", ""},
		{"Args&&... args", "Args&&...", "args", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			list := parse(tt.in)
			if list.Len() != 1 {
				t.Fatalf("Len() = %d, want 1", list.Len())
			}
			p := list.Params[0]
			if p.Type != tt.typ || p.Name != tt.name || p.DefaultValue != tt.def {
				t.Errorf("got {%q %q %q}, want {%q %q %q}", p.Type, p.Name, p.DefaultValue, tt.typ, tt.name, tt.def)
			}
		})
	}
}

func TestWithName(t *testing.T) {
	tests := []struct {
		in, name, want string
	}{
		{"int *p", "q", "int *q"},
		{"int *p = nullptr", "", "int *"},
		{"int", "x", "int x"},
		{"int*", "x", "int* x"},
		{"void (*)(int)", "cb", "void (*cb)(int)"},
		{"void (*cb)(int)", "", "void (*)(int)"},
		{"int[]", "a", "int a[]"},
		{"std::vector<T>", "v", "std::vector<T> v"},
	}
	for _, tt := range tests {
		p := parse(tt.in).Params[0]
		if got := p.WithName(tt.name); got != tt.want {
			t.Errorf("%q.WithName(%q) = %q, want %q", tt.in, tt.name, got, tt.want)
		}
	}
}

func TestVariadic(t *testing.T) {
	list := parse("int x, ...")
	if list.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", list.Len())
	}
	v := list.Params[1]
	if !v.Variadic || v.Type != Ellipsis || v.Name != Ellipsis {
		t.Errorf("last parameter = %+v, want synthetic variadic", v)
	}
	if !list.Variadic() {
		t.Error("Variadic() = false")
	}
	if got := parse("...").Len(); got != 1 {
		t.Errorf("bare ellipsis Len() = %d, want 1", got)
	}

	list = parse("const char* fmt...")
	if list.Len() != 2 || !list.Variadic() {
		t.Fatalf("glued ellipsis = %+v, want fmt and a variadic marker", list.Params)
	}
	if p := list.Params[0]; p.Type != "const char*" || p.Name != "fmt" {
		t.Errorf("first parameter type = %q, name = %q", p.Type, p.Name)
	}
	if got := list.Params[0].WithName("x"); got != "const char* x" {
		t.Errorf("WithName(x) = %q", got)
	}

	list = parse("Ts...")
	if list.Len() != 1 || list.Variadic() {
		t.Errorf("pack expansion = %+v, want one non-variadic parameter", list.Params)
	}
}

func TestEmptyLists(t *testing.T) {
	for _, in := range []string{"", "  ", "void", " void "} {
		if got := parse(in).Len(); got != 0 {
			t.Errorf("parse(%q).Len() = %d, want 0", in, got)
		}
	}
}

func TestReordering(t *testing.T) {
	a := parse("int a, bool b")
	b := parse("bool b, int a")
	c := parse("int  a,bool b")
	d := parse("int x, bool y")
	e := parse("long a, bool b")

	if !a.Equal(c) {
		t.Error("reformatted lists should be equal")
	}
	if a.Equal(b) {
		t.Error("reordered lists should not be equal")
	}
	if !a.IsReordered(b) {
		t.Error("IsReordered() = false, want true")
	}
	if a.IsReordered(c) {
		t.Error("equal lists are not reordered")
	}
	if a.Equal(d) || !a.TypesEqual(d) {
		t.Error("renamed parameters should differ in Equal but not TypesEqual")
	}
	if !d.TypesReordered(b) {
		t.Error("TypesReordered() = false, want true")
	}
	if a.TypesEqual(e) || a.TypesReordered(e) {
		t.Error("changed type must not compare equal or reordered")
	}
}

func TestJoinStripsDefaults(t *testing.T) {
	list := parse("int w = 1, int h = 2")
	if got := list.Join(); got != "int w, int h" {
		t.Errorf("Join() = %q", got)
	}
	names := list.Names()
	if len(names) != 2 || names[0] != "w" || names[1] != "h" {
		t.Errorf("Names() = %v", names)
	}
}
