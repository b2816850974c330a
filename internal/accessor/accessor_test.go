package accessor

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/position"
	"github.com/hargabyte/cppgen/internal/semantic"
	st "github.com/hargabyte/cppgen/internal/semantic/semantictest"
	"github.com/hargabyte/cppgen/internal/syntax"
)

const widgetHeader = `class Widget {
public:
    Widget();

private:
    int w_;
    std::string name_;
    Foo *parent_;
    std::string &label_;
    static int s_total;
    const std::vector<const int *> items;
};
`

func widgetFile(t *testing.T) *semantic.File {
	return st.File(t, "/ws/widget.h", widgetHeader, func(b st.Builder) []protocol.DocumentSymbol {
		return []protocol.DocumentSymbol{
			b.Sym("Widget", protocol.SymbolKindClass, "class Widget", "}",
				b.Sym("Widget", protocol.SymbolKindConstructor, "Widget()", ""),
				b.Sym("w_", protocol.SymbolKindField, "int w_", ""),
				b.Sym("name_", protocol.SymbolKindField, "std::string name_", ""),
				b.Sym("parent_", protocol.SymbolKindField, "Foo *parent_", ""),
				b.Sym("label_", protocol.SymbolKindField, "std::string &label_", ""),
				b.Sym("s_total", protocol.SymbolKindField, "static int s_total", ""),
				b.Sym("items", protocol.SymbolKindField, "const std::vector<const int *> items", ""),
			),
		}
	})
}

var opts = Options{CaseStyle: syntax.CamelCase}

func TestGetterDeclaration(t *testing.T) {
	f := widgetFile(t)
	tests := []struct {
		member, want, inline string
	}{
		{"w_", "int getW() const", "int getW() const { return w_; }"},
		{"name_", "std::string getName() const", "std::string getName() const { return name_; }"},
		{"parent_", "Foo *getParent() const", "Foo *getParent() const { return parent_; }"},
		{"label_", "std::string &getLabel() const", "std::string &getLabel() const { return label_; }"},
		{"s_total", "static int getTotal()", "static int getTotal() { return Widget::s_total; }"},
		{"items", "std::vector<const int *> getItems() const", "std::vector<const int *> getItems() const { return items; }"},
	}
	for _, tt := range tests {
		t.Run(tt.member, func(t *testing.T) {
			g := NewGetter(st.Find(t, f, tt.member), opts)
			if got := g.Declaration(); got != tt.want {
				t.Errorf("Declaration() = %q, want %q", got, tt.want)
			}
			if got := g.InlineDefinition(); got != tt.inline {
				t.Errorf("InlineDefinition() = %q, want %q", got, tt.inline)
			}
		})
	}
}

func TestSetterDeclaration(t *testing.T) {
	f := widgetFile(t)
	tests := []struct {
		member, want, body string
	}{
		{"w_", "void setW(int w)", "w_ = w;"},
		{"name_", "void setName(const std::string &name)", "name_ = name;"},
		{"parent_", "void setParent(Foo *parent)", "parent_ = parent;"},
		{"label_", "void setLabel(std::string label)", "label_ = label;"},
		{"s_total", "static void setTotal(int total)", "Widget::s_total = total;"},
	}
	for _, tt := range tests {
		t.Run(tt.member, func(t *testing.T) {
			s := NewSetter(st.Find(t, f, tt.member), opts)
			if got := s.Declaration(); got != tt.want {
				t.Errorf("Declaration() = %q, want %q", got, tt.want)
			}
			if s.Body != tt.body {
				t.Errorf("Body = %q, want %q", s.Body, tt.body)
			}
		})
	}
}

func TestSetterParameterName(t *testing.T) {
	f := st.File(t, "/ws/p.h", "struct P {\n    int items;\n    int count;\n};\n", func(b st.Builder) []protocol.DocumentSymbol {
		return []protocol.DocumentSymbol{
			b.Sym("P", protocol.SymbolKindStruct, "struct P", "}",
				b.Sym("items", protocol.SymbolKindField, "int items", ""),
				b.Sym("count", protocol.SymbolKindField, "int count", ""),
			),
		}
	})
	if got := NewSetter(st.Find(t, f, "items"), opts).Parameter; got != "int items_" {
		t.Errorf("camelCase: Parameter = %q", got)
	}
	pascal := Options{CaseStyle: syntax.PascalCase}
	if got := NewSetter(st.Find(t, f, "count"), pascal).Parameter; got != "int Count" {
		t.Errorf("PascalCase: Parameter = %q", got)
	}
}

func TestExplicitThis(t *testing.T) {
	f := widgetFile(t)
	withThis := Options{ExplicitThis: true, CaseStyle: syntax.CamelCase}

	if got := NewGetter(st.Find(t, f, "w_"), withThis).Body; got != "return this->w_;" {
		t.Errorf("getter Body = %q", got)
	}
	if got := NewSetter(st.Find(t, f, "w_"), withThis).Body; got != "this->w_ = w;" {
		t.Errorf("setter Body = %q", got)
	}
	if got := NewGetter(st.Find(t, f, "s_total"), withThis).Body; got != "return Widget::s_total;" {
		t.Errorf("static Body = %q", got)
	}
}

func TestDefinition(t *testing.T) {
	f := widgetFile(t)
	w := st.Find(t, f, "w_")
	source := st.File(t, "/ws/widget.cpp", "#include \"widget.h\"\n", nil)

	tests := []struct {
		name   string
		target *semantic.File
		pos    document.Position
		braces position.BraceStyle
		want   string
	}{
		{
			name:   "source file",
			target: source,
			pos:    document.Position{Line: 1},
			braces: position.NewLine,
			want:   "int Widget::getW() const\n{\n    return w_;\n}",
		},
		{
			name:   "header below the class",
			target: f,
			pos:    document.Position{Line: 12},
			braces: position.SameLine,
			want:   "inline int Widget::getW() const {\n    return w_;\n}",
		},
		{
			name:   "inside the class",
			target: f,
			pos:    document.Position{Line: 6},
			braces: position.NewLineCtorDtor,
			want:   "int getW() const {\n    return w_;\n}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := position.Style{Indent: "    ", Braces: tt.braces}
			if got := NewGetter(w, opts).Definition(tt.target, tt.pos, style); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestTemplateClassDefinition(t *testing.T) {
	f := st.File(t, "/ws/box.h", "template <typename T>\nclass Box {\n    T value_;\n};\n", func(b st.Builder) []protocol.DocumentSymbol {
		return []protocol.DocumentSymbol{
			b.Sym("Box", protocol.SymbolKindClass, "class Box", "}",
				b.Sym("value_", protocol.SymbolKindField, "T value_", ""),
			),
		}
	})
	style := position.Style{Indent: "    ", Braces: position.SameLine}
	got := NewSetter(st.Find(t, f, "value_"), opts).Definition(f, document.Position{Line: 4}, style)
	want := "template <typename T>\ninline void Box<T>::setValue(const T &value) {\n    value_ = value;\n}"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFindExisting(t *testing.T) {
	text := "class C {\n    int getX() const;\n    int x_;\n};\n"
	f := st.File(t, "/ws/c.h", text, func(b st.Builder) []protocol.DocumentSymbol {
		return []protocol.DocumentSymbol{
			b.Sym("C", protocol.SymbolKindClass, "class C", "}",
				b.Sym("getX", protocol.SymbolKindMethod, "int getX() const", ""),
				b.Sym("x_", protocol.SymbolKindField, "int x_", ""),
			),
		}
	})
	x := st.Find(t, f, "x_")
	if FindGetter(x) == nil {
		t.Error("FindGetter() = nil")
	}
	if FindSetter(x) != nil {
		t.Error("FindSetter() found a setter")
	}
}
