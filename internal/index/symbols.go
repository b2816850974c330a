package index

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/hargabyte/cppgen/internal/parser"
	"github.com/hargabyte/cppgen/internal/syntax"
)

// extractor turns a parse tree into nested document symbols, laid out the
// way clangd reports them: declarations end before their semicolon, template
// statements are left out of ranges and out-of-line members keep their
// qualified name.
type extractor struct {
	result *parser.ParseResult
}

// Symbols returns the document symbols of a parsed file.
func Symbols(result *parser.ParseResult) []protocol.DocumentSymbol {
	e := &extractor{result: result}
	return e.children(result.Root, "")
}

// children collects the symbols declared directly in a scope. class is the
// name of the enclosing class, or "" outside one.
func (e *extractor) children(scope *sitter.Node, class string) []protocol.DocumentSymbol {
	var out []protocol.DocumentSymbol
	for i := 0; i < int(scope.NamedChildCount()); i++ {
		out = append(out, e.symbols(scope.NamedChild(i), class)...)
	}
	return out
}

func (e *extractor) symbols(n *sitter.Node, class string) []protocol.DocumentSymbol {
	switch n.Type() {
	case "namespace_definition":
		return e.namespace(n)
	case "template_declaration":
		var out []protocol.DocumentSymbol
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c.Type() != "template_parameter_list" {
				out = append(out, e.symbols(c, class)...)
			}
		}
		return out
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		if s, ok := e.typeSymbol(n); ok {
			return []protocol.DocumentSymbol{s}
		}
		return nil
	case "function_definition":
		if s, ok := e.function(n, n.ChildByFieldName("declarator"), class); ok {
			return []protocol.DocumentSymbol{s}
		}
		return nil
	case "declaration", "field_declaration":
		return e.declaration(n, class)
	case "type_definition":
		return e.typedef(n)
	case "alias_declaration":
		name := n.ChildByFieldName("name")
		if name == nil {
			return nil
		}
		return []protocol.DocumentSymbol{e.symbol(e.text(name), protocol.SymbolKindClass, n, name, nil)}
	case "friend_declaration", "access_specifier", "using_declaration", "static_assert_declaration",
		"preproc_def", "preproc_function_def", "preproc_include", "preproc_call", "comment":
		return nil
	}
	if parser.TransparentNodeTypes[n.Type()] || n.Type() == "ERROR" {
		if body := n.ChildByFieldName("body"); body != nil && n.Type() == "linkage_specification" {
			if body.Type() == "declaration_list" {
				return e.children(body, class)
			}
			return e.symbols(body, class)
		}
		return e.children(n, class)
	}
	return nil
}

// namespace returns the symbol of a named namespace, or the symbols of an
// anonymous namespace's members.
func (e *extractor) namespace(n *sitter.Node) []protocol.DocumentSymbol {
	body := n.ChildByFieldName("body")
	name := n.ChildByFieldName("name")
	if body == nil {
		return nil
	}
	if name == nil {
		return e.children(body, "")
	}
	s := e.symbol(e.text(name), protocol.SymbolKindNamespace, n, lastName(name), nil)
	s.Children = e.children(body, "")
	return []protocol.DocumentSymbol{s}
}

// typeSymbol returns the symbol of a class, struct, union or enum that has
// a body. Forward declarations are skipped.
func (e *extractor) typeSymbol(n *sitter.Node) (protocol.DocumentSymbol, bool) {
	body := n.ChildByFieldName("body")
	if body == nil {
		return protocol.DocumentSymbol{}, false
	}

	kind := protocol.SymbolKindClass
	switch n.Type() {
	case "struct_specifier":
		kind = protocol.SymbolKindStruct
	case "enum_specifier":
		kind = protocol.SymbolKindEnum
	}

	var s protocol.DocumentSymbol
	if name := n.ChildByFieldName("name"); name != nil {
		s = e.symbol(e.text(name), kind, n, lastName(name), nil)
	} else {
		keyword := strings.TrimSuffix(n.Type(), "_specifier")
		s = e.symbol("(anonymous "+keyword+")", kind, n, n.Child(0), nil)
	}

	if parser.IsClassNode(n) {
		s.Children = e.children(body, className(s.Name))
		return s, true
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		if c.Type() != "enumerator" {
			continue
		}
		if name := c.ChildByFieldName("name"); name != nil {
			s.Children = append(s.Children, e.symbol(e.text(name), protocol.SymbolKindEnumMember, c, name, nil))
		}
	}
	return s, true
}

// className returns the name constructors of a class are declared with.
func className(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	return baseName(name)
}

// declaration returns the symbols of a declaration: a type defined in it,
// then one symbol per declarator.
func (e *extractor) declaration(n *sitter.Node, class string) []protocol.DocumentSymbol {
	var out []protocol.DocumentSymbol
	if t := n.ChildByFieldName("type"); t != nil && t.ChildByFieldName("body") != nil {
		out = append(out, e.symbols(t, class)...)
	}
	first := true
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) != "declarator" {
			continue
		}
		d := n.Child(i)
		start := n
		if !first {
			start = d
		}
		first = false
		if fn := functionDeclarator(d); fn != nil {
			if s, ok := e.function(n, d, class); ok {
				out = append(out, s)
			}
			continue
		}
		name := declaredName(d)
		if name == nil {
			continue
		}
		kind := protocol.SymbolKindVariable
		if class != "" {
			kind = protocol.SymbolKindField
		}
		s := e.symbol(e.text(name), kind, n, lastName(name), e.typeDetail(n))
		s.Range.Start = point(start.StartPoint())
		if d != lastDeclarator(n) {
			s.Range.End = point(d.EndPoint())
		}
		out = append(out, s)
	}
	return out
}

// function returns the symbol of a function declared by declarator d in the
// declaration or definition n.
func (e *extractor) function(n, d *sitter.Node, class string) (protocol.DocumentSymbol, bool) {
	fn := functionDeclarator(d)
	if fn == nil {
		return protocol.DocumentSymbol{}, false
	}
	name := declaredName(fn)
	if name == nil {
		return protocol.DocumentSymbol{}, false
	}
	full := syntax.NormalizeWhitespace(e.text(name))
	// The detail keeps the declarator's own spacing after the name.
	rest := string(e.result.Source[name.EndByte():fn.EndByte()])
	detail := full + strings.Join(strings.Fields(rest), " ")
	return e.symbol(full, functionKind(full, class), n, lastName(name), &detail), true
}

// functionKind decides the kind of a function the way clangd does:
// constructors are told apart, every other member is a method.
func functionKind(name, class string) protocol.SymbolKind {
	parts := strings.Split(name, "::")
	last := baseName(parts[len(parts)-1])
	switch {
	case class != "" && last == class:
		return protocol.SymbolKindConstructor
	case class != "":
		return protocol.SymbolKindMethod
	case len(parts) > 1 && last == baseName(parts[len(parts)-2]):
		return protocol.SymbolKindConstructor
	case len(parts) > 1:
		return protocol.SymbolKindMethod
	}
	return protocol.SymbolKindFunction
}

func (e *extractor) typedef(n *sitter.Node) []protocol.DocumentSymbol {
	var out []protocol.DocumentSymbol
	if t := n.ChildByFieldName("type"); t != nil && t.ChildByFieldName("body") != nil {
		out = append(out, e.symbols(t, "")...)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) != "declarator" {
			continue
		}
		if name := declaredName(n.Child(i)); name != nil {
			out = append(out, e.symbol(e.text(name), protocol.SymbolKindClass, n, name, nil))
		}
	}
	return out
}

// symbol builds a document symbol spanning n without its trailing semicolon.
func (e *extractor) symbol(name string, kind protocol.SymbolKind, n, selection *sitter.Node, detail *string) protocol.DocumentSymbol {
	if selection == nil {
		selection = n
	}
	return protocol.DocumentSymbol{
		Name:           name,
		Detail:         detail,
		Kind:           kind,
		Range:          protocol.Range{Start: point(n.StartPoint()), End: point(e.statementEnd(n))},
		SelectionRange: protocol.Range{Start: point(selection.StartPoint()), End: point(selection.EndPoint())},
	}
}

func (e *extractor) typeDetail(n *sitter.Node) *string {
	t := n.ChildByFieldName("type")
	if t == nil || t.ChildByFieldName("body") != nil {
		return nil
	}
	detail := syntax.NormalizeWhitespace(e.text(t))
	return &detail
}

func (e *extractor) text(n *sitter.Node) string {
	return e.result.NodeText(n)
}

// statementEnd returns the end of n, excluding a final semicolon. The
// semicolon is not always a direct child of n (pure virtual members keep it
// inside the declaration), so the node text is trimmed instead.
func (e *extractor) statementEnd(n *sitter.Node) sitter.Point {
	text := e.text(n)
	trimmed := strings.TrimRight(text, " \t\r\n")
	if !strings.HasSuffix(trimmed, ";") {
		return n.EndPoint()
	}
	trimmed = strings.TrimRight(strings.TrimSuffix(trimmed, ";"), " \t\r\n")
	start := n.StartPoint()
	if i := strings.LastIndexByte(trimmed, '\n'); i >= 0 {
		return sitter.Point{
			Row:    start.Row + uint32(strings.Count(trimmed, "\n")),
			Column: uint32(len(trimmed) - i - 1),
		}
	}
	return sitter.Point{Row: start.Row, Column: start.Column + uint32(len(trimmed))}
}

func lastDeclarator(n *sitter.Node) *sitter.Node {
	var last *sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) == "declarator" {
			last = n.Child(i)
		}
	}
	return last
}

// functionDeclarator returns the function declarator that d declares, seen
// through pointers and references to the return type. A function pointer
// declares a variable and yields nil.
func functionDeclarator(d *sitter.Node) *sitter.Node {
	for d != nil {
		switch d.Type() {
		case "function_declarator":
			if inner := d.ChildByFieldName("declarator"); inner != nil && inner.Type() == "parenthesized_declarator" {
				return nil
			}
			return d
		case "operator_cast":
			return d
		case "pointer_declarator", "reference_declarator", "attributed_declarator":
			d = innerDeclarator(d)
		default:
			return nil
		}
	}
	return nil
}

// declaredName returns the name node that a declarator declares.
func declaredName(d *sitter.Node) *sitter.Node {
	for d != nil {
		switch d.Type() {
		case "identifier", "field_identifier", "type_identifier", "qualified_identifier",
			"destructor_name", "operator_name", "template_function", "operator_cast":
			return d
		case "function_declarator", "pointer_declarator", "reference_declarator", "array_declarator",
			"init_declarator", "attributed_declarator", "parenthesized_declarator":
			d = innerDeclarator(d)
		default:
			return nil
		}
	}
	return nil
}

func innerDeclarator(d *sitter.Node) *sitter.Node {
	if inner := d.ChildByFieldName("declarator"); inner != nil {
		return inner
	}
	// reference and parenthesized declarators have no field names.
	for i := int(d.NamedChildCount()) - 1; i >= 0; i-- {
		c := d.NamedChild(i)
		switch c.Type() {
		case "type_qualifier", "attribute_declaration", "ms_pointer_modifier":
			continue
		}
		return c
	}
	return nil
}

// lastName returns the unqualified part of a name node, used as the
// selection range.
func lastName(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "qualified_identifier", "nested_namespace_specifier":
			next := n.ChildByFieldName("name")
			if next == nil {
				next = n.NamedChild(int(n.NamedChildCount()) - 1)
			}
			if next == nil {
				return n
			}
			n = next
		case "template_function", "template_type":
			if name := n.ChildByFieldName("name"); name != nil {
				return name
			}
			return n
		default:
			return n
		}
	}
	return n
}

// baseName drops template arguments from a name.
func baseName(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return name
}

func point(p sitter.Point) protocol.Position {
	return protocol.Position{Line: protocol.UInteger(p.Row), Character: protocol.UInteger(p.Column)}
}
