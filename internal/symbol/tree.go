// Package symbol builds symbol trees from the document symbols reported by an
// oracle.
//
// A Tree stores its nodes in a single slice. Parent and child links are
// indices into that slice, so a tree has no reference cycles and can be
// shared read-only once built.
package symbol

import (
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/oracle"
)

// NoParent marks a top-level node.
const NoParent = -1

// Node is one named construct in a document.
type Node struct {
	Index int
	// Name is the bare identifier with parameter lists, template arguments and
	// qualifiers removed.
	Name string
	// Signature is the full text reported for the symbol, used to tell overloads apart.
	Signature      string
	Detail         string
	Kind           Kind
	Range          document.Range
	SelectionRange document.Range
	Parent         int
	Children       []int
}

// Tree is the symbol hierarchy of one document.
type Tree struct {
	Path  string
	Nodes []Node
	Roots []int
}

// Build converts document symbols into a tree. Children at every level are
// sorted by the end of their range.
func Build(path string, symbols []protocol.DocumentSymbol) *Tree {
	t := &Tree{Path: path}
	t.Roots = t.add(symbols, NoParent)
	return t
}

func (t *Tree) add(symbols []protocol.DocumentSymbol, parent int) []int {
	indices := make([]int, 0, len(symbols))
	for i := range symbols {
		s := &symbols[i]
		idx := len(t.Nodes)
		t.Nodes = append(t.Nodes, newNode(idx, s, parent))
		indices = append(indices, idx)
		children := t.add(s.Children, idx)
		t.Nodes[idx].Children = children
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return t.Nodes[indices[a]].Range.End.Before(t.Nodes[indices[b]].Range.End)
	})
	return indices
}

func newNode(idx int, s *protocol.DocumentSymbol, parent int) Node {
	n := Node{
		Index:          idx,
		Name:           NormalizeName(s.Name),
		Signature:      s.Name,
		Kind:           KindFromProtocol(s.Kind),
		Range:          oracle.FromProtocolRange(s.Range),
		SelectionRange: oracle.FromProtocolRange(s.SelectionRange),
		Parent:         parent,
	}
	if s.Detail != nil {
		n.Detail = *s.Detail
	}
	if n.Name != "" && strings.Contains(n.Detail, n.Name+"(") {
		n.Signature = n.Detail
		// Some servers report static member functions as properties.
		if n.Kind == KindProperty {
			n.Kind = KindMethod
		}
	}
	if !n.Range.ContainsRange(n.SelectionRange) {
		n.Range = n.Range.Union(n.SelectionRange)
	}
	return n
}

// NormalizeName strips a parameter list, trailing template arguments and
// scope qualifiers from a reported symbol name.
func NormalizeName(name string) string {
	if strings.HasPrefix(strings.TrimPrefix(name, "~"), "operator") || strings.Contains(name, "::operator") {
		return normalizeOperatorName(name)
	}
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	if strings.HasSuffix(name, ">") {
		if i := strings.LastIndexByte(name, '<'); i >= 0 {
			name = name[:i]
		}
	}
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	return strings.TrimSpace(name)
}

// normalizeOperatorName keeps the operator token, whose characters would be
// misread as parameter lists or template arguments.
func normalizeOperatorName(name string) string {
	i := strings.Index(name, "operator")
	if j := strings.LastIndex(name[:i], "::"); j >= 0 {
		name = name[j+2:]
		i -= j + 2
	}
	rest := name[i+len("operator"):]
	if strings.HasPrefix(strings.TrimSpace(rest), "()") {
		return name[:i] + "operator()"
	}
	if p := strings.IndexByte(rest, '('); p >= 0 {
		rest = rest[:p]
	}
	return strings.TrimSpace(name[:i] + "operator" + rest)
}

// Node returns the node at an index.
func (t *Tree) Node(i int) *Node {
	if i < 0 || i >= len(t.Nodes) {
		return nil
	}
	return &t.Nodes[i]
}

// Parent returns the parent of n, or nil for a top-level node.
func (t *Tree) Parent(n *Node) *Node {
	return t.Node(n.Parent)
}

// Children returns the children of n in range order.
func (t *Tree) Children(n *Node) []*Node {
	return t.nodes(n.Children)
}

// TopLevel returns the top-level nodes in range order.
func (t *Tree) TopLevel() []*Node {
	return t.nodes(t.Roots)
}

// Siblings returns the nodes that share n's parent, including n.
func (t *Tree) Siblings(n *Node) []*Node {
	if p := t.Parent(n); p != nil {
		return t.Children(p)
	}
	return t.TopLevel()
}

func (t *Tree) nodes(indices []int) []*Node {
	out := make([]*Node, len(indices))
	for i, idx := range indices {
		out[i] = &t.Nodes[idx]
	}
	return out
}

// Scopes returns the ancestors of n, outermost first.
func (t *Tree) Scopes(n *Node) []*Node {
	var scopes []*Node
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		scopes = append(scopes, p)
	}
	for i, j := 0, len(scopes)-1; i < j; i, j = i+1, j-1 {
		scopes[i], scopes[j] = scopes[j], scopes[i]
	}
	return scopes
}

// Empty reports whether the tree has no symbols.
func (t *Tree) Empty() bool {
	return len(t.Roots) == 0
}

// Last returns the last top-level symbol, or nil.
func (t *Tree) Last() *Node {
	if len(t.Roots) == 0 {
		return nil
	}
	return &t.Nodes[t.Roots[len(t.Roots)-1]]
}

// SymbolAt returns the innermost symbol containing p. A symbol is returned
// without descending when it has no children or p lies on its name.
func (t *Tree) SymbolAt(p document.Position) *Node {
	return t.symbolAt(t.Roots, p)
}

func (t *Tree) symbolAt(indices []int, p document.Position) *Node {
	for _, idx := range indices {
		n := &t.Nodes[idx]
		if !n.Range.Contains(p) {
			continue
		}
		if len(n.Children) == 0 || n.SelectionRange.Contains(p) {
			return n
		}
		if child := t.symbolAt(n.Children, p); child != nil {
			return child
		}
		return n
	}
	return nil
}

// Walk visits nodes depth first in range order until fn returns false.
func (t *Tree) Walk(fn func(*Node) bool) {
	t.walk(t.Roots, fn)
}

func (t *Tree) walk(indices []int, fn func(*Node) bool) bool {
	for _, idx := range indices {
		n := &t.Nodes[idx]
		if !fn(n) || !t.walk(n.Children, fn) {
			return false
		}
	}
	return true
}

// Find returns the first node, depth first, for which match returns true.
func (t *Tree) Find(match func(*Node) bool) *Node {
	var found *Node
	t.Walk(func(n *Node) bool {
		if match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}
