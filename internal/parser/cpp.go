package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// newCppParser creates a tree-sitter parser configured for C++.
func newCppParser() *sitter.Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(cpp.GetLanguage())
	return parser
}

// ClassNodeTypes are the node types that introduce a class-like scope.
var ClassNodeTypes = map[string]bool{
	"class_specifier":  true,
	"struct_specifier": true,
	"union_specifier":  true,
}

// TransparentNodeTypes are the node types whose children belong to the
// enclosing scope: preprocessor conditionals, such as header guards, and
// linkage specifications.
var TransparentNodeTypes = map[string]bool{
	"preproc_if":            true,
	"preproc_ifdef":         true,
	"preproc_else":          true,
	"preproc_elif":          true,
	"preproc_elifdef":       true,
	"linkage_specification": true,
	"declaration_list":      true,
}

// IsClassNode reports whether node is a class, struct or union specifier.
func IsClassNode(node *sitter.Node) bool {
	return node != nil && ClassNodeTypes[node.Type()]
}
