package mcp

// ToolPrefix starts the name of every tool.
const ToolPrefix = "cppgen_"

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

var (
	fileParam   = ParameterSchema{Name: "file", Type: "string", Description: "File path, relative to the workspace root or absolute", Required: true}
	lineParam   = ParameterSchema{Name: "line", Type: "number", Description: "1-based line of the symbol", Required: true}
	columnParam = ParameterSchema{Name: "column", Type: "number", Description: "1-based column of the symbol (default: 1)"}
	applyParam  = ParameterSchema{Name: "apply", Type: "boolean", Description: "Write the changes (default: true unless the server runs in preview mode)"}
)

// locationParams are the parameters of tools working on the symbol at a position.
func locationParams(extra ...ParameterSchema) []ParameterSchema {
	return append([]ParameterSchema{fileParam, lineParam, columnParam}, append(extra, applyParam)...)
}

// toolSchemaRegistry holds the schema definitions for all tools. The MCP
// tool definitions are built from it.
var toolSchemaRegistry = map[string]ToolSchema{
	"cppgen_symbols": {
		Name:        "cppgen_symbols",
		Description: "List the symbol tree of a C/C++ file with line ranges.",
		Parameters:  []ParameterSchema{fileParam},
	},
	"cppgen_undefined": {
		Name:        "cppgen_undefined",
		Description: "List the functions declared in a file that have no definition.",
		Parameters:  []ParameterSchema{fileParam},
	},
	"cppgen_add_definition": {
		Name:        "cppgen_add_definition",
		Description: "Add an empty definition for the function declared at a position, in the current file or the matching source file.",
		Parameters: locationParams(
			ParameterSchema{Name: "target", Type: "string", Description: "current-file (default) or source-file"},
			ParameterSchema{Name: "initializers", Type: "string", Description: "Comma-separated constructor initializers"},
		),
	},
	"cppgen_add_definitions": {
		Name:        "cppgen_add_definitions",
		Description: "Add empty definitions for every undefined function declared in a file.",
		Parameters: []ParameterSchema{
			fileParam,
			{Name: "target", Type: "string", Description: "current-file (default) or source-file"},
			{Name: "names", Type: "string", Description: "Comma-separated function names (default: all)"},
			applyParam,
		},
	},
	"cppgen_add_declaration": {
		Name:        "cppgen_add_declaration",
		Description: "Declare the function defined at a position, in its class or the matching header.",
		Parameters: locationParams(
			ParameterSchema{Name: "access", Type: "string", Description: "public (default), protected or private"},
		),
	},
	"cppgen_move_definition": {
		Name:        "cppgen_move_definition",
		Description: "Move the function definition at a position to the matching file, or into/out of its class body.",
		Parameters: locationParams(
			ParameterSchema{Name: "class", Type: "boolean", Description: "Move into or out of the class body instead of to the matching file"},
			ParameterSchema{Name: "access", Type: "string", Description: "Access level when moving into a class without a declaration"},
		),
	},
	"cppgen_accessors": {
		Name:        "cppgen_accessors",
		Description: "Generate a getter, a setter or both for the member variable at a position.",
		Parameters: locationParams(
			ParameterSchema{Name: "kind", Type: "string", Description: "getter, setter or both (default: both)"},
		),
	},
	"cppgen_operators": {
		Name:        "cppgen_operators",
		Description: "Generate equality, relational or stream output operators for the class at a position.",
		Parameters: locationParams(
			ParameterSchema{Name: "set", Type: "string", Description: "equality (default), relational or stream"},
			ParameterSchema{Name: "operands", Type: "string", Description: "Comma-separated base classes and members (default: all)"},
			ParameterSchema{Name: "location", Type: "string", Description: "inline (default), current-file or source-file"},
		),
	},
	"cppgen_update_signature": {
		Name:        "cppgen_update_signature",
		Description: "Copy return type and specifiers of the function at a position to its linked declaration or definition.",
		Parameters:  locationParams(),
	},
	"cppgen_switch": {
		Name:        "cppgen_switch",
		Description: "Find the header matching a source file, or the source file matching a header.",
		Parameters:  []ParameterSchema{fileParam},
	},
	"cppgen_add_header_guard": {
		Name:        "cppgen_add_header_guard",
		Description: "Add or fix the header guard of a header file in the configured style.",
		Parameters:  []ParameterSchema{fileParam, applyParam},
	},
	"cppgen_add_include": {
		Name:        "cppgen_add_include",
		Description: "Add an include directive to a file, after the existing includes of its kind.",
		Parameters: []ParameterSchema{
			fileParam,
			{Name: "statement", Type: "string", Description: "The directive, e.g. #include <vector>", Required: true},
			applyParam,
		},
	},
	"cppgen_create_source": {
		Name:        "cppgen_create_source",
		Description: "Create the source file matching a header, optionally with definitions for its undefined functions.",
		Parameters: []ParameterSchema{
			fileParam,
			{Name: "folder", Type: "string", Description: "Folder of the new file"},
			{Name: "extension", Type: "string", Description: "Extension without the dot"},
			{Name: "definitions", Type: "boolean", Description: "Add definitions for undefined functions"},
			applyParam,
		},
	},
}

// Schemas returns the schemas of the named tools in the given order,
// skipping unknown names.
func Schemas(names []string) []ToolSchema {
	schemas := make([]ToolSchema, 0, len(names))
	for _, name := range names {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// ToolDescription returns the description of a tool, or "" if it is unknown.
func ToolDescription(name string) string {
	return toolSchemaRegistry[name].Description
}
