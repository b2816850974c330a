package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hargabyte/cppgen/internal/generate"
	"github.com/hargabyte/cppgen/internal/output"
	"github.com/hargabyte/cppgen/internal/symbol"
)

// addDefinitionCmd represents the add-definition command
var addDefinitionCmd = &cobra.Command{
	Use:   "add-definition <file:line:column>",
	Short: "Add an empty definition for the declared function at a position",
	Long: `Add an empty definition for the function declared at the given position.

The definition goes to the current file (--target current-file, default) or to
the matching source file (--target source-file). Inline, constexpr and consteval
functions and unspecialized templates can only be defined in the file that
declares them. Nothing is added when a definition already exists; its location
is printed instead.

For constructors, --init selects the base classes and members to initialize.
Const and reference members are always initialized. Use --list-initializers to
see the candidates.

Examples:
  cppgen add-definition include/widget.h:14:10
  cppgen add-definition include/widget.h:14:10 --target source-file
  cppgen add-definition include/widget.h:9:5 --init Base,size_
  cppgen add-definition include/widget.h:9:5 --list-initializers`,
	Args: cobra.ExactArgs(1),
	RunE: runAddDefinition,
}

// addDefinitionsCmd represents the add-definitions command
var addDefinitionsCmd = &cobra.Command{
	Use:   "add-definitions <file>",
	Short: "Add empty definitions for every undefined function in a file",
	Long: `Add empty definitions for the functions declared in a file that have no
definition yet, in declaration order.

When any selected function must be defined where it is declared (inline,
constexpr, consteval, unspecialized template), every definition goes to the
current file.

Examples:
  cppgen add-definitions include/widget.h --target source-file
  cppgen add-definitions include/widget.h --names area,reset`,
	Args: cobra.ExactArgs(1),
	RunE: runAddDefinitions,
}

// undefinedCmd represents the undefined command
var undefinedCmd = &cobra.Command{
	Use:   "undefined <file>",
	Short: "List the declared functions of a file that have no definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runUndefined,
}

var (
	definitionTarget string
	definitionInit   string
	definitionList   bool
	definitionsNames string
)

func init() {
	rootCmd.AddCommand(addDefinitionCmd)
	rootCmd.AddCommand(addDefinitionsCmd)
	rootCmd.AddCommand(undefinedCmd)

	addDefinitionCmd.Flags().StringVar(&definitionTarget, "target", "current-file", "Where the definition goes (current-file|source-file)")
	addDefinitionCmd.Flags().StringVar(&definitionInit, "init", "", "Comma-separated constructor initializers")
	addDefinitionCmd.Flags().BoolVar(&definitionList, "list-initializers", false, "List the initializers a constructor accepts")

	addDefinitionsCmd.Flags().StringVar(&definitionTarget, "target", "current-file", "Where the definitions go (current-file|source-file)")
	addDefinitionsCmd.Flags().StringVar(&definitionsNames, "names", "", "Comma-separated function names (default: all undefined functions)")
}

func parseTarget(s string) (generate.Target, error) {
	switch s {
	case generate.CurrentFile.String():
		return generate.CurrentFile, nil
	case generate.SourceFile.String():
		return generate.SourceFile, nil
	}
	return generate.CurrentFile, fmt.Errorf("invalid --target %q (expected current-file or source-file)", s)
}

// InitializerOutput is one entry of --list-initializers.
type InitializerOutput struct {
	Name     string `yaml:"name" json:"name"`
	Kind     string `yaml:"kind" json:"kind"`
	Required bool   `yaml:"required,omitempty" json:"required,omitempty"`
}

func runAddDefinition(cmd *cobra.Command, args []string) error {
	path, pos, err := parseLocation(args[0])
	if err != nil {
		return err
	}
	target, err := parseTarget(definitionTarget)
	if err != nil {
		return err
	}

	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if definitionList {
		f, err := s.Generator.File(ctx, path)
		if err != nil {
			return err
		}
		v := f.SymbolAt(pos)
		if v == nil || !v.IsConstructor() {
			return fmt.Errorf("no constructor declaration at %s", args[0])
		}
		list := []InitializerOutput{}
		for _, in := range generate.Initializers(v) {
			list = append(list, InitializerOutput{Name: in.Name, Kind: in.Kind.String(), Required: in.Required})
		}
		return writeOutput(cmd, list)
	}

	res, err := s.Generator.AddDefinition(ctx, generate.DefinitionRequest{
		Path:         path,
		Pos:          pos,
		Target:       target,
		Initializers: splitList(definitionInit),
	})
	if err != nil {
		return reportExisting(cmd, s, res, err)
	}
	return finishEdit(cmd, s, "add-definition", res, nil, nil)
}

func runAddDefinitions(cmd *cobra.Command, args []string) error {
	path, err := parsePath(args[0])
	if err != nil {
		return err
	}
	target, err := parseTarget(definitionTarget)
	if err != nil {
		return err
	}

	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Generator.AddDefinitions(ctx, generate.DefinitionsRequest{
		Path:   path,
		Target: target,
		Names:  splitList(definitionsNames),
	})
	if err != nil {
		return err
	}
	return finishEdit(cmd, s, "add-definitions", res, nil, nil)
}

func runUndefined(cmd *cobra.Command, args []string) error {
	path, err := parsePath(args[0])
	if err != nil {
		return err
	}

	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	undefined, err := s.Generator.UndefinedFunctions(ctx, path)
	if err != nil {
		return err
	}
	nodes := make([]*symbol.Node, len(undefined))
	for i, v := range undefined {
		nodes[i] = v.Node
	}
	return writeOutput(cmd, output.NewSymbolList(s.Root(), path, nodes))
}
