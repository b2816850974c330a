package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hargabyte/cppgen/internal/output"
)

// symbolsCmd represents the symbols command
var symbolsCmd = &cobra.Command{
	Use:   "symbols <file>",
	Short: "Show the symbol tree of a file",
	Long: `Show the classes, namespaces, functions and variables of a file as the
generators see them, with their line ranges.

Examples:
  cppgen symbols include/widget.h
  cppgen symbols src/widget.cpp --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runSymbols,
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
}

func runSymbols(cmd *cobra.Command, args []string) error {
	path, err := parsePath(args[0])
	if err != nil {
		return err
	}

	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	f, err := s.Generator.File(ctx, path)
	if err != nil {
		return err
	}
	return writeOutput(cmd, output.NewSymbolTree(s.Root(), f.Tree))
}
