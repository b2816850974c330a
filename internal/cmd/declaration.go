package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hargabyte/cppgen/internal/generate"
	"github.com/hargabyte/cppgen/internal/semantic"
)

// addDeclarationCmd represents the add-declaration command
var addDeclarationCmd = &cobra.Command{
	Use:   "add-declaration <file:line:column>",
	Short: "Declare the function defined at a position",
	Long: `Add a declaration for the function defined at the given position.

Member functions are declared in their class under the access level given by
--access (default public); the access specifier is added when the class has no
section for it. Other functions are declared in the matching header, or in the
current file when there is none.

Examples:
  cppgen add-declaration src/widget.cpp:40:6
  cppgen add-declaration src/widget.cpp:52:6 --access private`,
	Args: cobra.ExactArgs(1),
	RunE: runAddDeclaration,
}

var declarationAccess string

func init() {
	rootCmd.AddCommand(addDeclarationCmd)
	addDeclarationCmd.Flags().StringVar(&declarationAccess, "access", "", "Access level of a member declaration (public|protected|private)")
}

// parseAccess returns nil for an empty flag.
func parseAccess(s string) (*semantic.AccessLevel, error) {
	if s == "" {
		return nil, nil
	}
	a, err := semantic.ParseAccessLevel(s)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func runAddDeclaration(cmd *cobra.Command, args []string) error {
	path, pos, err := parseLocation(args[0])
	if err != nil {
		return err
	}
	access, err := parseAccess(declarationAccess)
	if err != nil {
		return err
	}

	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Generator.AddDeclaration(ctx, generate.DeclarationRequest{Path: path, Pos: pos, Access: access})
	if err != nil {
		return reportExisting(cmd, s, res, err)
	}
	return finishEdit(cmd, s, "add-declaration", res, nil, nil)
}
