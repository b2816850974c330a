package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hargabyte/cppgen/internal/generate"
)

// moveDefinitionCmd represents the move-definition command
var moveDefinitionCmd = &cobra.Command{
	Use:   "move-definition <file:line:column>",
	Short: "Move the function definition at a position",
	Long: `Move the function definition at the given position.

By default the definition moves to the matching header or source file and a
declaration is left behind when the function had none. With --class a member
function defined in its class body moves below the class, and a definition
outside its class moves into the class body, replacing the declaration.

The comment above the definition moves with it when generate.always_move_comments
is set.

Examples:
  cppgen move-definition include/widget.h:30:9
  cppgen move-definition src/widget.cpp:18:13 --class
  cppgen move-definition src/widget.cpp:18:13 --class --access protected`,
	Args: cobra.ExactArgs(1),
	RunE: runMoveDefinition,
}

var (
	moveClass  bool
	moveAccess string
)

func init() {
	rootCmd.AddCommand(moveDefinitionCmd)
	moveDefinitionCmd.Flags().BoolVar(&moveClass, "class", false, "Move into or out of the class body instead of to the matching file")
	moveDefinitionCmd.Flags().StringVar(&moveAccess, "access", "", "Access level when moving into a class without a declaration")
}

func runMoveDefinition(cmd *cobra.Command, args []string) error {
	path, pos, err := parseLocation(args[0])
	if err != nil {
		return err
	}
	access, err := parseAccess(moveAccess)
	if err != nil {
		return err
	}

	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	req := generate.MoveRequest{Path: path, Pos: pos, Access: access}
	var res *generate.Result
	if moveClass {
		res, err = s.Generator.MoveDefinitionIntoOrOutOfClass(ctx, req)
	} else {
		res, err = s.Generator.MoveDefinitionToMatchingFile(ctx, req)
	}
	if err != nil {
		return err
	}
	return finishEdit(cmd, s, "move-definition", res, nil, nil)
}
