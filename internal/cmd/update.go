package cmd

import (
	"github.com/spf13/cobra"
)

// updateSignatureCmd represents the update-signature command
var updateSignatureCmd = &cobra.Command{
	Use:   "update-signature <file:line:column>",
	Short: "Copy the signature of a function to its declaration or definition",
	Long: `Update the linked declaration or definition of the function at the given
position so that its return type and specifiers match: constexpr, consteval,
const, volatile, ref-qualifiers and noexcept.

Parameter lists are not changed; a mismatch is logged as a warning.

Examples:
  cppgen update-signature include/widget.h:21:10
  cppgen update-signature include/widget.h:21:10 --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdateSignature,
}

func init() {
	rootCmd.AddCommand(updateSignatureCmd)
}

func runUpdateSignature(cmd *cobra.Command, args []string) error {
	path, pos, err := parseLocation(args[0])
	if err != nil {
		return err
	}

	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Generator.UpdateSignature(ctx, path, pos)
	if err != nil {
		return err
	}
	return finishEdit(cmd, s, "update-signature", res, nil, nil)
}
