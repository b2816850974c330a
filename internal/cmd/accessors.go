package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hargabyte/cppgen/internal/config"
	"github.com/hargabyte/cppgen/internal/generate"
)

const accessorsLong = `Generate accessors for the member variable at the given position.

Accessors are declared in the public section of the class, next to existing
accessors of neighbouring members when there are any. Const members only get
a getter, and accessors that already exist are not generated again.

The definition goes inline in the class (default), below the class in the
current file, or in the matching source file. --definition overrides
generate.getter_definition and generate.setter_definition.`

// getterCmd represents the getter command
var getterCmd = &cobra.Command{
	Use:   "getter <file:line:column>",
	Short: "Generate a getter for the member variable at a position",
	Long: accessorsLong + `

Examples:
  cppgen getter include/widget.h:30:9
  cppgen getter include/widget.h:30:9 --definition source-file`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAccessors(cmd, args, generate.GetterOnly)
	},
}

// setterCmd represents the setter command
var setterCmd = &cobra.Command{
	Use:   "setter <file:line:column>",
	Short: "Generate a setter for the member variable at a position",
	Long: accessorsLong + `

Examples:
  cppgen setter include/widget.h:30:9`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAccessors(cmd, args, generate.SetterOnly)
	},
}

// accessorsCmd represents the accessors command
var accessorsCmd = &cobra.Command{
	Use:   "accessors <file:line:column>",
	Short: "Generate a getter and a setter for the member variable at a position",
	Long: accessorsLong + `

Examples:
  cppgen accessors include/widget.h:30:9 --definition current-file`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAccessors(cmd, args, generate.GetterAndSetter)
	},
}

var accessorDefinition string

func init() {
	usage := "Where definitions go (" + strings.Join(config.ValidDefinitionLocations, "|") + ")"
	for _, c := range []*cobra.Command{getterCmd, setterCmd, accessorsCmd} {
		rootCmd.AddCommand(c)
		c.Flags().StringVar(&accessorDefinition, "definition", "", usage)
	}
}

func runAccessors(cmd *cobra.Command, args []string, kind generate.Accessors) error {
	path, pos, err := parseLocation(args[0])
	if err != nil {
		return err
	}
	if accessorDefinition != "" && !config.IsValidDefinitionLocation(accessorDefinition) {
		return fmt.Errorf("invalid --definition %q (expected %s)", accessorDefinition, strings.Join(config.ValidDefinitionLocations, ", "))
	}

	ctx, s, err := openSession(cmd, func(c *config.Config) {
		if accessorDefinition != "" {
			c.Generate.GetterDefinition = accessorDefinition
			c.Generate.SetterDefinition = accessorDefinition
		}
	})
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Generator.GenerateAccessors(ctx, generate.AccessorRequest{Path: path, Pos: pos, Kind: kind})
	if err != nil {
		return err
	}
	return finishEdit(cmd, s, cmd.Name(), res.Result, res.Generated, res.Skipped)
}
