package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hargabyte/cppgen/internal/accessor"
	"github.com/hargabyte/cppgen/internal/config"
	"github.com/hargabyte/cppgen/internal/generate"
)

// operatorsCmd represents the operators command
var operatorsCmd = &cobra.Command{
	Use:   "operators <file:line:column>",
	Short: "Generate comparison or stream operators for the class at a position",
	Long: `Generate operators for the class or struct at the given position.

Sets:
  equality     operator== and operator!=
  relational   operator<, operator>, operator<= and operator>=
  stream       operator<< for std::ostream (adds #include <ostream> if needed)

The operators compare or print the base classes and non-static members of the
class; --operands restricts them. Use --list to see the candidates.
Comparison operators are friends when generate.friend_comparison_operators is set.

Examples:
  cppgen operators include/widget.h:8:7 --set equality
  cppgen operators include/widget.h:8:7 --set stream --operands w_,h_
  cppgen operators include/widget.h:8:7 --set relational --location source-file
  cppgen operators include/widget.h:8:7 --list`,
	Args: cobra.ExactArgs(1),
	RunE: runOperators,
}

var (
	operatorSet      string
	operatorOperands string
	operatorLocation string
	operatorList     bool
)

func init() {
	rootCmd.AddCommand(operatorsCmd)
	operatorsCmd.Flags().StringVar(&operatorSet, "set", "equality", "Operator set (equality|relational|stream)")
	operatorsCmd.Flags().StringVar(&operatorOperands, "operands", "", "Comma-separated base classes and members (default: all)")
	operatorsCmd.Flags().StringVar(&operatorLocation, "location", "inline", "Where definitions go ("+strings.Join(config.ValidDefinitionLocations, "|")+")")
	operatorsCmd.Flags().BoolVar(&operatorList, "list", false, "List the operands of the class")
}

func parseOperatorSet(s string) (generate.OperatorSet, error) {
	for _, set := range []generate.OperatorSet{generate.EqualityOperators, generate.RelationalOperators, generate.StreamOutputOperator} {
		if set.String() == s {
			return set, nil
		}
	}
	return 0, fmt.Errorf("invalid --set %q (expected equality, relational or stream)", s)
}

// OperandOutput is one entry of --list.
type OperandOutput struct {
	Name string `yaml:"name" json:"name"`
	Base bool   `yaml:"base,omitempty" json:"base,omitempty"`
}

func runOperators(cmd *cobra.Command, args []string) error {
	path, pos, err := parseLocation(args[0])
	if err != nil {
		return err
	}
	set, err := parseOperatorSet(operatorSet)
	if err != nil {
		return err
	}
	if !config.IsValidDefinitionLocation(operatorLocation) {
		return fmt.Errorf("invalid --location %q (expected %s)", operatorLocation, strings.Join(config.ValidDefinitionLocations, ", "))
	}

	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if operatorList {
		operands, err := s.Generator.Operands(ctx, path, pos)
		if err != nil {
			return err
		}
		list := []OperandOutput{}
		for _, op := range operands {
			list = append(list, OperandOutput{Name: op.Name, Base: op.Base})
		}
		return writeOutput(cmd, list)
	}

	res, err := s.Generator.GenerateOperators(ctx, generate.OperatorRequest{
		Path:     path,
		Pos:      pos,
		Set:      set,
		Operands: splitList(operatorOperands),
		Location: accessor.DefinitionLocation(operatorLocation),
	})
	if err != nil {
		return err
	}
	return finishEdit(cmd, s, "operators", res, nil, nil)
}
