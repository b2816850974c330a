package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hargabyte/cppgen/internal/config"
	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/generate"
	"github.com/hargabyte/cppgen/internal/logging"
	"github.com/hargabyte/cppgen/internal/output"
	"github.com/hargabyte/cppgen/internal/session"
)

// Shared utility functions for command implementations

func configBraceStyles() []string {
	return config.ValidBraceStyles
}

// validateGlobalFlags rejects bad global flag values before any work is done.
func validateGlobalFlags(cmd *cobra.Command, args []string) error {
	if _, err := output.ParseFormat(outputFormat); err != nil {
		return err
	}
	if _, err := output.ParseDensity(outputDensity); err != nil {
		return err
	}
	if braceStyle != "" && !slices.Contains(config.ValidBraceStyles, braceStyle) {
		return fmt.Errorf("invalid --brace-style %q (expected %s)", braceStyle, strings.Join(config.ValidBraceStyles, ", "))
	}
	return nil
}

// logConfig builds the logger settings: config file, then environment, then
// --verbose.
func logConfig(cfg *config.Config) logging.Config {
	lc := logging.DefaultConfig()
	if cfg != nil {
		if lvl, err := logging.ParseLevel(cfg.Log.Level); err == nil {
			lc.Level = lvl
		}
		if f, err := logging.ParseFormat(cfg.Log.Format); err == nil {
			lc.Format = f
		}
	}
	lc = logging.LoadConfigFromEnv(lc)
	if verbose {
		lc.Level = slog.LevelDebug
		lc.Source = true
	}
	return lc
}

// openSession opens the workspace around the current directory and returns
// a context carrying the configured logger. overrides adjust the loaded
// configuration after the global flags have.
func openSession(cmd *cobra.Command, overrides ...func(*config.Config)) (context.Context, *session.Session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, logging.New(logConfig(nil)))

	s, err := session.Open(ctx, session.Options{
		ConfigPath: configPath,
		NoCache:    noCache,
		Override: func(c *config.Config) {
			if braceStyle != "" {
				c.Format.BraceStyle = braceStyle
			}
			for _, o := range overrides {
				o(c)
			}
		},
	})
	if err != nil {
		return nil, nil, err
	}
	return logging.WithLogger(ctx, logging.New(logConfig(s.Config))), s, nil
}

// parseLocation parses file:line[:column] with 1-based numbers. A missing
// column means column 1.
func parseLocation(arg string) (string, document.Position, error) {
	var pos document.Position
	parts := strings.Split(arg, ":")
	// Windows drive letters contain a colon, so numbers are taken from the end.
	nums := 0
	for i := len(parts) - 1; i > 0 && nums < 2; i-- {
		if _, err := strconv.Atoi(parts[i]); err != nil {
			break
		}
		nums++
	}
	if nums == 0 {
		return "", pos, fmt.Errorf("invalid location %q (expected file:line[:column])", arg)
	}
	path := strings.Join(parts[:len(parts)-nums], ":")
	values := parts[len(parts)-nums:]

	line, _ := strconv.Atoi(values[0])
	col := 1
	if nums == 2 {
		col, _ = strconv.Atoi(values[1])
	}
	if line < 1 || col < 1 {
		return "", pos, fmt.Errorf("invalid location %q: line and column start at 1", arg)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", pos, fmt.Errorf("resolving path: %w", err)
	}
	return abs, document.Position{Line: line - 1, Character: col - 1}, nil
}

// parsePath resolves a file argument.
func parsePath(arg string) (string, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

// splitList splits a comma separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// writeOutput formats v with the global --format and --density flags.
func writeOutput(cmd *cobra.Command, v any) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}
	density, err := output.ParseDensity(outputDensity)
	if err != nil {
		return fmt.Errorf("invalid density: %w", err)
	}
	// A dry run is only useful with the diff.
	if dryRun && !cmd.Flags().Changed("density") {
		density = output.DensityDense
	}
	if format == output.FormatDiff {
		if _, ok := v.(*output.EditOutput); !ok {
			format = output.FormatYAML
		}
	}

	formatter, err := output.GetFormatter(format)
	if err != nil {
		return fmt.Errorf("failed to get formatter: %w", err)
	}
	if err := formatter.FormatToWriter(cmd.OutOrStdout(), v, density); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

// finishEdit applies the edit of res unless --dry-run is set and prints the
// summary. generated and skipped may be nil.
func finishEdit(cmd *cobra.Command, s *session.Session, command string, res *generate.Result, generated, skipped []string) error {
	applied := false
	if !dryRun && !res.Edit.Empty() {
		if err := s.Apply(res.Edit); err != nil {
			return fmt.Errorf("applying changes: %w", err)
		}
		applied = true
	}

	out, err := output.NewEditOutput(command, s.Root(), res.Edit, res.Reveal, applied)
	if err != nil {
		return err
	}
	out.Generated = generated
	out.Skipped = skipped
	return writeOutput(cmd, out)
}

// reportExisting prints where an existing definition or declaration is when
// a feature refused because of it, and still fails the command.
func reportExisting(cmd *cobra.Command, s *session.Session, res *generate.Result, err error) error {
	if res != nil && res.Reveal != nil && (errors.Is(err, generate.ErrDefinitionExists) || errors.Is(err, generate.ErrDeclarationExists)) {
		fmt.Fprintf(os.Stderr, "%v: %s\n", err, output.FormatLocation(s.Root(), res.Reveal.Path, res.Reveal.Range.Start))
		return errSilent
	}
	return err
}

// errSilent fails a command whose error was already printed.
var errSilent = errors.New("")
