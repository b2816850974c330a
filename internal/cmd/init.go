package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hargabyte/cppgen/internal/cache"
	"github.com/hargabyte/cppgen/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .cppgen directory, configuration and cache",
	Long: `Initialize the .cppgen directory in the current directory.

This marks the workspace root, writes .cppgen/config.yaml with the default
settings and creates .cppgen/cache.db, which remembers header/source pairs and
parsed symbols between runs.

Examples:
  cppgen init          # Initialize in current directory
  cppgen init --force  # Rewrite config.yaml and reset the cache`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even if .cppgen already exists")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	configDir := filepath.Join(cwd, config.ConfigDirName)
	configFile := filepath.Join(configDir, config.ConfigFileName)

	_, err = os.Stat(configFile)
	if err == nil {
		if !initForce {
			fmt.Fprintf(cmd.OutOrStdout(), "Already initialized at %s\n", config.ConfigDirName)
			return nil
		}
		if err := os.Remove(configFile); err != nil {
			return fmt.Errorf("removing existing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config path: %w", err)
	}

	if _, err := config.SaveDefault(cwd); err != nil {
		return err
	}

	c, err := cache.Open(configDir)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer c.Close()
	if initForce {
		if err := c.Clear(); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized cppgen at %s\n", config.ConfigDirName)
	return nil
}
