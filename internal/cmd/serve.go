package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"github.com/hargabyte/cppgen/internal/config"
	"github.com/hargabyte/cppgen/internal/mcp"
	"github.com/hargabyte/cppgen/internal/session"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server for AI agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdin/stdout.

Agents call the generators as MCP tools. The server keeps parsed files
between calls and watches the workspace so that files changed by other
tools are read again.

Editing tools write their changes unless --preview is set, in which case
they return the diff and only write when a call passes "apply": true.

Examples:
  cppgen serve                                  # All tools
  cppgen serve --tools add_definition,switch    # Selected tools only
  cppgen serve --timeout 30m                    # Stop after 30 idle minutes
  cppgen serve --preview                        # Return diffs, do not write
  cppgen serve --status                         # Check if a server is running
  cppgen serve --stop                           # Stop the running server
  cppgen serve --list-tools                     # Show available tools`,
	RunE: runServe,
}

var (
	serveTools     string
	serveTimeout   string
	servePreview   bool
	serveWatch     bool
	serveStatus    bool
	serveStop      bool
	serveListTools bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of tools to expose (default: all)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "0", "Inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&servePreview, "preview", false, "Return diffs instead of writing files")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "Watch the workspace for changes")
	serveCmd.Flags().BoolVar(&serveStatus, "status", false, "Check if server is running")
	serveCmd.Flags().BoolVar(&serveStop, "stop", false, "Stop running server")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListTools {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Available MCP tools:")
		fmt.Fprintln(out)
		for _, name := range mcp.AllTools {
			fmt.Fprintf(out, "  %-26s %s\n", name, mcp.ToolDescription(name))
		}
		return nil
	}
	if serveStatus {
		return checkServerStatus(cmd)
	}
	if serveStop {
		return stopServer(cmd)
	}

	timeout, err := parseDuration(serveTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	var tools []string
	for _, t := range splitList(serveTools) {
		tools = append(tools, normalizeToolName(t))
	}

	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveWatch {
		w, err := s.Watch(ctx, 0)
		if err != nil {
			slogctx.Warn(ctx, "not watching workspace", "error", err)
		} else {
			defer w.Close()
		}
	}

	server, err := mcp.New(s, mcp.Config{
		Tools:   tools,
		Timeout: timeout,
		Preview: servePreview,
		Version: Version,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if err := writePIDFile(s); err != nil {
		slogctx.Warn(ctx, "could not write PID file", "error", err)
	}
	defer removePIDFile(s)

	// stdout carries the protocol; everything else goes through the logger.
	slogctx.Info(ctx, "starting MCP server", "root", s.Root(), "tools", server.ListTools(), "timeout", timeout, "preview", servePreview)
	return server.ServeStdio(ctx)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func pidFilePath(dir string) string {
	return filepath.Join(dir, "serve.pid")
}

// writePIDFile records the server process in .cppgen. Workspaces without
// a configuration directory get no PID file.
func writePIDFile(s *session.Session) error {
	if s.ConfigDir() == "" {
		return nil
	}
	return os.WriteFile(pidFilePath(s.ConfigDir()), []byte(strconv.Itoa(os.Getpid())), 0644)
}

func removePIDFile(s *session.Session) {
	if s.ConfigDir() == "" {
		return
	}
	os.Remove(pidFilePath(s.ConfigDir()))
}

// readPID returns the PID of a running server in the workspace around the
// current directory, or 0.
func readPID() (string, int) {
	dir, err := config.FindConfigDir(".")
	if err != nil {
		return "", 0
	}
	data, err := os.ReadFile(pidFilePath(dir))
	if err != nil {
		return dir, 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return dir, 0
	}
	return dir, pid
}

func checkServerStatus(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	dir, pid := readPID()
	if pid == 0 {
		fmt.Fprintln(out, "Status: not running")
		return nil
	}

	// On Unix, FindProcess always succeeds, so signal 0 checks for the process.
	process, err := os.FindProcess(pid)
	if err == nil {
		err = process.Signal(syscall.Signal(0))
	}
	if err != nil {
		fmt.Fprintln(out, "Status: not running (stale PID file)")
		os.Remove(pidFilePath(dir))
		return nil
	}

	fmt.Fprintf(out, "Status: running (PID %d)\n", pid)
	return nil
}

func stopServer(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	dir, pid := readPID()
	if pid == 0 {
		fmt.Fprintln(out, "No server running")
		return nil
	}

	process, err := os.FindProcess(pid)
	if err == nil {
		err = process.Signal(syscall.SIGTERM)
	}
	if err != nil {
		os.Remove(pidFilePath(dir))
		fmt.Fprintln(out, "Server already stopped")
		return nil
	}

	fmt.Fprintf(out, "Stopped server (PID %d)\n", pid)
	return nil
}
