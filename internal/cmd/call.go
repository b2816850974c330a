package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hargabyte/cppgen/internal/mcp"
)

var (
	callList bool
	callPipe bool
)

var callCmd = &cobra.Command{
	Use:   "call [tool] [json-args]",
	Short: "Run any MCP tool from the command line",
	Long: `Call a cppgen MCP tool with JSON arguments and print its JSON result.

This runs the same code as 'cppgen serve' without the protocol, which is
handy for scripts and for trying tools out.

Modes:
  cppgen call --list                          List all tools and parameters
  cppgen call <tool> '{"key":"value"}'        Call a tool with JSON args
  cppgen call --pipe                          Read JSON lines from stdin

Tool names accept shorthand: "switch" is equivalent to "cppgen_switch".
With --dry-run editing tools do not write unless a call passes "apply": true.

Examples:
  cppgen call --list
  cppgen call symbols '{"file":"src/widget.h"}'
  cppgen call add_definition '{"file":"src/widget.h","line":12,"target":"source-file"}'
  echo '{"tool":"switch","args":{"file":"src/widget.h"}}' | cppgen call --pipe`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().BoolVar(&callList, "list", false, "List all available tools and their parameters")
	callCmd.Flags().BoolVar(&callPipe, "pipe", false, "Read JSON lines from stdin (pipe mode)")
}

func runCall(cmd *cobra.Command, args []string) error {
	if callList {
		return runCallList(cmd)
	}
	if !callPipe && len(args) == 0 {
		return fmt.Errorf("tool name required (run 'cppgen call --list' to see available tools)")
	}

	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	srv, err := mcp.New(s, mcp.Config{Tools: mcp.AllTools, Preview: dryRun, Version: Version})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	if callPipe {
		return runCallPipe(ctx, cmd, srv)
	}

	var toolArgs map[string]interface{}
	if len(args) >= 2 {
		if err := json.Unmarshal([]byte(args[1]), &toolArgs); err != nil {
			return fmt.Errorf("invalid JSON args: %w", err)
		}
	} else {
		toolArgs = make(map[string]interface{})
	}

	result, err := srv.CallTool(ctx, normalizeToolName(args[0]), toolArgs)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

func runCallList(cmd *cobra.Command) error {
	schemas := mcp.Schemas(mcp.AllTools)

	switch outputFormat {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(schemas)
	default:
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(schemas)
	}
}

// pipeRequest is the JSON format for pipe mode input.
type pipeRequest struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

// pipeResponse is the JSON format for pipe mode output.
type pipeResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func runCallPipe(ctx context.Context, cmd *cobra.Command, srv *mcp.Server) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	scanner := bufio.NewScanner(os.Stdin)
	// Allow larger lines (1MB)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req pipeRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			enc.Encode(pipeResponse{Error: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}
		if req.Args == nil {
			req.Args = make(map[string]interface{})
		}

		result, err := srv.CallTool(ctx, normalizeToolName(req.Tool), req.Args)
		if err != nil {
			enc.Encode(pipeResponse{Error: err.Error()})
			continue
		}

		var raw json.RawMessage
		if err := json.Unmarshal([]byte(result), &raw); err != nil {
			b, _ := json.Marshal(result)
			raw = b
		}
		enc.Encode(pipeResponse{Result: raw})
	}

	return scanner.Err()
}

// normalizeToolName converts shorthand names to full tool names.
// "switch" -> "cppgen_switch", "cppgen_switch" -> "cppgen_switch"
func normalizeToolName(name string) string {
	if !strings.HasPrefix(name, mcp.ToolPrefix) {
		return mcp.ToolPrefix + name
	}
	return name
}
