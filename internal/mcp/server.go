// Package mcp provides an MCP (Model Context Protocol) server for cppgen.
// This allows AI agents to run the generators through MCP tools instead of
// spawning CLI commands.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	slogctx "github.com/veqryn/slog-context"

	"github.com/hargabyte/cppgen/internal/session"
)

// Server wraps the MCP server with cppgen-specific functionality
type Server struct {
	mcpServer    *server.MCPServer
	session      *session.Session
	tools        map[string]bool
	preview      bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex

	// exec serializes tool calls; generators share the workspace state.
	exec sync.Mutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
	// Preview makes editing tools return diffs without writing files,
	// unless a call passes apply=true.
	Preview bool
	Version string
}

// AllTools lists all available tools
var AllTools = []string{
	"cppgen_symbols",
	"cppgen_undefined",
	"cppgen_add_definition",
	"cppgen_add_definitions",
	"cppgen_add_declaration",
	"cppgen_move_definition",
	"cppgen_accessors",
	"cppgen_operators",
	"cppgen_update_signature",
	"cppgen_switch",
	"cppgen_add_header_guard",
	"cppgen_add_include",
	"cppgen_create_source",
}

// DefaultTools is the default set of tools to expose
var DefaultTools = AllTools

// New creates a new MCP server running the generators of s.
func New(s *session.Session, cfg Config) (*Server, error) {
	version := cfg.Version
	if version == "" {
		version = "1.0.0"
	}
	mcpServer := server.NewMCPServer(
		"cppgen",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	srv := &Server{
		mcpServer:    mcpServer,
		session:      s,
		tools:        make(map[string]bool),
		preview:      cfg.Preview,
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}
	for _, toolName := range toolsToRegister {
		if err := srv.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		srv.tools[toolName] = true
	}

	return srv, nil
}

// registerTool registers a single tool with the MCP server. The tool
// definition is built from its schema.
func (s *Server) registerTool(name string) error {
	schema, ok := toolSchemaRegistry[name]
	if !ok {
		return fmt.Errorf("unknown tool: %s", name)
	}

	opts := []mcp.ToolOption{mcp.WithDescription(schema.Description)}
	for _, p := range schema.Parameters {
		popts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		switch p.Type {
		case "number":
			opts = append(opts, mcp.WithNumber(p.Name, popts...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(p.Name, popts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, popts...))
		}
	}

	s.mcpServer.AddTool(mcp.NewTool(name, opts...), s.handle)
	return nil
}

// handle runs any registered tool.
func (s *Server) handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	result, err := s.CallTool(ctx, req.Params.Name, req.GetArguments())
	if err != nil {
		slogctx.Debug(ctx, "tool failed", "tool", req.Params.Name, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

// ServeStdio serves MCP over stdin/stdout until ctx is done, stdin closes or
// the inactivity timeout passes.
func (s *Server) ServeStdio(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.timeout > 0 {
		go s.timeoutChecker(ctx, cancel)
	}

	stdio := server.NewStdioServer(s.mcpServer)
	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// timeoutChecker cancels the server after the inactivity timeout.
func (s *Server) timeoutChecker(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(min(30*time.Second, s.timeout))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			elapsed := time.Since(s.lastActivity)
			s.mu.RUnlock()

			if elapsed > s.timeout {
				slogctx.Info(ctx, "stopping after inactivity", "timeout", s.timeout)
				cancel()
				return
			}
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the sorted list of registered tools
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	sort.Strings(tools)
	return tools
}

// GetToolSchemas returns schemas for all registered tools, sorted by name.
func (s *Server) GetToolSchemas() []ToolSchema {
	return Schemas(s.ListTools())
}

func toJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
