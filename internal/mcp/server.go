// Package mcp provides an MCP (Model Context Protocol) server for erd.
// This allows AI agents to parse, convert, and manage diagrams through MCP
// tools instead of CLI commands.
package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hargabyte/erd/internal/codec"
	"github.com/hargabyte/erd/internal/config"
	"github.com/hargabyte/erd/internal/model"
	"github.com/hargabyte/erd/internal/store"
)

// Server wraps the MCP server with erd-specific functionality
type Server struct {
	mcpServer    *server.MCPServer
	cfg          *config.Config
	store        *store.Store
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
}

// DefaultTools is the default set of tools to expose
var DefaultTools = []string{"erd_parse", "erd_export", "erd_detect", "erd_library"}

// AllTools lists all available tools
var AllTools = []string{"erd_parse", "erd_export", "erd_detect", "erd_library"}

// New creates a new MCP server for erd. The diagram library opens only when a
// .erd directory exists; without it the erd_library tool reports an error per
// call instead of failing startup.
func New(cfg Config) (*Server, error) {
	appCfg, err := config.Load(".")
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var st *store.Store
	if dir, err := config.FindConfigDir("."); err == nil {
		path := appCfg.Library.Path
		if path == "" {
			path = filepath.Join(dir, "library.db")
		}
		st, err = store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open library: %w", err)
		}
	}

	return newServer(appCfg, st, cfg)
}

// newServer wires an already-opened library; split out for tests.
func newServer(appCfg *config.Config, st *store.Store, cfg Config) (*Server, error) {
	mcpServer := server.NewMCPServer(
		"erd",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		cfg:          appCfg,
		store:        st,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			if st != nil {
				st.Close()
			}
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	switch name {
	case "erd_parse":
		return s.registerParseTool()
	case "erd_export":
		return s.registerExportTool()
	case "erd_detect":
		return s.registerDetectTool()
	case "erd_library":
		return s.registerLibraryTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "erd serve: timeout after %v of inactivity\n", s.timeout)
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// Close closes the server and its resources
func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// ListTools returns the list of registered tools
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions in the register*Tool() functions.
var toolSchemaRegistry = map[string]ToolSchema{
	"erd_parse": {
		Name:        "erd_parse",
		Description: "Parse an ER diagram document in any supported XML dialect. Returns the detected format and the canonical standard-dialect XML.",
		Parameters: []ParameterSchema{
			{Name: "xml", Type: "string", Description: "The XML document to parse", Required: true},
		},
	},
	"erd_export": {
		Name:        "erd_export",
		Description: "Convert an ER diagram document to a target XML dialect.",
		Parameters: []ParameterSchema{
			{Name: "xml", Type: "string", Description: "The XML document to convert", Required: true},
			{Name: "format", Type: "string", Description: "Target dialect: standard or legacy (default: standard)"},
		},
	},
	"erd_detect": {
		Name:        "erd_detect",
		Description: "Detect which XML dialect a document is written in.",
		Parameters: []ParameterSchema{
			{Name: "xml", Type: "string", Description: "The XML document to inspect", Required: true},
		},
	},
	"erd_library": {
		Name:        "erd_library",
		Description: "Manage the local diagram library: list, get, save, or delete stored diagrams.",
		Parameters: []ParameterSchema{
			{Name: "action", Type: "string", Description: "One of: list, get, save, delete", Required: true},
			{Name: "id", Type: "string", Description: "Diagram id (get, delete, and optionally save)"},
			{Name: "name", Type: "string", Description: "Diagram name (save)"},
			{Name: "xml", Type: "string", Description: "Diagram document (save)"},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools.
func (s *Server) GetToolSchemas() []ToolSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schemas := make([]ToolSchema, 0, len(s.tools))
	for name := range s.tools {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string or an error.
func (s *Server) CallTool(name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (run 'erd serve --list-tools' to see available tools)", name)
	}

	switch name {
	case "erd_parse":
		xml, _ := args["xml"].(string)
		if xml == "" {
			return "", fmt.Errorf("xml parameter is required")
		}
		return s.executeParse(xml)

	case "erd_export":
		xml, _ := args["xml"].(string)
		if xml == "" {
			return "", fmt.Errorf("xml parameter is required")
		}
		format, _ := args["format"].(string)
		if format == "" {
			format = string(codec.FormatStandard)
		}
		return s.executeExport(xml, format)

	case "erd_detect":
		xml, _ := args["xml"].(string)
		if xml == "" {
			return "", fmt.Errorf("xml parameter is required")
		}
		return s.executeDetect(xml)

	case "erd_library":
		action, _ := args["action"].(string)
		if action == "" {
			return "", fmt.Errorf("action parameter is required")
		}
		id, _ := args["id"].(string)
		diagramName, _ := args["name"].(string)
		xml, _ := args["xml"].(string)
		return s.executeLibrary(action, id, diagramName, xml)

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// registerParseTool registers the erd_parse tool
func (s *Server) registerParseTool() error {
	tool := mcp.NewTool("erd_parse",
		mcp.WithDescription("Parse an ER diagram document in any supported XML dialect. Returns the detected format and the canonical standard-dialect XML."),
		mcp.WithString("xml",
			mcp.Required(),
			mcp.Description("The XML document to parse"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleParse)
	return nil
}

// registerExportTool registers the erd_export tool
func (s *Server) registerExportTool() error {
	tool := mcp.NewTool("erd_export",
		mcp.WithDescription("Convert an ER diagram document to a target XML dialect."),
		mcp.WithString("xml",
			mcp.Required(),
			mcp.Description("The XML document to convert"),
		),
		mcp.WithString("format",
			mcp.Description("Target dialect: standard or legacy (default: standard)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleExport)
	return nil
}

// registerDetectTool registers the erd_detect tool
func (s *Server) registerDetectTool() error {
	tool := mcp.NewTool("erd_detect",
		mcp.WithDescription("Detect which XML dialect a document is written in."),
		mcp.WithString("xml",
			mcp.Required(),
			mcp.Description("The XML document to inspect"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleDetect)
	return nil
}

// registerLibraryTool registers the erd_library tool
func (s *Server) registerLibraryTool() error {
	tool := mcp.NewTool("erd_library",
		mcp.WithDescription("Manage the local diagram library: list, get, save, or delete stored diagrams."),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("One of: list, get, save, delete"),
		),
		mcp.WithString("id",
			mcp.Description("Diagram id (get, delete, and optionally save)"),
		),
		mcp.WithString("name",
			mcp.Description("Diagram name (save)"),
		),
		mcp.WithString("xml",
			mcp.Description("Diagram document (save)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleLibrary)
	return nil
}

// Tool handlers

func (s *Server) handleParse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	xml, ok := args["xml"].(string)
	if !ok || xml == "" {
		return mcp.NewToolResultError("xml parameter is required"), nil
	}

	result, err := s.executeParse(xml)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	xml, ok := args["xml"].(string)
	if !ok || xml == "" {
		return mcp.NewToolResultError("xml parameter is required"), nil
	}

	format, _ := args["format"].(string)
	if format == "" {
		format = string(codec.FormatStandard)
	}

	result, err := s.executeExport(xml, format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleDetect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	xml, ok := args["xml"].(string)
	if !ok || xml == "" {
		return mcp.NewToolResultError("xml parameter is required"), nil
	}

	result, err := s.executeDetect(xml)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleLibrary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	action, ok := args["action"].(string)
	if !ok || action == "" {
		return mcp.NewToolResultError("action parameter is required"), nil
	}

	id, _ := args["id"].(string)
	name, _ := args["name"].(string)
	xml, _ := args["xml"].(string)

	result, err := s.executeLibrary(action, id, name, xml)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

// Execution functions (implementations)

func (s *Server) executeParse(text string) (string, error) {
	format, err := codec.Detect(text)
	if err != nil {
		return "", err
	}
	d, err := codec.ParseWithOptions(text, s.cfg.CodecOptions())
	if err != nil {
		return "", err
	}
	out, err := codec.Encode(d, codec.FormatStandard)
	if err != nil {
		return "", err
	}

	return toJSON(map[string]interface{}{
		"format": string(format),
		"xml":    out,
		"summary": map[string]interface{}{
			"entities":      len(d.Entities),
			"relationships": len(d.Relationships),
			"attributes":    len(d.Attributes),
			"connections":   len(d.Connections),
		},
	})
}

func (s *Server) executeExport(text, format string) (string, error) {
	d, err := codec.ParseWithOptions(text, s.cfg.CodecOptions())
	if err != nil {
		return "", err
	}
	out, err := codec.Encode(d, codec.Format(format))
	if err != nil {
		return "", err
	}

	return toJSON(map[string]interface{}{
		"format": format,
		"xml":    out,
	})
}

func (s *Server) executeDetect(text string) (string, error) {
	format, err := codec.Detect(text)
	if err != nil {
		return "", err
	}
	return toJSON(map[string]interface{}{"format": string(format)})
}

func (s *Server) executeLibrary(action, id, name, text string) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("library not available: run 'erd init' first")
	}

	switch action {
	case "list":
		entries, err := s.store.ListDiagrams()
		if err != nil {
			return "", fmt.Errorf("list diagrams: %w", err)
		}
		results := make([]map[string]interface{}, 0, len(entries))
		for _, e := range entries {
			results = append(results, map[string]interface{}{
				"id":        e.ID,
				"name":      e.Name,
				"updatedAt": e.UpdatedAt.Format(time.RFC3339),
			})
		}
		return toJSON(map[string]interface{}{
			"count":    len(results),
			"diagrams": results,
		})

	case "get":
		if id == "" {
			return "", fmt.Errorf("id parameter is required for get")
		}
		entry, err := s.store.LoadDiagram(id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", fmt.Errorf("diagram not found: %s", id)
			}
			return "", err
		}
		return toJSON(map[string]interface{}{
			"id":   entry.ID,
			"name": entry.Name,
			"xml":  entry.Content,
		})

	case "save":
		if name == "" {
			return "", fmt.Errorf("name parameter is required for save")
		}
		if text == "" {
			return "", fmt.Errorf("xml parameter is required for save")
		}
		d, err := codec.ParseWithOptions(text, s.cfg.CodecOptions())
		if err != nil {
			return "", err
		}
		canonical, err := codec.Encode(d, codec.FormatStandard)
		if err != nil {
			return "", err
		}
		id = model.EnsureID(id)
		if err := s.store.SaveDiagram(id, name, canonical); err != nil {
			return "", err
		}
		return toJSON(map[string]interface{}{"id": id, "name": name, "saved": true})

	case "delete":
		if id == "" {
			return "", fmt.Errorf("id parameter is required for delete")
		}
		if err := s.store.DeleteDiagram(id); err != nil {
			return "", err
		}
		return toJSON(map[string]interface{}{"id": id, "deleted": true})

	default:
		return "", fmt.Errorf("unknown action: %s (expected list, get, save, or delete)", action)
	}
}

// Helper functions

func toJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
