package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hargabyte/erd/internal/config"
	"github.com/hargabyte/erd/internal/mcp"
	"github.com/hargabyte/erd/internal/server"
	"github.com/hargabyte/erd/internal/store"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP backend or MCP server",
	Long: `Run the diagram server.

With --http, serves the editor backend: parse/export/detect endpoints, the
orthogonal routing helper, and the diagram library under /api. With --mcp,
serves the same operations as MCP (Model Context Protocol) tools over stdio
for AI agent integration.

Available MCP Tools:
  erd_parse    Parse a document and return the canonical form
  erd_export   Convert a document to a dialect
  erd_detect   Detect a document's dialect
  erd_library  Manage the diagram library

Examples:
  erd serve --http                         # HTTP API on the configured address
  erd serve --http --addr :9000            # HTTP API on a specific address
  erd serve --mcp                          # MCP server with default tools
  erd serve --mcp --tools parse,detect     # MCP server with specific tools
  erd serve --mcp --timeout 30m            # Auto-stop after 30 idle minutes
  erd serve --status                       # Check if a server is running
  erd serve --stop                         # Stop a running server
  erd serve --list-tools                   # Show available MCP tools`,
	RunE: runServe,
}

var (
	serveHTTP      bool
	serveAddr      string
	serveMCP       bool
	serveTools     string
	serveTimeout   string
	serveStatus    bool
	serveStop      bool
	serveListTools bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveHTTP, "http", false, "Serve the HTTP API")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (default: from config)")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "Start MCP server (stdio transport)")
	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of MCP tools to expose (default: all)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "30m", "MCP inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveStatus, "status", false, "Check if server is running")
	serveCmd.Flags().BoolVar(&serveStop, "stop", false, "Stop running server")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available MCP tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListTools {
		fmt.Println("Available MCP tools:")
		fmt.Println()
		fmt.Println("  erd_parse    Parse a document and return the canonical form")
		fmt.Println("  erd_export   Convert a document to a dialect")
		fmt.Println("  erd_detect   Detect a document's dialect")
		fmt.Println("  erd_library  Manage the diagram library")
		return nil
	}
	if serveStatus {
		return checkServerStatus()
	}
	if serveStop {
		return stopServer()
	}

	switch {
	case serveHTTP && serveMCP:
		return fmt.Errorf("--http and --mcp are mutually exclusive")
	case serveHTTP:
		return runServeHTTP()
	case serveMCP:
		return runServeMCP()
	default:
		return fmt.Errorf("use --http or --mcp to start a server, or --help for usage")
	}
}

func runServeHTTP() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	// The library is optional: without an initialized .erd directory the
	// library endpoints answer 503 and the rest of the API still works.
	var st *store.Store
	if dir, err := config.FindConfigDir("."); err == nil {
		path := cfg.Library.Path
		if path == "" {
			path = filepath.Join(dir, "library.db")
		}
		st, err = store.Open(path)
		if err != nil {
			return fmt.Errorf("open library: %w", err)
		}
		defer st.Close()
	} else {
		log.Warn().Msg("no .erd directory found, library endpoints disabled")
	}

	if err := writePIDFile(); err != nil {
		log.Warn().Err(err).Msg("could not write PID file")
	}
	defer removePIDFile()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("addr", cfg.Server.Addr).Msg("serving HTTP API")
	return server.New(cfg, st, log).Run(ctx)
}

func runServeMCP() error {
	timeout, err := parseDuration(serveTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	var tools []string
	if serveTools != "" {
		for _, t := range strings.Split(serveTools, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				// Allow shorthand (parse -> erd_parse)
				if !strings.HasPrefix(t, "erd_") {
					t = "erd_" + t
				}
				tools = append(tools, t)
			}
		}
	}

	srv, err := mcp.New(mcp.Config{
		Tools:   tools,
		Timeout: timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	if err := writePIDFile(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not write PID file: %v\n", err)
	}
	defer removePIDFile()

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\nerd serve: shutting down\n")
		srv.Close()
		removePIDFile()
		os.Exit(0)
	}()

	// Log startup info to stderr (stdout is for MCP protocol)
	fmt.Fprintf(os.Stderr, "erd serve: starting MCP server\n")
	fmt.Fprintf(os.Stderr, "erd serve: tools: %v\n", srv.ListTools())
	if timeout > 0 {
		fmt.Fprintf(os.Stderr, "erd serve: timeout: %v\n", timeout)
	}

	return srv.ServeStdio()
}

func parseDuration(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func getPIDFilePath() (string, error) {
	erdDir, err := config.FindConfigDir(".")
	if err != nil {
		return "", err
	}
	return filepath.Join(erdDir, "serve.pid"), nil
}

func writePIDFile() error {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return err
	}
	return os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func removePIDFile() {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return
	}
	os.Remove(pidPath)
}

func checkServerStatus() error {
	pidPath, err := getPIDFilePath()
	if err != nil {
		fmt.Println("Status: not running (erd not initialized)")
		return nil
	}

	data, err := os.ReadFile(pidPath)
	if err != nil {
		fmt.Println("Status: not running")
		return nil
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		fmt.Println("Status: not running (invalid PID file)")
		return nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		fmt.Println("Status: not running")
		removePIDFile()
		return nil
	}

	// On Unix, FindProcess always succeeds, so send signal 0 to check
	err = process.Signal(syscall.Signal(0))
	if err != nil {
		fmt.Println("Status: not running (stale PID file)")
		removePIDFile()
		return nil
	}

	fmt.Printf("Status: running (PID %d)\n", pid)
	return nil
}

func stopServer() error {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return fmt.Errorf("erd not initialized")
	}

	data, err := os.ReadFile(pidPath)
	if err != nil {
		fmt.Println("No server running")
		return nil
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		removePIDFile()
		return fmt.Errorf("invalid PID file")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		removePIDFile()
		fmt.Println("No server running")
		return nil
	}

	// Send SIGTERM for graceful shutdown
	err = process.Signal(syscall.SIGTERM)
	if err != nil {
		removePIDFile()
		fmt.Println("Server already stopped")
		return nil
	}

	fmt.Printf("Stopped server (PID %d)\n", pid)
	return nil
}
