// Sprintline: MCP server for a sprint-based project-management backend.
//
// Exposes the backend's sprints, backlog items, tasks and search as MCP
// tools over stdio, with local input validation, active-sprint
// resolution and a partial-completion journal.
//
// Usage:
//
//	sprintline serve    # Start MCP server (stdio transport)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sprintline/internal/authctx"
	"sprintline/internal/config"
	pmserver "sprintline/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("sprintline v%s\n", pmserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Session == "" {
		log.Warn("SPRINTLINE_SESSION is not set; every tool call will fail with a missing-authentication error")
	}

	s, cleanup, err := pmserver.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Graceful shutdown on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	_ = ctx // stdio server manages its own lifecycle

	log.Info("sprintline serving on stdio",
		zap.String("api_url", cfg.APIURL),
		zap.String("version", pmserver.Version))

	// The session credential is attached per invocation and lives only
	// on that invocation's context.
	return server.ServeStdio(s, server.WithStdioContextFunc(
		func(ctx context.Context) context.Context {
			return authctx.WithCredential(ctx, cfg.Session)
		},
	))
}

// newLogger builds the production logger on stderr. Stdout belongs to
// the MCP stdio transport and must stay clean.
func newLogger() (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{"stderr"}
	logCfg.ErrorOutputPaths = []string{"stderr"}
	logCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return logCfg.Build()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `sprintline — project-management MCP server

Usage:
  sprintline serve      Start the MCP server (stdio transport)
  sprintline version    Print the version
  sprintline help       Show this help

Configuration (environment, SPRINTLINE_ prefix):
  SPRINTLINE_API_URL       Backend base URL (required)
  SPRINTLINE_SESSION       Backend session credential
  SPRINTLINE_TIMEOUT       Per-request timeout (default 30s)
  SPRINTLINE_RETRIES       Read-retry count, 0-10 (default 0)
  SPRINTLINE_JOURNAL_PATH  Operation journal location
`)
}
