package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/abdulehsan/Jarvis/internal/logging"
	"github.com/abdulehsan/Jarvis/internal/resources"
)

func newServeCmd() *cobra.Command {
	var yolo bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server over standard input/output,
exposing the Calendar, Gmail, Tasks, Keep and date tools to another AI
assistant. Credentials are the ones enrolled with 'jarvis accounts add'.

Safety Mode:
  By default, the server operates in read-only mode, providing only safe operations.
  Use --yolo to enable destructive operations (sending email, deleting events,
  tasks and notes, trashing messages).

All logs are written to stderr; stdout carries the protocol only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(yolo)
		},
	}

	cmd.Flags().BoolVar(&yolo, "yolo", false, "Enable destructive operations (default: read-only mode)")

	return cmd
}

func runServe(yolo bool) error {
	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	mcpSrv := mcpserver.NewMCPServer("jarvis", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithRecovery(),
	)

	readOnly := !yolo
	if err := registerAllTools(mcpSrv, a.sc, readOnly); err != nil {
		return err
	}
	if err := resources.RegisterAccountResources(mcpSrv, a.sc); err != nil {
		return fmt.Errorf("failed to register account resources: %w", err)
	}
	a.logger.Info("starting MCP server on stdio", "read_only", readOnly)

	return runStdioServer(ctx, mcpSrv, a)
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, a *app) error {
	stdio := mcpserver.NewStdioServer(mcpSrv)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		a.logger.Error("MCP server stopped", logging.Err(err))
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
