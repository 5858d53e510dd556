package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"sebot/internal/dispatch"
	"sebot/internal/mcp"
	"sebot/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long: `Start the Model Context Protocol (MCP) server.

The server speaks JSON-RPC 2.0 over stdin/stdout and exposes every catalog
function as a tool, plus two resources:
  - sebot://schema    field names and sampled types per collection
  - sebot://briefing  the agent instructions

Logs go to stderr since stdout carries the protocol.

This command is normally launched by an MCP client, not run by hand.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := newContext()
	defer cancel()

	engine, err := openEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(context.Background()); err != nil {
			logger.Warn("Error closing store", "error", err.Error())
		}
	}()

	server := mcp.NewMCPServer(version.Version, dispatch.NewRouter(engine, logger), engine, logger)
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("MCP server error", "error", err.Error())
		return err
	}
	return nil
}
