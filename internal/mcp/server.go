// Package mcp exposes the tool catalog over the Model Context Protocol on
// stdio, so MCP-capable agents can query issue data directly.
package mcp

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"sebot/internal/dispatch"
	"sebot/internal/query"
)

// Briefer provides the schema and briefing resources.
type Briefer interface {
	CollectionSchemas(ctx context.Context) (map[string]query.CollectionSchema, error)
	Briefing(ctx context.Context) (string, error)
}

// MCPServer serves one client over a pair of streams.
type MCPServer struct {
	stdin   io.Reader
	stdout  io.Writer
	scanner *bufio.Scanner
	writeMu sync.Mutex
	logger  *slog.Logger
	version string

	router  *dispatch.Router
	briefer Briefer
}

// NewMCPServer creates a server that answers tool calls with router and
// resource reads with briefer.
func NewMCPServer(version string, router *dispatch.Router, briefer Briefer, logger *slog.Logger) *MCPServer {
	return &MCPServer{
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		logger:  logger,
		version: version,
		router:  router,
		briefer: briefer,
	}
}

// Start processes messages until the input ends or ctx is cancelled.
func (s *MCPServer) Start(ctx context.Context) error {
	s.logger.Info("MCP server starting", "version", s.version)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := s.readMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("MCP server shutting down (EOF)")
				return nil
			}
			var perr *errParse
			if errors.As(err, &perr) {
				s.logger.Warn("Discarding malformed message", "error", err.Error())
				_ = s.writeMessage(NewErrorMessage(nil, ParseError, err.Error(), nil))
				continue
			}
			return err
		}

		if response := s.handleMessage(ctx, msg); response != nil {
			if err := s.writeMessage(response); err != nil {
				s.logger.Error("Error writing response", "error", err.Error())
			}
		}
	}
}

// SetStdin sets the input stream.
func (s *MCPServer) SetStdin(r io.Reader) {
	s.stdin = r
	s.scanner = nil
}

// SetStdout sets the output stream.
func (s *MCPServer) SetStdout(w io.Writer) {
	s.stdout = w
}
