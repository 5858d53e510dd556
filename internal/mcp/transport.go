package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// MaxMessageSize is the largest accepted line. Issue pages can be large.
const MaxMessageSize = 4 * 1024 * 1024

// errParse marks a line that was read but is not valid JSON.
type errParse struct {
	err error
}

func (e *errParse) Error() string { return "error parsing JSON-RPC message: " + e.err.Error() }
func (e *errParse) Unwrap() error { return e.err }

// readMessage reads one newline-delimited JSON-RPC message.
func (s *MCPServer) readMessage() (*MCPMessage, error) {
	if s.scanner == nil {
		s.scanner = bufio.NewScanner(s.stdin)
		s.scanner.Buffer(make([]byte, 64*1024), MaxMessageSize)
	}

	for {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, fmt.Errorf("error reading from stdin: %w", err)
			}
			return nil, io.EOF
		}
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		s.logger.Debug("Received message", "raw", string(line))

		var msg MCPMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, &errParse{err: err}
		}
		return &msg, nil
	}
}

// writeMessage writes msg followed by a newline.
func (s *MCPServer) writeMessage(msg *MCPMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("error marshaling JSON-RPC message: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.logger.Debug("Sending message", "raw", string(data))
	if _, err := fmt.Fprintf(s.stdout, "%s\n", data); err != nil {
		return fmt.Errorf("error writing to stdout: %w", err)
	}
	return nil
}
