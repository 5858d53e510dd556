package mcp

import (
	"context"
	"fmt"
)

// handleMessage returns the response for msg, or nil for notifications.
func (s *MCPServer) handleMessage(ctx context.Context, msg *MCPMessage) *MCPMessage {
	switch {
	case msg.IsRequest():
		return s.handleRequest(ctx, msg)
	case msg.IsNotification():
		s.handleNotification(msg)
		return nil
	case msg.Id != nil:
		// Responses to server requests; this server sends none.
		s.logger.Debug("Ignoring response", "id", msg.Id)
		return nil
	}
	return NewErrorMessage(nil, InvalidRequest, "Invalid message: not a request or notification", nil)
}

func (s *MCPServer) handleRequest(ctx context.Context, msg *MCPMessage) *MCPMessage {
	s.logger.Debug("Handling request",
		"method", msg.Method,
		"id", msg.Id,
	)

	switch msg.Method {
	case "initialize":
		return NewResultMessage(msg.Id, s.handleInitialize(ctx))
	case "ping":
		return NewResultMessage(msg.Id, struct{}{})
	case "tools/list":
		return NewResultMessage(msg.Id, map[string]interface{}{"tools": Tools()})
	case "tools/call":
		var params callToolParams
		if err := msg.decodeParams(&params); err != nil || params.Name == "" {
			return NewErrorMessage(msg.Id, InvalidParams, "Invalid params: expected {name, arguments}", nil)
		}
		return NewResultMessage(msg.Id, s.handleCallTool(ctx, params))
	case "resources/list":
		return NewResultMessage(msg.Id, map[string]interface{}{"resources": Resources()})
	case "resources/read":
		var params readResourceParams
		if err := msg.decodeParams(&params); err != nil || params.URI == "" {
			return NewErrorMessage(msg.Id, InvalidParams, "Invalid params: expected {uri}", nil)
		}
		contents, err := s.readResource(ctx, params.URI)
		if err != nil {
			return NewErrorMessage(msg.Id, InvalidParams, err.Error(), nil)
		}
		return NewResultMessage(msg.Id, map[string]interface{}{"contents": []ResourceContents{*contents}})
	default:
		return NewErrorMessage(msg.Id, MethodNotFound, fmt.Sprintf("Method not found: %s", msg.Method), nil)
	}
}

func (s *MCPServer) handleNotification(msg *MCPMessage) {
	switch msg.Method {
	case "notifications/initialized":
		s.logger.Info("Client initialized")
	default:
		s.logger.Debug("Unknown notification", "method", msg.Method)
	}
}

func (s *MCPServer) handleInitialize(ctx context.Context) *InitializeResult {
	result := &InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: ServerCapabilities{
			Tools:     &struct{}{},
			Resources: &struct{}{},
		},
		ServerInfo: ServerInfo{
			Name:    "sebot",
			Version: s.version,
		},
	}
	if briefing, err := s.briefer.Briefing(ctx); err == nil {
		result.Instructions = briefing
	} else {
		s.logger.Warn("Briefing unavailable", "error", err.Error())
	}
	return result
}
