package mcp

import (
	"context"

	"sebot/internal/dispatch"
)

// Tool is an MCP tool declaration.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Tools converts the dispatch catalog into MCP tool declarations.
func Tools() []Tool {
	catalog := dispatch.Catalog()
	tools := make([]Tool, 0, len(catalog))
	for _, f := range catalog {
		tools = append(tools, Tool{
			Name:        f.Name,
			Description: f.Description,
			InputSchema: f.Parameters,
		})
	}
	return tools
}

// handleCallTool routes a tool call. Operation failures, unknown tools
// included, are tool results with isError set rather than protocol errors.
func (s *MCPServer) handleCallTool(ctx context.Context, params callToolParams) *CallToolResult {
	result := s.router.Call(ctx, params.Name, params.Arguments)
	return &CallToolResult{
		Content: []TextContent{{Type: "text", Text: dispatch.Encode(result)}},
		IsError: dispatch.IsError(result),
	}
}
