package mcp

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	schemaURI   = "sebot://schema"
	briefingURI = "sebot://briefing"
)

// Resource is a static MCP resource.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType"`
}

// Resources lists the resources the server can read.
func Resources() []Resource {
	return []Resource{
		{
			URI:         schemaURI,
			Name:        "Collection schema",
			Description: "Field names and sampled types of every collection",
			MimeType:    "application/json",
		},
		{
			URI:         briefingURI,
			Name:        "Agent briefing",
			Description: "Instructions describing the database and supported questions",
			MimeType:    "text/plain",
		},
	}
}

func (s *MCPServer) readResource(ctx context.Context, uri string) (*ResourceContents, error) {
	s.logger.Info("Reading resource", "uri", uri)

	switch uri {
	case schemaURI:
		schemas, err := s.briefer.CollectionSchemas(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.MarshalIndent(schemas, "", "  ")
		if err != nil {
			return nil, err
		}
		return &ResourceContents{URI: uri, MimeType: "application/json", Text: string(data)}, nil
	case briefingURI:
		text, err := s.briefer.Briefing(ctx)
		if err != nil {
			return nil, err
		}
		return &ResourceContents{URI: uri, MimeType: "text/plain", Text: text}, nil
	}
	return nil, fmt.Errorf("unknown resource: %s", uri)
}
