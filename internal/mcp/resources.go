package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// InfoResourceURI is the resource carrying artifact header statistics.
const InfoResourceURI = "navindex://info"

func (s *Server) registerResources() {
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        "navigator-info",
			URI:         InfoResourceURI,
			Description: "Header statistics of the served navigator index",
			MIMEType:    "application/json",
		},
		s.handleInfoResource,
	)
}

func (s *Server) handleInfoResource(ctx context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	content, err := s.infoJSON(ctx)
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: InfoResourceURI, MIMEType: "application/json", Text: content},
		},
	}, nil
}

func (s *Server) infoJSON(ctx context.Context) (string, error) {
	a, _, err := s.open(ctx, "resource:info")
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(a.Info(), "", "  ")
	if err != nil {
		return "", MapError(err)
	}
	return string(data), nil
}
