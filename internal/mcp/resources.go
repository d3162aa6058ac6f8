// ABOUTME: MCP resources exposing each child's dashboard as markdown.
// ABOUTME: Allows AI agents to read a dashboard via the tigercub:// URI scheme.

package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/tigercub/internal/ui"
)

const childURIPrefix = "tigercub://child/"

func (s *Server) registerResources() {
	// The SDK handles listing based on the template
	s.server.AddResourceTemplate(
		&mcp.ResourceTemplate{
			URITemplate: childURIPrefix + "{id}",
			Name:        "Child dashboard",
			Description: "A child's profile, goal progress, favorites, and notes",
			MIMEType:    "text/markdown",
		},
		s.handleReadResource,
	)
}

func (s *Server) handleReadResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id, ok := strings.CutPrefix(req.Params.URI, childURIPrefix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return nil, fmt.Errorf("invalid resource URI: %s", req.Params.URI)
	}

	state, err := s.dashboard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: "text/markdown",
				Text:     ui.DashboardMarkdown(state),
			},
		},
	}, nil
}
