package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/drawsync/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for drawsync resources.
	uriScheme = "drawsync://"

	latestURI = uriScheme + "draws/latest"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         latestURI,
		Name:        "latest-draw",
		Description: "The most recent stored draw",
		MIMEType:    "application/json",
	}, s.handleLatestResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "draws/{issue}",
		Name:        "draw",
		Description: "A stored draw by issue number",
		MIMEType:    "application/json",
	}, s.handleDrawResource)
}

// handleLatestResource returns the newest draw.
func (s *Server) handleLatestResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	draw, err := s.ports.Draws.Latest(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest draw: %w", err)
	}
	return drawResult(req.Params.URI, *draw)
}

// handleDrawResource returns one draw by issue.
func (s *Server) handleDrawResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	issue := extractIssue(req.Params.URI)
	if issue == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if issue == "latest" {
		return s.handleLatestResource(ctx, req)
	}

	draw, err := s.ports.Draws.Get(ctx, issue)
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading draw %s: %w", issue, err)
	}
	return drawResult(req.Params.URI, *draw)
}

func drawResult(uri string, draw domain.DrawRecord) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(toDrawOutput(draw), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling draw: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractIssue extracts the issue from a URI like drawsync://draws/{issue}.
func extractIssue(uri string) string {
	const prefix = uriScheme + "draws/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	issue := strings.TrimPrefix(uri, prefix)
	if strings.Contains(issue, "/") {
		return ""
	}
	return issue
}

func formatBall(n int) string {
	return fmt.Sprintf("%02d", n)
}
