package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/drawsync/internal/core/domain"
)

// DrawOutput is a single draw as returned by tools.
type DrawOutput struct {
	Issue     string `json:"issue"`
	OpenTime  string `json:"open_time"`
	Week      string `json:"week,omitempty"`
	RedBalls  []int  `json:"red_balls"`
	BlueBall  int    `json:"blue_ball"`
	Formatted string `json:"formatted"`
}

// LatestDrawInput is the (empty) input schema for the latest_draw tool.
type LatestDrawInput struct{}

// GetDrawInput is the input schema for the get_draw tool.
type GetDrawInput struct {
	Issue string `json:"issue" jsonschema:"issue number, e.g. 2024030"`
}

// DrawRangeInput is the input schema for the draw_range tool.
type DrawRangeInput struct {
	StartIssue string `json:"start_issue" jsonschema:"first issue number, inclusive"`
	EndIssue   string `json:"end_issue" jsonschema:"last issue number, inclusive"`
}

// DrawRangeOutput is the output schema for the draw_range tool.
type DrawRangeOutput struct {
	Draws []DrawOutput `json:"draws"`
	Count int          `json:"count"`
}

// SyncInput is the (empty) input schema for the sync_draws tool.
type SyncInput struct{}

// SyncOutput is the output schema for the sync_draws tool.
type SyncOutput struct {
	RunID        string `json:"run_id"`
	KnownMax     int64  `json:"known_max"`
	PagesFetched int    `json:"pages_fetched"`
	Inserted     int    `json:"inserted"`
	Skipped      int    `json:"skipped"`
	Failed       int    `json:"failed"`
	StopReason   string `json:"stop_reason"`
	LastError    string `json:"last_error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "latest_draw",
		Description: "Return the most recent stored lottery draw",
	}, s.handleLatestDraw)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_draw",
		Description: "Return the stored draw for one issue number",
	}, s.handleGetDraw)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "draw_range",
		Description: "Return stored draws between two issue numbers, oldest first",
	}, s.handleDrawRange)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_draws",
		Description: "Fetch draws newer than the latest stored one from the remote source",
	}, s.handleSync)
}

func (s *Server) handleLatestDraw(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ LatestDrawInput,
) (*mcp.CallToolResult, DrawOutput, error) {
	draw, err := s.ports.Draws.Latest(ctx)
	if err != nil {
		return nil, DrawOutput{}, err
	}
	return nil, toDrawOutput(*draw), nil
}

func (s *Server) handleGetDraw(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDrawInput,
) (*mcp.CallToolResult, DrawOutput, error) {
	draw, err := s.ports.Draws.Get(ctx, input.Issue)
	if err != nil {
		return nil, DrawOutput{}, err
	}
	return nil, toDrawOutput(*draw), nil
}

func (s *Server) handleDrawRange(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DrawRangeInput,
) (*mcp.CallToolResult, DrawRangeOutput, error) {
	draws, err := s.ports.Draws.Range(ctx, input.StartIssue, input.EndIssue)
	if err != nil {
		return nil, DrawRangeOutput{}, err
	}

	output := DrawRangeOutput{
		Draws: make([]DrawOutput, len(draws)),
		Count: len(draws),
	}
	for i := range draws {
		output.Draws[i] = toDrawOutput(draws[i])
	}
	return nil, output, nil
}

func (s *Server) handleSync(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ SyncInput,
) (*mcp.CallToolResult, SyncOutput, error) {
	if s.ports.Sync == nil {
		return nil, SyncOutput{}, ErrSyncUnavailable
	}

	report, err := s.ports.Sync.Sync(ctx)
	if err != nil {
		return nil, SyncOutput{}, err
	}

	return nil, SyncOutput{
		RunID:        report.RunID,
		KnownMax:     report.KnownMax,
		PagesFetched: report.PagesFetched,
		Inserted:     report.Inserted,
		Skipped:      report.Skipped,
		Failed:       report.Failed,
		StopReason:   report.StopReason.String(),
		LastError:    report.LastError,
	}, nil
}

func toDrawOutput(d domain.DrawRecord) DrawOutput {
	return DrawOutput{
		Issue:     d.IssueLabel,
		OpenTime:  d.DrawTimestamp,
		Week:      d.WeekdayLabel,
		RedBalls:  append([]int(nil), d.PrimaryNumbers[:]...),
		BlueBall:  d.SecondaryNumber,
		Formatted: d.PrimaryString() + " + " + formatBall(d.SecondaryNumber),
	}
}
