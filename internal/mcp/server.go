package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/itlog/internal/health"
	"github.com/joescharf/itlog/internal/models"
	"github.com/joescharf/itlog/internal/store"
	"github.com/joescharf/itlog/internal/tracker"
)

// Server wraps the issue tracker and exposes it as MCP tools.
type Server struct {
	tracker *tracker.Tracker
	csv     store.Reader
	json    store.Reader
	scorer  *health.Scorer
	version string
}

// NewServer creates the MCP server wrapper. csv and json are read by the
// health tool to compare the two stores.
func NewServer(t *tracker.Tracker, csv, json store.Reader, version string) *Server {
	return &Server{
		tracker: t,
		csv:     csv,
		json:    json,
		scorer:  health.NewScorer(),
		version: version,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("itlog", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.logIssueTool())
	srv.AddTool(s.listIssuesTool())
	srv.AddTool(s.healthTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

type issueOut struct {
	Datetime    string `json:"datetime"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

func toOut(issue *models.Issue) issueOut {
	return issueOut{
		Datetime:    issue.Datetime,
		Type:        string(issue.Type),
		Description: issue.Description,
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// itlog_log_issue
func (s *Server) logIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("itlog_log_issue",
		mcp.WithDescription("Log a new IT issue to the CSV and JSON stores. Returns the logged issue as JSON."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Issue type: "+models.AllowedTypeNames(", "))),
		mcp.WithString("description", mcp.Required(), mcp.Description("Short description, at least 5 characters")),
	)
	return tool, s.handleLogIssue
}

func (s *Server) handleLogIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	issueType, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: type"), nil
	}
	description, err := request.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: description"), nil
	}

	issue, err := s.tracker.Log(ctx, issueType, description)
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return mcp.NewToolResultError(verr.Message), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log issue: %v", err)), nil
	}
	return jsonResult(toOut(issue))
}

// itlog_list_issues
func (s *Server) listIssuesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("itlog_list_issues",
		mcp.WithDescription("List logged issues, oldest first. Optionally filter by type or by a case-insensitive keyword in the description. Returns a JSON array."),
		mcp.WithString("type", mcp.Description("Filter by issue type: "+models.AllowedTypeNames(", "))),
		mcp.WithString("keyword", mcp.Description("Filter by keyword contained in the description")),
	)
	return tool, s.handleListIssues
}

func (s *Server) handleListIssues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	issueType := request.GetString("type", "")
	keyword := request.GetString("keyword", "")

	var (
		issues []*models.Issue
		err    error
	)
	if issueType != "" {
		issues, err = s.tracker.FilterByType(ctx, issueType)
	} else {
		issues, err = s.tracker.All(ctx)
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return mcp.NewToolResultError(verr.Message), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list issues: %v", err)), nil
	}

	if keyword != "" {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			return mcp.NewToolResultError("Keyword cannot be empty."), nil
		}
		issues = tracker.MatchKeyword(issues, keyword)
	}

	out := make([]issueOut, len(issues))
	for i, issue := range issues {
		out[i] = toOut(issue)
	}
	return jsonResult(out)
}

// itlog_health
func (s *Server) healthTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("itlog_health",
		mcp.WithDescription("Compare the CSV and JSON stores. Returns counts, mismatching positions, invalid rows, and a 0-100 score."),
	)
	return tool, s.handleHealth
}

func (s *Server) handleHealth(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	csvIssues, err := s.csv.ReadAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read csv store: %v", err)), nil
	}
	jsonIssues, err := s.json.ReadAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read json store: %v", err)), nil
	}

	h := s.scorer.Score(csvIssues, jsonIssues)
	return jsonResult(map[string]any{
		"score":      h.Total,
		"in_sync":    h.InSync(),
		"csv_count":  h.CSVCount,
		"json_count": h.JSONCount,
		"mismatches": h.Mismatches,
		"invalid":    h.Invalid,
	})
}
