// Package mcp exposes the case search and document pipeline as MCP tools
// for agent clients driving the app over standard I/O.
package mcp

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/1Sheikhhamza/case-search-app/internal/config"
	"github.com/1Sheikhhamza/case-search-app/internal/document"
	"github.com/1Sheikhhamza/case-search-app/internal/extract"
	"github.com/1Sheikhhamza/case-search-app/internal/relay"
)

// searchParams are the upstream form fields a search tool call may set.
// They are forwarded verbatim; the upstream ignores fields it does not know.
var searchParams = []string{"case_type_id", "case_no", "year", "petitioner", "respondent"}

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	relay     *relay.Client
	engine    *extract.Engine
	docs      *document.Service
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, relayClient *relay.Client, engine *extract.Engine,
	docs *document.Service,
) (*Server, error) {
	if relayClient == nil || engine == nil || docs == nil {
		return nil, fmt.Errorf("server dependencies cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		relay:     relayClient,
		engine:    engine,
		docs:      docs,
		mcpServer: mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// Register judgment search tool
	judgmentSearchTool := mcp.NewTool(
		"judgment_search",
		mcp.WithDescription("Search the judicial records site and return the judgments found"),
		mcp.WithString("case_type_id",
			mcp.Description("Numeric id of the case type, as enlisted by the upstream site"),
		),
		mcp.WithString("case_no",
			mcp.Description("Case number"),
		),
		mcp.WithString("year",
			mcp.Description("Case year (1900-2099)"),
		),
		mcp.WithString("petitioner",
			mcp.Description("Petitioner name"),
		),
		mcp.WithString("respondent",
			mcp.Description("Respondent name"),
		),
	)
	s.mcpServer.AddTool(judgmentSearchTool, s.handleJudgmentSearch)

	// Register judgment open tool
	judgmentOpenTool := mcp.NewTool(
		"judgment_open",
		mcp.WithDescription("Fetch a judgment PDF, validate it and stamp the provenance footer"),
		mcp.WithString("document_url",
			mcp.Required(),
			mcp.Description("Absolute URL of the judgment PDF, as returned by judgment_search"),
		),
		mcp.WithString("title",
			mcp.Description("Judgment title, used for the download filename"),
		),
	)
	s.mcpServer.AddTool(judgmentOpenTool, s.handleJudgmentOpen)

	// Register judgment download tool
	judgmentDownloadTool := mcp.NewTool(
		"judgment_download",
		mcp.WithDescription("Fetch, validate and stamp a judgment PDF, then save it to a local file"),
		mcp.WithString("document_url",
			mcp.Required(),
			mcp.Description("Absolute URL of the judgment PDF"),
		),
		mcp.WithString("output_dir",
			mcp.Required(),
			mcp.Description("Directory the stamped PDF is written into"),
		),
		mcp.WithString("title",
			mcp.Description("Judgment title, used for the download filename"),
		),
	)
	s.mcpServer.AddTool(judgmentDownloadTool, s.handleJudgmentDownload)
}

// Handler functions
func (s *Server) handleJudgmentSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	params := url.Values{}
	for _, name := range searchParams {
		if v, ok := args[name].(string); ok && v != "" {
			params.Set(name, v)
		}
	}

	markup, err := s.relay.Search(ctx, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.engine.Extract(markup)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatSearchResult(result)), nil
}

func (s *Server) handleJudgmentOpen(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docURL, err := request.RequireString("document_url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title := request.GetString("title", "")

	sess, err := s.docs.OpenDocument(ctx, title, docURL)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Successfully opened judgment: %s\n", sess.SourceURL)
	if sess.Title != "" {
		responseText += fmt.Sprintf("Title: %s\n", sess.Title)
	}
	responseText += fmt.Sprintf("Pages: %d\n", sess.PageCount)
	responseText += fmt.Sprintf("Size: %d bytes\n", len(sess.Buffer))
	responseText += fmt.Sprintf("Download filename: %s\n", sess.DownloadFilename())

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleJudgmentDownload(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	docURL, err := request.RequireString("document_url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outputDir, err := request.RequireString("output_dir")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title := request.GetString("title", "")

	sess, err := s.docs.OpenDocument(ctx, title, docURL)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outPath := filepath.Join(outputDir, sess.DownloadFilename())
	if err := os.WriteFile(outPath, sess.Buffer, 0o600); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write %s: %v", outPath, err)), nil
	}

	responseText := fmt.Sprintf("Saved judgment to %s (%d bytes, %d pages)",
		outPath, len(sess.Buffer), sess.PageCount)
	return mcp.NewToolResultText(responseText), nil
}

// Formatting methods
func (s *Server) formatSearchResult(result *extract.Result) string {
	switch result.Outcome {
	case extract.OutcomeNoResults:
		return "No judgments found matching your criteria."
	case extract.OutcomeNoValidRecords:
		return "No valid records found after filtering."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d judgment(s):\n", len(result.Records))
	for i, record := range result.Records {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, record.Title)
		if record.Parties != "" {
			fmt.Fprintf(&b, "   Parties: %s\n", record.Parties)
		}
		if record.UploadedOn != "" {
			fmt.Fprintf(&b, "   Uploaded on: %s\n", record.UploadedOn)
		}
		if record.FromCourt != "" {
			fmt.Fprintf(&b, "   From: %s\n", record.FromCourt)
		}
		fmt.Fprintf(&b, "   Document: %s\n", record.DocumentURL)
	}
	return b.String()
}

// Run starts the MCP server over standard I/O. HTTP server mode is handled
// by the web package; stdio is the only MCP transport.
func (s *Server) Run(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting case search MCP server in stdio mode")
		log.Printf("Upstream site: %s", s.config.SiteRoot)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
