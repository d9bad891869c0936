// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes bulletlog tools for LLM integration via stdio transport.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/bulletlog/internal/journal"
	"github.com/starford/bulletlog/internal/logservice"
	"github.com/starford/bulletlog/internal/models"
)

const (
	formatURI   = "bulletlog://format"
	searchLimit = 20
)

// Server wraps the MCP server with bulletlog tools.
type Server struct {
	mcp *server.MCPServer
	svc *logservice.Service
	now func() time.Time
}

// New creates a new MCP server with all bulletlog tools registered.
// now supplies today's date for entries added without one; nil means time.Now.
func New(svc *logservice.Service, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	s := &Server{svc: svc, now: now}

	s.mcp = server.NewMCPServer(
		"bulletlog",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Append a note to the journal under today's date (or the given date)."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Single-line note text")),
		mcp.WithString("date", mcp.Description("Optional date in YYYY-MM-DD form")),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Append an open task to the journal under today's date (or the given date)."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Single-line task text")),
		mcp.WithString("date", mcp.Description("Optional date in YYYY-MM-DD form")),
	), s.addTask)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List open tasks as \"index: text\" lines. "+
			"Indexes are only valid until the journal changes; list again before completing."),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes, most recent date first."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Mark the open task at the given index (from list_tasks) as done."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based index from list_tasks")),
	), s.completeTask)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Full-text search through note and task text."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchEntries)

	s.mcp.AddTool(mcp.NewTool("get_format_contract",
		mcp.WithDescription("Returns the bulletlog journal file format. "+
			"Read this before editing the journal file by hand."),
	), s.getFormatContract)

	// Resource: journal file format.
	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Journal Format",
			mcp.WithResourceDescription("Layout of the bulletlog journal file."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.addEntry(ctx, req, s.svc.AddNote)
}

func (s *Server) addTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.addEntry(ctx, req, s.svc.AddTask)
}

func (s *Server) addEntry(ctx context.Context, req mcp.CallToolRequest,
	add func(context.Context, journal.Date, string) (journal.Entry, error)) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	date := journal.DateOf(s.now())
	if raw := req.GetString("date", ""); raw != "" {
		date, err = journal.ParseDate(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	entry, err := add(ctx, date, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added %s on %s: %s", entry.Kind, date, entry.Text)), nil
}

func (s *Server) listTasks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.svc.Document(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var buf bytes.Buffer
	if err := doc.ListTasks(&buf); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if buf.Len() == 0 {
		return mcp.NewToolResultText("no open tasks"), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) listNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.svc.ListNotes(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}
	out, _ := json.MarshalIndent(models.NewNotes(notes), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) completeTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	task, err := s.svc.CompleteTask(ctx, index, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("completed: %s", task.Text)), nil
}

func (s *Server) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, searchLimit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getFormatContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FormatContract), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     FormatContract,
		},
	}, nil
}
