// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the note vault as tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mkaspar/vellum/internal/debounce"
	"github.com/mkaspar/vellum/internal/models"
	"github.com/mkaspar/vellum/internal/vault"
)

// Server wraps the MCP server with vault tools. When a debounced writer is
// attached, update_note bursts against the same note are coalesced into a
// single disk write; every tool that reads vault state flushes first so
// callers never observe stale content.
type Server struct {
	mcp    *server.MCPServer
	store  *vault.Store
	writer *debounce.Writer
}

// noteSummary is the compact listing shape returned by list_notes.
type noteSummary struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Updated  string   `json:"updated_at"`
	Pinned   bool     `json:"pinned"`
	PinOrder int      `json:"pin_order"`
	Tags     []string `json:"tags,omitempty"`
}

// New creates an MCP server with all vault tools registered. writer may be
// nil, in which case updates are written synchronously.
func New(store *vault.Store, writer *debounce.Writer) *Server {
	s := &Server{store: store, writer: writer}

	s.mcp = server.NewMCPServer(
		"Vellum",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all live notes with their metadata, pinned notes first."),
		mcp.WithString("sort", mcp.Description("Sort order: modified (default), opened, or title")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full markdown content of a note, with attachments inlined as data URLs."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note, optionally with initial markdown content."),
		mcp.WithString("content", mcp.Description("Initial markdown body (empty for a blank note)")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace a note's markdown content."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New markdown body")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Case-insensitive substring search over note bodies and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Move a note to the trash. Trashed notes can be restored until they are purged."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("restore_note",
		mcp.WithDescription("Restore a trashed note back into the vault."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.restoreNote)

	s.mcp.AddTool(mcp.NewTool("toggle_pin",
		mcp.WithDescription("Pin a note to the top of listings, or unpin it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.togglePin)

	s.mcp.AddTool(mcp.NewTool("list_deleted",
		mcp.WithDescription("List trashed notes, most recently deleted first."),
	), s.listDeleted)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout and blocks until EOF.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// Listen serves stdin/stdout until ctx is cancelled.
func (s *Server) Listen(ctx context.Context) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) flush() {
	if s.writer != nil {
		s.writer.Flush()
	}
}

func (s *Server) flushNote(id string) {
	if s.writer != nil {
		s.writer.FlushNote(id)
	}
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	order := models.SortModified
	if v, err := req.RequireString("sort"); err == nil && v != "" {
		order = models.SortOrder(v)
	}

	s.flush()
	notes, err := s.store.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes = vault.SortNotes(notes, order)

	summaries := make([]noteSummary, 0, len(notes))
	for _, n := range notes {
		summaries = append(summaries, summarize(n))
	}
	out, _ := json.MarshalIndent(summaries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.flushNote(id)
	note, err := s.store.Read(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(note.Content), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := s.store.Create(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if content, cerr := req.RequireString("content"); cerr == nil && content != "" {
		if err := s.store.Write(ctx, note.ID, content); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", note.ID)), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.writer != nil {
		s.writer.Update(id, content)
		return mcp.NewToolResultText(fmt.Sprintf("updated: %s", id)), nil
	}
	if err := s.store.Write(ctx, id, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s", id)), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.flush()
	notes, err := s.store.Search(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summaries := make([]noteSummary, 0, len(notes))
	for _, n := range notes {
		summaries = append(summaries, summarize(n))
	}
	out, _ := json.MarshalIndent(summaries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.flushNote(id)
	if err := s.store.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("trashed: %s", id)), nil
}

func (s *Server) restoreNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.store.Restore(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("restored: %s", id)), nil
}

func (s *Server) togglePin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.flushNote(id)
	note, err := s.store.TogglePin(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if note.Pinned {
		return mcp.NewToolResultText(fmt.Sprintf("pinned: %s (order %d)", id, note.PinOrder)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("unpinned: %s", id)), nil
}

func (s *Server) listDeleted(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	trashed := s.store.Deleted(ctx)
	out, _ := json.MarshalIndent(trashed, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func summarize(n models.Note) noteSummary {
	return noteSummary{
		ID:       n.ID,
		Title:    vault.Title(n.Content),
		Updated:  n.UpdatedAt.Format(time.RFC3339),
		Pinned:   n.Pinned,
		PinOrder: n.PinOrder,
		Tags:     n.Tags,
	}
}
