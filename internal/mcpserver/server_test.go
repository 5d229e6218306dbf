package mcpserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mkaspar/vellum/internal/debounce"
	"github.com/mkaspar/vellum/internal/testutil"
	"github.com/mkaspar/vellum/internal/vault"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	_, provider := testutil.TestVault(t)
	store := vault.NewStore(provider, testutil.DiscardLogger(), 0)
	return New(store, nil)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are exercised directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "update_note":
		result, err = srv.updateNote(ctx, req)
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "delete_note":
		result, err = srv.deleteNote(ctx, req)
	case "restore_note":
		result, err = srv.restoreNote(ctx, req)
	case "toggle_pin":
		result, err = srv.togglePin(ctx, req)
	case "list_deleted":
		result, err = srv.listDeleted(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func createdID(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	text := resultText(r)
	id, ok := strings.CutPrefix(text, "created: ")
	if !ok {
		t.Fatalf("create result = %q", text)
	}
	return id
}

func TestCreateAndReadNote(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{
		"content": "# Hello\n\nworld\n",
	})
	id := createdID(t, r)

	r = callTool(t, srv, "read_note", map[string]interface{}{"id": id})
	if text := resultText(r); !strings.Contains(text, "world") {
		t.Errorf("read result = %q", text)
	}
}

func TestUpdateNote(t *testing.T) {
	srv := testServer(t)
	id := createdID(t, callTool(t, srv, "create_note", map[string]interface{}{}))

	callTool(t, srv, "update_note", map[string]interface{}{
		"id":      id,
		"content": "revised\n",
	})
	r := callTool(t, srv, "read_note", map[string]interface{}{"id": id})
	if text := resultText(r); text != "revised\n" {
		t.Errorf("read result = %q", text)
	}
}

func TestListNotesSortsPinnedFirst(t *testing.T) {
	srv := testServer(t)
	first := createdID(t, callTool(t, srv, "create_note", map[string]interface{}{"content": "# First\n"}))
	second := createdID(t, callTool(t, srv, "create_note", map[string]interface{}{"content": "# Second\n"}))

	callTool(t, srv, "toggle_pin", map[string]interface{}{"id": first})

	r := callTool(t, srv, "list_notes", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "First") || !strings.Contains(text, "Second") {
		t.Fatalf("list = %q", text)
	}
	if strings.Index(text, first) > strings.Index(text, second) {
		t.Errorf("pinned note not listed first:\n%s", text)
	}
}

func TestSearchNotes(t *testing.T) {
	srv := testServer(t)
	id := createdID(t, callTool(t, srv, "create_note", map[string]interface{}{"content": "# Peculiar\n\nneedle here\n"}))
	createdID(t, callTool(t, srv, "create_note", map[string]interface{}{"content": "# Other\n"}))

	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "NEEDLE"})
	text := resultText(r)
	if !strings.Contains(text, id) || strings.Contains(text, "Other") {
		t.Errorf("search = %q", text)
	}
}

func TestDeleteAndRestore(t *testing.T) {
	srv := testServer(t)
	id := createdID(t, callTool(t, srv, "create_note", map[string]interface{}{"content": "keep me\n"}))

	callTool(t, srv, "delete_note", map[string]interface{}{"id": id})

	r := callTool(t, srv, "read_note", map[string]interface{}{"id": id})
	if !r.IsError {
		t.Error("expected error reading trashed note")
	}

	r = callTool(t, srv, "list_deleted", map[string]interface{}{})
	if !strings.Contains(resultText(r), id) {
		t.Errorf("list_deleted = %q", resultText(r))
	}

	callTool(t, srv, "restore_note", map[string]interface{}{"id": id})
	r = callTool(t, srv, "read_note", map[string]interface{}{"id": id})
	if text := resultText(r); text != "keep me\n" {
		t.Errorf("restored content = %q", text)
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestDebouncedUpdatesFlushOnRead(t *testing.T) {
	_, provider := testutil.TestVault(t)
	store := vault.NewStore(provider, testutil.DiscardLogger(), 0)
	writer := debounce.NewWriter(time.Hour, func(id, content string) {
		_ = store.Write(context.Background(), id, content)
	})
	defer writer.Stop()
	srv := New(store, writer)

	id := createdID(t, callTool(t, srv, "create_note", map[string]interface{}{}))

	// A burst of updates stays pending until something reads the note.
	callTool(t, srv, "update_note", map[string]interface{}{"id": id, "content": "v1\n"})
	callTool(t, srv, "update_note", map[string]interface{}{"id": id, "content": "v2\n"})
	if writer.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", writer.Pending())
	}

	r := callTool(t, srv, "read_note", map[string]interface{}{"id": id})
	if text := resultText(r); text != "v2\n" {
		t.Errorf("read after flush = %q, want the last update", text)
	}
	if writer.Pending() != 0 {
		t.Errorf("pending = %d after read", writer.Pending())
	}
}
