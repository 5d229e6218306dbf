package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempVault(t)
	content := []byte("---\nid: x\n---\n\nHello\n")
	if err := s.Write("note.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempVault(t)
	if err := s.Write("attachments/ab-1.png", []byte("bytes")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("attachments/ab-1.png")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "bytes" {
		t.Errorf("content = %q", got)
	}
}

func TestListIsShallow(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("b.md", []byte("b"))
	_ = s.Write("_deleted/c.md", []byte("c"))
	_ = s.Write("attachments/d.png", []byte("d"))

	entries, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("len = %d, want 2 (subdirectories must not be descended)", len(entries))
	}
	for _, e := range entries {
		if e.ModTime.IsZero() {
			t.Errorf("entry %q has zero mtime", e.Name)
		}
	}

	trash, err := s.List("_deleted")
	if err != nil {
		t.Fatalf("List trash: %v", err)
	}
	if len(trash) != 1 || trash[0].Name != "c.md" {
		t.Errorf("trash = %+v", trash)
	}
}

func TestDelete(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("del.md", []byte("bye"))
	if err := s.Delete("del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.md"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestMoveToTrashAndBack(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("note.md", []byte("data"))
	if err := s.Move("note.md", "_deleted/note.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := s.Read("note.md"); err == nil {
		t.Error("old path should not exist")
	}
	if err := s.Move("_deleted/note.md", "note.md"); err != nil {
		t.Fatalf("Move back: %v", err)
	}
	got, err := s.Read("note.md")
	if err != nil {
		t.Fatalf("Read after restore: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVault(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("atomic.md", []byte("original"))
	if err := s.Write("atomic.md", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, ".vellum-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/vellum-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "vellum-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
