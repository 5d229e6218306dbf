// Package storage defines the vault file-system abstraction.
package storage

import "time"

// Entry is one file in a directory listing.
type Entry struct {
	Name    string
	ModTime time.Time
}

// Provider is the interface for vault file operations. All paths are
// relative to the vault root. Implementations must reject paths that
// escape the root.
type Provider interface {
	// List returns name and modification time for every regular file
	// directly inside dir (subdirectories are not descended into).
	List(dir string) ([]Entry, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath, creating the target directory.
	Move(oldPath, newPath string) error
	// MkdirAll creates dir (and parents) under the root.
	MkdirAll(dir string) error
}
