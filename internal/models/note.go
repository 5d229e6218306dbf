// Package models defines the domain types for Vellum.
package models

import "time"

// Note represents a live note in the vault. Content holds the markup body
// with relative attachment paths; resolved (base64-inlined) bodies are only
// produced by the store's Read path for the active editor.
type Note struct {
	ID           string     `json:"id"`
	Content      string     `json:"content"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastOpenedAt *time.Time `json:"last_opened_at,omitempty"`
	Pinned       bool       `json:"pinned"`
	PinOrder     int        `json:"pin_order"`
	Tags         []string   `json:"tags"`
}

// DeletedNote is a trashed note. The body is not kept in memory; it is
// re-read from the trash file on restore.
type DeletedNote struct {
	ID                string    `json:"id"`
	DeletedAt         time.Time `json:"deleted_at"`
	OriginalCreatedAt time.Time `json:"original_created_at"`
}

// ChangedFile is a vault file modified after a given instant, as returned
// by the reconciliation scan.
type ChangedFile struct {
	Name    string    `json:"name"`
	Content string    `json:"-"`
	ModTime time.Time `json:"mtime"`
}

// SortOrder selects a note list ordering.
type SortOrder string

const (
	SortModified SortOrder = "modified"
	SortOpened   SortOrder = "opened"
	SortTitle    SortOrder = "title"
)

// UnpinnedOrder is the pin_order sentinel for notes that are not pinned.
const UnpinnedOrder = -1
