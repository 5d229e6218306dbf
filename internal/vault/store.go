package vault

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkaspar/vellum/internal/apperr"
	"github.com/mkaspar/vellum/internal/attachment"
	"github.com/mkaspar/vellum/internal/models"
	"github.com/mkaspar/vellum/internal/record"
	"github.com/mkaspar/vellum/internal/storage"
)

// DefaultRetention is how long trashed notes survive before Purge removes
// them for good.
const DefaultRetention = 30 * 24 * time.Hour

// Store is the vault record store: one markdown file per live note in the
// vault root, trashed notes under _deleted/, binary attachments under
// attachments/. It keeps an in-memory index of note metadata that is rebuilt
// by List and kept current by every mutating operation.
//
// The index tolerates concurrent readers; mutating operations on the same
// note id must be serialized by the caller (the debounced writer does this
// for body updates).
type Store struct {
	provider  storage.Provider
	logger    *slog.Logger
	retention time.Duration

	mu      sync.RWMutex
	files   map[string]string           // live note id -> filename
	notes   map[string]models.Note      // live note id -> metadata + body
	trash   map[string]string           // trashed note id -> filename
	deleted map[string]models.DeletedNote
}

// NewStore creates a Store over the given provider. A non-positive retention
// selects DefaultRetention.
func NewStore(provider storage.Provider, logger *slog.Logger, retention time.Duration) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{
		provider:  provider,
		logger:    logger,
		retention: retention,
		files:     make(map[string]string),
		notes:     make(map[string]models.Note),
		trash:     make(map[string]string),
		deleted:   make(map[string]models.DeletedNote),
	}
}

// List rescans the vault root and trash directory, rebuilds the index, and
// returns all live notes. Files without a parseable header or with an empty
// id are skipped with a warning rather than failing the whole listing; if an
// id somehow appears in two files, the first one scanned wins.
func (s *Store) List(_ context.Context) ([]models.Note, error) {
	entries, err := s.provider.List("")
	if err != nil {
		return nil, fmt.Errorf("vault: list: %w", err)
	}

	files := make(map[string]string)
	notesByID := make(map[string]models.Note)
	notes := make([]models.Note, 0, len(entries))

	for _, e := range entries {
		if !strings.HasSuffix(e.Name, noteExt) {
			continue
		}
		data, err := s.provider.Read(e.Name)
		if err != nil {
			s.logger.Warn("skipping unreadable note file", slog.String("file", e.Name), slog.Any("error", err))
			continue
		}
		meta, body := record.Decode(data)
		if meta.ID == "" {
			s.logger.Warn("skipping note file without id", slog.String("file", e.Name))
			continue
		}
		if prev, dup := files[meta.ID]; dup {
			s.logger.Warn("skipping duplicate note id",
				slog.String("id", meta.ID), slog.String("file", e.Name), slog.String("kept", prev))
			continue
		}
		n := noteFromRecord(meta, body)
		files[meta.ID] = e.Name
		notesByID[meta.ID] = n
		notes = append(notes, n)
	}

	trash, deleted := s.scanTrash()

	s.mu.Lock()
	s.files = files
	s.notes = notesByID
	s.trash = trash
	s.deleted = deleted
	s.mu.Unlock()

	return notes, nil
}

func (s *Store) scanTrash() (map[string]string, map[string]models.DeletedNote) {
	trash := make(map[string]string)
	deleted := make(map[string]models.DeletedNote)

	entries, err := s.provider.List(TrashDir)
	if err != nil {
		// Missing trash dir just means nothing was ever deleted.
		return trash, deleted
	}
	for _, e := range entries {
		if !strings.HasSuffix(e.Name, noteExt) {
			continue
		}
		data, err := s.provider.Read(path.Join(TrashDir, e.Name))
		if err != nil {
			s.logger.Warn("skipping unreadable trashed note", slog.String("file", e.Name), slog.Any("error", err))
			continue
		}
		meta, _ := record.Decode(data)
		if meta.ID == "" {
			s.logger.Warn("skipping trashed note without id", slog.String("file", e.Name))
			continue
		}
		trash[meta.ID] = e.Name
		deleted[meta.ID] = models.DeletedNote{
			ID:                meta.ID,
			DeletedAt:         e.ModTime,
			OriginalCreatedAt: meta.CreatedAt,
		}
	}
	return trash, deleted
}

// Create writes a new empty note and returns it.
func (s *Store) Create(_ context.Context) (models.Note, error) {
	now := time.Now().UTC()
	note := models.Note{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		PinOrder:  models.UnpinnedOrder,
		Tags:      []string{},
	}
	filename := Filename("", note.ID)
	if err := s.provider.Write(filename, record.Encode(metaFromNote(note), "")); err != nil {
		return models.Note{}, fmt.Errorf("vault: create: %w", err)
	}

	s.mu.Lock()
	s.files[note.ID] = filename
	s.notes[note.ID] = note
	s.mu.Unlock()

	s.logger.Info("note created", slog.String("id", note.ID), slog.String("file", filename))
	return note, nil
}

// Read returns the note with all attachment references inlined back to data
// URLs. It is the only path that performs inlining; everything else works on
// the stored, reference-only body.
func (s *Store) Read(_ context.Context, id string) (models.Note, error) {
	s.mu.RLock()
	filename, ok := s.files[id]
	s.mu.RUnlock()
	if !ok {
		return models.Note{}, fmt.Errorf("vault: read %s: %w", id, apperr.ErrNotFound)
	}

	data, err := s.provider.Read(filename)
	if err != nil {
		return models.Note{}, fmt.Errorf("vault: read %s: %w", filename, err)
	}
	meta, body := record.Decode(data)
	if meta.ID == "" {
		return models.Note{}, fmt.Errorf("vault: read %s: %w", filename, apperr.ErrMalformed)
	}

	note := noteFromRecord(meta, attachment.Inline(body, s.readAttachment))
	return note, nil
}

func (s *Store) readAttachment(rel string) ([]byte, error) {
	return s.provider.Read(rel)
}

// Write replaces the note's body. Inline data-URL images are extracted to
// the attachments directory first, so the stored body only ever holds
// references; the in-memory index is updated only after every file write
// succeeded.
func (s *Store) Write(_ context.Context, id, content string) error {
	s.mu.RLock()
	filename, ok := s.files[id]
	note := s.notes[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("vault: write %s: %w", id, apperr.ErrNotFound)
	}

	cleaned, attachments := attachment.Extract(content, shortID(id))
	for _, a := range attachments {
		if err := s.provider.Write(a.Path, a.Data); err != nil {
			return fmt.Errorf("vault: write attachment %s: %w", a.Path, err)
		}
	}

	note.Content = cleaned
	note.UpdatedAt = time.Now().UTC()
	if err := s.provider.Write(filename, record.Encode(metaFromNote(note), cleaned)); err != nil {
		return fmt.Errorf("vault: write %s: %w", filename, err)
	}

	s.mu.Lock()
	s.notes[id] = note
	s.mu.Unlock()
	return nil
}

// UpdateTags replaces the note's tag list without touching its modification
// time, so retagging does not reshuffle the recently-modified order.
func (s *Store) UpdateTags(_ context.Context, id string, tags []string) error {
	update := func(n *models.Note) {
		n.Tags = append([]string(nil), tags...)
	}
	return s.rewriteMeta(id, update)
}

// TouchOpened records that the note was just opened.
func (s *Store) TouchOpened(_ context.Context, id string) error {
	now := time.Now().UTC()
	return s.rewriteMeta(id, func(n *models.Note) {
		n.LastOpenedAt = &now
	})
}

// TogglePin flips the note's pinned state. A newly pinned note goes to the
// end of the pinned section; unpinning resets its pin order.
func (s *Store) TogglePin(_ context.Context, id string) (models.Note, error) {
	s.mu.RLock()
	_, ok := s.files[id]
	maxOrder := models.UnpinnedOrder
	if ok {
		for _, n := range s.notes {
			if n.Pinned && n.PinOrder > maxOrder {
				maxOrder = n.PinOrder
			}
		}
	}
	s.mu.RUnlock()
	if !ok {
		return models.Note{}, fmt.Errorf("vault: toggle pin %s: %w", id, apperr.ErrNotFound)
	}

	var updated models.Note
	err := s.rewriteMeta(id, func(n *models.Note) {
		if n.Pinned {
			n.Pinned = false
			n.PinOrder = models.UnpinnedOrder
		} else {
			n.Pinned = true
			n.PinOrder = maxOrder + 1
		}
		updated = *n
	})
	if err != nil {
		return models.Note{}, err
	}
	return updated, nil
}

// Duplicate copies a note into a brand-new one: fresh id, fresh timestamps,
// same body and tags, never pinned. Attachments are re-extracted under the
// new note's id so the copies do not share files with the original.
func (s *Store) Duplicate(ctx context.Context, id string) (models.Note, error) {
	src, err := s.Read(ctx, id)
	if err != nil {
		return models.Note{}, err
	}

	now := time.Now().UTC()
	note := models.Note{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		PinOrder:  models.UnpinnedOrder,
		Tags:      append([]string(nil), src.Tags...),
	}

	cleaned, attachments := attachment.Extract(src.Content, shortID(note.ID))
	for _, a := range attachments {
		if err := s.provider.Write(a.Path, a.Data); err != nil {
			return models.Note{}, fmt.Errorf("vault: duplicate %s: %w", id, err)
		}
	}
	note.Content = cleaned

	filename := Filename(cleaned, note.ID)
	if err := s.provider.Write(filename, record.Encode(metaFromNote(note), cleaned)); err != nil {
		return models.Note{}, fmt.Errorf("vault: duplicate %s: %w", id, err)
	}

	s.mu.Lock()
	s.files[note.ID] = filename
	s.notes[note.ID] = note
	s.mu.Unlock()

	s.logger.Info("note duplicated", slog.String("source", id), slog.String("id", note.ID))
	return note, nil
}

// Search returns live notes whose body or title contains the query,
// case-insensitively. An empty query returns everything, freshly rescanned.
func (s *Store) Search(ctx context.Context, query string) ([]models.Note, error) {
	notes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return notes, nil
	}

	matched := notes[:0]
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Content), query) ||
			strings.Contains(strings.ToLower(Title(n.Content)), query) {
			matched = append(matched, n)
		}
	}
	return matched, nil
}

// Deleted returns the trashed notes known to the index, most recently
// deleted first.
func (s *Store) Deleted(_ context.Context) []models.DeletedNote {
	s.mu.RLock()
	out := make([]models.DeletedNote, 0, len(s.deleted))
	for _, d := range s.deleted {
		out = append(out, d)
	}
	s.mu.RUnlock()

	sortDeleted(out)
	return out
}

// rewriteMeta applies update to the cached note, rewrites its file with the
// existing body, and commits the change to the index only after the write
// succeeded.
func (s *Store) rewriteMeta(id string, update func(*models.Note)) error {
	s.mu.RLock()
	filename, ok := s.files[id]
	note := s.notes[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("vault: update %s: %w", id, apperr.ErrNotFound)
	}

	update(&note)
	if err := s.provider.Write(filename, record.Encode(metaFromNote(note), note.Content)); err != nil {
		return fmt.Errorf("vault: update %s: %w", filename, err)
	}

	s.mu.Lock()
	s.notes[id] = note
	s.mu.Unlock()
	return nil
}

func noteFromRecord(meta record.Metadata, body string) models.Note {
	return models.Note{
		ID:           meta.ID,
		Content:      body,
		CreatedAt:    meta.CreatedAt,
		UpdatedAt:    meta.UpdatedAt,
		LastOpenedAt: meta.LastOpenedAt,
		Pinned:       meta.Pinned,
		PinOrder:     meta.PinOrder,
		Tags:         meta.Tags,
	}
}

func metaFromNote(n models.Note) record.Metadata {
	return record.Metadata{
		ID:           n.ID,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
		LastOpenedAt: n.LastOpenedAt,
		Tags:         n.Tags,
		Pinned:       n.Pinned,
		PinOrder:     n.PinOrder,
	}
}
