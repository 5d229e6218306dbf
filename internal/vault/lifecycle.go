package vault

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/mkaspar/vellum/internal/apperr"
	"github.com/mkaspar/vellum/internal/models"
	"github.com/mkaspar/vellum/internal/record"
)

// Delete moves the note's file into the trash directory. The file keeps its
// name and contents, so the move is fully reversible until Purge claims it.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.RLock()
	filename, ok := s.files[id]
	note := s.notes[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("vault: delete %s: %w", id, apperr.ErrNotFound)
	}

	if err := s.provider.Move(filename, path.Join(TrashDir, filename)); err != nil {
		return fmt.Errorf("vault: delete %s: %w", filename, err)
	}

	s.mu.Lock()
	delete(s.files, id)
	delete(s.notes, id)
	s.trash[id] = filename
	s.deleted[id] = models.DeletedNote{
		ID:                id,
		DeletedAt:         time.Now().UTC(),
		OriginalCreatedAt: note.CreatedAt,
	}
	s.mu.Unlock()

	s.logger.Info("note trashed", slog.String("id", id), slog.String("file", filename))
	return nil
}

// Restore moves a trashed note back into the vault root and returns it. The
// note keeps its original metadata, including its modification time.
func (s *Store) Restore(_ context.Context, id string) (models.Note, error) {
	s.mu.RLock()
	filename, ok := s.trash[id]
	info := s.deleted[id]
	_, live := s.files[id]
	s.mu.RUnlock()
	if !ok {
		return models.Note{}, fmt.Errorf("vault: restore %s: %w", id, apperr.ErrNotFound)
	}
	if live {
		return models.Note{}, fmt.Errorf("vault: restore %s: %w", id, apperr.ErrAlreadyExists)
	}

	if err := s.provider.Move(path.Join(TrashDir, filename), filename); err != nil {
		return models.Note{}, fmt.Errorf("vault: restore %s: %w", filename, err)
	}

	note := s.reloadRestored(id, filename, info)

	s.mu.Lock()
	delete(s.trash, id)
	delete(s.deleted, id)
	s.files[id] = filename
	s.notes[id] = note
	s.mu.Unlock()

	s.logger.Info("note restored", slog.String("id", id), slog.String("file", filename))
	return note, nil
}

// reloadRestored rebuilds the note from its file after the move back. If the
// file somehow lost its header while trashed, a minimal note is synthesized
// from what the trash index remembers.
func (s *Store) reloadRestored(id, filename string, info models.DeletedNote) models.Note {
	data, err := s.provider.Read(filename)
	if err == nil {
		if meta, body := record.Decode(data); meta.ID != "" {
			return noteFromRecord(meta, body)
		}
	}
	s.logger.Warn("restored note unreadable, synthesizing metadata", slog.String("file", filename))
	return models.Note{
		ID:        id,
		CreatedAt: info.OriginalCreatedAt,
		UpdatedAt: time.Now().UTC(),
		PinOrder:  models.UnpinnedOrder,
		Tags:      []string{},
	}
}

// Purge permanently removes trashed notes older than the retention window,
// judged by file modification time. Individual removal failures are logged
// and skipped; the next purge will retry them.
func (s *Store) Purge(_ context.Context) error {
	entries, err := s.provider.List(TrashDir)
	if err != nil {
		return fmt.Errorf("vault: purge: %w", err)
	}

	cutoff := time.Now().Add(-s.retention)
	purged := 0
	for _, e := range entries {
		if !strings.HasSuffix(e.Name, noteExt) || !e.ModTime.Before(cutoff) {
			continue
		}
		if err := s.provider.Delete(path.Join(TrashDir, e.Name)); err != nil {
			s.logger.Warn("purge failed for trashed note", slog.String("file", e.Name), slog.Any("error", err))
			continue
		}
		purged++
		s.forgetTrashed(e.Name)
	}

	if purged > 0 {
		s.logger.Info("purged expired trash", slog.Int("count", purged))
	}
	return nil
}

func (s *Store) forgetTrashed(filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, name := range s.trash {
		if name == filename {
			delete(s.trash, id)
			delete(s.deleted, id)
			return
		}
	}
}

// ChangesSince returns the live note files modified after t, with their raw
// contents. It reads straight from disk, so edits made by external tools are
// visible even before the index catches up.
func (s *Store) ChangesSince(_ context.Context, t time.Time) ([]models.ChangedFile, error) {
	entries, err := s.provider.List("")
	if err != nil {
		return nil, fmt.Errorf("vault: changes: %w", err)
	}

	var changed []models.ChangedFile
	for _, e := range entries {
		if !strings.HasSuffix(e.Name, noteExt) || !e.ModTime.After(t) {
			continue
		}
		data, err := s.provider.Read(e.Name)
		if err != nil {
			s.logger.Warn("skipping unreadable changed file", slog.String("file", e.Name), slog.Any("error", err))
			continue
		}
		changed = append(changed, models.ChangedFile{
			Name:    e.Name,
			Content: string(data),
			ModTime: e.ModTime,
		})
	}
	return changed, nil
}

func sortDeleted(notes []models.DeletedNote) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[j].DeletedAt.Before(notes[i].DeletedAt)
	})
}
