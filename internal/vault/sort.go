package vault

import (
	"sort"
	"strings"
	"time"

	"github.com/mkaspar/vellum/internal/models"
)

// SortNotes returns a sorted copy of notes. Pinned notes always come first,
// ordered among themselves by ascending pin order regardless of the requested
// sort; the remaining notes follow the requested order. The sort is stable,
// so notes that compare equal keep their input order.
func SortNotes(notes []models.Note, order models.SortOrder) []models.Note {
	out := make([]models.Note, len(notes))
	copy(out, notes)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		if a.Pinned && a.PinOrder != b.PinOrder {
			return a.PinOrder < b.PinOrder
		}
		switch order {
		case models.SortTitle:
			return strings.ToLower(Title(a.Content)) < strings.ToLower(Title(b.Content))
		case models.SortOpened:
			return openedAt(b).Before(openedAt(a))
		default:
			return b.UpdatedAt.Before(a.UpdatedAt)
		}
	})
	return out
}

// openedAt falls back to the modification time for notes that were never
// opened, so fresh notes do not sink to the bottom of the recently-opened
// view.
func openedAt(n models.Note) time.Time {
	if n.LastOpenedAt != nil {
		return *n.LastOpenedAt
	}
	return n.UpdatedAt
}
