package vault

import (
	"testing"
	"time"

	"github.com/mkaspar/vellum/internal/models"
)

func note(id, body string, updated time.Time) models.Note {
	return models.Note{
		ID:        id,
		Content:   body,
		CreatedAt: updated,
		UpdatedAt: updated,
		PinOrder:  models.UnpinnedOrder,
	}
}

func ids(notes []models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortPinnedAlwaysFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a := note("a", "alpha", base.Add(3*time.Hour))
	b := note("b", "beta", base.Add(2*time.Hour))
	c := note("c", "gamma", base.Add(time.Hour))

	// c was pinned first, then a: pin order wins over recency.
	c.Pinned, c.PinOrder = true, 0
	a.Pinned, a.PinOrder = true, 1

	for _, order := range []models.SortOrder{models.SortModified, models.SortOpened, models.SortTitle} {
		got := ids(SortNotes([]models.Note{a, b, c}, order))
		if got[0] != "c" || got[1] != "a" {
			t.Errorf("order %q: got %v, want pinned c,a first", order, got)
		}
		if got[2] != "b" {
			t.Errorf("order %q: unpinned note misplaced: %v", order, got)
		}
	}
}

func TestSortByModified(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	notes := []models.Note{
		note("old", "x", base),
		note("new", "x", base.Add(2*time.Hour)),
		note("mid", "x", base.Add(time.Hour)),
	}
	got := ids(SortNotes(notes, models.SortModified))
	if !equal(got, []string{"new", "mid", "old"}) {
		t.Errorf("got %v", got)
	}
}

func TestSortByOpenedFallsBackToModified(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	opened := note("opened", "x", base)
	when := base.Add(3 * time.Hour)
	opened.LastOpenedAt = &when

	// Never opened, but modified after the other was opened.
	fresh := note("fresh", "x", base.Add(4*time.Hour))

	got := ids(SortNotes([]models.Note{opened, fresh}, models.SortOpened))
	if !equal(got, []string{"fresh", "opened"}) {
		t.Errorf("got %v", got)
	}
}

func TestSortByTitleCaseInsensitive(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	notes := []models.Note{
		note("b", "# banana\n", base),
		note("a", "# Apple\n", base),
		note("u", "", base), // Untitled
	}
	got := ids(SortNotes(notes, models.SortTitle))
	if !equal(got, []string{"a", "b", "u"}) {
		t.Errorf("got %v", got)
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	notes := []models.Note{
		note("old", "x", base),
		note("new", "x", base.Add(time.Hour)),
	}
	SortNotes(notes, models.SortModified)
	if notes[0].ID != "old" {
		t.Error("input slice was reordered")
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"# Grocery List!\n\nmilk", "grocery-list-0a1b2c3d.md"},
		{"", "untitled-0a1b2c3d.md"},
		{"\n\n   \n", "untitled-0a1b2c3d.md"},
		{"### Déjà vu", "d-j-vu-0a1b2c3d.md"},
		{"!!!", "untitled-0a1b2c3d.md"},
	}
	for _, tt := range tests {
		if got := Filename(tt.body, "0a1b2c3d-ffff"); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestFilenameCapsSlugLength(t *testing.T) {
	long := "# aaaaaaaaaabbbbbbbbbbccccccccccddddddddddeeeeeeeeeeffffffffff"
	got := Filename(long, "12345678")
	if len(got) > maxSlugLen+len("-12345678.md") {
		t.Errorf("filename too long: %q (%d)", got, len(got))
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"# Heading\n\nbody", "Heading"},
		{"\n\nplain first line\n", "plain first line"},
		{"", "Untitled"},
		{"   \n\t\n", "Untitled"},
	}
	for _, tt := range tests {
		if got := Title(tt.body); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}
