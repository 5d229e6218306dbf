package vault

import (
	"regexp"
	"strings"
)

const (
	// TrashDir is the soft-delete directory, relative to the vault root.
	TrashDir = "_deleted"

	noteExt      = ".md"
	untitledSlug = "untitled"

	// UntitledTitle is the display title for notes with an empty body.
	UntitledTitle = "Untitled"

	maxSlugLen = 50
)

var (
	headingPrefixRe = regexp.MustCompile(`^#+\s+`)
	nonAlnumRe      = regexp.MustCompile(`[^a-z0-9]+`)
)

// Filename derives a note's filename from its body and id: a slug of the
// first non-empty line plus the first 8 characters of the id, which keeps
// files human-browsable while guaranteeing uniqueness. Filenames are derived
// only at creation and duplication; a note's file is never renamed when its
// title later changes, to avoid churn during active editing.
func Filename(body, id string) string {
	return slugify(body) + "-" + shortID(id) + noteExt
}

// Title returns the note's display title: the first non-empty body line with
// heading markers stripped, or the "Untitled" sentinel.
func Title(body string) string {
	for _, line := range strings.Split(body, "\n") {
		cleaned := strings.TrimSpace(headingPrefixRe.ReplaceAllString(line, ""))
		if cleaned != "" {
			return cleaned
		}
	}
	return UntitledTitle
}

func slugify(body string) string {
	for _, line := range strings.Split(body, "\n") {
		cleaned := strings.TrimSpace(headingPrefixRe.ReplaceAllString(line, ""))
		if cleaned == "" {
			continue
		}
		slug := nonAlnumRe.ReplaceAllString(strings.ToLower(cleaned), "-")
		slug = strings.Trim(slug, "-")
		if len(slug) > maxSlugLen {
			slug = strings.Trim(slug[:maxSlugLen], "-")
		}
		if slug == "" {
			return untitledSlug
		}
		return slug
	}
	return untitledSlug
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
