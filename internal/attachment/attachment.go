// Package attachment rewrites embedded data-URL images in markup text to
// content-addressed files under attachments/, and inlines them back on read.
// Neither direction performs file I/O; reads go through a caller-supplied
// resolver so the package stays testable without a filesystem.
package attachment

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/mkaspar/vellum/internal/checksum"
)

// Dir is the attachments directory name, relative to the vault root.
const Dir = "attachments"

// Attachment is one extracted binary payload and its vault-relative path.
type Attachment struct {
	Path string
	Data []byte
}

var (
	mdDataImageRe   = regexp.MustCompile(`!\[([^\]]*)\]\(data:image/([^;)]+);base64,([^)]+)\)`)
	htmlDataImageRe = regexp.MustCompile(`(<img\s+src=")data:image/([^;"]+);base64,([^"]+)(")`)

	mdRelImageRe   = regexp.MustCompile(`(!\[[^\]]*\]\()(` + Dir + `/[^)\s]+)(\))`)
	htmlRelImageRe = regexp.MustCompile(`(<img\s+src=")(` + Dir + `/[^"]+)(")`)
)

// subtype synonym normalization for filenames, and its inverse for data URLs.
var extForSubtype = map[string]string{"jpeg": "jpg", "svg+xml": "svg"}
var subtypeForExt = map[string]string{"jpg": "jpeg", "svg": "svg+xml"}

// Extract rewrites every embedded data-URL image in text to a relative
// attachment path attachments/<idPrefix>-<hash>.<ext> and returns the cleaned
// text plus the extracted payloads. The hash is derived from the decoded
// payload, so re-saving unchanged content yields the same path both times and
// never a duplicate file. Payloads that fail base64 decoding are left in
// place untouched.
func Extract(text, idPrefix string) (string, []Attachment) {
	var out []Attachment

	replace := func(subtype, payload string) (string, bool) {
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", false
		}
		ext := subtype
		if mapped, ok := extForSubtype[subtype]; ok {
			ext = mapped
		}
		rel := fmt.Sprintf("%s/%s-%s.%s", Dir, idPrefix, checksum.Short(raw), ext)
		out = append(out, Attachment{Path: rel, Data: raw})
		return rel, true
	}

	cleaned := mdDataImageRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := mdDataImageRe.FindStringSubmatch(m)
		rel, ok := replace(sub[2], sub[3])
		if !ok {
			return m
		}
		return "![" + sub[1] + "](" + rel + ")"
	})

	cleaned = htmlDataImageRe.ReplaceAllStringFunc(cleaned, func(m string) string {
		sub := htmlDataImageRe.FindStringSubmatch(m)
		rel, ok := replace(sub[2], sub[3])
		if !ok {
			return m
		}
		return sub[1] + rel + sub[4]
	})

	return cleaned, out
}

// Inline is the read-side inverse of Extract: every image reference pointing
// into attachments/ is resolved to bytes via resolve and substituted with a
// self-describing data URL. References that fail to resolve are left
// unchanged rather than dropped.
func Inline(text string, resolve func(rel string) ([]byte, error)) string {
	toDataURL := func(rel string) (string, bool) {
		raw, err := resolve(rel)
		if err != nil {
			return "", false
		}
		ext := strings.TrimPrefix(rel[strings.LastIndexByte(rel, '.')+1:], ".")
		subtype := ext
		if mapped, ok := subtypeForExt[ext]; ok {
			subtype = mapped
		}
		return "data:image/" + subtype + ";base64," + base64.StdEncoding.EncodeToString(raw), true
	}

	resolved := mdRelImageRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := mdRelImageRe.FindStringSubmatch(m)
		url, ok := toDataURL(sub[2])
		if !ok {
			return m
		}
		return sub[1] + url + sub[3]
	})

	return htmlRelImageRe.ReplaceAllStringFunc(resolved, func(m string) string {
		sub := htmlRelImageRe.FindStringSubmatch(m)
		url, ok := toDataURL(sub[2])
		if !ok {
			return m
		}
		return sub[1] + url + sub[3]
	})
}
