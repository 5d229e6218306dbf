// Package record encodes and decodes the on-disk note representation: a
// delimited metadata header followed by a blank line and the markup body.
package record

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const marker = "---"

// Metadata is the typed header of a vault record. Unknown header keys are
// ignored on decode; ID is the only key required for a record to be usable.
type Metadata struct {
	ID           string     `yaml:"id"`
	CreatedAt    time.Time  `yaml:"created_at"`
	UpdatedAt    time.Time  `yaml:"updated_at"`
	LastOpenedAt *time.Time `yaml:"last_opened_at"`
	Tags         []string   `yaml:"tags"`
	Pinned       bool       `yaml:"pinned"`
	PinOrder     int        `yaml:"pin_order"`
}

// Encode serializes metadata and body into file content. Optional keys are
// omitted entirely when unset; pinned is only written when true.
func Encode(meta Metadata, body string) []byte {
	var b strings.Builder
	b.WriteString(marker + "\n")
	b.WriteString("id: " + meta.ID + "\n")
	b.WriteString("created_at: " + meta.CreatedAt.UTC().Format(time.RFC3339Nano) + "\n")
	b.WriteString("updated_at: " + meta.UpdatedAt.UTC().Format(time.RFC3339Nano) + "\n")
	if meta.LastOpenedAt != nil {
		b.WriteString("last_opened_at: " + meta.LastOpenedAt.UTC().Format(time.RFC3339Nano) + "\n")
	}
	if len(meta.Tags) > 0 {
		b.WriteString("tags: [" + strings.Join(meta.Tags, ", ") + "]\n")
	}
	if meta.Pinned {
		b.WriteString("pinned: true\n")
		if meta.PinOrder >= 0 {
			b.WriteString(fmt.Sprintf("pin_order: %d\n", meta.PinOrder))
		}
	}
	b.WriteString(marker + "\n\n")
	b.WriteString(body)
	return []byte(b.String())
}

// Decode splits file content into metadata and body. It never fails: content
// without a header, with a truncated header, or with an unparsable header
// block is treated entirely as body, with fresh timestamps and an empty id.
// Callers decide how to handle the missing id.
func Decode(data []byte) (Metadata, string) {
	content := string(data)
	trimmed := strings.TrimLeft(content, "\n\r")

	if !strings.HasPrefix(trimmed, marker) {
		return freshMetadata(), content
	}

	rest := trimmed[len(marker):]
	end := strings.Index(rest, "\n"+marker)
	if end < 0 {
		// Missing closing marker: deliberate safe fallback, not an error.
		return freshMetadata(), content
	}

	headerBlock := rest[:end]
	body := rest[end+1+len(marker):]
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}
	body = strings.TrimLeft(body, "\n\r")

	meta := freshMetadata()
	if err := yaml.Unmarshal([]byte(headerBlock), &meta); err != nil {
		return freshMetadata(), content
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = meta.CreatedAt
	}
	if !meta.Pinned {
		meta.PinOrder = -1
	}
	return meta, body
}

func freshMetadata() Metadata {
	now := time.Now().UTC()
	return Metadata{CreatedAt: now, UpdatedAt: now, PinOrder: -1}
}
