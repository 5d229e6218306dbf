package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mkaspar/vellum/internal/markdown"
	"github.com/mkaspar/vellum/internal/models"
	"github.com/mkaspar/vellum/internal/record"
	"github.com/mkaspar/vellum/internal/storage"
	"github.com/mkaspar/vellum/internal/vault"
)

// MarkerFile flags a vault that has already been migrated. Its presence in
// the vault root makes Run a no-op.
const MarkerFile = ".migrated"

// legacyPayload is the JSON blob the old backend kept under a single key.
type legacyPayload struct {
	Notes []legacyNote `json:"notes"`
}

type legacyNote struct {
	ID           string   `json:"id"`
	Content      string   `json:"content"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
	LastOpenedAt string   `json:"last_opened_at"`
	IsPinned     int      `json:"is_pinned"`
	PinOrder     int      `json:"pin_order"`
	Tags         []string `json:"tags"`
}

// Migrator performs the one-shot import of legacy notes into the vault.
type Migrator struct {
	legacy   LegacyStore
	provider storage.Provider
	logger   *slog.Logger
	blobKey  string
}

// NewMigrator wires a migrator over the legacy store and the vault provider.
func NewMigrator(legacy LegacyStore, provider storage.Provider, logger *slog.Logger, blobKey string) *Migrator {
	return &Migrator{legacy: legacy, provider: provider, logger: logger, blobKey: blobKey}
}

// Run imports every legacy note as a vault record file, then writes the
// marker. It returns without touching anything if the marker already exists
// or the legacy store has no blob. Individual notes that cannot be converted
// are logged and skipped; only a completely unreadable blob fails the run,
// leaving the marker unset so the next launch retries.
func (m *Migrator) Run(ctx context.Context) error {
	if _, err := m.provider.Read(MarkerFile); err == nil {
		m.logger.Debug("migration already done")
		return nil
	}

	blob, ok, err := m.legacy.ReadBlob(m.blobKey)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if !ok {
		m.logger.Info("no legacy data to migrate")
		return m.writeMarker()
	}

	var payload legacyPayload
	if err := json.Unmarshal([]byte(blob), &payload); err != nil {
		return fmt.Errorf("migrate: decode legacy blob: %w", err)
	}

	imported := 0
	for _, ln := range payload.Notes {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := m.importNote(ln); err != nil {
			m.logger.Warn("skipping legacy note", slog.String("id", ln.ID), slog.Any("error", err))
			continue
		}
		imported++
	}

	m.logger.Info("migration complete", slog.Int("imported", imported), slog.Int("total", len(payload.Notes)))
	return m.writeMarker()
}

func (m *Migrator) importNote(ln legacyNote) error {
	if ln.ID == "" {
		return fmt.Errorf("migrate: note without id")
	}

	body := legacyBody(ln.Content)
	meta := record.Metadata{
		ID:        ln.ID,
		CreatedAt: parseLegacyTime(ln.CreatedAt),
		UpdatedAt: parseLegacyTime(ln.UpdatedAt),
		Tags:      ln.Tags,
		Pinned:    ln.IsPinned != 0,
		PinOrder:  models.UnpinnedOrder,
	}
	if meta.Pinned {
		meta.PinOrder = ln.PinOrder
	}
	if ln.LastOpenedAt != "" {
		opened := parseLegacyTime(ln.LastOpenedAt)
		meta.LastOpenedAt = &opened
	}

	// Legacy bodies may embed data URLs; they are imported as-is and get
	// extracted to attachment files on the note's next regular save.
	filename := vault.Filename(body, ln.ID)
	if err := m.provider.Write(filename, record.Encode(meta, body)); err != nil {
		return fmt.Errorf("migrate: write %s: %w", filename, err)
	}
	return nil
}

// legacyBody renders old tree-JSON content to markup; anything else is
// already markup and passes through.
func legacyBody(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") {
		return content
	}
	var node markdown.Node
	if err := json.Unmarshal([]byte(trimmed), &node); err != nil {
		return content
	}
	return markdown.ToText(&node)
}

func parseLegacyTime(s string) time.Time {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.UTC()
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC()
	}
	return time.Now().UTC()
}

func (m *Migrator) writeMarker() error {
	if err := m.provider.Write(MarkerFile, []byte("1\n")); err != nil {
		return fmt.Errorf("migrate: write marker: %w", err)
	}
	return nil
}
