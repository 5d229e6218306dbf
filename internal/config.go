package internal

import (
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	Legacy LegacyConfig      `yaml:"legacy"`
	MCP    MCPConfig         `yaml:"mcp"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	return c.Legacy.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// VaultConfig holds the vault directory and trash retention settings.
type VaultConfig struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
	DebounceMs    int    `yaml:"debounce_ms"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.RetentionDays, validation.Min(1)),
		validation.Field(&c.DebounceMs, validation.Min(0)),
	)
}

// Retention returns the trash retention window.
func (c *VaultConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Debounce returns the write-coalescing quiet period.
func (c *VaultConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// LegacyConfig points at the pre-vault key/value database. An empty path
// disables the one-shot migration.
type LegacyConfig struct {
	Path string `yaml:"path"`
	Key  string `yaml:"key"`
}

// Validate validates the legacy store configuration.
func (c *LegacyConfig) Validate() error {
	if c.Path == "" {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Key, validation.Required),
	)
}

// Enabled reports whether a legacy database is configured.
func (c *LegacyConfig) Enabled() bool {
	return c.Path != ""
}

// MCPConfig controls the stdio tool surface.
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Vault: VaultConfig{
			Path:          "./vault",
			RetentionDays: 30,
			DebounceMs:    300,
		},
		Legacy: LegacyConfig{
			Key: "notes",
		},
		MCP: MCPConfig{
			Enabled: true,
		},
	}
}
