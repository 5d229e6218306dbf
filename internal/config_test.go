package internal

import (
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if cfg.Vault.Retention() != 30*24*time.Hour {
		t.Errorf("retention = %v", cfg.Vault.Retention())
	}
}

func TestVaultConfig_PathRequired(t *testing.T) {
	cfg := VaultConfig{RetentionDays: 30}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty vault path should fail validation")
	}
}

func TestVaultConfig_RetentionFloor(t *testing.T) {
	cfg := VaultConfig{Path: "./vault", RetentionDays: 0}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero retention should be allowed (falls back to default): %v", err)
	}
	cfg.RetentionDays = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative retention should fail validation")
	}
}

func TestLegacyConfig_DisabledWhenPathEmpty(t *testing.T) {
	cfg := LegacyConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty legacy config should pass: %v", err)
	}
	if cfg.Enabled() {
		t.Error("legacy migration should be disabled without a path")
	}
}

func TestLegacyConfig_KeyRequiredWithPath(t *testing.T) {
	cfg := LegacyConfig{Path: "./old.db"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("legacy path without key should fail validation")
	}
	cfg.Key = "notes"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("legacy path with key should pass: %v", err)
	}
}

func TestFullConfig_VaultValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Vault.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch vault error")
	}
}
