package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestNewConfig verifies default values.
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	if cfg == nil {
		t.Fatal("NewConfig returned nil")
	}
	if cfg.DataDir == "" {
		t.Error("DataDir not defaulted")
	}
	if cfg.AudioDir != "audio" {
		t.Errorf("Expected default AudioDir 'audio', got %q", cfg.AudioDir)
	}
	if cfg.Settings == nil || cfg.Settings.StartupRetries != 5 {
		t.Error("Settings not defaulted")
	}
}

// TestSaveAndLoadFrom verifies a config round-trip through disk.
func TestSaveAndLoadFrom(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")

	cfg := NewConfig()
	cfg.DatabaseURL = "postgres://localhost/survey"
	cfg.AdminIDs = []int64{42, 99}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if loaded.DatabaseURL != cfg.DatabaseURL {
		t.Errorf("Expected DatabaseURL %q, got %q", cfg.DatabaseURL, loaded.DatabaseURL)
	}
	if len(loaded.AdminIDs) != 2 || loaded.AdminIDs[0] != 42 {
		t.Errorf("AdminIDs not round-tripped: %v", loaded.AdminIDs)
	}
}

// TestLoadFromMissing verifies the typed not-found error.
func TestLoadFromMissing(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
	if _, ok := err.(*ConfigNotFoundError); !ok {
		t.Errorf("Expected *ConfigNotFoundError, got %T", err)
	}
}

// TestLoadFromInvalid verifies malformed JSON is reported as InvalidConfigError.
func TestLoadFromInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("Expected error for malformed config")
	}
	if _, ok := err.(*InvalidConfigError); !ok {
		t.Errorf("Expected *InvalidConfigError, got %T", err)
	}
}

// TestApplyEnv verifies environment overrides.
func TestApplyEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/override")
	t.Setenv("ADMIN_IDS", "1, 2,3,")

	cfg := NewConfig()
	cfg.ApplyEnv()

	if cfg.DatabaseURL != "postgres://env/override" {
		t.Errorf("DATABASE_URL not applied: %q", cfg.DatabaseURL)
	}
	if len(cfg.AdminIDs) != 3 || cfg.AdminIDs[2] != 3 {
		t.Errorf("ADMIN_IDS not parsed: %v", cfg.AdminIDs)
	}
}

// TestIsAdmin verifies admin membership checks.
func TestIsAdmin(t *testing.T) {
	cfg := NewConfig()
	cfg.AdminIDs = []int64{7}

	if !cfg.IsAdmin(7) {
		t.Error("Expected 7 to be admin")
	}
	if cfg.IsAdmin(8) {
		t.Error("Expected 8 not to be admin")
	}
}
