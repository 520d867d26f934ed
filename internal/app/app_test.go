package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("poll_seconds = 9\n[store]\nbackend = \"memory\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := loadConfig(Options{ConfigPath: path, PollEvery: 3, Backend: " Redis "})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Store.Backend != "redis" {
		t.Fatalf("Store.Backend = %q, want redis", cfg.Store.Backend)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Fatalf("PollInterval = %v, want 3s", cfg.PollInterval)
	}
}

func TestLoadConfig_KeepsConfiguredValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("poll_seconds = 9\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := loadConfig(Options{ConfigPath: path})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.PollInterval != 9*time.Second || cfg.Store.Backend != "memory" {
		t.Fatalf("cfg = %+v, want poll 9s on memory", cfg)
	}
}

func TestLoadConfig_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := loadConfig(Options{ConfigPath: filepath.Join(t.TempDir(), "missing.toml"), Backend: "firestore"})
	if err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Fatalf("loadConfig error = %v, want unknown backend", err)
	}
}

func TestLoadConfig_WrapsParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("poll_seconds = ["), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := loadConfig(Options{ConfigPath: path})
	if err == nil || !strings.Contains(err.Error(), "load config: parse config") {
		t.Fatalf("loadConfig error = %v, want load config: parse config", err)
	}
}
