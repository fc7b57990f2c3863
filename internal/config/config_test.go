package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config for missing file, got %+v", cfg)
	}
}

func TestLoadAndDefaults(t *testing.T) {
	root := t.TempDir()
	content := `
[server]
port = 3000

[runtime]
enabled = false

[docs]
dir = "notes"
`
	if err := os.WriteFile(filepath.Join(root, ConfigPath), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOrDefault(root)
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Sync.Port != DefaultSyncPort {
		t.Errorf("sync port = %d, want default %d", cfg.Sync.Port, DefaultSyncPort)
	}
	if cfg.Runtime.Port != DefaultRuntimePort {
		t.Errorf("runtime port = %d, want default %d", cfg.Runtime.Port, DefaultRuntimePort)
	}
	if cfg.RuntimeEnabled() {
		t.Error("runtime should be disabled")
	}
	if cfg.Docs.Dir != "notes" {
		t.Errorf("docs dir = %q, want notes", cfg.Docs.Dir)
	}
}

func TestLoadOrDefaultMissing(t *testing.T) {
	cfg, err := LoadOrDefault(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("server port = %d, want %d", cfg.Server.Port, DefaultServerPort)
	}
	if !cfg.RuntimeEnabled() {
		t.Error("runtime should default to enabled")
	}
}

func TestLoadParseError(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ConfigPath), []byte("[server\nport="), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(root); err == nil {
		t.Error("expected parse error for malformed config")
	}
}
