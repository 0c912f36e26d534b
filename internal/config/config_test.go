package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PageSize != 50 || cfg.SearchPageSize != 100 || cfg.DebounceMillis != 300 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "page_size: 25\ndebounce_millis: 150\ndb_path: /tmp/custom.db\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PageSize != 25 || cfg.DebounceMillis != 150 || cfg.DBPath != "/tmp/custom.db" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SearchPageSize != 100 {
		t.Fatalf("unset key must keep default: %+v", cfg)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("page_size: [not an int"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed config must fail")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("FFLY_PAGE_SIZE", "10")
	t.Setenv("FFLY_DEBOUNCE_MILLIS", "not a number")
	t.Setenv("FFLY_DB_PATH", "/tmp/env.db")

	cfg := FromEnv(Default())
	if cfg.PageSize != 10 {
		t.Fatalf("page size override lost: %+v", cfg)
	}
	if cfg.DebounceMillis != 300 {
		t.Fatalf("unparsable override must keep default: %+v", cfg)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Fatalf("db path override lost: %+v", cfg)
	}
}
