package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8484" {
		t.Errorf("listen_addr = %q", cfg.ListenAddr)
	}
	if cfg.Driver != "sqlite" {
		t.Errorf("driver = %q", cfg.Driver)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("timezone = %q", cfg.Timezone)
	}
	if cfg.SQLitePath == "" {
		t.Error("sqlite_path should have a default")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"listen_addr": ":9000", "driver": "memory", "timezone": "Europe/Berlin"}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9000" || cfg.Driver != "memory" || cfg.Timezone != "Europe/Berlin" {
		t.Errorf("loaded config %+v", cfg)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PILLARLOG_LISTEN_ADDR", ":7777")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":7777" {
		t.Errorf("listen_addr = %q, want env override", cfg.ListenAddr)
	}
}

func TestLoadRejectsBadDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"driver": "etcd"}`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestLoadPostgresNeedsDSN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"driver": "postgres"}`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for postgres without a DSN")
	}
}
