package config

import "testing"

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Port != DefaultPort {
		t.Errorf("Default().Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.BindAddr == "" {
		t.Error("expected a default BindAddr")
	}
	if cfg.Addr() != "127.0.0.1:38472" {
		t.Errorf("Addr() = %q, want 127.0.0.1:38472", cfg.Addr())
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load on empty dir = %+v, want defaults %+v", cfg, Default())
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		BindAddr:        "0.0.0.0",
		Port:            9999,
		APIKey:          "secret",
		HeadlessDefault: true,
		CleanupInterval: 60,
	}
	if err := Save(dir, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Errorf("Load after Save = %+v, want %+v", got, cfg)
	}
}
