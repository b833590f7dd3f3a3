package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HUBD_DATA_DIR", "HUBD_LISTEN_ADDR", "HUBD_BEARER_TOKEN",
		"HUBD_STORAGE_BACKEND", "HUBD_METRICS_INTERVAL", "HUBD_SEED",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load(nil)
	if cfg.DataDir != "./data" {
		t.Errorf("DataDir = %q, want ./data", cfg.DataDir)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.StorageBackend != "sqlite" {
		t.Errorf("StorageBackend = %q, want sqlite", cfg.StorageBackend)
	}
	if cfg.MetricsInterval != "" || cfg.Seed {
		t.Errorf("MetricsInterval = %q, Seed = %v, want disabled", cfg.MetricsInterval, cfg.Seed)
	}
	if cfg.IsAuthEnabled() {
		t.Error("auth should be disabled without a token")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("HUBD_DATA_DIR", "/var/lib/hubd")
	t.Setenv("HUBD_BEARER_TOKEN", "tok")
	t.Setenv("HUBD_STORAGE_BACKEND", "memory")
	t.Setenv("HUBD_METRICS_INTERVAL", "@every 5m")
	t.Setenv("HUBD_SEED", "true")

	cfg := Load(nil)
	if cfg.DataDir != "/var/lib/hubd" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.StorageBackend != "memory" {
		t.Errorf("StorageBackend = %q, want memory", cfg.StorageBackend)
	}
	if cfg.MetricsInterval != "@every 5m" {
		t.Errorf("MetricsInterval = %q", cfg.MetricsInterval)
	}
	if !cfg.Seed {
		t.Error("Seed should be on")
	}
	if !cfg.IsAuthEnabled() {
		t.Error("auth should be enabled with a token")
	}
}

func TestLoadEnvFileOverridesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("HUBD_LISTEN_ADDR", ":9999")

	content := "# local overrides\nHUBD_LISTEN_ADDR=:3000\nHUBD_BEARER_TOKEN=\"quoted\"\n\nnot a pair\n"
	if err := os.WriteFile(filepath.Join(".", ".env"), []byte(content), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg := Load(nil)
	if cfg.ListenAddr != ":3000" {
		t.Errorf("ListenAddr = %q, want .env value :3000", cfg.ListenAddr)
	}
	if cfg.BearerToken != "quoted" {
		t.Errorf("BearerToken = %q, quotes should be stripped", cfg.BearerToken)
	}
	if cfg.ConfigFile != ".env" {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile)
	}
	if cfg.String() != ".env file (.env)" {
		t.Errorf("String() = %q", cfg.String())
	}
}

func TestLoadOptsHavePriority(t *testing.T) {
	clearEnv(t)
	t.Setenv("HUBD_LISTEN_ADDR", ":9999")

	cfg := Load(&Config{ListenAddr: ":4000", StorageBackend: "memory"})
	if cfg.ListenAddr != ":4000" {
		t.Errorf("ListenAddr = %q, want CLI value :4000", cfg.ListenAddr)
	}
	if cfg.StorageBackend != "memory" {
		t.Errorf("StorageBackend = %q", cfg.StorageBackend)
	}
}

func TestLoadUnknownBackendFallsBack(t *testing.T) {
	clearEnv(t)

	cfg := Load(&Config{StorageBackend: "postgres"})
	if cfg.StorageBackend != "sqlite" {
		t.Errorf("StorageBackend = %q, want sqlite fallback", cfg.StorageBackend)
	}
}

func TestIsTrue(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{" yes ", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"", false},
		{"maybe", false},
	}
	for _, tt := range tests {
		if got := isTrue(tt.in); got != tt.want {
			t.Errorf("isTrue(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
