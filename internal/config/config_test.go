package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autotex/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Paths.APIBind != "127.0.0.1:7607" {
		t.Fatalf("unexpected default api_bind: %q", cfg.Paths.APIBind)
	}
	if !cfg.Cache.Enabled || cfg.Cache.RetentionDays != 30 {
		t.Fatalf("unexpected cache defaults: %+v", cfg.Cache)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
log_dir = "` + filepath.Join(t.TempDir(), "logs") + `"

[compiler]
base_url = "http://compiler.internal:8100/"
request_timeout = 0

[logging]
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected resolved path %q, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Compiler.BaseURL != "http://compiler.internal:8100" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Compiler.BaseURL)
	}
	if cfg.Compiler.RequestTimeout != 30 {
		t.Fatalf("expected zero timeout replaced by default, got %d", cfg.Compiler.RequestTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowered level, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad log format", "[logging]\nformat = \"xml\"\n"},
		{"bad log level", "[logging]\nlevel = \"loud\"\n"},
		{"relative compiler url", "[compiler]\nbase_url = \"compiler.internal\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[compiler]") {
		t.Fatal("sample config missing compiler section")
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
