package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SRD_ENV", "prod")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.IsDev() {
		t.Error("expected prod environment")
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Site.DefaultLocale != "fr" {
		t.Errorf("Site.DefaultLocale = %q, want fr", cfg.Site.DefaultLocale)
	}
	if cfg.Server.TrustProxy {
		t.Error("proxy headers should not be trusted by default")
	}
	if len(cfg.Site.Locales) != 3 {
		t.Errorf("Site.Locales = %v, want 3 locales", cfg.Site.Locales)
	}
	if got := cfg.Contact.SubmitDelayDuration(); got != 1200*time.Millisecond {
		t.Errorf("SubmitDelayDuration() = %v, want 1.2s", got)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	t.Setenv("SRD_ENV", "prod")
	t.Setenv("SRD_CONTACT_RATE_LIMIT", "3")
	t.Setenv("SRD_SITE_LOCALES", "fr, en")
	t.Setenv("SRD_SERVER_TRUST_PROXY", "true")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  addr: ":9090"
contact:
  submit_delay: 50ms
  rate_limit: 20
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if got := cfg.Contact.SubmitDelayDuration(); got != 50*time.Millisecond {
		t.Errorf("SubmitDelayDuration() = %v, want 50ms", got)
	}
	if cfg.Contact.RateLimit != 3 {
		t.Errorf("RateLimit = %d, want env override 3", cfg.Contact.RateLimit)
	}
	if !cfg.Server.TrustProxy {
		t.Error("TrustProxy should follow SRD_SERVER_TRUST_PROXY")
	}
	if len(cfg.Site.Locales) != 2 || cfg.Site.Locales[1] != "en" {
		t.Errorf("Site.Locales = %v, want [fr en]", cfg.Site.Locales)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err == nil {
		t.Fatalf("Load() = %+v, want parse error", cfg)
	}
	if !strings.Contains(err.Error(), "cannot parse config") {
		t.Errorf("Load() error = %v", err)
	}
}

func TestDurationFallbacks(t *testing.T) {
	tests := []struct {
		name string
		cfg  ContactConfig
		want time.Duration
	}{
		{"empty", ContactConfig{}, 30 * time.Minute},
		{"invalid", ContactConfig{FormTTL: "soon"}, 30 * time.Minute},
		{"negative", ContactConfig{FormTTL: "-1m"}, 30 * time.Minute},
		{"valid", ContactConfig{FormTTL: "2h"}, 2 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.FormTTLDuration(); got != tt.want {
				t.Errorf("FormTTLDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}
