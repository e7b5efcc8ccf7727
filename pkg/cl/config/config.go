package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

type Config struct {
	Env     string        `yaml:"env"` // "dev" or "prod"
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Site    SiteConfig    `yaml:"site"`
	Contact ContactConfig `yaml:"contact"`
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	VisitorSecret   string `yaml:"visitor_secret"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Only set it behind a reverse proxy that overwrites them.
	TrustProxy bool `yaml:"trust_proxy"`
}

// ShutdownTimeoutDuration parses ShutdownTimeout, falling back to 5s.
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return parseDuration(s.ShutdownTimeout, 5*time.Second)
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type SiteConfig struct {
	BaseURL       string   `yaml:"base_url"`
	DefaultLocale string   `yaml:"default_locale"`
	Locales       []string `yaml:"locales"`
	// AssetsDir, when set, serves templates, static files and locales from
	// disk instead of the embedded copy. Locales are reloaded on change.
	AssetsDir string `yaml:"assets_dir"`
}

type ContactConfig struct {
	SubmitDelay string `yaml:"submit_delay"`
	RateLimit   int    `yaml:"rate_limit"` // submissions per IP per hour
	FormTTL     string `yaml:"form_ttl"`
}

// SubmitDelayDuration parses SubmitDelay, falling back to 1200ms.
func (c ContactConfig) SubmitDelayDuration() time.Duration {
	return parseDuration(c.SubmitDelay, 1200*time.Millisecond)
}

// FormTTLDuration parses FormTTL, falling back to 30 minutes.
func (c ContactConfig) FormTTLDuration() time.Duration {
	return parseDuration(c.FormTTL, 30*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Default returns the configuration used when no file or env override is present.
func Default(env string) *Config {
	cfg := &Config{
		Env:    env,
		Server: ServerConfig{Addr: ":8080", ShutdownTimeout: "5s"},
		Log:    LogConfig{Level: "info"},
		Site: SiteConfig{
			BaseURL:       "https://www.srdpartners.ch",
			DefaultLocale: "fr",
			Locales:       []string{"fr", "en", "pt"},
		},
		Contact: ContactConfig{
			SubmitDelay: "1200ms",
			RateLimit:   10,
			FormTTL:     "30m",
		},
	}
	if env == "dev" {
		cfg.Server.Addr = "localhost:8080"
		cfg.Log.Level = "debug"
	}
	return cfg
}

// Load builds the configuration from defaults, the YAML file at path and
// SRD_* environment variables, in increasing priority.
// A missing file is not an error; an unreadable or malformed one is.
func Load(path string) (*Config, error) {
	env := os.Getenv("SRD_ENV")
	if env == "" {
		env = "dev" // Default to dev for safety
	}

	cfg := Default(env)

	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SRD_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SRD_VISITOR_SECRET"); v != "" {
		cfg.Server.VisitorSecret = v
	}
	if v := os.Getenv("SRD_SERVER_TRUST_PROXY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Server.TrustProxy = b
		}
	}
	if v := os.Getenv("SRD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SRD_SITE_BASE_URL"); v != "" {
		cfg.Site.BaseURL = v
	}
	if v := os.Getenv("SRD_SITE_DEFAULT_LOCALE"); v != "" {
		cfg.Site.DefaultLocale = v
	}
	if v := os.Getenv("SRD_SITE_LOCALES"); v != "" {
		var locales []string
		for _, l := range strings.Split(v, ",") {
			if l = strings.TrimSpace(l); l != "" {
				locales = append(locales, l)
			}
		}
		cfg.Site.Locales = locales
	}
	if v := os.Getenv("SRD_SITE_ASSETS_DIR"); v != "" {
		cfg.Site.AssetsDir = v
	}
	if v := os.Getenv("SRD_CONTACT_SUBMIT_DELAY"); v != "" {
		cfg.Contact.SubmitDelay = v
	}
	if v := os.Getenv("SRD_CONTACT_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Contact.RateLimit = n
		}
	}
	if v := os.Getenv("SRD_CONTACT_FORM_TTL"); v != "" {
		cfg.Contact.FormTTL = v
	}
}
