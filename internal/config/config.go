package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	SourceBaseURL      string            `mapstructure:"source_base_url"`
	DestinationBaseURL string            `mapstructure:"destination_base_url"`
	DefaultHeadersRaw  string            `mapstructure:"default_headers" json:"-"`
	DefaultHeaders     map[string]string `mapstructure:"-" json:"-"`
	HTTPTimeoutSeconds int64             `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration     `mapstructure:"-"`

	EventsFile         string        `mapstructure:"events_file"`
	RunIntervalSeconds int64         `mapstructure:"run_interval_seconds"`
	RunInterval        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-etl-worker")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("source_base_url", "")
	v.SetDefault("destination_base_url", "")
	v.SetDefault("default_headers", "")
	v.SetDefault("http_timeout_seconds", 10)
	v.SetDefault("events_file", "")
	v.SetDefault("run_interval_seconds", 0) // run once

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.SourceBaseURL = strings.TrimSpace(cfg.SourceBaseURL)
	if cfg.SourceBaseURL == "" {
		return nil, fmt.Errorf("source_base_url is required")
	}
	if err := validateBaseURL("source_base_url", cfg.SourceBaseURL); err != nil {
		return nil, err
	}
	cfg.DestinationBaseURL = strings.TrimSpace(cfg.DestinationBaseURL)
	if cfg.DestinationBaseURL == "" {
		cfg.DestinationBaseURL = cfg.SourceBaseURL
	}
	if err := validateBaseURL("destination_base_url", cfg.DestinationBaseURL); err != nil {
		return nil, err
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.RunIntervalSeconds < 0 {
		return nil, fmt.Errorf("invalid run_interval_seconds (must be zero or positive seconds)")
	}
	cfg.RunInterval = time.Duration(cfg.RunIntervalSeconds) * time.Second

	headers, err := ParseHeaders(cfg.DefaultHeadersRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid default_headers: %w", err)
	}
	cfg.DefaultHeaders = headers
	cfg.EventsFile = strings.TrimSpace(cfg.EventsFile)

	return &cfg, nil
}

// ParseHeaders parses "Key: Value; Other: Value" into a header map. Empty
// segments are skipped.
func ParseHeaders(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, ":")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed header %q (expected Key: Value)", part)
		}
		out[key] = val
	}
	return out, nil
}

func validateBaseURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s %q (scheme must be http or https)", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s %q (missing host)", key, raw)
	}
	return nil
}
