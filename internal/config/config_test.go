package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("SOURCE_BASE_URL", "https://api.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DestinationBaseURL != "https://api.example.com" {
		t.Fatalf("expected destination to default to source, got %q", cfg.DestinationBaseURL)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %v", cfg.HTTPTimeout)
	}
	if cfg.RunInterval != 0 {
		t.Fatalf("expected run-once default, got %v", cfg.RunInterval)
	}
	if len(cfg.DefaultHeaders) != 0 {
		t.Fatalf("expected no default headers, got %v", cfg.DefaultHeaders)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SOURCE_BASE_URL", "https://api.example.com")
	t.Setenv("DESTINATION_BASE_URL", "https://api.destination.com")
	t.Setenv("DEFAULT_HEADERS", "Authorization: Bearer t; X-Trace: 1")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("RUN_INTERVAL_SECONDS", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DestinationBaseURL != "https://api.destination.com" {
		t.Fatalf("unexpected destination %q", cfg.DestinationBaseURL)
	}
	want := map[string]string{"Authorization": "Bearer t", "X-Trace": "1"}
	if diff := cmp.Diff(want, cfg.DefaultHeaders); diff != "" {
		t.Fatalf("unexpected headers (-want +got):\n%s", diff)
	}
	if cfg.HTTPTimeout != 3*time.Second || cfg.RunInterval != time.Minute {
		t.Fatalf("unexpected durations timeout=%v interval=%v", cfg.HTTPTimeout, cfg.RunInterval)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"missing source":   {"SOURCE_BASE_URL": ""},
		"bad scheme":       {"SOURCE_BASE_URL": "ftp://example.com"},
		"zero timeout":     {"SOURCE_BASE_URL": "https://a.example.com", "HTTP_TIMEOUT_SECONDS": "0"},
		"negative ticker":  {"SOURCE_BASE_URL": "https://a.example.com", "RUN_INTERVAL_SECONDS": "-1"},
		"malformed header": {"SOURCE_BASE_URL": "https://a.example.com", "DEFAULT_HEADERS": "novalue"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseHeadersSkipsEmptySegments(t *testing.T) {
	got, err := ParseHeaders(" ; A: 1 ;; B:2;")
	if err != nil {
		t.Fatalf("ParseHeaders: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"A": "1", "B": "2"}, got); diff != "" {
		t.Fatalf("unexpected headers (-want +got):\n%s", diff)
	}
}
