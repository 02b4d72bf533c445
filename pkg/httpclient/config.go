package httpclient

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout applies when a Config is built from zero values by callers
// that do not care about the bound.
const DefaultTimeout = 10 * time.Second

// Config is the immutable per-client configuration.
type Config struct {
	BaseURL string
	Headers map[string]string
	Timeout time.Duration
}

// Validate checks that the configuration can back a client.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", c.Timeout)
	}
	return nil
}

// clone returns a copy that shares nothing mutable with c.
func (c Config) clone() Config {
	out := c
	out.BaseURL = strings.TrimSpace(c.BaseURL)
	out.Headers = copyHeaders(c.Headers)
	return out
}

func copyHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = v
	}
	return out
}

// BuildURL joins base and endpoint with exactly one "/" between them.
func BuildURL(base, endpoint string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}
