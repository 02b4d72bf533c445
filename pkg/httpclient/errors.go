package httpclient

import (
	"fmt"
	"io/fs"
	"strings"
)

const maxErrorBodyBytes = 512

// HTTPError is returned for a non-2xx response or for a structured body that
// failed to decode.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	// Body is the response text, kept verbatim so callers can inspect it.
	Body  string
	Cause error
}

func (e *HTTPError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: decode response (status %d): %v", e.Method, e.URL, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s %s: http status %d: %s", e.Method, e.URL, e.StatusCode, bodySnippet(e.Body))
}

func (e *HTTPError) Unwrap() error {
	return e.Cause
}

// NotFoundError reports an upload path that is missing or not a regular file.
type NotFoundError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file %q not found: %s", e.Path, e.Reason)
}

func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, fs.ErrNotExist) match regardless of the cause.
func (e *NotFoundError) Is(target error) bool {
	return target == fs.ErrNotExist
}

func bodySnippet(body string) string {
	s := strings.TrimSpace(body)
	if s == "" {
		return "<empty>"
	}
	if len(s) > maxErrorBodyBytes {
		return s[:maxErrorBodyBytes] + "..."
	}
	return s
}
