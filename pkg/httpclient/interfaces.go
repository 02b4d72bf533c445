package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Status() string
	Header() http.Header
}

// Request is everything a Transport needs to perform one call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   map[string]string
	Body    Payload
	Timeout time.Duration
}

// Payload is the optional body of a POST. JSON, Form and Files may be combined
// the same way a multipart form combines plain fields and files.
type Payload struct {
	JSON  any
	Form  map[string]string
	Files []FileField
}

// FileField is one multipart file part.
type FileField struct {
	Param    string
	FileName string
	Reader   io.Reader
}

// Transport performs a single HTTP request. Any conforming implementation
// (resty, net/http, a test double) can back a Client.
type Transport interface {
	Do(ctx context.Context, req *Request) (Response, error)
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
//
// Per-call headers, when non-empty, replace the client's default headers for
// that call. They are never merged.
type Client interface {
	Get(ctx context.Context, endpoint string, params, headers map[string]string) (*Result, error)
	Post(ctx context.Context, endpoint string, body Payload, headers map[string]string) (*Result, error)
	UploadFile(ctx context.Context, endpoint, path string, headers map[string]string) (*Result, error)
}
