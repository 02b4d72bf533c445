package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
)

// UploadFieldName is the multipart field UploadFile sends the file under.
const UploadFieldName = "file"

// RestyClient implements Client on top of a Transport, resty by default.
type RestyClient struct {
	cfg       Config
	transport Transport
}

// Option customises a RestyClient.
type Option func(*RestyClient)

// WithTransport replaces the resty transport, typically with a test double.
func WithTransport(t Transport) Option {
	return func(c *RestyClient) {
		if t != nil {
			c.transport = t
		}
	}
}

// NewRestyClient creates a client for cfg. The config is copied, so later
// changes to the caller's header map have no effect.
func NewRestyClient(cfg Config, opts ...Option) (*RestyClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid http client config: %w", err)
	}
	c := &RestyClient{cfg: cfg.clone()}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewRestyTransport(newRestyBaseClient(c.cfg.Timeout))
	}
	return c, nil
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// BaseURL returns the URL every endpoint is resolved against.
func (c *RestyClient) BaseURL() string { return c.cfg.BaseURL }

// Timeout returns the bound applied to every call.
func (c *RestyClient) Timeout() time.Duration { return c.cfg.Timeout }

// Get performs a GET of endpoint with optional query parameters.
func (c *RestyClient) Get(ctx context.Context, endpoint string, params, headers map[string]string) (*Result, error) {
	return c.do(ctx, &Request{
		Method:  http.MethodGet,
		URL:     BuildURL(c.cfg.BaseURL, endpoint),
		Headers: c.resolveHeaders(headers),
		Query:   params,
		Timeout: c.cfg.Timeout,
	})
}

// Post performs a POST of endpoint carrying body.
func (c *RestyClient) Post(ctx context.Context, endpoint string, body Payload, headers map[string]string) (*Result, error) {
	if body.JSON != nil && (len(body.Form) > 0 || len(body.Files) > 0) {
		return nil, errors.New("payload cannot combine a json body with form fields or files")
	}
	return c.do(ctx, &Request{
		Method:  http.MethodPost,
		URL:     BuildURL(c.cfg.BaseURL, endpoint),
		Headers: c.resolveHeaders(headers),
		Body:    body,
		Timeout: c.cfg.Timeout,
	})
}

// UploadFile posts the file at path as the multipart field "file". The path is
// checked before any request is made.
func (c *RestyClient) UploadFile(ctx context.Context, endpoint, path string, headers map[string]string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Reason: "does not exist", Cause: err}
		}
		return nil, fmt.Errorf("stat upload file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, &NotFoundError{Path: path, Reason: "not a regular file"}
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Reason: "does not exist", Cause: err}
		}
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	defer f.Close()

	return c.Post(ctx, endpoint, Payload{
		Files: []FileField{{Param: UploadFieldName, FileName: filepath.Base(path), Reader: f}},
	}, headers)
}

// resolveHeaders returns the per-call headers when given, otherwise the
// defaults. The two are never merged.
func (c *RestyClient) resolveHeaders(override map[string]string) map[string]string {
	if len(override) > 0 {
		return copyHeaders(override)
	}
	return copyHeaders(c.cfg.Headers)
}

func (c *RestyClient) do(ctx context.Context, req *Request) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	return handleResponse(req.Method, req.URL, resp)
}
