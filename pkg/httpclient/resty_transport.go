package httpclient

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// RestyTransport adapts resty.Client to the Transport interface.
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport wraps client. A nil client gets resty defaults.
func NewRestyTransport(client *resty.Client) *RestyTransport {
	if client == nil {
		client = resty.New()
	}
	return &RestyTransport{client: client}
}

// Do executes req. The request timeout, when set, bounds the whole call
// including reading the body.
func (t *RestyTransport) Do(ctx context.Context, req *Request) (Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	r := t.client.R().SetContext(ctx)
	if req.Body.JSON != nil {
		// Caller headers below may still override the content type.
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(req.Body.JSON)
	}
	if len(req.Headers) > 0 {
		r.SetHeaders(req.Headers)
	}
	if len(req.Query) > 0 {
		r.SetQueryParams(req.Query)
	}
	if len(req.Body.Form) > 0 {
		r.SetFormData(req.Body.Form)
	}
	for _, f := range req.Body.Files {
		r.SetFileReader(f.Param, f.FileName, f.Reader)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Status() string      { return r.resp.Status() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
