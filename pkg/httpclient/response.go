package httpclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind tags which variant a Result holds.
type Kind int

const (
	KindText Kind = iota
	KindStructured
)

func (k Kind) String() string {
	switch k {
	case KindStructured:
		return "structured"
	default:
		return "text"
	}
}

type format int

const (
	formatNone format = iota
	formatJSON
	formatYAML
)

// Result is a normalised 2xx response: either a decoded structured value or
// raw text.
type Result struct {
	Kind        Kind
	StatusCode  int
	ContentType string
	// Data holds the decoded value when Kind is KindStructured.
	Data any
	// Text holds the body when Kind is KindText.
	Text string

	raw    []byte
	format format
}

// IsStructured reports whether the body was decoded from a structured content type.
func (r *Result) IsStructured() bool {
	return r != nil && r.Kind == KindStructured
}

// Raw returns the undecoded response body.
func (r *Result) Raw() []byte {
	if r == nil {
		return nil
	}
	return r.raw
}

// Decode unmarshals a structured body into v using the codec that matched the
// response content type.
func (r *Result) Decode(v any) error {
	if r == nil {
		return errors.New("nil result")
	}
	switch r.format {
	case formatJSON:
		return json.Unmarshal(r.raw, v)
	case formatYAML:
		return yaml.Unmarshal(r.raw, v)
	default:
		return fmt.Errorf("response content type %q is not structured", r.ContentType)
	}
}

// handleResponse maps a transport response onto a Result, or an *HTTPError for
// non-2xx statuses and undecodable structured bodies.
func handleResponse(method, url string, resp Response) (*Result, error) {
	status := resp.StatusCode()
	body := resp.Body()

	if status < 200 || status > 299 {
		return nil, &HTTPError{
			Method:     method,
			URL:        url,
			StatusCode: status,
			Status:     resp.Status(),
			Body:       string(body),
		}
	}

	contentType := resp.Header().Get("Content-Type")
	res := &Result{
		StatusCode:  status,
		ContentType: contentType,
		raw:         body,
		format:      detectFormat(contentType),
	}

	if res.format == formatNone {
		res.Kind = KindText
		res.Text = string(body)
		return res, nil
	}

	var data any
	if err := decodeStructured(res.format, body, &data); err != nil {
		return nil, &HTTPError{
			Method:     method,
			URL:        url,
			StatusCode: status,
			Status:     resp.Status(),
			Body:       string(body),
			Cause:      err,
		}
	}
	res.Kind = KindStructured
	res.Data = data
	return res, nil
}

func decodeStructured(f format, body []byte, out *any) error {
	switch f {
	case formatJSON:
		dec := json.NewDecoder(bytes.NewReader(body))
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("json: %w", err)
		}
		if dec.More() {
			return errors.New("json: trailing data after top-level value")
		}
		return nil
	case formatYAML:
		if len(bytes.TrimSpace(body)) == 0 {
			return errors.New("yaml: empty document")
		}
		if err := yaml.Unmarshal(body, out); err != nil {
			return fmt.Errorf("yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %d", f)
	}
}

// detectFormat recognises JSON (including +json suffixes) and YAML media types.
func detectFormat(contentType string) format {
	if strings.TrimSpace(contentType) == "" {
		return formatNone
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return formatNone
	}
	switch {
	case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
		return formatJSON
	case mediaType == "application/yaml", mediaType == "application/x-yaml",
		mediaType == "text/yaml", mediaType == "text/x-yaml", strings.HasSuffix(mediaType, "+yaml"):
		return formatYAML
	default:
		return formatNone
	}
}
