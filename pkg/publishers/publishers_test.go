package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLoadRegistryEnabledFilter(t *testing.T) {
	path := writeFile(t, "events.yaml", `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: HTTP
    http:
      url: " https://example.com/2 "
  - id: topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:us-east-1:123:etl
      region: us-east-1
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "http2" || enabled[1].ID != "topic" {
		t.Fatalf("expected http2 and topic enabled, got %#v", enabled)
	}
	h := enabled[0].HTTP
	if h.URL != "https://example.com/2" || h.Method != "POST" || h.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("http config not sanitized: %#v", h)
	}
	if _, ok := reg.ByID("topic"); !ok {
		t.Fatalf("ByID did not find topic")
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeFile(t, "events.json", `{"publishers":[{"id":"ps","type":"pubsub","pubsub":{"project_id":"p","topic":"t"}}]}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if all := reg.All(); len(all) != 1 || all[0].PubSub.Topic != "t" {
		t.Fatalf("unexpected registry %#v", all)
	}
}

func TestLoadRegistryRejectsDuplicates(t *testing.T) {
	path := writeFile(t, "events.yaml", `
publishers:
  - id: a
    type: http
    http: {url: https://example.com}
  - id: a
    type: http
    http: {url: https://example.com}
`)
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := map[string]PublisherConfig{
		"missing http":    {ID: "h1", Type: TypeHTTP},
		"missing sqs url": {ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{Region: "us-east-1"}},
		"missing sns arn": {ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "us-east-1"}},
		"partial creds":   {ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{TopicARN: "arn", Region: "r", Credentials: &AWSCredentials{AccessKeyID: "k"}}},
		"missing pubsub":  {ID: "p", Type: TypePubSub},
		"unknown type":    {ID: "k", Type: "kafka"},
		"missing id":      {Type: TypeHTTP},
	}
	for name, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
