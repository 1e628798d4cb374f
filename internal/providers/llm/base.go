package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Option func(*baseProvider)

// WithBaseURL points a client at a different endpoint, e.g. a proxy or a test server.
func WithBaseURL(u string) Option {
	return func(b *baseProvider) { b.baseURL = u }
}

func WithHTTPClient(c *http.Client) Option {
	return func(b *baseProvider) { b.client = c }
}

type baseProvider struct {
	name    string
	client  *http.Client
	baseURL string
	apiKey  string
}

func newBaseProvider(name, baseURL, apiKey string, opts ...Option) baseProvider {
	b := baseProvider{
		name: name,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *baseProvider) doRequest(ctx context.Context, method, path string, body any, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, transportError(b.name, err)
	}
	return resp, nil
}

// readBody drains resp and turns a non-2xx status into a classified error.
func (b *baseProvider) readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(b.name, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(b.name, resp.StatusCode, data)
	}
	return data, nil
}
