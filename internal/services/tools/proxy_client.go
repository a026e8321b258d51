// File: internal/services/tools/proxy_client.go
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ProxyClient talks to the tool proxy: plain GET requests to fixed paths,
// query parameters per tool, JSON body back. The body is passed through
// unmodified as the tool result, whatever the status code says; the proxy
// reports its own failures as {"error": ...} payloads.
type ProxyClient struct {
	baseURL string
	client  *http.Client
}

// NewProxyClient creates a client for the proxy reachable at baseURL.
func NewProxyClient(baseURL string) *ProxyClient {
	return &ProxyClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Call performs GET {baseURL}{path}?{params} and decodes the JSON body.
func (c *ProxyClient) Call(ctx context.Context, path string, params map[string]string) (interface{}, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL for %s: %w", path, err)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxy call %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("proxy call %s read failed: %w", path, err)
	}

	var result interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("proxy call %s returned invalid JSON: %w", path, err)
	}
	return result, nil
}
