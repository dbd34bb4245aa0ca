// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Client is a thin wrapper that fixes a timeout for outbound calls to the
// extraction and pricing upstreams.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// PostJSON marshals payload and POSTs it with the JSON content type. The
// caller owns the response body.
func (c *Client) PostJSON(ctx context.Context, url string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
