package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const requestTimeout = 10 * time.Second

// Client calls the downstream protected-resource API. It receives only a
// valid access credential string; everything about obtaining and caching
// that credential lives elsewhere.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a resource client for the given endpoint
func New(endpoint string) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Fetch calls the resource endpoint with the access credential and decodes
// the JSON response.
func (c *Client) Fetch(ctx context.Context, accessToken string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[resource.Fetch] http.NewRequestWithContext")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[resource.Fetch] request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("[resource.Fetch] resource API error: status %d", resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "[resource.Fetch] failed to decode response")
	}
	return payload, nil
}
