package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/raphaelgruber/docchat-go/internal/metrics"
)

// Client talks to a running relay.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a relay client for the given base URL.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Stats fetches the relay's runtime statistics.
func (c *Client) Stats(ctx context.Context) (metrics.Snapshot, error) {
	var snap metrics.Snapshot
	body, err := c.get(ctx, PathStats)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(body, &snap); err != nil {
		return snap, fmt.Errorf("unmarshal stats: %w", err)
	}
	return snap, nil
}

// Health reports whether the relay answers its health check.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.get(ctx, PathHealth)
	return err
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
