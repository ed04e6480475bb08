// Package camera fetches compressed still frames from the companion's
// camera endpoint for the perception bridge.
package camera

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxFrameBytes bounds one still so a misbehaving endpoint cannot exhaust
// memory through the perception loop.
const maxFrameBytes = 4 << 20

type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient points the grabber at a still-frame endpoint that answers GET
// with one compressed image per request.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Grab captures one frame. Failures are per-tick: the caller drops the tick
// and waits for the next one.
func (c *Client) Grab(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build camera request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach camera endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("camera endpoint returned status %d", resp.StatusCode)
	}

	frame, err := io.ReadAll(io.LimitReader(resp.Body, maxFrameBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read camera frame: %w", err)
	}
	if len(frame) > maxFrameBytes {
		return nil, fmt.Errorf("camera frame exceeds %d bytes", maxFrameBytes)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("camera endpoint returned an empty frame")
	}

	return frame, nil
}
