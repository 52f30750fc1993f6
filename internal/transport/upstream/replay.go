// Package upstream implements the one external HTTP call the service
// makes: triggering the upstream's replay-open-orders contract on boot
// (SPEC_FULL.md §4.7).
package upstream

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPReplaySource implements clob.ReplaySource by POSTing to a
// configured upstream base URL. The wire contract of that endpoint is
// out of scope here (§1); only "2xx means replay happened" is assumed.
type HTTPReplaySource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPReplaySource(baseURL string) *HTTPReplaySource {
	return &HTTPReplaySource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (h *HTTPReplaySource) TriggerReplay(ctx context.Context) error {
	url := h.baseURL + "/replay"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("upstream: build replay request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("upstream: replay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("upstream: replay returned status %d", resp.StatusCode)
	}
	return nil
}
