// Package remote calls an analytical engine over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"dataset-artifact-service/internal/config"
	"dataset-artifact-service/internal/core/domain"
	output "dataset-artifact-service/internal/core/ports/output"
)

type client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient returns a Processor that POSTs each request as JSON to
// <cfg.URL>/process.
func NewClient(cfg *config.EngineConfig) output.Processor {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: cfg.URL,
	}
}

func (c *client) Process(ctx context.Context, req output.ProcessRequest) (*output.ProcessResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode engine request: %w", err)
	}

	url := c.baseURL + "/process"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create engine request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	log.WithField("url", url).Debug("calling remote engine")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("engine returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out output.ProcessResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode engine response: %w", err)
	}
	return &out, nil
}
