package compliance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coastwatch-labs/catalog/internal/cdm"
	"github.com/coastwatch-labs/catalog/internal/utils"
)

// Engine runs a ruleset against a dataset and returns result forests by
// group name.
type Engine interface {
	Run(ctx context.Context, ds cdm.Dataset, ruleset string) (map[string][]Result, error)
}

// HTTPEngine delegates rule checks to a remote compliance service.
//
// Request:  POST {endpoint} {"url": "...", "checker": "ioos"}
// Response: {"ioos": [Result, ...]}
type HTTPEngine struct {
	endpoint string
	client   *http.Client
}

func NewHTTPEngine(endpoint string, timeout time.Duration) *HTTPEngine {
	return &HTTPEngine{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type checkRequest struct {
	URL     string `json:"url"`
	Checker string `json:"checker"`
}

func (e *HTTPEngine) Run(ctx context.Context, ds cdm.Dataset, ruleset string) (map[string][]Result, error) {
	body, err := json.Marshal(checkRequest{URL: ds.URL(), Checker: ruleset})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal check request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call compliance service: %w", err)
	}
	defer utils.DrainClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("compliance service returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var groups map[string][]Result
	if err := json.NewDecoder(resp.Body).Decode(&groups); err != nil {
		return nil, fmt.Errorf("failed to decode compliance results: %w", err)
	}
	return groups, nil
}
