package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPWorker dispatches a sub-task to an external worker service over
// HTTP: POST {"task": ..., "payload": ...} -> {"result": ...} or
// {"error": ...}. The per-call context carries the dispatch timeout; the
// client timeout here is only a backstop.
type HTTPWorker struct {
	name       string
	endpoint   string
	httpClient *http.Client
}

var _ Worker = (*HTTPWorker)(nil)

// NewHTTPWorker creates a worker bound to an endpoint.
func NewHTTPWorker(name, endpoint string) *HTTPWorker {
	return &HTTPWorker{
		name:     name,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// Name returns the worker's registry name.
func (w *HTTPWorker) Name() string { return w.name }

type invokeRequest struct {
	Task    string `json:"task"`
	Payload string `json:"payload"`
}

type invokeResponse struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Invoke calls the worker's /invoke endpoint.
func (w *HTTPWorker) Invoke(ctx context.Context, payload string) (string, error) {
	if w.endpoint == "" {
		return "", fmt.Errorf("worker %s has no endpoint configured", w.name)
	}

	body, err := json.Marshal(invokeRequest{Task: w.name, Payload: payload})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint+"/invoke", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call worker %s: %w", w.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read worker %s response: %w", w.name, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("worker %s returned %d: %s", w.name, resp.StatusCode, string(respBody))
	}

	var out invokeResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("failed to unmarshal worker %s response: %w", w.name, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("worker %s failed: %s", w.name, out.Error)
	}
	return out.Result, nil
}
