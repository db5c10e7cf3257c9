package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a client for the sentiment classification service. Each call
// is a single attempt; there are no retries at this boundary.
type Client struct {
	url        string
	httpClient *http.Client
}

// ClassifyRequest is the payload sent to the classification service.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// Result is the classification returned by the service.
type Result struct {
	Label       string  `json:"previsao"`
	Probability float64 `json:"probabilidade"`
}

// NewClient creates a new classification service client.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Classify sends a single text to the classification service. A
// transport failure, non-2xx status or undecodable body is returned as
// an error. A well-formed response carrying no label comes back as
// (nil, nil): the service answered but had nothing to say, and the
// caller decides what to substitute.
func (c *Client) Classify(ctx context.Context, text string) (*Result, error) {
	jsonData, err := json.Marshal(ClassifyRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sentiment service returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if len(bytes.TrimSpace(body)) == 0 || string(bytes.TrimSpace(body)) == "null" {
		return nil, nil
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if result.Label == "" {
		return nil, nil
	}

	return &result, nil
}
