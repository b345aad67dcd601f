package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rhuss/clinicdesk/pkg/api"
	"github.com/rhuss/clinicdesk/pkg/debug"
)

// Client performs HTTP requests against an OpenAI-compatible Chat Completions
// backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new Client for an OpenAI-compatible backend.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	// Normalize: remove trailing slash from base URL.
	baseURL = strings.TrimRight(baseURL, "/")

	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// Complete performs a non-streaming Chat Completions call.
func (c *Client) Complete(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	url := c.baseURL + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	debug.Log("agent", "chat completion request", "url", url, "model", req.Model, "messages", len(req.Messages))
	if debug.TraceIsEnabled("agent") {
		debug.Raw("agent", string(body))
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, MapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(httpResp)
	}

	var chatResp ChatCompletionResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&chatResp); err != nil {
		return nil, api.NewUpstreamError(fmt.Sprintf("failed to parse backend response: %s", err.Error()))
	}
	return &chatResp, nil
}

// CompleteText runs Complete and returns the content of the first choice.
// A response without choices or with empty content is an error.
func (c *Client) CompleteText(ctx context.Context, req *ChatCompletionRequest) (string, error) {
	resp, err := c.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", api.NewUpstreamError("backend returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", api.NewUpstreamError("backend returned empty content")
	}
	return text, nil
}
