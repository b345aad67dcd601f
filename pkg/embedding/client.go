package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rhuss/clinicdesk/pkg/debug"
)

// Client calls any OpenAI-compatible /v1/embeddings endpoint.
type Client struct {
	URL        string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// NewClient creates a client for an OpenAI-compatible embeddings endpoint.
// A zero timeout leaves the HTTP client without a deadline; callers then
// rely on the request context.
func NewClient(url, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		URL:        url,
		APIKey:     apiKey,
		Model:      model,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []embeddingData `json:"data"`
}

type embeddingData struct {
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

// Embed sends texts to the embeddings endpoint and returns the vectors in
// input order. Failures are returned as *RequestError so they can be
// classified.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	endpoint := c.URL
	if !strings.HasSuffix(endpoint, "/v1/embeddings") {
		endpoint = strings.TrimRight(endpoint, "/") + "/v1/embeddings"
	}

	body, err := json.Marshal(embeddingRequest{Input: texts, Model: c.Model})
	if err != nil {
		return nil, &RequestError{Message: "marshaling embedding request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &RequestError{Message: "creating embedding request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	debug.Log("embedding", "request", "url", endpoint, "model", c.Model, "texts", len(texts))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &RequestError{Message: "embedding request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Message: "reading embedding response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		debug.Raw("embedding", string(respBody))
		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("embedding API returned status %d: %s", resp.StatusCode, debug.Truncate(string(respBody), 200)),
		}
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, &RequestError{Message: "parsing embedding response", Err: err, Malformed: true}
	}

	if len(embResp.Data) != len(texts) {
		return nil, &RequestError{
			Message:   fmt.Sprintf("embedding response has %d vectors for %d inputs", len(embResp.Data), len(texts)),
			Malformed: true,
		}
	}

	vectors := make([][]float64, len(texts))
	for _, d := range embResp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, &RequestError{
				Message:   fmt.Sprintf("embedding response index %d out of range [0, %d)", d.Index, len(texts)),
				Malformed: true,
			}
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, &RequestError{Message: fmt.Sprintf("embedding response missing vector %d", i), Malformed: true}
		}
	}

	return vectors, nil
}
