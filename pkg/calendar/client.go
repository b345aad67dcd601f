package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rhuss/clinicdesk/pkg/api"
)

// Client talks to a calendar service over HTTP using the same JSON shapes
// the clinicdesk server exposes under /api/calendly.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Compile-time checks.
var (
	_ Scheduler = (*Client)(nil)
	_ Booker    = (*Client)(nil)
)

// NewClient creates a calendar client for baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Availability fetches the slots of date for appointmentType.
func (c *Client) Availability(ctx context.Context, date, appointmentType string) (api.AvailabilityResponse, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("appointment_type", appointmentType)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/calendly/availability?"+q.Encode(), nil)
	if err != nil {
		return api.AvailabilityResponse{}, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	var out api.AvailabilityResponse
	if err := c.do(httpReq, &out); err != nil {
		return api.AvailabilityResponse{}, err
	}
	return out, nil
}

// Book submits req to the booking endpoint.
func (c *Client) Book(ctx context.Context, req api.BookingRequest) (api.BookingResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return api.BookingResponse{}, api.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/calendly/book", bytes.NewReader(body))
	if err != nil {
		return api.BookingResponse{}, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var out api.BookingResponse
	if err := c.do(httpReq, &out); err != nil {
		return api.BookingResponse{}, err
	}
	return out, nil
}

// do sends req and decodes a 2xx body into out. Error responses carrying the
// JSON error envelope are returned as that *api.APIError; anything else
// becomes an upstream error.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return api.NewUpstreamError(fmt.Sprintf("calendar connection error: %s", err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapHTTPError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return api.NewUpstreamError(fmt.Sprintf("failed to parse calendar response: %s", err.Error()))
	}
	return nil
}

func mapHTTPError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope api.ErrorResponse
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return envelope.Error
	}
	return api.NewUpstreamError(fmt.Sprintf("calendar returned HTTP %d", resp.StatusCode))
}
