package openaicompat

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rhuss/clinicdesk/pkg/api"
)

// statusMessages are used when the backend's error body carries no message.
var statusMessages = map[int]string{
	http.StatusBadRequest:      "backend rejected the request",
	http.StatusUnauthorized:    "backend authentication failed",
	http.StatusForbidden:       "backend authentication failed",
	http.StatusNotFound:        "backend model or endpoint not found",
	http.StatusTooManyRequests: "backend rate limit exceeded",
}

// MapHTTPError converts a non-2xx backend response into an APIError. 429
// maps to too_many_requests, every other status to upstream_error. The code
// carries the backend status.
func MapHTTPError(resp *http.Response) *api.APIError {
	message := ExtractErrorMessage(resp.Body)
	if message == "" {
		message = statusMessages[resp.StatusCode]
	}
	if message == "" {
		kind := "unexpected backend error"
		if resp.StatusCode >= http.StatusInternalServerError {
			kind = "backend server error"
		}
		message = fmt.Sprintf("%s (HTTP %d)", kind, resp.StatusCode)
	}

	apiErr := api.NewUpstreamError(message)
	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr = api.NewTooManyRequestsError(message)
	}
	apiErr.Code = "backend_" + strconv.Itoa(resp.StatusCode)
	return apiErr
}

// MapNetworkError converts a network-level error (connection refused, timeout,
// DNS resolution failure) into an APIError with a descriptive message.
func MapNetworkError(err error) *api.APIError {
	return api.NewUpstreamError(fmt.Sprintf("backend connection error: %s", err.Error()))
}

// ExtractErrorMessage tries to parse the response body as a ChatErrorResponse
// and returns the error message if found.
func ExtractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp ChatErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}

	return ""
}
