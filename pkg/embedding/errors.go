package embedding

import (
	"errors"
	"net/http"
)

// RequestError describes a failed call to the embeddings endpoint.
type RequestError struct {
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	Message    string
	// Malformed marks a 200 response whose body could not be used.
	Malformed bool
	Err       error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Classify sorts an embedding failure into transient or permanent.
//
// Rejected credentials, other 4xx responses and unusable bodies are
// permanent. Timeouts, connection failures, 408, 429, 5xx and anything
// unrecognized are transient.
func Classify(err error) FailureClass {
	if err == nil {
		return FailureNone
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.Malformed:
			return FailurePermanent
		case reqErr.StatusCode == http.StatusRequestTimeout,
			reqErr.StatusCode == http.StatusTooManyRequests,
			reqErr.StatusCode >= http.StatusInternalServerError:
			return FailureTransient
		case reqErr.StatusCode >= http.StatusBadRequest:
			return FailurePermanent
		}
	}

	// Network errors, deadlines and anything else unrecognized.
	return FailureTransient
}
