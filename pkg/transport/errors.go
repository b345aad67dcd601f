package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rhuss/clinicdesk/pkg/api"
)

// WriteErrorResponse writes a JSON error response using the ErrorResponse
// wrapper format from pkg/api. It sets the Content-Type header and writes
// the HTTP status code.
func WriteErrorResponse(w http.ResponseWriter, apiErr *api.APIError, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: apiErr})
}

// WriteAPIError writes an APIError response, deriving the HTTP status code
// from the error type.
func WriteAPIError(w http.ResponseWriter, apiErr *api.APIError) {
	WriteErrorResponse(w, apiErr, apiErr.HTTPStatus())
}

// WriteError writes err as an API error. Errors that are not *api.APIError
// are reported as a generic server error so internals do not leak.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		WriteAPIError(w, apiErr)
		return
	}
	WriteAPIError(w, api.NewServerError("internal server error"))
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
