// Package transport provides the HTTP middleware chain and error writing
// shared by the clinicdesk HTTP server.
//
// # Middleware
//
// Middleware wraps an http.Handler with cross-cutting behavior. Built-in
// middleware provides panic recovery, request ID assignment (X-Request-ID,
// generated with google/uuid when absent), structured request logging via
// log/slog and CORS headers for the browser frontend.
//
// # Errors
//
// Every error response uses the JSON envelope
//
//	{"error": {"type": "...", "code": "...", "param": "...", "message": "..."}}
//
// written by WriteAPIError with the status derived from the error type.
package transport
