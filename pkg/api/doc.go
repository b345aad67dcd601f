// Package api defines the wire types of the clinicdesk HTTP API.
//
// The types mirror the JSON bodies exchanged with the chat frontend and the
// mock scheduling endpoints:
//
//   - [ChatRequest] / [ChatResponse]: one conversational turn
//   - [AvailabilityResponse]: open slots for a date and appointment type
//   - [BookingRequest] / [BookingResponse]: confirmed appointment
//   - [APIError]: structured error with type, code, param, and message
//
// Request bodies are validated with go-playground/validator struct tags;
// failures are reported as *APIError values of type invalid_request.
package api
