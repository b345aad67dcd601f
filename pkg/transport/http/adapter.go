package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/clinicdesk/pkg/api"
	"github.com/rhuss/clinicdesk/pkg/calendar"
	"github.com/rhuss/clinicdesk/pkg/debug"
	"github.com/rhuss/clinicdesk/pkg/observability"
	"github.com/rhuss/clinicdesk/pkg/transport"
)

// serviceName is reported by the root status endpoint.
const serviceName = "Medical Scheduling Agent Backend"

// ChatHandler answers chat turns and finalizes bookings made through chat.
type ChatHandler interface {
	HandleChat(ctx context.Context, req api.ChatRequest) api.ChatResponse
	FinalizeBooking(ctx context.Context, req api.BookingRequest) (api.ChatResponse, error)
}

// CalendarService serves the availability and booking endpoints.
type CalendarService interface {
	calendar.Scheduler
	calendar.Booker
}

// ReadinessFunc reports whether the backend can serve chat traffic.
type ReadinessFunc func() bool

// Adapter serves the clinic chat and calendar API over HTTP.
type Adapter struct {
	chat     ChatHandler
	calendar CalendarService
	ready    ReadinessFunc
	mux      *http.ServeMux
	config   Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize int64
	Validation  api.ValidationConfig
	// MetricsPath exposes Prometheus metrics when non-empty.
	MetricsPath string
	CORSOrigins []string
	Logger      *slog.Logger
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize: 1 << 20,
		Validation:  api.DefaultValidationConfig(),
		MetricsPath: "/metrics",
		CORSOrigins: []string{"*"},
		Logger:      slog.Default(),
	}
}

// NewAdapter creates an HTTP adapter. ready may be nil, in which case the
// backend always reports ready.
func NewAdapter(chat ChatHandler, cal CalendarService, ready ReadinessFunc, cfg Config) *Adapter {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}

	a := &Adapter{
		chat:     chat,
		calendar: cal,
		ready:    ready,
		mux:      http.NewServeMux(),
		config:   cfg,
	}

	a.mux.HandleFunc("GET /{$}", a.handleRoot)
	a.mux.HandleFunc("GET /healthz", a.handleHealth)
	a.mux.HandleFunc("GET /readyz", a.handleReady)
	a.mux.HandleFunc("POST /api/chat", a.handleChat)
	a.mux.HandleFunc("POST /api/chat/book", a.handleChatBooking)
	a.mux.HandleFunc("GET /api/calendly/availability", a.handleAvailability)
	a.mux.HandleFunc("POST /api/calendly/book", a.handleBook)
	if cfg.MetricsPath != "" {
		a.mux.Handle("GET "+cfg.MetricsPath, promhttp.Handler())
	}

	return a
}

// Handler returns the http.Handler for this adapter with the full
// middleware chain applied. Metrics wrap the mux directly so the matched
// route pattern is visible to them.
func (a *Adapter) Handler() http.Handler {
	chain := transport.Chain(
		transport.RequestID(),
		transport.Logging(a.config.Logger),
		transport.Recovery(a.config.Logger),
		transport.CORS(a.config.CORSOrigins),
	)
	return chain(observability.MetricsMiddleware(a.mux))
}

func (a *Adapter) handleRoot(w http.ResponseWriter, _ *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": serviceName,
	})
}

func (a *Adapter) handleHealth(w http.ResponseWriter, _ *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *Adapter) handleReady(w http.ResponseWriter, _ *http.Request) {
	if a.ready != nil && !a.ready() {
		transport.WriteAPIError(w, api.NewUnavailableError("FAQ index is not loaded"))
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleChat handles POST /api/chat.
func (a *Adapter) handleChat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if !a.decode(w, r, &req) {
		return
	}
	if apiErr := api.ValidateChatRequest(&req, a.config.Validation); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	resp := a.chat.HandleChat(r.Context(), req)
	transport.WriteJSON(w, http.StatusOK, resp)
}

// handleChatBooking handles POST /api/chat/book.
func (a *Adapter) handleChatBooking(w http.ResponseWriter, r *http.Request) {
	var req api.BookingRequest
	if !a.decode(w, r, &req) {
		return
	}
	if apiErr := api.ValidateBookingRequest(&req); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	resp, err := a.chat.FinalizeBooking(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}

// handleAvailability handles GET /api/calendly/availability.
func (a *Adapter) handleAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, appointmentType := q.Get("date"), q.Get("appointment_type")
	if apiErr := api.ValidateAvailabilityQuery(date, appointmentType); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	resp, err := a.calendar.Availability(r.Context(), date, appointmentType)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}

// handleBook handles POST /api/calendly/book.
func (a *Adapter) handleBook(w http.ResponseWriter, r *http.Request) {
	var req api.BookingRequest
	if !a.decode(w, r, &req) {
		return
	}
	if apiErr := api.ValidateBookingRequest(&req); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	resp, err := a.calendar.Book(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}

// decode reads a JSON body into v. On failure it writes the error response
// and returns false.
func (a *Adapter) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
				http.StatusUnsupportedMediaType,
			)
			return false
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return false
		}
		transport.WriteAPIError(w, api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return false
	}
	return true
}

// writeError writes err as an API error, logging anything that is not
// already a client-facing error.
func (a *Adapter) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		a.config.Logger.Error("handler error",
			"request_id", transport.RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err)
	}
	debug.Log("transport", "error response", "path", r.URL.Path, "error", err.Error())
	transport.WriteError(w, err)
}
