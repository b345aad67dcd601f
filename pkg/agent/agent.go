// Package agent routes chat messages to FAQ answers, scheduling guidance or
// free conversation, and turns bookings into confirmation messages.
//
// The agent is stateless: each request carries the whole conversation and
// only its last message decides the route.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhuss/clinicdesk/pkg/api"
	"github.com/rhuss/clinicdesk/pkg/calendar"
	"github.com/rhuss/clinicdesk/pkg/debug"
	"github.com/rhuss/clinicdesk/pkg/faq"
	"github.com/rhuss/clinicdesk/pkg/observability"
)

// Agent handles chat turns and booking confirmations.
type Agent struct {
	answerer  faq.Answerer
	booker    calendar.Booker
	responder Responder
	logger    *slog.Logger
}

// New creates an Agent. A nil responder uses MockResponder.
func New(answerer faq.Answerer, booker calendar.Booker, responder Responder, logger *slog.Logger) *Agent {
	if responder == nil {
		responder = MockResponder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		answerer:  answerer,
		booker:    booker,
		responder: responder,
		logger:    logger,
	}
}

// HandleChat answers the last message of req. An empty conversation gets a
// greeting with no state; otherwise State carries the detected intent.
func (a *Agent) HandleChat(ctx context.Context, req api.ChatRequest) api.ChatResponse {
	if len(req.Messages) == 0 {
		return api.ChatResponse{Reply: greeting}
	}

	last := req.Messages[len(req.Messages)-1].Content
	intent := DetectIntent(last)
	observability.IntentsTotal.WithLabelValues(string(intent)).Inc()
	debug.Log("agent", "intent detected", "intent", string(intent), "messages", len(req.Messages))

	system := api.Message{Role: api.RoleSystem, Content: SystemPrompt}
	var conversation []api.Message

	switch intent {
	case IntentFAQ:
		answer := a.answerer.Answer(ctx, last)
		conversation = []api.Message{
			system,
			{Role: api.RoleUser, Content: last},
			{Role: api.RoleAssistant, Content: answer},
			{Role: api.RoleUser, Content: rephraseInstruction},
		}
	case IntentScheduling:
		conversation = []api.Message{
			system,
			{Role: api.RoleUser, Content: last},
			{Role: api.RoleAssistant, Content: schedulingGuidance},
		}
	default:
		conversation = make([]api.Message, 0, len(req.Messages)+1)
		conversation = append(conversation, system)
		conversation = append(conversation, req.Messages...)
	}

	reply := a.responder.Respond(ctx, conversation)
	return api.ChatResponse{
		Reply: reply,
		State: map[string]any{"intent": string(intent)},
	}
}

// FinalizeBooking books req and returns the confirmation message. Booking
// failures are returned unchanged.
func (a *Agent) FinalizeBooking(ctx context.Context, req api.BookingRequest) (api.ChatResponse, error) {
	booking, err := a.booker.Book(ctx, req)
	if err != nil {
		return api.ChatResponse{}, err
	}

	d := booking.Details
	a.logger.Info("booking finalized", "booking_id", booking.BookingID, "type", d.AppointmentType)
	return api.ChatResponse{
		Reply: fmt.Sprintf(bookingConfirmation,
			d.AppointmentType, d.Date, d.StartTime, booking.ConfirmationCode, d.Patient.Email),
		State: map[string]any{"intent": api.IntentBooked},
	}, nil
}
