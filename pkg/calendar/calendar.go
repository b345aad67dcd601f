// Package calendar is a mock appointment calendar. It invents slot
// availability for any date and confirms every booking it is given.
package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rhuss/clinicdesk/pkg/api"
	"github.com/rhuss/clinicdesk/pkg/debug"
	"github.com/rhuss/clinicdesk/pkg/observability"
)

// Working hours.
const (
	dayStart = 9 * time.Hour
	dayEnd   = 17 * time.Hour
)

// availableProbability is the chance that a generated slot is open.
const availableProbability = 0.8

var durations = map[string]time.Duration{
	api.AppointmentGeneralConsultation:    30 * time.Minute,
	api.AppointmentFollowup:               15 * time.Minute,
	api.AppointmentPhysicalExam:           45 * time.Minute,
	api.AppointmentSpecialistConsultation: 60 * time.Minute,
}

// Duration returns the length of an appointment type.
func Duration(appointmentType string) (time.Duration, bool) {
	d, ok := durations[appointmentType]
	return d, ok
}

// Scheduler looks up availability.
type Scheduler interface {
	Availability(ctx context.Context, date, appointmentType string) (api.AvailabilityResponse, error)
}

// Booker confirms appointments.
type Booker interface {
	Book(ctx context.Context, req api.BookingRequest) (api.BookingResponse, error)
}

// Random is the randomness the calendar draws from. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
	IntN(n int) int
}

// Calendar serves availability and bookings from a random source.
type Calendar struct {
	mu     sync.Mutex
	rng    Random
	logger *slog.Logger
}

// Compile-time checks.
var (
	_ Scheduler = (*Calendar)(nil)
	_ Booker    = (*Calendar)(nil)
)

// New creates a calendar drawing from rng. A nil rng is seeded from the clock.
func New(rng Random, logger *slog.Logger) *Calendar {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Calendar{rng: rng, logger: logger}
}

// NewSeeded creates a calendar whose output is fixed by seed. A zero seed
// behaves like New with a nil source.
func NewSeeded(seed int64, logger *slog.Logger) *Calendar {
	if seed == 0 {
		return New(nil, logger)
	}
	return New(rand.New(rand.NewPCG(uint64(seed), uint64(seed))), logger)
}

// Availability returns the slots of date for appointmentType. The request
// must pass api.ValidateAvailabilityQuery; failures are *api.APIError.
func (c *Calendar) Availability(_ context.Context, date, appointmentType string) (api.AvailabilityResponse, error) {
	if apiErr := api.ValidateAvailabilityQuery(date, appointmentType); apiErr != nil {
		return api.AvailabilityResponse{}, apiErr
	}
	duration, _ := Duration(appointmentType)

	c.mu.Lock()
	slots := GenerateSlots(c.rng, duration)
	c.mu.Unlock()

	debug.Log("calendar", "availability", "date", date, "type", appointmentType, "slots", len(slots))
	return api.AvailabilityResponse{
		Date:            date,
		AppointmentType: appointmentType,
		AvailableSlots:  slots,
	}, nil
}

// Book confirms req. Invalid requests return *api.APIError.
func (c *Calendar) Book(_ context.Context, req api.BookingRequest) (api.BookingResponse, error) {
	if apiErr := api.ValidateBookingRequest(&req); apiErr != nil {
		return api.BookingResponse{}, apiErr
	}

	c.mu.Lock()
	bookingID := api.NewBookingID(c.rng)
	code := api.NewConfirmationCode(c.rng)
	c.mu.Unlock()

	observability.BookingsTotal.WithLabelValues(req.AppointmentType).Inc()
	c.logger.Info("appointment booked",
		"booking_id", bookingID, "type", req.AppointmentType, "date", req.Date, "start_time", req.StartTime)

	return api.BookingResponse{
		BookingID:        bookingID,
		Status:           api.BookingStatusConfirmed,
		ConfirmationCode: code,
		Details: api.BookingDetails{
			AppointmentType: req.AppointmentType,
			Date:            req.Date,
			StartTime:       req.StartTime,
			Patient:         req.Patient,
			Reason:          req.Reason,
		},
	}, nil
}

// GenerateSlots splits the working day into back-to-back slots of the given
// duration. A slot is emitted only if it ends by closing time. Each slot is
// open with probability 0.8.
func GenerateSlots(rng Random, duration time.Duration) []api.AvailabilitySlot {
	if duration <= 0 {
		return []api.AvailabilitySlot{}
	}
	slots := make([]api.AvailabilitySlot, 0, int((dayEnd-dayStart)/duration))
	for start := dayStart; start+duration <= dayEnd; start += duration {
		slots = append(slots, api.AvailabilitySlot{
			StartTime: clock(start),
			EndTime:   clock(start + duration),
			Available: rng.Float64() < availableProbability,
		})
	}
	return slots
}

// clock formats an offset from midnight as HH:MM.
func clock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
