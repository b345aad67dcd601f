package api

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Intents reported in ChatResponse.State.
const (
	IntentFAQ        = "FAQ"
	IntentScheduling = "SCHEDULING"
	IntentSmallTalk  = "SMALLTALK"
	IntentBooked     = "BOOKED"
)

// Appointment types offered by the clinic.
const (
	AppointmentGeneralConsultation    = "general_consultation"
	AppointmentFollowup               = "followup"
	AppointmentPhysicalExam           = "physical_exam"
	AppointmentSpecialistConsultation = "specialist_consultation"
)

// AppointmentTypes lists every accepted appointment type.
var AppointmentTypes = []string{
	AppointmentGeneralConsultation,
	AppointmentFollowup,
	AppointmentPhysicalExam,
	AppointmentSpecialistConsultation,
}

// IsAppointmentType reports whether t is one of AppointmentTypes.
func IsAppointmentType(t string) bool {
	for _, known := range AppointmentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

// ChatRequest carries the conversation so far. The last message is the one
// being answered.
type ChatRequest struct {
	Messages []Message `json:"messages" validate:"dive"`
}

// ChatResponse is the assistant's reply. State, when present, holds
// {"intent": <IntentFAQ|IntentScheduling|IntentSmallTalk|IntentBooked>}.
type ChatResponse struct {
	Reply string         `json:"reply"`
	State map[string]any `json:"state"`
}

// AvailabilitySlot is one candidate appointment time. Times are "HH:MM".
type AvailabilitySlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

// AvailabilityResponse lists the slots of one day.
type AvailabilityResponse struct {
	Date            string             `json:"date"`
	AppointmentType string             `json:"appointment_type"`
	AvailableSlots  []AvailabilitySlot `json:"available_slots"`
}

// PatientInfo identifies the person booking.
type PatientInfo struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

// BookingRequest asks for an appointment. Date is "YYYY-MM-DD" and
// StartTime is "HH:MM".
type BookingRequest struct {
	AppointmentType string      `json:"appointment_type" validate:"required,appointment_type"`
	Date            string      `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime       string      `json:"start_time" validate:"required,datetime=15:04"`
	Patient         PatientInfo `json:"patient"`
	Reason          string      `json:"reason"`
}

// BookingDetails echoes the booked request.
type BookingDetails struct {
	AppointmentType string      `json:"appointment_type"`
	Date            string      `json:"date"`
	StartTime       string      `json:"start_time"`
	Patient         PatientInfo `json:"patient"`
	Reason          string      `json:"reason"`
}

// BookingResponse confirms a booking.
type BookingResponse struct {
	BookingID        string         `json:"booking_id"`
	Status           string         `json:"status"`
	ConfirmationCode string         `json:"confirmation_code"`
	Details          BookingDetails `json:"details"`
}

// BookingStatusConfirmed is the only status the mock calendar issues.
const BookingStatusConfirmed = "confirmed"
