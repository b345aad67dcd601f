package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MaxMessages       int
	MaxMessageContent int
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxMessages:       200,
		MaxMessageContent: 32 * 1024,
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validatorInstance returns the shared validator. Field names in errors use
// the JSON tag so they match what clients send.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		if err := v.RegisterValidation("appointment_type", func(fl validator.FieldLevel) bool {
			return IsAppointmentType(fl.Field().String())
		}); err != nil {
			panic("registering appointment_type validation: " + err.Error())
		}
		validate = v
	})
	return validate
}

// ValidateChatRequest checks a ChatRequest. An empty message list is valid.
func ValidateChatRequest(req *ChatRequest, cfg ValidationConfig) *APIError {
	if cfg.MaxMessages > 0 && len(req.Messages) > cfg.MaxMessages {
		return NewInvalidRequestError("messages",
			fmt.Sprintf("messages exceeds maximum of %d", cfg.MaxMessages))
	}
	if cfg.MaxMessageContent > 0 {
		for i, m := range req.Messages {
			if len(m.Content) > cfg.MaxMessageContent {
				return NewInvalidRequestError(fmt.Sprintf("messages[%d].content", i),
					fmt.Sprintf("content exceeds maximum of %d bytes", cfg.MaxMessageContent))
			}
		}
	}
	return toAPIError(validatorInstance().Struct(req), "")
}

// ValidateBookingRequest checks a BookingRequest: known appointment type,
// YYYY-MM-DD date, HH:MM start time and complete patient details.
func ValidateBookingRequest(req *BookingRequest) *APIError {
	return toAPIError(validatorInstance().Struct(req), "")
}

// ValidateAvailabilityQuery checks the query parameters of an availability
// lookup.
func ValidateAvailabilityQuery(date, appointmentType string) *APIError {
	v := validatorInstance()
	if err := toAPIError(v.Var(date, "required,datetime=2006-01-02"), "date"); err != nil {
		return err
	}
	return toAPIError(v.Var(appointmentType, "required,appointment_type"), "appointment_type")
}

// toAPIError converts the first validation failure into an invalid_request
// error. param overrides the field path, for single-value checks.
func toAPIError(err error, param string) *APIError {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewServerError("validation failed: " + err.Error())
	}

	fe := verrs[0]
	if param == "" {
		param = fieldPath(fe.Namespace())
	}
	return NewInvalidRequestError(param, fieldMessage(param, fe))
}

// fieldPath drops the struct name from a validator namespace:
// "BookingRequest.patient.email" becomes "patient.email".
func fieldPath(ns string) string {
	_, rest, found := strings.Cut(ns, ".")
	if !found {
		return ns
	}
	return rest
}

func fieldMessage(param string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return param + " is required"
	case "email":
		return param + " must be a valid email address"
	case "datetime":
		return fmt.Sprintf("%s must match the format %s", param, datetimeHint(fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", param, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "appointment_type":
		return fmt.Sprintf("unsupported appointment type %q, must be one of: %s",
			fe.Value(), strings.Join(AppointmentTypes, ", "))
	default:
		return fmt.Sprintf("%s is invalid (%s)", param, fe.Tag())
	}
}

func datetimeHint(layout string) string {
	switch layout {
	case "2006-01-02":
		return "YYYY-MM-DD"
	case "15:04":
		return "HH:MM"
	default:
		return layout
	}
}
