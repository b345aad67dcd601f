package api

import (
	"fmt"
	"regexp"
)

const (
	bookingIDPrefix        = "APPT-"
	confirmationCodePrefix = "CONF-"
)

var (
	bookingIDPattern        = regexp.MustCompile(`^APPT-[1-9][0-9]{3}$`)
	confirmationCodePattern = regexp.MustCompile(`^CONF-[1-9][0-9]{5}$`)
)

// IntSource draws uniform integers in [0, n). *math/rand/v2.Rand satisfies it.
type IntSource interface {
	IntN(n int) int
}

// NewBookingID returns "APPT-" followed by a four-digit number in
// [1000, 9999].
func NewBookingID(src IntSource) string {
	return fmt.Sprintf("%s%d", bookingIDPrefix, 1000+src.IntN(9000))
}

// NewConfirmationCode returns "CONF-" followed by a six-digit number in
// [100000, 999999].
func NewConfirmationCode(src IntSource) string {
	return fmt.Sprintf("%s%d", confirmationCodePrefix, 100000+src.IntN(900000))
}

// ValidateBookingID reports whether id has the booking ID format.
func ValidateBookingID(id string) bool {
	return bookingIDPattern.MatchString(id)
}

// ValidateConfirmationCode reports whether code has the confirmation code format.
func ValidateConfirmationCode(code string) bool {
	return confirmationCodePattern.MatchString(code)
}
