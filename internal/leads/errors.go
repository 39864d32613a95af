package leads

import "errors"

var (
	// ErrInvalidName is returned when the name is invalid
	ErrInvalidName = errors.New("name is required")

	// ErrInvalidEmail is returned when the email is missing or malformed
	ErrInvalidEmail = errors.New("a valid email is required")

	ErrUnknownCalendarSystem = errors.New("unknown calendar system")
	ErrUnknownPatientVolume  = errors.New("unknown patient volume")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrSubmissionFailed is the generic alert shown when a submit could not be saved.
	ErrSubmissionFailed = errors.New("we could not schedule your strategy call, please try again")

	ErrSubmissionInFlight = errors.New("submission already in progress")
	ErrAlreadySubmitted   = errors.New("form already submitted")
)

// IsValidation reports whether err came from request validation rather than storage.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrUnknownCalendarSystem) ||
		errors.Is(err, ErrUnknownPatientVolume)
}
