package assessment

import "errors"

var (
	// ErrClinicNameRequired blocks leaving the first step without a clinic name.
	ErrClinicNameRequired = errors.New("clinic name is required")

	// ErrSequenceCompleted is returned when a finished questionnaire is touched again.
	ErrSequenceCompleted = errors.New("assessment already completed")

	// ErrUnknownField is returned for a field the questionnaire does not have.
	ErrUnknownField = errors.New("unknown assessment field")

	// ErrInvalidFieldValue is returned when a value has the wrong type for its field.
	ErrInvalidFieldValue = errors.New("invalid value for assessment field")

	// ErrSessionNotFound is returned when a session id is unknown or expired.
	ErrSessionNotFound = errors.New("assessment session not found")

	// ErrNotCompleted is returned when results are requested before the last step.
	ErrNotCompleted = errors.New("assessment not completed")
)

// ErrNotOnAssessment is returned when the questionnaire is touched while the
// session is on another view.
var ErrNotOnAssessment = errors.New("session is not on the assessment view")
