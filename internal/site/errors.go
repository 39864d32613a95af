package site

import "errors"

var (
	// ErrInvalidTransition is returned when an event is not allowed from the current view.
	ErrInvalidTransition = errors.New("site: invalid view transition")

	// ErrUnknownBilling is returned for a billing period other than monthly or yearly.
	ErrUnknownBilling = errors.New("site: unknown billing period")
)
