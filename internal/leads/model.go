package leads

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/novavoice/nova-voice/internal/site"
)

// Status of a strategy-call request. New rows are always pending.
type Status string

const StatusPending Status = "pending"

// Lead represents a strategy-call request from the landing page form
type Lead struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	CalendarSystem string    `json:"calendar_system"`
	PatientVolume  string    `json:"patient_volume"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateLeadRequest represents the request body for a strategy call
type CreateLeadRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	CalendarSystem string `json:"calendar_system"`
	PatientVolume  string `json:"patient_volume"`
}

// Validate checks the required fields and the select values against form.
// Empty selects take the first option, as an untouched <select> would.
func (r *CreateLeadRequest) Validate(form site.DemoForm) error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if r.Name == "" {
		return ErrInvalidName
	}
	if r.Email == "" {
		return ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, r.Email)
	}

	if r.CalendarSystem == "" && len(form.CalendarSystems) > 0 {
		r.CalendarSystem = form.CalendarSystems[0]
	}
	if !slices.Contains(form.CalendarSystems, r.CalendarSystem) {
		return fmt.Errorf("%w: %q", ErrUnknownCalendarSystem, r.CalendarSystem)
	}
	if r.PatientVolume == "" && len(form.PatientVolumes) > 0 {
		r.PatientVolume = form.PatientVolumes[0]
	}
	if !slices.Contains(form.PatientVolumes, r.PatientVolume) {
		return fmt.Errorf("%w: %q", ErrUnknownPatientVolume, r.PatientVolume)
	}
	return nil
}
