package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/novavoice/nova-voice/pkg/logging"
)

// Handler handles HTTP requests for strategy calls
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new strategy-call handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// SubmitResponse mirrors the form state after a submit.
type SubmitResponse struct {
	State FormState `json:"state"`
	Lead  *Lead     `json:"lead,omitempty"`
	Error string    `json:"error,omitempty"`
}

// CreateStrategyCall handles POST /api/strategy-calls requests
func (h *Handler) CreateStrategyCall(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	form := NewForm()
	lead, err := form.Submit(r.Context(), func(ctx context.Context) (*Lead, error) {
		return h.service.Create(ctx, &req)
	})
	if err != nil {
		if IsValidation(err) {
			writeJSON(w, http.StatusBadRequest, SubmitResponse{State: form.State(), Error: validationMessage(err)})
			return
		}
		writeJSON(w, http.StatusBadGateway, SubmitResponse{State: form.State(), Error: ErrSubmissionFailed.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, SubmitResponse{State: form.State(), Lead: lead})
}

func validationMessage(err error) string {
	for _, target := range []error{ErrInvalidName, ErrInvalidEmail, ErrUnknownCalendarSystem, ErrUnknownPatientVolume} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
