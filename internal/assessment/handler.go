package assessment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/novavoice/nova-voice/internal/site"
	"github.com/novavoice/nova-voice/pkg/logging"
)

// Handler serves the assessment endpoints.
type Handler struct {
	service  *Service
	sessions *Sessions
	logger   *logging.Logger
}

func NewHandler(service *Service, sessions *Sessions, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, sessions: sessions, logger: logger}
}

// AssessmentResponse is returned when a questionnaire is scored.
type AssessmentResponse struct {
	Result     Result     `json:"result"`
	Factors    []Factor   `json:"factors"`
	Projection Projection `json:"projection"`
}

// ProjectionRequest asks for the slider view at one miss rate.
type ProjectionRequest struct {
	Input    Input `json:"input"`
	MissRate int   `json:"miss_rate"`
}

type missRateRequest struct {
	MissRate int `json:"miss_rate"`
}

type sessionResponse struct {
	*Session
	Step       Step        `json:"step"`
	Field      Field       `json:"field,omitempty"`
	CanAdvance bool        `json:"can_advance"`
	Projection *Projection `json:"projection,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Submit handles POST /api/assessments with a finalized Input.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	in := DefaultInput()
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if in.ClinicName == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: ErrClinicNameRequired.Error()})
		return
	}

	res := h.service.Complete(r.Context(), in)
	writeJSON(w, http.StatusOK, AssessmentResponse{
		Result:     res,
		Factors:    Breakdown(in),
		Projection: NewSlider(in, res).Projection(),
	})
}

// Project handles POST /api/assessments/projection.
func (h *Handler) Project(w http.ResponseWriter, r *http.Request) {
	req := ProjectionRequest{Input: DefaultInput()}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, Project(req.Input, ClampDisplayMissRate(req.MissRate)))
}

// StartSession handles POST /api/assessments/sessions.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Start(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionResponse(s))
}

// GetSession handles GET /api/assessments/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, s, err)
}

// UpdateFields handles PATCH /api/assessments/sessions/{id}/fields with a
// JSON object of field name to value.
func (h *Handler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	values := make(map[Field]any, len(raw))
	for k, v := range raw {
		values[Field(k)] = v
	}
	s, err := h.sessions.UpdateFields(r.Context(), chi.URLParam(r, "id"), values)
	h.respond(w, s, err)
}

// Advance handles POST /api/assessments/sessions/{id}/advance.
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Advance(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, s, err)
}

// Retreat handles POST /api/assessments/sessions/{id}/retreat.
func (h *Handler) Retreat(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Retreat(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, s, err)
}

// SetMissRate handles PUT /api/assessments/sessions/{id}/miss-rate.
func (h *Handler) SetMissRate(w http.ResponseWriter, r *http.Request) {
	var req missRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s, err := h.sessions.SetMissRate(r.Context(), chi.URLParam(r, "id"), req.MissRate)
	h.respond(w, s, err)
}

// Restart handles POST /api/assessments/sessions/{id}/restart.
func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Restart(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, s, err)
}

// Begin handles POST /api/assessments/sessions/{id}/start.
func (h *Handler) Begin(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Begin(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, s, err)
}

func (h *Handler) respond(w http.ResponseWriter, s *Session, err error) {
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(s))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrUnknownField), errors.Is(err, ErrInvalidFieldValue):
		status = http.StatusBadRequest
	case errors.Is(err, ErrClinicNameRequired),
		errors.Is(err, ErrSequenceCompleted),
		errors.Is(err, ErrNotOnAssessment),
		errors.Is(err, ErrNotCompleted),
		errors.Is(err, site.ErrInvalidTransition):
		status = http.StatusConflict
	default:
		h.logger.Error("assessment session request failed", "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func newSessionResponse(s *Session) sessionResponse {
	seq := RestoreSequencer(s.Sequence, nil)
	resp := sessionResponse{
		Session:    s,
		Step:       seq.Step(),
		CanAdvance: s.View == site.ViewAssessment && seq.CanAdvance(),
	}
	if s.View == site.ViewAssessment {
		resp.Field, _ = FieldForStep(seq.Step())
	}
	if p, ok := s.Projection(); ok {
		resp.Projection = &p
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
