package leads

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/novavoice/nova-voice/internal/observability/metrics"
	"github.com/novavoice/nova-voice/internal/site"
	"github.com/novavoice/nova-voice/pkg/logging"
)

var leadsTracer = otel.Tracer("nova.internal.leads")

// EventTypeRequested is the outbox event recorded for every saved strategy call.
const EventTypeRequested = "strategy_call.requested"

// RequestedEvent is the outbox payload for EventTypeRequested.
type RequestedEvent struct {
	Lead *Lead `json:"lead"`
}

// EventRecorder queues an outbox event.
type EventRecorder interface {
	Insert(ctx context.Context, eventType string, payload any) (uuid.UUID, error)
}

// Service validates and stores strategy-call requests.
type Service struct {
	repo    Repository
	form    site.DemoForm
	events  EventRecorder
	metrics *metrics.LandingMetrics
	logger  *logging.Logger
}

func NewService(repo Repository, form site.DemoForm, logger *logging.Logger) *Service {
	if repo == nil {
		panic("leads: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, form: form, logger: logger}
}

func (s *Service) WithEvents(rec EventRecorder) *Service {
	s.events = rec
	return s
}

func (s *Service) WithMetrics(m *metrics.LandingMetrics) *Service {
	s.metrics = m
	return s
}

// Create validates req and saves it in a single attempt. An outbox failure
// is logged but does not fail the request.
func (s *Service) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	ctx, span := leadsTracer.Start(ctx, "leads.create")
	defer span.End()

	if err := req.Validate(s.form); err != nil {
		s.metrics.ObserveStrategyCall("invalid")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("nova.calendar_system", req.CalendarSystem),
		attribute.String("nova.patient_volume", req.PatientVolume),
	)

	lead, err := s.repo.Create(ctx, req)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveStrategyCall("failed")
		s.logger.Error("failed to save strategy call", "error", err, "email", req.Email)
		return nil, fmt.Errorf("leads: create strategy call: %w", err)
	}
	s.metrics.ObserveStrategyCall("success")
	s.logger.Info("strategy call requested", "id", lead.ID, "calendar_system", lead.CalendarSystem)

	if s.events != nil {
		if _, err := s.events.Insert(ctx, EventTypeRequested, RequestedEvent{Lead: lead}); err != nil {
			span.RecordError(err)
			s.logger.Error("failed to queue strategy call event", "error", err, "id", lead.ID)
		}
	}
	return lead, nil
}
