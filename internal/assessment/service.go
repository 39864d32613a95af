package assessment

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/novavoice/nova-voice/internal/observability/metrics"
	"github.com/novavoice/nova-voice/pkg/logging"
)

var assessmentTracer = otel.Tracer("nova.internal.assessment")

// EventRecorder queues an outbox event. events.OutboxStore satisfies it.
type EventRecorder interface {
	Insert(ctx context.Context, eventType string, payload any) (uuid.UUID, error)
}

// Service scores completed questionnaires and saves them in the background.
type Service struct {
	writer  Writer
	events  EventRecorder
	metrics *metrics.LandingMetrics
	logger  *logging.Logger

	inflight sync.WaitGroup
}

// NewService constructs an assessment service. A nil writer disables saving.
func NewService(writer Writer, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{writer: writer, logger: logger}
}

func (s *Service) WithEvents(rec EventRecorder) *Service {
	s.events = rec
	return s
}

func (s *Service) WithMetrics(m *metrics.LandingMetrics) *Service {
	s.metrics = m
	return s
}

// Complete scores in and starts a single fire-and-forget save. The returned
// result never depends on whether the save succeeds.
func (s *Service) Complete(ctx context.Context, in Input) Result {
	res := Score(in)
	s.Record(ctx, in, res)
	return res
}

// Record starts the fire-and-forget save of an already scored result. Callers
// that persist their own state first use it once that write has succeeded.
func (s *Service) Record(ctx context.Context, in Input, res Result) {
	ctx, span := assessmentTracer.Start(ctx, "assessment.complete")
	defer span.End()

	span.SetAttributes(
		attribute.Int("nova.risk_score", res.RiskScore),
		attribute.String("nova.risk_level", string(res.RiskLevel)),
	)
	s.metrics.ObserveAssessment(string(res.RiskLevel), res.RiskScore)

	rec := NewRecord(in, res)
	s.logger.Info("assessment completed", "assessment_id", rec.ID, "clinic_name", rec.ClinicName,
		"risk_score", res.RiskScore, "risk_level", res.RiskLevel)
	s.saveAsync(context.WithoutCancel(ctx), rec, Breakdown(in))
}

// Wait blocks until in-flight saves finish. Used on shutdown.
func (s *Service) Wait() {
	s.inflight.Wait()
}

func (s *Service) saveAsync(ctx context.Context, rec *Record, factors []Factor) {
	if s.writer == nil {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.save(ctx, rec, factors)
	}()
}

func (s *Service) save(ctx context.Context, rec *Record, factors []Factor) {
	ctx, span := assessmentTracer.Start(ctx, "assessment.save", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("nova.assessment_id", rec.ID))

	if err := s.writer.Insert(ctx, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		s.metrics.ObserveSaveFailure("record")
		s.logger.Error("failed to save assessment", "error", err, "assessment_id", rec.ID, "clinic_name", rec.ClinicName)
		return
	}
	if s.events == nil {
		return
	}
	if _, err := s.events.Insert(ctx, EventTypeCompleted, CompletedEvent{Record: rec, Factors: factors}); err != nil {
		span.RecordError(err)
		s.metrics.ObserveSaveFailure("outbox")
		s.logger.Error("failed to queue assessment event", "error", err, "assessment_id", rec.ID)
	}
}
