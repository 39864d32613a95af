package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestLandingMetricsObserve(t *testing.T) {
	m := NewLandingMetrics(prometheus.NewRegistry())
	m.ObserveAssessment("HIGH", 100)
	m.ObserveAssessment("HIGH", 70)
	m.ObserveAssessment("LOW", 0)
	m.ObserveSaveFailure("record")
	m.ObserveStrategyCall("success")
	m.ObserveOutboxDelivery("assessment.completed", true)
	m.ObserveOutboxDelivery("assessment.completed", false)
	m.ObserveWidgetTick("relocated")

	if got := counterValue(t, m.assessmentsTotal.WithLabelValues("HIGH")); got != 2 {
		t.Fatalf("HIGH assessments = %v, want 2", got)
	}
	if got := counterValue(t, m.saveFailures.WithLabelValues("record")); got != 1 {
		t.Fatalf("save failures = %v, want 1", got)
	}
	if got := counterValue(t, m.outboxDeliveries.WithLabelValues("assessment.completed", "failed")); got != 1 {
		t.Fatalf("failed deliveries = %v, want 1", got)
	}

	var h dto.Metric
	if err := m.riskScore.Write(&h); err != nil {
		t.Fatalf("write histogram: %v", err)
	}
	if h.GetHistogram().GetSampleCount() != 3 || h.GetHistogram().GetSampleSum() != 170 {
		t.Fatalf("unexpected histogram %v", h.GetHistogram())
	}
}

func TestLandingMetricsDefaultRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	prev := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = reg
	defer func() { prometheus.DefaultRegisterer = prev }()

	m := NewLandingMetrics(nil)
	m.ObserveStrategyCall("failed")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "nova_leads_strategy_call_submissions_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected strategy call counter on the default registerer")
	}
}

func TestLandingMetricsNilSafe(t *testing.T) {
	var m *LandingMetrics
	m.ObserveAssessment("LOW", 10)
	m.ObserveSaveFailure("outbox")
	m.ObserveStrategyCall("success")
	m.ObserveOutboxDelivery("strategy_call.requested", true)
	m.ObserveWidgetTick("idle")
}
