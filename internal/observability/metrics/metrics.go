package metrics

import "github.com/prometheus/client_golang/prometheus"

// LandingMetrics exposes counters/histograms for the assessment and
// lead-capture flows.
type LandingMetrics struct {
	assessmentsTotal  *prometheus.CounterVec
	riskScore         prometheus.Histogram
	saveFailures      *prometheus.CounterVec
	strategyCalls     *prometheus.CounterVec
	outboxDeliveries  *prometheus.CounterVec
	widgetRelocations *prometheus.CounterVec
}

func NewLandingMetrics(reg prometheus.Registerer) *LandingMetrics {
	m := &LandingMetrics{
		assessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nova",
			Subsystem: "assessment",
			Name:      "completed_total",
			Help:      "Completed risk assessments by risk level",
		}, []string{"risk_level"}),
		riskScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nova",
			Subsystem: "assessment",
			Name:      "risk_score",
			Help:      "Distribution of computed risk scores",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		saveFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nova",
			Subsystem: "assessment",
			Name:      "save_failures_total",
			Help:      "Assessment records that failed to persist",
		}, []string{"stage"}),
		strategyCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nova",
			Subsystem: "leads",
			Name:      "strategy_call_submissions_total",
			Help:      "Demo booking submissions by outcome",
		}, []string{"outcome"}),
		outboxDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nova",
			Subsystem: "events",
			Name:      "outbox_deliveries_total",
			Help:      "Outbox delivery attempts by event type and outcome",
		}, []string{"type", "outcome"}),
		widgetRelocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nova",
			Subsystem: "widget",
			Name:      "relocation_ticks_total",
			Help:      "Widget relocation poll ticks by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.assessmentsTotal, m.riskScore, m.saveFailures, m.strategyCalls, m.outboxDeliveries, m.widgetRelocations)
	return m
}

func (m *LandingMetrics) ObserveAssessment(riskLevel string, score int) {
	if m == nil {
		return
	}
	m.assessmentsTotal.WithLabelValues(riskLevel).Inc()
	m.riskScore.Observe(float64(score))
}

// ObserveSaveFailure counts a failed write; stage is "record" or "outbox".
func (m *LandingMetrics) ObserveSaveFailure(stage string) {
	if m == nil {
		return
	}
	m.saveFailures.WithLabelValues(stage).Inc()
}

func (m *LandingMetrics) ObserveStrategyCall(outcome string) {
	if m == nil {
		return
	}
	m.strategyCalls.WithLabelValues(outcome).Inc()
}

func (m *LandingMetrics) ObserveOutboxDelivery(eventType string, delivered bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	if delivered {
		outcome = "delivered"
	}
	m.outboxDeliveries.WithLabelValues(eventType, outcome).Inc()
}

// ObserveOutboxDeadLetter counts an entry that will not be retried again.
func (m *LandingMetrics) ObserveOutboxDeadLetter(eventType string) {
	if m == nil {
		return
	}
	m.outboxDeliveries.WithLabelValues(eventType, "dead_lettered").Inc()
}

func (m *LandingMetrics) ObserveWidgetTick(result string) {
	if m == nil {
		return
	}
	m.widgetRelocations.WithLabelValues(result).Inc()
}
