package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the claims module.
type Metrics struct {
	// Member and history lookups by source
	FetchLatency *prometheus.HistogramVec

	// Decisions by type
	Decisions *prometheus.CounterVec

	ApprovedAmount prometheus.Histogram
	FraudRisk      prometheus.Histogram

	// Whole adjudication including lookups and persistence
	AdjudicateLatency prometheus.Histogram

	LeadsCaptured prometheus.Counter
	AuditFailures *prometheus.CounterVec
}

// New creates a Metrics instance with all claims metrics registered.
func New() *Metrics {
	return &Metrics{
		FetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adjudicator_claims_fetch_duration_seconds",
			Help:    "Duration of member and claim history lookups by source",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"source"}), // source: "member", "history"

		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "adjudicator_claims_decisions_total",
			Help: "Total adjudication decisions by type",
		}, []string{"decision"}),

		ApprovedAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "adjudicator_claims_approved_amount_rupees",
			Help:    "Approved amount per paid claim",
			Buckets: []float64{250, 500, 1000, 2000, 3000, 4000, 5000},
		}),

		FraudRisk: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "adjudicator_claims_fraud_risk",
			Help:    "Fraud risk score per member claim",
			Buckets: []float64{0, 0.15, 0.25, 0.35, 0.5, 0.75, 1},
		}),

		AdjudicateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "adjudicator_claims_adjudicate_duration_seconds",
			Help:    "Duration of a full claim adjudication",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		LeadsCaptured: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adjudicator_claims_leads_captured_total",
			Help: "Total leads captured from non-member previews",
		}),

		AuditFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "adjudicator_claims_audit_failures_total",
			Help: "Best-effort audit events that could not be emitted",
		}, []string{"action"}),
	}
}

// ObserveFetchLatency records how long a lookup took.
func (m *Metrics) ObserveFetchLatency(source string, d time.Duration) {
	if m != nil {
		m.FetchLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementDecision records a decision outcome.
func (m *Metrics) IncrementDecision(decision string) {
	if m != nil {
		m.Decisions.WithLabelValues(decision).Inc()
	}
}

func (m *Metrics) ObserveApprovedAmount(amount float64) {
	if m != nil {
		m.ApprovedAmount.Observe(amount)
	}
}

func (m *Metrics) ObserveFraudRisk(score float64) {
	if m != nil {
		m.FraudRisk.Observe(score)
	}
}

func (m *Metrics) ObserveAdjudicateLatency(d time.Duration) {
	if m != nil {
		m.AdjudicateLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementLeadsCaptured() {
	if m != nil {
		m.LeadsCaptured.Inc()
	}
}

func (m *Metrics) IncrementAuditFailure(action string) {
	if m != nil {
		m.AuditFailures.WithLabelValues(action).Inc()
	}
}
