package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records escrow confirmation and capture outcomes.
type SettlementMetrics struct {
	confirmations  *prometheus.CounterVec
	captures       prometheus.Counter
	captureFailure prometheus.Counter
	intentsCreated prometheus.Counter
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	confirmations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_confirmations_total",
		Help: "Delivery confirmations recorded, labelled by party role.",
	}, []string{"role"})
	captures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "escrow_captures_total",
		Help: "Successful escrow captures (including already-captured retries).",
	})
	captureFailure := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "escrow_capture_failures_total",
		Help: "Escrow capture attempts that failed.",
	})
	intentsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_intents_created_total",
		Help: "Escrow payment intents opened with the processor.",
	})
	reg.MustRegister(confirmations, captures, captureFailure, intentsCreated)
	return &SettlementMetrics{
		confirmations:  confirmations,
		captures:       captures,
		captureFailure: captureFailure,
		intentsCreated: intentsCreated,
	}
}

// IncConfirmation counts one recorded confirmation for the given role.
func (m *SettlementMetrics) IncConfirmation(role string) {
	if m == nil || m.confirmations == nil {
		return
	}
	if role == "" {
		role = "unknown"
	}
	m.confirmations.WithLabelValues(role).Inc()
}

// IncCapture counts one effective capture.
func (m *SettlementMetrics) IncCapture() {
	if m == nil || m.captures == nil {
		return
	}
	m.captures.Inc()
}

// IncCaptureFailure counts one failed capture attempt.
func (m *SettlementMetrics) IncCaptureFailure() {
	if m == nil || m.captureFailure == nil {
		return
	}
	m.captureFailure.Inc()
}

// IncIntentCreated counts one opened payment intent.
func (m *SettlementMetrics) IncIntentCreated() {
	if m == nil || m.intentsCreated == nil {
		return
	}
	m.intentsCreated.Inc()
}
