package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestSettlementMetricsExportCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSettlementMetrics(reg)

	m.IncConfirmation("sender")
	m.IncConfirmation("sender")
	m.IncConfirmation("traveler")
	m.IncCapture()
	m.IncCaptureFailure()
	m.IncIntentCreated()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := counterValue(mfs, "delivery_confirmations_total", "role", "sender"); err != nil || got != 2 {
		t.Fatalf("sender confirmations: got %f err %v", got, err)
	}
	if got, err := counterValue(mfs, "delivery_confirmations_total", "role", "traveler"); err != nil || got != 1 {
		t.Fatalf("traveler confirmations: got %f err %v", got, err)
	}
	if got, err := counterValue(mfs, "escrow_captures_total", "", ""); err != nil || got != 1 {
		t.Fatalf("captures: got %f err %v", got, err)
	}
}

func TestSettlementMetricsNilSafe(t *testing.T) {
	var m *SettlementMetrics
	m.IncConfirmation("sender")
	m.IncCapture()
	m.IncCaptureFailure()
	m.IncIntentCreated()

	empty := NewSettlementMetrics(nil)
	empty.IncConfirmation("")
}

func counterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if label == "" {
				return metric.GetCounter().GetValue(), nil
			}
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric.GetCounter().GetValue(), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("metric %q (%s=%s) not found", name, label, value)
}
