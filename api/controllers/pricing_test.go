package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/carryconnect/carryconnect-backend/internal/pricing"
	"github.com/carryconnect/carryconnect-backend/pkg/logger"
)

type emptyRouteHistory struct{}

func (emptyRouteHistory) RecentRoutePrices(ctx context.Context, origin, destination string, limit int) ([]decimal.Decimal, error) {
	return nil, nil
}

func newTestEstimator(t *testing.T) *pricing.Estimator {
	t.Helper()
	est, err := pricing.NewEstimator(pricing.EstimatorParams{
		Config:  pricing.DefaultConfig(),
		History: emptyRouteHistory{},
		Logger:  logger.New(logger.Options{ServiceName: "pricing-test", Output: io.Discard}),
		Jitter:  func() float64 { return 0.5 },
	})
	if err != nil {
		t.Fatalf("estimator setup: %v", err)
	}
	return est
}

func TestPricingEstimateKnownRoute(t *testing.T) {
	handler := PricingEstimate(newTestEstimator(t), nil)

	body := `{"origin":"London","destination":"Paris","weight_kg":2,"urgency":"normal"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/estimate", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data pricing.EstimateResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.EstimatedPrice < 5 {
		t.Fatalf("expected estimate above floor got %v", envelope.Data.EstimatedPrice)
	}
	if envelope.Data.Details.DistanceKM <= 0 {
		t.Fatalf("expected resolved distance got %+v", envelope.Data.Details)
	}
}

func TestPricingEstimateRejectsMissingWeight(t *testing.T) {
	handler := PricingEstimate(newTestEstimator(t), nil)

	body := `{"origin":"London","destination":"Paris","urgency":"normal"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/estimate", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
