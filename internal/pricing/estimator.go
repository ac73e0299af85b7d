package pricing

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/carryconnect/carryconnect-backend/pkg/enums"
	pkgerrors "github.com/carryconnect/carryconnect-backend/pkg/errors"
	"github.com/carryconnect/carryconnect-backend/pkg/logger"
)

const earthRadiusKM = 6371

// EstimateRequest is the input to one price estimate.
type EstimateRequest struct {
	Origin      string        `json:"origin" validate:"required,min=1,max=120"`
	Destination string        `json:"destination" validate:"required,min=1,max=120"`
	WeightKG    float64       `json:"weight_kg" validate:"required,gt=0"`
	Urgency     enums.Urgency `json:"urgency" validate:"required"`
}

// EstimateDetails explains how the estimate was produced.
type EstimateDetails struct {
	DistanceKM          int     `json:"distance_km"`
	WeightFactor        float64 `json:"weight_factor"`
	UrgencyFactor       float64 `json:"urgency_factor"`
	IsPopularRoute      bool    `json:"is_popular_route"`
	HistoricalInfluence bool    `json:"historical_influence"`
	Fallback            bool    `json:"fallback"`
}

// EstimateResult carries the whole-dollar estimate plus its breakdown.
type EstimateResult struct {
	EstimatedPrice float64         `json:"estimated_price"`
	Details        EstimateDetails `json:"details"`
}

type routeHistory interface {
	RecentRoutePrices(ctx context.Context, origin, destination string, limit int) ([]decimal.Decimal, error)
}

// Estimator computes heuristic route prices. Read-only: its only store
// access is the historical-price query.
type Estimator struct {
	cfg     Config
	history routeHistory
	logg    *logger.Logger
	jitter  func() float64
}

// EstimatorParams bundles the estimator's dependencies.
type EstimatorParams struct {
	Config  Config
	History routeHistory
	Logger  *logger.Logger
	// Jitter returns a uniform value in [0, 1). Defaults to math/rand.
	Jitter func() float64
}

// NewEstimator constructs a pricing estimator.
func NewEstimator(params EstimatorParams) (*Estimator, error) {
	if len(params.Config.Cities) == 0 {
		return nil, fmt.Errorf("pricing config requires a city table")
	}
	if params.History == nil {
		return nil, fmt.Errorf("route history source is required")
	}
	jitter := params.Jitter
	if jitter == nil {
		jitter = rand.Float64
	}
	return &Estimator{
		cfg:     params.Config,
		history: params.History,
		logg:    params.Logger,
		jitter:  jitter,
	}, nil
}

// Estimate prices a route. Unresolvable cities take a deliberately
// approximate fallback path driven by weight plus bounded jitter.
func (e *Estimator) Estimate(ctx context.Context, req EstimateRequest) (*EstimateResult, error) {
	urgencyFactor, ok := e.cfg.UrgencyMultipliers[req.Urgency]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid urgency")
	}

	originCoords, originOK := e.resolveCity(req.Origin)
	destCoords, destOK := e.resolveCity(req.Destination)

	if !originOK || !destOK {
		price := math.Max(e.cfg.FallbackMinimum, math.Round(req.WeightKG*e.cfg.FallbackPerKG+e.jitter()*e.cfg.FallbackJitter))
		return &EstimateResult{
			EstimatedPrice: price,
			Details:        EstimateDetails{Fallback: true},
		}, nil
	}

	distance := haversineKM(originCoords, destCoords)

	baseRate := e.cfg.BaseRatePerKM
	switch {
	case distance > e.cfg.LongHaulKM:
		baseRate *= e.cfg.LongHaulFactor
	case distance < e.cfg.ShortHaulKM:
		baseRate *= e.cfg.ShortHaulFactor
	}

	weightFactor := math.Max(1, req.WeightKG*e.cfg.WeightFactor)
	price := distance * baseRate * weightFactor * urgencyFactor

	historical, hasHistory := e.historicalAverage(ctx, req.Origin, req.Destination)
	if hasHistory {
		price = price*(1-e.cfg.HistoryWeight) + historical*e.cfg.HistoryWeight
	}

	isPopular := e.isPopularRoute(req.Origin, req.Destination)
	if isPopular {
		price *= e.cfg.PopularRoutePremium
	}

	price = math.Max(e.cfg.MinimumPrice, math.Round(price))

	return &EstimateResult{
		EstimatedPrice: price,
		Details: EstimateDetails{
			DistanceKM:          int(math.Round(distance)),
			WeightFactor:        weightFactor,
			UrgencyFactor:       urgencyFactor,
			IsPopularRoute:      isPopular,
			HistoricalInfluence: hasHistory,
		},
	}, nil
}

func (e *Estimator) resolveCity(name string) (Coordinates, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return Coordinates{}, false
	}

	if coords, ok := e.cfg.Cities[normalized]; ok {
		return coords, true
	}

	for city, coords := range e.cfg.Cities {
		if strings.Contains(normalized, city) || strings.Contains(city, normalized) {
			return coords, true
		}
	}
	return Coordinates{}, false
}

// historicalAverage returns the mean of recent route prices. Lookup errors
// are tolerated: the estimate simply goes out unblended.
func (e *Estimator) historicalAverage(ctx context.Context, origin, destination string) (float64, bool) {
	prices, err := e.history.RecentRoutePrices(ctx, origin, destination, e.cfg.HistoryLimit)
	if err != nil {
		if e.logg != nil {
			e.logg.Warn(ctx, fmt.Sprintf("historical pricing lookup failed: %v", err))
		}
		return 0, false
	}
	if len(prices) == 0 {
		return 0, false
	}

	sum := decimal.Zero
	for _, p := range prices {
		sum = sum.Add(p)
	}
	mean, _ := sum.Div(decimal.NewFromInt(int64(len(prices)))).Float64()
	return mean, true
}

func (e *Estimator) isPopularRoute(origin, destination string) bool {
	normalizedOrigin := strings.ToLower(origin)
	normalizedDest := strings.ToLower(destination)

	for _, pair := range e.cfg.PopularRoutes {
		forward := strings.Contains(normalizedOrigin, pair[0]) && strings.Contains(normalizedDest, pair[1])
		reverse := strings.Contains(normalizedOrigin, pair[1]) && strings.Contains(normalizedDest, pair[0])
		if forward || reverse {
			return true
		}
	}
	return false
}

func haversineKM(a, b Coordinates) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKM * c
}
