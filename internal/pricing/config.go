package pricing

import (
	"github.com/carryconnect/carryconnect-backend/pkg/enums"
)

// Coordinates is a geographic point in decimal degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Config carries the estimator's city table, route list, and rate constants.
// Everything is injected so deployments can tune pricing without a rebuild.
type Config struct {
	// Cities maps lowercase city names to coordinates. Lookups match exact
	// names first, then substrings in either direction.
	Cities map[string]Coordinates

	// PopularRoutes lists high-traffic city pairs that earn a premium,
	// matched in either direction.
	PopularRoutes [][2]string

	BaseRatePerKM       float64
	LongHaulKM          float64
	LongHaulFactor      float64
	ShortHaulKM         float64
	ShortHaulFactor     float64
	WeightFactor        float64
	UrgencyMultipliers  map[enums.Urgency]float64
	PopularRoutePremium float64

	// Fallback heuristic for unresolvable cities.
	FallbackMinimum float64
	FallbackPerKG   float64
	FallbackJitter  float64

	MinimumPrice   float64
	HistoryWeight  float64
	HistoryLimit   int
}

// DefaultConfig returns the production pricing configuration.
func DefaultConfig() Config {
	return Config{
		Cities: map[string]Coordinates{
			"new york":    {Lat: 40.7128, Lng: -74.0060},
			"los angeles": {Lat: 34.0522, Lng: -118.2437},
			"london":      {Lat: 51.5074, Lng: -0.1278},
			"paris":       {Lat: 48.8566, Lng: 2.3522},
			"tokyo":       {Lat: 35.6762, Lng: 139.6503},
			"singapore":   {Lat: 1.3521, Lng: 103.8198},
			"dubai":       {Lat: 25.2048, Lng: 55.2708},
			"mumbai":      {Lat: 19.0760, Lng: 72.8777},
			"sydney":      {Lat: -33.8688, Lng: 151.2093},
			"toronto":     {Lat: 43.6532, Lng: -79.3832},
			"berlin":      {Lat: 52.5200, Lng: 13.4050},
			"hong kong":   {Lat: 22.3193, Lng: 114.1694},
			"bangkok":     {Lat: 13.7563, Lng: 100.5018},
			"seoul":       {Lat: 37.5665, Lng: 126.9780},
			"amsterdam":   {Lat: 52.3676, Lng: 4.9041},
		},
		PopularRoutes: [][2]string{
			{"new york", "london"},
			{"london", "paris"},
			{"tokyo", "singapore"},
			{"dubai", "mumbai"},
			{"sydney", "singapore"},
			{"los angeles", "tokyo"},
		},
		BaseRatePerKM:   0.15,
		LongHaulKM:      10000,
		LongHaulFactor:  0.8,
		ShortHaulKM:     500,
		ShortHaulFactor: 1.5,
		WeightFactor:    0.3,
		UrgencyMultipliers: map[enums.Urgency]float64{
			enums.UrgencyLow:    0.8,
			enums.UrgencyNormal: 1.0,
			enums.UrgencyHigh:   1.4,
		},
		PopularRoutePremium: 1.2,
		FallbackMinimum:     25,
		FallbackPerKG:       8,
		FallbackJitter:      20,
		MinimumPrice:        5,
		HistoryWeight:       0.3,
		HistoryLimit:        10,
	}
}
