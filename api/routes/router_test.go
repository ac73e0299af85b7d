package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/carryconnect/carryconnect-backend/internal/auth"
	"github.com/carryconnect/carryconnect-backend/internal/listings"
	"github.com/carryconnect/carryconnect-backend/internal/matches"
	"github.com/carryconnect/carryconnect-backend/internal/payments"
	"github.com/carryconnect/carryconnect-backend/internal/pricing"
	pkgAuth "github.com/carryconnect/carryconnect-backend/pkg/auth"
	"github.com/carryconnect/carryconnect-backend/pkg/config"
	"github.com/carryconnect/carryconnect-backend/pkg/logger"
)

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.SessionResponse, error) {
	return &auth.SessionResponse{}, nil
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.SessionResponse, error) {
	return &auth.SessionResponse{}, nil
}

func (stubAuthService) Refresh(ctx context.Context, userID uuid.UUID, accessID string, req auth.RefreshRequest) (*auth.SessionResponse, error) {
	return &auth.SessionResponse{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubListingsService struct{}

func (stubListingsService) Create(ctx context.Context, ownerID uuid.UUID, req listings.CreateListingRequest) (*listings.ListingResponse, error) {
	return &listings.ListingResponse{}, nil
}

func (stubListingsService) Get(ctx context.Context, id uuid.UUID) (*listings.ListingResponse, error) {
	return &listings.ListingResponse{ID: id}, nil
}

func (stubListingsService) Search(ctx context.Context, query listings.SearchListingsQuery) ([]listings.ListingResponse, error) {
	return nil, nil
}

func (stubListingsService) Deactivate(ctx context.Context, actorID, listingID uuid.UUID) error {
	return nil
}

type stubMatchesService struct{}

func (stubMatchesService) Create(ctx context.Context, senderID uuid.UUID, req matches.CreateMatchRequest) (*matches.MatchResponse, error) {
	return &matches.MatchResponse{}, nil
}

func (stubMatchesService) Get(ctx context.Context, actorID, matchID uuid.UUID) (*matches.MatchResponse, error) {
	return &matches.MatchResponse{ID: matchID}, nil
}

func (stubMatchesService) ListForUser(ctx context.Context, userID uuid.UUID) ([]matches.MatchResponse, error) {
	return nil, nil
}

func (stubMatchesService) Accept(ctx context.Context, actorID, matchID uuid.UUID) (*matches.MatchResponse, error) {
	return &matches.MatchResponse{ID: matchID}, nil
}

func (stubMatchesService) Cancel(ctx context.Context, actorID, matchID uuid.UUID) (*matches.MatchResponse, error) {
	return &matches.MatchResponse{ID: matchID}, nil
}

type stubPaymentsService struct{}

func (stubPaymentsService) CreateIntent(ctx context.Context, requesterEmail string, req payments.CreatePaymentRequest) (*payments.CreatePaymentResponse, error) {
	return &payments.CreatePaymentResponse{URL: "https://checkout.stripe.com/c/pay/cs_test"}, nil
}

func (stubPaymentsService) ConfirmDelivery(ctx context.Context, actorID uuid.UUID, req payments.ConfirmDeliveryRequest) (*payments.ConfirmDeliveryResponse, error) {
	return &payments.ConfirmDeliveryResponse{}, nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubRouteHistory struct{}

func (stubRouteHistory) RecentRoutePrices(ctx context.Context, origin, destination string, limit int) ([]decimal.Decimal, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	estimator, err := pricing.NewEstimator(pricing.EstimatorParams{
		Config:  pricing.DefaultConfig(),
		History: stubRouteHistory{},
		Logger:  logg,
	})
	if err != nil {
		t.Fatalf("estimator setup: %v", err)
	}

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "carryconnect", ExpirationMinutes: 15},
	}

	return NewRouter(RouterParams{
		Config:          cfg,
		Logger:          logg,
		Sessions:        stubSessionChecker{},
		AuthService:     stubAuthService{},
		ListingsService: stubListingsService{},
		MatchesService:  stubMatchesService{},
		Estimator:       estimator,
		PaymentsService: stubPaymentsService{},
		MetricsSource:   prometheus.NewRegistry(),
	})
}

func TestRouterPublicEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{"/health/live", "/api/public/ping", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", target, rec.Code)
		}
	}
}

func TestRouterPricingEstimateIsPublic(t *testing.T) {
	router := newTestRouter(t)

	body := `{"origin":"London","destination":"Paris","weight_kg":2,"urgency":"normal"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/estimate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestRouterProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	targets := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/listings"},
		{http.MethodGet, "/api/v1/matches"},
		{http.MethodPost, "/api/v1/payments"},
		{http.MethodPost, "/api/v1/deliveries/confirm"},
	}
	for _, tc := range targets {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s %s got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestRouterAcceptsBearerToken(t *testing.T) {
	router := newTestRouter(t)

	cfg := config.JWTConfig{Secret: "router-secret", Issuer: "carryconnect", ExpirationMinutes: 15}
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "sender@example.com",
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}
}
