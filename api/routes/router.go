package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carryconnect/carryconnect-backend/api/controllers"
	webhookcontrollers "github.com/carryconnect/carryconnect-backend/api/controllers/webhooks"
	"github.com/carryconnect/carryconnect-backend/api/middleware"
	"github.com/carryconnect/carryconnect-backend/internal/auth"
	"github.com/carryconnect/carryconnect-backend/internal/listings"
	"github.com/carryconnect/carryconnect-backend/internal/matches"
	"github.com/carryconnect/carryconnect-backend/internal/payments"
	"github.com/carryconnect/carryconnect-backend/internal/pricing"
	stripewebhook "github.com/carryconnect/carryconnect-backend/internal/webhooks/stripe"
	"github.com/carryconnect/carryconnect-backend/pkg/auth/session"
	"github.com/carryconnect/carryconnect-backend/pkg/config"
	"github.com/carryconnect/carryconnect-backend/pkg/db"
	"github.com/carryconnect/carryconnect-backend/pkg/logger"
	"github.com/carryconnect/carryconnect-backend/pkg/metrics"
	"github.com/carryconnect/carryconnect-backend/pkg/redis"
	pkgstripe "github.com/carryconnect/carryconnect-backend/pkg/stripe"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    redis.Pinger
	Sessions session.AccessSessionChecker

	AuthService     auth.Service
	ListingsService listings.Service
	MatchesService  matches.Service
	Estimator       *pricing.Estimator
	PaymentsService payments.Service

	StripeClient  *pkgstripe.Client
	WebhookSvc    *stripewebhook.Service
	WebhookGuard  *stripewebhook.IdempotencyGuard
	MetricsSource prometheus.Gatherer
	HTTPMetrics   *metrics.HTTPMetrics
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.MetricsSource != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.MetricsSource, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(p.WebhookSvc, p.StripeClient, p.WebhookGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(p.AuthService, logg))
		r.Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(p.AuthService, cfg.JWT, logg))
	})

	// Quotes are advisory and require no account.
	r.Post("/api/v1/pricing/estimate", controllers.PricingEstimate(p.Estimator, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/listings", func(r chi.Router) {
			r.Get("/", controllers.ListingsSearch(p.ListingsService, logg))
			r.Post("/", controllers.ListingsCreate(p.ListingsService, logg))
			r.Get("/{listingID}", controllers.ListingsGet(p.ListingsService, logg))
			r.Delete("/{listingID}", controllers.ListingsDeactivate(p.ListingsService, logg))
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", controllers.MatchesList(p.MatchesService, logg))
			r.Post("/", controllers.MatchesCreate(p.MatchesService, logg))
			r.Get("/{matchID}", controllers.MatchesGet(p.MatchesService, logg))
			r.Post("/{matchID}/accept", controllers.MatchesAccept(p.MatchesService, logg))
			r.Post("/{matchID}/cancel", controllers.MatchesCancel(p.MatchesService, logg))
		})

		r.Post("/payments", controllers.PaymentsCreate(p.PaymentsService, logg))
		r.Post("/deliveries/confirm", controllers.DeliveriesConfirm(p.PaymentsService, logg))
	})

	return r
}
