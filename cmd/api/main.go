package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/carryconnect/carryconnect-backend/api/routes"
	"github.com/carryconnect/carryconnect-backend/internal/auth"
	"github.com/carryconnect/carryconnect-backend/internal/listings"
	"github.com/carryconnect/carryconnect-backend/internal/matches"
	"github.com/carryconnect/carryconnect-backend/internal/payments"
	"github.com/carryconnect/carryconnect-backend/internal/pricing"
	"github.com/carryconnect/carryconnect-backend/internal/users"
	stripewebhook "github.com/carryconnect/carryconnect-backend/internal/webhooks/stripe"
	"github.com/carryconnect/carryconnect-backend/pkg/auth/session"
	"github.com/carryconnect/carryconnect-backend/pkg/config"
	"github.com/carryconnect/carryconnect-backend/pkg/db"
	"github.com/carryconnect/carryconnect-backend/pkg/logger"
	"github.com/carryconnect/carryconnect-backend/pkg/metrics"
	"github.com/carryconnect/carryconnect-backend/pkg/migrate"
	"github.com/carryconnect/carryconnect-backend/pkg/redis"
	pkgstripe "github.com/carryconnect/carryconnect-backend/pkg/stripe"
)

const webhookIdempotencyTTL = 24 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	settlementMetrics := metrics.NewSettlementMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	listingRepo := listings.NewRepository(dbClient.DB())
	matchRepo := matches.NewRepository(dbClient.DB())
	paymentRepo := payments.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	listingsService, err := listings.NewService(listingRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create listings service", err)
		os.Exit(1)
	}

	matchesService, err := matches.NewService(matchRepo, listingRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create matches service", err)
		os.Exit(1)
	}

	estimator, err := pricing.NewEstimator(pricing.EstimatorParams{
		Config:  pricing.DefaultConfig(),
		History: listingRepo,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing estimator", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Repo:      paymentRepo,
		Listings:  listingRepo,
		Matches:   matchRepo,
		Processor: payments.NewProcessor(stripeClient),
		Checkout:  cfg.Checkout,
		Fees:      cfg.Fees,
		Logger:    logg,
		Metrics:   settlementMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Payments: stripewebhook.NewPaymentMarker(paymentRepo),
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, webhookIdempotencyTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"stripe_env": stripeClient.Environment(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			Sessions:        sessionManager,
			AuthService:     authService,
			ListingsService: listingsService,
			MatchesService:  matchesService,
			Estimator:       estimator,
			PaymentsService: paymentsService,
			StripeClient:    stripeClient,
			WebhookSvc:      webhookService,
			WebhookGuard:    webhookGuard,
			MetricsSource:   registry,
			HTTPMetrics:     httpMetrics,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
