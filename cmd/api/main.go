package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	supabase "github.com/nedpals/supabase-go"
	stripe "github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/directory-gatekeeper/internal/api/http"
	"github.com/spec-kit/directory-gatekeeper/internal/api/http/handlers"
	"github.com/spec-kit/directory-gatekeeper/internal/audit"
	"github.com/spec-kit/directory-gatekeeper/internal/auth"
	"github.com/spec-kit/directory-gatekeeper/internal/billing"
	"github.com/spec-kit/directory-gatekeeper/internal/config"
	"github.com/spec-kit/directory-gatekeeper/internal/gatekeeper"
	"github.com/spec-kit/directory-gatekeeper/internal/observability"
	"github.com/spec-kit/directory-gatekeeper/internal/persistence"
	"github.com/spec-kit/directory-gatekeeper/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	subscriptionRepo := repository.NewSubscriptionRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	auditor := audit.NewRecorder(auditRepo, logger, cfg.Audit.QueueSize)
	auditor.Start()
	go func() {
		for err := range auditor.Errors() {
			logger.Warn("audit write failed", zap.Error(err))
		}
	}()

	supabaseClient := supabase.CreateClient(cfg.Supabase.BaseURL, cfg.Supabase.ServiceKey)
	bridge := auth.NewSessionBridge(cfg.Supabase, auth.NewSupabaseRefresher(supabaseClient), cfg.App.IsProduction(), logger)
	gate := gatekeeper.NewMaintenanceGate(settingsRepo, cfg.Maintenance.BypassSecret, cfg.App.IsProduction(), logger)
	gk := gatekeeper.New(bridge, gate, metrics, auditor, logger)

	stripe.Key = cfg.Stripe.APIKey
	verifier := billing.NewVerifier(cfg.Stripe.WebhookSecret)
	deduper := billing.NewEventDeduper(redis.Client, cfg.Stripe.DedupeTTL(), logger)
	billingHandler := billing.NewHandler(
		subscriptionRepo,
		billing.NewStripeResolver(),
		billing.NewPlanMapper(cfg.Stripe),
		deduper,
		auditor,
		metrics,
		logger,
	)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Webhooks:      handlers.NewWebhookHandler(verifier, billingHandler, logger),
		Subscriptions: handlers.NewSubscriptionsHandler(subscriptionRepo),
		Pages:         handlers.NewPagesHandler(),
		Gatekeeper:    gk,
		APIAuth:       auth.NewAPIAuth(bridge),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	auditor.Close()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
