package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mauritzerick/uploadcaffeine-sub000/internal/adapter/repo"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/aggregate"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/http/handlers"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/http/httpapi"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/infra"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/infra/geoip"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/providers/stripe"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/reconcile"
)

func main() {
	// Load .env if present (optional in production).
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	sqlRunner := infra.NewSQLRunner(dbpool, logger)
	supporters := repo.NewSupporterRepository(sqlRunner)
	funnel := repo.NewFunnelEventRepository(sqlRunner)

	geoResolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}

	gateway := stripe.NewClient(stripe.Options{
		SecretKey:  cfg.StripeSecretKey,
		BaseURL:    cfg.StripeBaseURL,
		Currency:   cfg.Currency,
		SuccessURL: cfg.CheckoutSuccessURL,
		CancelURL:  cfg.CheckoutCancelURL,
		Logger:     &logger,
	})
	if !gateway.HasCredentials() {
		logger.Warn().Msg("STRIPE_SECRET_KEY not set; payment creation will report gateway_not_configured")
	}

	app := &handlers.App{
		Logger:        logger,
		Gateway:       gateway,
		Reconciler:    reconcile.NewReconciler(supporters, funnel, logger),
		Stats:         aggregate.NewEngine(supporters),
		Funnel:        funnel,
		Geo:           geoResolver,
		WebhookSecret: cfg.StripeWebhookSecret,
		GoalAmount:    cfg.GoalAmount,
	}

	router := httpapi.NewRouter(app, cfg)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
