package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atzlabs/zadarma-atz-relay/internal/api/router"
	"github.com/atzlabs/zadarma-atz-relay/internal/atz"
	appconfig "github.com/atzlabs/zadarma-atz-relay/internal/config"
	"github.com/atzlabs/zadarma-atz-relay/internal/http/handlers"
	"github.com/atzlabs/zadarma-atz-relay/internal/observability/metrics"
	"github.com/atzlabs/zadarma-atz-relay/internal/owner"
	"github.com/atzlabs/zadarma-atz-relay/internal/relay"
	"github.com/atzlabs/zadarma-atz-relay/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting zadarma-atz-relay",
		"env", cfg.Env,
		"port", cfg.Port,
		"atz_enabled", cfg.ATZEnable,
		"atz_base_url", cfg.ATZBaseURL,
		"custom_field_key", cfg.ATZCustomFieldKey,
	)
	if cfg.ATZEnable && cfg.ATZAPIToken == "" {
		logger.Warn("ATZ_API_TOKEN not set, ATZ calls will be skipped")
	}

	var crm *atz.Client
	if cfg.ATZEnable && cfg.ATZAPIToken != "" {
		var err error
		crm, err = atz.New(atz.Config{
			BaseURL:      cfg.ATZBaseURL,
			APIToken:     cfg.ATZAPIToken,
			Timeout:      cfg.ATZTimeout,
			ActivityPath: cfg.ATZActivityPath,
			Logger:       logger,
		})
		if err != nil {
			logger.Error("failed to build ATZ client", "error", err)
			os.Exit(1)
		}
		if cfg.ATZListUsersOnBoot {
			listUsers(crm, logger)
		}
	}

	relayMetrics := metrics.NewRelayMetrics(prometheus.DefaultRegisterer)

	processorCfg := relay.Config{
		Owners:      owner.NewResolver(cfg.ATZOwnerMap, cfg.ATZOwnerID),
		FieldKey:    cfg.ATZCustomFieldKey,
		UseActivity: cfg.ATZActivityPath != "",
		Logger:      logger,
		Metrics:     relayMetrics,
	}
	if crm != nil {
		processorCfg.CRM = crm
	}
	processor := relay.NewProcessor(processorCfg)

	webhooks := handlers.NewZadarmaWebhookHandler(handlers.ZadarmaWebhookConfig{
		Processor: processor,
		Logger:    logger,
	})

	r := router.New(&router.Config{
		Logger:         logger,
		Webhooks:       webhooks,
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// listUsers prints the CRM user directory at boot so operators can fill in
// ATZ_OWNER_MAP. Failures are advisory only.
func listUsers(crm *atz.Client, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	users, err := crm.ListUsers(ctx)
	if err != nil {
		logger.Warn("could not list ATZ users", "error", err)
		return
	}
	for _, u := range users {
		logger.Info("ATZ user", "id", u.ID.String(), "name", u.DisplayName())
	}
}
