package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/atzlabs/zadarma-atz-relay/internal/http/handlers"
	httpmiddleware "github.com/atzlabs/zadarma-atz-relay/internal/http/middleware"
	"github.com/atzlabs/zadarma-atz-relay/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Webhooks       *handlers.ZadarmaWebhookHandler
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/", cfg.Webhooks.Health)
	r.Get("/zadarma", cfg.Webhooks.HandleEcho)
	r.Post("/zadarma", cfg.Webhooks.HandleEvent)

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
