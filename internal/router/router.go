package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"caltext/internal/api/tracker"
)

// Config contains dependencies needed for the router setup
type Config struct {
	WebhookHandler *tracker.WebhookHandler
	MetricsHandler http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to
// be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// Both Twilio and Apple Shortcuts post to the same endpoint; the
	// handler tells them apart by Content-Type.
	r.Route("/webhook", func(r chi.Router) {
		r.Post("/sms", cfg.WebhookHandler.HandleInbound)
	})

	return r
}
