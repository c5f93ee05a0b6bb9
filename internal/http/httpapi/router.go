package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mauritzerick/uploadcaffeine-sub000/internal/http/handlers"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/infra"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/middleware"
)

// NewRouter wires the HTTP surface. Payment-creation routes get a per-IP
// rate limit; the webhook route does not, since the gateway controls its own
// delivery pace and a limiter would turn redeliveries into false failures.
func NewRouter(app *handlers.App, cfg *infra.Config) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/healthz", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
		r.Post("/create-payment-intent", app.CreatePaymentIntent)
		r.Post("/create-checkout-session", app.CreateCheckoutSession)
	})

	r.Post("/webhook", app.Webhook)

	r.Get("/stats", app.StatsSummary)
	r.Post("/force-refresh-stats", app.StatsSummary)

	return r
}
