package handlers

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mauritzerick/uploadcaffeine-sub000/internal/aggregate"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/domain"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/infra/geoip"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/providers/stripe"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/reconcile"
)

// App holds the request-scoped collaborators injected into every handler.
// There is deliberately no package-level state: the gateway client, the
// ledger, and the stats engine are all explicit dependencies.
type App struct {
	Logger        zerolog.Logger
	Gateway       *stripe.Client
	Reconciler    *reconcile.Reconciler
	Stats         *aggregate.Engine
	Funnel        domain.FunnelEventRepository
	Geo           geoip.CountryResolver
	WebhookSecret string
	GoalAmount    int64
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]errorBody{"error": {Code: errCode, Message: message}})
}

// clientIP extracts the caller address for funnel enrichment. RealIP
// middleware has already rewritten RemoteAddr behind a proxy.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
