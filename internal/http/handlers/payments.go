package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mauritzerick/uploadcaffeine-sub000/internal/domain"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/providers/stripe"
)

type createPaymentRequest struct {
	Amount     int64  `json:"amount"`
	Monthly    bool   `json:"monthly"`
	Name       string `json:"name"`
	Message    string `json:"message"`
	CoffeeType string `json:"coffeeType"`
}

// CreatePaymentIntent originates a one-time payment intent, or a
// subscription checkout session when monthly is set.
func (a *App) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Amount < domain.MinAmount {
		a.error(w, http.StatusBadRequest, "bad_request", "amount must be at least 100")
		return
	}

	meta := stripe.Metadata{Name: req.Name, Message: req.Message, CoffeeType: req.CoffeeType}
	a.recordCheckoutStarted(r, &req)

	if req.Monthly {
		session, err := a.Gateway.CreateCheckoutSession(r.Context(), req.Amount, meta)
		if err != nil {
			a.gatewayError(w, err, "failed to create checkout session")
			return
		}
		a.json(w, http.StatusOK, map[string]any{"sessionId": session.ID, "isSubscription": true})
		return
	}

	intent, err := a.Gateway.CreatePaymentIntent(r.Context(), req.Amount, meta)
	if err != nil {
		a.gatewayError(w, err, "failed to create payment intent")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"clientSecret":    intent.ClientSecret,
		"paymentIntentId": intent.ID,
	})
}

// CreateCheckoutSession originates a subscription checkout session directly.
func (a *App) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Amount < domain.MinAmount {
		a.error(w, http.StatusBadRequest, "bad_request", "amount must be at least 100")
		return
	}

	req.Monthly = true
	a.recordCheckoutStarted(r, &req)

	session, err := a.Gateway.CreateCheckoutSession(r.Context(), req.Amount, stripe.Metadata{Name: req.Name, Message: req.Message, CoffeeType: req.CoffeeType})
	if err != nil {
		a.gatewayError(w, err, "failed to create checkout session")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"sessionId": session.ID})
}

// gatewayError maps gateway failures onto the error taxonomy: a missing key
// is a stable gateway_not_configured so the UI can show a permanent-outage
// message instead of retrying; everything else stays a generic internal.
func (a *App) gatewayError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, domain.ErrInvalidAmount) {
		a.error(w, http.StatusBadRequest, "bad_request", "amount must be at least 100")
		return
	}
	if errors.Is(err, domain.ErrGatewayNotConfigured) {
		a.error(w, http.StatusInternalServerError, "gateway_not_configured", "payment gateway is not configured")
		return
	}
	a.Logger.Error().Err(err).Msg(message)
	a.error(w, http.StatusInternalServerError, "internal", message)
}

func (a *App) recordCheckoutStarted(r *http.Request, req *createPaymentRequest) {
	if a.Funnel == nil {
		return
	}
	fields := map[string]any{
		"amount":      req.Amount,
		"monthly":     req.Monthly,
		"coffee_type": req.CoffeeType,
	}
	if a.Geo != nil {
		if country, err := a.Geo.CountryCode(clientIP(r)); err == nil && country != "" {
			fields["country"] = country
		}
	}
	metadata, _ := json.Marshal(fields)
	event := &domain.FunnelEvent{EventType: domain.FunnelCheckoutStarted, Metadata: metadata}
	if err := a.Funnel.Record(r.Context(), event); err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Warn().Err(err).Msg("funnel event write failed")
	}
}
