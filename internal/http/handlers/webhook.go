package handlers

import (
	"io"
	"net/http"

	"github.com/mauritzerick/uploadcaffeine-sub000/internal/providers/stripe"
)

const maxWebhookBody = 1 << 20

// Webhook authenticates a gateway callback and reconciles it into the
// ledger. The body is read raw before any parsing; the signature covers the
// exact bytes on the wire.
func (a *App) Webhook(w http.ResponseWriter, r *http.Request) {
	if a.WebhookSecret == "" {
		a.Logger.Error().Msg("webhook received but signing secret is not configured")
		a.error(w, http.StatusInternalServerError, "not_configured", "webhook signing secret is not configured")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read body")
		return
	}

	event, err := stripe.VerifySignature(payload, r.Header.Get(stripe.SignatureHeader), a.WebhookSecret)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("webhook signature rejected")
		a.error(w, http.StatusBadRequest, "invalid_signature", "signature verification failed")
		return
	}

	// Anything verified gets acked, whatever happens downstream: the
	// reconciler owns the ack-over-redelivery policy.
	if _, err := a.Reconciler.Process(r.Context(), event); err != nil {
		a.Logger.Error().Err(err).Str("event_id", event.ID).Msg("reconcile failed")
	}
	a.json(w, http.StatusOK, map[string]bool{"received": true})
}
