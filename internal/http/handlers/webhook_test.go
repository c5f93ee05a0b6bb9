package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mauritzerick/uploadcaffeine-sub000/internal/providers/stripe"
)

const webhookSecret = "whsec_handler_test"

func postWebhook(app *App, payload []byte, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/webhook", bytes.NewReader(payload))
	if header != "" {
		req.Header.Set(stripe.SignatureHeader, header)
	}
	rr := httptest.NewRecorder()
	app.Webhook(rr, req)
	return rr
}

func intentPayload(intentID string, amount int64) []byte {
	payload, _ := json.Marshal(map[string]any{
		"id":   "evt_" + intentID,
		"type": "payment_intent.succeeded",
		"data": map[string]any{"object": map[string]any{
			"id":       intentID,
			"amount":   amount,
			"currency": "usd",
			"metadata": map[string]string{"name": "Maya", "message": "hi"},
		}},
	})
	return payload
}

func TestWebhookRecordsVerifiedConfirmation(t *testing.T) {
	ledger := newLedgerStub()
	app := testApp(ledger, nil, webhookSecret)

	payload := intentPayload("pi_1", 500)
	rr := postWebhook(app, payload, signWebhook(payload, webhookSecret, time.Now()))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	var resp map[string]bool
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp["received"] {
		t.Fatalf("unexpected response: %#v", resp)
	}
	if rec := ledger.records["pi_1"]; rec == nil || rec.IsRecurring {
		t.Fatalf("expected one-time record for pi_1, got %+v", rec)
	}
}

func TestWebhookRedeliveryLeavesLedgerUnchanged(t *testing.T) {
	ledger := newLedgerStub()
	app := testApp(ledger, nil, webhookSecret)
	payload := intentPayload("pi_dup", 500)

	for i := 0; i < 2; i++ {
		rr := postWebhook(app, payload, signWebhook(payload, webhookSecret, time.Now()))
		if rr.Code != http.StatusOK {
			t.Fatalf("delivery %d: status = %d, want 200", i, rr.Code)
		}
		var resp map[string]bool
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !resp["received"] {
			t.Fatalf("delivery %d: not acked", i)
		}
	}
	if len(ledger.records) != 1 {
		t.Fatalf("ledger size = %d, want 1", len(ledger.records))
	}
}

func TestWebhookRejectsTamperedBody(t *testing.T) {
	ledger := newLedgerStub()
	app := testApp(ledger, nil, webhookSecret)

	signed := intentPayload("pi_t", 500)
	tampered := intentPayload("pi_t", 999999)
	rr := postWebhook(app, tampered, signWebhook(signed, webhookSecret, time.Now()))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if len(ledger.records) != 0 {
		t.Fatal("tampered delivery must not create a record")
	}
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	ledger := newLedgerStub()
	app := testApp(ledger, nil, webhookSecret)

	rr := postWebhook(app, intentPayload("pi_m", 500), "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if len(ledger.records) != 0 {
		t.Fatal("unsigned delivery must not create a record")
	}
}

func TestWebhookFailsWhenSecretUnconfigured(t *testing.T) {
	app := testApp(newLedgerStub(), nil, "")

	payload := intentPayload("pi_u", 500)
	rr := postWebhook(app, payload, signWebhook(payload, webhookSecret, time.Now()))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error.Code != "not_configured" {
		t.Fatalf("error code = %q, want not_configured", resp.Error.Code)
	}
}

func TestWebhookAcksUnknownEventKinds(t *testing.T) {
	ledger := newLedgerStub()
	app := testApp(ledger, nil, webhookSecret)

	payload, _ := json.Marshal(map[string]any{
		"id":   "evt_ref",
		"type": "charge.refunded",
		"data": map[string]any{"object": map[string]any{"id": "ch_1"}},
	})
	rr := postWebhook(app, payload, signWebhook(payload, webhookSecret, time.Now()))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if len(ledger.records) != 0 {
		t.Fatal("unknown kind must not create a record")
	}
}

func TestWebhookClassifiesCheckoutSessionAsRecurring(t *testing.T) {
	ledger := newLedgerStub()
	app := testApp(ledger, nil, webhookSecret)

	payload, _ := json.Marshal(map[string]any{
		"id":   "evt_cs",
		"type": "checkout.session.completed",
		"data": map[string]any{"object": map[string]any{
			"id":               "cs_9",
			"amount_total":     2500,
			"currency":         "usd",
			"customer_details": map[string]string{"email": "m@example.com", "name": "Maya"},
		}},
	})
	rr := postWebhook(app, payload, signWebhook(payload, webhookSecret, time.Now()))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	rec := ledger.records["cs_9"]
	if rec == nil || !rec.IsRecurring {
		t.Fatalf("expected recurring record for cs_9, got %+v", rec)
	}
}
