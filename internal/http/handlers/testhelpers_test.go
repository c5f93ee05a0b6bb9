package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/mauritzerick/uploadcaffeine-sub000/internal/aggregate"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/domain"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/reconcile"
)

// ledgerStub is an in-memory SupporterRepository keyed by external reference.
type ledgerStub struct {
	records map[string]*domain.SupporterRecord
	order   []string
}

func newLedgerStub() *ledgerStub {
	return &ledgerStub{records: make(map[string]*domain.SupporterRecord)}
}

func (l *ledgerStub) RecordIfNew(_ context.Context, record *domain.SupporterRecord) (bool, error) {
	if _, exists := l.records[record.ExternalRef]; exists {
		return false, nil
	}
	record.ID = fmt.Sprintf("sup-%d", len(l.order)+1)
	record.CreatedAt = time.Now().UTC()
	l.records[record.ExternalRef] = record
	l.order = append(l.order, record.ExternalRef)
	return true, nil
}

func (l *ledgerStub) ListRecent(_ context.Context, limit int) ([]domain.SupporterRecord, error) {
	var out []domain.SupporterRecord
	for i := len(l.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *l.records[l.order[i]])
	}
	return out, nil
}

func (l *ledgerStub) SumOneTimeSince(_ context.Context, since time.Time) (int64, error) {
	var total int64
	for _, rec := range l.records {
		if !rec.IsRecurring && !rec.CreatedAt.Before(since) {
			total += rec.AmountInt
		}
	}
	return total, nil
}

func (l *ledgerStub) SumRecurring(context.Context) (int64, error) {
	var total int64
	for _, rec := range l.records {
		if rec.IsRecurring {
			total += rec.AmountInt
		}
	}
	return total, nil
}

type funnelStub struct {
	events []domain.FunnelEvent
}

func (f *funnelStub) Record(_ context.Context, event *domain.FunnelEvent) error {
	f.events = append(f.events, *event)
	return nil
}

func testApp(ledger *ledgerStub, funnel *funnelStub, webhookSecret string) *App {
	logger := zerolog.New(io.Discard)
	// A typed nil stub must not leak into the interface fields.
	var funnelRepo domain.FunnelEventRepository
	if funnel != nil {
		funnelRepo = funnel
	}
	return &App{
		Logger:        logger,
		Reconciler:    reconcile.NewReconciler(ledger, funnelRepo, logger),
		Stats:         aggregate.NewEngine(ledger),
		Funnel:        funnelRepo,
		WebhookSecret: webhookSecret,
		GoalAmount:    15000,
	}
}

// signWebhook produces a gateway-compatible signature header for a payload.
func signWebhook(payload []byte, secret string, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}
