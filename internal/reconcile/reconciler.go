package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mauritzerick/uploadcaffeine-sub000/internal/domain"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/providers/stripe"
)

// Reconciler turns verified gateway confirmations into ledger records.
// It never holds state of its own; idempotency lives in the ledger's unique
// external-reference constraint.
type Reconciler struct {
	Supporters domain.SupporterRepository
	Funnel     domain.FunnelEventRepository
	Logger     zerolog.Logger
}

func NewReconciler(supporters domain.SupporterRepository, funnel domain.FunnelEventRepository, logger zerolog.Logger) *Reconciler {
	return &Reconciler{Supporters: supporters, Funnel: funnel, Logger: logger}
}

// Outcome reports what a delivery did to the ledger.
type Outcome struct {
	Ignored  bool
	Inserted bool
	Record   *domain.SupporterRecord
}

// Process routes a verified event by kind. Unknown kinds are acknowledged as
// no-ops so the gateway's retry policy stays quiet. A ledger write failure
// after successful verification is logged for manual reconciliation and does
// not surface as an error: a redelivery storm against a broken store would
// help no one, and the unique constraint keeps later retries safe anyway.
func (r *Reconciler) Process(ctx context.Context, event *stripe.Event) (*Outcome, error) {
	var (
		candidate *domain.SupporterRecord
		err       error
	)
	switch event.Kind {
	case stripe.EventCheckoutCompleted:
		candidate, err = candidateFromSession(event)
	case stripe.EventPaymentIntentSucceed:
		candidate, err = candidateFromIntent(event)
	default:
		r.Logger.Debug().Str("event_id", event.ID).Msg("ignoring unrecognized event kind")
		return &Outcome{Ignored: true}, nil
	}
	if err != nil {
		// Authenticated but unusable payload. Ack and keep the evidence in
		// the log; retrying an event we cannot parse would loop forever.
		r.Logger.Error().Err(err).Str("event_id", event.ID).Msg("dropping malformed confirmation")
		return &Outcome{Ignored: true}, nil
	}

	inserted, err := r.Supporters.RecordIfNew(ctx, candidate)
	if err != nil {
		r.Logger.Error().Err(err).
			Str("event_id", event.ID).
			Str("external_ref", candidate.ExternalRef).
			Int64("amount", candidate.AmountInt).
			Msg("ledger write failed after verified confirmation; needs manual reconciliation")
		return &Outcome{Record: candidate}, nil
	}
	if !inserted {
		r.Logger.Info().Str("external_ref", candidate.ExternalRef).Msg("duplicate confirmation ignored")
		return &Outcome{Record: candidate}, nil
	}

	r.Logger.Info().
		Str("external_ref", candidate.ExternalRef).
		Int64("amount", candidate.AmountInt).
		Bool("recurring", candidate.IsRecurring).
		Msg("supporter recorded")
	r.recordFunnel(ctx, candidate)

	return &Outcome{Inserted: true, Record: candidate}, nil
}

func candidateFromSession(event *stripe.Event) (*domain.SupporterRecord, error) {
	obj, err := event.DecodeSession()
	if err != nil {
		return nil, err
	}
	record := &domain.SupporterRecord{
		ExternalRef: obj.ID,
		Name:        obj.Metadata["name"],
		Message:     obj.Metadata["message"],
		AmountInt:   obj.AmountTotal,
		Currency:    strings.ToLower(obj.Currency),
		IsRecurring: true,
	}
	if obj.CustomerDetails != nil {
		record.Email = obj.CustomerDetails.Email
		if record.Name == "" {
			record.Name = obj.CustomerDetails.Name
		}
	}
	return record, validateCandidate(record)
}

func candidateFromIntent(event *stripe.Event) (*domain.SupporterRecord, error) {
	obj, err := event.DecodeIntent()
	if err != nil {
		return nil, err
	}
	record := &domain.SupporterRecord{
		ExternalRef: obj.ID,
		Name:        obj.Metadata["name"],
		Email:       obj.Metadata["email"],
		Message:     obj.Metadata["message"],
		AmountInt:   obj.Amount,
		Currency:    strings.ToLower(obj.Currency),
		IsRecurring: false,
	}
	return record, validateCandidate(record)
}

func validateCandidate(record *domain.SupporterRecord) error {
	if record.ExternalRef == "" {
		return fmt.Errorf("%w: missing external reference", domain.ErrMalformedEvent)
	}
	if record.AmountInt < domain.MinAmount {
		return fmt.Errorf("%w: amount %d below minimum", domain.ErrMalformedEvent, record.AmountInt)
	}
	return nil
}

func (r *Reconciler) recordFunnel(ctx context.Context, record *domain.SupporterRecord) {
	if r.Funnel == nil {
		return
	}
	metadata, _ := json.Marshal(map[string]any{
		"amount":    record.AmountInt,
		"currency":  record.Currency,
		"recurring": record.IsRecurring,
	})
	event := &domain.FunnelEvent{EventType: domain.FunnelCheckoutSucceeded, Metadata: metadata}
	if err := r.Funnel.Record(ctx, event); err != nil {
		r.Logger.Warn().Err(err).Msg("funnel event write failed")
	}
}
