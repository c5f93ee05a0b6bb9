package domain

import (
	"encoding/json"
	"time"
)

// SupporterRecord is a single confirmed payment persisted in the ledger.
// ExternalRef is the gateway's own transaction or session identifier and is
// globally unique; it is the only defense against the gateway redelivering
// the same confirmation.
type SupporterRecord struct {
	ID          string
	ExternalRef string
	Name        string
	Email       string
	Message     string
	AmountInt   int64
	Currency    string
	IsRecurring bool
	CreatedAt   time.Time
}

// MinAmount is the smallest accepted contribution, in minor units.
const MinAmount int64 = 100

// PublicSupporter is the projection of a SupporterRecord exposed over the
// stats endpoint. Email never leaves the ledger.
type PublicSupporter struct {
	Name        string    `json:"name"`
	Message     string    `json:"message"`
	AmountInt   int64     `json:"amount"`
	Currency    string    `json:"currency"`
	IsRecurring bool      `json:"isRecurring"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Public returns the record's public projection.
func (s *SupporterRecord) Public() PublicSupporter {
	name := s.Name
	if name == "" {
		name = "Anonymous"
	}
	return PublicSupporter{
		Name:        name,
		Message:     s.Message,
		AmountInt:   s.AmountInt,
		Currency:    s.Currency,
		IsRecurring: s.IsRecurring,
		CreatedAt:   s.CreatedAt,
	}
}

// GoalStats is the aggregate goal-progress view. Totals are derived on every
// read; nothing here is stored.
type GoalStats struct {
	ProgressPercent  int               `json:"progressPercent"`
	CurrentTotal     int64             `json:"currentTotal"`
	OneTimeTotal     int64             `json:"oneTimeTotal"`
	RecurringTotal   int64             `json:"recurringTotal"`
	GoalAmount       int64             `json:"goalAmount"`
	RecentSupporters []PublicSupporter `json:"recentSupporters"`
}

// FunnelEvent is fire-and-forget checkout telemetry. Duplicates are expected;
// it sits outside the ledger's consistency domain.
type FunnelEvent struct {
	ID        string
	EventType string
	Metadata  json.RawMessage
	CreatedAt time.Time
}

// Funnel event types recorded by the handlers.
const (
	FunnelCheckoutStarted   = "checkout_started"
	FunnelCheckoutSucceeded = "checkout_succeeded"
)
