package domain

import (
	"context"
	"time"
)

// SupporterRepository handles supporter ledger persistence.
type SupporterRepository interface {
	// RecordIfNew inserts the record unless its ExternalRef is already
	// present. Returns true when a row was inserted. The check-and-insert
	// is atomic at the storage layer.
	RecordIfNew(ctx context.Context, record *SupporterRecord) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]SupporterRecord, error)
	SumOneTimeSince(ctx context.Context, since time.Time) (int64, error)
	SumRecurring(ctx context.Context) (int64, error)
}

// FunnelEventRepository records checkout funnel telemetry.
type FunnelEventRepository interface {
	Record(ctx context.Context, event *FunnelEvent) error
}
