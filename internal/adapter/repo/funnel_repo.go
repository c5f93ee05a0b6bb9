package repo

import (
	"context"
	"encoding/json"

	"github.com/mauritzerick/uploadcaffeine-sub000/internal/domain"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/infra"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/sqlinline"
)

// FunnelEventRepositoryPG implements FunnelEventRepository using PostgreSQL.
// Events have no uniqueness constraint; duplicates are acceptable.
type FunnelEventRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewFunnelEventRepository creates a new funnel event repo.
func NewFunnelEventRepository(sql infra.SQLExecutor) *FunnelEventRepositoryPG {
	return &FunnelEventRepositoryPG{sql: sql}
}

// Record inserts a funnel event. Callers treat failures as log-and-continue.
func (r *FunnelEventRepositoryPG) Record(ctx context.Context, event *domain.FunnelEvent) error {
	metadata := event.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertFunnelEvent, event.EventType, metadata)
	return err
}

var _ domain.FunnelEventRepository = (*FunnelEventRepositoryPG)(nil)
