package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mauritzerick/uploadcaffeine-sub000/internal/domain"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/infra"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/sqlinline"
)

// SupporterRepositoryPG implements SupporterRepository using PostgreSQL.
// The insert relies on the unique index on external_ref for idempotency, so
// concurrent redeliveries of the same confirmation cannot both insert.
type SupporterRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewSupporterRepository creates a new supporter repo.
func NewSupporterRepository(sql infra.SQLExecutor) *SupporterRepositoryPG {
	return &SupporterRepositoryPG{sql: sql}
}

// RecordIfNew inserts the record unless its external reference already
// exists. ON CONFLICT DO NOTHING yields no row for a duplicate, which is
// reported as (false, nil).
func (r *SupporterRepositoryPG) RecordIfNew(ctx context.Context, record *domain.SupporterRecord) (bool, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertSupporter,
		record.ExternalRef, record.Name, record.Email, record.Message,
		record.AmountInt, record.Currency, record.IsRecurring)
	if err := row.Scan(&record.ID, &record.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListRecent returns the newest records first, limited by the input value.
func (r *SupporterRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.SupporterRecord, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListRecentSupporters, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.SupporterRecord
	for rows.Next() {
		var rec domain.SupporterRecord
		if err := rows.Scan(&rec.ID, &rec.ExternalRef, &rec.Name, &rec.Email, &rec.Message,
			&rec.AmountInt, &rec.Currency, &rec.IsRecurring, &rec.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SumOneTimeSince totals non-recurring contributions created at or after the
// given instant.
func (r *SupporterRepositoryPG) SumOneTimeSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	row := r.sql.QueryRow(ctx, sqlinline.QSumOneTimeSince, since)
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// SumRecurring totals recurring contributions over all time.
func (r *SupporterRepositoryPG) SumRecurring(ctx context.Context) (int64, error) {
	var total int64
	row := r.sql.QueryRow(ctx, sqlinline.QSumRecurring)
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

var _ domain.SupporterRepository = (*SupporterRepositoryPG)(nil)
