package aggregate

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mauritzerick/uploadcaffeine-sub000/internal/domain"
)

const recentSupportersLimit = 10

// Engine computes goal-progress statistics from the live supporter set.
// Nothing is cached: every call recomputes, so staleness is bounded only by
// the caller's poll interval.
type Engine struct {
	Supporters domain.SupporterRepository
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewEngine(supporters domain.SupporterRepository) *Engine {
	return &Engine{Supporters: supporters, Now: time.Now}
}

// ComputeStats derives the aggregate view against the configured goal.
// One-time contributions are windowed to the current UTC calendar month;
// recurring contributions are summed over all time. The asymmetry is a
// product policy, not an accident.
func (e *Engine) ComputeStats(ctx context.Context, goalMinorUnits int64) (*domain.GoalStats, error) {
	oneTime, err := e.Supporters.SumOneTimeSince(ctx, e.monthStartUTC())
	if err != nil {
		return nil, fmt.Errorf("sum one-time: %w", err)
	}
	recurring, err := e.Supporters.SumRecurring(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum recurring: %w", err)
	}
	recent, err := e.Supporters.ListRecent(ctx, recentSupportersLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}

	current := oneTime + recurring
	public := make([]domain.PublicSupporter, 0, len(recent))
	for i := range recent {
		public = append(public, recent[i].Public())
	}

	return &domain.GoalStats{
		ProgressPercent:  ProgressPercent(current, goalMinorUnits),
		CurrentTotal:     current,
		OneTimeTotal:     oneTime,
		RecurringTotal:   recurring,
		GoalAmount:       goalMinorUnits,
		RecentSupporters: public,
	}, nil
}

// ProgressPercent is min(100, round(current/goal*100)); 0 for a non-positive goal.
func ProgressPercent(current, goal int64) int {
	if goal <= 0 {
		return 0
	}
	percent := int(math.Round(float64(current) / float64(goal) * 100))
	if percent > 100 {
		return 100
	}
	return percent
}

func (e *Engine) monthStartUTC() time.Time {
	now := e.now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
