package handlers

import (
	"net/http"
)

// Stats serves the aggregate goal-progress view. It also backs
// POST /force-refresh-stats: there is no cache to invalidate, the route
// exists for interface symmetry with the UI.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Stats.ComputeStats(r.Context(), a.GoalAmount)
	if err != nil {
		a.Logger.Error().Err(err).Msg("compute stats failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	a.json(w, http.StatusOK, stats)
}
