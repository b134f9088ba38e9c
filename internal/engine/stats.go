package engine

import (
	"time"

	"github.com/bissquit/incident-conductor/internal/domain"
	"github.com/bissquit/incident-conductor/internal/pkg/clock"
)

// IncidentStats summarizes the incident population.
type IncidentStats struct {
	Active           int            `json:"active"`
	TotalAllTime     int            `json:"total_all_time"`
	Today            int            `json:"today"`
	ResolvedToday    int            `json:"resolved_today"`
	TypeDistribution map[string]int `json:"type_distribution"`
}

// Stats is one dashboard snapshot, computed fresh on every call.
type Stats struct {
	Incidents          IncidentStats         `json:"incidents"`
	Stages             map[string]StageStats `json:"stages"`
	OverallSuccessRate float64               `json:"overall_success_rate"`
	GeneratedAt        time.Time             `json:"generated_at"`
}

// Aggregator computes derived statistics by reading the incident store
// and execution history index on demand. It holds no state of its own.
type Aggregator struct {
	store    *Store
	history  *HistoryIndex
	registry *Registry
	clk      clock.Clock
}

// NewAggregator creates a dashboard aggregator.
func NewAggregator(store *Store, history *HistoryIndex, registry *Registry, clk clock.Clock) *Aggregator {
	return &Aggregator{store: store, history: history, registry: registry, clk: clk}
}

// Snapshot computes the current dashboard statistics. Every division
// is guarded against an empty data set: with zero incidents or
// executions all rates are zero, never NaN.
func (a *Aggregator) Snapshot() *Stats {
	now := a.clk.Now()
	incidents, totalCreated, totalResolved, active, typeCounts := a.store.Snapshot()

	today := 0
	resolvedToday := 0
	year, month, day := now.Date()
	for _, inc := range incidents {
		y, m, d := inc.CreatedAt.Date()
		if y == year && m == month && d == day {
			today++
			if inc.Status == domain.StatusResolved {
				resolvedToday++
			}
		}
	}

	stages := make(map[string]StageStats, a.registry.Len())
	for _, name := range a.registry.Names() {
		stages[name] = a.history.Stats(name)
	}

	divisor := totalCreated
	if divisor < 1 {
		divisor = 1
	}

	return &Stats{
		Incidents: IncidentStats{
			Active:           active,
			TotalAllTime:     totalCreated,
			Today:            today,
			ResolvedToday:    resolvedToday,
			TypeDistribution: typeCounts,
		},
		Stages:             stages,
		OverallSuccessRate: float64(totalResolved) / float64(divisor) * 100,
		GeneratedAt:        now,
	}
}
