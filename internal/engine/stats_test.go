package engine

import (
	"testing"
	"time"

	"github.com/bissquit/incident-conductor/internal/domain"
	"github.com/bissquit/incident-conductor/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(t *testing.T, clk clock.Clock) (*Aggregator, *Store, *HistoryIndex) {
	t.Helper()
	registry, err := NewRegistry(
		&scriptedStage{name: "detection"},
		&scriptedStage{name: "validation"},
	)
	require.NoError(t, err)
	store := NewStore(10)
	history := NewHistoryIndex(10)
	return NewAggregator(store, history, registry, clk), store, history
}

func TestAggregator_EmptySnapshotHasNoNaN(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	agg, _, _ := newTestAggregator(t, fake)

	stats := agg.Snapshot()
	assert.Zero(t, stats.Incidents.Active)
	assert.Zero(t, stats.Incidents.TotalAllTime)
	assert.Zero(t, stats.Incidents.Today)
	assert.Zero(t, stats.OverallSuccessRate)

	require.Contains(t, stats.Stages, "detection")
	assert.Zero(t, stats.Stages["detection"].SuccessRate)
	assert.Zero(t, stats.Stages["detection"].AverageDuration)
}

func TestAggregator_CountsTodayByClockDate(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	fake := clock.NewFake(now)
	agg, store, _ := newTestAggregator(t, fake)

	yesterday := newTestIncident("INC-old", now.Add(-26*time.Hour))
	store.Create(yesterday)
	store.FinishWorkflow("INC-old", domain.StatusResolved, domain.WorkflowCompleted, now.Add(-25*time.Hour))
	store.Archive("INC-old")

	today := newTestIncident("INC-today", now.Add(-time.Hour))
	store.Create(today)
	store.FinishWorkflow("INC-today", domain.StatusResolved, domain.WorkflowCompleted, now)
	store.Archive("INC-today")

	stillRunning := newTestIncident("INC-live", now)
	store.Create(stillRunning)

	stats := agg.Snapshot()
	assert.Equal(t, 1, stats.Incidents.Active)
	assert.Equal(t, 3, stats.Incidents.TotalAllTime)
	assert.Equal(t, 2, stats.Incidents.Today)
	assert.Equal(t, 1, stats.Incidents.ResolvedToday)
	assert.Equal(t, map[string]int{"database": 3}, stats.Incidents.TypeDistribution)
	assert.Equal(t, now, stats.GeneratedAt)
}

func TestAggregator_OverallSuccessRate(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	fake := clock.NewFake(now)
	agg, store, history := newTestAggregator(t, fake)

	for i, status := range []domain.Status{
		domain.StatusResolved,
		domain.StatusResolved,
		domain.StatusResolved,
		domain.StatusPartiallyResolved,
	} {
		id := string(rune('a'+i)) + "-inc"
		store.Create(newTestIncident(id, now))
		store.FinishWorkflow(id, status, domain.WorkflowCompleted, now)
		store.Archive(id)
	}

	history.Append(newCompletedExecution("exec-1", "detection", now, domain.ExecutionSuccess, 1.5))
	history.Append(newCompletedExecution("exec-2", "detection", now, domain.ExecutionError, 0.5))

	stats := agg.Snapshot()
	assert.InDelta(t, 75.0, stats.OverallSuccessRate, 0.001)
	assert.Equal(t, 2, stats.Stages["detection"].TotalExecutions)
	assert.InDelta(t, 50.0, stats.Stages["detection"].SuccessRate, 0.001)
	assert.InDelta(t, 1.0, stats.Stages["detection"].AverageDuration, 0.001)
}
