package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/bissquit/incident-conductor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompletedExecution(id, stage string, startedAt time.Time, status domain.ExecutionStatus, duration float64) *domain.StageExecution {
	completed := startedAt.Add(time.Duration(duration * float64(time.Second)))
	return &domain.StageExecution{
		ExecutionID:     id,
		StageName:       stage,
		IncidentID:      "INC-1",
		Status:          status,
		Progress:        100,
		StartedAt:       startedAt,
		CompletedAt:     &completed,
		DurationSeconds: duration,
	}
}

func TestHistoryIndex_WindowEvictionKeepsTotals(t *testing.T) {
	idx := NewHistoryIndex(3)
	base := time.Now()
	for i := 0; i < 5; i++ {
		idx.Append(newCompletedExecution(
			fmt.Sprintf("exec-%d", i), "detection",
			base.Add(time.Duration(i)*time.Second),
			domain.ExecutionSuccess, 1,
		))
	}

	assert.Equal(t, 5, idx.TotalCount("detection"))
	assert.Len(t, idx.Recent("detection", 0), 3)
}

func TestHistoryIndex_RecentMostRecentFirst(t *testing.T) {
	idx := NewHistoryIndex(10)
	base := time.Now()
	for i := 0; i < 3; i++ {
		idx.Append(newCompletedExecution(
			fmt.Sprintf("exec-%d", i), "rca",
			base.Add(time.Duration(i)*time.Second),
			domain.ExecutionSuccess, 1,
		))
	}

	recent := idx.Recent("rca", 2)
	require.Len(t, recent, 2)
	assert.Equal(t, "exec-2", recent[0].ExecutionID)
	assert.Equal(t, "exec-1", recent[1].ExecutionID)
}

func TestHistoryIndex_StatsWithNoExecutions(t *testing.T) {
	idx := NewHistoryIndex(10)

	stats := idx.Stats("escalation")
	assert.Equal(t, 0, stats.TotalExecutions)
	assert.Zero(t, stats.SuccessRate)
	assert.Zero(t, stats.AverageDuration)
}

func TestHistoryIndex_StatsAggregation(t *testing.T) {
	idx := NewHistoryIndex(10)
	base := time.Now()
	idx.Append(newCompletedExecution("exec-1", "validation", base, domain.ExecutionSuccess, 2))
	idx.Append(newCompletedExecution("exec-2", "validation", base.Add(time.Second), domain.ExecutionSuccess, 4))
	idx.Append(newCompletedExecution("exec-3", "validation", base.Add(2*time.Second), domain.ExecutionError, 3))

	stats := idx.Stats("validation")
	assert.Equal(t, 3, stats.TotalExecutions)
	assert.Equal(t, 2, stats.SuccessfulExecutions)
	assert.InDelta(t, 66.66, stats.SuccessRate, 0.1)
	assert.InDelta(t, 3.0, stats.AverageDuration, 0.001)
	assert.Equal(t, base.Add(2*time.Second), stats.LastActivity)
}

func TestHistoryIndex_Latest(t *testing.T) {
	idx := NewHistoryIndex(10)
	assert.Nil(t, idx.Latest("ticketing"))

	base := time.Now()
	idx.Append(newCompletedExecution("exec-1", "ticketing", base, domain.ExecutionSuccess, 1))
	idx.Append(newCompletedExecution("exec-2", "ticketing", base.Add(time.Second), domain.ExecutionSuccess, 1))

	latest := idx.Latest("ticketing")
	require.NotNil(t, latest)
	assert.Equal(t, "exec-2", latest.ExecutionID)
}

func TestHistoryIndex_AppendStoresCopy(t *testing.T) {
	idx := NewHistoryIndex(10)
	exec := newCompletedExecution("exec-1", "detection", time.Now(), domain.ExecutionSuccess, 1)
	idx.Append(exec)

	exec.Status = domain.ExecutionError

	latest := idx.Latest("detection")
	require.NotNil(t, latest)
	assert.Equal(t, domain.ExecutionSuccess, latest.Status)
}
