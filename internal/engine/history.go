package engine

import (
	"sync"
	"time"

	"github.com/bissquit/incident-conductor/internal/domain"
)

// HistoryIndex is the per-stage append-only log of completed
// executions. It retains a bounded window per stage for retrieval while
// all-time counters keep reporting the true totals.
type HistoryIndex struct {
	mu     sync.RWMutex
	limit  int
	recent map[string][]*domain.StageExecution // oldest first

	totals       map[string]int
	successes    map[string]int
	durationSums map[string]float64
	lastActivity map[string]time.Time
}

// NewHistoryIndex creates an index retaining at most limit executions
// per stage name.
func NewHistoryIndex(limit int) *HistoryIndex {
	if limit <= 0 {
		limit = 50
	}
	return &HistoryIndex{
		limit:        limit,
		recent:       make(map[string][]*domain.StageExecution),
		totals:       make(map[string]int),
		successes:    make(map[string]int),
		durationSums: make(map[string]float64),
		lastActivity: make(map[string]time.Time),
	}
}

// Append archives a completed execution under its stage name.
func (h *HistoryIndex) Append(exec *domain.StageExecution) {
	h.mu.Lock()
	defer h.mu.Unlock()
	stage := exec.StageName
	window := append(h.recent[stage], exec.Clone())
	if len(window) > h.limit {
		window = window[len(window)-h.limit:]
	}
	h.recent[stage] = window

	h.totals[stage]++
	if exec.Status == domain.ExecutionSuccess {
		h.successes[stage]++
	}
	if exec.DurationSeconds > 0 {
		h.durationSums[stage] += exec.DurationSeconds
	}
	if exec.StartedAt.After(h.lastActivity[stage]) {
		h.lastActivity[stage] = exec.StartedAt
	}
}

// Recent returns up to limit retained executions for a stage, most
// recent first.
func (h *HistoryIndex) Recent(stage string, limit int) []*domain.StageExecution {
	h.mu.RLock()
	defer h.mu.RUnlock()
	window := h.recent[stage]
	if limit <= 0 || limit > len(window) {
		limit = len(window)
	}
	out := make([]*domain.StageExecution, 0, limit)
	for i := len(window) - 1; i >= len(window)-limit; i-- {
		out = append(out, window[i].Clone())
	}
	return out
}

// TotalCount returns the all-time number of executions appended for a
// stage, including entries evicted from the retained window.
func (h *HistoryIndex) TotalCount(stage string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totals[stage]
}

// StageStats summarizes one stage's all-time execution record.
type StageStats struct {
	TotalExecutions      int       `json:"total_executions"`
	SuccessfulExecutions int       `json:"successful_executions"`
	SuccessRate          float64   `json:"success_rate"`
	AverageDuration      float64   `json:"average_duration"`
	LastActivity         time.Time `json:"last_activity"`
}

// Stats returns the aggregate counters for a stage. Divisions are
// guarded so a stage with no executions reports zeros.
func (h *HistoryIndex) Stats(stage string) StageStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := h.totals[stage]
	divisor := total
	if divisor < 1 {
		divisor = 1
	}
	return StageStats{
		TotalExecutions:      total,
		SuccessfulExecutions: h.successes[stage],
		SuccessRate:          float64(h.successes[stage]) / float64(divisor) * 100,
		AverageDuration:      h.durationSums[stage] / float64(divisor),
		LastActivity:         h.lastActivity[stage],
	}
}

// Latest returns the most recent retained execution for a stage, or nil.
func (h *HistoryIndex) Latest(stage string) *domain.StageExecution {
	h.mu.RLock()
	defer h.mu.RUnlock()
	window := h.recent[stage]
	if len(window) == 0 {
		return nil
	}
	return window[len(window)-1].Clone()
}
