package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/bissquit/incident-conductor/internal/domain"
)

// Store is the authoritative incident map, partitioned into an active
// set and a bounded history. Many readers may query it while each
// in-flight incident is mutated by its own pipeline run; every mutation
// is a short field-assignment critical section under one lock, never
// simulated stage work.
type Store struct {
	mu           sync.RWMutex
	active       map[string]*domain.Incident
	history      []*domain.Incident // newest last
	historyLimit int

	// All-time counters survive history truncation.
	totalCreated  int
	totalResolved int
	typeCounts    map[string]int
}

// NewStore creates a store retaining at most historyLimit archived
// incidents.
func NewStore(historyLimit int) *Store {
	if historyLimit <= 0 {
		historyLimit = 200
	}
	return &Store{
		active:       make(map[string]*domain.Incident),
		historyLimit: historyLimit,
		typeCounts:   make(map[string]int),
	}
}

// Create inserts a new incident into the active set. The incident must
// already carry its id and in_progress workflow status.
func (s *Store) Create(inc *domain.Incident) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[inc.ID] = inc
	s.totalCreated++
	if inc.IncidentType != "" {
		s.typeCounts[inc.IncidentType]++
	}
	activeIncidents.Set(float64(len(s.active)))
}

// Get returns a deep copy of an incident from the active set or
// history.
func (s *Store) Get(id string) (*domain.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if inc, ok := s.active[id]; ok {
		return inc.Clone(), nil
	}
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].ID == id {
			return s.history[i].Clone(), nil
		}
	}
	return nil, ErrIncidentNotFound
}

// List returns copies of active and archived incidents sorted by
// creation time, newest first, truncated to limit.
func (s *Store) List(limit int) []*domain.Incident {
	s.mu.RLock()
	all := make([]*domain.Incident, 0, len(s.active)+len(s.history))
	for _, inc := range s.active {
		all = append(all, inc.Clone())
	}
	for _, inc := range s.history {
		all = append(all, inc.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// Snapshot returns copies of every retained incident plus the all-time
// counters. Used by the dashboard aggregator.
func (s *Store) Snapshot() (incidents []*domain.Incident, totalCreated, totalResolved, active int, typeCounts map[string]int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	incidents = make([]*domain.Incident, 0, len(s.active)+len(s.history))
	for _, inc := range s.active {
		incidents = append(incidents, inc.Clone())
	}
	for _, inc := range s.history {
		incidents = append(incidents, inc.Clone())
	}
	typeCounts = make(map[string]int, len(s.typeCounts))
	for k, v := range s.typeCounts {
		typeCounts[k] = v
	}
	return incidents, s.totalCreated, s.totalResolved, len(s.active), typeCounts
}

// Counts returns the active and all-time incident counts.
func (s *Store) Counts() (active, totalCreated int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active), s.totalCreated
}

// Archive moves an incident from the active set to history, trimming
// the retained window. Archiving a non-active incident is a caller
// error and is silently ignored.
func (s *Store) Archive(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc, ok := s.active[id]
	if !ok {
		return
	}
	delete(s.active, id)
	s.history = append(s.history, inc)
	if len(s.history) > s.historyLimit {
		s.history = s.history[len(s.history)-s.historyLimit:]
	}
	if inc.Status == domain.StatusResolved {
		s.totalResolved++
	}
	activeIncidents.Set(float64(len(s.active)))
}

// BeginStage records that a stage started: sets the current stage and
// attaches a fresh running execution to the incident.
func (s *Store) BeginStage(incidentID string, exec *domain.StageExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc, ok := s.active[incidentID]
	if !ok {
		return ErrIncidentNotFound
	}
	inc.CurrentStage = exec.StageName
	inc.UpdatedAt = exec.StartedAt
	if inc.Executions == nil {
		inc.Executions = make(map[string]*domain.StageExecution)
	}
	inc.Executions[exec.StageName] = exec
	return nil
}

// SetProgress advances a running execution's progress. Progress is
// monotonic: a lower value than the current one is ignored.
func (s *Store) SetProgress(incidentID, stage string, progress int) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exec := s.runningExecution(incidentID, stage)
	if exec == nil {
		return
	}
	if progress > exec.Progress {
		exec.Progress = progress
	}
}

// AppendLog appends one entry to a running execution's log.
func (s *Store) AppendLog(incidentID, stage string, entry domain.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exec := s.runningExecution(incidentID, stage)
	if exec == nil {
		return
	}
	exec.Logs = append(exec.Logs, entry)
}

func (s *Store) runningExecution(incidentID, stage string) *domain.StageExecution {
	inc, ok := s.active[incidentID]
	if !ok {
		return nil
	}
	return inc.Executions[stage]
}

// StageResult carries the terminal state of one stage execution plus
// the incident field effects the stage produced.
type StageResult struct {
	Status       domain.ExecutionStatus
	ErrorMessage string
	CompletedAt  time.Time
	Output       map[string]any

	RootCause          string
	Resolution         string
	PageID             string
	TicketID           string
	RemediationApplied []string
}

// FinishStage freezes a stage execution and applies its effects to the
// incident: terminal execution status, duration, stage tally, and any
// incident fields the stage produced. Returns a copy of the frozen
// execution for archival.
func (s *Store) FinishStage(incidentID, stage string, res StageResult) (*domain.StageExecution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc, ok := s.active[incidentID]
	if !ok {
		return nil, ErrIncidentNotFound
	}
	exec, ok := inc.Executions[stage]
	if !ok {
		return nil, ErrExecutionNotFound
	}

	exec.Status = res.Status
	exec.ErrorMessage = res.ErrorMessage
	completed := res.CompletedAt
	exec.CompletedAt = &completed
	exec.DurationSeconds = completed.Sub(exec.StartedAt).Seconds()
	if res.Output != nil {
		exec.OutputData = res.Output
	}
	if res.Status == domain.ExecutionSuccess {
		exec.Progress = 100
		inc.CompletedStages = append(inc.CompletedStages, stage)
	} else {
		inc.FailedStages = append(inc.FailedStages, stage)
	}

	if res.RootCause != "" {
		inc.RootCause = res.RootCause
	}
	if res.Resolution != "" {
		inc.Resolution = res.Resolution
	}
	if res.PageID != "" {
		inc.PageID = res.PageID
	}
	if res.TicketID != "" {
		inc.TicketID = res.TicketID
	}
	if len(res.RemediationApplied) > 0 {
		inc.RemediationApplied = append(inc.RemediationApplied, res.RemediationApplied...)
	}
	inc.UpdatedAt = completed

	return exec.Clone(), nil
}

// FinishWorkflow records the terminal workflow state and clears the
// current stage marker.
func (s *Store) FinishWorkflow(incidentID string, status domain.Status, wf domain.WorkflowStatus, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc, ok := s.active[incidentID]
	if !ok {
		return
	}
	inc.Status = status
	inc.WorkflowStatus = wf
	inc.CurrentStage = ""
	inc.UpdatedAt = now
}
