package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bissquit/incident-conductor/internal/domain"
	"github.com/bissquit/incident-conductor/internal/pkg/clock"
	"github.com/google/uuid"
)

// StageHandle lets a running stage report progress and activity. Every
// call mutates the live execution record and publishes a realtime
// event immediately.
type StageHandle struct {
	incidentID  string
	stageName   string
	executionID string

	store *Store
	bus   *Bus
	clk   clock.Clock
	rng   *lockedRand
}

// Progress advances the execution's progress (0-100, monotonic).
func (h *StageHandle) Progress(n int) {
	h.store.SetProgress(h.incidentID, h.stageName, n)
	h.publish("progress", map[string]any{"progress": n})
}

// Log appends an entry to the execution's activity log.
func (h *StageHandle) Log(level, message string) {
	h.store.AppendLog(h.incidentID, h.stageName, domain.LogEntry{
		Timestamp:   h.clk.Now(),
		Level:       level,
		Message:     message,
		ExecutionID: h.executionID,
	})
	h.publish("log", map[string]any{"level": level, "message": message})
}

// Infof logs a formatted info-level entry.
func (h *StageHandle) Infof(format string, args ...any) {
	h.Log(domain.LogLevelInfo, fmt.Sprintf(format, args...))
}

// Work simulates stage latency: it sleeps a jittered duration in
// [min, max] on the injected clock. This and the inter-stage delay are
// the only designed suspension points of a run.
func (h *StageHandle) Work(ctx context.Context, min, max time.Duration) {
	_ = h.clk.Sleep(ctx, h.rng.Between(min, max))
}

// Chance returns true with probability p. Backed by the engine's
// seedable random source so tests can pin outcomes.
func (h *StageHandle) Chance(p float64) bool {
	return h.rng.Float64() < p
}

// PickIndex returns a random index in [0, n).
func (h *StageHandle) PickIndex(n int) int {
	return h.rng.IntN(n)
}

// Float64 returns a random value in [0, 1).
func (h *StageHandle) Float64() float64 {
	return h.rng.Float64()
}

// Now returns the engine clock's current time.
func (h *StageHandle) Now() time.Time {
	return h.clk.Now()
}

func (h *StageHandle) publish(event string, payload map[string]any) {
	payload["stage"] = h.stageName
	payload["event"] = event
	h.bus.Publish(h.incidentID, domain.Message{
		Type:       domain.MessageStatusUpdate,
		IncidentID: h.incidentID,
		Payload:    payload,
		Timestamp:  h.clk.Now(),
	})
}

// Executor drives one incident through the stage registry in order,
// updating the store and history index and publishing events. One
// executor serves all incidents; each incident gets exactly one Run.
type Executor struct {
	store    *Store
	history  *HistoryIndex
	bus      *Bus
	registry *Registry
	clk      clock.Clock
	rng      *lockedRand
	logger   *slog.Logger

	delayMin time.Duration
	delayMax time.Duration
}

// Run executes the full pipeline for one incident, from the first stage
// to a terminal workflow status. Calling it twice for the same incident
// is a scheduling error; the engine schedules it exactly once at
// trigger time. Run never returns before the incident is archived.
func (e *Executor) Run(ctx context.Context, incidentID string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("pipeline run failed",
				"incident_id", incidentID,
				"panic", r,
			)
			e.finish(incidentID, domain.StatusFailed, domain.WorkflowFailed)
		}
	}()

	inc, err := e.store.Get(incidentID)
	if err != nil {
		e.logger.Error("pipeline run for unknown incident", "incident_id", incidentID)
		return
	}

	e.logger.Info("pipeline started",
		"incident_id", incidentID,
		"incident_type", inc.IncidentType,
		"severity", inc.Severity,
	)

	for _, stage := range e.registry.Stages() {
		e.runStage(ctx, stage, incidentID)

		// Simulated downstream latency between stages.
		_ = e.clk.Sleep(ctx, e.rng.Between(e.delayMin, e.delayMax))
	}

	final, err := e.store.Get(incidentID)
	if err != nil {
		return
	}
	status := domain.StatusResolved
	if len(final.FailedStages) > 0 {
		status = domain.StatusPartiallyResolved
	}
	e.finish(incidentID, status, domain.WorkflowCompleted)
}

func (e *Executor) runStage(ctx context.Context, stage Stage, incidentID string) {
	name := stage.Name()
	started := e.clk.Now()

	snapshot, err := e.store.Get(incidentID)
	if err != nil {
		return
	}

	exec := &domain.StageExecution{
		ExecutionID: uuid.NewString(),
		StageName:   name,
		IncidentID:  incidentID,
		Status:      domain.ExecutionRunning,
		StartedAt:   started,
		InputData: map[string]any{
			"incident_type":    snapshot.IncidentType,
			"severity":         string(snapshot.Severity),
			"affected_systems": snapshot.AffectedSystems,
		},
	}
	if err := e.store.BeginStage(incidentID, exec); err != nil {
		return
	}

	handle := &StageHandle{
		incidentID:  incidentID,
		stageName:   name,
		executionID: exec.ExecutionID,
		store:       e.store,
		bus:         e.bus,
		clk:         e.clk,
		rng:         e.rng,
	}
	handle.publish("stage_started", map[string]any{})

	outcome, stageErr := e.invoke(ctx, stage, *snapshot, handle)

	result := StageResult{
		Status:             domain.ExecutionSuccess,
		CompletedAt:        e.clk.Now(),
		Output:             outcome.Output,
		RootCause:          outcome.RootCause,
		Resolution:         outcome.Resolution,
		PageID:             outcome.PageID,
		TicketID:           outcome.TicketID,
		RemediationApplied: outcome.RemediationApplied,
	}
	if stageErr != nil {
		result.Status = domain.ExecutionError
		result.ErrorMessage = stageErr.Error()
		e.logger.Warn("stage failed",
			"incident_id", incidentID,
			"stage", name,
			"error", stageErr,
		)
	}

	frozen, err := e.store.FinishStage(incidentID, name, result)
	if err != nil {
		return
	}
	e.history.Append(frozen)
	recordStageExecution(name, string(result.Status), result.CompletedAt.Sub(started))

	handle.publish("stage_finished", map[string]any{
		"status":           string(result.Status),
		"duration_seconds": frozen.DurationSeconds,
	})
}

// invoke runs the stage function, converting a panic into a stage-level
// error so one misbehaving stage never takes down the run.
func (e *Executor) invoke(ctx context.Context, stage Stage, inc domain.Incident, h *StageHandle) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage panic: %v", r)
		}
	}()
	return stage.Run(ctx, inc, h)
}

// finish records the terminal state, archives the incident, publishes
// the single terminal message, and closes the incident's topic.
func (e *Executor) finish(incidentID string, status domain.Status, wf domain.WorkflowStatus) {
	now := e.clk.Now()
	e.store.FinishWorkflow(incidentID, status, wf, now)

	final, err := e.store.Get(incidentID)
	if err != nil {
		return
	}
	e.store.Archive(incidentID)
	incidentsCompleted.WithLabelValues(string(status)).Inc()

	e.logger.Info("pipeline finished",
		"incident_id", incidentID,
		"status", status,
		"workflow_status", wf,
		"completed_stages", len(final.CompletedStages),
		"failed_stages", len(final.FailedStages),
	)

	e.bus.Publish(incidentID, domain.Message{
		Type:       domain.MessageWorkflowCompleted,
		IncidentID: incidentID,
		Payload: map[string]any{
			"status":           string(status),
			"workflow_status":  string(wf),
			"completed_stages": final.CompletedStages,
			"failed_stages":    final.FailedStages,
			"resolution":       final.Resolution,
		},
		Timestamp: now,
	})
	e.bus.CloseTopic(incidentID)

	e.bus.Publish(TopicGlobal, domain.Message{
		Type:      domain.MessageIncidentListChanged,
		Payload:   map[string]any{"incident_id": incidentID, "change": "archived"},
		Timestamp: now,
	})
}
