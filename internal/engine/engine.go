// Package engine implements the incident workflow orchestration core:
// the incident store, stage registry, pipeline executor, execution
// history index, realtime event bus, and dashboard aggregator.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bissquit/incident-conductor/internal/catalog"
	"github.com/bissquit/incident-conductor/internal/domain"
	"github.com/bissquit/incident-conductor/internal/pkg/clock"
	"github.com/google/uuid"
)

// Config tunes the engine.
type Config struct {
	// StageDelayMin/Max bound the simulated inter-stage latency.
	StageDelayMin time.Duration
	StageDelayMax time.Duration
	// StageHistoryLimit bounds the retained execution window per stage.
	StageHistoryLimit int
	// IncidentHistoryLimit bounds the retained archived incidents.
	IncidentHistoryLimit int
	// BusBuffer is the per-subscriber queue size.
	BusBuffer int
	// Seed pins the random source; 0 seeds from the clock.
	Seed int64
}

// Engine is the workflow orchestration context: constructed once at
// process start, passed by reference to the transport layer, and shut
// down explicitly. It owns all engine state; there are no package-level
// singletons.
type Engine struct {
	store      *Store
	history    *HistoryIndex
	bus        *Bus
	registry   *Registry
	executor   *Executor
	aggregator *Aggregator
	catalog    *catalog.Catalog
	clk        clock.Clock
	rng        *lockedRand
	logger     *slog.Logger

	mu       sync.Mutex
	wg       sync.WaitGroup
	shutdown bool
}

// New creates an engine. The registry fixes the stage order for the
// engine's lifetime; the clock is injectable for deterministic tests.
func New(cfg Config, registry *Registry, cat *catalog.Catalog, clk clock.Clock, logger *slog.Logger) *Engine {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	rng := newLockedRand(cfg.Seed)
	store := NewStore(cfg.IncidentHistoryLimit)
	history := NewHistoryIndex(cfg.StageHistoryLimit)
	bus := NewBus(cfg.BusBuffer)

	e := &Engine{
		store:    store,
		history:  history,
		bus:      bus,
		registry: registry,
		catalog:  cat,
		clk:      clk,
		rng:      rng,
		logger:   logger,
	}
	e.executor = &Executor{
		store:    store,
		history:  history,
		bus:      bus,
		registry: registry,
		clk:      clk,
		rng:      rng,
		logger:   logger,
		delayMin: cfg.StageDelayMin,
		delayMax: cfg.StageDelayMax,
	}
	e.aggregator = NewAggregator(store, history, registry, clk)
	return e
}

// TriggerInput holds caller-supplied incident fields. All fields are
// optional: an empty or placeholder title selects a canned scenario
// from the catalog instead.
type TriggerInput struct {
	Title           string
	Description     string
	Severity        domain.Severity
	IncidentType    string
	AffectedSystems []string
}

// Trigger validates the input, creates the incident, and schedules its
// pipeline run exactly once. It returns a copy of the freshly created
// incident; the run proceeds in the background to a terminal state
// with no external cancellation.
func (e *Engine) Trigger(input TriggerInput) (*domain.Incident, error) {
	if input.Severity != "" && !input.Severity.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeverity, input.Severity)
	}

	e.mu.Lock()
	if e.shutdown {
		e.mu.Unlock()
		return nil, ErrShuttingDown
	}
	e.wg.Add(1)
	e.mu.Unlock()

	now := e.clk.Now()
	inc := e.buildIncident(input, now)
	e.store.Create(inc)
	incidentsTriggered.Inc()

	e.logger.Info("incident triggered",
		"incident_id", inc.ID,
		"title", inc.Title,
		"severity", inc.Severity,
		"incident_type", inc.IncidentType,
	)

	e.bus.Publish(TopicGlobal, domain.Message{
		Type:      domain.MessageIncidentListChanged,
		Payload:   map[string]any{"incident_id": inc.ID, "change": "created"},
		Timestamp: now,
	})

	// Runs are detached from the trigger request: once scheduled they
	// always reach a terminal state.
	go func() {
		defer e.wg.Done()
		e.executor.Run(context.Background(), inc.ID)
	}()

	return inc.Clone(), nil
}

func (e *Engine) buildIncident(input TriggerInput, now time.Time) *domain.Incident {
	inc := &domain.Incident{
		ID:             fmt.Sprintf("INC-%d-%s", now.Unix(), shortID()),
		WorkflowID:     uuid.NewString(),
		Status:         domain.StatusOpen,
		WorkflowStatus: domain.WorkflowInProgress,
		CreatedAt:      now,
		UpdatedAt:      now,
		Executions:     make(map[string]*domain.StageExecution),
	}

	title := strings.TrimSpace(input.Title)
	if title == "" || strings.EqualFold(title, catalog.PlaceholderTitle) {
		sc := e.catalog.Scenario(e.rng.IntN(e.catalog.ScenarioCount()))
		inc.Title = sc.Title
		inc.Description = sc.Description
		inc.Severity = sc.Severity
		inc.IncidentType = sc.IncidentType
		inc.AffectedSystems = append([]string(nil), sc.AffectedSystems...)
		return inc
	}

	inc.Title = title
	inc.Description = input.Description
	inc.Severity = input.Severity
	if inc.Severity == "" {
		inc.Severity = domain.SeverityMedium
	}
	inc.IncidentType = input.IncidentType
	if inc.IncidentType == "" {
		inc.IncidentType = "infrastructure"
	}
	inc.AffectedSystems = append([]string(nil), input.AffectedSystems...)
	return inc
}

func shortID() string {
	return uuid.NewString()[:8]
}

// Status returns the full incident view, active or archived.
func (e *Engine) Status(incidentID string) (*domain.Incident, error) {
	return e.store.Get(incidentID)
}

// StageLogs returns one stage's execution record for an incident,
// including its full log sequence.
func (e *Engine) StageLogs(incidentID, stage string) (*domain.StageExecution, error) {
	if _, ok := e.registry.Get(stage); !ok {
		return nil, fmt.Errorf("%w: %q", ErrStageNotFound, stage)
	}
	inc, err := e.store.Get(incidentID)
	if err != nil {
		return nil, err
	}
	exec, ok := inc.Executions[stage]
	if !ok {
		return nil, fmt.Errorf("%w: stage %q has not started for incident %s", ErrExecutionNotFound, stage, incidentID)
	}
	return exec, nil
}

// StageHistory returns the all-time execution count and the retained
// window (most recent first) for a stage.
func (e *Engine) StageHistory(stage string, limit int) (total int, recent []*domain.StageExecution, err error) {
	if _, ok := e.registry.Get(stage); !ok {
		return 0, nil, fmt.Errorf("%w: %q", ErrStageNotFound, stage)
	}
	return e.history.TotalCount(stage), e.history.Recent(stage, limit), nil
}

// List returns incidents newest-first plus population counts.
func (e *Engine) List(limit int) (incidents []*domain.Incident, total, active int) {
	incidents = e.store.List(limit)
	active, total = e.store.Counts()
	return incidents, total, active
}

// Counts returns the active and all-time incident counts without
// copying incident data. Cheap enough for liveness probes.
func (e *Engine) Counts() (active, total int) {
	return e.store.Counts()
}

// Stats computes a fresh dashboard snapshot.
func (e *Engine) Stats() *Stats {
	return e.aggregator.Snapshot()
}

// StageInfo describes one registered stage with its execution record.
type StageInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Stats       StageStats             `json:"stats"`
	Latest      *domain.StageExecution `json:"latest_execution,omitempty"`
}

// StageInfos returns the registered stages in pipeline order with
// their aggregate stats and most recent execution.
func (e *Engine) StageInfos() []StageInfo {
	infos := make([]StageInfo, 0, e.registry.Len())
	for _, st := range e.registry.Stages() {
		infos = append(infos, StageInfo{
			Name:        st.Name(),
			Description: st.Description(),
			Stats:       e.history.Stats(st.Name()),
			Latest:      e.history.Latest(st.Name()),
		})
	}
	return infos
}

// StageNames returns the pipeline stage names in order.
func (e *Engine) StageNames() []string {
	return e.registry.Names()
}

// Subscribe attaches a realtime subscription to an incident topic or
// the global topic.
func (e *Engine) Subscribe(topic string) *Subscription {
	return e.bus.Subscribe(topic)
}

// Unsubscribe detaches a subscription.
func (e *Engine) Unsubscribe(sub *Subscription) {
	e.bus.Unsubscribe(sub)
}

// SubscriberCount returns the number of live realtime subscriptions.
func (e *Engine) SubscriberCount() int {
	return e.bus.SubscriberCount()
}

// Shutdown stops accepting triggers and waits for in-flight pipeline
// runs to finish, bounded by ctx. Runs have no cancellation, so on a
// ctx deadline they are abandoned to the process exit.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.shutdown = true
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.bus.Close()
		return nil
	case <-ctx.Done():
		e.bus.Close()
		return fmt.Errorf("shutdown wait: %w", ctx.Err())
	}
}
