package stages

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/bissquit/incident-conductor/internal/catalog"
	"github.com/bissquit/incident-conductor/internal/domain"
	"github.com/bissquit/incident-conductor/internal/engine"
	"github.com/bissquit/incident-conductor/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pipelineOrder = []string{
	"detection", "rca", "escalation", "ticketing",
	"notification", "remediation", "validation",
}

func newPipelineEngine(t *testing.T) *engine.Engine {
	t.Helper()
	cat := catalog.Default()
	registry, err := engine.NewRegistry(All(cat)...)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fake := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return engine.New(engine.Config{
		StageDelayMin: 500 * time.Millisecond,
		StageDelayMax: 1500 * time.Millisecond,
		Seed:          7,
	}, registry, cat, fake, logger)
}

func runPipeline(t *testing.T, e *engine.Engine, input engine.TriggerInput) *domain.Incident {
	t.Helper()
	inc, err := e.Trigger(input)
	require.NoError(t, err)

	var final *domain.Incident
	require.Eventually(t, func() bool {
		got, err := e.Status(inc.ID)
		if err != nil || !got.WorkflowStatus.IsTerminal() {
			return false
		}
		final = got
		return true
	}, 5*time.Second, 2*time.Millisecond, "pipeline did not finish")
	return final
}

func TestAll_RegistersSevenStagesInOrder(t *testing.T) {
	cat := catalog.Default()
	stages := All(cat)
	require.Len(t, stages, len(pipelineOrder))
	for i, st := range stages {
		assert.Equal(t, pipelineOrder[i], st.Name())
		assert.NotEmpty(t, st.Description())
	}
}

func TestPipeline_DatabaseIncidentEndToEnd(t *testing.T) {
	e := newPipelineEngine(t)
	defer e.Shutdown(context.Background())

	final := runPipeline(t, e, engine.TriggerInput{
		Title:           "Database Connection Pool Exhaustion - Production MySQL",
		Severity:        domain.SeverityCritical,
		IncidentType:    "database",
		AffectedSystems: []string{"mysql-prod-01"},
	})

	assert.Equal(t, domain.WorkflowCompleted, final.WorkflowStatus)
	require.Len(t, final.Executions, len(pipelineOrder))

	// Validation is the only stage allowed to fail in simulation; every
	// other stage must have succeeded.
	for _, name := range pipelineOrder[:len(pipelineOrder)-1] {
		exec := final.Executions[name]
		require.NotNil(t, exec, "missing execution for %s", name)
		assert.Equal(t, domain.ExecutionSuccess, exec.Status, "stage %s", name)
		assert.Equal(t, 100, exec.Progress)
		assert.NotEmpty(t, exec.Logs)
		require.NotNil(t, exec.CompletedAt)
	}

	switch final.Status {
	case domain.StatusResolved:
		assert.Empty(t, final.FailedStages)
		assert.Contains(t, final.Resolution, "fully resolved")
	case domain.StatusPartiallyResolved:
		assert.Equal(t, []string{"validation"}, final.FailedStages)
		assert.Contains(t, final.Resolution, "partially resolved")
	default:
		t.Fatalf("unexpected final status %q", final.Status)
	}

	assert.Equal(t, "Connection pool exhaustion due to long-running queries and insufficient connection cleanup", final.RootCause)
	assert.True(t, strings.HasPrefix(final.PageID, "PD-DATABASE-"), "page id %q", final.PageID)
	assert.True(t, strings.HasPrefix(final.TicketID, "TKT-DATABASE-20250601-"), "ticket id %q", final.TicketID)
	assert.NotEmpty(t, final.RemediationApplied)
	assert.Contains(t, final.RemediationApplied, "connection_pool_scaling_and_optimization")
}

func TestPipeline_AdHocIncidentGetsGenericTreatment(t *testing.T) {
	e := newPipelineEngine(t)
	defer e.Shutdown(context.Background())

	final := runPipeline(t, e, engine.TriggerInput{
		Title:        "Object storage latency regression",
		Severity:     domain.SeverityLow,
		IncidentType: "storage",
	})

	assert.Equal(t, "storage issue requiring deeper investigation", final.RootCause)
	assert.True(t, strings.HasPrefix(final.PageID, "PD-STORAGE-"))
	assert.Equal(t, []string{
		"service_restart_and_health_verification",
		"resource_scaling_and_optimization",
		"configuration_review_and_reset",
		"monitoring_enhancement_and_alerting",
	}, final.RemediationApplied)

	ticketing := final.Executions["ticketing"]
	require.NotNil(t, ticketing)
	assert.Equal(t, "General Services", ticketing.OutputData["category"])

	escalation := final.Executions["escalation"]
	require.NotNil(t, escalation)
	assert.Equal(t, "General Operations", escalation.OutputData["escalated_to"])
}

func TestPipeline_StageOutputsCarryCategoryDetail(t *testing.T) {
	e := newPipelineEngine(t)
	defer e.Shutdown(context.Background())

	final := runPipeline(t, e, engine.TriggerInput{
		Title:        "DDoS Attack Detected - Main Web Application",
		Severity:     domain.SeverityCritical,
		IncidentType: "security",
	})

	detection := final.Executions["detection"]
	require.NotNil(t, detection)
	assert.Equal(t, "security_breach", detection.OutputData["anomaly_type"])
	assert.Equal(t, "Critical", detection.OutputData["threat_level"])

	rca := final.Executions["rca"]
	require.NotNil(t, rca)
	assert.Equal(t, final.RootCause, rca.OutputData["root_cause"])

	notification := final.Executions["notification"]
	require.NotNil(t, notification)
	assert.Equal(t, true, notification.OutputData["executive_summary"])
	notified, ok := notification.OutputData["notified"].([]string)
	require.True(t, ok)
	assert.Contains(t, notified, "legal@company.com")

	remediation := final.Executions["remediation"]
	require.NotNil(t, remediation)
	assert.Equal(t, "low", remediation.OutputData["automation_level"])

	validation := final.Executions["validation"]
	require.NotNil(t, validation)
	checks, ok := validation.OutputData["health_checks"].(map[string]string)
	require.True(t, ok)
	assert.NotEmpty(t, checks["threat_level"])
}

func TestSuccessProbability_OrderedBySeverity(t *testing.T) {
	low := successProbability(domain.SeverityLow)
	medium := successProbability(domain.SeverityMedium)
	high := successProbability(domain.SeverityHigh)
	critical := successProbability(domain.SeverityCritical)

	assert.Greater(t, low, medium)
	assert.Greater(t, medium, high)
	assert.Greater(t, high, critical)
	assert.Equal(t, successProbability(domain.Severity("unknown")), high)
}
