package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bissquit/incident-conductor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ScenarioSet(t *testing.T) {
	cat := Default()
	require.Equal(t, 5, cat.ScenarioCount())

	types := make(map[string]bool)
	for _, sc := range cat.Scenarios {
		assert.NotEmpty(t, sc.Title)
		assert.NotEmpty(t, sc.RootCause)
		assert.True(t, sc.Severity.IsValid())
		assert.NotEmpty(t, sc.AffectedSystems)
		types[sc.IncidentType] = true
	}
	assert.Len(t, types, 5, "each scenario covers a distinct incident type")

	// Index wraps around.
	assert.Equal(t, cat.Scenario(0).Title, cat.Scenario(5).Title)
}

func TestCatalog_RootCause(t *testing.T) {
	cat := Default()

	known := cat.RootCause("DDoS Attack Detected - Main Web Application", "security")
	assert.Contains(t, known, "DDoS attack")

	adhoc := cat.RootCause("Custom outage", "storage")
	assert.Equal(t, "storage issue requiring deeper investigation", adhoc)

	untyped := cat.RootCause("Custom outage", "")
	assert.Equal(t, "infrastructure issue requiring deeper investigation", untyped)
}

func TestCatalog_TeamSeverityWidening(t *testing.T) {
	cat := Default()

	assert.Equal(t, "Database Engineering", cat.Team("database", domain.SeverityMedium))
	assert.Equal(t, "Senior Database Engineering", cat.Team("database", domain.SeverityHigh))
	assert.Equal(t, "Senior Database Engineering + Management", cat.Team("database", domain.SeverityCritical))
	assert.Equal(t, "General Operations", cat.Team("unknown-type", domain.SeverityLow))
}

func TestCatalog_EngineerSelection(t *testing.T) {
	cat := Default()

	pickFirst := func(int) int { return 0 }
	assert.Equal(t, "Sarah Chen (DB Architect)", cat.Engineer("database", domain.SeverityMedium, pickFirst))
	assert.Equal(t, "Sarah Chen (DB Architect) + Backup Engineer", cat.Engineer("database", domain.SeverityCritical, pickFirst))

	// Unknown type falls back to the shared pool.
	assert.Equal(t, "Jamie Smith (Sr. Engineer)", cat.Engineer("storage", domain.SeverityLow, pickFirst))
}

func TestCatalog_Classify(t *testing.T) {
	cat := Default()

	priority, category, subcategory := cat.Classify("security", domain.SeverityCritical)
	assert.Equal(t, "0 - Emergency", priority)
	assert.Equal(t, "Security Incident", category)
	assert.Equal(t, "Threat Response", subcategory)

	priority, category, subcategory = cat.Classify("unknown-type", domain.SeverityLow)
	assert.Equal(t, "3 - Medium", priority)
	assert.Equal(t, "General Services", category)
	assert.Equal(t, "System Issue", subcategory)
}

func TestCatalog_StakeholdersDeduplicated(t *testing.T) {
	cat := Default()

	groups := cat.Stakeholders("security", domain.SeverityCritical)
	seen := make(map[string]int)
	for _, g := range groups {
		seen[g]++
	}
	for g, n := range seen {
		assert.Equal(t, 1, n, "duplicate stakeholder %s", g)
	}
	assert.Contains(t, groups, "cto@company.com")
	assert.Contains(t, groups, "legal@company.com")

	low := cat.Stakeholders("database", domain.SeverityLow)
	assert.NotContains(t, low, "management@company.com")
	assert.Contains(t, low, "dba-team@company.com")
}

func TestCatalog_StrategyEscalatesForCritical(t *testing.T) {
	cat := Default()
	s := cat.Strategy("network", domain.SeverityCritical)
	assert.Contains(t, s, "Crisis ")
	assert.Contains(t, s, "executive briefings")

	assert.Equal(t, "Standard incident communication protocol", cat.Strategy("unknown-type", domain.SeverityLow))
}

func TestCatalog_ActionsFallback(t *testing.T) {
	cat := Default()
	assert.Contains(t, cat.Actions("security"), "immediate_system_isolation_and_containment")
	assert.Equal(t, cat.DefaultActions, cat.Actions("storage"))

	// Returned slice is a copy.
	actions := cat.Actions("database")
	actions[0] = "mutated"
	assert.NotEqual(t, "mutated", cat.Actions("database")[0])
}

func TestCatalog_HealthChecks(t *testing.T) {
	cat := Default()

	healthy := cat.HealthChecks("database", true)
	assert.Equal(t, "Optimal (420/500 connections)", healthy["connection_pool"])

	degraded := cat.HealthChecks("database", false)
	assert.Equal(t, "Elevated usage (465/500)", degraded["connection_pool"])

	// Types without a table get generic results.
	generic := cat.HealthChecks("storage", true)
	assert.Equal(t, "Healthy", generic["overall_status"])
	generic = cat.HealthChecks("network", false)
	assert.Equal(t, "Monitoring", generic["overall_status"])
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
scenarios:
  - title: "Custom Scenario"
    description: "A single custom scenario"
    severity: high
    affected_systems: ["svc-a"]
    incident_type: storage
    root_cause: "Disk array controller failure"
fallback_team: "Night Shift"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.ScenarioCount())
	assert.Equal(t, "Custom Scenario", cat.Scenario(0).Title)
	assert.Equal(t, "Night Shift", cat.FallbackTeam)
	// Sections absent from the file keep their defaults.
	assert.Equal(t, "Database Engineering", cat.Teams["database"])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
