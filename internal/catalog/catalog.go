// Package catalog holds the canned incident scenarios and the
// category-specific lookup tables consumed by the pipeline stages.
// The content is data, not behavior: it ships with built-in defaults
// and can be overridden from a YAML file.
package catalog

import (
	"fmt"
	"os"

	"github.com/bissquit/incident-conductor/internal/domain"
	"gopkg.in/yaml.v3"
)

// PlaceholderTitle is the sentinel clients send when they want a canned
// scenario instead of supplying their own incident fields. Interactive
// API consoles submit it as the literal default value.
const PlaceholderTitle = "string"

// Scenario is one canned incident definition.
type Scenario struct {
	Title           string          `yaml:"title"`
	Description     string          `yaml:"description"`
	Severity        domain.Severity `yaml:"severity"`
	AffectedSystems []string        `yaml:"affected_systems"`
	IncidentType    string          `yaml:"incident_type"`
	RootCause       string          `yaml:"root_cause"`
}

// Classification is a ticket category/subcategory pair.
type Classification struct {
	Category    string `yaml:"category"`
	Subcategory string `yaml:"subcategory"`
}

// Catalog is the full lookup data set, keyed by incident type.
type Catalog struct {
	Scenarios []Scenario `yaml:"scenarios"`

	Teams               map[string]string         `yaml:"teams"`
	FallbackTeam        string                    `yaml:"fallback_team"`
	Engineers           map[string][]string       `yaml:"engineers"`
	FallbackPool        []string                  `yaml:"fallback_engineers"`
	Classifications     map[string]Classification `yaml:"classifications"`
	ResolutionEstimates map[string]string         `yaml:"resolution_estimates"`

	TypeStakeholders        map[string][]string `yaml:"type_stakeholders"`
	CommunicationStrategies map[string]string   `yaml:"communication_strategies"`

	RemediationActions    map[string][]string `yaml:"remediation_actions"`
	DefaultActions        []string            `yaml:"default_actions"`
	RemediationStrategies map[string]string   `yaml:"remediation_strategies"`
	AutomationLevels      map[string]string   `yaml:"automation_levels"`

	HealthyChecks  map[string]map[string]string `yaml:"healthy_checks"`
	DegradedChecks map[string]map[string]string `yaml:"degraded_checks"`
}

// Load reads a catalog YAML file over the built-in defaults. Sections
// present in the file replace the corresponding defaults wholesale.
func Load(path string) (*Catalog, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	if len(c.Scenarios) == 0 {
		return nil, fmt.Errorf("catalog file %s defines no scenarios", path)
	}
	return c, nil
}

// Scenario returns the canned scenario at index i (mod the scenario count).
func (c *Catalog) Scenario(i int) Scenario {
	return c.Scenarios[i%len(c.Scenarios)]
}

// ScenarioCount returns the number of canned scenarios.
func (c *Catalog) ScenarioCount() int {
	return len(c.Scenarios)
}

// RootCause returns the known root cause for a scenario title, or a
// generic description for ad-hoc incidents.
func (c *Catalog) RootCause(title, incidentType string) string {
	for _, sc := range c.Scenarios {
		if sc.Title == title {
			return sc.RootCause
		}
	}
	if incidentType == "" {
		incidentType = "infrastructure"
	}
	return fmt.Sprintf("%s issue requiring deeper investigation", incidentType)
}

// Team returns the escalation team for an incident type, widened for
// high severities.
func (c *Catalog) Team(incidentType string, severity domain.Severity) string {
	team, ok := c.Teams[incidentType]
	if !ok {
		team = c.FallbackTeam
	}
	switch severity {
	case domain.SeverityCritical:
		return "Senior " + team + " + Management"
	case domain.SeverityHigh:
		return "Senior " + team
	default:
		return team
	}
}

// Engineer returns an on-call engineer for the incident type. pick maps
// a pool size to an index, so the caller controls randomness.
func (c *Catalog) Engineer(incidentType string, severity domain.Severity, pick func(n int) int) string {
	pool, ok := c.Engineers[incidentType]
	if !ok || len(pool) == 0 {
		pool = c.FallbackPool
	}
	engineer := pool[pick(len(pool))]
	if severity == domain.SeverityCritical {
		return engineer + " + Backup Engineer"
	}
	return engineer
}

// Classify returns the ticket priority, category, and subcategory for
// an incident.
func (c *Catalog) Classify(incidentType string, severity domain.Severity) (priority, category, subcategory string) {
	priorities := map[domain.Severity]string{
		domain.SeverityCritical: "0 - Emergency",
		domain.SeverityHigh:     "1 - Critical",
		domain.SeverityMedium:   "2 - High",
		domain.SeverityLow:      "3 - Medium",
	}
	priority, ok := priorities[severity]
	if !ok {
		priority = "2 - High"
	}
	cls, ok := c.Classifications[incidentType]
	if !ok {
		cls = Classification{Category: "General Services", Subcategory: "System Issue"}
	}
	return priority, cls.Category, cls.Subcategory
}

// Estimate returns the expected resolution time for an incident.
func (c *Catalog) Estimate(incidentType string, severity domain.Severity) string {
	est, ok := c.ResolutionEstimates[incidentType]
	if !ok {
		est = "2-4 hours"
	}
	if severity == domain.SeverityCritical {
		return est + " (expedited with senior engineers)"
	}
	return est
}

// Stakeholders returns the deduplicated notification list for an
// incident, combining base, severity-driven, and type-specific groups.
func (c *Catalog) Stakeholders(incidentType string, severity domain.Severity) []string {
	groups := []string{
		incidentType + "-team@company.com",
		"it-operations@company.com",
	}
	if severity == domain.SeverityCritical || severity == domain.SeverityHigh {
		groups = append(groups, "management@company.com", "incident-commander@company.com")
	}
	if severity == domain.SeverityCritical {
		groups = append(groups, "cto@company.com", "executive-team@company.com")
	}
	groups = append(groups, c.TypeStakeholders[incidentType]...)

	seen := make(map[string]struct{}, len(groups))
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// Strategy returns the communication strategy for an incident.
func (c *Catalog) Strategy(incidentType string, severity domain.Severity) string {
	s, ok := c.CommunicationStrategies[incidentType]
	if !ok {
		s = "Standard incident communication protocol"
	}
	if severity == domain.SeverityCritical {
		return "Crisis " + s + " with executive briefings"
	}
	return s
}

// Actions returns the remediation procedure list for an incident type.
func (c *Catalog) Actions(incidentType string) []string {
	if actions, ok := c.RemediationActions[incidentType]; ok {
		return append([]string(nil), actions...)
	}
	return append([]string(nil), c.DefaultActions...)
}

// RemediationStrategy returns the remediation approach description.
func (c *Catalog) RemediationStrategy(incidentType string) string {
	if s, ok := c.RemediationStrategies[incidentType]; ok {
		return s
	}
	return "Comprehensive system recovery with monitoring enhancement"
}

// AutomationLevel returns how much of the remediation is automated.
func (c *Catalog) AutomationLevel(incidentType string) string {
	if l, ok := c.AutomationLevels[incidentType]; ok {
		return l
	}
	return "medium"
}

// HealthChecks returns the post-remediation verification results for an
// incident type, depending on whether the system recovered.
func (c *Catalog) HealthChecks(incidentType string, healthy bool) map[string]string {
	src := c.HealthyChecks
	if !healthy {
		src = c.DegradedChecks
	}
	if checks, ok := src[incidentType]; ok {
		out := make(map[string]string, len(checks))
		for k, v := range checks {
			out[k] = v
		}
		return out
	}
	if healthy {
		return map[string]string{"overall_status": "Healthy", "performance": "Optimal"}
	}
	return map[string]string{"overall_status": "Monitoring", "performance": "Improved"}
}
