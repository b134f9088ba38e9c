// Package stages implements the seven pipeline stages of the incident
// workflow: detection, root-cause analysis, escalation, ticketing,
// notification, remediation, and validation. Stage behavior is
// category-specific and driven entirely by catalog data.
package stages

import (
	"strings"
	"time"

	"github.com/bissquit/incident-conductor/internal/catalog"
	"github.com/bissquit/incident-conductor/internal/engine"
)

// Simulated per-stage work bounds. The engine clock makes these
// instantaneous under test.
const (
	workMin = 200 * time.Millisecond
	workMax = 700 * time.Millisecond
)

// All returns the pipeline stages in execution order.
func All(cat *catalog.Catalog) []engine.Stage {
	return []engine.Stage{
		&detectionStage{cat: cat},
		&rcaStage{cat: cat},
		&escalationStage{cat: cat},
		&ticketingStage{cat: cat},
		&notificationStage{cat: cat},
		&remediationStage{cat: cat},
		&validationStage{cat: cat},
	}
}

// refSuffix derives a short human-readable reference from an incident id.
func refSuffix(incidentID string) string {
	if len(incidentID) <= 6 {
		return incidentID
	}
	return incidentID[len(incidentID)-6:]
}

func upperType(incidentType string) string {
	return strings.ToUpper(incidentType)
}
