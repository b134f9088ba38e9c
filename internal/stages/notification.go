package stages

import (
	"context"

	"github.com/bissquit/incident-conductor/internal/catalog"
	"github.com/bissquit/incident-conductor/internal/domain"
	"github.com/bissquit/incident-conductor/internal/engine"
)

// notificationStage fans status communication out to the stakeholder
// groups the catalog selects for the category and severity.
type notificationStage struct {
	cat *catalog.Catalog
}

func (s *notificationStage) Name() string { return "notification" }

func (s *notificationStage) Description() string {
	return "Stakeholder notification fan-out following the category communication strategy"
}

func (s *notificationStage) Run(ctx context.Context, inc domain.Incident, h *engine.StageHandle) (engine.Outcome, error) {
	h.Infof("building communication plan for %s incident", inc.IncidentType)
	h.Progress(25)
	h.Work(ctx, workMin, workMax)

	stakeholders := s.cat.Stakeholders(inc.IncidentType, inc.Severity)
	strategy := s.cat.Strategy(inc.IncidentType, inc.Severity)

	h.Infof("notifying %d stakeholder groups", len(stakeholders))
	h.Progress(70)
	h.Work(ctx, workMin, workMax)

	executiveSummary := inc.Severity == domain.SeverityCritical || inc.Severity == domain.SeverityHigh

	h.Progress(100)
	h.Infof("notifications delivered to %d groups", len(stakeholders))

	return engine.Outcome{
		Output: map[string]any{
			"notified":               stakeholders,
			"communication_strategy": strategy,
			"executive_summary":      executiveSummary,
			"technical_details":      true,
			"status_updates":         true,
		},
	}, nil
}
