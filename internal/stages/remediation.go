package stages

import (
	"context"

	"github.com/bissquit/incident-conductor/internal/catalog"
	"github.com/bissquit/incident-conductor/internal/domain"
	"github.com/bissquit/incident-conductor/internal/engine"
)

// remediationStage applies the category's automated remediation
// procedures.
type remediationStage struct {
	cat *catalog.Catalog
}

func (s *remediationStage) Name() string { return "remediation" }

func (s *remediationStage) Description() string {
	return "Automated remediation with incident-type specific procedures and rollback awareness"
}

func (s *remediationStage) Run(ctx context.Context, inc domain.Incident, h *engine.StageHandle) (engine.Outcome, error) {
	actions := s.cat.Actions(inc.IncidentType)
	strategy := s.cat.RemediationStrategy(inc.IncidentType)

	h.Infof("planning remediation: %s", strategy)
	h.Progress(20)
	h.Work(ctx, workMin, workMax)

	h.Infof("executing %d remediation procedures", len(actions))
	h.Progress(50)
	h.Work(ctx, workMin, workMax)

	for i, action := range actions {
		h.Infof("applied %s", action)
		h.Progress(50 + (i+1)*40/len(actions))
	}

	h.Progress(100)
	h.Infof("remediation completed, %d procedures applied", len(actions))

	return engine.Outcome{
		RemediationApplied: actions,
		Output: map[string]any{
			"actions_performed":    actions,
			"remediation_strategy": strategy,
			"automation_level":     s.cat.AutomationLevel(inc.IncidentType),
			"root_cause_context":   inc.RootCause,
		},
	}, nil
}
