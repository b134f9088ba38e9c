package stages

import (
	"context"
	"fmt"

	"github.com/bissquit/incident-conductor/internal/catalog"
	"github.com/bissquit/incident-conductor/internal/domain"
	"github.com/bissquit/incident-conductor/internal/engine"
)

// escalationStage routes the incident to the on-call team and pages an
// engineer.
type escalationStage struct {
	cat *catalog.Catalog
}

func (s *escalationStage) Name() string { return "escalation" }

func (s *escalationStage) Description() string {
	return "Escalation routing to the specialized on-call team with severity-aware engineer assignment"
}

func (s *escalationStage) Run(ctx context.Context, inc domain.Incident, h *engine.StageHandle) (engine.Outcome, error) {
	h.Infof("selecting escalation path for %s/%s", inc.IncidentType, inc.Severity)
	h.Progress(30)
	h.Work(ctx, workMin, workMax)

	team := s.cat.Team(inc.IncidentType, inc.Severity)
	engineer := s.cat.Engineer(inc.IncidentType, inc.Severity, h.PickIndex)
	pageID := fmt.Sprintf("PD-%s-%s", upperType(inc.IncidentType), refSuffix(inc.ID))

	h.Infof("paging %s via %s", engineer, team)
	h.Progress(75)
	h.Work(ctx, workMin, workMax)

	h.Progress(100)
	h.Infof("escalation completed, page %s acknowledged", pageID)

	return engine.Outcome{
		PageID: pageID,
		Output: map[string]any{
			"page_id":               pageID,
			"escalated_to":          team,
			"assigned_engineer":     engineer,
			"notification_channels": []string{"pager", "email", "chat", "sms"},
			"escalation_policy":     fmt.Sprintf("%s_escalation_v2", inc.IncidentType),
		},
	}, nil
}
