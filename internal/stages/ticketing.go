package stages

import (
	"context"
	"fmt"

	"github.com/bissquit/incident-conductor/internal/catalog"
	"github.com/bissquit/incident-conductor/internal/domain"
	"github.com/bissquit/incident-conductor/internal/engine"
)

// ticketingStage files the tracking ticket with classification and an
// assignment derived from catalog data.
type ticketingStage struct {
	cat *catalog.Catalog
}

func (s *ticketingStage) Name() string { return "ticketing" }

func (s *ticketingStage) Description() string {
	return "Ticket filing with automated priority assignment and category classification"
}

func (s *ticketingStage) Run(ctx context.Context, inc domain.Incident, h *engine.StageHandle) (engine.Outcome, error) {
	h.Infof("classifying incident for ticket filing")
	h.Progress(35)
	h.Work(ctx, workMin, workMax)

	priority, category, subcategory := s.cat.Classify(inc.IncidentType, inc.Severity)
	ticketID := fmt.Sprintf("TKT-%s-%s-%s",
		upperType(inc.IncidentType),
		h.Now().Format("20060102"),
		refSuffix(inc.ID),
	)

	h.Infof("classification complete: %s %s - %s", priority, category, subcategory)
	h.Progress(80)
	h.Work(ctx, workMin, workMax)

	h.Progress(100)
	h.Infof("ticket %s created and auto-assigned", ticketID)

	return engine.Outcome{
		TicketID: ticketID,
		Output: map[string]any{
			"ticket_id":            ticketID,
			"priority":             priority,
			"category":             category,
			"subcategory":          subcategory,
			"assigned_team":        s.cat.Team(inc.IncidentType, inc.Severity),
			"estimated_resolution": s.cat.Estimate(inc.IncidentType, inc.Severity),
		},
	}, nil
}
