package stages

import (
	"context"

	"github.com/bissquit/incident-conductor/internal/catalog"
	"github.com/bissquit/incident-conductor/internal/domain"
	"github.com/bissquit/incident-conductor/internal/engine"
)

// rcaStage determines the root cause. Known scenario titles map to
// their catalogued cause; ad-hoc incidents get a category-level
// assessment.
type rcaStage struct {
	cat *catalog.Catalog
}

func (s *rcaStage) Name() string { return "rca" }

func (s *rcaStage) Description() string {
	return "Root cause analysis with pattern correlation against the scenario knowledge base"
}

func (s *rcaStage) Run(ctx context.Context, inc domain.Incident, h *engine.StageHandle) (engine.Outcome, error) {
	h.Infof("correlating %s failure patterns", inc.IncidentType)
	h.Progress(20)
	h.Work(ctx, workMin, workMax)

	rootCause := s.cat.RootCause(inc.Title, inc.IncidentType)
	confidence := 0.87 + h.Float64()*0.1

	h.Infof("dependency mapping complete, candidate cause identified")
	h.Progress(70)
	h.Work(ctx, workMin, workMax)

	h.Progress(100)
	h.Infof("root cause analysis completed with %.0f%% confidence", confidence*100)

	return engine.Outcome{
		RootCause: rootCause,
		Output: map[string]any{
			"root_cause":     rootCause,
			"confidence":     confidence,
			"analysis_depth": "comprehensive",
		},
	}, nil
}
