// Package api exposes the incident workflow engine over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/bissquit/incident-conductor/internal/domain"
	"github.com/bissquit/incident-conductor/internal/engine"
	"github.com/bissquit/incident-conductor/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var errorMappings = []httputil.ErrorMapping{
	{Error: engine.ErrIncidentNotFound, Status: http.StatusNotFound, Message: "incident not found"},
	{Error: engine.ErrStageNotFound, Status: http.StatusNotFound, Message: "unknown pipeline stage"},
	{Error: engine.ErrExecutionNotFound, Status: http.StatusNotFound, Message: "stage has not executed for this incident"},
	{Error: engine.ErrInvalidSeverity, Status: http.StatusBadRequest, Message: "severity must be one of: low, medium, high, critical"},
	{Error: engine.ErrShuttingDown, Status: http.StatusServiceUnavailable, Message: "server is shutting down"},
}

// Handler handles HTTP requests for the incident workflow API.
type Handler struct {
	engine    *engine.Engine
	validator *validator.Validate
	heartbeat time.Duration
}

// NewHandler creates a new API handler. heartbeat sets the event
// stream keep-alive interval; zero or negative selects the default.
func NewHandler(eng *engine.Engine, heartbeat time.Duration) *Handler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &Handler{
		engine:    eng,
		validator: validator.New(),
		heartbeat: heartbeat,
	}
}

// RegisterRoutes registers the workflow API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/incidents", func(r chi.Router) {
		r.Post("/", h.TriggerIncident)
		r.Get("/", h.ListIncidents)
		r.Get("/{id}", h.GetIncident)
		r.Get("/{id}/stages/{stage}/logs", h.GetStageLogs)
	})

	r.Route("/stages", func(r chi.Router) {
		r.Get("/", h.ListStages)
		r.Get("/{stage}/history", h.GetStageHistory)
	})

	r.Get("/dashboard/stats", h.GetDashboardStats)
}

// TriggerRequest represents request body for triggering an incident.
// All fields are optional: an empty or placeholder title selects a
// canned scenario.
type TriggerRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Severity        string   `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	IncidentType    string   `json:"incident_type"`
	AffectedSystems []string `json:"affected_systems"`
}

// TriggerResponse represents the accepted-workflow response.
type TriggerResponse struct {
	IncidentID   string          `json:"incident_id"`
	WorkflowID   string          `json:"workflow_id"`
	Status       string          `json:"status"`
	Title        string          `json:"title"`
	Severity     domain.Severity `json:"severity"`
	IncidentType string          `json:"incident_type"`
}

// TriggerIncident handles POST /incidents.
func (h *Handler) TriggerIncident(w http.ResponseWriter, r *http.Request) {
	req := TriggerRequest{}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	inc, err := h.engine.Trigger(engine.TriggerInput{
		Title:           req.Title,
		Description:     req.Description,
		Severity:        domain.Severity(req.Severity),
		IncidentType:    req.IncidentType,
		AffectedSystems: req.AffectedSystems,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusAccepted, TriggerResponse{
		IncidentID:   inc.ID,
		WorkflowID:   inc.WorkflowID,
		Status:       "workflow_started",
		Title:        inc.Title,
		Severity:     inc.Severity,
		IncidentType: inc.IncidentType,
	})
}

// ListIncidentsResponse represents the incident listing.
type ListIncidentsResponse struct {
	Incidents []*domain.Incident `json:"incidents"`
	Total     int                `json:"total"`
	Active    int                `json:"active"`
}

// ListIncidents handles GET /incidents.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	incidents, total, active := h.engine.List(limit)
	httputil.Success(w, http.StatusOK, ListIncidentsResponse{
		Incidents: incidents,
		Total:     total,
		Active:    active,
	})
}

// GetIncident handles GET /incidents/{id}.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	inc, err := h.engine.Status(chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}
	httputil.Success(w, http.StatusOK, inc)
}

// GetStageLogs handles GET /incidents/{id}/stages/{stage}/logs.
func (h *Handler) GetStageLogs(w http.ResponseWriter, r *http.Request) {
	exec, err := h.engine.StageLogs(chi.URLParam(r, "id"), chi.URLParam(r, "stage"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}
	httputil.Success(w, http.StatusOK, exec)
}

// ListStages handles GET /stages.
func (h *Handler) ListStages(w http.ResponseWriter, r *http.Request) {
	httputil.Success(w, http.StatusOK, h.engine.StageInfos())
}

// StageHistoryResponse represents one stage's retained execution window.
type StageHistoryResponse struct {
	Stage           string                   `json:"stage"`
	TotalExecutions int                      `json:"total_executions"`
	Executions      []*domain.StageExecution `json:"executions"`
}

// GetStageHistory handles GET /stages/{stage}/history.
func (h *Handler) GetStageHistory(w http.ResponseWriter, r *http.Request) {
	stage := chi.URLParam(r, "stage")
	limit := queryInt(r, "limit", 10)

	total, recent, err := h.engine.StageHistory(stage, limit)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}
	httputil.Success(w, http.StatusOK, StageHistoryResponse{
		Stage:           stage,
		TotalExecutions: total,
		Executions:      recent,
	})
}

// GetDashboardStats handles GET /dashboard/stats.
func (h *Handler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	httputil.Success(w, http.StatusOK, h.engine.Stats())
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
