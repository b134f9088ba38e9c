package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bissquit/incident-conductor/internal/domain"
	"github.com/bissquit/incident-conductor/internal/engine"
	"github.com/bissquit/incident-conductor/internal/pkg/ctxlog"
	"github.com/bissquit/incident-conductor/internal/pkg/httputil"
	"github.com/bissquit/incident-conductor/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
)

const defaultHeartbeat = 15 * time.Second

// RegisterStreamRoutes registers the realtime event stream. Mounted
// separately because the stream must sit outside the request timeout
// middleware.
func (h *Handler) RegisterStreamRoutes(r chi.Router) {
	r.Get("/stream", h.StreamEvents)
}

// StreamEvents handles GET /stream. Without a query parameter it
// streams global list-change events; with ?incident_id= it streams one
// incident's updates and ends after the terminal message.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	topic := engine.TopicGlobal
	incidentID := r.URL.Query().Get("incident_id")
	if incidentID != "" {
		topic = incidentID
	}

	// Subscribe before the terminal check so a workflow finishing in
	// between still delivers its completion message to this stream.
	sub := h.engine.Subscribe(topic)
	defer h.engine.Unsubscribe(sub)

	if incidentID != "" {
		inc, err := h.engine.Status(incidentID)
		if err != nil {
			httputil.HandleError(r.Context(), w, err, errorMappings)
			return
		}
		if inc.WorkflowStatus.IsTerminal() {
			startStream(w, flusher)
			writeEvent(w, flusher, domain.Message{
				Type:       domain.MessageWorkflowCompleted,
				IncidentID: inc.ID,
				Payload: map[string]any{
					"status":           string(inc.Status),
					"workflow_status":  string(inc.WorkflowStatus),
					"completed_stages": inc.CompletedStages,
					"failed_stages":    inc.FailedStages,
					"resolution":       inc.Resolution,
				},
				Timestamp: inc.UpdatedAt,
			})
			return
		}
	}

	startStream(w, flusher)
	metrics.SSEConnections.Inc()
	defer metrics.SSEConnections.Dec()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	logger := ctxlog.FromContext(r.Context())
	logger.Info("event stream opened", "topic", topic)
	defer logger.Info("event stream closed", "topic", topic)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-sub.Messages():
			if !open {
				// Topic closed after the workflow's terminal message.
				return
			}
			writeEvent(w, flusher, msg)
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// startStream sends the response headers immediately so clients see
// the stream open before the first event arrives.
func startStream(w http.ResponseWriter, flusher http.Flusher) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, msg domain.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, data)
	flusher.Flush()
}
