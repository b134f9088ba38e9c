package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/bissquit/incident-conductor/internal/pkg/ctxlog"
)

// ErrorMapping pairs a sentinel error with the HTTP status and message
// it should produce.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string // falls back to err.Error() when empty
}

// HandleError writes the response for the first mapping whose sentinel
// matches err. Unmapped errors are logged and answered with a generic 500.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings []ErrorMapping) {
	for _, m := range mappings {
		if errors.Is(err, m.Error) {
			msg := m.Message
			if msg == "" {
				msg = err.Error()
			}
			Error(w, m.Status, msg)
			return
		}
	}
	ctxlog.FromContext(ctx).Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}
