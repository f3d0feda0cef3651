package handler

import (
	"context"
	"net/http"

	"github.com/leveltrack/leveltrack/internal/api/response"
	"github.com/leveltrack/leveltrack/internal/services/export"
)

// ExportHandler handles snapshot export endpoints
type ExportHandler struct {
	exporter *export.Exporter
}

// NewExportHandler creates a new export handler
func NewExportHandler(exporter *export.Exporter) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

// Trigger handles POST /api/v1/export. The export runs in the
// background; the request is acknowledged as soon as the task is
// scheduled.
func (h *ExportHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	// The export must outlive this request, so it does not inherit
	// the request context. Failures are logged by the runner.
	task, err := h.exporter.Submit(context.Background())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusAccepted, response.ExportAccepted{Task: task.Name()})
}
