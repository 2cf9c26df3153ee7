// -----------------------------------------------------------------------
// Report Handler - finished document download
// -----------------------------------------------------------------------

package handlers

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/insight/internal/interfaces"
	"github.com/ternarybob/insight/internal/models"
	"github.com/ternarybob/insight/internal/services/pipeline"
)

// ReportHandler serves assembled report documents
type ReportHandler struct {
	pipeline *pipeline.Service
	reports  interfaces.ReportAssembler
	logger   arbor.ILogger
}

// NewReportHandler creates a new report handler
func NewReportHandler(pipelineService *pipeline.Service, reports interfaces.ReportAssembler, logger arbor.ILogger) *ReportHandler {
	return &ReportHandler{
		pipeline: pipelineService,
		reports:  reports,
		logger:   logger,
	}
}

// DownloadHandler streams a finished report. A report is only served once
// its job has fully completed; before that the endpoint returns 404.
// GET /api/reports/{id}/{format}
func (h *ReportHandler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/reports/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		WriteError(w, http.StatusBadRequest, "Expected /api/reports/{id}/{format}")
		return
	}
	jobID, format := parts[0], parts[1]

	if format != models.ReportFormatPDF && format != models.ReportFormatDeck {
		WriteError(w, http.StatusBadRequest, "Unsupported report format: "+format)
		return
	}

	job, err := h.pipeline.Job(r.Context(), jobID)
	if err != nil || job.Status != models.JobStatusCompleted {
		WriteError(w, http.StatusNotFound, "Report not available for job: "+jobID)
		return
	}

	path, err := h.reports.OutputPath(jobID, format)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := os.Stat(path); err != nil {
		WriteError(w, http.StatusNotFound, "Report not available for job: "+jobID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_%s.pdf"`, jobID, format))
	http.ServeFile(w, r, path)
}
