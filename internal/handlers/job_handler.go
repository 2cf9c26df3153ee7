// -----------------------------------------------------------------------
// Job Handler - analysis submission and status polling
// -----------------------------------------------------------------------

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/insight/internal/common"
	"github.com/ternarybob/insight/internal/models"
	"github.com/ternarybob/insight/internal/services/pipeline"
)

// AnalyzeRequest is the body of POST /api/analyze
type AnalyzeRequest struct {
	FileIDs []string            `json:"file_ids" validate:"required,min=1,dive,required"`
	Config  models.ReportConfig `json:"config"`
}

// JobHandler handles job submission and status requests
type JobHandler struct {
	pipeline *pipeline.Service
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewJobHandler creates a new job handler
func NewJobHandler(pipelineService *pipeline.Service, logger arbor.ILogger) *JobHandler {
	return &JobHandler{
		pipeline: pipelineService,
		validate: validator.New(),
		logger:   logger,
	}
}

// AnalyzeHandler submits a new analysis job and returns it immediately
// in the pending state.
// POST /api/analyze
func (h *JobHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	job, err := h.pipeline.Submit(r.Context(), req.FileIDs, req.Config)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to submit job")
		WriteError(w, http.StatusInternalServerError, "Failed to submit job")
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// JobStatusHandler returns the current status snapshot for a job.
// GET /api/jobs/{id}
func (h *JobHandler) JobStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if jobID == "" || strings.Contains(jobID, "/") {
		WriteError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := h.pipeline.Job(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Job not found: "+jobID)
			return
		}
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to read job")
		WriteError(w, http.StatusInternalServerError, "Failed to read job")
		return
	}

	WriteJSON(w, http.StatusOK, job)
}
