// -----------------------------------------------------------------------
// Data Handler - file previews and sample data generation
// -----------------------------------------------------------------------

package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/insight/internal/interfaces"
	"github.com/ternarybob/insight/internal/services/dataset"
)

// PreviewRequest is the body of POST /api/preview
type PreviewRequest struct {
	FileIDs []string `json:"file_ids"`
}

// DataHandler serves file previews and the demo dataset
type DataHandler struct {
	files       interfaces.FileStore
	loader      interfaces.DataLoader
	previewRows int
	logger      arbor.ILogger
}

// NewDataHandler creates a new data handler
func NewDataHandler(files interfaces.FileStore, loader interfaces.DataLoader, previewRows int, logger arbor.ILogger) *DataHandler {
	return &DataHandler{
		files:       files,
		loader:      loader,
		previewRows: previewRows,
		logger:      logger,
	}
}

// PreviewHandler returns a bounded-row preview per referenced file. A
// file that cannot be resolved or parsed contributes an error entry
// instead of failing the whole request.
// POST /api/preview
func (h *DataHandler) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}
	if len(req.FileIDs) == 0 {
		WriteError(w, http.StatusBadRequest, "No file IDs provided")
		return
	}

	previews := make(map[string]interface{}, len(req.FileIDs))
	for _, id := range req.FileIDs {
		path, err := h.files.Resolve(id)
		if err != nil {
			previews[id] = map[string]string{"error": err.Error()}
			continue
		}
		p, err := h.loader.Preview(path, h.previewRows)
		if err != nil {
			previews[id] = map[string]string{"error": err.Error()}
			continue
		}
		previews[id] = p
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"previews": previews,
	})
}

// SampleDataHandler generates the synthetic demo dataset and stores it
// as a regular upload so it can be referenced by an analyze request.
// GET /api/sample-data
func (h *DataHandler) SampleDataHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	dir, err := os.MkdirTemp("", "insight-sample-")
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to generate sample data")
		return
	}
	defer os.RemoveAll(dir)

	path, err := dataset.GenerateSampleData(dir)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to generate sample data")
		WriteError(w, http.StatusInternalServerError, "Failed to generate sample data")
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to read sample data")
		return
	}

	stored, err := h.files.Store(content, "sample_adtech_data.csv")
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to store sample data")
		WriteError(w, http.StatusInternalServerError, "Failed to store sample data")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"file":   stored,
	})
}
