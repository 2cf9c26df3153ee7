// -----------------------------------------------------------------------
// Upload Handler - multipart file ingestion
// -----------------------------------------------------------------------

package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/insight/internal/common"
	"github.com/ternarybob/insight/internal/interfaces"
	"github.com/ternarybob/insight/internal/models"
)

const maxUploadBytes = 64 << 20 // 64 MB across all files in one request

// UploadHandler handles multipart file uploads
type UploadHandler struct {
	files  interfaces.FileStore
	logger arbor.ILogger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(files interfaces.FileStore, logger arbor.ILogger) *UploadHandler {
	return &UploadHandler{
		files:  files,
		logger: logger,
	}
}

// UploadFilesHandler accepts a multipart file list and stores each file
// under a fresh identifier.
// POST /api/upload
func (h *UploadHandler) UploadFilesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart request: "+err.Error())
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		WriteError(w, http.StatusBadRequest, "No files provided")
		return
	}

	uploaded := make([]*models.UploadedFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Failed to read file "+fh.Filename)
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Failed to read file "+fh.Filename)
			return
		}

		stored, err := h.files.Store(content, fh.Filename)
		if err != nil {
			if errors.Is(err, common.ErrUnsupportedType) {
				WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
			h.logger.Error().Err(err).Str("filename", fh.Filename).Msg("Failed to store upload")
			WriteError(w, http.StatusInternalServerError, "Failed to store file")
			return
		}
		uploaded = append(uploaded, stored)
	}

	h.logger.Info().Int("count", len(uploaded)).Msg("Files uploaded")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"files":  uploaded,
	})
}
