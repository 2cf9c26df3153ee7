// -----------------------------------------------------------------------
// File Store - persists raw uploads under generated identifiers
// -----------------------------------------------------------------------

package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/insight/internal/common"
	"github.com/ternarybob/insight/internal/interfaces"
	"github.com/ternarybob/insight/internal/models"
)

// Service implements interfaces.FileStore on the local filesystem.
// Writes are append-only under fresh identifiers, so no locking is
// required.
type Service struct {
	dir    string
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.FileStore = (*Service)(nil)

// NewService creates a file store rooted at dir
func NewService(dir string, logger arbor.ILogger) (*Service, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &Service{
		dir:    dir,
		logger: logger,
	}, nil
}

// Store writes content under a fresh file ID plus the original extension.
// Extensions outside the supported set are rejected with ErrUnsupportedType.
func (s *Service) Store(content []byte, originalName string) (*models.UploadedFile, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !models.IsSupportedExtension(ext) {
		return nil, fmt.Errorf("%w: %s (allowed: %s)", common.ErrUnsupportedType, ext, strings.Join(models.SupportedExtensions, ", "))
	}

	fileID := common.NewFileID()
	path := filepath.Join(s.dir, fileID+ext)

	if err := os.WriteFile(path, content, 0644); err != nil {
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	s.logger.Debug().
		Str("file_id", fileID).
		Str("original_name", originalName).
		Int("size", len(content)).
		Msg("Upload stored")

	return &models.UploadedFile{
		FileID:       fileID,
		OriginalName: originalName,
		Path:         path,
		FileType:     ext,
	}, nil
}

// Resolve probes the supported extension set for a stored file matching
// the given ID
func (s *Service) Resolve(fileID string) (string, error) {
	for _, ext := range models.SupportedExtensions {
		path := filepath.Join(s.dir, fileID+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: file %s", common.ErrNotFound, fileID)
}

// Dir returns the upload directory root
func (s *Service) Dir() string {
	return s.dir
}
