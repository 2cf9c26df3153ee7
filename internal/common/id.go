package common

import (
	"github.com/google/uuid"
)

// NewFileID generates a unique uploaded-file ID with the "file_" prefix
func NewFileID() string {
	return "file_" + uuid.New().String()
}

// NewJobID generates a unique analysis-job ID with the "job_" prefix
func NewJobID() string {
	return "job_" + uuid.New().String()
}
