// -----------------------------------------------------------------------
// Analysis Job - status record for one pipeline execution
// -----------------------------------------------------------------------

package models

import (
	"time"
)

// JobStatus represents the lifecycle state of an analysis job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal returns true for states that never transition further
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is the mutable status record for one analysis pipeline run.
// It is owned exclusively by the pipeline service: handlers read
// snapshots through the job store, they never mutate a job.
type Job struct {
	ID        string         `json:"job_id" badgerhold:"key"`
	Status    JobStatus      `json:"status"`
	Progress  int            `json:"progress"` // 0-100, monotonically non-decreasing while processing
	Message   string         `json:"message"`
	FileIDs   []string       `json:"file_ids"`
	Config    ReportConfig   `json:"config"`
	ReportURL string         `json:"report_url,omitempty"` // Set on completion only
	Insights  *InsightResult `json:"insights,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewJob creates a pending job for the given file identifiers
func NewJob(id string, fileIDs []string, config ReportConfig) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		Status:    JobStatusPending,
		Progress:  0,
		Message:   "Job queued for processing",
		FileIDs:   fileIDs,
		Config:    config,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so a stored job can be read without
// observing later mutations
func (j *Job) Clone() *Job {
	c := *j
	c.FileIDs = append([]string(nil), j.FileIDs...)
	if j.Insights != nil {
		ins := *j.Insights
		c.Insights = &ins
	}
	return &c
}
