package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportConfig_ApplyDefaults(t *testing.T) {
	var cfg ReportConfig
	cfg.ApplyDefaults()

	assert.Equal(t, "Weekly Performance Report", cfg.Title)
	assert.Equal(t, "Company", cfg.CompanyName)
	assert.Equal(t, ReportFormatPDF, cfg.ReportType)
	assert.True(t, cfg.ChartsEnabled())
	assert.True(t, cfg.SummaryEnabled())
	assert.True(t, cfg.RecommendationsEnabled())
}

func TestReportConfig_ExplicitValuesSurviveDefaults(t *testing.T) {
	off := false
	cfg := ReportConfig{
		Title:         "Q3 Review",
		ReportType:    ReportFormatDeck,
		IncludeCharts: &off,
	}
	cfg.ApplyDefaults()

	assert.Equal(t, "Q3 Review", cfg.Title)
	assert.Equal(t, ReportFormatDeck, cfg.ReportType)
	assert.False(t, cfg.ChartsEnabled())
	assert.True(t, cfg.SummaryEnabled())
}

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, JobStatusPending.IsTerminal())
	assert.False(t, JobStatusProcessing.IsTerminal())
	assert.True(t, JobStatusCompleted.IsTerminal())
	assert.True(t, JobStatusFailed.IsTerminal())
}

func TestJob_CloneIsDeep(t *testing.T) {
	job := NewJob("job_1", []string{"file_1"}, ReportConfig{})
	clone := job.Clone()

	clone.FileIDs[0] = "file_mutated"
	clone.Status = JobStatusFailed

	assert.Equal(t, "file_1", job.FileIDs[0])
	assert.Equal(t, JobStatusPending, job.Status)
}
