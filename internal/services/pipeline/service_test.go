package pipeline

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/insight/internal/common"
	"github.com/ternarybob/insight/internal/interfaces"
	"github.com/ternarybob/insight/internal/models"
	"github.com/ternarybob/insight/internal/services/charts"
	"github.com/ternarybob/insight/internal/services/dataset"
	"github.com/ternarybob/insight/internal/services/ingest"
	"github.com/ternarybob/insight/internal/services/insights"
	"github.com/ternarybob/insight/internal/services/reports"
	"github.com/ternarybob/insight/internal/storage/memory"
)

type testHarness struct {
	svc   *Service
	store interfaces.JobStore
	files interfaces.FileStore
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	logger := arbor.NewLogger()

	cfg := common.NewDefaultConfig()
	cfg.Storage.Uploads = t.TempDir()
	cfg.Storage.Reports = t.TempDir()

	store := memory.NewJobStore(logger)
	files, err := ingest.NewService(cfg.Storage.Uploads, logger)
	require.NoError(t, err)

	svc := NewService(
		store,
		files,
		dataset.NewService(false, logger),
		charts.NewService(logger),
		insights.NewServiceWithSummarizer(nil, logger), // fallback-only, no network
		reports.NewService(cfg.Storage.Reports, logger),
		cfg,
		logger,
	)

	return &testHarness{svc: svc, store: store, files: files}
}

func (h *testHarness) uploadSample(t *testing.T) string {
	t.Helper()
	path, err := dataset.GenerateSampleData(t.TempDir())
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	stored, err := h.files.Store(content, "sample.csv")
	require.NoError(t, err)
	return stored.FileID
}

// waitTerminal polls the store until the job reaches a terminal state,
// asserting progress never decreases along the way
func (h *testHarness) waitTerminal(t *testing.T, jobID string) *models.Job {
	t.Helper()
	deadline := time.Now().Add(60 * time.Second)
	lastProgress := -1

	for time.Now().Before(deadline) {
		job, err := h.store.Get(context.Background(), jobID)
		require.NoError(t, err)

		require.GreaterOrEqual(t, job.Progress, lastProgress, "progress went backwards")
		lastProgress = job.Progress

		if job.Status.IsTerminal() {
			return job
		}
		time.Sleep(25 * time.Millisecond)
	}

	t.Fatalf("job %s never reached a terminal state", jobID)
	return nil
}

func TestSubmit_CompletesWithDefaultConfig(t *testing.T) {
	h := newHarness(t)
	fileID := h.uploadSample(t)

	job, err := h.svc.Submit(context.Background(), []string{fileID}, models.ReportConfig{})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)

	final := h.waitTerminal(t, job.ID)
	require.Equal(t, models.JobStatusCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)
	assert.Equal(t, "/api/reports/"+job.ID+"/pdf", final.ReportURL)

	require.NotNil(t, final.Insights)
	assert.Equal(t, models.InsightSourceFallback, final.Insights.Source)

	// The assembled document exists and is non-empty
	path, err := h.svc.reports.OutputPath(job.ID, models.ReportFormatPDF)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)
}

func TestSubmit_DeckFormat(t *testing.T) {
	h := newHarness(t)
	fileID := h.uploadSample(t)

	cfg := models.ReportConfig{ReportType: models.ReportFormatDeck}
	job, err := h.svc.Submit(context.Background(), []string{fileID}, cfg)
	require.NoError(t, err)

	final := h.waitTerminal(t, job.ID)
	require.Equal(t, models.JobStatusCompleted, final.Status)
	assert.Equal(t, "/api/reports/"+job.ID+"/deck", final.ReportURL)
}

func TestSubmit_UnknownFileFails(t *testing.T) {
	h := newHarness(t)

	job, err := h.svc.Submit(context.Background(), []string{"file_never_uploaded"}, models.ReportConfig{})
	require.NoError(t, err)

	final := h.waitTerminal(t, job.ID)
	require.Equal(t, models.JobStatusFailed, final.Status)
	assert.Contains(t, final.Message, "no")

	// No document is ever producible for a failed job
	path, err := h.svc.reports.OutputPath(job.ID, models.ReportFormatPDF)
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSubmit_TerminalStateIsStable(t *testing.T) {
	h := newHarness(t)
	fileID := h.uploadSample(t)

	job, err := h.svc.Submit(context.Background(), []string{fileID}, models.ReportConfig{})
	require.NoError(t, err)

	first := h.waitTerminal(t, job.ID)

	// Repeated polls of a terminal job return an identical record
	time.Sleep(100 * time.Millisecond)
	second, err := h.store.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestJob_UnknownID(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Job(context.Background(), "job_missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSubmit_DateOnlyDatasetCompletesWithoutCharts(t *testing.T) {
	h := newHarness(t)

	// A dataset with no numeric and no categorical columns renders an
	// empty chart set; the job still completes with a document.
	stored, err := h.files.Store([]byte("date\n2025-01-01\n2025-01-02\n2025-01-03\n"), "dates.csv")
	require.NoError(t, err)

	job, err := h.svc.Submit(context.Background(), []string{stored.FileID}, models.ReportConfig{})
	require.NoError(t, err)

	final := h.waitTerminal(t, job.ID)
	require.Equal(t, models.JobStatusCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)

	path, err := h.svc.reports.OutputPath(job.ID, models.ReportFormatPDF)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)
}

// slowChartRenderer overruns any reasonable stage timeout
type slowChartRenderer struct {
	delay time.Duration
}

func (r *slowChartRenderer) Render(ds *models.Dataset, dir string) models.ChartSet {
	time.Sleep(r.delay)
	return models.ChartSet{}
}

func TestSubmit_ChartTimeoutAbsorbed(t *testing.T) {
	logger := arbor.NewLogger()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Uploads = t.TempDir()
	cfg.Storage.Reports = t.TempDir()
	cfg.Pipeline.StageTimeout = "1s"

	store := memory.NewJobStore(logger)
	files, err := ingest.NewService(cfg.Storage.Uploads, logger)
	require.NoError(t, err)

	renderer := &slowChartRenderer{delay: 3 * time.Second}
	svc := NewService(
		store,
		files,
		dataset.NewService(false, logger),
		renderer,
		insights.NewServiceWithSummarizer(nil, logger),
		reports.NewService(cfg.Storage.Reports, logger),
		cfg,
		logger,
	)
	h := &testHarness{svc: svc, store: store, files: files}
	fileID := h.uploadSample(t)

	job, err := svc.Submit(context.Background(), []string{fileID}, models.ReportConfig{})
	require.NoError(t, err)

	final := h.waitTerminal(t, job.ID)
	require.Equal(t, models.JobStatusCompleted, final.Status)

	// The overrunning render goroutine finishes after the job is already
	// terminal; the stored record must not change underneath a poller
	time.Sleep(3 * time.Second)
	again, err := store.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, final, again)
}

func TestStartEviction_DefaultSchedule(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.svc.StartEviction())
	h.svc.StopEviction()
}

func TestStartEviction_RemovesExpiredTerminalJobs(t *testing.T) {
	logger := arbor.NewLogger()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Uploads = t.TempDir()
	cfg.Storage.Reports = t.TempDir()
	cfg.Pipeline.EvictionSchedule = "* * * * * *" // Every second
	cfg.Pipeline.JobTTL = "1ms"

	store := memory.NewJobStore(logger)
	files, err := ingest.NewService(cfg.Storage.Uploads, logger)
	require.NoError(t, err)

	svc := NewService(
		store,
		files,
		dataset.NewService(false, logger),
		charts.NewService(logger),
		insights.NewServiceWithSummarizer(nil, logger),
		reports.NewService(cfg.Storage.Reports, logger),
		cfg,
		logger,
	)

	stale := time.Now().Add(-time.Hour)

	expired := models.NewJob("job_expired", nil, models.ReportConfig{})
	expired.Status = models.JobStatusCompleted
	expired.UpdatedAt = stale
	require.NoError(t, store.Save(context.Background(), expired))

	inflight := models.NewJob("job_inflight", nil, models.ReportConfig{})
	inflight.Status = models.JobStatusProcessing
	inflight.UpdatedAt = stale
	require.NoError(t, store.Save(context.Background(), inflight))

	require.NoError(t, svc.StartEviction())
	defer svc.StopEviction()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := store.Get(context.Background(), "job_expired"); err != nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	_, err = store.Get(context.Background(), "job_expired")
	assert.ErrorIs(t, err, common.ErrNotFound, "expired terminal job should be evicted")

	_, err = store.Get(context.Background(), "job_inflight")
	assert.NoError(t, err, "in-flight jobs are never evicted")
}
