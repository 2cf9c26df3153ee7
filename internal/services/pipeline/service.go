// -----------------------------------------------------------------------
// Pipeline orchestrator - owns the job lifecycle. One background run per
// submitted job: load -> insights -> charts -> report, with progress
// checkpoints persisted through the job store.
// -----------------------------------------------------------------------

package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/insight/internal/common"
	"github.com/ternarybob/insight/internal/interfaces"
	"github.com/ternarybob/insight/internal/models"
)

// Service runs analysis jobs in the background
type Service struct {
	store    interfaces.JobStore
	files    interfaces.FileStore
	loader   interfaces.DataLoader
	charts   interfaces.ChartRenderer
	insights interfaces.InsightGenerator
	reports  interfaces.ReportAssembler

	stageTimeout time.Duration
	jobTTL       time.Duration
	schedule     string

	cron   *cron.Cron
	logger arbor.ILogger
}

// NewService wires the pipeline over its collaborating services
func NewService(
	store interfaces.JobStore,
	files interfaces.FileStore,
	loader interfaces.DataLoader,
	charts interfaces.ChartRenderer,
	insights interfaces.InsightGenerator,
	reports interfaces.ReportAssembler,
	cfg *common.Config,
	logger arbor.ILogger,
) *Service {
	return &Service{
		store:        store,
		files:        files,
		loader:       loader,
		charts:       charts,
		insights:     insights,
		reports:      reports,
		stageTimeout: cfg.StageTimeout(),
		jobTTL:       cfg.JobTTL(),
		schedule:     cfg.Pipeline.EvictionSchedule,
		logger:       logger,
	}
}

// Submit creates a pending job for the given uploaded files and launches
// its background run. It returns as soon as the job is persisted.
func (s *Service) Submit(ctx context.Context, fileIDs []string, rc models.ReportConfig) (*models.Job, error) {
	rc.ApplyDefaults()

	job := models.NewJob(common.NewJobID(), fileIDs, rc)
	if err := s.store.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Int("files", len(fileIDs)).
		Str("format", rc.ReportType).
		Msg("Job submitted")

	common.SafeGo(s.logger, "pipeline.run:"+job.ID, func() {
		s.run(job.Clone())
	})

	return job, nil
}

// Job returns the current status snapshot for a job
func (s *Service) Job(ctx context.Context, jobID string) (*models.Job, error) {
	return s.store.Get(ctx, jobID)
}

// run executes the full stage ladder for one job. It is the only writer
// of the job record after submission.
func (s *Service) run(job *models.Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("job_id", job.ID).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Pipeline run panicked")
			s.fail(job, fmt.Sprintf("internal error: %v", r))
		}
	}()

	ctx := context.Background()

	s.progress(ctx, job, 10, "loading data")

	paths := make([]string, 0, len(job.FileIDs))
	for _, id := range job.FileIDs {
		p, err := s.files.Resolve(id)
		if err != nil {
			s.logger.Warn().Str("job_id", job.ID).Str("file_id", id).Msg("Uploaded file not found")
			continue
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		s.fail(job, common.ErrNoFilesFound.Error())
		return
	}

	s.progress(ctx, job, 25, "processing data")

	ds, err := runStage(s, "load", func() (*models.Dataset, error) {
		return s.loader.Load(paths)
	})
	if err != nil {
		s.fail(job, err.Error())
		return
	}

	s.progress(ctx, job, 50, "generating insights")

	ictx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	job.Insights = s.insights.Generate(ictx, ds.Meta)
	cancel()

	s.progress(ctx, job, 70, "creating visualizations")

	charts := models.ChartSet{}
	chartDir, err := os.MkdirTemp("", "insight-charts-")
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Chart directory unavailable, skipping charts")
	} else {
		defer os.RemoveAll(chartDir)
		rendered, err := runStage(s, "charts", func() (models.ChartSet, error) {
			return s.charts.Render(ds, chartDir), nil
		})
		if err != nil {
			// Chart failures never fail the job
			s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Chart stage abandoned")
		} else {
			charts = rendered
		}
	}

	s.progress(ctx, job, 85, "generating report")

	if _, err := runStage(s, "report", func() (string, error) {
		return s.reports.Assemble(ds, job.Insights, charts, job.Config, job.ID)
	}); err != nil {
		s.fail(job, err.Error())
		return
	}

	job.Status = models.JobStatusCompleted
	job.Progress = 100
	job.Message = "Report generated successfully"
	job.ReportURL = fmt.Sprintf("/api/reports/%s/%s", job.ID, job.Config.ReportType)
	job.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, job); err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to persist job completion")
		return
	}

	s.logger.Info().Str("job_id", job.ID).Msg("Job completed")
}

// runStage executes fn under the configured stage timeout. The result
// travels through the channel, so an abandoned goroutine never touches
// state the caller still reads.
func runStage[T any](s *Service, name string, fn func() (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	common.SafeGo(s.logger, "pipeline.stage:"+name, func() {
		value, err := fn()
		done <- outcome{value: value, err: err}
	})

	select {
	case out := <-done:
		return out.value, out.err
	case <-time.After(s.stageTimeout):
		var zero T
		return zero, fmt.Errorf("%w: %s stage exceeded %s", common.ErrStageTimeout, name, s.stageTimeout)
	}
}

// progress persists a stage checkpoint
func (s *Service) progress(ctx context.Context, job *models.Job, pct int, message string) {
	job.Status = models.JobStatusProcessing
	job.Progress = pct
	job.Message = message
	job.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, job); err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Int("progress", pct).Msg("Failed to persist job progress")
	}
}

// fail moves the job to its failed terminal state
func (s *Service) fail(job *models.Job, message string) {
	job.Status = models.JobStatusFailed
	job.Message = message
	job.UpdatedAt = time.Now()
	if err := s.store.Update(context.Background(), job); err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to persist job failure")
	}
	s.logger.Warn().Str("job_id", job.ID).Str("reason", message).Msg("Job failed")
}

// StartEviction schedules periodic removal of terminal jobs older than
// the configured TTL
func (s *Service) StartEviction() error {
	s.cron = cron.New(cron.WithSeconds())
	_, err := s.cron.AddFunc(s.schedule, func() {
		cutoff := time.Now().Add(-s.jobTTL)
		n, err := s.store.DeleteTerminalBefore(context.Background(), cutoff)
		if err != nil {
			s.logger.Error().Err(err).Msg("Job eviction failed")
			return
		}
		if n > 0 {
			s.logger.Info().Int("evicted", n).Msg("Evicted expired jobs")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid eviction schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	return nil
}

// StopEviction halts the eviction scheduler
func (s *Service) StopEviction() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
}
