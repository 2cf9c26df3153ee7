package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/insight/internal/common"
	"github.com/ternarybob/insight/internal/interfaces"
	"github.com/ternarybob/insight/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// JobStore implements interfaces.JobStore backed by Badger. Badgerhold
// serializes each upsert, so a concurrent Get sees either the previous
// or the new record, never a torn one.
type JobStore struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewJobStore creates a Badger-backed job store
func NewJobStore(db *BadgerDB, logger arbor.ILogger) interfaces.JobStore {
	return &JobStore{
		db:     db,
		logger: logger,
	}
}

func (s *JobStore) Save(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	if err := s.db.Store().Upsert(job.ID, job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

func (s *JobStore) Get(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	if err := s.db.Store().Get(jobID, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func (s *JobStore) Update(ctx context.Context, job *models.Job) error {
	return s.Save(ctx, job)
}

func (s *JobStore) List(ctx context.Context) ([]*models.Job, error) {
	var jobs []*models.Job
	query := badgerhold.Where("ID").Ne("")
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

func (s *JobStore) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var stale []*models.Job
	query := badgerhold.Where("Status").In(
		models.JobStatusCompleted, models.JobStatusFailed,
	).And("UpdatedAt").Lt(cutoff)
	if err := s.db.Store().Find(&stale, query); err != nil {
		return 0, fmt.Errorf("failed to find stale jobs: %w", err)
	}

	removed := 0
	for _, job := range stale {
		if err := s.db.Store().Delete(job.ID, &models.Job{}); err != nil {
			s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to evict job")
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *JobStore) Close() error {
	return s.db.Close()
}
