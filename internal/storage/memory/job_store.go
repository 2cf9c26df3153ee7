package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/insight/internal/common"
	"github.com/ternarybob/insight/internal/interfaces"
	"github.com/ternarybob/insight/internal/models"
)

// JobStore is the in-memory job store. Records are deep-copied on both
// write and read so a poll never observes a partially applied update.
type JobStore struct {
	mu     sync.RWMutex
	jobs   map[string]*models.Job
	logger arbor.ILogger
}

// NewJobStore creates an empty in-memory job store
func NewJobStore(logger arbor.ILogger) interfaces.JobStore {
	return &JobStore{
		jobs:   make(map[string]*models.Job),
		logger: logger,
	}
}

func (s *JobStore) Save(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		return common.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job.Clone()
	return nil
}

func (s *JobStore) Get(ctx context.Context, jobID string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return job.Clone(), nil
}

func (s *JobStore) Update(ctx context.Context, job *models.Job) error {
	return s.Save(ctx, job)
}

func (s *JobStore) List(ctx context.Context) ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.Clone())
	}
	return out, nil
}

func (s *JobStore) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, job := range s.jobs {
		if job.Status.IsTerminal() && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed, nil
}

func (s *JobStore) Close() error {
	return nil
}
