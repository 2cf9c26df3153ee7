package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/insight/internal/models"
)

// JobStore persists analysis job status records. Implementations must
// make Save/Update atomic with respect to Get so a poll never observes a
// torn record.
type JobStore interface {
	Save(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, jobID string) (*models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	List(ctx context.Context) ([]*models.Job, error)

	// DeleteTerminalBefore evicts completed/failed jobs last updated
	// before the cutoff. Returns the number of jobs removed.
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error)

	Close() error
}

// FileStore persists uploaded raw files under generated identifiers
type FileStore interface {
	Store(content []byte, originalName string) (*models.UploadedFile, error)
	Resolve(fileID string) (string, error)
}
