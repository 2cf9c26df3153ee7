package interfaces

import (
	"context"

	"github.com/ternarybob/insight/internal/models"
)

// Summarizer is the narrow remote text-generation capability used by the
// insight step. Implementations may fail; the insight service absorbs
// every failure into the deterministic fallback.
type Summarizer interface {
	Summarize(ctx context.Context, digest string) (string, error)
	Name() string
}

// DataLoader parses and merges uploaded files into a Dataset
type DataLoader interface {
	Load(paths []string) (*models.Dataset, error)
	Preview(path string, rows int) (*models.Preview, error)
}

// ChartRenderer renders the fixed chart vocabulary for a dataset.
// Individual chart failures are absorbed; the returned set contains only
// the charts that rendered.
type ChartRenderer interface {
	Render(ds *models.Dataset, dir string) models.ChartSet
}

// InsightGenerator produces the narrative for a job. It never fails: on
// any remote error the deterministic fallback is substituted.
type InsightGenerator interface {
	Generate(ctx context.Context, meta *models.Metadata) *models.InsightResult
}

// ReportAssembler composes the finished output document
type ReportAssembler interface {
	Assemble(ds *models.Dataset, insight *models.InsightResult, charts models.ChartSet, cfg models.ReportConfig, jobID string) (string, error)
	OutputPath(jobID, format string) (string, error)
}
