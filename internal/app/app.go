// -----------------------------------------------------------------------
// App - application container wiring storage, services and handlers
// -----------------------------------------------------------------------

package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/insight/internal/common"
	"github.com/ternarybob/insight/internal/handlers"
	"github.com/ternarybob/insight/internal/interfaces"
	"github.com/ternarybob/insight/internal/services/charts"
	"github.com/ternarybob/insight/internal/services/dataset"
	"github.com/ternarybob/insight/internal/services/ingest"
	"github.com/ternarybob/insight/internal/services/insights"
	"github.com/ternarybob/insight/internal/services/pipeline"
	"github.com/ternarybob/insight/internal/services/reports"
	"github.com/ternarybob/insight/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	JobStore  interfaces.JobStore
	FileStore interfaces.FileStore

	// Pipeline services
	LoaderService  interfaces.DataLoader
	ChartService   interfaces.ChartRenderer
	InsightService interfaces.InsightGenerator
	ReportService  interfaces.ReportAssembler
	Pipeline       *pipeline.Service

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	UploadHandler *handlers.UploadHandler
	JobHandler    *handlers.JobHandler
	ReportHandler *handlers.ReportHandler
	DataHandler   *handlers.DataHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.initHandlers()

	logger.Info().
		Str("storage", cfg.Storage.Type).
		Str("uploads", cfg.Storage.Uploads).
		Str("reports", cfg.Storage.Reports).
		Msg("Application initialized")

	return app, nil
}

func (a *App) initStorage() error {
	jobStore, err := storage.NewJobStore(a.Config, a.Logger)
	if err != nil {
		return err
	}
	a.JobStore = jobStore

	fileStore, err := ingest.NewService(a.Config.Storage.Uploads, a.Logger)
	if err != nil {
		return err
	}
	a.FileStore = fileStore

	return nil
}

func (a *App) initServices() error {
	a.LoaderService = dataset.NewService(a.Config.Pipeline.AllowSchemaDrift, a.Logger)
	a.ChartService = charts.NewService(a.Logger)
	a.InsightService = insights.NewService(a.Config, a.Logger)
	a.ReportService = reports.NewService(a.Config.Storage.Reports, a.Logger)

	a.Pipeline = pipeline.NewService(
		a.JobStore,
		a.FileStore,
		a.LoaderService,
		a.ChartService,
		a.InsightService,
		a.ReportService,
		a.Config,
		a.Logger,
	)

	if err := a.Pipeline.StartEviction(); err != nil {
		return err
	}

	return nil
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler()
	a.UploadHandler = handlers.NewUploadHandler(a.FileStore, a.Logger)
	a.JobHandler = handlers.NewJobHandler(a.Pipeline, a.Logger)
	a.ReportHandler = handlers.NewReportHandler(a.Pipeline, a.ReportService, a.Logger)
	a.DataHandler = handlers.NewDataHandler(a.FileStore, a.LoaderService, a.Config.Pipeline.PreviewRows, a.Logger)
}

// Close releases application resources
func (a *App) Close() error {
	a.Pipeline.StopEviction()

	if err := a.JobStore.Close(); err != nil {
		a.Logger.Error().Err(err).Msg("Failed to close job store")
		return err
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
