package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - uploads and previews
	mux.HandleFunc("/api/upload", s.app.UploadHandler.UploadFilesHandler)   // POST - multipart file list
	mux.HandleFunc("/api/preview", s.app.DataHandler.PreviewHandler)        // POST - bounded row preview per file
	mux.HandleFunc("/api/sample-data", s.app.DataHandler.SampleDataHandler) // GET - generate demo dataset

	// API routes - analysis jobs
	mux.HandleFunc("/api/analyze", s.app.JobHandler.AnalyzeHandler)  // POST - submit job
	mux.HandleFunc("/api/jobs/", s.app.JobHandler.JobStatusHandler)  // GET /{id}
	mux.HandleFunc("/api/reports/", s.app.ReportHandler.DownloadHandler) // GET /{id}/{format}

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
