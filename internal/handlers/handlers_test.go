package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/insight/internal/common"
	"github.com/ternarybob/insight/internal/services/charts"
	"github.com/ternarybob/insight/internal/services/dataset"
	"github.com/ternarybob/insight/internal/services/ingest"
	"github.com/ternarybob/insight/internal/services/insights"
	"github.com/ternarybob/insight/internal/services/pipeline"
	"github.com/ternarybob/insight/internal/services/reports"
	"github.com/ternarybob/insight/internal/storage/memory"
)

type fixture struct {
	upload *UploadHandler
	jobs   *JobHandler
	report *ReportHandler
	data   *DataHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := arbor.NewLogger()

	cfg := common.NewDefaultConfig()
	cfg.Storage.Uploads = t.TempDir()
	cfg.Storage.Reports = t.TempDir()

	files, err := ingest.NewService(cfg.Storage.Uploads, logger)
	require.NoError(t, err)

	loader := dataset.NewService(false, logger)
	reportSvc := reports.NewService(cfg.Storage.Reports, logger)

	pipe := pipeline.NewService(
		memory.NewJobStore(logger),
		files,
		loader,
		charts.NewService(logger),
		insights.NewServiceWithSummarizer(nil, logger),
		reportSvc,
		cfg,
		logger,
	)

	return &fixture{
		upload: NewUploadHandler(files, logger),
		jobs:   NewJobHandler(pipe, logger),
		report: NewReportHandler(pipe, reportSvc, logger),
		data:   NewDataHandler(files, loader, cfg.Pipeline.PreviewRows, logger),
	}
}

func multipartUpload(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadHandler_StoresCSV(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.upload.UploadFilesHandler(rec, multipartUpload(t, "data.csv", "X,Y\n1,2\n"))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
		Files  []struct {
			FileID   string `json:"file_id"`
			FileType string `json:"file_type"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "success", resp.Status)
	assert.True(t, strings.HasPrefix(resp.Files[0].FileID, "file_"))
	assert.Equal(t, ".csv", resp.Files[0].FileType)
}

func TestUploadHandler_RejectsUnsupportedExtension(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.upload.UploadFilesHandler(rec, multipartUpload(t, "malware.exe", "MZ"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported")
}

func TestUploadHandler_NoFiles(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.Close())
	req := httptest.NewRequest("POST", "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rec := httptest.NewRecorder()
	f.upload.UploadFilesHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeHandler_RequiresFileIDs(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest("POST", "/api/analyze", strings.NewReader(`{"file_ids":[]}`))
	rec := httptest.NewRecorder()
	f.jobs.AnalyzeHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeHandler_RejectsUnknownFormat(t *testing.T) {
	f := newFixture(t)

	body := `{"file_ids":["file_x"],"config":{"report_type":"pptx"}}`
	req := httptest.NewRequest("POST", "/api/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.jobs.AnalyzeHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeHandler_ReturnsPendingJob(t *testing.T) {
	f := newFixture(t)

	body := `{"file_ids":["file_x"]}`
	req := httptest.NewRequest("POST", "/api/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.jobs.AnalyzeHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.JobID, "job_"))
	assert.Equal(t, "pending", resp.Status)
}

func TestJobStatusHandler_Unknown(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest("GET", "/api/jobs/job_missing", nil)
	rec := httptest.NewRecorder()
	f.jobs.JobStatusHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportHandler_NotProducedYet(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest("GET", "/api/reports/job_missing/pdf", nil)
	rec := httptest.NewRecorder()
	f.report.DownloadHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportHandler_BadFormat(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest("GET", "/api/reports/job_x/docx", nil)
	rec := httptest.NewRecorder()
	f.report.DownloadHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewHandler_UnknownFileReportsError(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest("POST", "/api/preview", strings.NewReader(`{"file_ids":["file_missing"]}`))
	rec := httptest.NewRecorder()
	f.data.PreviewHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Previews map[string]map[string]interface{} `json:"previews"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Previews["file_missing"], "error")
}

func TestSampleDataHandler(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest("GET", "/api/sample-data", nil)
	rec := httptest.NewRecorder()
	f.data.SampleDataHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		File struct {
			FileID string `json:"file_id"`
		} `json:"file"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.File.FileID, "file_"))
}
