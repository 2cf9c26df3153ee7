// -----------------------------------------------------------------------
// Report assembly - renders the composed sections into the requested
// output format and validates the written file.
// -----------------------------------------------------------------------

package reports

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/insight/internal/common"
	"github.com/ternarybob/insight/internal/interfaces"
	"github.com/ternarybob/insight/internal/models"
)

// 16:9 slide geometry in millimetres (13.333in x 7.5in)
const (
	deckPageWidth  = 338.7
	deckPageHeight = 190.5
)

// Service assembles finished report documents
type Service struct {
	dir    string
	logger arbor.ILogger
}

var _ interfaces.ReportAssembler = (*Service)(nil)

// NewService creates a report assembler writing into dir
func NewService(dir string, logger arbor.ILogger) *Service {
	return &Service{dir: dir, logger: logger}
}

// OutputPath returns the deterministic output location for a job's report.
// The path exists only after Assemble has completed for that job.
func (s *Service) OutputPath(jobID, format string) (string, error) {
	switch format {
	case models.ReportFormatPDF:
		return filepath.Join(s.dir, jobID+"_report.pdf"), nil
	case models.ReportFormatDeck:
		return filepath.Join(s.dir, jobID+"_deck.pdf"), nil
	default:
		return "", fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, format)
	}
}

// Assemble composes and writes the report for a completed analysis run,
// returning the output path
func (s *Service) Assemble(ds *models.Dataset, insight *models.InsightResult, charts models.ChartSet, cfg models.ReportConfig, jobID string) (string, error) {
	cfg.ApplyDefaults()

	path, err := s.OutputPath(jobID, cfg.ReportType)
	if err != nil {
		return "", err
	}

	s.logger.Info().
		Str("job_id", jobID).
		Str("format", cfg.ReportType).
		Int("charts", len(charts)).
		Msg("Assembling report")

	secs := composeSections(ds, insight, charts, &cfg)

	var pdf *fpdf.Fpdf
	switch cfg.ReportType {
	case models.ReportFormatPDF:
		pdf, err = renderDocument(secs, s.logger)
	case models.ReportFormatDeck:
		pdf, err = renderDeck(secs, s.logger)
	}
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	if err := api.ValidateFile(path, nil); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Generated report failed validation")
		return "", fmt.Errorf("report validation failed: %w", err)
	}

	s.logger.Info().Str("job_id", jobID).Str("path", path).Msg("Report assembled")
	return path, nil
}

// renderDocument produces the flowing A4 portrait report
func renderDocument(secs []section, logger arbor.ILogger) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	r := newDocRenderer(pdf, documentStyle, logger)
	for i, sec := range secs {
		level := 2
		if i == 0 {
			level = 1
		}
		r.writeHeading(sec.Title, level)
		if sec.Body != "" {
			if err := r.writeMarkdown(sec.Body); err != nil {
				return nil, err
			}
		}
		for _, img := range sec.Charts {
			r.writeImage(img, 0)
		}
		pdf.Ln(4)
	}

	if pdf.Err() {
		return nil, pdf.Error()
	}
	return pdf, nil
}

// renderDeck produces the 16:9 landscape slide deck, one section per page
func renderDeck(secs []section, logger arbor.ILogger) (*fpdf.Fpdf, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: deckPageWidth, Ht: deckPageHeight},
	})
	pdf.SetMargins(18, 16, 18)
	pdf.SetAutoPageBreak(true, 14)

	r := newDocRenderer(pdf, deckStyle, logger)
	for i, sec := range secs {
		pdf.AddPage()
		level := 2
		if i == 0 {
			level = 1
		}
		r.writeHeading(sec.Title, level)
		if sec.Body != "" {
			if err := r.writeMarkdown(sec.Body); err != nil {
				return nil, err
			}
		}
		for _, img := range sec.Charts {
			_, pageH := pdf.GetPageSize()
			_, _, _, bottom := pdf.GetMargins()
			remaining := pageH - bottom - pdf.GetY() - 4
			if remaining < 30 {
				remaining = 30
			}
			r.writeImage(img, remaining)
		}
	}

	if pdf.Err() {
		return nil, pdf.Error()
	}
	return pdf, nil
}
