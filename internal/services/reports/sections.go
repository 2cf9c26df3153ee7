// -----------------------------------------------------------------------
// Report section composition - turns a dataset, narrative and chart set
// into the ordered markdown sections both output formats render from.
// -----------------------------------------------------------------------

package reports

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ternarybob/insight/internal/models"
)

// section is one logical unit of the report. The flowing document format
// renders sections back to back; the deck format gives each its own page.
type section struct {
	Title  string
	Body   string   // markdown
	Charts []string // chart image paths rendered after the body
}

// chartTitles maps chart names to their display headings
var chartTitles = map[string]string{
	models.ChartMetricsOverview:   "Metrics Overview",
	models.ChartDistribution:      "Distributions",
	models.ChartCorrelation:       "Correlation Matrix",
	models.ChartCategoryBreakdown: "Category Breakdown",
	models.ChartTrendAnalysis:     "Trend Analysis",
}

// narrative is the parsed form of an insight text
type narrative struct {
	Insights        string
	Recommendations string
	Summary         string
}

const (
	markerInsights        = "**Insights:**"
	markerRecommendations = "**Recommendations:**"
	markerSummary         = "**Executive Summary:**"
)

// parseNarrative splits an insight text on its section markers. Text that
// does not carry the markers is treated as a single summary block so
// free-form remote responses still render.
func parseNarrative(text string) narrative {
	if !strings.Contains(text, markerInsights) {
		return narrative{Summary: strings.TrimSpace(text)}
	}

	cut := func(s, from, to string) string {
		i := strings.Index(s, from)
		if i < 0 {
			return ""
		}
		s = s[i+len(from):]
		if to != "" {
			if j := strings.Index(s, to); j >= 0 {
				s = s[:j]
			}
		}
		return strings.TrimSpace(s)
	}

	return narrative{
		Insights:        cut(text, markerInsights, markerRecommendations),
		Recommendations: cut(text, markerRecommendations, markerSummary),
		Summary:         cut(text, markerSummary, ""),
	}
}

// composeSections builds the ordered section list for a report. Config
// flags gate the summary, chart and recommendation sections; chart files
// that failed to render are silently skipped.
func composeSections(ds *models.Dataset, insight *models.InsightResult, charts models.ChartSet, cfg *models.ReportConfig) []section {
	var secs []section

	secs = append(secs, coverSection(ds, cfg))

	var nar narrative
	if insight != nil {
		nar = parseNarrative(insight.Text)
	}

	if cfg.SummaryEnabled() && nar.Summary != "" {
		secs = append(secs, section{Title: "Executive Summary", Body: nar.Summary})
	}

	if nar.Insights != "" {
		secs = append(secs, section{Title: "Key Findings", Body: nar.Insights})
	}

	if cfg.ChartsEnabled() {
		for _, name := range models.ChartNames {
			path, ok := charts[name]
			if !ok {
				continue
			}
			if _, err := os.Stat(path); err != nil {
				continue
			}
			secs = append(secs, section{Title: chartTitles[name], Charts: []string{path}})
		}
	}

	if cfg.RecommendationsEnabled() && nar.Recommendations != "" {
		secs = append(secs, section{Title: "Recommendations", Body: nar.Recommendations})
	}

	secs = append(secs, section{Title: "Data Summary", Body: dataSummaryBody(ds)})

	return secs
}

// coverSection is the title block at the head of every report
func coverSection(ds *models.Dataset, cfg *models.ReportConfig) section {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Prepared for %s*\n\n", cfg.CompanyName)
	fmt.Fprintf(&sb, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04"))
	if ds != nil && len(ds.SourceFiles) > 0 {
		fmt.Fprintf(&sb, "Source files: %s\n", strings.Join(ds.SourceFiles, ", "))
	}
	return section{Title: cfg.Title, Body: sb.String()}
}

// dataSummaryBody renders the structural facts and per-column statistics
// as a markdown table
func dataSummaryBody(ds *models.Dataset) string {
	var sb strings.Builder

	if ds == nil || ds.Meta == nil {
		sb.WriteString("No data available.\n")
		return sb.String()
	}
	meta := ds.Meta

	fmt.Fprintf(&sb, "The dataset contains %d rows and %d columns.\n\n", meta.TotalRows, meta.TotalColumns)

	if meta.DateRange != nil {
		fmt.Fprintf(&sb, "Date range: %s to %s\n\n",
			meta.DateRange.Start.Format("2006-01-02"),
			meta.DateRange.End.Format("2006-01-02"))
	}

	if len(meta.DateParseFailures) > 0 {
		fmt.Fprintf(&sb, "Columns skipped by date detection: %s\n\n",
			strings.Join(meta.DateParseFailures, ", "))
	}

	if len(meta.NumericColumns) > 0 {
		sb.WriteString("| Column | Mean | Median | Std | Min | Max |\n")
		sb.WriteString("| --- | --- | --- | --- | --- | --- |\n")
		for _, name := range meta.NumericColumns {
			st := meta.NumericStats[name]
			fmt.Fprintf(&sb, "| %s | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
				name, st.Mean, st.Median, st.Std, st.Min, st.Max)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
