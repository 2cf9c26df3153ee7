package models

// Report output formats. The slide-deck variant renders as a 16:9
// landscape PDF, one section per page.
const (
	ReportFormatPDF  = "pdf"
	ReportFormatDeck = "deck"
)

// ChartSet maps chart name -> rendered image path. Absence of a key means
// that chart was skipped or failed; callers must treat absence as "no
// chart", never as an error.
type ChartSet map[string]string

// Fixed chart vocabulary
const (
	ChartMetricsOverview   = "metrics_overview"
	ChartDistribution      = "distribution"
	ChartCorrelation       = "correlation"
	ChartCategoryBreakdown = "category_breakdown"
	ChartTrendAnalysis     = "trend_analysis"
)

// ChartNames is the fixed vocabulary in deterministic assembly order
var ChartNames = []string{
	ChartMetricsOverview,
	ChartDistribution,
	ChartCorrelation,
	ChartCategoryBreakdown,
	ChartTrendAnalysis,
}

// InsightSource tags where an insight narrative came from
type InsightSource string

const (
	InsightSourceRemote   InsightSource = "remote"
	InsightSourceFallback InsightSource = "fallback"
)

// InsightResult is the narrative produced for a job. Exactly one source
// is used per job, never partial.
type InsightResult struct {
	Text   string        `json:"text"`
	Source InsightSource `json:"source"`
}

// ReportConfig is the caller-supplied set of options controlling report
// content and format. All fields default; an analyze request may omit
// the whole config.
type ReportConfig struct {
	Title                  string `json:"title"`
	CompanyName            string `json:"company_name"`
	ReportType             string `json:"report_type" validate:"omitempty,oneof=pdf deck"`
	IncludeCharts          *bool  `json:"include_charts,omitempty"`
	IncludeSummary         *bool  `json:"include_summary,omitempty"`
	IncludeRecommendations *bool  `json:"include_recommendations,omitempty"`
}

// ApplyDefaults fills unset fields with their defaults
func (c *ReportConfig) ApplyDefaults() {
	if c.Title == "" {
		c.Title = "Weekly Performance Report"
	}
	if c.CompanyName == "" {
		c.CompanyName = "Company"
	}
	if c.ReportType == "" {
		c.ReportType = ReportFormatPDF
	}
	t := true
	if c.IncludeCharts == nil {
		c.IncludeCharts = &t
	}
	if c.IncludeSummary == nil {
		c.IncludeSummary = &t
	}
	if c.IncludeRecommendations == nil {
		c.IncludeRecommendations = &t
	}
}

// ChartsEnabled reports whether the charts section should render
func (c *ReportConfig) ChartsEnabled() bool {
	return c.IncludeCharts == nil || *c.IncludeCharts
}

// SummaryEnabled reports whether the executive summary should render
func (c *ReportConfig) SummaryEnabled() bool {
	return c.IncludeSummary == nil || *c.IncludeSummary
}

// RecommendationsEnabled reports whether the recommendations section should render
func (c *ReportConfig) RecommendationsEnabled() bool {
	return c.IncludeRecommendations == nil || *c.IncludeRecommendations
}
