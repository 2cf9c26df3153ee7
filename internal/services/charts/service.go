// -----------------------------------------------------------------------
// Chart Renderer - renders the fixed chart vocabulary as PNG images
// -----------------------------------------------------------------------

package charts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ternarybob/arbor"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/ternarybob/insight/internal/interfaces"
	"github.com/ternarybob/insight/internal/models"
)

const (
	maxOverviewColumns    = 5
	maxHistogramColumns   = 4
	maxCorrelationColumns = 8
	histogramBins         = 30
	maxCategoryEntries    = 10
)

// Service implements interfaces.ChartRenderer
type Service struct {
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.ChartRenderer = (*Service)(nil)

// NewService creates a chart renderer
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Render attempts the five charts independently. A chart whose
// preconditions are unmet or whose rendering fails is simply absent from
// the returned set; callers must treat absence as "no chart".
func (s *Service) Render(ds *models.Dataset, dir string) models.ChartSet {
	charts := models.ChartSet{}

	if ds == nil || ds.Meta == nil {
		s.logger.Warn().Msg("Dataset has no metadata, skipping all charts")
		return charts
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.logger.Error().Err(err).Str("dir", dir).Msg("Cannot create chart directory, skipping all charts")
		return charts
	}

	type renderFn func(*models.Dataset, string) error
	attempts := []struct {
		name string
		fn   renderFn
	}{
		{models.ChartMetricsOverview, s.renderMetricsOverview},
		{models.ChartDistribution, s.renderDistribution},
		{models.ChartCorrelation, s.renderCorrelation},
		{models.ChartCategoryBreakdown, s.renderCategoryBreakdown},
		{models.ChartTrendAnalysis, s.renderTrend},
	}

	for _, attempt := range attempts {
		path := filepath.Join(dir, attempt.name+".png")
		if err := attempt.fn(ds, path); err != nil {
			s.logger.Warn().Err(err).Str("chart", attempt.name).Msg("Chart skipped")
			continue
		}
		charts[attempt.name] = path
	}

	s.logger.Info().Int("rendered", len(charts)).Msg("Chart rendering finished")
	return charts
}

var errSkipped = fmt.Errorf("preconditions not met")

// renderMetricsOverview draws a grouped bar chart of mean/std/min/max
// across up to the first 5 numeric columns
func (s *Service) renderMetricsOverview(ds *models.Dataset, path string) error {
	numeric := ds.NumericColumns()
	if len(numeric) == 0 {
		return fmt.Errorf("%w: no numeric columns", errSkipped)
	}
	if len(numeric) > maxOverviewColumns {
		numeric = numeric[:maxOverviewColumns]
	}

	p := plot.New()
	p.Title.Text = "Key Metrics Overview"
	p.Y.Label.Text = "Value"

	width := vg.Points(12)
	for i, col := range numeric {
		stats := ds.Meta.NumericStats[col.Name]
		values := plotter.Values{stats.Mean, stats.Std, stats.Min, stats.Max}

		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return err
		}
		bars.LineStyle.Width = 0
		bars.Color = plotutil.Color(i)
		bars.Offset = vg.Length(i-len(numeric)/2) * width

		p.Add(bars)
		p.Legend.Add(col.Name, bars)
	}
	p.Legend.Top = true
	p.NominalX("mean", "std", "min", "max")

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

// renderDistribution draws up to 4 histograms in a 2x2 grid
func (s *Service) renderDistribution(ds *models.Dataset, path string) error {
	numeric := ds.NumericColumns()
	if len(numeric) == 0 {
		return fmt.Errorf("%w: no numeric columns", errSkipped)
	}
	if len(numeric) > maxHistogramColumns {
		numeric = numeric[:maxHistogramColumns]
	}

	cols := 2
	if len(numeric) < 2 {
		cols = 1
	}
	rows := (len(numeric) + cols - 1) / cols

	plots := make([][]*plot.Plot, rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, cols)
	}
	for i, col := range numeric {
		values := col.ValidFloats()
		if len(values) == 0 {
			continue
		}
		hist, err := plotter.NewHist(plotter.Values(values), histogramBins)
		if err != nil {
			return err
		}
		hist.FillColor = plotutil.Color(i)

		p := plot.New()
		p.Title.Text = col.Name
		p.Add(hist)
		plots[i/cols][i%cols] = p
	}

	img := vgimg.New(9*vg.Inch, 6*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: rows,
		Cols: cols,
		PadX: vg.Millimeter * 2,
		PadY: vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if plots[r][c] != nil {
				plots[r][c].Draw(canvases[r][c])
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return err
	}
	return nil
}

// correlationGrid adapts a correlation matrix to plotter.GridXYZ
type correlationGrid struct {
	names  []string
	matrix [][]float64
}

func (g correlationGrid) Dims() (int, int)       { return len(g.names), len(g.names) }
func (g correlationGrid) Z(c, r int) float64     { return g.matrix[r][c] }
func (g correlationGrid) X(c int) float64        { return float64(c) }
func (g correlationGrid) Y(r int) float64        { return float64(r) }

// renderCorrelation draws a heatmap over the first 8 numeric columns
func (s *Service) renderCorrelation(ds *models.Dataset, path string) error {
	numeric := ds.NumericColumns()
	if len(numeric) < 2 {
		return fmt.Errorf("%w: fewer than 2 numeric columns", errSkipped)
	}
	if len(numeric) > maxCorrelationColumns {
		numeric = numeric[:maxCorrelationColumns]
	}

	grid := correlationGrid{matrix: make([][]float64, len(numeric))}
	for _, col := range numeric {
		grid.names = append(grid.names, col.Name)
	}
	for i := range numeric {
		grid.matrix[i] = make([]float64, len(numeric))
		for j := range numeric {
			grid.matrix[i][j] = pairwiseCorrelation(numeric[i], numeric[j])
		}
	}

	p := plot.New()
	p.Title.Text = "Correlation Matrix"
	p.X.Tick.Marker = nominalTicks(grid.names)
	p.Y.Tick.Marker = nominalTicks(grid.names)

	heatmap := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	p.Add(heatmap)

	return p.Save(7*vg.Inch, 6*vg.Inch, path)
}

// pairwiseCorrelation computes correlation over rows where both columns
// are valid, reporting 0 when undefined
func pairwiseCorrelation(a, b *models.Column) float64 {
	var xs, ys []float64
	for i := range a.Floats {
		if a.Valid[i] && b.Valid[i] {
			xs = append(xs, a.Floats[i])
			ys = append(ys, b.Floats[i])
		}
	}
	if len(xs) < 2 {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	if r != r { // NaN from zero variance
		return 0
	}
	return r
}

// nominalTicks labels integer positions with column names
type nominalTicks []string

func (t nominalTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i, name := range t {
		pos := float64(i)
		if pos < min || pos > max {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: pos, Label: name})
	}
	return ticks
}

// renderCategoryBreakdown draws a horizontal bar chart of the top-10
// value frequencies of the first categorical column
func (s *Service) renderCategoryBreakdown(ds *models.Dataset, path string) error {
	categorical := ds.CategoricalColumns()
	if len(categorical) == 0 {
		return fmt.Errorf("%w: no categorical columns", errSkipped)
	}

	col := categorical[0]
	counts, ok := ds.Meta.ValueCounts[col.Name]
	if !ok || len(counts) == 0 {
		return fmt.Errorf("%w: no values in %s", errSkipped, col.Name)
	}
	if len(counts) > maxCategoryEntries {
		counts = counts[:maxCategoryEntries]
	}

	// Reverse so the largest bar renders at the top
	values := make(plotter.Values, len(counts))
	labels := make([]string, len(counts))
	for i, vc := range counts {
		idx := len(counts) - 1 - i
		values[idx] = float64(vc.Count)
		labels[idx] = vc.Value
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Distribution by %s", col.Name)
	p.X.Label.Text = "Count"

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return err
	}
	bars.Horizontal = true
	bars.LineStyle.Width = 0
	bars.Color = plotutil.Color(0)

	p.Add(bars)
	p.NominalY(labels...)

	return p.Save(7*vg.Inch, 5*vg.Inch, path)
}

// renderTrend draws the first numeric column over the first date column,
// sorted by date ascending
func (s *Service) renderTrend(ds *models.Dataset, path string) error {
	dates := ds.DateColumns()
	numeric := ds.NumericColumns()
	if len(dates) == 0 || len(numeric) == 0 {
		return fmt.Errorf("%w: need a date column and a numeric column", errSkipped)
	}

	dateCol, metricCol := dates[0], numeric[0]
	var points plotter.XYs
	for i := range dateCol.Times {
		if dateCol.Valid[i] && metricCol.Valid[i] {
			points = append(points, plotter.XY{
				X: float64(dateCol.Times[i].Unix()),
				Y: metricCol.Floats[i],
			})
		}
	}
	if len(points) == 0 {
		return fmt.Errorf("%w: no overlapping date and metric values", errSkipped)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].X < points[j].X })

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Trend Analysis: %s over Time", metricCol.Name)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = metricCol.Name
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	line, markers, err := plotter.NewLinePoints(points)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(0)
	markers.Color = plotutil.Color(0)

	p.Add(line, markers)

	return p.Save(9*vg.Inch, 5*vg.Inch, path)
}
