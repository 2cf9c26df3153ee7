package dataset

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ternarybob/insight/internal/models"
)

const (
	maxValueCountColumns = 5  // Categorical columns receiving value counts
	maxValueCountEntries = 10 // Top-N values per column
)

// deriveMetadata is pure and deterministic given the merged table.
// Undefined statistics report as 0 so the metadata is always fully
// populated.
func deriveMetadata(ds *models.Dataset, dateFailures []string) *models.Metadata {
	meta := &models.Metadata{
		TotalRows:         ds.Rows,
		TotalColumns:      len(ds.Columns),
		Columns:           make([]string, 0, len(ds.Columns)),
		ColumnTypes:       make(map[string]models.ColumnType, len(ds.Columns)),
		NumericStats:      make(map[string]models.NumericStats),
		ValueCounts:       make(map[string][]models.ValueCount),
		DateParseFailures: dateFailures,
		SourceFiles:       ds.SourceFiles,
	}

	for i := range ds.Columns {
		col := &ds.Columns[i]
		meta.Columns = append(meta.Columns, col.Name)
		meta.ColumnTypes[col.Name] = col.Type

		switch col.Type {
		case models.ColumnTypeNumeric:
			meta.NumericColumns = append(meta.NumericColumns, col.Name)
			meta.NumericStats[col.Name] = numericStats(col.ValidFloats())
		case models.ColumnTypeCategorical:
			meta.CategoricalColumns = append(meta.CategoricalColumns, col.Name)
		}
	}

	for i, name := range meta.CategoricalColumns {
		if i >= maxValueCountColumns {
			break
		}
		meta.ValueCounts[name] = topValueCounts(ds.Column(name), maxValueCountEntries)
	}

	if dates := ds.DateColumns(); len(dates) > 0 {
		meta.DateRange = dateRange(dates[0])
	}

	return meta
}

func numericStats(values []float64) models.NumericStats {
	if len(values) == 0 {
		return models.NumericStats{}
	}

	stats := models.NumericStats{
		Mean: stat.Mean(values, nil),
		Min:  floats.Min(values),
		Max:  floats.Max(values),
		Sum:  floats.Sum(values),
	}
	if len(values) > 1 {
		stats.Std = stat.StdDev(values, nil)
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		stats.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		stats.Median = sorted[mid]
	}

	return stats
}

// topValueCounts returns up to limit value frequencies, ordered by count
// descending with value as tiebreak for determinism
func topValueCounts(col *models.Column, limit int) []models.ValueCount {
	counts := make(map[string]int)
	for i, cell := range col.Cells {
		if col.Valid[i] {
			counts[cell]++
		}
	}

	out := make([]models.ValueCount, 0, len(counts))
	for value, count := range counts {
		out = append(out, models.ValueCount{Value: value, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func dateRange(col *models.Column) *models.DateRange {
	var r *models.DateRange
	for i, t := range col.Times {
		if !col.Valid[i] {
			continue
		}
		if r == nil {
			r = &models.DateRange{Start: t, End: t}
			continue
		}
		if t.Before(r.Start) {
			r.Start = t
		}
		if t.After(r.End) {
			r.End = t
		}
	}
	return r
}
