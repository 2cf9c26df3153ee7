// -----------------------------------------------------------------------
// Dataset - merged in-memory tabular data plus derived metadata
// -----------------------------------------------------------------------

package models

import (
	"time"
)

// ColumnType classifies a dataset column
type ColumnType string

const (
	ColumnTypeNumeric     ColumnType = "numeric"
	ColumnTypeCategorical ColumnType = "categorical"
	ColumnTypeDate        ColumnType = "date"
)

// Column holds one named column of the merged table. Cells always carries
// the raw string form; Floats/Times are populated according to Type with
// Valid marking cells that parsed.
type Column struct {
	Name   string
	Type   ColumnType
	Cells  []string
	Floats []float64
	Times  []time.Time
	Valid  []bool
}

// ValidFloats returns the parsed numeric values, skipping missing cells
func (c *Column) ValidFloats() []float64 {
	if c.Type != ColumnTypeNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.Floats))
	for i, v := range c.Floats {
		if c.Valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Dataset is the merged tabular result of loading one or more uploaded
// files. It lives only for the duration of a single job run.
type Dataset struct {
	Columns     []Column
	Rows        int
	SourceFiles []string
	Meta        *Metadata
}

// Column returns the named column or nil
func (d *Dataset) Column(name string) *Column {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i]
		}
	}
	return nil
}

// NumericColumns returns columns of numeric type in declaration order
func (d *Dataset) NumericColumns() []*Column {
	var out []*Column
	for i := range d.Columns {
		if d.Columns[i].Type == ColumnTypeNumeric {
			out = append(out, &d.Columns[i])
		}
	}
	return out
}

// CategoricalColumns returns columns of categorical type in declaration order
func (d *Dataset) CategoricalColumns() []*Column {
	var out []*Column
	for i := range d.Columns {
		if d.Columns[i].Type == ColumnTypeCategorical {
			out = append(out, &d.Columns[i])
		}
	}
	return out
}

// DateColumns returns columns of date type in declaration order
func (d *Dataset) DateColumns() []*Column {
	var out []*Column
	for i := range d.Columns {
		if d.Columns[i].Type == ColumnTypeDate {
			out = append(out, &d.Columns[i])
		}
	}
	return out
}

// NumericStats holds descriptive statistics for one numeric column.
// Undefined statistics (empty or all-null column) report as 0 so the
// metadata is always fully populated.
type NumericStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Sum    float64 `json:"sum"`
}

// ValueCount is one categorical value and its frequency
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// DateRange is the span of the first detected date column
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Metadata captures derived structural facts and statistics for a Dataset
type Metadata struct {
	TotalRows          int                     `json:"total_rows"`
	TotalColumns       int                     `json:"total_columns"`
	Columns            []string                `json:"columns"`
	ColumnTypes        map[string]ColumnType   `json:"column_types"`
	NumericColumns     []string                `json:"numeric_columns"`
	CategoricalColumns []string                `json:"categorical_columns"`
	NumericStats       map[string]NumericStats `json:"numeric_stats"`
	ValueCounts        map[string][]ValueCount `json:"value_counts"` // Top 10, first 5 categorical columns only
	DateRange          *DateRange              `json:"date_range,omitempty"`
	DateParseFailures  []string                `json:"date_parse_failures,omitempty"` // Column names where the date heuristic failed
	SourceFiles        []string                `json:"files_processed"`
}

// Preview is a bounded read-only sample of one uploaded file
type Preview struct {
	Columns      []string            `json:"columns"`
	Rows         []map[string]string `json:"rows"`
	TotalRows    int                 `json:"total_rows"`
	TotalColumns int                 `json:"total_columns"`
	DTypes       map[string]string   `json:"dtypes"`
}
