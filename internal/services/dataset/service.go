// -----------------------------------------------------------------------
// Data Loader - parses uploaded files into one merged Dataset
// -----------------------------------------------------------------------

package dataset

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/insight/internal/common"
	"github.com/ternarybob/insight/internal/interfaces"
	"github.com/ternarybob/insight/internal/models"
)

// dateLayouts are probed in order for columns matched by the date-name
// heuristic
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
}

// Service implements interfaces.DataLoader
type Service struct {
	allowSchemaDrift bool
	logger           arbor.ILogger
}

// Compile-time assertion
var _ interfaces.DataLoader = (*Service)(nil)

// NewService creates a data loader. When allowSchemaDrift is false,
// merging files with diverging column sets fails with ErrSchemaMismatch.
func NewService(allowSchemaDrift bool, logger arbor.ILogger) *Service {
	return &Service{
		allowSchemaDrift: allowSchemaDrift,
		logger:           logger,
	}
}

// Load parses each path by extension, stacks rows into one table, and
// derives metadata. A file that fails to parse is dropped; the batch
// proceeds if any file parsed, otherwise ErrNoValidData.
func (s *Service) Load(paths []string) (*models.Dataset, error) {
	var tables []*table
	var sources []string

	for _, path := range paths {
		t, err := s.readFile(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Dropping file that failed to parse")
			continue
		}
		tables = append(tables, t)
		sources = append(sources, filepath.Base(path))
	}

	if len(tables) == 0 {
		return nil, common.ErrNoValidData
	}

	merged, err := s.merge(tables)
	if err != nil {
		return nil, err
	}

	ds, dateFailures := s.buildDataset(merged)
	ds.SourceFiles = sources
	ds.Meta = deriveMetadata(ds, dateFailures)

	s.logger.Info().
		Int("rows", ds.Rows).
		Int("columns", len(ds.Columns)).
		Int("files", len(sources)).
		Msg("Dataset loaded")

	return ds, nil
}

// merge stacks tables row-wise, aligning columns by name. Column order
// follows the first table.
func (s *Service) merge(tables []*table) (*table, error) {
	first := tables[0]
	merged := &table{
		columns: append([]string(nil), first.columns...),
		rows:    append([][]string(nil), first.rows...),
	}

	for _, t := range tables[1:] {
		if !sameColumnSet(merged.columns, t.columns) {
			if !s.allowSchemaDrift {
				return nil, fmt.Errorf("%w: %v vs %v", common.ErrSchemaMismatch, merged.columns, t.columns)
			}
			// Drift allowed: extend with the union, filling missing cells empty
			merged = unionColumns(merged, t.columns)
		}

		index := make(map[string]int, len(t.columns))
		for i, col := range t.columns {
			index[col] = i
		}
		for _, src := range t.rows {
			row := make([]string, len(merged.columns))
			for i, col := range merged.columns {
				if j, ok := index[col]; ok && j < len(src) {
					row[i] = src[j]
				}
			}
			merged.rows = append(merged.rows, row)
		}
	}

	return merged, nil
}

func sameColumnSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, col := range a {
		set[col] = struct{}{}
	}
	for _, col := range b {
		if _, ok := set[col]; !ok {
			return false
		}
	}
	return true
}

// unionColumns widens t with any columns from extra it lacks, padding
// existing rows with empty cells
func unionColumns(t *table, extra []string) *table {
	have := make(map[string]struct{}, len(t.columns))
	for _, col := range t.columns {
		have[col] = struct{}{}
	}
	for _, col := range extra {
		if _, ok := have[col]; ok {
			continue
		}
		t.columns = append(t.columns, col)
		for i := range t.rows {
			t.rows[i] = append(t.rows[i], "")
		}
	}
	return t
}

// buildDataset runs type inference over the merged table. Columns whose
// name contains "date" or "time" are opportunistically parsed as dates;
// when that fails the column falls through to the normal inference and
// the failure is recorded in metadata. This is best effort, not a
// contract.
func (s *Service) buildDataset(t *table) (*models.Dataset, []string) {
	ds := &models.Dataset{
		Rows:    len(t.rows),
		Columns: make([]models.Column, 0, len(t.columns)),
	}
	var dateFailures []string

	for i, name := range t.columns {
		cells := make([]string, len(t.rows))
		for r, row := range t.rows {
			if i < len(row) {
				cells[r] = strings.TrimSpace(row[i])
			}
		}

		col := models.Column{Name: name, Cells: cells}

		if isDateName(name) {
			if times, valid, ok := parseTimes(cells); ok {
				col.Type = models.ColumnTypeDate
				col.Times = times
				col.Valid = valid
				ds.Columns = append(ds.Columns, col)
				continue
			}
			dateFailures = append(dateFailures, name)
		}

		if floats, valid, ok := parseFloats(cells); ok {
			col.Type = models.ColumnTypeNumeric
			col.Floats = floats
			col.Valid = valid
		} else {
			col.Type = models.ColumnTypeCategorical
			col.Valid = nonEmpty(cells)
		}
		ds.Columns = append(ds.Columns, col)
	}

	return ds, dateFailures
}

func isDateName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "date") || strings.Contains(lower, "time")
}

// parseTimes returns parsed times when every non-empty cell matches one
// of the known layouts
func parseTimes(cells []string) ([]time.Time, []bool, bool) {
	times := make([]time.Time, len(cells))
	valid := make([]bool, len(cells))
	any := false

	for i, cell := range cells {
		if cell == "" {
			continue
		}
		parsed, ok := parseTime(cell)
		if !ok {
			return nil, nil, false
		}
		times[i] = parsed
		valid[i] = true
		any = true
	}
	return times, valid, any
}

func parseTime(cell string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseFloats returns parsed values when every non-empty cell is numeric
func parseFloats(cells []string) ([]float64, []bool, bool) {
	floats := make([]float64, len(cells))
	valid := make([]bool, len(cells))
	any := false

	for i, cell := range cells {
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
		if err != nil {
			return nil, nil, false
		}
		floats[i] = v
		valid[i] = true
		any = true
	}
	return floats, valid, any
}

func nonEmpty(cells []string) []bool {
	valid := make([]bool, len(cells))
	for i, cell := range cells {
		valid[i] = cell != ""
	}
	return valid
}

// Preview returns a bounded read-only sample of one file. It never
// touches Dataset state.
func (s *Service) Preview(path string, rows int) (*models.Preview, error) {
	if rows <= 0 {
		rows = 10
	}

	t, err := s.readFile(path)
	if err != nil {
		return nil, err
	}

	ds, _ := s.buildDataset(t)
	limit := rows
	if limit > ds.Rows {
		limit = ds.Rows
	}

	preview := &models.Preview{
		Columns:      t.columns,
		TotalRows:    ds.Rows,
		TotalColumns: len(t.columns),
		DTypes:       make(map[string]string, len(ds.Columns)),
		Rows:         make([]map[string]string, 0, limit),
	}
	for _, col := range ds.Columns {
		preview.DTypes[col.Name] = string(col.Type)
	}
	for r := 0; r < limit; r++ {
		record := make(map[string]string, len(ds.Columns))
		for _, col := range ds.Columns {
			record[col.Name] = col.Cells[r]
		}
		preview.Rows = append(preview.Rows, record)
	}

	return preview, nil
}
