package dataset

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	_ "modernc.org/sqlite"
)

// table is the raw parsed form of one file before type inference
type table struct {
	columns []string
	rows    [][]string
}

// readFile parses one file by its extension
func (s *Service) readFile(path string) (*table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx", ".xls":
		return readExcel(path)
	case ".json":
		return readJSON(path)
	case ".sql":
		return readSQLDump(path)
	default:
		return nil, fmt.Errorf("no reader for extension %s", filepath.Ext(path))
	}
}

func readCSV(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv parse failed: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv file is empty")
	}

	return &table{
		columns: records[0],
		rows:    records[1:],
	}, nil
}

func readExcel(path string) (*table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("excel parse failed: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	// GetRows trims trailing empty cells per row; pad to the header width
	width := len(records[0])
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, width)
		copy(row, rec)
		rows = append(rows, row)
	}

	return &table{
		columns: records[0],
		rows:    rows,
	}, nil
}

// readJSON accepts an array of flat objects, the pandas read_json shape
func readJSON(path string) (*table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("json parse failed: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("json file has no records")
	}

	// Column order: first-record keys sorted for determinism
	var columns []string
	for key := range records[0] {
		columns = append(columns, key)
	}
	sort.Strings(columns)

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			raw, ok := rec[col]
			if !ok {
				continue
			}
			var str string
			if err := json.Unmarshal(raw, &str); err == nil {
				row[i] = str
			} else {
				row[i] = strings.Trim(string(raw), `"`)
			}
		}
		rows = append(rows, row)
	}

	return &table{
		columns: columns,
		rows:    rows,
	}, nil
}

// readSQLDump executes the dump into an in-memory sqlite database and
// reads back the first user table
func readSQLDump(path string) (*table, error) {
	script, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory sqlite: %w", err)
	}
	defer db.Close()

	for _, stmt := range splitStatements(string(script)) {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("sql dump statement failed: %w", err)
		}
	}

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY rowid LIMIT 1`).Scan(&name)
	if err != nil {
		return nil, fmt.Errorf("sql dump created no tables: %w", err)
	}

	rows, err := db.Query(fmt.Sprintf(`SELECT * FROM "%s"`, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	t := &table{columns: columns}
	values := make([]sql.NullString, len(columns))
	scan := make([]interface{}, len(columns))
	for i := range values {
		scan[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		row := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			}
		}
		t.rows = append(t.rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return t, nil
}

// splitStatements breaks a SQL script on semicolons, respecting single
// quoted literals. Good enough for INSERT/CREATE dumps; not a SQL parser.
func splitStatements(script string) []string {
	var stmts []string
	var sb strings.Builder
	inQuote := false

	for i := 0; i < len(script); i++ {
		c := script[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			sb.WriteByte(c)
		case c == ';' && !inQuote:
			if stmt := strings.TrimSpace(sb.String()); stmt != "" {
				stmts = append(stmts, stmt)
			}
			sb.Reset()
		default:
			sb.WriteByte(c)
		}
	}
	if stmt := strings.TrimSpace(sb.String()); stmt != "" {
		stmts = append(stmts, stmt)
	}
	return stmts
}
