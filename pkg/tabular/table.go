package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Table is a rectangular block of raw sample data: one header row naming the
// columns, then one row of string cells per sample. Cells are kept as strings;
// column typing (timestamp vs. temperature vs. auxiliary) is decided during
// ingestion, not here.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the cell at (row, col), or "" when the row is short.
func (t *Table) Cell(row, col int) string {
	if col < len(t.Rows[row]) {
		return t.Rows[row][col]
	}
	return ""
}

// ReadCSV parses CSV data into a Table. Lines starting with '#' are metadata
// comments and are skipped. The first non-comment line is the header. Rows
// must have the same number of fields as the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("tabular: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("tabular: read header: %w", err)
	}

	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}

	t := &Table{Columns: cols}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tabular: read row %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}
