package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// maxRenderedRows bounds the textual rendition of a table; the downstream
// extraction prompt has a fixed context budget.
const maxRenderedRows = 100

// Table is a parsed tabular document. Cells are raw strings; the empty
// string stands for an empty cell.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ParseSpreadsheet reads the first sheet of an xlsx/xls workbook at path.
func ParseSpreadsheet(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tableFromWorkbook(f)
}

// ParseSpreadsheetReader reads the first sheet of a workbook from r, used by
// the legacy bulk-import path which receives uploaded bytes.
func ParseSpreadsheetReader(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tableFromWorkbook(f)
}

func tableFromWorkbook(f *excelize.File) (*Table, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return tableFromRows(rows), nil
}

// ParseCSV reads a comma-separated file at path. Short records are tolerated
// and padded to the header width.
func ParseCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return tableFromRows(rows), nil
}

// tableFromRows treats the first row as the header and pads every data row
// to the header width.
func tableFromRows(rows [][]string) *Table {
	if len(rows) == 0 {
		return &Table{}
	}
	columns := rows[0]
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		padded := make([]string, len(columns))
		copy(padded, row)
		data = append(data, padded)
	}
	return &Table{Columns: columns, Rows: data}
}

// Cell returns the value at (row, column name), or "" when the column is
// unknown or the cell is empty.
func (t *Table) Cell(row int, column string) string {
	for i, c := range t.Columns {
		if c == column {
			if row >= 0 && row < len(t.Rows) && i < len(t.Rows[row]) {
				return t.Rows[row][i]
			}
			return ""
		}
	}
	return ""
}

// TextRepresentation renders the table as bounded plain text: a header line,
// a row count, then up to maxRenderedRows rows as "col: value | col: value"
// with empty cells skipped, and a trailing summary line for the remainder.
func (t *Table) TextRepresentation() string {
	var lines []string
	lines = append(lines, "Columns: "+strings.Join(t.Columns, ", "))
	lines = append(lines, fmt.Sprintf("Total rows: %d", len(t.Rows)))
	lines = append(lines, "")

	for i, row := range t.Rows {
		if i >= maxRenderedRows {
			lines = append(lines, fmt.Sprintf("... and %d more rows", len(t.Rows)-maxRenderedRows))
			break
		}
		var cells []string
		for j, col := range t.Columns {
			if j < len(row) && strings.TrimSpace(row[j]) != "" {
				cells = append(cells, col+": "+row[j])
			}
		}
		lines = append(lines, fmt.Sprintf("Row %d: %s", i+1, strings.Join(cells, " | ")))
	}

	return strings.Join(lines, "\n")
}
