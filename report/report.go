// Package report exports result tables from the posts as CSV and as
// spreadsheets, so readers can pull the numbers behind a figure without
// scraping HTML.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/statnotes/statnotes/pkg/errors"
)

// Table is one result table: a title, column headers and typed cells.
// Cells may be strings, integers or floats.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]any
}

// NewTable creates an empty table with the given title and columns.
func NewTable(title string, columns ...string) *Table {
	return &Table{Title: title, Columns: columns}
}

// AddRow appends one row; the cell count must match the columns.
func (t *Table) AddRow(cells ...any) error {
	if len(cells) != len(t.Columns) {
		return errors.NewDimensionError("report.AddRow", len(t.Columns), len(cells), 0)
	}
	t.Rows = append(t.Rows, cells)
	return nil
}

func cellString(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'g', 6, 64)
	case int:
		return strconv.Itoa(c)
	default:
		return fmt.Sprint(c)
	}
}

// WriteCSV writes the table as CSV, headers first.
func WriteCSV(w io.Writer, t *Table) error {
	if t == nil || len(t.Columns) == 0 {
		return errors.NewValueError("report.WriteCSV", "table has no columns")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return errors.Wrap(err, "writing CSV header")
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, cell := range row {
			record[i] = cellString(cell)
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "writing CSV row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing CSV")
}

// WriteXLSX writes each table to its own sheet of one workbook. Sheet names
// come from the table titles, truncated to the spreadsheet limit.
func WriteXLSX(path string, tables ...*Table) error {
	if len(tables) == 0 {
		return errors.NewValueError("report.WriteXLSX", "no tables to write")
	}
	f := excelize.NewFile()
	defer f.Close()

	for ti, t := range tables {
		if t == nil || len(t.Columns) == 0 {
			return errors.NewValueError("report.WriteXLSX", "table has no columns")
		}
		sheet := sheetName(t.Title, ti)
		if ti == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return errors.Wrap(err, "renaming first sheet")
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return errors.Wrapf(err, "creating sheet %q", sheet)
			}
		}

		for i, h := range t.Columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return errors.Wrap(err, "writing header cell")
			}
		}
		for r, row := range t.Rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return errors.Wrap(err, "writing data cell")
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "saving workbook to %s", path)
	}
	return nil
}

// sheetName sanitises a title into a legal, unique sheet name.
func sheetName(title string, index int) string {
	if title == "" {
		return fmt.Sprintf("Sheet%d", index+1)
	}
	// Excel forbids these characters in sheet names.
	out := []rune(title)
	for i, r := range out {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			out[i] = '-'
		}
	}
	if len(out) > 31 {
		out = out[:31]
	}
	return string(out)
}
