package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/statnotes/statnotes/pkg/errors"
)

// ParseCSV reads a headed CSV stream into a Table. A column becomes numeric
// when every non-empty cell parses as a float; otherwise it becomes
// categorical with levels in order of first appearance. Empty cells are
// missing in both cases.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "dataset.ParseCSV")
	}
	if len(records) < 2 {
		return nil, errors.NewModelError("dataset.ParseCSV", "need a header and at least one row", errors.ErrEmptyData)
	}

	header := records[0]
	rows := records[1:]
	cols := make([]Column, len(header))

	for j, name := range header {
		numeric := true
		for _, row := range rows {
			cell := row[j]
			if cell == "" {
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				numeric = false
				break
			}
		}

		values := make([]float64, len(rows))
		var levels []string
		if numeric {
			for i, row := range rows {
				if row[j] == "" {
					values[i] = math.NaN()
					continue
				}
				v, _ := strconv.ParseFloat(row[j], 64)
				values[i] = v
			}
		} else {
			levelIndex := map[string]int{}
			for i, row := range rows {
				cell := row[j]
				if cell == "" {
					values[i] = math.NaN()
					continue
				}
				idx, ok := levelIndex[cell]
				if !ok {
					idx = len(levels)
					levelIndex[cell] = idx
					levels = append(levels, cell)
				}
				values[i] = float64(idx)
			}
			if levels == nil {
				levels = []string{}
			}
		}
		cols[j] = Column{Name: name, Values: values, Levels: levels}
	}
	return NewTable(cols)
}
