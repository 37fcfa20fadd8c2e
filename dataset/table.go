// Package dataset bundles the static datasets the posts analyse and loads
// them into a small in-memory tabular structure. Data lives for one program
// run: load, transform, fit, discard.
package dataset

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"github.com/statnotes/statnotes/pkg/errors"
)

// Column is one variable of a table. Numeric columns have Levels == nil.
// Categorical columns store level indices in Values, with names in Levels.
// Missing entries are NaN in either case.
type Column struct {
	Name   string
	Values []float64
	Levels []string
}

// IsCategorical reports whether the column stores level codes.
func (c *Column) IsCategorical() bool {
	return c.Levels != nil
}

// Table is an immutable-by-convention collection of equal-length columns.
type Table struct {
	cols  []Column
	index map[string]int
	nrows int
}

// NewTable builds a table from columns, which must share one length.
func NewTable(cols []Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, errors.NewValueError("dataset.NewTable", "no columns")
	}
	n := len(cols[0].Values)
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if len(c.Values) != n {
			return nil, errors.NewDimensionError("dataset.NewTable", n, len(c.Values), 0)
		}
		if _, dup := index[c.Name]; dup {
			return nil, errors.NewValueError("dataset.NewTable", "duplicate column "+c.Name)
		}
		index[c.Name] = i
	}
	return &Table{cols: cols, index: index, nrows: n}, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.nrows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Col returns the named column.
func (t *Table) Col(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.NewValueError("dataset.Col", "unknown column "+name)
	}
	return &t.cols[i], nil
}

// Floats returns a copy of the named column's values.
func (t *Table) Floats(name string) ([]float64, error) {
	c, err := t.Col(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(c.Values))
	copy(out, c.Values)
	return out, nil
}

// Strings decodes a categorical column to its level names. Missing entries
// decode to the empty string.
func (t *Table) Strings(name string) ([]string, error) {
	c, err := t.Col(name)
	if err != nil {
		return nil, err
	}
	if !c.IsCategorical() {
		return nil, errors.NewValueError("dataset.Strings", name+" is not categorical")
	}
	out := make([]string, len(c.Values))
	for i, v := range c.Values {
		if math.IsNaN(v) {
			continue
		}
		out[i] = c.Levels[int(v)]
	}
	return out, nil
}

// Matrix assembles the named columns into an n×k dense matrix, in the order
// given. Categorical columns contribute their level codes.
func (t *Table) Matrix(names ...string) (*mat.Dense, error) {
	if len(names) == 0 {
		return nil, errors.NewValueError("dataset.Matrix", "no columns requested")
	}
	out := mat.NewDense(t.nrows, len(names), nil)
	for j, name := range names {
		c, err := t.Col(name)
		if err != nil {
			return nil, err
		}
		for i, v := range c.Values {
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// DropMissing returns a table keeping only rows with no NaN in the named
// columns. With no names it considers every column.
func (t *Table) DropMissing(names ...string) (*Table, error) {
	if len(names) == 0 {
		names = t.Names()
	}
	checked := make([]*Column, 0, len(names))
	for _, name := range names {
		c, err := t.Col(name)
		if err != nil {
			return nil, err
		}
		checked = append(checked, c)
	}

	keep := make([]int, 0, t.nrows)
	for i := 0; i < t.nrows; i++ {
		ok := true
		for _, c := range checked {
			if math.IsNaN(c.Values[i]) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}

	cols := make([]Column, len(t.cols))
	for j, c := range t.cols {
		vals := make([]float64, len(keep))
		for k, i := range keep {
			vals[k] = c.Values[i]
		}
		cols[j] = Column{Name: c.Name, Values: vals, Levels: c.Levels}
	}
	return NewTable(cols)
}

// Filter returns a table keeping rows for which pred is true.
func (t *Table) Filter(pred func(row int) bool) (*Table, error) {
	keep := make([]int, 0, t.nrows)
	for i := 0; i < t.nrows; i++ {
		if pred(i) {
			keep = append(keep, i)
		}
	}
	cols := make([]Column, len(t.cols))
	for j, c := range t.cols {
		vals := make([]float64, len(keep))
		for k, i := range keep {
			vals[k] = c.Values[i]
		}
		cols[j] = Column{Name: c.Name, Values: vals, Levels: c.Levels}
	}
	return NewTable(cols)
}

// ColumnSummary holds descriptive statistics for one numeric column.
type ColumnSummary struct {
	Name    string
	N       int
	Missing int
	Mean    float64
	Std     float64
	Min     float64
	Q25     float64
	Median  float64
	Q75     float64
	Max     float64
}

// Summary computes descriptive statistics for a numeric column, skipping
// missing values.
func (t *Table) Summary(name string) (ColumnSummary, error) {
	c, err := t.Col(name)
	if err != nil {
		return ColumnSummary{}, err
	}
	if c.IsCategorical() {
		return ColumnSummary{}, errors.NewValueError("dataset.Summary", name+" is categorical")
	}

	observed := make([]float64, 0, len(c.Values))
	missing := 0
	for _, v := range c.Values {
		if math.IsNaN(v) {
			missing++
			continue
		}
		observed = append(observed, v)
	}
	if len(observed) == 0 {
		return ColumnSummary{}, errors.NewModelError("dataset.Summary", "no observed values in "+name, errors.ErrEmptyData)
	}

	s := ColumnSummary{Name: name, N: len(observed), Missing: missing}
	if s.Mean, err = stats.Mean(observed); err != nil {
		return ColumnSummary{}, errors.Wrap(err, "dataset.Summary")
	}
	if s.Std, err = stats.StandardDeviationSample(observed); err != nil {
		return ColumnSummary{}, errors.Wrap(err, "dataset.Summary")
	}
	if s.Min, err = stats.Min(observed); err != nil {
		return ColumnSummary{}, errors.Wrap(err, "dataset.Summary")
	}
	if s.Max, err = stats.Max(observed); err != nil {
		return ColumnSummary{}, errors.Wrap(err, "dataset.Summary")
	}
	if s.Median, err = stats.Median(observed); err != nil {
		return ColumnSummary{}, errors.Wrap(err, "dataset.Summary")
	}
	if s.Q25, err = stats.Percentile(observed, 25); err != nil {
		return ColumnSummary{}, errors.Wrap(err, "dataset.Summary")
	}
	if s.Q75, err = stats.Percentile(observed, 75); err != nil {
		return ColumnSummary{}, errors.Wrap(err, "dataset.Summary")
	}
	return s, nil
}
