package dataset

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// missingMarkers are cell contents treated as an absent value after trimming.
var missingMarkers = map[string]bool{
	"":     true,
	"NA":   true,
	"NaN":  true,
	"null": true,
}

// IsMissing reports whether a cell holds no usable value.
func IsMissing(cell string) bool {
	return missingMarkers[strings.TrimSpace(cell)]
}

// Dataset is an in-memory table with named columns and an ordered set of
// rows. Cells are stored as strings exactly as loaded; absence is any of
// the recognized missing markers. Column names are unique.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

// New creates a dataset, enforcing the unique-column-name invariant and
// padding short rows so every row has one cell per column.
func New(columns []string, rows [][]string) (*Dataset, error) {
	seen := make(map[string]bool, len(columns))
	for _, name := range columns {
		if seen[name] {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		seen[name] = true
	}

	for i, row := range rows {
		if len(row) < len(columns) {
			padded := make([]string, len(columns))
			copy(padded, row)
			rows[i] = padded
		} else if len(row) > len(columns) {
			rows[i] = row[:len(columns)]
		}
	}

	return &Dataset{Columns: columns, Rows: rows}, nil
}

// NumRows returns the number of rows.
func (d *Dataset) NumRows() int {
	return len(d.Rows)
}

// NumColumns returns the number of columns.
func (d *Dataset) NumColumns() int {
	return len(d.Columns)
}

// ColumnIndex returns the position of the named column.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	for i, col := range d.Columns {
		if col == name {
			return i, true
		}
	}
	return 0, false
}

// PresentValues returns the non-missing cells of the column at idx,
// trimmed, in row order.
func (d *Dataset) PresentValues(idx int) []string {
	var values []string
	for _, row := range d.Rows {
		if !IsMissing(row[idx]) {
			values = append(values, strings.TrimSpace(row[idx]))
		}
	}
	return values
}

// MissingFraction returns the fraction of rows whose cell in the column
// at idx is absent. An empty dataset has no missing values.
func (d *Dataset) MissingFraction(idx int) float64 {
	if len(d.Rows) == 0 {
		return 0
	}
	missing := 0
	for _, row := range d.Rows {
		if IsMissing(row[idx]) {
			missing++
		}
	}
	return float64(missing) / float64(len(d.Rows))
}

// IsNumeric reports whether every present cell of the column at idx
// parses as a float. A column with no present cells is not numeric.
func (d *Dataset) IsNumeric(idx int) bool {
	present := 0
	for _, row := range d.Rows {
		if IsMissing(row[idx]) {
			continue
		}
		present++
		if _, err := cast.ToFloat64E(strings.TrimSpace(row[idx])); err != nil {
			return false
		}
	}
	return present > 0
}

// NumericValues returns the present cells of the column at idx parsed as
// floats, in row order. Cells that do not parse are skipped.
func (d *Dataset) NumericValues(idx int) []float64 {
	var values []float64
	for _, row := range d.Rows {
		if IsMissing(row[idx]) {
			continue
		}
		if v, err := cast.ToFloat64E(strings.TrimSpace(row[idx])); err == nil {
			values = append(values, v)
		}
	}
	return values
}

// DropColumn removes the named column and its cells from every row.
func (d *Dataset) DropColumn(name string) {
	idx, ok := d.ColumnIndex(name)
	if !ok {
		return
	}
	d.Columns = append(d.Columns[:idx], d.Columns[idx+1:]...)
	for i, row := range d.Rows {
		d.Rows[i] = append(row[:idx], row[idx+1:]...)
	}
}

// FilterRows keeps only the rows for which keep returns true, preserving
// row order.
func (d *Dataset) FilterRows(keep func(row []string) bool) {
	filtered := d.Rows[:0]
	for _, row := range d.Rows {
		if keep(row) {
			filtered = append(filtered, row)
		}
	}
	d.Rows = filtered
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	columns := make([]string, len(d.Columns))
	copy(columns, d.Columns)
	rows := make([][]string, len(d.Rows))
	for i, row := range d.Rows {
		rows[i] = make([]string, len(row))
		copy(rows[i], row)
	}
	return &Dataset{Columns: columns, Rows: rows}
}
