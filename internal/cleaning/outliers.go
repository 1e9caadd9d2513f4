package cleaning

import (
	"log/slog"
	"strings"

	"github.com/spf13/cast"

	"powerbox/internal/dataset"
)

// removeOutliers drops rows whose value in a numeric column lies outside
// [Q1 - k*IQR, Q3 + k*IQR] for that column.
//
// Each column's filter is applied to the dataset as already narrowed by
// the filters of the columns before it, not against the original rows.
// The retained set is therefore the intersection of per-column bounds
// recomputed sequentially, and the left-to-right column order is part of
// the contract: changing it changes the result. Non-numeric columns are
// untouched, and rows with an absent value in the column under
// evaluation are kept for the imputation stage to fill.
func (c *Cleaner) removeOutliers(ds *dataset.Dataset) error {
	columns := make([]string, len(ds.Columns))
	copy(columns, ds.Columns)

	for _, name := range columns {
		idx, ok := ds.ColumnIndex(name)
		if !ok {
			continue
		}
		if !ds.IsNumeric(idx) {
			continue
		}

		values := ds.NumericValues(idx)
		if len(values) == 0 {
			continue
		}

		stats := dataset.ComputeStatistics(values, c.opts.IQRMultiplier)
		before := ds.NumRows()

		ds.FilterRows(func(row []string) bool {
			cell := row[idx]
			if dataset.IsMissing(cell) {
				return true
			}
			v, err := cast.ToFloat64E(strings.TrimSpace(cell))
			if err != nil {
				return true
			}
			return v >= stats.LowerBound && v <= stats.UpperBound
		})

		if dropped := before - ds.NumRows(); dropped > 0 {
			c.logger.Info("removed outlier rows",
				slog.String("column", name),
				slog.Int("dropped", dropped),
				slog.Float64("q1", stats.Q1),
				slog.Float64("q3", stats.Q3),
				slog.Float64("lower_bound", stats.LowerBound),
				slog.Float64("upper_bound", stats.UpperBound))
		}
	}
	return nil
}
