package cleaning

import (
	"log/slog"
	"strconv"

	"powerbox/internal/dataset"
	pberrors "powerbox/internal/errors"
)

// imputeMissing replaces absent values in every remaining column: the
// column median for numeric columns, the most frequent value (mode) for
// categorical ones, each computed over currently-present values. A
// column with no values at all cannot yield either statistic and fails
// with ImputationImpossible naming the column rather than silently
// writing a placeholder.
func (c *Cleaner) imputeMissing(ds *dataset.Dataset) error {
	for idx, name := range ds.Columns {
		present := ds.PresentValues(idx)
		if len(present) == 0 {
			return pberrors.NewImputationImpossible(name)
		}

		var fill string
		if ds.IsNumeric(idx) {
			median := dataset.Median(ds.NumericValues(idx))
			fill = strconv.FormatFloat(median, 'f', -1, 64)
		} else {
			fill, _ = dataset.Mode(present)
		}

		filled := 0
		for _, row := range ds.Rows {
			if dataset.IsMissing(row[idx]) {
				row[idx] = fill
				filled++
			}
		}
		if filled > 0 {
			c.logger.Info("imputed missing values",
				slog.String("column", name),
				slog.Int("filled", filled),
				slog.String("fill_value", fill))
		}
	}
	return nil
}
