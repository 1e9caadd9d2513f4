package cleaning

import (
	"log/slog"

	"powerbox/internal/dataset"
)

// pruneMissingColumns drops every column whose absent-value fraction
// strictly exceeds the configured threshold. Columns are evaluated
// independently against the same row set, so evaluation order does not
// affect which columns survive.
func (c *Cleaner) pruneMissingColumns(ds *dataset.Dataset) error {
	var toDrop []string
	for idx, name := range ds.Columns {
		fraction := ds.MissingFraction(idx)
		if fraction > c.opts.MissingThreshold {
			toDrop = append(toDrop, name)
			c.logger.Info("dropping column with high missingness",
				slog.String("column", name),
				slog.Float64("missing_fraction", fraction),
				slog.Float64("threshold", c.opts.MissingThreshold))
		}
	}

	for _, name := range toDrop {
		ds.DropColumn(name)
	}
	return nil
}
