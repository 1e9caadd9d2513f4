// Package cleaning implements the fixed four-stage transform sequence
// applied to every ingested dataset: missingness pruning, IQR outlier
// removal, consistency checks, and imputation. Stage order matters:
// imputing before outlier removal would let extreme values bias the
// median, so later stages assume earlier ones already reduced noise.
package cleaning

import (
	"log/slog"

	"powerbox/internal/dataset"
)

// Options configures the cleaning transforms.
type Options struct {
	// MissingThreshold is the absent-value fraction above which a column
	// is dropped (strictly greater than).
	MissingThreshold float64
	// IQRMultiplier widens the quartile bounds used for outlier removal.
	IQRMultiplier float64
	// NonNegativeColumns are checked for negative values during the
	// consistency stage; columns not present are skipped.
	NonNegativeColumns []string
}

// stage is one named transform over a dataset.
type stage struct {
	name  string
	apply func(*dataset.Dataset) error
}

// Cleaner runs the transform sequence.
type Cleaner struct {
	opts   Options
	logger *slog.Logger
}

// New creates a cleaner with the given options.
func New(opts Options, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{opts: opts, logger: logger}
}

// Clean mutates ds through the four stages in their fixed order. The
// row count may shrink at every stage; the column count shrinks only
// during missingness pruning.
func (c *Cleaner) Clean(ds *dataset.Dataset) error {
	stages := []stage{
		{"prune_missing", func(d *dataset.Dataset) error {
			return c.pruneMissingColumns(d)
		}},
		{"remove_outliers", func(d *dataset.Dataset) error {
			return c.removeOutliers(d)
		}},
		{"consistency_checks", func(d *dataset.Dataset) error {
			return c.checkConsistency(d)
		}},
		{"impute_missing", func(d *dataset.Dataset) error {
			return c.imputeMissing(d)
		}},
	}

	for _, s := range stages {
		rowsBefore, colsBefore := ds.NumRows(), ds.NumColumns()
		if err := s.apply(ds); err != nil {
			return err
		}
		c.logger.Info("cleaning stage complete",
			slog.String("stage", s.name),
			slog.Int("rows_before", rowsBefore),
			slog.Int("rows_after", ds.NumRows()),
			slog.Int("columns_before", colsBefore),
			slog.Int("columns_after", ds.NumColumns()))
	}

	return nil
}
