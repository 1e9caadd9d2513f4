package cleaning

import (
	"log/slog"
	"strings"

	"github.com/spf13/cast"

	"powerbox/internal/dataset"
)

// checkConsistency removes exact full-row duplicates (keeping the first
// occurrence), then drops rows carrying a negative value in any of the
// configured non-negative columns. Configured columns not present in the
// dataset are skipped without error.
func (c *Cleaner) checkConsistency(ds *dataset.Dataset) error {
	before := ds.NumRows()
	seen := make(map[string]bool, ds.NumRows())
	ds.FilterRows(func(row []string) bool {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
	if dropped := before - ds.NumRows(); dropped > 0 {
		c.logger.Info("removed duplicate rows", slog.Int("dropped", dropped))
	}

	for _, name := range c.opts.NonNegativeColumns {
		idx, ok := ds.ColumnIndex(name)
		if !ok {
			continue
		}

		before = ds.NumRows()
		ds.FilterRows(func(row []string) bool {
			cell := row[idx]
			if dataset.IsMissing(cell) {
				return true
			}
			v, err := cast.ToFloat64E(strings.TrimSpace(cell))
			if err != nil {
				return true
			}
			return v >= 0
		})
		if dropped := before - ds.NumRows(); dropped > 0 {
			c.logger.Info("removed rows with negative values",
				slog.String("column", name),
				slog.Int("dropped", dropped))
		}
	}
	return nil
}
