package schema

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"powerbox/internal/dataset"
	pberrors "powerbox/internal/errors"
)

// Schema is the ordered set of column names a dataset is expected to
// carry. Immutable once loaded for a run.
type Schema struct {
	Columns []string
}

// Load reads the expected column set from the header row of a
// delimited-text reference file. Values beyond the header are ignored.
func Load(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read schema header from %s: %w", path, err)
	}

	columns := make([]string, len(header))
	for i, c := range header {
		columns[i] = strings.TrimSpace(c)
	}

	return &Schema{Columns: columns}, nil
}

// Validate compares the dataset's column set against the expected one.
// This is a presence-only structural check: no fuzzy matching, no type
// checking of column contents. Any mismatch fails with SchemaMismatch
// carrying the missing and extra column sets. Success is silent beyond
// an informational log line.
func (s *Schema) Validate(ds *dataset.Dataset, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	expected := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		expected[c] = true
	}
	actual := make(map[string]bool, len(ds.Columns))
	for _, c := range ds.Columns {
		actual[c] = true
	}

	var missing, extra []string
	for _, c := range s.Columns {
		if !actual[c] {
			missing = append(missing, c)
		}
	}
	for _, c := range ds.Columns {
		if !expected[c] {
			extra = append(extra, c)
		}
	}

	if len(missing) > 0 || len(extra) > 0 {
		sort.Strings(missing)
		sort.Strings(extra)
		return pberrors.NewSchemaMismatch(missing, extra)
	}

	logger.Info("columns match the expected schema",
		slog.Int("column_count", len(ds.Columns)))
	return nil
}
