package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"powerbox/internal/dataset"
)

// SnapshotOptions configures flat-file snapshot writing.
type SnapshotOptions struct {
	// BOMPrefix adds a UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
}

// WriteSnapshot writes the full dataset as a delimited-text file at
// path, overwriting any prior snapshot.
func WriteSnapshot(path string, ds *dataset.Dataset) error {
	return WriteSnapshotWithOptions(path, ds, SnapshotOptions{})
}

// WriteSnapshotWithOptions writes the dataset with explicit options.
func WriteSnapshotWithOptions(path string, ds *dataset.Dataset, opts SnapshotOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer file.Close()

	if opts.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(ds.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range ds.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
