package ingest

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"powerbox/internal/dataset"
	pberrors "powerbox/internal/errors"
)

// Load reads the tabular file at path into a dataset, dispatching on the
// extension. The first row is the header. Fails with UnsupportedFormat
// for any extension other than the two accepted tabular formats.
func Load(path string, logger *slog.Logger) (*dataset.Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		header []string
		rows   [][]string
		err    error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		header, rows, err = readCSV(path)
	case ".xlsx":
		header, rows, err = readExcel(path)
	default:
		return nil, pberrors.NewUnsupportedFormat(path, ext)
	}
	if err != nil {
		return nil, err
	}

	ds, err := dataset.New(header, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset from %s: %w", path, err)
	}

	logger.Info("loaded dataset",
		slog.String("path", path),
		slog.Int("columns", ds.NumColumns()),
		slog.Int("rows", ds.NumRows()))

	return ds, nil
}

// readCSV reads a delimited-text file, tolerating ragged rows.
func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("file %s has no header row", path)
	}

	return trimAll(records[0]), records[1:], nil
}

// readExcel reads the first sheet of a spreadsheet workbook.
func readExcel(path string) ([]string, [][]string, error) {
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return nil, nil, fmt.Errorf("refusing to read Excel lock file %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheets[0], path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("sheet %q of %s has no header row", sheets[0], path)
	}

	return trimAll(records[0]), records[1:], nil
}

func trimAll(cells []string) []string {
	trimmed := make([]string, len(cells))
	for i, c := range cells {
		trimmed[i] = strings.TrimSpace(c)
	}
	return trimmed
}
