package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"powerbox/internal/dataset"
	pberrors "powerbox/internal/errors"
)

// Sink persists a cleaned dataset to a structured store and a flat
// snapshot file. The store append accumulates rows across runs with no
// deduplication: the ingestion gate already guarantees the same input is
// never ingested twice. The snapshot is fully overwritten each run.
// There is no two-phase commit across the two writes; a partial failure
// is surfaced distinctly so the operator knows the store and snapshot
// may disagree.
type Sink struct {
	logger *slog.Logger
}

// NewSink creates a persistence sink.
func NewSink(logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{logger: logger}
}

// Save appends ds into tableName within the SQLite store at
// outputDir/storeFile and writes a full snapshot to
// outputDir/snapshotFile, creating outputDir if absent.
func (s *Sink) Save(ds *dataset.Dataset, storeFile, tableName, snapshotFile, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return pberrors.NewPersistenceFailure("store", fmt.Errorf("failed to create output folder %s: %w", outputDir, err), false, false)
	}

	storePath := filepath.Join(outputDir, storeFile)
	if err := s.appendToStore(ds, storePath, tableName); err != nil {
		return pberrors.NewPersistenceFailure("store", err, false, false)
	}
	s.logger.Info("dataset appended to store",
		slog.String("store", storePath),
		slog.String("table", tableName),
		slog.Int("rows", ds.NumRows()))

	snapshotPath := filepath.Join(outputDir, snapshotFile)
	if err := WriteSnapshot(snapshotPath, ds); err != nil {
		// The store write has already committed at this point.
		return pberrors.NewPersistenceFailure("snapshot", err, true, false)
	}
	s.logger.Info("snapshot written",
		slog.String("snapshot", snapshotPath),
		slog.Int("rows", ds.NumRows()))

	return nil
}

// appendToStore creates the table when absent (its schema is implicitly
// the cleaned dataset's columns) and inserts every row.
func (s *Sink) appendToStore(ds *dataset.Dataset, storePath, tableName string) error {
	db, err := gorm.Open(sqlite.Open(storePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open store %s: %w", storePath, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access store connection: %w", err)
	}
	defer sqlDB.Close()

	numeric := make([]bool, ds.NumColumns())
	columnDefs := make([]string, ds.NumColumns())
	for i, name := range ds.Columns {
		numeric[i] = ds.IsNumeric(i)
		colType := "TEXT"
		if numeric[i] {
			colType = "REAL"
		}
		columnDefs[i] = fmt.Sprintf("%s %s", quoteIdent(name), colType)
	}

	createStmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdent(tableName), strings.Join(columnDefs, ", "))
	if err := db.Exec(createStmt).Error; err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	if ds.NumRows() == 0 {
		return nil
	}

	records := make([]map[string]interface{}, 0, ds.NumRows())
	for _, row := range ds.Rows {
		record := make(map[string]interface{}, ds.NumColumns())
		for i, name := range ds.Columns {
			if numeric[i] {
				record[name] = cast.ToFloat64(strings.TrimSpace(row[i]))
			} else {
				record[name] = row[i]
			}
		}
		records = append(records, record)
	}

	if err := db.Table(tableName).Create(records).Error; err != nil {
		return fmt.Errorf("failed to append rows to %s: %w", tableName, err)
	}
	return nil
}

// quoteIdent quotes an SQL identifier; column names carry spaces and
// parentheses (e.g. "Power Consumption (kW)").
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
