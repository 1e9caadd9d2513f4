// Package pipeline orchestrates a single synchronous cleaning run:
// ingestion gate, schema validation, the four cleaning transforms,
// persistence, and archival. One run processes one input file; callers
// must serialize concurrent runs against the same archive or store.
package pipeline

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"powerbox/internal/archive"
	"powerbox/internal/cleaning"
	"powerbox/internal/config"
	pberrors "powerbox/internal/errors"
	"powerbox/internal/ingest"
	"powerbox/internal/schema"
	"powerbox/internal/store"
)

// Run is the transient context threading a dataset and its provenance
// through the pipeline stages. It is owned by the runner and discarded
// when the run ends.
type Run struct {
	ID           string
	OriginalPath string
	TaggedPath   string
	IngestedAt   time.Time
	RowsLoaded   int
	RowsCleaned  int
	Started      time.Time
	Finished     time.Time
}

// Runner executes cleaning runs against a fixed configuration.
type Runner struct {
	cfg      config.PipelineConfig
	logger   *slog.Logger
	gate     *ingest.Gate
	cleaner  *cleaning.Cleaner
	sink     *store.Sink
	archiver *archive.Archiver
}

// NewRunner wires the pipeline components from configuration.
func NewRunner(cfg config.PipelineConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:    cfg,
		logger: logger,
		gate:   ingest.NewGate(logger),
		cleaner: cleaning.New(cleaning.Options{
			MissingThreshold:   cfg.MissingThreshold,
			IQRMultiplier:      cfg.IQRMultiplier,
			NonNegativeColumns: cfg.NonNegativeColumns,
		}, logger),
		sink:     store.NewSink(logger),
		archiver: archive.NewArchiver(cfg.CompressArchive, logger),
	}
}

// Execute runs the pipeline once over the configured input file. Every
// fatal error aborts immediately; there is no partial-success
// continuation and no retry. The duplicate check runs before the
// timestamp rename so a DuplicateInput abort leaves the input untouched.
func (r *Runner) Execute() (*Run, error) {
	run := &Run{
		ID:           uuid.NewString(),
		OriginalPath: r.cfg.InputFile,
		Started:      time.Now(),
	}
	logger := r.logger.With(slog.String("run_id", run.ID))

	logger.Info("starting pipeline run",
		slog.String("input", r.cfg.InputFile),
		slog.String("archive_dir", r.cfg.ArchiveDir))

	// Gate: format check and duplicate detection happen before any
	// mutation of the input file.
	if !ingest.IsSupportedFormat(r.cfg.InputFile) {
		ext := strings.ToLower(filepath.Ext(r.cfg.InputFile))
		return run, pberrors.NewUnsupportedFormat(r.cfg.InputFile, ext)
	}
	processed, entry, err := r.gate.IsAlreadyProcessed(r.cfg.InputFile, r.cfg.ArchiveDir)
	if err != nil {
		return run, err
	}
	if processed {
		return run, pberrors.NewDuplicateInput(r.cfg.InputFile, entry)
	}

	run.IngestedAt = time.Now()
	tagged, err := r.gate.TagWithIngestionDate(r.cfg.InputFile, run.IngestedAt)
	if err != nil {
		return run, err
	}
	run.TaggedPath = tagged

	ds, err := ingest.Load(tagged, logger)
	if err != nil {
		return run, err
	}
	run.RowsLoaded = ds.NumRows()

	expected, err := schema.Load(r.cfg.SchemaFile)
	if err != nil {
		return run, err
	}
	if err := expected.Validate(ds, logger); err != nil {
		return run, err
	}

	if err := r.cleaner.Clean(ds); err != nil {
		return run, err
	}
	run.RowsCleaned = ds.NumRows()

	if err := r.sink.Save(ds, r.cfg.StoreFile, r.cfg.TableName, r.cfg.SnapshotFile, r.cfg.OutputDir); err != nil {
		return run, err
	}

	// Archival is last so a file is never marked processed when cleaning
	// or persistence failed. A missing source here is an anomaly, not a
	// failure: the run's side effects have already committed.
	if err := r.archiver.Archive(tagged, r.cfg.ArchiveDir); err != nil {
		if pberrors.IsKind(err, pberrors.KindArchivalAnomaly) {
			logger.Warn("archival anomaly", slog.String("error", err.Error()))
		} else {
			return run, err
		}
	}

	run.Finished = time.Now()
	logger.Info("pipeline run complete",
		slog.Int("rows_loaded", run.RowsLoaded),
		slog.Int("rows_cleaned", run.RowsCleaned),
		slog.Duration("duration", run.Finished.Sub(run.Started)))

	return run, nil
}
