package main

import (
	"flag"
	"log/slog"
	"os"

	"powerbox/internal/config"
	pberrors "powerbox/internal/errors"
	"powerbox/internal/infrastructure"
	"powerbox/internal/pipeline"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file (optional)")
	inputFile := flag.String("input", "", "input file to ingest (.csv or .xlsx)")
	schemaFile := flag.String("schema", "", "delimited-text file whose header defines the expected columns")
	outputDir := flag.String("out", "", "output folder for the store and snapshot")
	archiveDir := flag.String("archive", "", "archive directory for processed inputs")
	flag.Parse()

	// A validation error here may just mean the input and schema paths
	// arrive via flags; the config is re-validated after they are applied.
	cfg, err := config.Load(*configFile)
	if cfg == nil {
		if err != nil {
			slog.Warn("failed to load configuration, using defaults", "error", err)
		}
		cfg = config.Default()
	}

	// Flags override config file and environment.
	if *inputFile != "" {
		cfg.Pipeline.InputFile = *inputFile
	}
	if *schemaFile != "" {
		cfg.Pipeline.SchemaFile = *schemaFile
	}
	if *outputDir != "" {
		cfg.Pipeline.OutputDir = *outputDir
	}
	if *archiveDir != "" {
		cfg.Pipeline.ArchiveDir = *archiveDir
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		flag.Usage()
		os.Exit(2)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	runner := pipeline.NewRunner(cfg.Pipeline, logger)
	run, err := runner.Execute()
	if err != nil {
		logger.Error("pipeline run failed",
			slog.String("input", cfg.Pipeline.InputFile),
			slog.String("kind", string(pberrors.GetKind(err))),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("data pipeline completed successfully",
		slog.String("run_id", run.ID),
		slog.String("tagged_input", run.TaggedPath),
		slog.Int("rows_cleaned", run.RowsCleaned))
}
