package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// PipelineConfig contains the data-cleaning pipeline configuration
type PipelineConfig struct {
	InputFile        string  `yaml:"input_file" envconfig:"INPUT_FILE" validate:"required"`
	SchemaFile       string  `yaml:"schema_file" envconfig:"SCHEMA_FILE" validate:"required"`
	StoreFile        string  `yaml:"store_file" envconfig:"STORE_FILE" validate:"required"`
	TableName        string  `yaml:"table_name" envconfig:"TABLE_NAME" validate:"required"`
	SnapshotFile     string  `yaml:"snapshot_file" envconfig:"SNAPSHOT_FILE" validate:"required"`
	OutputDir        string  `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	ArchiveDir       string  `yaml:"archive_dir" envconfig:"ARCHIVE_DIR" validate:"required"`
	MissingThreshold float64 `yaml:"missing_threshold" envconfig:"MISSING_THRESHOLD" validate:"gte=0,lte=1"`
	IQRMultiplier    float64 `yaml:"iqr_multiplier" envconfig:"IQR_MULTIPLIER" validate:"gt=0"`
	// Columns that are domain-semantically non-negative; rows with negative
	// values in any of these are dropped during consistency checks.
	NonNegativeColumns []string `yaml:"non_negative_columns" envconfig:"NON_NEGATIVE_COLUMNS"`
	// CompressArchive stores archived inputs snappy-compressed (.sz)
	// instead of moving them verbatim.
	CompressArchive bool `yaml:"compress_archive" envconfig:"COMPRESS_ARCHIVE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// DefaultNonNegativeColumns are the energy measures that can never be
// negative in a powerbox dataset.
var DefaultNonNegativeColumns = []string{
	"Solar Panels Energy Output (W)",
	"Power Consumption (kW)",
	"Energy Stored in Batteries (kWh)",
	"System Load (kW)",
	"Battery Capacity (Wh)",
	"Inverter Capacity (kW)",
}

// Load loads configuration from environment variables and an optional
// YAML config file. Environment variables take precedence.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = *fileCfg
	}

	if err := envconfig.Process("POWERBOX", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.applyDefaults()

	// The populated config is returned even on validation failure so
	// callers layering flags on top can fill the missing fields and
	// re-validate.
	if err := cfg.Validate(); err != nil {
		return &cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills zero-valued fields after the file and environment
// layers have been applied, so neither layer is clobbered by defaults.
func (c *Config) applyDefaults() {
	p := &c.Pipeline
	if p.StoreFile == "" {
		p.StoreFile = "solar_system.db"
	}
	if p.TableName == "" {
		p.TableName = "cleaned_solar_data"
	}
	if p.SnapshotFile == "" {
		p.SnapshotFile = "cleaned_solar_data.csv"
	}
	if p.OutputDir == "" {
		p.OutputDir = "clean_data"
	}
	if p.ArchiveDir == "" {
		p.ArchiveDir = "archive"
	}
	if p.MissingThreshold == 0 {
		p.MissingThreshold = 0.5
	}
	if p.IQRMultiplier == 0 {
		p.IQRMultiplier = 1.5
	}
	if len(p.NonNegativeColumns) == 0 {
		p.NonNegativeColumns = DefaultNonNegativeColumns
	}

	l := &c.Logging
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "json"
	}
	if l.Output == "" {
		l.Output = "console"
	}
	if l.FilePath == "" {
		l.FilePath = "logs/pipeline.log"
	}
}

// Validate checks the configuration against its struct constraints
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid configuration: field %s failed %q", first.Namespace(), first.Tag())
		}
		return err
	}
	return nil
}

// Default returns default configuration for tests and tooling
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			StoreFile:          "solar_system.db",
			TableName:          "cleaned_solar_data",
			SnapshotFile:       "cleaned_solar_data.csv",
			OutputDir:          "clean_data",
			ArchiveDir:         "archive",
			MissingThreshold:   0.5,
			IQRMultiplier:      1.5,
			NonNegativeColumns: DefaultNonNegativeColumns,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/pipeline.log",
		},
	}
}
