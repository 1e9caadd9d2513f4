package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POWERBOX_PIPELINE_INPUT_FILE", "readings.csv")
	t.Setenv("POWERBOX_PIPELINE_SCHEMA_FILE", "schema.csv")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "readings.csv", cfg.Pipeline.InputFile)
	assert.Equal(t, "solar_system.db", cfg.Pipeline.StoreFile)
	assert.Equal(t, "cleaned_solar_data", cfg.Pipeline.TableName)
	assert.Equal(t, "cleaned_solar_data.csv", cfg.Pipeline.SnapshotFile)
	assert.Equal(t, "clean_data", cfg.Pipeline.OutputDir)
	assert.Equal(t, "archive", cfg.Pipeline.ArchiveDir)
	assert.Equal(t, 0.5, cfg.Pipeline.MissingThreshold)
	assert.Equal(t, 1.5, cfg.Pipeline.IQRMultiplier)
	assert.Equal(t, DefaultNonNegativeColumns, cfg.Pipeline.NonNegativeColumns)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	content := `pipeline:
  input_file: readings.xlsx
  schema_file: schema.csv
  table_name: custom_table
  missing_threshold: 0.25
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "readings.xlsx", cfg.Pipeline.InputFile)
	assert.Equal(t, "custom_table", cfg.Pipeline.TableName)
	assert.Equal(t, 0.25, cfg.Pipeline.MissingThreshold)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset fields still pick up defaults.
	assert.Equal(t, "solar_system.db", cfg.Pipeline.StoreFile)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	content := `pipeline:
  input_file: from_file.csv
  schema_file: schema.csv
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("POWERBOX_PIPELINE_INPUT_FILE", "from_env.csv")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from_env.csv", cfg.Pipeline.InputFile)
	assert.Equal(t, "schema.csv", cfg.Pipeline.SchemaFile)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadValidationFailureStillReturnsConfig(t *testing.T) {
	content := `pipeline:
  archive_dir: custom_archive
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.Error(t, err) // input_file and schema_file are required
	require.NotNil(t, cfg)
	assert.Equal(t, "custom_archive", cfg.Pipeline.ArchiveDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing input file",
			mutate:  func(c *Config) { c.Pipeline.InputFile = "" },
			wantErr: true,
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Pipeline.MissingThreshold = 1.2 },
			wantErr: true,
		},
		{
			name:    "negative multiplier",
			mutate:  func(c *Config) { c.Pipeline.IQRMultiplier = -1 },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Pipeline.InputFile = "readings.csv"
			cfg.Pipeline.SchemaFile = "schema.csv"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
