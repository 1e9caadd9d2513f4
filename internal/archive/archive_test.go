package archive

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pberrors "powerbox/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestArchiveMove(t *testing.T) {
	a := NewArchiver(false, nil)
	dir := t.TempDir()
	archiveDir := filepath.Join(dir, "archive")

	src := writeFile(t, dir, "readings_20250615.csv", "a,b\n1,2\n")
	require.NoError(t, a.Archive(src, archiveDir))

	assert.NoFileExists(t, src)

	content, err := os.ReadFile(filepath.Join(archiveDir, "readings_20250615.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(content))
}

func TestArchiveCompress(t *testing.T) {
	a := NewArchiver(true, nil)
	dir := t.TempDir()
	archiveDir := filepath.Join(dir, "archive")

	original := "a,b\n1,2\n3,4\n"
	src := writeFile(t, dir, "readings_20250615.csv", original)
	require.NoError(t, a.Archive(src, archiveDir))

	assert.NoFileExists(t, src)

	entry := filepath.Join(archiveDir, "readings_20250615.csv"+CompressedSuffix)
	f, err := os.Open(entry)
	require.NoError(t, err)
	defer f.Close()

	decompressed, err := io.ReadAll(snappy.NewReader(f))
	require.NoError(t, err)
	assert.Equal(t, original, string(decompressed))
}

func TestArchiveCreatesDirectory(t *testing.T) {
	a := NewArchiver(false, nil)
	dir := t.TempDir()
	archiveDir := filepath.Join(dir, "nested", "deep", "archive")

	src := writeFile(t, dir, "input.csv", "a\n")
	require.NoError(t, a.Archive(src, archiveDir))
	assert.FileExists(t, filepath.Join(archiveDir, "input.csv"))
}

func TestArchiveMissingSource(t *testing.T) {
	a := NewArchiver(false, nil)
	dir := t.TempDir()

	err := a.Archive(filepath.Join(dir, "gone.csv"), filepath.Join(dir, "archive"))
	require.Error(t, err)
	assert.True(t, pberrors.IsKind(err, pberrors.KindArchivalAnomaly))
	assert.False(t, pberrors.IsFatal(err))
}
