// Package archive moves processed input files into the archive
// directory, whose contents are the ground truth for duplicate-ingestion
// detection on later runs.
package archive

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/golang/snappy"

	pberrors "powerbox/internal/errors"
)

// CompressedSuffix marks snappy-compressed archive entries.
const CompressedSuffix = ".sz"

// Archiver stores processed inputs. Archival must run last, after
// persistence succeeds, so a file is never marked processed when the run
// failed partway.
type Archiver struct {
	// Compress stores entries snappy-compressed instead of moving the
	// file verbatim.
	Compress bool
	logger   *slog.Logger
}

// NewArchiver creates an archiver.
func NewArchiver(compress bool, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{Compress: compress, logger: logger}
}

// Archive moves (or compresses and removes) the tagged input file into
// archiveDir, creating the directory if absent. A missing source file is
// reported as ArchivalAnomaly; persistence has already committed by this
// point, so callers log it rather than failing the run.
func (a *Archiver) Archive(taggedPath, archiveDir string) error {
	if _, err := os.Stat(taggedPath); err != nil {
		if os.IsNotExist(err) {
			return pberrors.NewArchivalAnomaly(taggedPath, err)
		}
		return fmt.Errorf("failed to stat %s: %w", taggedPath, err)
	}

	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory %s: %w", archiveDir, err)
	}

	if a.Compress {
		return a.compressInto(taggedPath, archiveDir)
	}
	return a.moveInto(taggedPath, archiveDir)
}

// moveInto renames the file into the archive, falling back to
// copy-and-delete across filesystems.
func (a *Archiver) moveInto(src, archiveDir string) error {
	dst := filepath.Join(archiveDir, filepath.Base(src))

	if err := os.Rename(src, dst); err == nil {
		a.logger.Info("archived input file",
			slog.String("src", src),
			slog.String("dst", dst))
		return nil
	}

	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("failed to copy %s into archive: %w", src, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove %s after archiving: %w", src, err)
	}

	a.logger.Info("archived input file",
		slog.String("src", src),
		slog.String("dst", dst))
	return nil
}

// compressInto writes a snappy-framed copy of the file into the archive
// and removes the original. The ingestion gate decompresses these
// entries before fingerprinting, so detection still compares original
// bytes.
func (a *Archiver) compressInto(src, archiveDir string) error {
	dst := filepath.Join(archiveDir, filepath.Base(src)+CompressedSuffix)

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", dst, err)
	}

	writer := snappy.NewBufferedWriter(out)
	if _, err := io.Copy(writer, in); err != nil {
		writer.Close()
		out.Close()
		return fmt.Errorf("failed to compress %s: %w", src, err)
	}
	if err := writer.Close(); err != nil {
		out.Close()
		return fmt.Errorf("failed to flush archive entry %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close archive entry %s: %w", dst, err)
	}

	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove %s after archiving: %w", src, err)
	}

	a.logger.Info("archived input file compressed",
		slog.String("src", src),
		slog.String("dst", dst))
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
