package ingest

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/snappy"

	pberrors "powerbox/internal/errors"
)

// CompressedSuffix marks snappy-compressed archive entries.
const CompressedSuffix = ".sz"

// supportedExtensions are the two accepted tabular formats.
var supportedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// IsSupportedFormat reports whether the file at path has an accepted
// tabular extension.
func IsSupportedFormat(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Gate decides whether an incoming file has already been processed and
// tags accepted files with their ingestion date. Duplicate detection is
// content-hash based: the candidate's fingerprint is compared against
// every entry under the archive directory, so renames cannot defeat it.
type Gate struct {
	logger *slog.Logger
}

// NewGate creates an ingestion gate.
func NewGate(logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{logger: logger}
}

// IsAlreadyProcessed walks every file under archiveDir computing each
// one's fingerprint and comparing it against the candidate's. It returns
// the matching archive entry on the first hit. Cost is linear in the
// archive size, acceptable for a rare human-triggered batch operation.
func (g *Gate) IsAlreadyProcessed(candidatePath, archiveDir string) (bool, string, error) {
	target, ok, err := Fingerprint(candidatePath)
	if err != nil {
		return false, "", err
	}
	if !ok {
		g.logger.Warn("candidate file missing, assuming not previously processed",
			slog.String("path", candidatePath))
		return false, "", nil
	}

	var matched string
	walkErr := filepath.WalkDir(archiveDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A missing archive directory means nothing was processed yet.
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		digest, err := g.archiveEntryFingerprint(path)
		if err != nil {
			g.logger.Warn("skipping unreadable archive entry",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return nil
		}
		if digest == target {
			matched = path
			return filepath.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		return false, "", fmt.Errorf("failed to walk archive %s: %w", archiveDir, walkErr)
	}

	if matched != "" {
		g.logger.Info("duplicate input detected",
			slog.String("candidate", candidatePath),
			slog.String("archive_entry", matched),
			slog.String("fingerprint", target))
		return true, matched, nil
	}
	return false, "", nil
}

// archiveEntryFingerprint hashes an archive entry, transparently
// decompressing snappy-compressed entries so the digest always covers
// the original file bytes.
func (g *Gate) archiveEntryFingerprint(path string) (string, error) {
	if !strings.HasSuffix(path, CompressedSuffix) {
		digest, ok, err := Fingerprint(path)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("archive entry vanished: %s", path)
		}
		return digest, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return FingerprintReader(snappy.NewReader(f))
}

// TagWithIngestionDate renames the file by inserting the given date
// (YYYYMMDD) between the base name and the extension, returning the new
// path. The rename is path-qualified and takes no dependency on the
// process working directory. Fails with UnsupportedFormat before
// touching the file when the extension is not an accepted format.
func (g *Gate) TagWithIngestionDate(originalPath string, now time.Time) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalPath))
	if !supportedExtensions[ext] {
		return "", pberrors.NewUnsupportedFormat(originalPath, ext)
	}

	dir := filepath.Dir(originalPath)
	base := strings.TrimSuffix(filepath.Base(originalPath), filepath.Ext(originalPath))
	tagged := filepath.Join(dir, fmt.Sprintf("%s_%s%s", base, now.Format("20060102"), ext))

	if err := os.Rename(originalPath, tagged); err != nil {
		return "", fmt.Errorf("failed to tag %s with ingestion date: %w", originalPath, err)
	}

	g.logger.Info("tagged input with ingestion date",
		slog.String("original", originalPath),
		slog.String("tagged", tagged))

	return tagged, nil
}
