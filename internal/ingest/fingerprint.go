package ingest

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spaolacci/murmur3"
)

// fingerprintChunkSize is the read size used when folding a file into the
// hash accumulator. Files are streamed, never loaded whole.
const fingerprintChunkSize = 4096

// Fingerprint computes a stable content digest of the file at path.
// The second return is false when the file does not exist; callers must
// treat that as "cannot determine, assume not previously processed".
// Collision resistance is not a security requirement here, only
// high-probability uniqueness, so a fast non-cryptographic hash is used.
func Fingerprint(path string) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	digest, err := FingerprintReader(f)
	if err != nil {
		return "", false, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return digest, true, nil
}

// FingerprintReader folds the contents of r chunk by chunk into a
// 128-bit murmur3 accumulator and returns the hex digest.
func FingerprintReader(r io.Reader) (string, error) {
	hasher := murmur3.New128()
	buf := make([]byte, fingerprintChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			// hash.Hash.Write never returns an error
			hasher.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
