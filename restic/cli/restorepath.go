package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const restoreTimestampLayout = "2006-01-02-150405"

// TimestampedDir joins a `YYYY-MM-DD-HHMMSS` subdirectory derived from the
// snapshot's creation time under baseDir and creates it. A pre-existing
// directory is not an error; identical inputs always yield the identical
// path.
func TimestampedDir(baseDir string, snapshotTime time.Time) (string, error) {
	dir := filepath.Join(baseDir, snapshotTime.Format(restoreTimestampLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// TimestampedDirForPath additionally recreates the snapshot's original
// directory structure under the timestamped base. The original path is
// normalized first: a Windows drive-letter colon is dropped, backslashes
// become the native separator and a single leading separator is stripped, so
// `C:\Users\Admin\Docs` restores into `<base>/<stamp>/C/Users/Admin/Docs`.
func TimestampedDirForPath(baseDir string, snapshotTime time.Time, originalPath string) (string, error) {
	base, err := TimestampedDir(baseDir, snapshotTime)
	if err != nil {
		return "", err
	}
	if originalPath == "" {
		return base, nil
	}

	dir := filepath.Join(base, normalizeOriginalPath(originalPath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func normalizeOriginalPath(original string) string {
	normalized := strings.ReplaceAll(original, ":", "")
	normalized = strings.ReplaceAll(normalized, "\\", "/")
	normalized = strings.TrimPrefix(normalized, "/")
	return filepath.FromSlash(normalized)
}
