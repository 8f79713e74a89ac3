package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampedDir(t *testing.T) {
	base := t.TempDir()
	snapshotTime := time.Date(2025, 8, 19, 10, 3, 20, 0, time.UTC)

	dir, err := TimestampedDir(base, snapshotTime)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "2025-08-19-100320"), dir)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestTimestampedDir_IsIdempotent(t *testing.T) {
	base := t.TempDir()
	snapshotTime := time.Date(2025, 8, 19, 10, 3, 20, 0, time.UTC)

	first, err := TimestampedDir(base, snapshotTime)
	require.NoError(t, err)
	second, err := TimestampedDir(base, snapshotTime)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTimestampedDirForPath(t *testing.T) {
	snapshotTime := time.Date(2025, 8, 19, 10, 3, 20, 0, time.UTC)

	tests := map[string]struct {
		givenOriginalPath string
		expectedSubdir    string
	}{
		"GivenWindowsDrivePath": {
			givenOriginalPath: `C:\Users\Administrator\Documents\Docker`,
			expectedSubdir:    filepath.Join("2025-08-19-100320", "C", "Users", "Administrator", "Documents", "Docker"),
		},
		"GivenUnixPath": {
			givenOriginalPath: "/var/lib/postgresql/data",
			expectedSubdir:    filepath.Join("2025-08-19-100320", "var", "lib", "postgresql", "data"),
		},
		"GivenRelativePath": {
			givenOriginalPath: "projects/safestic",
			expectedSubdir:    filepath.Join("2025-08-19-100320", "projects", "safestic"),
		},
		"GivenEmptyPath": {
			givenOriginalPath: "",
			expectedSubdir:    "2025-08-19-100320",
		},
	}

	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			base := t.TempDir()

			dir, err := TimestampedDirForPath(base, snapshotTime, params.givenOriginalPath)

			require.NoError(t, err)
			assert.Equal(t, filepath.Join(base, params.expectedSubdir), dir)
			info, err := os.Stat(dir)
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		})
	}
}
