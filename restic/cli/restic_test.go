package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRestic(t *testing.T, script string) *Restic {
	t.Helper()
	return New(logr.Discard(), Options{
		ResticBin:  fakeBinary(t, script),
		Repository: "s3:s3.amazonaws.com/test-bucket",
		Retry: RetryPolicy{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     5 * time.Millisecond,
			BackoffFactor:  2.0,
			Jitter:         0.1,
			RetryOn:        []ErrorKind{KindNetwork, KindRepository},
		},
	})
}

func TestRestic_Backup_ReturnsSnapshotID(t *testing.T) {
	r := testRestic(t, `echo "snapshot ab12cd34 saved"`)

	id, err := r.Backup(context.Background(), BackupOptions{Paths: []string{"/data"}})

	require.NoError(t, err)
	assert.Equal(t, "ab12cd34", id)
}

func TestRestic_Backup_RequiresPaths(t *testing.T) {
	r := testRestic(t, `echo "never invoked"`)

	_, err := r.Backup(context.Background(), BackupOptions{})

	var resticErr *Error
	require.True(t, errors.As(err, &resticErr))
	assert.Equal(t, KindValidation, resticErr.Kind)
}

func TestRestic_Backup_FailsWithoutSnapshotID(t *testing.T) {
	r := testRestic(t, `echo "processed 12 files"`)

	_, err := r.Backup(context.Background(), BackupOptions{Paths: []string{"/data"}})

	var resticErr *Error
	require.True(t, errors.As(err, &resticErr))
	assert.Equal(t, KindCommand, resticErr.Kind)
}

func TestRestic_Backup_RetriesNetworkFailures(t *testing.T) {
	counter := filepath.Join(t.TempDir(), "attempts")
	script := fmt.Sprintf(`
count=0
[ -f %[1]q ] && count=$(cat %[1]q)
count=$((count + 1))
echo "$count" > %[1]q
if [ "$count" -lt 3 ]; then
  echo "Fatal: dial tcp: connection refused" >&2
  exit 1
fi
echo "snapshot ab12cd34 saved"`, counter)

	r := testRestic(t, script)
	id, err := r.Backup(context.Background(), BackupOptions{Paths: []string{"/data"}})

	require.NoError(t, err)
	assert.Equal(t, "ab12cd34", id)
}

func TestRestic_Backup_DoesNotRetryAuthenticationFailures(t *testing.T) {
	counter := filepath.Join(t.TempDir(), "attempts")
	script := fmt.Sprintf(`
count=0
[ -f %[1]q ] && count=$(cat %[1]q)
echo "$((count + 1))" > %[1]q
echo "Fatal: wrong password or no key found" >&2
exit 1`, counter)

	r := testRestic(t, script)
	_, err := r.Backup(context.Background(), BackupOptions{Paths: []string{"/data"}})

	require.Error(t, err)
	attempts, readErr := readCounter(counter)
	require.NoError(t, readErr)
	assert.Equal(t, 1, attempts)
}

func readCounter(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(raw)))
}

func TestRestic_Snapshots_DecodesJSON(t *testing.T) {
	r := testRestic(t, `echo '[{"id":"ab12cd34ef","short_id":"ab12cd34","time":"2025-08-19T10:03:20Z","paths":["/data"],"hostname":"worker1","tags":["daily"]}]'`)

	snaps, err := r.Snapshots(context.Background(), nil)

	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "ab12cd34", snaps[0].ShortID)
	assert.Equal(t, "worker1", snaps[0].Hostname)
	assert.Equal(t, []string{"/data"}, snaps[0].Paths)
}

func TestRestic_SnapshotInfo_DefaultsToLatest(t *testing.T) {
	r := testRestic(t, `
for arg in "$@"; do
  if [ "$arg" = "latest" ]; then
    echo '[{"id":"ab12cd34ef","short_id":"ab12cd34","time":"2025-08-19T10:03:20Z"}]'
    exit 0
  fi
done
echo "[]"`)

	snap, err := r.SnapshotInfo(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, "ab12cd34", snap.ShortID)
}

func TestRestic_SnapshotInfo_ReportsDecodeFailure(t *testing.T) {
	r := testRestic(t, `echo "this is not json"`)

	_, err := r.SnapshotInfo(context.Background(), "ab12cd34")

	var resticErr *Error
	require.True(t, errors.As(err, &resticErr))
	assert.Contains(t, resticErr.Message, "cannot decode")
}

func TestRestic_SnapshotInfo_ReportsMissingSnapshot(t *testing.T) {
	r := testRestic(t, `echo "[]"`)

	_, err := r.SnapshotInfo(context.Background(), "ab12cd34")

	var resticErr *Error
	require.True(t, errors.As(err, &resticErr))
	assert.Contains(t, resticErr.Message, "not found")
	assert.Contains(t, resticErr.Message, "ab12cd34")
}

func TestRestic_Init_ToleratesExistingRepository(t *testing.T) {
	r := testRestic(t, `echo "Fatal: repository master key and config already initialized" >&2; exit 1`)

	err := r.Init(context.Background())

	assert.NoError(t, err)
}

func TestRestic_Repair_RejectsUnknownTarget(t *testing.T) {
	r := testRestic(t, `echo "never invoked"`)

	err := r.Repair(context.Background(), "everything")

	var resticErr *Error
	require.True(t, errors.As(err, &resticErr))
	assert.Equal(t, KindValidation, resticErr.Kind)
}

func TestRestic_ApplyRetention_RejectsNegativeKeeps(t *testing.T) {
	r := testRestic(t, `echo "never invoked"`)

	err := r.ApplyRetention(context.Background(), RetentionPolicy{KeepDaily: -1})

	var resticErr *Error
	require.True(t, errors.As(err, &resticErr))
	assert.Equal(t, KindValidation, resticErr.Kind)
}
