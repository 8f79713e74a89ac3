package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closableBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closableBuffer) Close() error {
	b.closed = true
	return nil
}

func TestTranscript_Printf(t *testing.T) {
	buf := &closableBuffer{}
	transcript := NewTranscriptWriter(buf)

	transcript.Printf("snapshot %s saved for %s", "ab12cd34", "/data")

	line := buf.String()
	assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] snapshot ab12cd34 saved for /data\n$`, line)
}

func TestTranscript_CommandIsRedacted(t *testing.T) {
	buf := &closableBuffer{}
	transcript := NewTranscriptWriter(buf)

	transcript.Command([]string{"restic", "--password-file=/tmp/pw", "snapshots"})

	assert.Contains(t, buf.String(), "exec: restic --password-file=*** snapshots")
	assert.NotContains(t, buf.String(), "/tmp/pw")
}

func TestTranscript_OutputSplitsLines(t *testing.T) {
	buf := &closableBuffer{}
	transcript := NewTranscriptWriter(buf)

	transcript.Output("stdout", "first line\nsecond line\n")
	transcript.Output("stderr", "")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "stdout: first line")
	assert.Contains(t, lines[1], "stdout: second line")
}

func TestTranscript_NilReceiverIsSafe(t *testing.T) {
	var transcript *Transcript

	transcript.Printf("no panic")
	transcript.Command([]string{"restic"})
	transcript.Output("stdout", "text")
	assert.NoError(t, transcript.Close())
}

func TestNewTranscript_CreatesLogFile(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")

	transcript, err := NewTranscript(logDir, "backup")
	require.NoError(t, err)
	transcript.Printf("hello")
	require.NoError(t, transcript.Close())

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, `^backup_\d{4}-\d{2}-\d{2}_\d{6}\.log$`, entries[0].Name())

	content, err := os.ReadFile(filepath.Join(logDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello")
}
