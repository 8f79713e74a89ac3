package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const transcriptTimeLayout = "2006-01-02 15:04:05"

// Transcript is an append-only command log. Every entry is a single
// `[YYYY-MM-DD HH:MM:SS] message` line; command output is appended as a block
// of such lines. Writers are serialized with a mutex so concurrent operations
// cannot interleave partial lines.
//
// All text passed to a Transcript must already be redacted; the Transcript
// applies Redact once more as a safety net.
type Transcript struct {
	mu  sync.Mutex
	w   io.WriteCloser
	now func() time.Time
}

// NewTranscript creates the log directory if needed and opens an append-only
// log file named `<prefix>_<YYYY-MM-DD_HHMMSS>.log` inside it.
func NewTranscript(logDir, prefix string) (*Transcript, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create log directory %q: %w", logDir, err)
	}

	name := fmt.Sprintf("%s_%s.log", prefix, time.Now().Format("2006-01-02_150405"))
	f, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %q: %w", name, err)
	}

	return &Transcript{w: f, now: time.Now}, nil
}

// NewTranscriptWriter wraps an arbitrary writer, mainly for tests.
func NewTranscriptWriter(w io.WriteCloser) *Transcript {
	return &Transcript{w: w, now: time.Now}
}

// Printf writes one timestamped line.
func (t *Transcript) Printf(format string, args ...interface{}) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeLine(fmt.Sprintf(format, args...))
}

// Command records a redacted command line about to be executed.
func (t *Transcript) Command(args []string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeLine("exec: " + strings.Join(RedactAll(args), " "))
}

// Output appends a captured stdout/stderr block, one timestamped line per
// output line. Empty blocks are skipped.
func (t *Transcript) Output(stream, block string) {
	if t == nil {
		return
	}
	block = strings.TrimRight(block, "\n")
	if block == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, line := range strings.Split(block, "\n") {
		t.writeLine(stream + ": " + line)
	}
}

// Close closes the underlying file.
func (t *Transcript) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Close()
}

func (t *Transcript) writeLine(msg string) {
	fmt.Fprintf(t.w, "[%s] %s\n", t.now().Format(transcriptTimeLayout), Redact(msg))
}
