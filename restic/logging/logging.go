package logging

import (
	"bufio"
	"bytes"
	"io"

	"github.com/go-logr/logr"
)

type outFunc func(string)

// New creates a writer which forwards every complete line to the given
// function. Handling lines separately avoids mangled output when restic
// interleaves JSON and progress messages.
func New(out outFunc) io.Writer {
	return &writer{out}
}

// NewInfoWriter returns a writer that logs each line, redacted, with the
// name "stdout" at info level.
func NewInfoWriter(l logr.Logger) io.Writer {
	return New((&logInfoPrinter{l.WithName("stdout")}).out)
}

// NewErrorWriter returns a writer that logs each line, redacted, with the
// name "stderr" at info level.
func NewErrorWriter(l logr.Logger) io.Writer {
	return New((&logErrPrinter{l.WithName("stderr")}).out)
}

type writer struct {
	out outFunc
}

func (w writer) Write(p []byte) (int, error) {
	scanner := bufio.NewScanner(bytes.NewReader(p))
	for scanner.Scan() {
		w.out(scanner.Text())
	}
	return len(p), nil
}

type logInfoPrinter struct {
	log logr.Logger
}

func (l *logInfoPrinter) out(s string) {
	l.log.Info(Redact(s))
}

type logErrPrinter struct {
	log logr.Logger
}

func (l *logErrPrinter) out(s string) {
	l.log.Info(Redact(s))
}
