package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/go-logr/logr"

	"github.com/safestic/safestic/restic/logging"
)

// CommandOptions configures one restic invocation.
type CommandOptions struct {
	// Path is the restic executable.
	Path string
	Args []string
	// Env is the full process environment; nil inherits the parent's.
	Env   []string
	StdIn io.Reader
	// StdOut and StdErr receive the output as it is produced, in addition to
	// the capture buffers. Useful for progress parsing.
	StdOut io.Writer
	StdErr io.Writer
	// Timeout is an optional wall-clock limit. On expiry the process is
	// killed and the invocation fails with KindTimeout.
	Timeout time.Duration
}

// Result is the outcome of one completed invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Command executes a single restic subprocess and captures its output.
type Command struct {
	options    CommandOptions
	cmdLogger  logr.Logger
	transcript *logging.Transcript
	ctx        context.Context

	cmd    *exec.Cmd
	runCtx context.Context
	cancel context.CancelFunc
	stdout bytes.Buffer
	stderr bytes.Buffer
}

// NewCommand returns a new command. The transcript may be nil.
func NewCommand(ctx context.Context, log logr.Logger, transcript *logging.Transcript, options CommandOptions) *Command {
	return &Command{
		options:    options,
		cmdLogger:  log.WithName("command"),
		transcript: transcript,
		ctx:        ctx,
	}
}

// Run executes the configured command and waits for completion. A non-zero
// exit status is returned as a classified *Error carrying the captured
// output; the Result is valid in that case too.
func (c *Command) Run() (Result, error) {
	c.configure()

	argv := append([]string{c.options.Path}, c.options.Args...)
	c.cmdLogger.Info("restic command", "args", logging.RedactAll(c.options.Args))
	c.transcript.Command(argv)

	start := time.Now()
	err := c.cmd.Run()
	if c.cancel != nil {
		c.cancel()
	}

	result := Result{
		ExitCode: -1,
		Stdout:   c.stdout.String(),
		Stderr:   c.stderr.String(),
	}
	if c.cmd.ProcessState != nil {
		result.ExitCode = c.cmd.ProcessState.ExitCode()
	}

	c.transcript.Output("stdout", logging.Redact(result.Stdout))
	c.transcript.Output("stderr", logging.Redact(result.Stderr))
	c.transcript.Printf("exit code %d after %s", result.ExitCode, time.Since(start).Round(time.Millisecond))

	if err == nil {
		return result, nil
	}

	if c.timedOut() {
		return result, &Error{
			Kind:     KindTimeout,
			Message:  "operation exceeded the configured timeout of " + c.options.Timeout.String(),
			Command:  logging.RedactAll(argv),
			ExitCode: result.ExitCode,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return result, classify(argv, exitErr.ExitCode(), result.Stdout, result.Stderr)
	}

	// The process could not be started at all (missing binary, no execute
	// bit). There is no output to classify.
	return result, &Error{
		Kind:    KindCommand,
		Message: err.Error(),
		Command: logging.RedactAll(argv),
	}
}

func (c *Command) configure() {
	c.runCtx = c.ctx
	if c.options.Timeout > 0 {
		c.runCtx, c.cancel = context.WithTimeout(c.ctx, c.options.Timeout)
	}

	c.cmd = exec.CommandContext(c.runCtx, c.options.Path, c.options.Args...)

	if c.options.Env != nil {
		c.cmd.Env = c.options.Env
	} else {
		c.cmd.Env = os.Environ()
	}

	if c.options.StdIn != nil {
		c.cmd.Stdin = c.options.StdIn
	}

	c.cmd.Stdout = &c.stdout
	if c.options.StdOut != nil {
		c.cmd.Stdout = io.MultiWriter(&c.stdout, c.options.StdOut)
	}
	c.cmd.Stderr = &c.stderr
	if c.options.StdErr != nil {
		c.cmd.Stderr = io.MultiWriter(&c.stderr, c.options.StdErr)
	}
}

func (c *Command) timedOut() bool {
	return c.options.Timeout > 0 && errors.Is(c.runCtx.Err(), context.DeadlineExceeded)
}
