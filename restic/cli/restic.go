package cli

import (
	"time"

	"github.com/firepear/qsplit/v2"
	"github.com/go-logr/logr"

	"github.com/safestic/safestic/restic/logging"
)

// Restic drives the external restic binary. The instance holds only
// read-only configuration captured at construction (repository address,
// environment, retry policy), so a single instance may serve several
// concurrent operations.
type Restic struct {
	resticPath string
	repository string
	env        []string
	logger     logr.Logger
	transcript *logging.Transcript
	retry      RetryPolicy
	timeout    time.Duration

	// globalFlags are applied to every invocation of restic.
	globalFlags Flags
}

// Options configures a Restic client.
type Options struct {
	// ResticBin is the executable to invoke; defaults to "restic" on PATH.
	ResticBin string
	// Repository is the backend address, e.g. "s3:s3.amazonaws.com/bucket".
	Repository string
	// Env is the full subprocess environment including the repository
	// password and provider credentials.
	Env []string
	// ExtraOptions holds additional `--option` values for restic, quoted
	// shell-style, e.g. `s3.connections=8 "sftp.command=ssh -i key"`.
	ExtraOptions string
	// Timeout limits each invocation's wall-clock time; zero means no limit.
	Timeout time.Duration
	// Retry applies to the idempotent operations.
	Retry RetryPolicy
	// Transcript receives the redacted command log; may be nil.
	Transcript *logging.Transcript
}

// New returns a new Restic client.
func New(logger logr.Logger, opts Options) *Restic {
	if opts.ResticBin == "" {
		opts.ResticBin = "restic"
	}

	globalFlags := Flags{}
	globalFlags.AddFlag("-r", opts.Repository)
	for _, option := range qsplit.ToStrings([]byte(opts.ExtraOptions)) {
		globalFlags.AddFlag("--option", option)
	}

	return &Restic{
		resticPath:  opts.ResticBin,
		repository:  opts.Repository,
		env:         opts.Env,
		logger:      logger,
		transcript:  opts.Transcript,
		retry:       opts.Retry,
		timeout:     opts.Timeout,
		globalFlags: globalFlags,
	}
}

// Repository returns the configured repository address.
func (r *Restic) Repository() string {
	return r.repository
}

func (r *Restic) commandOptions(args []string) CommandOptions {
	return CommandOptions{
		Path:    r.resticPath,
		Args:    args,
		Env:     r.env,
		Timeout: r.timeout,
	}
}
