package cmd

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/imdario/mergo"
	"github.com/urfave/cli/v2"

	"github.com/safestic/safestic/cfg"
	"github.com/safestic/safestic/credentials"
	resticCli "github.com/safestic/safestic/restic/cli"
	"github.com/safestic/safestic/restic/logging"
)

// AppContext bundles everything a repository-touching command needs: the
// validated configuration, the credential resolver, the transcript log file
// and a ready-to-use restic client.
type AppContext struct {
	Config     *cfg.Configuration
	Resolver   *credentials.Resolver
	Repository string
	Transcript *logging.Transcript
	Restic     *resticCli.Restic
	Log        logr.Logger
}

// NewResolver builds the credential resolver from the loaded configuration.
func NewResolver(c *cli.Context) (*credentials.Resolver, error) {
	source, err := credentials.ParseSource(cfg.Config.CredentialSource)
	if err != nil {
		return nil, err
	}
	return credentials.NewResolver(AppLogger(c), credentials.ResolverOptions{
		Source:        source,
		FallbackToEnv: true,
		SopsFile:      cfg.Config.SopsFile,
	}), nil
}

// Setup validates the configuration, resolves credentials and constructs the
// restic client. logPrefix names the transcript file of this run.
func Setup(c *cli.Context, logPrefix string) (*AppContext, error) {
	config := cfg.Config
	if err := config.Validate(); err != nil {
		return nil, err
	}

	log := Logger(c, logPrefix)

	resolver, err := NewResolver(c)
	if err != nil {
		return nil, err
	}

	repository, err := cfg.BuildRepository(config.StorageProvider, config.StorageBucket)
	if err != nil {
		return nil, err
	}

	env, err := resolver.BuildProcessEnv(c.Context, repository)
	if err != nil {
		return nil, err
	}

	transcript, err := logging.NewTranscript(config.LogDir, logPrefix)
	if err != nil {
		return nil, err
	}
	transcript.Printf("repository %s (provider %s, credential source %s)",
		repository, config.StorageProvider, config.CredentialSource)

	// The configuration only exposes the attempt and backoff knobs; the
	// factor, jitter and retriable kinds come from the default policy.
	retry := resticCli.RetryPolicy{
		MaxAttempts:    config.MaxAttempts,
		InitialBackoff: config.InitialBackoff,
		MaxBackoff:     config.MaxBackoff,
	}
	if err := mergo.Merge(&retry, resticCli.DefaultRetryPolicy()); err != nil {
		return nil, fmt.Errorf("cannot merge retry defaults: %w", err)
	}

	restic := resticCli.New(log, resticCli.Options{
		ResticBin:    config.ResticBin,
		Repository:   repository,
		Env:          env,
		ExtraOptions: config.ResticOptions,
		Timeout:      config.CommandTimeout,
		Retry:        retry,
		Transcript:   transcript,
	})

	return &AppContext{
		Config:     config,
		Resolver:   resolver,
		Repository: repository,
		Transcript: transcript,
		Restic:     restic,
		Log:        log,
	}, nil
}

// Close flushes the transcript.
func (a *AppContext) Close() {
	if err := a.Transcript.Close(); err != nil {
		a.Log.Error(err, "cannot close transcript")
	}
}

// Fail logs a redacted error, records it in the transcript and converts it
// into a non-zero process exit. Classified errors never surface as panics.
func (a *AppContext) Fail(err error) error {
	msg := logging.Redact(err.Error())
	a.Log.Error(fmt.Errorf("%s", msg), "command failed")
	a.Transcript.Printf("error: %s", msg)
	return cli.Exit(msg, 1)
}

// Fatal converts an error into a redacted non-zero process exit, for
// failures that occur before an AppContext exists.
func Fatal(err error) cli.ExitCoder {
	return cli.Exit(logging.Redact(err.Error()), 1)
}

// Hostname is recorded in snapshots and metric groupings.
func Hostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}
