package cli

import (
	"context"
	"regexp"

	"github.com/safestic/safestic/restic/logging"
)

var snapshotSavedPattern = regexp.MustCompile(`snapshot ([0-9a-f]+) saved`)

// BackupOptions holds the per-backup inputs.
type BackupOptions struct {
	// Paths are the files and directories to back up; at least one is
	// required.
	Paths []string
	// Excludes are passed as repeated --exclude patterns; blank entries are
	// skipped.
	Excludes ArrayOpts
	// Tags are applied to the snapshot as repeated --tag values; blank
	// entries are skipped.
	Tags ArrayOpts
	// Host overrides the hostname recorded in the snapshot.
	Host string
}

// BackupSummary reports a finished backup.
type BackupSummary struct {
	SnapshotID string
	Path       string
}

// Backup creates one snapshot of the given paths and returns the new
// snapshot's ID, extracted from restic's success message. Transient failures
// are retried; the operation is idempotent from the repository's point of
// view since an aborted attempt leaves no snapshot behind.
func (r *Restic) Backup(ctx context.Context, opts BackupOptions) (string, error) {
	if len(opts.Paths) == 0 {
		return "", newValidationError("at least one backup path must be specified")
	}

	log := r.logger.WithName("backup")
	log.Info("starting backup", "paths", opts.Paths, "excludes", len(opts.Excludes), "tags", len(opts.Tags))

	args := append([]string{}, opts.Paths...)
	args = append(args, opts.Excludes.BuildArgs("--exclude")...)
	args = append(args, opts.Tags.BuildArgs("--tag")...)
	if opts.Host != "" {
		args = append(args, "--host", opts.Host)
	}

	return retry(ctx, r.retry, log, func() (string, error) {
		cmd := NewCommand(ctx, log, r.transcript, CommandOptions{
			Path:    r.resticPath,
			Args:    r.globalFlags.ApplyToCommand("backup", args...),
			Env:     r.env,
			Timeout: r.timeout,
			StdOut:  logging.NewInfoWriter(log),
			StdErr:  logging.NewErrorWriter(log),
		})

		result, err := cmd.Run()
		if err != nil {
			return "", err
		}

		match := snapshotSavedPattern.FindStringSubmatch(result.Stdout)
		if match == nil {
			return "", &Error{
				Kind:     KindCommand,
				Message:  "backup succeeded but no snapshot ID was found in the output",
				Command:  logging.RedactAll(append([]string{r.resticPath}, args...)),
				ExitCode: result.ExitCode,
				Stdout:   result.Stdout,
				Stderr:   result.Stderr,
			}
		}

		log.Info("backup finished", "snapshot", match[1])
		return match[1], nil
	})
}
