package cli

import (
	"context"
	"os"

	"github.com/safestic/safestic/restic/logging"
)

// RestoreOptions holds the inputs for a single restore.
type RestoreOptions struct {
	// SnapshotID is a full or short snapshot ID; empty means "latest".
	SnapshotID string
	// TargetDir is the destination directory; it is created if absent.
	TargetDir string
	// Includes restricts the restore to matching paths, passed as repeated
	// --include patterns.
	Includes ArrayOpts
	// Verify makes restic verify the restored files against the repository.
	Verify bool
}

// Restore restores a snapshot into the target directory.
func (r *Restic) Restore(ctx context.Context, opts RestoreOptions) error {
	if opts.TargetDir == "" {
		return newValidationError("a restore target directory must be specified")
	}
	if opts.SnapshotID == "" {
		opts.SnapshotID = "latest"
	}

	if err := os.MkdirAll(opts.TargetDir, 0o755); err != nil {
		return &Error{Kind: KindPermission, Message: "cannot create restore target: " + err.Error()}
	}

	log := r.logger.WithName("restore")
	log.Info("restoring snapshot", "snapshot", opts.SnapshotID, "target", opts.TargetDir)

	args := []string{opts.SnapshotID, "--target", opts.TargetDir}
	args = append(args, opts.Includes.BuildArgs("--include")...)
	if opts.Verify {
		args = append(args, "--verify")
	}

	return r.retry.Run(ctx, log, func() error {
		cmd := NewCommand(ctx, log, r.transcript, CommandOptions{
			Path:    r.resticPath,
			Args:    r.globalFlags.ApplyToCommand("restore", args...),
			Env:     r.env,
			Timeout: r.timeout,
			StdOut:  logging.NewInfoWriter(log),
			StdErr:  logging.NewErrorWriter(log),
		})
		_, err := cmd.Run()
		return err
	})
}
