package cli

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/safestic/safestic/restic/dto"
)

// Version returns the version string reported by the restic binary, mainly
// used to verify the installation.
func (r *Restic) Version(ctx context.Context) (string, error) {
	cmd := NewCommand(ctx, r.logger.WithName("version"), r.transcript, r.commandOptions([]string{"version"}))
	result, err := cmd.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Stdout), nil
}

// CheckAccess reports whether the repository can be opened with the
// configured credentials. Transient failures are retried.
func (r *Restic) CheckAccess(ctx context.Context) error {
	log := r.logger.WithName("access")
	log.Info("checking repository access", "repository", r.repository)

	return r.retry.Run(ctx, log, func() error {
		cmd := NewCommand(ctx, log, r.transcript, r.commandOptions(r.globalFlags.ApplyToCommand("snapshots", "--last")))
		_, err := cmd.Run()
		return err
	})
}

// Init initialises the repository. An already initialised repository is not
// an error; it is safe to call this every time. Init is never retried.
func (r *Restic) Init(ctx context.Context) error {
	log := r.logger.WithName("init")
	log.Info("initialising repository", "repository", r.repository)

	cmd := NewCommand(ctx, log, r.transcript, r.commandOptions(r.globalFlags.ApplyToCommand("init")))
	_, err := cmd.Run()
	if err == nil {
		return nil
	}

	var resticErr *Error
	if errors.As(err, &resticErr) {
		if strings.Contains(resticErr.Stderr, "already initialized") ||
			strings.Contains(resticErr.Stderr, "already exists") {
			log.Info("repository already initialised")
			return nil
		}
	}
	return err
}

// Check validates the repository structure with `restic check`. An optional
// subset such as "10%" triggers pack data verification.
func (r *Restic) Check(ctx context.Context, readDataSubset string) error {
	log := r.logger.WithName("check")
	log.Info("checking repository integrity")

	args := []string{}
	if readDataSubset != "" {
		args = append(args, "--read-data-subset", readDataSubset)
	}

	return r.retry.Run(ctx, log, func() error {
		cmd := NewCommand(ctx, log, r.transcript, r.commandOptions(r.globalFlags.ApplyToCommand("check", args...)))
		_, err := cmd.Run()
		return err
	})
}

// Unlock removes stale locks from the repository. With all set, even
// non-stale locks are removed.
func (r *Restic) Unlock(ctx context.Context, all bool) error {
	log := r.logger.WithName("unlock")
	log.Info("unlocking repository", "all", all)

	args := []string{}
	if all {
		args = append(args, "--remove-all")
	}

	cmd := NewCommand(ctx, log, r.transcript, r.commandOptions(r.globalFlags.ApplyToCommand("unlock", args...)))
	_, err := cmd.Run()
	return err
}

// Stats fetches repository statistics. Valid modes are "raw-data",
// "restore-size", "files-by-contents" and "blobs-per-file".
func (r *Restic) Stats(ctx context.Context, mode string) (dto.Stats, error) {
	log := r.logger.WithName("stats")
	if mode == "" {
		mode = "raw-data"
	}
	log.Info("collecting repository statistics", "mode", mode)

	return retry(ctx, r.retry, log, func() (dto.Stats, error) {
		cmd := NewCommand(ctx, log, r.transcript, r.commandOptions(r.globalFlags.ApplyToCommand("stats", "--mode", mode, "--json")))
		result, err := cmd.Run()
		if err != nil {
			return dto.Stats{}, err
		}

		stats := dto.Stats{}
		if err := json.Unmarshal([]byte(result.Stdout), &stats); err != nil {
			return dto.Stats{}, &Error{
				Kind:    KindCommand,
				Message: "cannot decode stats output: " + err.Error(),
				Stdout:  result.Stdout,
			}
		}
		return stats, nil
	})
}

// RebuildIndex rebuilds the repository index. It modifies repository state
// and is therefore never retried.
func (r *Restic) RebuildIndex(ctx context.Context, readAllPacks bool) error {
	log := r.logger.WithName("rebuild-index")
	log.Info("rebuilding repository index", "readAllPacks", readAllPacks)

	args := []string{}
	if readAllPacks {
		args = append(args, "--read-all-packs")
	}

	cmd := NewCommand(ctx, log, r.transcript, r.commandOptions(r.globalFlags.ApplyToCommand("rebuild-index", args...)))
	_, err := cmd.Run()
	return err
}

// Repair runs `restic repair <what>` where what is one of "index",
// "snapshots" or "packs". Repairs are destructive one-shot operations; a
// blind retry could worsen the state, so they are never retried.
func (r *Restic) Repair(ctx context.Context, what string) error {
	switch what {
	case "index", "snapshots", "packs":
	default:
		return newValidationError("unknown repair target %q, use index, snapshots or packs", what)
	}

	log := r.logger.WithName("repair")
	log.Info("repairing repository", "target", what)

	cmd := NewCommand(ctx, log, r.transcript, r.commandOptions(r.globalFlags.ApplyToCommand("repair", what)))
	_, err := cmd.Run()
	return err
}

// SupportsMount reports whether this restic build offers the mount command;
// it is unavailable on platforms without FUSE.
func (r *Restic) SupportsMount(ctx context.Context) bool {
	cmd := NewCommand(ctx, r.logger.WithName("mount"), r.transcript, r.commandOptions([]string{"help"}))
	result, err := cmd.Run()
	return err == nil && strings.Contains(result.Stdout, "mount")
}
